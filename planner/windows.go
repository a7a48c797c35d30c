package planner

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"
)

// PolicyKind names a windowing policy.
type PolicyKind string

const (
	PolicyWeekend     PolicyKind = "weekend"
	PolicyLongWeekend PolicyKind = "long_weekend"
	PolicyFixed       PolicyKind = "fixed"
	PolicySampled     PolicyKind = "sampled"
)

// Defaults for the fixed-duration policy.
const (
	DefaultTripDuration = 3
	DefaultIntervalDays = 7
)

// Policy selects how a date range is sliced into windows.
//
// ThursdayIncluded and MondayIncluded apply to PolicyLongWeekend. They are
// pointers so an omitted flag means "included".
type Policy struct {
	Kind             PolicyKind `json:"kind" yaml:"kind"`
	ThursdayIncluded *bool      `json:"thursday_included,omitempty" yaml:"thursday_included,omitempty"`
	MondayIncluded   *bool      `json:"monday_included,omitempty" yaml:"monday_included,omitempty"`
	TripDuration     int        `json:"trip_duration,omitempty" yaml:"trip_duration,omitempty"`
	IntervalDays     int        `json:"interval_days,omitempty" yaml:"interval_days,omitempty"`
}

// ParsePolicyKind accepts the canonical names plus a few spellings used on the
// command line.
func ParsePolicyKind(s string) (PolicyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "weekend", "weekends":
		return PolicyWeekend, nil
	case "long_weekend", "long-weekend", "longweekend", "long":
		return PolicyLongWeekend, nil
	case "fixed", "custom", "duration":
		return PolicyFixed, nil
	case "sampled", "sample", "samples":
		return PolicySampled, nil
	}
	return "", fmt.Errorf("unknown windowing policy %q", s)
}

// Windows returns the window sequence for [start, end] under p.
func (p Policy) Windows(start, end time.Time) iter.Seq[DateWindow] {
	switch p.Kind {
	case PolicyLongWeekend:
		return LongWeekendWindows(start, end, flag(p.ThursdayIncluded), flag(p.MondayIncluded))
	case PolicyFixed:
		duration, interval := p.TripDuration, p.IntervalDays
		if duration == 0 {
			duration = DefaultTripDuration
		}
		if interval == 0 {
			interval = DefaultIntervalDays
		}
		return FixedDurationWindows(start, end, duration, interval)
	case PolicySampled:
		return SampledWindows(start, end)
	default:
		return WeekendWindows(start, end)
	}
}

func flag(b *bool) bool {
	return b == nil || *b
}

// Collect materialises a window sequence. The result is never nil.
func Collect(seq iter.Seq[DateWindow]) []DateWindow {
	out := slices.Collect(seq)
	if out == nil {
		return []DateWindow{}
	}
	return out
}

// WeekendWindows yields every Friday-Sunday pair that fits inside [start, end].
func WeekendWindows(start, end time.Time) iter.Seq[DateWindow] {
	return anchoredWindows(start, end, friday, 2)
}

// LongWeekendWindows yields Thursday or Friday departures returning on the
// Sunday or Monday of the same weekend.
func LongWeekendWindows(start, end time.Time, thursdayIncluded, mondayIncluded bool) iter.Seq[DateWindow] {
	anchor := friday
	if thursdayIncluded {
		anchor = thursday
	}
	// Offset from the anchor day to Sunday, plus one more for Monday.
	length := sunday - anchor
	if mondayIncluded {
		length++
	}
	return anchoredWindows(start, end, anchor, length)
}

func anchoredWindows(start, end time.Time, anchor, length int) iter.Seq[DateWindow] {
	return func(yield func(DateWindow) bool) {
		from, to := ordered(start, end)
		for dep := addDays(from, daysUntil(from, anchor)); !dep.After(to); dep = addDays(dep, 7) {
			ret := addDays(dep, length)
			if ret.After(to) {
				continue
			}
			if !yield(DateWindow{DepartureDate: dep, ReturnDate: ret}) {
				return
			}
		}
	}
}

// FixedDurationWindows yields (cursor, cursor+duration) windows with the
// cursor advancing by interval days. Both values are floored at 1.
func FixedDurationWindows(start, end time.Time, duration, interval int) iter.Seq[DateWindow] {
	duration = max(1, duration)
	interval = max(1, interval)
	return func(yield func(DateWindow) bool) {
		from, to := ordered(start, end)
		for cursor := from; !cursor.After(to); cursor = addDays(cursor, interval) {
			ret := addDays(cursor, duration)
			if ret.After(to) {
				continue
			}
			if !yield(DateWindow{DepartureDate: cursor, ReturnDate: ret}) {
				return
			}
		}
	}
}

// sampleDays are the days of month probed by SampleDates. The month's last
// day is appended per month.
var sampleDays = []int{4, 8, 12, 16, 20, 24, 28}

// DefaultSampleMonths is how far SampleDates looks ahead when asked for zero months.
const DefaultSampleMonths = 6

// SampleDates yields a spread of departure days for months starting with
// start's month: the 4th, 8th, ... 28th and the last day. Days before start
// are skipped.
func SampleDates(start time.Time, months int) iter.Seq[time.Time] {
	if months <= 0 {
		months = DefaultSampleMonths
	}
	return func(yield func(time.Time) bool) {
		from := civil(start)
		first := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < months; i++ {
			month := first.AddDate(0, i, 0)
			last := month.AddDate(0, 1, -1).Day()
			days := sampleDays
			if last != days[len(days)-1] {
				days = append(slices.Clone(days), last)
			}
			for _, d := range days {
				if d > last {
					continue
				}
				day := time.Date(month.Year(), month.Month(), d, 0, 0, 0, 0, time.UTC)
				if day.Before(from) {
					continue
				}
				if !yield(day) {
					return
				}
			}
		}
	}
}

// SampledWindows turns the sample days inside [start, end] into one-way windows.
func SampledWindows(start, end time.Time) iter.Seq[DateWindow] {
	return func(yield func(DateWindow) bool) {
		from, to := ordered(start, end)
		months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month()) + 1
		for day := range SampleDates(from, months) {
			if day.After(to) {
				return
			}
			if !yield(DateWindow{DepartureDate: day, ReturnDate: day}) {
				return
			}
		}
	}
}
