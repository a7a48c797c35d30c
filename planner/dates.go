package planner

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for every date key.
const DateLayout = "2006-01-02"

// Weekday numbers counted from Monday=0.
const (
	monday = iota
	tuesday
	wednesday
	thursday
	friday
	saturday
	sunday
)

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// DateKey formats t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// civil drops the clock and zone from t, keeping its calendar date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// weekday returns t's weekday with Monday=0 ... Sunday=6.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// daysUntil is the offset from t to the next target weekday, 0 if t is one.
func daysUntil(t time.Time, target int) int {
	return ((target-weekday(t))%7 + 7) % 7
}

func ordered(a, b time.Time) (time.Time, time.Time) {
	a, b = civil(a), civil(b)
	if a.After(b) {
		return b, a
	}
	return a, b
}

// DateWindow is one candidate sub-trip. DepartureDate is never after ReturnDate.
type DateWindow struct {
	DepartureDate time.Time
	ReturnDate    time.Time
}

// NewDateWindow builds a window from two dates given in either order.
func NewDateWindow(a, b time.Time) DateWindow {
	dep, ret := ordered(a, b)
	return DateWindow{DepartureDate: dep, ReturnDate: ret}
}

// OneWay reports whether the window has no distinct return day.
func (w DateWindow) OneWay() bool {
	return w.DepartureDate.Equal(w.ReturnDate)
}

// Nights is the number of nights between departure and return.
func (w DateWindow) Nights() int {
	return int(w.ReturnDate.Sub(w.DepartureDate).Hours() / 24)
}

func (w DateWindow) String() string {
	return DateKey(w.DepartureDate) + " -> " + DateKey(w.ReturnDate)
}

type dateWindowJSON struct {
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date"`
}

func (w DateWindow) MarshalJSON() ([]byte, error) {
	return json.Marshal(dateWindowJSON{
		DepartureDate: DateKey(w.DepartureDate),
		ReturnDate:    DateKey(w.ReturnDate),
	})
}

func (w *DateWindow) UnmarshalJSON(data []byte) error {
	var raw dateWindowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	dep, err := ParseDate(raw.DepartureDate)
	if err != nil {
		return err
	}
	ret, err := ParseDate(raw.ReturnDate)
	if err != nil {
		return err
	}
	*w = NewDateWindow(dep, ret)
	return nil
}
