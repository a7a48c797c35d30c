package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func keys(ws []DateWindow) [][2]string {
	out := make([][2]string, len(ws))
	for i, w := range ws {
		out[i] = [2]string{DateKey(w.DepartureDate), DateKey(w.ReturnDate)}
	}
	return out
}

func TestWeekendWindows_March2025(t *testing.T) {
	got := Collect(WeekendWindows(day(t, "2025-03-01"), day(t, "2025-03-20")))
	assert.Equal(t, [][2]string{
		{"2025-03-07", "2025-03-09"},
		{"2025-03-14", "2025-03-16"},
	}, keys(got))
}

func TestWeekendWindows_ReversedRange(t *testing.T) {
	forward := Collect(WeekendWindows(day(t, "2025-03-01"), day(t, "2025-03-20")))
	reversed := Collect(WeekendWindows(day(t, "2025-03-20"), day(t, "2025-03-01")))
	assert.Equal(t, forward, reversed)
}

func TestWeekendWindows_StartOnFriday(t *testing.T) {
	got := Collect(WeekendWindows(day(t, "2025-03-07"), day(t, "2025-03-09")))
	assert.Equal(t, [][2]string{{"2025-03-07", "2025-03-09"}}, keys(got))
}

func TestWeekendWindows_TooShort(t *testing.T) {
	got := Collect(WeekendWindows(day(t, "2025-03-07"), day(t, "2025-03-08")))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestWeekendWindows_FridaysAndSundaysOnly(t *testing.T) {
	base := day(t, "2024-01-01")
	for offset := 0; offset < 60; offset += 3 {
		for span := 0; span < 40; span += 5 {
			start := base.AddDate(0, 0, offset)
			end := start.AddDate(0, 0, span)
			for _, w := range Collect(WeekendWindows(start, end)) {
				assert.Equal(t, time.Friday, w.DepartureDate.Weekday())
				assert.Equal(t, time.Sunday, w.ReturnDate.Weekday())
				assert.Equal(t, 2, w.Nights())
				assert.False(t, w.ReturnDate.After(end))
				assert.False(t, w.DepartureDate.Before(start))
			}
		}
	}
}

func TestLongWeekendWindows_Defaults(t *testing.T) {
	got := Collect(LongWeekendWindows(day(t, "2025-03-01"), day(t, "2025-03-20"), true, true))
	assert.Equal(t, [][2]string{
		{"2025-03-06", "2025-03-10"},
		{"2025-03-13", "2025-03-17"},
	}, keys(got))
}

func TestLongWeekendWindows_Variants(t *testing.T) {
	start, end := day(t, "2025-03-01"), day(t, "2025-03-20")

	tests := []struct {
		name     string
		thursday bool
		monday   bool
		want     [][2]string
	}{
		{"friday to monday", false, true, [][2]string{{"2025-03-07", "2025-03-10"}, {"2025-03-14", "2025-03-17"}}},
		{"thursday to sunday", true, false, [][2]string{{"2025-03-06", "2025-03-09"}, {"2025-03-13", "2025-03-16"}}},
		{"friday to sunday", false, false, [][2]string{{"2025-03-07", "2025-03-09"}, {"2025-03-14", "2025-03-16"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Collect(LongWeekendWindows(start, end, tt.thursday, tt.monday))
			assert.Equal(t, tt.want, keys(got))
		})
	}
}

func TestFixedDurationWindows_March2025(t *testing.T) {
	got := Collect(FixedDurationWindows(day(t, "2025-03-01"), day(t, "2025-03-20"), 4, 5))
	assert.Equal(t, [][2]string{
		{"2025-03-01", "2025-03-05"},
		{"2025-03-06", "2025-03-10"},
		{"2025-03-11", "2025-03-15"},
		{"2025-03-16", "2025-03-20"},
	}, keys(got))
}

func TestFixedDurationWindows_FloorsAtOne(t *testing.T) {
	got := Collect(FixedDurationWindows(day(t, "2025-03-01"), day(t, "2025-03-03"), 0, -2))
	assert.Equal(t, [][2]string{
		{"2025-03-01", "2025-03-02"},
		{"2025-03-02", "2025-03-03"},
	}, keys(got))
}

func TestWindows_Restartable(t *testing.T) {
	seq := LongWeekendWindows(day(t, "2025-01-01"), day(t, "2025-06-30"), true, false)
	first := Collect(seq)
	second := Collect(seq)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestWindows_EarlyStop(t *testing.T) {
	n := 0
	for range WeekendWindows(day(t, "2025-01-01"), day(t, "2025-12-31")) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestWindows_DepartureNotAfterReturn(t *testing.T) {
	start, end := day(t, "2025-02-10"), day(t, "2025-05-01")
	policies := []Policy{
		{Kind: PolicyWeekend},
		{Kind: PolicyLongWeekend},
		{Kind: PolicyFixed, TripDuration: 6, IntervalDays: 2},
		{Kind: PolicySampled},
	}
	for _, p := range policies {
		for _, w := range Collect(p.Windows(start, end)) {
			assert.False(t, w.DepartureDate.After(w.ReturnDate), "%s %s", p.Kind, w)
		}
	}
}

func TestPolicy_LongWeekendFlags(t *testing.T) {
	no := false
	p := Policy{Kind: PolicyLongWeekend, ThursdayIncluded: &no}
	got := Collect(p.Windows(day(t, "2025-03-01"), day(t, "2025-03-20")))
	assert.Equal(t, [][2]string{{"2025-03-07", "2025-03-10"}, {"2025-03-14", "2025-03-17"}}, keys(got))
}

func TestPolicy_FixedDefaults(t *testing.T) {
	p := Policy{Kind: PolicyFixed}
	got := Collect(p.Windows(day(t, "2025-03-01"), day(t, "2025-03-20")))
	assert.Equal(t, [][2]string{
		{"2025-03-01", "2025-03-04"},
		{"2025-03-08", "2025-03-11"},
		{"2025-03-15", "2025-03-18"},
	}, keys(got))
}

func TestParsePolicyKind(t *testing.T) {
	for in, want := range map[string]PolicyKind{
		"":             PolicyWeekend,
		"Weekend":      PolicyWeekend,
		"long-weekend": PolicyLongWeekend,
		"fixed":        PolicyFixed,
		"sample":       PolicySampled,
	} {
		got, err := ParsePolicyKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePolicyKind("fortnight")
	assert.Error(t, err)
}

func TestSampleDates(t *testing.T) {
	var got []string
	for d := range SampleDates(day(t, "2025-01-30"), 2) {
		got = append(got, DateKey(d))
	}
	assert.Equal(t, []string{
		"2025-01-31",
		"2025-02-04", "2025-02-08", "2025-02-12", "2025-02-16",
		"2025-02-20", "2025-02-24", "2025-02-28",
	}, got)
}

func TestSampledWindows_OneWayInsideRange(t *testing.T) {
	got := Collect(SampledWindows(day(t, "2025-03-10"), day(t, "2025-04-10")))
	assert.Equal(t, [][2]string{
		{"2025-03-12", "2025-03-12"},
		{"2025-03-16", "2025-03-16"},
		{"2025-03-20", "2025-03-20"},
		{"2025-03-24", "2025-03-24"},
		{"2025-03-28", "2025-03-28"},
		{"2025-03-31", "2025-03-31"},
		{"2025-04-04", "2025-04-04"},
		{"2025-04-08", "2025-04-08"},
	}, keys(got))
	for _, w := range got {
		assert.True(t, w.OneWay())
	}
}

func TestDateWindow_JSON(t *testing.T) {
	w := NewDateWindow(day(t, "2025-03-09"), day(t, "2025-03-07"))
	data, err := w.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"departure_date":"2025-03-07","return_date":"2025-03-09"}`, string(data))

	var back DateWindow
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, w, back)
}
