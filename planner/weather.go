package planner

import (
	"math"
	"slices"
	"time"
)

// RainyDayThreshold is the daily precipitation (mm) above which a day counts as rainy.
const RainyDayThreshold = 0.1

// WeatherSample is one historical day for a place. Missing readings are nil.
type WeatherSample struct {
	Date           string   `json:"date"`
	TemperatureMax *float64 `json:"temperature_max"`
	TemperatureMin *float64 `json:"temperature_min"`
	Precipitation  *float64 `json:"precipitation"`
	Year           int      `json:"year"`
}

// YearlyMetric is one reading averaged across years, with the per-year values.
type YearlyMetric struct {
	Average float64         `json:"average"`
	ByYear  map[int]float64 `json:"by_year"`
}

// DateWeather is the historical weather for one month/day across past years.
type DateWeather struct {
	DateKey        string        `json:"date"`
	TemperatureMax *YearlyMetric `json:"temperature_max,omitempty"`
	TemperatureMin *YearlyMetric `json:"temperature_min,omitempty"`
	Precipitation  *YearlyMetric `json:"precipitation,omitempty"`
	Years          []int         `json:"years"`
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// WeatherForDate averages every sample sharing dateKey's month and day,
// whatever its year. It returns nil when no sample matches.
func WeatherForDate(samples []WeatherSample, dateKey string) *DateWeather {
	target, err := ParseDate(dateKey)
	if err != nil {
		return nil
	}

	var matched []WeatherSample
	for _, s := range samples {
		d, err := ParseDate(s.Date)
		if err != nil {
			continue
		}
		if d.Month() == target.Month() && d.Day() == target.Day() {
			matched = append(matched, s)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	years := make([]int, 0, len(matched))
	for _, s := range matched {
		y := sampleYear(s)
		if !slices.Contains(years, y) {
			years = append(years, y)
		}
	}
	slices.Sort(years)

	return &DateWeather{
		DateKey:        dateKey,
		TemperatureMax: yearly(matched, func(s WeatherSample) *float64 { return s.TemperatureMax }),
		TemperatureMin: yearly(matched, func(s WeatherSample) *float64 { return s.TemperatureMin }),
		Precipitation:  yearly(matched, func(s WeatherSample) *float64 { return s.Precipitation }),
		Years:          years,
	}
}

func sampleYear(s WeatherSample) int {
	if s.Year != 0 {
		return s.Year
	}
	if d, err := ParseDate(s.Date); err == nil {
		return d.Year()
	}
	return 0
}

func yearly(samples []WeatherSample, field func(WeatherSample) *float64) *YearlyMetric {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	var total float64
	var n int
	for _, s := range samples {
		v := field(s)
		if v == nil {
			continue
		}
		y := sampleYear(s)
		sums[y] += *v
		counts[y]++
		total += *v
		n++
	}
	if n == 0 {
		return nil
	}
	m := &YearlyMetric{Average: round1(total / float64(n)), ByYear: make(map[int]float64, len(sums))}
	for y, sum := range sums {
		m.ByYear[y] = round1(sum / float64(counts[y]))
	}
	return m
}

// SpreadStats describes the distribution of one temperature reading.
type SpreadStats struct {
	Average float64 `json:"average"`
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
	StdDev  float64 `json:"std_dev"`
}

// PrecipitationStats summarises daily precipitation.
type PrecipitationStats struct {
	AverageDaily        float64 `json:"average_daily"`
	MaxDaily            float64 `json:"max_daily"`
	Total               float64 `json:"total"`
	RainyDays           int     `json:"rainy_days"`
	RainyDaysPercentage float64 `json:"rainy_days_percentage"`
}

// MonthWeather is one calendar month of the breakdown.
type MonthWeather struct {
	Month               string  `json:"month"`
	DaysWithData        int     `json:"days_with_data"`
	TemperatureMaxAvg   float64 `json:"temperature_max_avg"`
	TemperatureMinAvg   float64 `json:"temperature_min_avg"`
	PrecipitationAvg    float64 `json:"precipitation_avg"`
	RainyDaysPercentage float64 `json:"rainy_days_percentage"`
}

// WeatherSummary aggregates a whole range of historical samples.
type WeatherSummary struct {
	YearsAnalyzed     int                `json:"years_analyzed"`
	TotalDaysAnalyzed int                `json:"total_days_analyzed"`
	TemperatureMax    SpreadStats        `json:"temperature_max"`
	TemperatureMin    SpreadStats        `json:"temperature_min"`
	Precipitation     PrecipitationStats `json:"precipitation"`
	MonthlyBreakdown  []MonthWeather     `json:"monthly_breakdown"`
}

// SummarizeWeather computes range-wide statistics and a per-month breakdown.
// All figures are rounded to one decimal.
func SummarizeWeather(samples []WeatherSample) WeatherSummary {
	years := make(map[int]struct{})
	for _, s := range samples {
		years[sampleYear(s)] = struct{}{}
	}

	sum := WeatherSummary{
		YearsAnalyzed:     len(years),
		TotalDaysAnalyzed: len(samples),
		TemperatureMax:    spread(values(samples, func(s WeatherSample) *float64 { return s.TemperatureMax })),
		TemperatureMin:    spread(values(samples, func(s WeatherSample) *float64 { return s.TemperatureMin })),
		Precipitation:     precipitation(values(samples, func(s WeatherSample) *float64 { return s.Precipitation })),
		MonthlyBreakdown:  []MonthWeather{},
	}

	byMonth := make(map[time.Month][]WeatherSample)
	for _, s := range samples {
		d, err := ParseDate(s.Date)
		if err != nil {
			continue
		}
		byMonth[d.Month()] = append(byMonth[d.Month()], s)
	}
	for m := time.January; m <= time.December; m++ {
		month := byMonth[m]
		if len(month) == 0 {
			continue
		}
		rain := precipitation(values(month, func(s WeatherSample) *float64 { return s.Precipitation }))
		sum.MonthlyBreakdown = append(sum.MonthlyBreakdown, MonthWeather{
			Month:               m.String(),
			DaysWithData:        len(month),
			TemperatureMaxAvg:   round1(mean(values(month, func(s WeatherSample) *float64 { return s.TemperatureMax }))),
			TemperatureMinAvg:   round1(mean(values(month, func(s WeatherSample) *float64 { return s.TemperatureMin }))),
			PrecipitationAvg:    rain.AverageDaily,
			RainyDaysPercentage: rain.RainyDaysPercentage,
		})
	}
	return sum
}

func values(samples []WeatherSample, field func(WeatherSample) *float64) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if v := field(s); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var total float64
	for _, v := range vs {
		total += v
	}
	return total / float64(len(vs))
}

// stddev is the sample standard deviation; fewer than two values give 0.
func stddev(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	m := mean(vs)
	var acc float64
	for _, v := range vs {
		acc += (v - m) * (v - m)
	}
	return math.Sqrt(acc / float64(len(vs)-1))
}

func spread(vs []float64) SpreadStats {
	if len(vs) == 0 {
		return SpreadStats{}
	}
	return SpreadStats{
		Average: round1(mean(vs)),
		Highest: round1(slices.Max(vs)),
		Lowest:  round1(slices.Min(vs)),
		StdDev:  round1(stddev(vs)),
	}
}

func precipitation(vs []float64) PrecipitationStats {
	if len(vs) == 0 {
		return PrecipitationStats{}
	}
	var total float64
	rainy := 0
	for _, v := range vs {
		total += v
		if v > RainyDayThreshold {
			rainy++
		}
	}
	return PrecipitationStats{
		AverageDaily:        round1(total / float64(len(vs))),
		MaxDaily:            round1(slices.Max(vs)),
		Total:               round1(total),
		RainyDays:           rainy,
		RainyDaysPercentage: round1(float64(rainy) / float64(len(vs)) * 100),
	}
}
