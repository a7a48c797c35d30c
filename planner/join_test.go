package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func sample(date string, year int, tmax, tmin, rain float64) WeatherSample {
	return WeatherSample{Date: date, Year: year, TemperatureMax: f64(tmax), TemperatureMin: f64(tmin), Precipitation: f64(rain)}
}

func quartiles(date string, min, q1, med, q3, max float64) []PriceMetric {
	return []PriceMetric{
		{DepartureDate: date, Currency: "EUR", Ranking: QuartileMinimum, Amount: min},
		{DepartureDate: date, Currency: "EUR", Ranking: QuartileFirst, Amount: q1},
		{DepartureDate: date, Currency: "EUR", Ranking: QuartileMedium, Amount: med},
		{DepartureDate: date, Currency: "EUR", Ranking: QuartileThird, Amount: q3},
		{DepartureDate: date, Currency: "EUR", Ranking: QuartileMaximum, Amount: max},
	}
}

func trendOf(min, q1, med, q3, max float64) *PriceTrend {
	return PriceTrendForDate(quartiles("2025-03-07", min, q1, med, q3, max), "2025-03-07")
}

func TestEvaluatePrice(t *testing.T) {
	trend := trendOf(100, 150, 200, 250, 300)
	tests := []struct {
		price float64
		want  PriceLevel
	}{
		{105, LevelExcellent},
		{110, LevelExcellent},
		{140, LevelVeryGood},
		{150, LevelVeryGood},
		{199, LevelAverage},
		{250, LevelAboveAverage},
		{251, LevelHigh},
		{Unpriced, LevelNoData},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EvaluatePrice(tt.price, trend), "price %v", tt.price)
	}
}

func TestEvaluatePrice_MissingData(t *testing.T) {
	assert.Equal(t, Evaluation{Level: LevelNoData, Reason: ReasonNoHistory}, Evaluator{}.Evaluate(100, nil))

	partial := PriceTrendForDate([]PriceMetric{
		{DepartureDate: "2025-03-07", Ranking: QuartileMinimum, Amount: 90},
		{DepartureDate: "2025-03-07", Ranking: QuartileMedium, Amount: 150},
	}, "2025-03-07")
	assert.Equal(t, Evaluation{Level: LevelNoData, Reason: ReasonIncomplete}, Evaluator{}.Evaluate(100, partial))
}

func TestEvaluator_Factor(t *testing.T) {
	trend := trendOf(100, 150, 200, 250, 300)
	assert.Equal(t, LevelVeryGood, Evaluator{ExcellentFactor: 1.0}.Evaluate(105, trend).Level)
	assert.Equal(t, LevelExcellent, Evaluator{ExcellentFactor: 1.5}.Evaluate(140, trend).Level)
}

func TestPriceTrendForDate(t *testing.T) {
	trend := PriceTrendForDate(quartiles("2025-03-07", 1, 2, 3, 4, 5), "2025-03-07")
	require.NotNil(t, trend)
	assert.Equal(t, "EUR", trend.Currency)
	assert.Equal(t, map[string]float64{"minimum": 1, "first": 2, "medium": 3, "third": 4, "maximum": 5}, trend.Metrics)

	assert.Nil(t, PriceTrendForDate(quartiles("2025-03-07", 1, 2, 3, 4, 5), "2025-03-08"))

	noCurrency := PriceTrendForDate([]PriceMetric{{DepartureDate: "2025-03-07", Ranking: QuartileMinimum, Amount: 1}}, "2025-03-07")
	assert.Equal(t, DefaultCurrency, noCurrency.Currency)
}

func TestWeatherForDate(t *testing.T) {
	samples := []WeatherSample{
		sample("2022-03-07", 2022, 10, 2, 0),
		sample("2023-03-07", 2023, 12, 3, 1.5),
		sample("2024-03-07", 2024, 15, 5, 0.4),
		sample("2024-03-08", 2024, 30, 20, 9),
		{Date: "2021-03-07", Year: 2021, TemperatureMax: f64(11)},
	}
	w := WeatherForDate(samples, "2025-03-07")
	require.NotNil(t, w)
	assert.Equal(t, []int{2021, 2022, 2023, 2024}, w.Years)
	require.NotNil(t, w.TemperatureMax)
	assert.Equal(t, 12.0, w.TemperatureMax.Average)
	assert.Equal(t, map[int]float64{2021: 11, 2022: 10, 2023: 12, 2024: 15}, w.TemperatureMax.ByYear)
	assert.Equal(t, 3.3, w.TemperatureMin.Average)
	assert.Equal(t, 0.6, w.Precipitation.Average)
	assert.NotContains(t, w.Precipitation.ByYear, 2021)

	assert.Nil(t, WeatherForDate(samples, "2025-07-01"))
	assert.Nil(t, WeatherForDate(samples, "not-a-date"))
}

func TestJoin(t *testing.T) {
	selection := SelectCheapest(SelectOptions{N: 4}, []FlightRecord{
		flight("A", "$105", "2025-03-07"),
		flight("B", "$260", "2025-03-14"),
		flight("C", "$180", "2025-03-07"),
	})
	weather := []WeatherSample{sample("2024-03-07", 2024, 14, 6, 0)}
	trends := append(quartiles("2025-03-07", 100, 150, 200, 250, 300), quartiles("2025-03-14", 100, 150, 200, 250, 300)...)

	bundles := Join(selection, weather, trends, Evaluator{})
	require.Len(t, bundles, 2)

	first := bundles[0]
	assert.Equal(t, "2025-03-07", first.DateKey)
	require.NotNil(t, first.Flight)
	assert.Equal(t, "A", first.Flight.Record.Airline)
	assert.Equal(t, LevelExcellent, first.Flight.Evaluation.Level)
	require.Len(t, first.Flights, 2)
	assert.Equal(t, LevelAverage, first.Flights[1].Evaluation.Level)
	assert.NotNil(t, first.Weather)
	assert.NotNil(t, first.PriceTrend)

	second := bundles[1]
	assert.Equal(t, "2025-03-14", second.DateKey)
	assert.Nil(t, second.Weather)
	require.NotNil(t, second.PriceTrend)
	assert.Equal(t, LevelHigh, second.Flight.Evaluation.Level)
}

func TestJoin_MissingSources(t *testing.T) {
	selection := SelectCheapest(SelectOptions{}, []FlightRecord{flight("A", "N/A", "2025-03-07")})
	bundles := Join(selection, nil, nil, Evaluator{})
	require.Len(t, bundles, 1)
	assert.NotNil(t, bundles[0].Flight)
	assert.Nil(t, bundles[0].Weather)
	assert.Nil(t, bundles[0].PriceTrend)
	assert.Equal(t, LevelNoData, bundles[0].Flight.Evaluation.Level)
}

func TestBundleForDate_NoFlight(t *testing.T) {
	b := BundleForDate("2025-03-21", nil, nil, quartiles("2025-03-21", 1, 2, 3, 4, 5), Evaluator{})
	assert.Nil(t, b.Flight)
	assert.Empty(t, b.Flights)
	assert.NotNil(t, b.PriceTrend)
}

func TestJoin_Empty(t *testing.T) {
	assert.Empty(t, Join(nil, nil, nil, Evaluator{}))
}

func TestSummarizeWeather(t *testing.T) {
	samples := []WeatherSample{
		sample("2023-03-30", 2023, 10, 0, 0),
		sample("2023-03-31", 2023, 20, 4, 2),
		sample("2024-04-01", 2024, 30, 8, 0.08),
		sample("2024-04-02", 2024, 40, 12, 6),
	}
	s := SummarizeWeather(samples)
	assert.Equal(t, 2, s.YearsAnalyzed)
	assert.Equal(t, 4, s.TotalDaysAnalyzed)
	assert.Equal(t, SpreadStats{Average: 25, Highest: 40, Lowest: 10, StdDev: 12.9}, s.TemperatureMax)
	assert.Equal(t, 6.0, s.TemperatureMin.Average)
	assert.Equal(t, 2, s.Precipitation.RainyDays)
	assert.Equal(t, 50.0, s.Precipitation.RainyDaysPercentage)
	assert.Equal(t, 8.1, s.Precipitation.Total)
	require.Len(t, s.MonthlyBreakdown, 2)
	assert.Equal(t, "March", s.MonthlyBreakdown[0].Month)
	assert.Equal(t, 15.0, s.MonthlyBreakdown[0].TemperatureMaxAvg)
	assert.Equal(t, "April", s.MonthlyBreakdown[1].Month)
	assert.Equal(t, 50.0, s.MonthlyBreakdown[1].RainyDaysPercentage)
}
