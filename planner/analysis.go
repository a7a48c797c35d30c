package planner

import (
	"slices"
	"sort"
)

// PriceStats summarises readable prices. All fields are zero when none exist.
type PriceStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// FlightTrends describes every flight collected during a plan, not just the
// selected ones.
type FlightTrends struct {
	TotalFlights         int            `json:"total_flights"`
	PricedFlights        int            `json:"priced_flights"`
	UniqueAirlines       int            `json:"unique_airlines"`
	PriceStatistics      PriceStats     `json:"price_statistics"`
	Airlines             map[string]int `json:"airlines"`
	CheapestAirline      string         `json:"cheapest_airline,omitempty"`
	MostExpensiveAirline string         `json:"most_expensive_airline,omitempty"`
}

// AnalyzeFlights counts flights per airline and computes price statistics.
// Airlines are compared by their mean readable price; ties go to the
// alphabetically first name.
func AnalyzeFlights(records []FlightRecord) FlightTrends {
	t := FlightTrends{TotalFlights: len(records), Airlines: make(map[string]int)}

	var prices []float64
	byAirline := make(map[string][]float64)
	for _, r := range records {
		t.Airlines[r.Airline]++
		p := NormalizePrice(r.Price)
		if !IsPriced(p) {
			continue
		}
		prices = append(prices, p)
		byAirline[r.Airline] = append(byAirline[r.Airline], p)
	}
	t.UniqueAirlines = len(t.Airlines)
	t.PricedFlights = len(prices)
	if len(prices) == 0 {
		return t
	}

	sorted := slices.Clone(prices)
	sort.Float64s(sorted)
	t.PriceStatistics = PriceStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean(sorted),
		Median: median(sorted),
	}

	names := make([]string, 0, len(byAirline))
	for name := range byAirline {
		names = append(names, name)
	}
	sort.Strings(names)

	var lo, hi float64
	for i, name := range names {
		m := mean(byAirline[name])
		if i == 0 || m < lo {
			lo, t.CheapestAirline = m, name
		}
		if i == 0 || m > hi {
			hi, t.MostExpensiveAirline = m, name
		}
	}
	return t
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
