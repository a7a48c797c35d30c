package planner

// BundledFlight is a selected flight annotated with its price level.
type BundledFlight struct {
	Rank       int          `json:"rank"`
	Price      PriceRecord  `json:"price"`
	Record     FlightRecord `json:"record"`
	Evaluation Evaluation   `json:"evaluation"`
}

// DateKeyedBundle lines up flight, weather and price-trend data for one
// departure date. Nil fields mean the source had nothing for that date.
type DateKeyedBundle struct {
	DateKey    string          `json:"date"`
	Flight     *BundledFlight  `json:"flight"`
	Flights    []BundledFlight `json:"flights"`
	Weather    *DateWeather    `json:"weather"`
	PriceTrend *PriceTrend     `json:"price_trend"`
}

// BundleForDate builds the bundle for a single date key. Flight is the best
// ranked selection on that date, if any.
func BundleForDate(dateKey string, selection []Ranked[FlightRecord], weather []WeatherSample, trends []PriceMetric, eval Evaluator) DateKeyedBundle {
	b := DateKeyedBundle{
		DateKey:    dateKey,
		Flights:    []BundledFlight{},
		Weather:    WeatherForDate(weather, dateKey),
		PriceTrend: PriceTrendForDate(trends, dateKey),
	}
	for _, r := range selection {
		if r.Price.DateKey != dateKey {
			continue
		}
		b.Flights = append(b.Flights, BundledFlight{
			Rank:       r.Rank,
			Price:      r.Price,
			Record:     r.Record,
			Evaluation: eval.Evaluate(r.Price.NumericPrice, b.PriceTrend),
		})
	}
	if len(b.Flights) > 0 {
		first := b.Flights[0]
		b.Flight = &first
	}
	return b
}

// Join returns one bundle per distinct date in selection, in order of first
// appearance. Dates match exactly on YYYY-MM-DD.
func Join(selection []Ranked[FlightRecord], weather []WeatherSample, trends []PriceMetric, eval Evaluator) []DateKeyedBundle {
	seen := make(map[string]struct{})
	out := []DateKeyedBundle{}
	for _, r := range selection {
		key := r.Price.DateKey
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, BundleForDate(key, selection, weather, trends, eval))
	}
	return out
}
