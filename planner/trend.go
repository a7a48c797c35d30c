package planner

import (
	"math"
	"strings"
)

// QuartileRanking is one point of the five-point historical price summary.
type QuartileRanking string

const (
	QuartileMinimum QuartileRanking = "MINIMUM"
	QuartileFirst   QuartileRanking = "FIRST"
	QuartileMedium  QuartileRanking = "MEDIUM"
	QuartileThird   QuartileRanking = "THIRD"
	QuartileMaximum QuartileRanking = "MAXIMUM"
)

// Keys of PriceTrend.Metrics.
const (
	MetricMinimum = "minimum"
	MetricFirst   = "first"
	MetricMedium  = "medium"
	MetricThird   = "third"
	MetricMaximum = "maximum"
)

// DefaultCurrency is assumed when a price-trend source omits the currency.
const DefaultCurrency = "USD"

// PriceMetric is one quartile row from a price-trend source.
type PriceMetric struct {
	DepartureDate string          `json:"departure_date"`
	Currency      string          `json:"currency"`
	Ranking       QuartileRanking `json:"quartile_ranking"`
	Amount        float64         `json:"amount"`
}

// PriceTrend is the historical quartile summary for one departure date.
type PriceTrend struct {
	DateKey  string             `json:"date"`
	Currency string             `json:"currency"`
	Metrics  map[string]float64 `json:"metrics"`
}

// PriceTrendForDate gathers the quartile rows for dateKey. The first row seen
// for a ranking wins. It returns nil when no row matches.
func PriceTrendForDate(metrics []PriceMetric, dateKey string) *PriceTrend {
	var trend *PriceTrend
	for _, m := range metrics {
		if m.DepartureDate != dateKey {
			continue
		}
		if trend == nil {
			trend = &PriceTrend{DateKey: dateKey, Currency: m.Currency, Metrics: make(map[string]float64)}
			if trend.Currency == "" {
				trend.Currency = DefaultCurrency
			}
		}
		key := strings.ToLower(string(m.Ranking))
		if key == "" {
			continue
		}
		if _, ok := trend.Metrics[key]; !ok {
			trend.Metrics[key] = m.Amount
		}
	}
	return trend
}

// PriceLevel classifies a price against its date's history.
type PriceLevel string

const (
	LevelExcellent    PriceLevel = "excellent"
	LevelVeryGood     PriceLevel = "very good"
	LevelAverage      PriceLevel = "average"
	LevelAboveAverage PriceLevel = "above average"
	LevelHigh         PriceLevel = "high"
	LevelNoData       PriceLevel = "no data"
)

// DefaultExcellentFactor scales the historical minimum into the "excellent" ceiling.
const DefaultExcellentFactor = 1.1

// Reasons attached to LevelNoData.
const (
	ReasonNoHistory  = "no historical data"
	ReasonIncomplete = "incomplete data"
	ReasonNoPrice    = "price unavailable"
)

// Evaluation is a price level plus, for LevelNoData, why.
type Evaluation struct {
	Level  PriceLevel `json:"level"`
	Reason string     `json:"reason,omitempty"`
}

// Evaluator classifies prices. The zero value uses DefaultExcellentFactor.
type Evaluator struct {
	ExcellentFactor float64
}

// Evaluate places price among trend's quartiles. Missing first, medium or
// third quartiles count as zero.
func (e Evaluator) Evaluate(price float64, trend *PriceTrend) Evaluation {
	if trend == nil || len(trend.Metrics) == 0 {
		return Evaluation{Level: LevelNoData, Reason: ReasonNoHistory}
	}
	minimum, okMin := trend.Metrics[MetricMinimum]
	_, okMax := trend.Metrics[MetricMaximum]
	if !okMin || !okMax {
		return Evaluation{Level: LevelNoData, Reason: ReasonIncomplete}
	}
	if math.IsNaN(price) || !IsPriced(price) {
		return Evaluation{Level: LevelNoData, Reason: ReasonNoPrice}
	}

	factor := e.ExcellentFactor
	if factor <= 0 {
		factor = DefaultExcellentFactor
	}

	switch {
	case price <= minimum*factor:
		return Evaluation{Level: LevelExcellent}
	case price <= trend.Metrics[MetricFirst]:
		return Evaluation{Level: LevelVeryGood}
	case price <= trend.Metrics[MetricMedium]:
		return Evaluation{Level: LevelAverage}
	case price <= trend.Metrics[MetricThird]:
		return Evaluation{Level: LevelAboveAverage}
	default:
		return Evaluation{Level: LevelHigh}
	}
}

// EvaluatePrice classifies price with the default factor.
func EvaluatePrice(price float64, trend *PriceTrend) PriceLevel {
	return Evaluator{}.Evaluate(price, trend).Level
}
