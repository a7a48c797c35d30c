package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tripwindow/planner"
)

var ErrInvalidRequest = errors.New("invalid plan request")

// PlanRequest describes one trip search over a date range.
type PlanRequest struct {
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	Place       string         `json:"place"`
	StartDate   time.Time      `json:"-"`
	EndDate     time.Time      `json:"-"`
	Policy      planner.Policy `json:"policy"`
	TopN        int            `json:"top_n"`
	Dedupe      bool           `json:"dedupe"`
	Adults      int            `json:"adults"`
	Currency    string         `json:"currency,omitempty"`
}

// WindowOutcome records what happened when one window was searched.
type WindowOutcome struct {
	Window  planner.DateWindow `json:"window"`
	Flights int                `json:"flights"`
	Error   string             `json:"error,omitempty"`
}

// PlanResult is everything a dashboard needs for one plan.
type PlanResult struct {
	Origin         string                                 `json:"origin"`
	Destination    string                                 `json:"destination"`
	Place          string                                 `json:"place"`
	StartDate      string                                 `json:"start_date"`
	EndDate        string                                 `json:"end_date"`
	Policy         planner.Policy                         `json:"policy"`
	Currency       string                                 `json:"currency"`
	Source         string                                 `json:"source"`
	FallbackWindow bool                                   `json:"fallback_window"`
	Windows        []WindowOutcome                        `json:"windows"`
	Cheapest       []planner.Ranked[planner.FlightRecord] `json:"cheapest"`
	Bundles        []planner.DateKeyedBundle              `json:"bundles"`
	FlightTrends   planner.FlightTrends                   `json:"flight_trends"`
	CheapestDates  []planner.DatePrice                    `json:"cheapest_dates"`
	Weather        *planner.WeatherSummary                `json:"weather,omitempty"`
	WeatherError   string                                 `json:"weather_error,omitempty"`
	GeneratedAt    time.Time                              `json:"generated_at"`
}

// TripPlanner runs the window → flights → selection → join pipeline.
// Weather and Trends are optional.
type TripPlanner struct {
	Flights   FlightSource
	Weather   WeatherSource
	Trends    PriceTrendSource
	Evaluator planner.Evaluator
	TopN      int
	Dedupe    bool
	Currency  string
}

// Normalize validates req and fills its defaults from the planner.
func (p *TripPlanner) Normalize(req PlanRequest) (PlanRequest, error) {
	req.Origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	req.Destination = strings.ToUpper(strings.TrimSpace(req.Destination))
	req.Place = strings.TrimSpace(req.Place)
	if len(req.Origin) != 3 || len(req.Destination) != 3 {
		return req, fmt.Errorf("%w: airport codes must be exactly 3 characters (e.g. LHR, JFK)", ErrInvalidRequest)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return req, fmt.Errorf("%w: start and end dates are required", ErrInvalidRequest)
	}
	if req.EndDate.Before(req.StartDate) {
		req.StartDate, req.EndDate = req.EndDate, req.StartDate
	}
	if req.Place == "" {
		req.Place = req.Destination
	}
	if req.Policy.Kind == "" {
		req.Policy.Kind = planner.PolicyWeekend
	}
	if req.TopN < 1 {
		req.TopN = p.TopN
	}
	if req.TopN < 1 {
		req.TopN = planner.DefaultCheapestN
	}
	if !req.Dedupe {
		req.Dedupe = p.Dedupe
	}
	if req.Adults < 1 {
		req.Adults = 1
	}
	if req.Currency == "" {
		req.Currency = p.Currency
	}
	if req.Currency == "" {
		req.Currency = planner.DefaultCurrency
	}
	return req, nil
}

// Plan searches every window in order and reduces the results. A window whose
// search fails is recorded and skipped. When the policy yields no window the
// literal start/end range is searched instead.
func (p *TripPlanner) Plan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	if p.Flights == nil {
		return nil, fmt.Errorf("flight source: %w", ErrNotConfigured)
	}
	req, err := p.Normalize(req)
	if err != nil {
		return nil, err
	}

	res := &PlanResult{
		Origin:      req.Origin,
		Destination: req.Destination,
		Place:       req.Place,
		StartDate:   planner.DateKey(req.StartDate),
		EndDate:     planner.DateKey(req.EndDate),
		Policy:      req.Policy,
		Currency:    req.Currency,
		Source:      p.Flights.Name(),
		Windows:     []WindowOutcome{},
		GeneratedAt: time.Now().UTC(),
	}

	windows := planner.Collect(req.Policy.Windows(req.StartDate, req.EndDate))
	if len(windows) == 0 {
		log.Printf("⚠️  no %s windows between %s and %s, searching the range itself", req.Policy.Kind, res.StartDate, res.EndDate)
		windows = []planner.DateWindow{planner.NewDateWindow(req.StartDate, req.EndDate)}
		res.FallbackWindow = true
	}

	var collected [][]planner.FlightRecord
	var metrics []planner.PriceMetric
	trends := p.Trends
	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dep := planner.DateKey(w.DepartureDate)
		q := FlightQuery{
			Origin:        req.Origin,
			Destination:   req.Destination,
			DepartureDate: dep,
			Adults:        req.Adults,
			Currency:      req.Currency,
		}
		if !w.OneWay() {
			q.ReturnDate = planner.DateKey(w.ReturnDate)
		}

		outcome := WindowOutcome{Window: w}
		flights, err := p.Flights.SearchFlights(ctx, q)
		if err != nil {
			log.Printf("⚠️  %s flight search for %s failed: %v", p.Flights.Name(), w, err)
			outcome.Error = err.Error()
		} else {
			sourceKey := fmt.Sprintf("%s_%s_%s", req.Origin, req.Destination, dep)
			for i := range flights {
				flights[i].SearchDate = dep
				flights[i].SearchKey = sourceKey
			}
			outcome.Flights = len(flights)
			collected = append(collected, flights)
		}
		res.Windows = append(res.Windows, outcome)

		if trends == nil {
			continue
		}
		m, err := trends.PriceMetrics(ctx, req.Origin, req.Destination, dep)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				trends = nil
				continue
			}
			log.Printf("⚠️  price metrics for %s failed: %v", dep, err)
			continue
		}
		metrics = append(metrics, m...)
	}

	res.Cheapest = planner.SelectCheapest(planner.SelectOptions{N: req.TopN, Dedupe: req.Dedupe}, collected...)

	var all []planner.FlightRecord
	for _, c := range collected {
		all = append(all, c...)
	}
	res.FlightTrends = planner.AnalyzeFlights(all)
	res.CheapestDates = planner.CheapestDates(all, planner.DefaultCheapestDates)

	var samples []planner.WeatherSample
	if p.Weather != nil {
		samples, err = p.Weather.HistoricalWeather(ctx, req.Place, req.StartDate, req.EndDate)
		if err != nil {
			log.Printf("⚠️  weather for %s unavailable: %v", req.Place, err)
			res.WeatherError = err.Error()
		} else {
			summary := planner.SummarizeWeather(samples)
			res.Weather = &summary
		}
	}

	res.Bundles = planner.Join(res.Cheapest, samples, metrics, p.Evaluator)
	log.Printf("✅ plan %s→%s: %d windows, %d flights, %d bundles",
		req.Origin, req.Destination, len(res.Windows), len(all), len(res.Bundles))
	return res, nil
}

// ChooseFlightSource returns the first configured source, or estimated flights.
func ChooseFlightSource(sources ...FlightSource) FlightSource {
	for _, s := range sources {
		if s == nil {
			continue
		}
		if c, ok := s.(interface{ Configured() bool }); ok && !c.Configured() {
			continue
		}
		return s
	}
	return EstimatedFlights{}
}
