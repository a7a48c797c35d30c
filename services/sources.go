package services

import (
	"context"
	"errors"
	"time"

	"tripwindow/planner"
)

var (
	ErrNotConfigured = errors.New("not configured")
	ErrUpstream      = errors.New("upstream error")
	ErrRateLimited   = errors.New("rate limited")
	ErrCircuitOpen   = errors.New("circuit breaker open")
	ErrPlaceNotFound = errors.New("place not found")
)

// FlightQuery is one flight search for one window.
type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	// ReturnDate is empty for one-way searches.
	ReturnDate string
	Adults     int
	Currency   string
}

// FlightSource searches flights for a single window.
type FlightSource interface {
	Name() string
	SearchFlights(ctx context.Context, q FlightQuery) ([]planner.FlightRecord, error)
}

// WeatherSource returns per-day historical samples for the same calendar
// range in past years.
type WeatherSource interface {
	HistoricalWeather(ctx context.Context, place string, start, end time.Time) ([]planner.WeatherSample, error)
}

// PriceTrendSource returns the historical price quartiles for one departure date.
type PriceTrendSource interface {
	PriceMetrics(ctx context.Context, origin, destination, departureDate string) ([]planner.PriceMetric, error)
}
