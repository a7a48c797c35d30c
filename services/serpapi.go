package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"tripwindow/planner"
)

// SerpAPIURL is the SerpAPI search endpoint.
const SerpAPIURL = "https://serpapi.com/search.json"

// SerpAPIClient searches Google Flights through SerpAPI.
type SerpAPIClient struct {
	apiKey     string
	baseURL    string
	currency   string
	locale     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewSerpAPIClient(baseURL, apiKey, currency, locale string, httpClient *http.Client) *SerpAPIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if baseURL == "" {
		baseURL = SerpAPIURL
	}
	if currency == "" {
		currency = planner.DefaultCurrency
	}
	if locale == "" {
		locale = "en"
	}
	return &SerpAPIClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		currency:   currency,
		locale:     locale,
		httpClient: httpClient,
		breaker:    newBreaker("serpapi"),
	}
}

func (c *SerpAPIClient) Name() string { return "serpapi" }

// Configured reports whether an API key is present.
func (c *SerpAPIClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

type serpAirport struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

type serpFlight struct {
	Price         any    `json:"price"`
	TotalDuration int    `json:"total_duration"`
	Airline       string `json:"airline"`
	BookingToken  string `json:"booking_token"`
	Flights       []struct {
		DepartureAirport serpAirport `json:"departure_airport"`
		ArrivalAirport   serpAirport `json:"arrival_airport"`
		Airline          string      `json:"airline"`
		FlightNumber     string      `json:"flight_number"`
	} `json:"flights"`
	Layovers []struct {
		Name     string `json:"name"`
		ID       string `json:"id"`
		Duration int    `json:"duration"`
	} `json:"layovers"`
}

type serpResponse struct {
	Error         string       `json:"error"`
	BestFlights   []serpFlight `json:"best_flights"`
	OtherFlights  []serpFlight `json:"other_flights"`
	PriceInsights *struct {
		LowestPrice       any       `json:"lowest_price"`
		PriceLevel        string    `json:"price_level"`
		TypicalPriceRange []float64 `json:"typical_price_range"`
	} `json:"price_insights"`
}

// SearchFlights runs one google_flights search. A one-way query sets type=2.
func (c *SerpAPIClient) SearchFlights(ctx context.Context, fq FlightQuery) ([]planner.FlightRecord, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("serpapi: %w", ErrNotConfigured)
	}
	currency := fq.Currency
	if currency == "" {
		currency = c.currency
	}

	q := url.Values{}
	q.Set("engine", "google_flights")
	q.Set("departure_id", fq.Origin)
	q.Set("arrival_id", fq.Destination)
	q.Set("outbound_date", fq.DepartureDate)
	q.Set("currency", currency)
	q.Set("hl", c.locale)
	q.Set("api_key", c.apiKey)
	if fq.ReturnDate != "" {
		q.Set("return_date", fq.ReturnDate)
	} else {
		q.Set("type", "2")
	}
	if fq.Adults > 1 {
		q.Set("adults", fmt.Sprint(fq.Adults))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	body, err := fetch(c.breaker, c.httpClient, req)
	if err != nil {
		return nil, fmt.Errorf("serpapi search failed: %w", err)
	}
	return parseSerpResults(body, fq, currency)
}

func parseSerpResults(data []byte, fq FlightQuery, currency string) ([]planner.FlightRecord, error) {
	var resp serpResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse serpapi response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, resp.Error)
	}

	var insights *planner.PriceInsights
	if resp.PriceInsights != nil {
		insights = &planner.PriceInsights{
			LowestPrice:       resp.PriceInsights.LowestPrice,
			PriceLevel:        resp.PriceInsights.PriceLevel,
			TypicalPriceRange: resp.PriceInsights.TypicalPriceRange,
		}
	}

	all := append(resp.BestFlights, resp.OtherFlights...)
	flights := make([]planner.FlightRecord, 0, len(all))
	for _, f := range all {
		rec := planner.FlightRecord{
			Airline:         f.Airline,
			Price:           f.Price,
			Currency:        currency,
			DurationMinutes: f.TotalDuration,
			Layovers:        make([]string, 0, len(f.Layovers)),
			ReturnDate:      fq.ReturnDate,
			BookingToken:    f.BookingToken,
			Insights:        insights,
			Provider:        "serpapi",
		}
		if rec.Price == nil {
			rec.Price = "N/A"
		}
		if len(f.Flights) > 0 {
			first, last := f.Flights[0], f.Flights[len(f.Flights)-1]
			rec.DepartureTime = first.DepartureAirport.Time
			rec.ArrivalTime = last.ArrivalAirport.Time
			rec.OriginAirport = airportLabel(first.DepartureAirport)
			rec.DestinationAirport = airportLabel(last.ArrivalAirport)
			rec.FlightNumber = first.FlightNumber
			if rec.Airline == "" {
				rec.Airline = first.Airline
			}
		}
		if rec.Airline == "" {
			rec.Airline = "Unknown"
		}
		for _, l := range f.Layovers {
			rec.Layovers = append(rec.Layovers, formatLayover(l.Name, l.ID, l.Duration))
		}
		flights = append(flights, rec)
	}
	return flights, nil
}

func airportLabel(a serpAirport) string {
	return fmt.Sprintf("%s (%s)", orNA(a.Name), orNA(a.ID))
}

// formatLayover renders "name (id) - Xh Ym".
func formatLayover(name, id string, minutes int) string {
	if strings.TrimSpace(name) == "" {
		name = "Unknown"
	}
	return fmt.Sprintf("%s (%s) - %dh %dm", name, orNA(id), minutes/60, minutes%60)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
