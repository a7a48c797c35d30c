package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripwindow/planner"
)

const serpBody = `{
  "best_flights": [{
    "price": 412,
    "total_duration": 545,
    "booking_token": "tok-best",
    "flights": [
      {"departure_airport": {"name": "John F. Kennedy International Airport", "id": "JFK", "time": "2025-03-07 08:00"},
       "arrival_airport": {"name": "Chicago O'Hare International Airport", "id": "ORD", "time": "2025-03-07 10:00"},
       "airline": "American", "flight_number": "AA 100"},
      {"departure_airport": {"name": "Chicago O'Hare International Airport", "id": "ORD", "time": "2025-03-07 11:30"},
       "arrival_airport": {"name": "Los Angeles International Airport", "id": "LAX", "time": "2025-03-07 14:05"},
       "airline": "American", "flight_number": "AA 200"}
    ],
    "layovers": [{"name": "Chicago O'Hare International Airport", "id": "ORD", "duration": 90}]
  }],
  "other_flights": [{
    "total_duration": 330,
    "flights": [
      {"departure_airport": {"name": "John F. Kennedy International Airport", "id": "JFK", "time": "2025-03-07 09:00"},
       "arrival_airport": {"name": "Los Angeles International Airport", "id": "LAX", "time": "2025-03-07 12:30"},
       "airline": "Delta", "flight_number": "DL 5"}
    ]
  }],
  "price_insights": {"lowest_price": 412, "price_level": "typical", "typical_price_range": [380, 520]}
}`

func TestParseSerpResults(t *testing.T) {
	fq := FlightQuery{Origin: "JFK", Destination: "LAX", DepartureDate: "2025-03-07", ReturnDate: "2025-03-09"}
	flights, err := parseSerpResults([]byte(serpBody), fq, "USD")
	require.NoError(t, err)
	require.Len(t, flights, 2)

	best := flights[0]
	assert.Equal(t, "American", best.Airline)
	assert.Equal(t, "AA 100", best.FlightNumber)
	assert.Equal(t, "John F. Kennedy International Airport (JFK)", best.OriginAirport)
	assert.Equal(t, "Los Angeles International Airport (LAX)", best.DestinationAirport)
	assert.Equal(t, "2025-03-07 14:05", best.ArrivalTime)
	assert.Equal(t, []string{"Chicago O'Hare International Airport (ORD) - 1h 30m"}, best.Layovers)
	assert.Equal(t, "tok-best", best.BookingToken)
	assert.Equal(t, "2025-03-09", best.ReturnDate)
	require.NotNil(t, best.Insights)
	assert.Equal(t, "typical", best.Insights.PriceLevel)
	assert.Equal(t, 412.0, planner.NormalizePrice(best.Price))

	other := flights[1]
	assert.Equal(t, "Delta", other.Airline)
	assert.Equal(t, "N/A", other.Price)
	assert.Empty(t, other.Layovers)
	assert.False(t, planner.IsPriced(planner.NormalizePrice(other.Price)))
}

func TestParseSerpResults_Error(t *testing.T) {
	_, err := parseSerpResults([]byte(`{"error":"Invalid API key."}`), FlightQuery{}, "USD")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = parseSerpResults([]byte(`not json`), FlightQuery{}, "USD")
	assert.Error(t, err)
}

func TestSerpAPIClient_OneWaySetsType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "google_flights", q.Get("engine"))
		assert.Equal(t, "2", q.Get("type"))
		assert.Empty(t, q.Get("return_date"))
		assert.Equal(t, "EUR", q.Get("currency"))
		assert.Equal(t, "key", q.Get("api_key"))
		fmt.Fprint(w, `{"best_flights":[],"other_flights":[]}`)
	}))
	defer srv.Close()

	c := NewSerpAPIClient(srv.URL, "key", "EUR", "", srv.Client())
	flights, err := c.SearchFlights(context.Background(), FlightQuery{Origin: "JFK", Destination: "LAX", DepartureDate: "2025-03-07"})
	require.NoError(t, err)
	assert.NotNil(t, flights)
	assert.Empty(t, flights)
}

func TestSerpAPIClient_NotConfigured(t *testing.T) {
	c := NewSerpAPIClient("", "", "", "", nil)
	_, err := c.SearchFlights(context.Background(), FlightQuery{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFormatLayover(t *testing.T) {
	assert.Equal(t, "Unknown (N/A) - 0h 45m", formatLayover(" ", "", 45))
	assert.Equal(t, "Dubai (DXB) - 2h 5m", formatLayover("Dubai", "DXB", 125))
}
