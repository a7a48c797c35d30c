package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"tripwindow/planner"
)

// Amadeus hosts.
const (
	AmadeusTestURL       = "https://test.api.amadeus.com"
	AmadeusProductionURL = "https://api.amadeus.com"
)

// AmadeusBaseURL picks the host for an AMADEUS_ENV value. Anything other than
// "prod"/"production" uses the free test environment.
func AmadeusBaseURL(env string) string {
	switch strings.ToLower(env) {
	case "prod", "production":
		return AmadeusProductionURL
	}
	return AmadeusTestURL
}

// ─── Amadeus Client ───────────────────────────────────────────────────────────

// AmadeusClient is both a FlightSource (flight offers) and a PriceTrendSource
// (itinerary price metrics).
type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	currency     string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
	breaker      *gobreaker.CircuitBreaker
}

// NewAmadeusClient returns a client for baseURL. A nil httpClient gets a 30s timeout.
func NewAmadeusClient(baseURL, clientID, clientSecret, currency string, httpClient *http.Client) *AmadeusClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if currency == "" {
		currency = planner.DefaultCurrency
	}
	return &AmadeusClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		currency:     currency,
		httpClient:   httpClient,
		breaker:      newBreaker("amadeus"),
	}
}

// Configured reports whether credentials are present.
func (c *AmadeusClient) Configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

func (c *AmadeusClient) Name() string { return "amadeus" }

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := fetch(c.breaker, c.httpClient, req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrUpstream)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return result.AccessToken, nil
}

func (c *AmadeusClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		return c.refreshToken(ctx)
	}
	return token, nil
}

func (c *AmadeusClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("amadeus: %w", ErrNotConfigured)
	}
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	return fetch(c.breaker, c.httpClient, req)
}

// ─── Price Metrics ────────────────────────────────────────────────────────────

type amadeusPriceMetricsResponse struct {
	Data []struct {
		DepartureDate string `json:"departureDate"`
		CurrencyCode  string `json:"currencyCode"`
		PriceMetrics  []struct {
			Amount          string `json:"amount"`
			QuartileRanking string `json:"quartileRanking"`
		} `json:"priceMetrics"`
	} `json:"data"`
}

// PriceMetrics fetches the historical price quartiles for a round trip
// departing on departureDate.
func (c *AmadeusClient) PriceMetrics(ctx context.Context, origin, destination, departureDate string) ([]planner.PriceMetric, error) {
	q := url.Values{}
	q.Set("originIataCode", origin)
	q.Set("destinationIataCode", destination)
	q.Set("departureDate", departureDate)
	q.Set("currencyCode", c.currency)
	q.Set("oneWay", "false")

	body, err := c.get(ctx, "/v1/analytics/itinerary-price-metrics", q)
	if err != nil {
		return nil, fmt.Errorf("price metrics failed: %w", err)
	}
	return parsePriceMetrics(body)
}

func parsePriceMetrics(data []byte) ([]planner.PriceMetric, error) {
	var resp amadeusPriceMetricsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse price metrics: %w", err)
	}

	var out []planner.PriceMetric
	for _, item := range resp.Data {
		if item.DepartureDate == "" {
			continue
		}
		currency := item.CurrencyCode
		if currency == "" {
			currency = planner.DefaultCurrency
		}
		for _, m := range item.PriceMetrics {
			amount, err := strconv.ParseFloat(m.Amount, 64)
			if err != nil || m.QuartileRanking == "" {
				continue
			}
			out = append(out, planner.PriceMetric{
				DepartureDate: item.DepartureDate,
				Currency:      currency,
				Ranking:       planner.QuartileRanking(strings.ToUpper(m.QuartileRanking)),
				Amount:        amount,
			})
		}
	}
	return out, nil
}

// ─── Flight Search ────────────────────────────────────────────────────────────

// SearchFlights searches flight offers via the Amadeus Flight Offers Search API.
func (c *AmadeusClient) SearchFlights(ctx context.Context, fq FlightQuery) ([]planner.FlightRecord, error) {
	adults := fq.Adults
	if adults <= 0 {
		adults = 1
	}
	currency := fq.Currency
	if currency == "" {
		currency = c.currency
	}

	q := url.Values{}
	q.Set("originLocationCode", fq.Origin)
	q.Set("destinationLocationCode", fq.Destination)
	q.Set("departureDate", fq.DepartureDate)
	if fq.ReturnDate != "" {
		q.Set("returnDate", fq.ReturnDate)
	}
	q.Set("adults", strconv.Itoa(adults))
	q.Set("max", "10")
	q.Set("currencyCode", currency)

	body, err := c.get(ctx, "/v2/shopping/flight-offers", q)
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}
	return parseFlightOffers(body, fq)
}

type amadeusSegment struct {
	Departure struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
	Number      string `json:"number"`
}

type amadeusFlightOffersResponse struct {
	Data []struct {
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Currency   string `json:"currency"`
		} `json:"price"`
		Itineraries []struct {
			Duration string           `json:"duration"`
			Segments []amadeusSegment `json:"segments"`
		} `json:"itineraries"`
		ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
	} `json:"data"`
}

func parseFlightOffers(data []byte, fq FlightQuery) ([]planner.FlightRecord, error) {
	var resp amadeusFlightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	flights := make([]planner.FlightRecord, 0, len(resp.Data))
	for _, offer := range resp.Data {
		if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
			continue
		}
		outbound := offer.Itineraries[0]
		first := outbound.Segments[0]
		last := outbound.Segments[len(outbound.Segments)-1]

		airlineCode := first.CarrierCode
		if airlineCode == "" && len(offer.ValidatingAirlineCodes) > 0 {
			airlineCode = offer.ValidatingAirlineCodes[0]
		}

		layovers := make([]string, 0, len(outbound.Segments)-1)
		for i := 0; i+1 < len(outbound.Segments); i++ {
			layovers = append(layovers, layoverBetween(outbound.Segments[i], outbound.Segments[i+1]))
		}

		flights = append(flights, planner.FlightRecord{
			Airline:            airlineName(airlineCode),
			FlightNumber:       airlineCode + first.Number,
			Price:              offer.Price.GrandTotal,
			Currency:           offer.Price.Currency,
			DepartureTime:      first.Departure.At,
			ArrivalTime:        last.Arrival.At,
			DurationMinutes:    isoDurationMinutes(outbound.Duration),
			Layovers:           layovers,
			OriginAirport:      first.Departure.IataCode,
			DestinationAirport: last.Arrival.IataCode,
			ReturnDate:         fq.ReturnDate,
			Provider:           "amadeus",
		})
	}
	return flights, nil
}

const amadeusTimeLayout = "2006-01-02T15:04:05"

func layoverBetween(in, out amadeusSegment) string {
	arr, err1 := time.Parse(amadeusTimeLayout, in.Arrival.At)
	dep, err2 := time.Parse(amadeusTimeLayout, out.Departure.At)
	if err1 != nil || err2 != nil {
		return in.Arrival.IataCode
	}
	return formatLayover(in.Arrival.IataCode, in.Arrival.IataCode, int(dep.Sub(arr).Minutes()))
}

// isoDurationMinutes converts an ISO 8601 duration such as PT5H30M to minutes.
func isoDurationMinutes(iso string) int {
	iso = strings.TrimPrefix(iso, "PT")
	if iso == "" {
		return 0
	}
	d, err := time.ParseDuration(strings.ToLower(iso))
	if err != nil {
		return 0
	}
	return int(d.Minutes())
}

// airlineName returns full airline name from IATA code
func airlineName(code string) string {
	names := map[string]string{
		"TK": "Turkish Airlines",
		"LH": "Lufthansa",
		"AF": "Air France",
		"BA": "British Airways",
		"EK": "Emirates",
		"QR": "Qatar Airways",
		"FR": "Ryanair",
		"U2": "EasyJet",
		"W6": "Wizz Air",
		"FZ": "FlyDubai",
		"UA": "United Airlines",
		"AA": "American Airlines",
		"DL": "Delta Air Lines",
		"B6": "JetBlue",
		"WN": "Southwest Airlines",
		"AS": "Alaska Airlines",
		"KL": "KLM",
		"IB": "Iberia",
		"LX": "Swiss International Air Lines",
		"SQ": "Singapore Airlines",
		"NH": "ANA",
		"JL": "Japan Airlines",
	}
	if name, ok := names[code]; ok {
		return name
	}
	if code != "" {
		return code + " Airlines"
	}
	return "Unknown Airline"
}
