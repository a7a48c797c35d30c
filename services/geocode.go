package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
)

// OpenMeteoGeocodingURL is the Open-Meteo place search endpoint.
const OpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// Location is a resolved place.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (Location, error)
}

// OpenMeteoGeocoder uses the keyless Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(baseURL string, httpClient *http.Client) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = OpenMeteoGeocodingURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &OpenMeteoGeocoder{baseURL: baseURL, httpClient: httpClient, breaker: newBreaker("openmeteo-geocoding")}
}

func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, place string) (Location, error) {
	q := url.Values{}
	q.Set("name", place)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Location{}, err
	}
	body, err := fetch(g.breaker, g.httpClient, req)
	if err != nil {
		return Location{}, fmt.Errorf("geocoding %q failed: %w", place, err)
	}

	var resp struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Timezone  string  `json:"timezone"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Location{}, fmt.Errorf("failed to parse geocoding response: %w", err)
	}
	if len(resp.Results) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrPlaceNotFound, place)
	}
	r := resp.Results[0]
	tz := r.Timezone
	if tz == "" {
		tz = "UTC"
	}
	return Location{Name: r.Name, Latitude: r.Latitude, Longitude: r.Longitude, Timezone: tz}, nil
}

// googleMu guards the geocoder package's global API key.
var googleMu sync.Mutex

// GoogleGeocoder resolves places through the Google Geocoding API. It has no
// timezone information, so archive queries use timezone=auto.
type GoogleGeocoder struct {
	apiKey string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, place string) (Location, error) {
	if g.apiKey == "" {
		return Location{}, fmt.Errorf("google geocoder: %w", ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}

	city, country := place, ""
	if i := strings.LastIndex(place, ","); i >= 0 {
		city, country = strings.TrimSpace(place[:i]), strings.TrimSpace(place[i+1:])
	}

	googleMu.Lock()
	geocoder.ApiKey = g.apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	googleMu.Unlock()
	if err != nil {
		return Location{}, fmt.Errorf("google geocoding %q failed: %w", place, err)
	}
	return Location{Name: place, Latitude: loc.Latitude, Longitude: loc.Longitude, Timezone: "auto"}, nil
}

// FallbackGeocoder tries each geocoder in order and returns the first success.
type FallbackGeocoder []Geocoder

func (f FallbackGeocoder) Geocode(ctx context.Context, place string) (Location, error) {
	err := fmt.Errorf("%w: no geocoder", ErrNotConfigured)
	for _, g := range f {
		var loc Location
		if loc, err = g.Geocode(ctx, place); err == nil {
			return loc, nil
		}
	}
	return Location{}, err
}
