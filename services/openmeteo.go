package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"tripwindow/planner"
)

// OpenMeteoArchiveURL is the Open-Meteo historical weather endpoint.
const OpenMeteoArchiveURL = "https://archive-api.open-meteo.com/v1/archive"

// DefaultWeatherYears is how many past years are sampled.
const DefaultWeatherYears = 5

// OpenMeteoClient is a WeatherSource backed by the Open-Meteo archive.
type OpenMeteoClient struct {
	baseURL    string
	years      int
	geocoder   Geocoder
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	now        func() time.Time
}

func NewOpenMeteoClient(baseURL string, years int, geo Geocoder, httpClient *http.Client) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = OpenMeteoArchiveURL
	}
	if years < 1 {
		years = DefaultWeatherYears
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if geo == nil {
		geo = NewOpenMeteoGeocoder("", httpClient)
	}
	return &OpenMeteoClient{
		baseURL:    baseURL,
		years:      years,
		geocoder:   geo,
		httpClient: httpClient,
		breaker:    newBreaker("openmeteo-archive"),
		now:        time.Now,
	}
}

// HistoricalWeather resolves place and fetches the same month/day range for
// each of the past years. Years that fail are skipped; it errors only when
// every year fails.
func (c *OpenMeteoClient) HistoricalWeather(ctx context.Context, place string, start, end time.Time) ([]planner.WeatherSample, error) {
	if end.Before(start) {
		start, end = end, start
	}
	loc, err := c.geocoder.Geocode(ctx, place)
	if err != nil {
		return nil, err
	}

	current := c.now().Year()
	var samples []planner.WeatherSample
	fetched := 0
	for offset := 1; offset <= c.years; offset++ {
		year := current - offset
		from := shiftYear(start, year)
		// A range crossing New Year ends in the following year.
		to := shiftYear(end, year+end.Year()-start.Year())

		got, err := c.fetchRange(ctx, loc, from, to, year)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("⚠️  weather for %s in %d unavailable: %v", place, year, err)
			continue
		}
		fetched++
		samples = append(samples, got...)
	}
	if fetched == 0 {
		return nil, fmt.Errorf("%w: no weather data for %s in the past %d years", ErrUpstream, place, c.years)
	}
	return samples, nil
}

// shiftYear moves t into year, clamping Feb 29 to Feb 28 in non-leap years.
func shiftYear(t time.Time, year int) time.Time {
	day := t.Day()
	if t.Month() == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, t.Month(), day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

type archiveResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
	Daily  struct {
		Time             []string   `json:"time"`
		TemperatureMax   []*float64 `json:"temperature_2m_max"`
		TemperatureMin   []*float64 `json:"temperature_2m_min"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

func (c *OpenMeteoClient) fetchRange(ctx context.Context, loc Location, from, to time.Time, year int) ([]planner.WeatherSample, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	q.Set("start_date", planner.DateKey(from))
	q.Set("end_date", planner.DateKey(to))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum")
	q.Set("timezone", loc.Timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	body, err := fetch(c.breaker, c.httpClient, req)
	if err != nil {
		return nil, err
	}

	var resp archiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse archive response: %w", err)
	}
	if resp.Error {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, resp.Reason)
	}

	d := resp.Daily
	out := make([]planner.WeatherSample, 0, len(d.Time))
	for i, date := range d.Time {
		out = append(out, planner.WeatherSample{
			Date:           date,
			TemperatureMax: at(d.TemperatureMax, i),
			TemperatureMin: at(d.TemperatureMin, i),
			Precipitation:  at(d.PrecipitationSum, i),
			Year:           year,
		})
	}
	return out, nil
}

func at(vs []*float64, i int) *float64 {
	if i < len(vs) {
		return vs[i]
	}
	return nil
}
