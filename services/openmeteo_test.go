package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticGeocoder struct {
	loc Location
	err error
}

func (g staticGeocoder) Geocode(context.Context, string) (Location, error) { return g.loc, g.err }

func TestOpenMeteoClient_HistoricalWeather(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		seen = append(seen, q.Get("start_date")+".."+q.Get("end_date"))
		assert.Equal(t, "Europe/Paris", q.Get("timezone"))
		assert.Equal(t, "48.8566", q.Get("latitude"))
		if q.Get("start_date") == "2022-03-07" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		year := q.Get("start_date")[:4]
		fmt.Fprintf(w, `{"daily":{
			"time":["%[1]s-03-07","%[1]s-03-08"],
			"temperature_2m_max":[12.5,null],
			"temperature_2m_min":[3.1,4.0],
			"precipitation_sum":[0.0,1.2]}}`, year)
	}))
	defer srv.Close()

	geo := staticGeocoder{loc: Location{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522, Timezone: "Europe/Paris"}}
	c := NewOpenMeteoClient(srv.URL, 3, geo, srv.Client())
	c.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	samples, err := c.HistoricalWeather(context.Background(), "Paris",
		time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-03-07..2024-03-08", "2023-03-07..2023-03-08", "2022-03-07..2022-03-08"}, seen)
	require.Len(t, samples, 4)
	assert.Equal(t, 2024, samples[0].Year)
	require.NotNil(t, samples[0].TemperatureMax)
	assert.Equal(t, 12.5, *samples[0].TemperatureMax)
	assert.Nil(t, samples[1].TemperatureMax)
	assert.Equal(t, "2023-03-08", samples[3].Date)
}

func TestOpenMeteoClient_AllYearsFail(t *testing.T) {
	srv := statusServer(t, http.StatusBadRequest)
	c := NewOpenMeteoClient(srv.URL, 2, staticGeocoder{loc: Location{Timezone: "UTC"}}, srv.Client())

	_, err := c.HistoricalWeather(context.Background(), "Nowhere", time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestOpenMeteoClient_GeocodeFailure(t *testing.T) {
	c := NewOpenMeteoClient("http://unused", 2, staticGeocoder{err: ErrPlaceNotFound}, nil)
	_, err := c.HistoricalWeather(context.Background(), "Atlantis", time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrPlaceNotFound)
}

func TestShiftYear(t *testing.T) {
	leap := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), shiftYear(leap, 2023))
	assert.Equal(t, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), shiftYear(leap, 2020))
	assert.True(t, isLeap(2000))
	assert.False(t, isLeap(1900))
}

func TestOpenMeteoGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "Atlantis" {
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprint(w, `{"results":[{"name":"Lisbon","latitude":38.72,"longitude":-9.13,"timezone":"Europe/Lisbon"}]}`)
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(srv.URL, srv.Client())
	loc, err := g.Geocode(context.Background(), "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, Location{Name: "Lisbon", Latitude: 38.72, Longitude: -9.13, Timezone: "Europe/Lisbon"}, loc)

	_, err = g.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrPlaceNotFound)
}

func TestFallbackGeocoder(t *testing.T) {
	want := Location{Name: "Rome", Timezone: "auto"}
	f := FallbackGeocoder{
		staticGeocoder{err: errors.New("boom")},
		staticGeocoder{loc: want},
	}
	got, err := f.Geocode(context.Background(), "Rome")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = FallbackGeocoder{}.Geocode(context.Background(), "Rome")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewGoogleGeocoder("").Geocode(context.Background(), "Rome")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
