package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripwindow/config"
	"tripwindow/database"
	"tripwindow/planner"
	"tripwindow/services"
)

func setupDB(t *testing.T) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = ":memory:"
	require.NoError(t, database.InitDB(cfg))
	t.Cleanup(func() { database.DB.Close() })
}

func saveSearch(t *testing.T, id, start string, watch bool, created time.Time) {
	t.Helper()
	require.NoError(t, database.SaveSearch(&database.Search{
		ID: id, Origin: "JFK", Destination: "MIA", Place: "Miami",
		StartDate: start, EndDate: "2025-03-20",
		Policy: planner.Policy{Kind: planner.PolicyWeekend}, TopN: 2,
		Watch: watch, CreatedAt: created,
	}))
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), &services.TripPlanner{Flights: services.EstimatedFlights{}})
	require.NoError(t, s.RegisterAll("0 0 6 * * *", "0 30 3 * * *", 90))
	assert.Len(t, s.Cron.Entries(), 2)
	assert.Equal(t, 90*24*time.Hour, s.Retention)

	s = NewScheduler(context.Background(), nil)
	require.NoError(t, s.RegisterAll("", "0 30 3 * * *", 0))
	assert.Empty(t, s.Cron.Entries())

	s = NewScheduler(context.Background(), nil)
	assert.Error(t, s.RegisterAll("every morning", "", 0))
}

func TestRunWatchesNow(t *testing.T) {
	setupDB(t)
	saveSearch(t, "watched", "2025-03-01", true, time.Now())
	saveSearch(t, "broken", "not-a-date", true, time.Now())
	saveSearch(t, "idle", "2025-03-01", false, time.Now())

	s := NewScheduler(context.Background(), &services.TripPlanner{Flights: services.EstimatedFlights{}})
	n, err := s.RunWatchesNow()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	plan, err := database.GetLatestPlanBySearchID("watched")
	require.NoError(t, err)
	res, err := services.DecodePlan(plan)
	require.NoError(t, err)
	assert.Len(t, res.Cheapest, 2)
	assert.Equal(t, "Miami", res.Place)

	_, err = database.GetLatestPlanBySearchID("idle")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestPruneNow(t *testing.T) {
	setupDB(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	saveSearch(t, "old", "2025-03-01", false, now.AddDate(0, 0, -40))
	saveSearch(t, "recent", "2025-03-01", false, now.AddDate(0, 0, -2))

	s := NewScheduler(context.Background(), nil)
	s.now = func() time.Time { return now }
	require.NoError(t, s.RegisterAll("", "@daily", 30))

	n, err := s.PruneNow()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = database.GetSearch("old")
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = database.GetSearch("recent")
	assert.NoError(t, err)
}
