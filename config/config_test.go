package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripwindow/planner"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, planner.DefaultCheapestN, cfg.Planner.TopN)
	assert.Equal(t, planner.DefaultExcellentFactor, cfg.Planner.ExcellentFactor)
	assert.Equal(t, planner.PolicyWeekend, cfg.Planner.Policy.Kind)
	assert.Equal(t, 5, cfg.Weather.Years)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9000"
database:
  driver: postgres
  url: postgres://u:p@db:5432/trips
planner:
  top_n: 5
  dedupe: true
  policy:
    kind: long_weekend
    monday_included: false
schedule:
  watch_cron: "0 0 6 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("PORT", "9100")
	t.Setenv("TOP_N", "")
	t.Setenv("FRONTEND_URL", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.FrontendURLs)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/trips", cfg.PostgresDSN())
	assert.Equal(t, 5, cfg.Planner.TopN)
	assert.True(t, cfg.Planner.Dedupe)
	assert.Equal(t, planner.PolicyLongWeekend, cfg.Planner.Policy.Kind)
	require.NotNil(t, cfg.Planner.Policy.MondayIncluded)
	assert.False(t, *cfg.Planner.Policy.MondayIncluded)
	assert.Nil(t, cfg.Planner.Policy.ThursdayIncluded)
	assert.Equal(t, "0 0 6 * * *", cfg.Schedule.WatchCron)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = "http" }},
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"top n", func(c *Config) { c.Planner.TopN = -1 }},
		{"factor", func(c *Config) { c.Planner.ExcellentFactor = -0.5 }},
		{"policy", func(c *Config) { c.Planner.Policy.Kind = "fortnight" }},
		{"weather years", func(c *Config) { c.Weather.Years = -3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPostgresDSN_Fields(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=tripwindow sslmode=disable", cfg.PostgresDSN())
}

func TestPath(t *testing.T) {
	t.Setenv("TRIPWINDOW_CONFIG", "")
	assert.Equal(t, DefaultPath, Path(""))
	assert.Equal(t, "x.yaml", Path("x.yaml"))
	t.Setenv("TRIPWINDOW_CONFIG", "/etc/tripwindow.yaml")
	assert.Equal(t, "/etc/tripwindow.yaml", Path(""))
}
