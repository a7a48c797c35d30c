package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tripwindow/planner"
)

// DefaultPath is read when neither --config nor TRIPWINDOW_CONFIG is set.
const DefaultPath = "config.yaml"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port         string   `yaml:"port"`
		GinMode      string   `yaml:"gin_mode"`
		FrontendURLs []string `yaml:"frontend_urls"`
	} `yaml:"server"`
	Database struct {
		Driver     string `yaml:"driver"`
		URL        string `yaml:"url"`
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		User       string `yaml:"user"`
		Password   string `yaml:"password"`
		Name       string `yaml:"name"`
		SSLMode    string `yaml:"sslmode"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Amadeus struct {
		Env          string `yaml:"env"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
	} `yaml:"amadeus"`
	SerpAPI struct {
		APIKey   string `yaml:"api_key"`
		Currency string `yaml:"currency"`
		Locale   string `yaml:"locale"`
	} `yaml:"serpapi"`
	Weather struct {
		Years           int    `yaml:"years"`
		GoogleGeocoding string `yaml:"google_geocoding_api_key"`
	} `yaml:"weather"`
	Planner struct {
		TopN            int            `yaml:"top_n"`
		Dedupe          bool           `yaml:"dedupe"`
		ExcellentFactor float64        `yaml:"excellent_factor"`
		Currency        string         `yaml:"currency"`
		Policy          planner.Policy `yaml:"policy"`
	} `yaml:"planner"`
	Schedule struct {
		WatchCron     string `yaml:"watch_cron"`
		PruneCron     string `yaml:"prune_cron"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"schedule"`
}

// Path resolves the config file location from a flag value and the environment.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("TRIPWINDOW_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads .env, then the YAML file at path, then environment overrides,
// then fills defaults. A missing .env or YAML file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using environment variables")
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.GinMode, "GIN_MODE")
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				c.Server.FrontendURLs = append(c.Server.FrontendURLs, u)
			}
		}
	}

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")
	setString(&c.Database.SQLitePath, "SQLITE_PATH")

	setString(&c.Amadeus.Env, "AMADEUS_ENV")
	setString(&c.Amadeus.ClientID, "AMADEUS_CLIENT_ID")
	setString(&c.Amadeus.ClientSecret, "AMADEUS_CLIENT_SECRET")

	setString(&c.SerpAPI.APIKey, "SERPAPI_KEY")
	setString(&c.Weather.GoogleGeocoding, "GOOGLE_GEOCODING_API_KEY")
	setInt(&c.Weather.Years, "WEATHER_YEARS")

	setInt(&c.Planner.TopN, "TOP_N")
	if v := os.Getenv("DEDUPE_FLIGHTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Planner.Dedupe = b
		}
	}
	if v := os.Getenv("EXCELLENT_FACTOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Planner.ExcellentFactor = f
		}
	}
	setString(&c.Planner.Currency, "CURRENCY")

	setString(&c.Schedule.WatchCron, "WATCH_CRON")
	setString(&c.Schedule.PruneCron, "PRUNE_CRON")
	setInt(&c.Schedule.RetentionDays, "HISTORY_RETENTION_DAYS")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if len(c.Server.FrontendURLs) == 0 {
		c.Server.FrontendURLs = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
		if c.Database.URL != "" {
			c.Database.Driver = "postgres"
		}
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == "" {
		c.Database.Port = "5432"
	}
	if c.Database.User == "" {
		c.Database.User = "postgres"
	}
	if c.Database.Password == "" {
		c.Database.Password = "postgres"
	}
	if c.Database.Name == "" {
		c.Database.Name = "tripwindow"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/tripwindow.db"
	}
	if c.Amadeus.Env == "" {
		c.Amadeus.Env = "test"
	}
	if c.SerpAPI.Currency == "" {
		c.SerpAPI.Currency = planner.DefaultCurrency
	}
	if c.SerpAPI.Locale == "" {
		c.SerpAPI.Locale = "en"
	}
	if c.Weather.Years == 0 {
		c.Weather.Years = 5
	}
	if c.Planner.TopN == 0 {
		c.Planner.TopN = planner.DefaultCheapestN
	}
	if c.Planner.ExcellentFactor == 0 {
		c.Planner.ExcellentFactor = planner.DefaultExcellentFactor
	}
	if c.Planner.Currency == "" {
		c.Planner.Currency = planner.DefaultCurrency
	}
	if c.Planner.Policy.Kind == "" {
		c.Planner.Policy.Kind = planner.PolicyWeekend
	}
	if c.Schedule.RetentionDays == 0 {
		c.Schedule.RetentionDays = 90
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric, got %q", c.Server.Port)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Planner.TopN < 1 {
		return fmt.Errorf("planner.top_n must be at least 1")
	}
	if c.Planner.ExcellentFactor <= 0 {
		return fmt.Errorf("planner.excellent_factor must be positive")
	}
	if _, err := planner.ParsePolicyKind(string(c.Planner.Policy.Kind)); err != nil {
		return fmt.Errorf("planner.policy: %w", err)
	}
	if c.Weather.Years < 1 {
		return fmt.Errorf("weather.years must be at least 1")
	}
	if c.Schedule.RetentionDays < 0 {
		return fmt.Errorf("schedule.retention_days must not be negative")
	}
	return nil
}

// PostgresDSN prefers the full URL and falls back to the individual fields.
func (c *Config) PostgresDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	d := c.Database
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
