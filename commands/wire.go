package commands

import (
	"encoding/json"
	"io"
	"log"

	"github.com/spf13/cobra"

	"tripwindow/config"
	"tripwindow/planner"
	"tripwindow/services"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flag, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Path(flag))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildPlanner wires the collaborators the configuration enables. Live flight
// sources are preferred in order SerpAPI, Amadeus, then estimated prices.
func buildPlanner(cfg *config.Config, withWeather bool) *services.TripPlanner {
	serp := services.NewSerpAPIClient("", cfg.SerpAPI.APIKey, cfg.SerpAPI.Currency, cfg.SerpAPI.Locale, nil)
	amadeus := services.NewAmadeusClient(services.AmadeusBaseURL(cfg.Amadeus.Env),
		cfg.Amadeus.ClientID, cfg.Amadeus.ClientSecret, cfg.Planner.Currency, nil)

	p := &services.TripPlanner{
		Flights:   services.ChooseFlightSource(serp, amadeus),
		Evaluator: planner.Evaluator{ExcellentFactor: cfg.Planner.ExcellentFactor},
		TopN:      cfg.Planner.TopN,
		Dedupe:    cfg.Planner.Dedupe,
		Currency:  cfg.Planner.Currency,
	}
	if p.Flights.Name() == "estimated" {
		log.Println("⚠️  No SerpAPI key or Amadeus credentials — using estimated flight prices")
	} else {
		log.Printf("✅ Flight source: %s", p.Flights.Name())
	}

	if amadeus.Configured() {
		p.Trends = amadeus
	} else {
		log.Println("⚠️  Amadeus not configured — price trends disabled")
	}

	if withWeather {
		geo := services.FallbackGeocoder{}
		if cfg.Weather.GoogleGeocoding != "" {
			geo = append(geo, services.NewGoogleGeocoder(cfg.Weather.GoogleGeocoding))
		}
		geo = append(geo, services.NewOpenMeteoGeocoder("", nil))
		p.Weather = services.NewOpenMeteoClient("", cfg.Weather.Years, geo, nil)
	}
	return p
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
