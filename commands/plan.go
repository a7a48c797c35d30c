package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tripwindow/database"
	"tripwindow/planner"
	"tripwindow/services"
)

func PlanCmd() *cobra.Command {
	var (
		origin, destination, place string
		from, to                   string
		top                        int
		dedupe                     bool
		reportPath                 string
		noWeather                  bool
		watch                      bool
		format                     string
		pf                         policyFlags
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Search flights for every window and join them with weather and price trends",
		Example: `  tripwindow plan --origin LHR --destination CDG --from 2025-03-01 --to 2025-03-31
  tripwindow plan --origin JFK --destination LAX --from 2025-05-01 --to 2025-06-30 --policy long_weekend --top 5 --format text
  tripwindow plan --origin LHR --destination BCN --place Barcelona --from 2025-07-01 --to 2025-07-31 --report plan.pdf --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if origin == "" || destination == "" || from == "" || to == "" {
				return cmd.Help()
			}
			if format != "json" && format != "text" {
				return fmt.Errorf("--format must be json or text, got %q", format)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			start, err := planner.ParseDate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := planner.ParseDate(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			policy, err := pf.policy(cmd, cfg.Planner.Policy)
			if err != nil {
				return err
			}

			p := buildPlanner(cfg, !noWeather)
			req, err := p.Normalize(services.PlanRequest{
				Origin:      origin,
				Destination: destination,
				Place:       place,
				StartDate:   start,
				EndDate:     end,
				Policy:      policy,
				TopN:        top,
				Dedupe:      dedupe,
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			res, err := p.Plan(ctx, req)
			if err != nil {
				return err
			}

			if reportPath != "" {
				pdf, err := services.RenderReportPDF(res)
				if err != nil {
					return fmt.Errorf("render report: %w", err)
				}
				if err := os.WriteFile(reportPath, pdf, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				cmd.PrintErrf("✅ Report written to %s\n", reportPath)
			}

			if watch {
				if err := database.InitDB(cfg); err != nil {
					return fmt.Errorf("database: %w", err)
				}
				defer database.DB.Close()
				search := services.SearchFromRequest(req, true)
				if err := database.SaveSearch(search); err != nil {
					return fmt.Errorf("save search: %w", err)
				}
				if _, err := services.SavePlanResult(search.ID, res); err != nil {
					return err
				}
				cmd.PrintErrf("✅ Watching search %s\n", search.ID)
			}

			if format == "text" {
				return writePlanText(cmd.OutOrStdout(), res)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "Origin IATA code (required)")
	cmd.Flags().StringVar(&destination, "destination", "", "Destination IATA code (required)")
	cmd.Flags().StringVar(&place, "place", "", "Place name for weather lookups (default: destination)")
	cmd.Flags().StringVar(&from, "from", "", "Range start YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "Range end YYYY-MM-DD (required)")
	cmd.Flags().IntVar(&top, "top", 0, "How many cheapest flights to keep (default from config)")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "Drop repeated airline/date/price offers before ranking")
	cmd.Flags().StringVar(&reportPath, "report", "", "Also write a PDF report to this path")
	cmd.Flags().BoolVar(&noWeather, "no-weather", false, "Skip the historical weather lookup")
	cmd.Flags().BoolVar(&watch, "watch", false, "Store the search so the scheduler refreshes it")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or text")
	pf.bind(cmd)
	return cmd
}

func writePlanText(out io.Writer, res *services.PlanResult) error {
	fmt.Fprintf(out, "%s → %s (%s)  %s .. %s  policy=%s  source=%s\n\n",
		res.Origin, res.Destination, res.Place, res.StartDate, res.EndDate, res.Policy.Kind, res.Source)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tDATE\tAIRLINE\tPRICE\tSTOPS")
	for _, r := range res.Cheapest {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", r.Rank, r.Record.SearchDate, r.Record.Airline,
			services.FormatMoney(res.Currency, r.Price.NumericPrice), len(r.Record.Layovers))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tBEST PRICE\tLEVEL\tAVG HIGH")
	for _, b := range res.Bundles {
		price, level := "-", "-"
		if b.Flight != nil {
			price = services.FormatMoney(res.Currency, b.Flight.Price.NumericPrice)
			level = string(b.Flight.Evaluation.Level)
		}
		high := "-"
		if b.Weather != nil && b.Weather.TemperatureMax != nil {
			high = fmt.Sprintf("%.1f°C", b.Weather.TemperatureMax.Average)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.DateKey, price, level, high)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	failed := 0
	for _, w := range res.Windows {
		if w.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(out, "\n⚠️  %d of %d windows could not be searched\n", failed, len(res.Windows))
	}
	return nil
}
