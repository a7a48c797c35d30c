package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tripwindow/database"
	"tripwindow/scheduler"
)

func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage watched searches",
	}
	cmd.AddCommand(watchRunCmd(), watchListCmd(), watchPruneCmd())
	return cmd
}

func watchRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Refresh every watched search once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := database.InitDB(cfg); err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer database.DB.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			n, err := scheduler.NewScheduler(ctx, buildPlanner(cfg, true)).RunWatchesNow()
			if err != nil {
				return err
			}
			cmd.Printf("🔄 refreshed %d watched searches\n", n)
			return nil
		},
	}
}

func watchListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List watched searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := database.InitDB(cfg); err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer database.DB.Close()

			searches, err := database.ListWatchedSearches()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tROUTE\tRANGE\tPOLICY")
			for _, s := range searches {
				fmt.Fprintf(tw, "%s\t%s-%s\t%s..%s\t%s\n", s.ID, s.Origin, s.Destination, s.StartDate, s.EndDate, s.Policy.Kind)
			}
			return tw.Flush()
		},
	}
}

func watchPruneCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete searches older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("days") {
				cfg.Schedule.RetentionDays = days
			}
			if cfg.Schedule.RetentionDays < 1 {
				return fmt.Errorf("retention must be at least one day")
			}
			if err := database.InitDB(cfg); err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer database.DB.Close()

			s := scheduler.NewScheduler(context.Background(), nil)
			if err := s.RegisterAll("", "@daily", cfg.Schedule.RetentionDays); err != nil {
				return err
			}
			n, err := s.PruneNow()
			if err != nil {
				return err
			}
			cmd.Printf("🧹 pruned %d searches\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Retention in days (default from config)")
	return cmd
}
