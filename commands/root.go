package commands

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X tripwindow/commands.Version=...".
var Version = "v0.1.0"

// Root builds the tripwindow command tree. Without a subcommand it serves HTTP.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "tripwindow",
		Short:         "TripWindow travel planner – date windows, cheapest flights, weather and price trends",
		Long:          "Generates candidate travel windows, collects flight prices, historical weather and price quartiles for each, and joins them by date.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "Path to config.yaml (default $TRIPWINDOW_CONFIG or ./config.yaml)")

	root.AddCommand(ServeCmd())
	root.AddCommand(WindowsCmd())
	root.AddCommand(PlanCmd())
	root.AddCommand(WatchCmd())
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print tripwindow version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("tripwindow " + Version)
		},
	}
}
