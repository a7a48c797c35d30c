package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripwindow/planner"
)

func WindowsCmd() *cobra.Command {
	var from, to string
	var pf policyFlags

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List the travel windows a policy yields for a date range",
		Example: `  tripwindow windows --from 2025-03-01 --to 2025-03-31
  tripwindow windows --from 2025-03-01 --to 2025-03-31 --policy long_weekend --no-monday
  tripwindow windows --from 2025-03-01 --to 2025-04-30 --policy fixed --duration 5 --interval 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" || to == "" {
				return cmd.Help()
			}
			start, err := planner.ParseDate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := planner.ParseDate(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			policy, err := pf.policy(cmd, planner.Policy{Kind: planner.PolicyWeekend})
			if err != nil {
				return err
			}

			windows := planner.Collect(policy.Windows(start, end))
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"policy":  policy,
				"count":   len(windows),
				"windows": windows,
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Range start YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "Range end YYYY-MM-DD (required)")
	pf.bind(cmd)
	return cmd
}
