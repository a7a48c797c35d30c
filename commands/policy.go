package commands

import (
	"github.com/spf13/cobra"

	"tripwindow/planner"
)

type policyFlags struct {
	kind       string
	noThursday bool
	noMonday   bool
	duration   int
	interval   int
}

func (f *policyFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "policy", "", "Window policy: weekend, long_weekend, fixed, sampled")
	cmd.Flags().BoolVar(&f.noThursday, "no-thursday", false, "Long weekends start on Friday instead of Thursday")
	cmd.Flags().BoolVar(&f.noMonday, "no-monday", false, "Long weekends end on Sunday instead of Monday")
	cmd.Flags().IntVar(&f.duration, "duration", 0, "Fixed policy trip length in days (default 3)")
	cmd.Flags().IntVar(&f.interval, "interval", 0, "Fixed policy days between departures (default 7)")
}

// policy builds the policy from the flags, starting from fallback when
// --policy was not given.
func (f *policyFlags) policy(cmd *cobra.Command, fallback planner.Policy) (planner.Policy, error) {
	p := fallback
	if cmd.Flags().Changed("policy") {
		kind, err := planner.ParsePolicyKind(f.kind)
		if err != nil {
			return p, err
		}
		p = planner.Policy{Kind: kind}
	}
	if p.Kind == "" {
		p.Kind = planner.PolicyWeekend
	}
	if cmd.Flags().Changed("no-thursday") {
		v := !f.noThursday
		p.ThursdayIncluded = &v
	}
	if cmd.Flags().Changed("no-monday") {
		v := !f.noMonday
		p.MondayIncluded = &v
	}
	if cmd.Flags().Changed("duration") {
		p.TripDuration = f.duration
	}
	if cmd.Flags().Changed("interval") {
		p.IntervalDays = f.interval
	}
	return p, nil
}
