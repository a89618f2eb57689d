package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/usecase/analytics"
)

type analyticsReport struct {
	Analytics domain.Analytics `json:"analytics"`
	Usage     analytics.Usage  `json:"usage"`
}

func (s *shell) analyticsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show search activity and plan usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			usage, err := s.app.Analytics.Usage(cmd.Context())
			if err != nil {
				return err
			}
			dashboard, err := s.app.Analytics.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if s.asJSON {
				return s.printJSON(analyticsReport{Analytics: dashboard, Usage: usage})
			}

			out := s.rt.Out
			fmt.Fprintf(out, "Searches:  %d total, %d this month\n", dashboard.TotalSearches, dashboard.SearchesThisMonth)
			fmt.Fprintf(out, "Exports:   %d total, %d this month\n", dashboard.TotalExports, dashboard.ExportsThisMonth)
			fmt.Fprintf(out, "Plan:      %s", usage.Plan.Name)
			if !usage.Active {
				fmt.Fprint(out, " (expired, free limits apply)")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Remaining: %s searches, %s exports\n", quota(usage.SearchesRemaining), quota(usage.ExportsRemaining))
			printCounts(out, "Top companies", dashboard.TopCompanies)
			printCounts(out, "Top positions", dashboard.TopPositions)
			return nil
		},
	}
}

func printCounts(w io.Writer, title string, counts []domain.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, c := range counts {
		fmt.Fprintf(w, "  %-24s %d\n", c.Label, c.Count)
	}
}
