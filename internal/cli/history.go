package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (s *shell) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage your search history",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved searches",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				entries, err := s.app.History.Load(cmd.Context())
				if err != nil {
					return err
				}
				if s.asJSON {
					return s.printJSON(entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(s.rt.Out, "No saved searches.")
					return nil
				}
				w := s.table("ID", "DATE", "RESULTS", "QUERY")
				for _, e := range entries {
					row(w, e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), strconv.Itoa(e.ResultsCount), e.Query)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "delete ID...",
			Short: "Delete saved searches",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 1 {
					if err := s.app.History.Delete(cmd.Context(), args[0]); err != nil {
						return err
					}
					fmt.Fprintln(s.rt.Out, "Deleted 1 search.")
					return nil
				}
				result, err := s.app.History.DeleteMany(cmd.Context(), args)
				if s.asJSON {
					if jerr := s.printJSON(result); jerr != nil {
						return jerr
					}
				} else {
					fmt.Fprintf(s.rt.Out, "Deleted %d of %d searches.\n", len(result.Succeeded), len(result.Requested))
				}
				return err
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete all saved searches",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := s.app.History.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(s.rt.Out, "Search history cleared.")
				return nil
			},
		},
	)
	return cmd
}
