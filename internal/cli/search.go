package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/peoplesearch/domain"
)

type rangeFlags struct {
	min, max int
}

func (r rangeFlags) toRange(cmd *cobra.Command, minFlag, maxFlag string) *domain.Range {
	var out domain.Range
	if cmd.Flags().Changed(minFlag) {
		v := r.min
		out.Min = &v
	}
	if cmd.Flags().Changed(maxFlag) {
		v := r.max
		out.Max = &v
	}
	if out.Min == nil && out.Max == nil {
		return nil
	}
	return &out
}

func (s *shell) searchCommand() *cobra.Command {
	var (
		filter     domain.SearchFilter
		experience rangeFlags
		salary     rangeFlags
	)
	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search the people directory",
		Long:  "Search the people directory. The query is stored in your search history; without one a summary of the filters is stored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Experience = experience.toRange(cmd, "min-experience", "max-experience")
			filter.SalaryRange = salary.toRange(cmd, "min-salary", "max-salary")

			results, err := s.app.Search.Search(cmd.Context(), strings.Join(args, " "), filter)
			if err != nil {
				return err
			}
			if s.asJSON {
				return s.printJSON(results)
			}
			if len(results) == 0 {
				fmt.Fprintln(s.rt.Out, "No people found.")
				return nil
			}
			w := s.table("SCORE", "NAME", "POSITION", "COMPANY", "LOCATION", "MATCHED", "ID")
			for _, r := range results {
				row(w,
					strconv.Itoa(r.RelevanceScore),
					r.Person.FullName(),
					orDash(r.Person.Position),
					orDash(r.Person.Company),
					orDash(r.Person.Location),
					orDash(strings.Join(r.MatchedFields, ",")),
					r.ID,
				)
			}
			return w.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&filter.Name, "name", "", "name contains")
	f.StringVar(&filter.Company, "company", "", "company contains")
	f.StringVar(&filter.Position, "position", "", "position contains")
	f.StringVar(&filter.Location, "location", "", "location contains")
	f.StringSliceVar(&filter.Skills, "skill", nil, "required skill; repeat or separate with commas")
	f.StringVar(&filter.Education, "education", "", "education level")
	f.StringVar(&filter.Industry, "industry", "", "industry")
	f.IntVar(&experience.min, "min-experience", 0, "minimum years of experience")
	f.IntVar(&experience.max, "max-experience", 0, "maximum years of experience")
	f.IntVar(&salary.min, "min-salary", 0, "minimum salary")
	f.IntVar(&salary.max, "max-salary", 0, "maximum salary")
	return cmd
}

func (s *shell) personCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "person ID",
		Short: "Show one person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			person, err := s.app.Search.Person(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if s.asJSON {
				return s.printJSON(person)
			}
			printPerson(s.rt.Out, person)
			return nil
		},
	}
}
