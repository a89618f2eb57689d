package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fastygo/peoplesearch/domain"
)

const dateLayout = "2006-01-02"

func (s *shell) printJSON(v any) error {
	enc := json.NewEncoder(s.rt.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *shell) table(header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(s.rt.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	return w
}

func row(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func printIdentity(w io.Writer, id *domain.Identity) {
	fmt.Fprintf(w, "Name:      %s\n", orDash(id.FullName()))
	fmt.Fprintf(w, "Email:     %s\n", id.Email)
	fmt.Fprintf(w, "Role:      %s\n", id.Role)
	fmt.Fprintf(w, "Plan:      %s\n", planLine(id.SubscriptionPlan))
	if id.Location != "" {
		fmt.Fprintf(w, "Location:  %s\n", id.Location)
	}
	if id.Phone != "" {
		fmt.Fprintf(w, "Phone:     %s\n", id.Phone)
	}
	if id.Bio != "" {
		fmt.Fprintf(w, "Bio:       %s\n", id.Bio)
	}
	if id.CreatedAt != nil {
		fmt.Fprintf(w, "Member since: %s\n", id.CreatedAt.Format(dateLayout))
	}
}

func planLine(p domain.SubscriptionPlan) string {
	line := string(p.Name)
	if p.ExpiresAt != nil {
		line += " (until " + p.ExpiresAt.Format(dateLayout) + ")"
	}
	return line
}

func printPerson(w io.Writer, p *domain.Person) {
	fmt.Fprintf(w, "%s\n", p.FullName())
	if p.Position != "" || p.Company != "" {
		fmt.Fprintf(w, "  %s\n", strings.TrimSpace(strings.Join(nonBlank(p.Position, p.Company), " at ")))
	}
	if p.Location != "" {
		fmt.Fprintf(w, "  %s\n", p.Location)
	}
	if p.Email != "" {
		fmt.Fprintf(w, "  %s\n", p.Email)
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(w, "Skills: %s\n", strings.Join(p.Skills, ", "))
	}
	if len(p.Experience) > 0 {
		fmt.Fprintln(w, "Experience:")
		for _, e := range p.Experience {
			fmt.Fprintf(w, "  %s, %s (%s)\n", e.Position, e.Company, period(e.StartDate, e.EndDate, e.Current))
		}
	}
	if len(p.Education) > 0 {
		fmt.Fprintln(w, "Education:")
		for _, e := range p.Education {
			line := fmt.Sprintf("  %s %s, %s (%s)", e.Degree, e.Field, e.Institution, period(e.StartDate, e.EndDate, e.Ongoing))
			if e.GPA != nil {
				line += " GPA " + strconv.FormatFloat(*e.GPA, 'f', -1, 64)
			}
			fmt.Fprintln(w, line)
		}
	}
	for _, sp := range p.SocialProfiles {
		fmt.Fprintf(w, "%s: %s\n", sp.Platform, sp.URL)
	}
}

func period(start, end *time.Time, open bool) string {
	from := "?"
	if start != nil {
		from = start.Format(dateLayout)
	}
	switch {
	case end != nil:
		return from + " - " + end.Format(dateLayout)
	case open:
		return from + " - present"
	default:
		return from + " - unknown"
	}
}

func quota(n int) string {
	if n == domain.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(n)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func nonBlank(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
