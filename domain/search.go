package domain

import (
	"fmt"
	"strings"
	"time"
)

// Range is an optional inclusive bound pair.
type Range struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

func (r *Range) empty() bool {
	return r == nil || (r.Min == nil && r.Max == nil)
}

func (r *Range) validate(field string, fields map[string][]string) {
	if r == nil {
		return
	}
	if r.Min != nil && *r.Min < 0 {
		fields[field+".min"] = append(fields[field+".min"], "must not be negative")
	}
	if r.Max != nil && *r.Max < 0 {
		fields[field+".max"] = append(fields[field+".max"], "must not be negative")
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		fields[field] = append(fields[field], "min must not exceed max")
	}
}

// SearchFilter holds the optional search criteria. An empty filter matches everything.
type SearchFilter struct {
	Name        string   `json:"name,omitempty"`
	Company     string   `json:"company,omitempty"`
	Location    string   `json:"location,omitempty"`
	Position    string   `json:"position,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Experience  *Range   `json:"experience,omitempty"`
	Education   string   `json:"education,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	SalaryRange *Range   `json:"salaryRange,omitempty"`
}

// IsEmpty reports whether no criterion is set.
func (f SearchFilter) IsEmpty() bool {
	return strings.TrimSpace(f.Name) == "" &&
		strings.TrimSpace(f.Company) == "" &&
		strings.TrimSpace(f.Location) == "" &&
		strings.TrimSpace(f.Position) == "" &&
		len(nonEmpty(f.Skills)) == 0 &&
		f.Experience.empty() &&
		strings.TrimSpace(f.Education) == "" &&
		strings.TrimSpace(f.Industry) == "" &&
		f.SalaryRange.empty()
}

// Validate rejects malformed ranges with field-level messages.
func (f SearchFilter) Validate() error {
	fields := map[string][]string{}
	f.Experience.validate("experience", fields)
	f.SalaryRange.validate("salaryRange", fields)
	if len(fields) == 0 {
		return nil
	}
	return NewError(ErrCodeInvalid, "invalid search filter").WithFields(fields)
}

// Summary renders the filter as a short human-readable query string.
func (f SearchFilter) Summary() string {
	var parts []string
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			parts = append(parts, label+": "+v)
		}
	}
	add("name", f.Name)
	add("company", f.Company)
	add("position", f.Position)
	add("location", f.Location)
	if skills := nonEmpty(f.Skills); len(skills) > 0 {
		parts = append(parts, "skills: "+strings.Join(skills, ", "))
	}
	add("education", f.Education)
	add("industry", f.Industry)
	if !f.Experience.empty() {
		parts = append(parts, "experience: "+f.Experience.String())
	}
	if !f.SalaryRange.empty() {
		parts = append(parts, "salary: "+f.SalaryRange.String())
	}
	if len(parts) == 0 {
		return "all people"
	}
	return strings.Join(parts, "; ")
}

func (r *Range) String() string {
	switch {
	case r.empty():
		return ""
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%d-%d", *r.Min, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf("%d+", *r.Min)
	default:
		return fmt.Sprintf("up to %d", *r.Max)
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SearchResult is one ranked hit. MatchedFields is never nil.
type SearchResult struct {
	ID             string   `json:"id"`
	Person         Person   `json:"person"`
	RelevanceScore int      `json:"relevanceScore"`
	MatchedFields  []string `json:"matchedFields"`
}

// SearchHistory is one saved search of the current user.
type SearchHistory struct {
	ID           string       `json:"id"`
	Query        string       `json:"query"`
	Filters      SearchFilter `json:"filters"`
	ResultsCount int          `json:"resultsCount"`
	CreatedAt    time.Time    `json:"createdAt"`
	UserID       string       `json:"userId,omitempty"`
}

// Count is a labelled tally used by analytics breakdowns.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Analytics summarises the search activity of the current user.
type Analytics struct {
	TotalSearches     int       `json:"totalSearches"`
	SearchesThisMonth int       `json:"searchesThisMonth"`
	TotalExports      int       `json:"totalExports"`
	ExportsThisMonth  int       `json:"exportsThisMonth"`
	TopCompanies      []Count   `json:"topSearchedCompanies"`
	TopPositions      []Count   `json:"topSearchedPositions"`
	SearchesByDay     []Count   `json:"searchesByDay"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// EnsureCollections replaces nil breakdowns with empty ones.
func (a *Analytics) EnsureCollections() {
	if a.TopCompanies == nil {
		a.TopCompanies = []Count{}
	}
	if a.TopPositions == nil {
		a.TopPositions = []Count{}
	}
	if a.SearchesByDay == nil {
		a.SearchesByDay = []Count{}
	}
}

// BulkResult reports the outcome of an operation fanned out over several ids.
type BulkResult struct {
	Requested []string         `json:"requested"`
	Succeeded []string         `json:"succeeded"`
	Failed    map[string]error `json:"-"`
}

// Partial reports whether at least one id failed.
func (r BulkResult) Partial() bool {
	return len(r.Failed) > 0
}

// Err summarises failures as a domain error, or nil when every id succeeded.
func (r BulkResult) Err() error {
	if !r.Partial() {
		return nil
	}
	var first error
	for _, id := range r.Requested {
		if err, ok := r.Failed[id]; ok {
			first = err
			break
		}
	}
	msg := fmt.Sprintf("only %d of %d deleted", len(r.Succeeded), len(r.Requested))
	return WrapError(CodeOf(first), msg, first)
}
