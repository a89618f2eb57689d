package adapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/fastygo/peoplesearch/domain"
)

// NormalizeHistory converts one raw saved-search record.
func NormalizeHistory(raw Record, now time.Time) (domain.SearchHistory, error) {
	raw = raw.Unwrap("data")
	id := raw.String("id")
	if id == "" {
		return domain.SearchHistory{}, domain.ErrInvalidPayload.WithFields(map[string][]string{"id": {"history payload carries no id"}})
	}
	entry := domain.SearchHistory{
		ID:      id,
		Query:   raw.String("query"),
		Filters: FilterFromRecord(raw.Child("filters")),
		UserID:  raw.String("user_id", "userId"),
	}
	entry.ResultsCount, _ = raw.Int("results_count", "resultsCount", "result_count")
	if t := raw.TimePtr("created_at", "createdAt", "searched_at"); t != nil {
		entry.CreatedAt = *t
	} else {
		entry.CreatedAt = now
	}
	return entry, nil
}

// NormalizeHistoryList converts a list of saved searches, preserving order.
func NormalizeHistoryList(raw []Record, now time.Time) ([]domain.SearchHistory, error) {
	out := make([]domain.SearchHistory, 0, len(raw))
	for i, item := range raw {
		entry, err := NormalizeHistory(item, now)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("history entry %d", i), err)
		}
		out = append(out, entry)
	}
	return out, nil
}

// FilterFromRecord reads a search filter in either naming convention.
func FilterFromRecord(raw Record) domain.SearchFilter {
	if raw == nil {
		return domain.SearchFilter{}
	}
	f := domain.SearchFilter{
		Name:        raw.String("name"),
		Company:     raw.String("company"),
		Location:    raw.String("location"),
		Position:    raw.String("position"),
		Education:   raw.String("education"),
		Industry:    raw.String("industry"),
		Experience:  rangeFrom(raw.Child("experience")),
		SalaryRange: rangeFrom(raw.Child("salary_range", "salaryRange")),
	}
	if skills := raw.Strings("skills"); len(skills) > 0 {
		f.Skills = skills
	}
	return f
}

// FilterWire renders a search filter with snake_case keys. Unset criteria are omitted.
func FilterWire(f domain.SearchFilter) map[string]any {
	body := map[string]any{}
	set := func(key, v string) {
		if v = strings.TrimSpace(v); v != "" {
			body[key] = v
		}
	}
	set("name", f.Name)
	set("company", f.Company)
	set("location", f.Location)
	set("position", f.Position)
	set("education", f.Education)
	set("industry", f.Industry)
	if len(f.Skills) > 0 {
		body["skills"] = f.Skills
	}
	if r := rangeWire(f.Experience); r != nil {
		body["experience"] = r
	}
	if r := rangeWire(f.SalaryRange); r != nil {
		body["salary_range"] = r
	}
	return body
}

func rangeWire(r *domain.Range) map[string]int {
	if r == nil || (r.Min == nil && r.Max == nil) {
		return nil
	}
	out := map[string]int{}
	if r.Min != nil {
		out["min"] = *r.Min
	}
	if r.Max != nil {
		out["max"] = *r.Max
	}
	return out
}

func rangeFrom(raw Record) *domain.Range {
	if raw == nil {
		return nil
	}
	var r domain.Range
	if v, ok := raw.Int("min"); ok {
		r.Min = &v
	}
	if v, ok := raw.Int("max"); ok {
		r.Max = &v
	}
	if r.Min == nil && r.Max == nil {
		return nil
	}
	return &r
}

// NormalizeAnalytics converts a raw analytics payload. Missing figures default to zero.
func NormalizeAnalytics(raw Record, now time.Time) domain.Analytics {
	raw = raw.Unwrap("data")
	var a domain.Analytics
	a.TotalSearches, _ = raw.Int("total_searches", "totalSearches")
	a.SearchesThisMonth, _ = raw.Int("searches_this_month", "searchesThisMonth")
	a.TotalExports, _ = raw.Int("total_exports", "totalExports")
	a.ExportsThisMonth, _ = raw.Int("exports_this_month", "exportsThisMonth")
	a.TopCompanies = counts(raw.Children("top_searched_companies", "topSearchedCompanies"), "company")
	a.TopPositions = counts(raw.Children("top_searched_positions", "topSearchedPositions"), "position")
	a.SearchesByDay = counts(raw.Children("searches_by_day", "searchesByDay"), "date")
	if t := raw.TimePtr("generated_at", "generatedAt"); t != nil {
		a.GeneratedAt = *t
	} else {
		a.GeneratedAt = now
	}
	a.EnsureCollections()
	return a
}

func counts(items []Record, labelKey string) []domain.Count {
	out := make([]domain.Count, 0, len(items))
	for _, item := range items {
		c := domain.Count{Label: item.String(labelKey, "label", "name")}
		c.Count, _ = item.Int("count", "total")
		out = append(out, c)
	}
	return out
}
