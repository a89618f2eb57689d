package adapter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/peoplesearch/domain"
)

func TestNormalizeHistoryList(t *testing.T) {
	t.Parallel()

	raws := mustRecords(t, `[
		{"id": 11, "query": "go devs", "filters": {"skills": ["go"], "salary_range": {"min": 100}}, "results_count": 4, "created_at": "2024-05-01T10:00:00Z", "user_id": 42},
		{"id": "12", "query": "", "filters": "{\"company\":\"Acme\"}", "resultsCount": 0, "createdAt": "2024-05-02T10:00:00Z", "userId": "42"}
	]`)

	entries, err := NormalizeHistoryList(raws, fixedNow)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "11", entries[0].ID)
	assert.Equal(t, []string{"go"}, entries[0].Filters.Skills)
	require.NotNil(t, entries[0].Filters.SalaryRange)
	assert.Equal(t, 100, *entries[0].Filters.SalaryRange.Min)
	assert.Nil(t, entries[0].Filters.SalaryRange.Max)
	assert.Equal(t, 4, entries[0].ResultsCount)
	assert.Equal(t, "42", entries[0].UserID)

	assert.Equal(t, "Acme", entries[1].Filters.Company)
	assert.Equal(t, 2, entries[1].CreatedAt.Day())
}

func TestNormalizeHistoryList_MissingID(t *testing.T) {
	t.Parallel()

	_, err := NormalizeHistoryList(mustRecords(t, `[{"query":"x"}]`), fixedNow)
	assert.Error(t, err)
}

func TestNormalizeAnalytics_Defaults(t *testing.T) {
	t.Parallel()

	a := NormalizeAnalytics(mustRecord(t, `{}`), fixedNow)
	assert.Zero(t, a.TotalSearches)
	assert.NotNil(t, a.TopCompanies)
	assert.NotNil(t, a.TopPositions)
	assert.NotNil(t, a.SearchesByDay)
	assert.Equal(t, fixedNow, a.GeneratedAt)
}

func TestNormalizeAnalytics_Breakdowns(t *testing.T) {
	t.Parallel()

	a := NormalizeAnalytics(mustRecord(t, `{"data":{
		"totalSearches": 12, "searchesThisMonth": "3",
		"topSearchedCompanies": [{"company": "Acme", "count": 5}],
		"topSearchedPositions": [{"label": "CTO", "count": 2}],
		"searchesByDay": [{"date": "2024-05-01", "count": 1}]
	}}`), fixedNow)

	assert.Equal(t, 12, a.TotalSearches)
	assert.Equal(t, 3, a.SearchesThisMonth)
	require.Len(t, a.TopCompanies, 1)
	assert.Equal(t, "Acme", a.TopCompanies[0].Label)
	assert.Equal(t, 5, a.TopCompanies[0].Count)
	assert.Equal(t, "CTO", a.TopPositions[0].Label)
	assert.Equal(t, "2024-05-01", a.SearchesByDay[0].Label)
}

func TestFilterWire_SnakeCaseRoundTrip(t *testing.T) {
	t.Parallel()

	minSalary, maxYears := 90000, 5
	filter := domain.SearchFilter{
		Company:     " Acme ",
		Skills:      []string{"go"},
		Experience:  &domain.Range{Max: &maxYears},
		SalaryRange: &domain.Range{Min: &minSalary},
	}

	wire := FilterWire(filter)
	assert.Equal(t, map[string]any{
		"company":      "Acme",
		"skills":       []string{"go"},
		"experience":   map[string]int{"max": 5},
		"salary_range": map[string]int{"min": 90000},
	}, wire)
	assert.NotContains(t, wire, "salaryRange")

	raw, err := json.Marshal(wire)
	require.NoError(t, err)
	var rec Record
	require.NoError(t, json.Unmarshal(raw, &rec))
	back := FilterFromRecord(rec)
	require.NotNil(t, back.SalaryRange)
	assert.Equal(t, 90000, *back.SalaryRange.Min)
	assert.Equal(t, "Acme", back.Company)

	assert.Empty(t, FilterWire(domain.SearchFilter{Experience: &domain.Range{}}))
}

func TestHistoryEntryWire_RendersFilterKeys(t *testing.T) {
	t.Parallel()

	minSalary := 10
	wire := HistoryEntry{Query: "q", Filters: domain.SearchFilter{SalaryRange: &domain.Range{Min: &minSalary}}}.Wire()
	assert.Equal(t, map[string]any{"salary_range": map[string]int{"min": 10}}, wire["filters"])
}
