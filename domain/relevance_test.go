package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate() Person {
	return Person{
		ID:        "p1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Company:   "Google",
		Position:  "Staff Engineer",
		Location:  "London",
		Skills:    []string{"Python", "Go", "React"},
	}
}

func TestScore_EmptyFilterStaysAtBase(t *testing.T) {
	t.Parallel()

	r := Score(candidate(), SearchFilter{})
	assert.Equal(t, BaseScore, r.Score)
	require.NotNil(t, r.MatchedFields)
	assert.Empty(t, r.MatchedFields)
}

func TestScore_CompanySubstring(t *testing.T) {
	t.Parallel()

	r := Score(candidate(), SearchFilter{Company: "Goog"})
	assert.Equal(t, 65, r.Score)
	assert.Equal(t, []string{FieldCompany}, r.MatchedFields)
}

func TestScore_SkillsCountPerCandidateSkill(t *testing.T) {
	t.Parallel()

	r := Score(candidate(), SearchFilter{Skills: []string{"python", "react"}})
	assert.Equal(t, 60, r.Score)
	assert.Equal(t, []string{FieldSkills}, r.MatchedFields)
}

func TestScore_EmptySkillStringsIgnored(t *testing.T) {
	t.Parallel()

	r := Score(candidate(), SearchFilter{Skills: []string{"", "  "}})
	assert.Equal(t, BaseScore, r.Score)
	assert.Empty(t, r.MatchedFields)
}

func TestScore_ClampedAtMax(t *testing.T) {
	t.Parallel()

	p := candidate()
	p.Skills = []string{"go", "golang", "go-kit", "gorm", "gin"}
	r := Score(p, SearchFilter{
		Name:     "ada love",
		Company:  "google",
		Position: "engineer",
		Location: "lon",
		Skills:   []string{"go", "gin"},
	})
	assert.Equal(t, MaxScore, r.Score)
	assert.Equal(t, []string{FieldName, FieldCompany, FieldPosition, FieldLocation, FieldSkills}, r.MatchedFields)
}

func TestScore_MatchedFieldsOnlyWhenContributing(t *testing.T) {
	t.Parallel()

	// present value that does not match must not be reported
	r := Score(candidate(), SearchFilter{Company: "Microsoft", Location: "london"})
	assert.Equal(t, 60, r.Score)
	assert.Equal(t, []string{FieldLocation}, r.MatchedFields)
}

func TestScore_UnicodeCaseFolding(t *testing.T) {
	t.Parallel()

	p := Person{FirstName: "Jürgen", LastName: "Straße", Company: "ÖBB"}
	r := Score(p, SearchFilter{Name: "JÜRGEN", Company: "öbb"})
	assert.Equal(t, 85, r.Score)
}

func TestScore_Deterministic(t *testing.T) {
	t.Parallel()

	f := SearchFilter{Name: "ada", Skills: []string{"go"}}
	assert.Equal(t, Score(candidate(), f), Score(candidate(), f))
}

func TestScore_RangeWithinBounds(t *testing.T) {
	t.Parallel()

	filters := []SearchFilter{
		{},
		{Name: "zzz"},
		{Skills: []string{"o"}},
		{Name: "a", Company: "o", Position: "e", Location: "o", Skills: []string{"o", "y"}},
	}
	for _, f := range filters {
		r := Score(candidate(), f)
		assert.GreaterOrEqual(t, r.Score, BaseScore)
		assert.LessOrEqual(t, r.Score, MaxScore)
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter SearchFilter
		want   bool
	}{
		{"empty filter", SearchFilter{}, true},
		{"company hit", SearchFilter{Company: "goo"}, true},
		{"company miss", SearchFilter{Company: "Meta"}, false},
		{"one of two", SearchFilter{Company: "goo", Location: "Paris"}, false},
		{"any skill", SearchFilter{Skills: []string{"rust", "react"}}, true},
		{"no skill", SearchFilter{Skills: []string{"rust"}}, false},
		{"range ignored", SearchFilter{Experience: &Range{Min: intPtr(3)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(candidate(), tt.filter))
		})
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, BaseScore, ClampScore(-4))
	assert.Equal(t, BaseScore, ClampScore(12))
	assert.Equal(t, 77, ClampScore(77))
	assert.Equal(t, MaxScore, ClampScore(140))
}

func intPtr(v int) *int { return &v }
