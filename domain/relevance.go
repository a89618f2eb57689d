package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Relevance weights.
const (
	BaseScore      = 50
	MaxScore       = 100
	nameWeight     = 20
	companyWeight  = 15
	positionWeight = 15
	locationWeight = 10
	skillWeight    = 5
)

// Matched field names, in the order they are reported.
const (
	FieldName     = "name"
	FieldCompany  = "company"
	FieldPosition = "position"
	FieldLocation = "location"
	FieldSkills   = "skills"
)

// Relevance is the score of one candidate against a filter and the fields that contributed to it.
type Relevance struct {
	Score         int
	MatchedFields []string
}

// Score ranks a candidate against a filter in a single pass: a field is reported
// as matched exactly when it added to the score.
func Score(p Person, f SearchFilter) Relevance {
	folder := cases.Fold()
	fold := func(s string) string { return folder.String(strings.TrimSpace(s)) }
	contains := func(have, want string) bool {
		want = fold(want)
		return want != "" && strings.Contains(fold(have), want)
	}

	out := Relevance{Score: BaseScore, MatchedFields: []string{}}
	hit := func(field string, weight int) {
		out.Score += weight
		out.MatchedFields = append(out.MatchedFields, field)
	}

	if contains(p.FullName(), f.Name) {
		hit(FieldName, nameWeight)
	}
	if contains(p.Company, f.Company) {
		hit(FieldCompany, companyWeight)
	}
	if contains(p.Position, f.Position) {
		hit(FieldPosition, positionWeight)
	}
	if contains(p.Location, f.Location) {
		hit(FieldLocation, locationWeight)
	}

	wanted := nonEmpty(f.Skills)
	matchedSkills := 0
	for _, skill := range p.Skills {
		for _, w := range wanted {
			if contains(skill, w) {
				matchedSkills++
				break
			}
		}
	}
	if matchedSkills > 0 {
		out.Score += matchedSkills * skillWeight
		out.MatchedFields = append(out.MatchedFields, FieldSkills)
	}

	if out.Score > MaxScore {
		out.Score = MaxScore
	}
	return out
}

// Matches reports whether the candidate satisfies every text criterion the filter supplies.
// Skills match when any requested skill is found.
func Matches(p Person, f SearchFilter) bool {
	r := Score(p, f)
	matched := make(map[string]bool, len(r.MatchedFields))
	for _, field := range r.MatchedFields {
		matched[field] = true
	}
	required := []struct {
		field string
		value string
	}{
		{FieldName, f.Name},
		{FieldCompany, f.Company},
		{FieldPosition, f.Position},
		{FieldLocation, f.Location},
	}
	for _, req := range required {
		if strings.TrimSpace(req.value) != "" && !matched[req.field] {
			return false
		}
	}
	if len(nonEmpty(f.Skills)) > 0 && !matched[FieldSkills] {
		return false
	}
	return true
}

// ClampScore bounds a precomputed score to [BaseScore, MaxScore].
func ClampScore(score int) int {
	switch {
	case score < BaseScore:
		return BaseScore
	case score > MaxScore:
		return MaxScore
	default:
		return score
	}
}
