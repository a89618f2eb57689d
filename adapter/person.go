package adapter

import (
	"fmt"
	"time"

	"github.com/fastygo/peoplesearch/domain"
)

// NormalizeResults converts raw search hits into ranked results, preserving backend order.
// Each hit is either {id, person, relevance_score?, matched_fields?} or a bare person.
func NormalizeResults(raw []Record, filter domain.SearchFilter, now time.Time) ([]domain.SearchResult, error) {
	out := make([]domain.SearchResult, 0, len(raw))
	for i, item := range raw {
		result, err := NormalizeResult(item, filter, now)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("search hit %d", i), err)
		}
		out = append(out, result)
	}
	return out, nil
}

// NormalizeResult converts one raw search hit. Backend relevance is passed through
// clamped to the valid range; missing relevance or matched fields are computed.
func NormalizeResult(item Record, filter domain.SearchFilter, now time.Time) (domain.SearchResult, error) {
	personRaw := item.Child("person")
	if personRaw == nil {
		personRaw = item
	}
	person, err := NormalizePerson(personRaw, now)
	if err != nil {
		return domain.SearchResult{}, err
	}

	result := domain.SearchResult{ID: item.String("id"), Person: person}
	if result.ID == "" {
		result.ID = person.ID
	}

	score, hasScore := item.Int("relevance_score", "relevanceScore")
	hasMatched := item.Has("matched_fields", "matchedFields")
	if !hasScore || !hasMatched {
		computed := domain.Score(person, filter)
		if !hasScore {
			score = computed.Score
		}
		if !hasMatched {
			result.MatchedFields = computed.MatchedFields
		}
	}
	if hasMatched {
		result.MatchedFields = item.Strings("matched_fields", "matchedFields")
	}
	result.RelevanceScore = domain.ClampScore(score)
	return result, nil
}

// NormalizePerson converts a raw person record into the canonical shape.
func NormalizePerson(raw Record, now time.Time) (domain.Person, error) {
	raw = raw.Unwrap("data", "person")
	id := raw.String("id")
	if id == "" {
		return domain.Person{}, domain.ErrInvalidPayload.WithFields(map[string][]string{"id": {"person payload carries no id"}})
	}

	p := domain.Person{
		ID:          id,
		FirstName:   raw.String("first_name", "firstName"),
		LastName:    raw.String("last_name", "lastName"),
		Email:       raw.String("email"),
		Phone:       raw.String("phone"),
		Company:     raw.String("company"),
		Position:    raw.String("position", "title"),
		Location:    raw.String("location"),
		LinkedinURL: raw.String("linkedin_url", "linkedinUrl"),
		Avatar:      raw.String("avatar_url", "avatarUrl", "avatar"),
		Bio:         raw.String("bio"),
		Skills:      raw.Strings("skills"),
	}
	if p.FirstName == "" && p.LastName == "" {
		p.FirstName, p.LastName = SplitName(raw.String("name", "full_name", "fullName"))
	}

	for _, exp := range raw.Children("experience", "experiences") {
		end, current := endDate(exp, "current")
		p.Experience = append(p.Experience, domain.Experience{
			ID:          exp.String("id"),
			Company:     exp.String("company"),
			Position:    exp.String("position", "title"),
			StartDate:   exp.TimePtr("start_date", "startDate"),
			EndDate:     end,
			Description: exp.String("description"),
			Current:     current,
		})
	}
	for _, edu := range raw.Children("education", "educations") {
		end, ongoing := endDate(edu, "ongoing", "current")
		entry := domain.Education{
			ID:          edu.String("id"),
			Institution: edu.String("institution", "school"),
			Degree:      edu.String("degree"),
			Field:       edu.String("field", "field_of_study", "fieldOfStudy"),
			StartDate:   edu.TimePtr("start_date", "startDate"),
			EndDate:     end,
			Ongoing:     ongoing,
		}
		if gpa, ok := edu.Float("gpa"); ok {
			entry.GPA = &gpa
		}
		p.Education = append(p.Education, entry)
	}
	for _, sp := range raw.Children("social_profiles", "socialProfiles") {
		p.SocialProfiles = append(p.SocialProfiles, domain.SocialProfile{
			Platform: sp.String("platform"),
			URL:      sp.String("url"),
			Username: sp.String("username"),
		})
	}

	if t := raw.TimePtr("last_updated", "lastUpdated", "updated_at"); t != nil {
		p.LastUpdated = *t
	} else {
		p.LastUpdated = now
	}
	p.EnsureCollections()
	return p, nil
}

// endDate resolves the end of a dated entry. With no end date the entry is ongoing
// unless the backend explicitly says otherwise; an unparseable end date is neither.
func endDate(r Record, flagKeys ...string) (*time.Time, bool) {
	t, present, err := r.Time("end_date", "endDate")
	switch {
	case !present:
		if flag, ok := r.Bool(flagKeys...); ok {
			return nil, flag
		}
		return nil, true
	case err != nil:
		return nil, false
	default:
		return &t, false
	}
}
