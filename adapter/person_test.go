package adapter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/peoplesearch/domain"
)

func mustRecords(t *testing.T, payload string) []Record {
	t.Helper()
	recs, err := DecodeRecords([]byte(payload))
	require.NoError(t, err)
	return recs
}

func TestNormalizePerson_DatesAndCollections(t *testing.T) {
	t.Parallel()

	raw := mustRecord(t, `{
		"id": 9,
		"first_name": "Linus",
		"last_name": "Torvalds",
		"company": "Linux Foundation",
		"skills": ["C", "Git"],
		"experience": [
			{"id": 1, "company": "Transmeta", "position": "Engineer", "start_date": "1997-02-01", "end_date": "2003-06-01"},
			{"id": 2, "company": "OSDL", "position": "Fellow", "start_date": "2003-06-01"},
			{"id": 3, "company": "Typo Inc", "position": "Intern", "start_date": "1990-01-01", "end_date": "not-a-date"}
		],
		"education": [
			{"id": 1, "institution": "University of Helsinki", "degree": "MSc", "field": "CS", "startDate": "1988-09-01T00:00:00Z", "endDate": "1996-05-01T00:00:00Z", "gpa": "3.9"},
			{"id": 2, "institution": "Open University", "degree": "PhD", "field": "OS", "start_date": "2020-01-01", "gpa": 4}
		],
		"last_updated": "2024-02-02T02:02:02Z"
	}`)

	p, err := NormalizePerson(raw, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "9", p.ID)
	require.Len(t, p.Experience, 3)

	finished := p.Experience[0]
	require.NotNil(t, finished.StartDate)
	require.NotNil(t, finished.EndDate)
	assert.False(t, finished.Current)
	assert.Equal(t, 2003, finished.EndDate.Year())

	ongoing := p.Experience[1]
	assert.Nil(t, ongoing.EndDate)
	assert.True(t, ongoing.Current)

	broken := p.Experience[2]
	assert.Nil(t, broken.EndDate)
	assert.False(t, broken.Current, "unparseable end date must not read as current")

	require.Len(t, p.Education, 2)
	require.NotNil(t, p.Education[0].GPA)
	assert.InDelta(t, 3.9, *p.Education[0].GPA, 1e-9)
	assert.False(t, p.Education[0].Ongoing)
	require.NotNil(t, p.Education[1].GPA)
	assert.InDelta(t, 4.0, *p.Education[1].GPA, 1e-9)
	assert.True(t, p.Education[1].Ongoing)

	assert.NotNil(t, p.SocialProfiles)
	assert.Empty(t, p.SocialProfiles)
	assert.Equal(t, 2024, p.LastUpdated.Year())
}

func TestNormalizePerson_AbsentCollectionsAreEmpty(t *testing.T) {
	t.Parallel()

	p, err := NormalizePerson(mustRecord(t, `{"id":"x","name":"Solo"}`), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "Solo", p.FirstName)
	assert.NotNil(t, p.Skills)
	assert.NotNil(t, p.Experience)
	assert.NotNil(t, p.Education)
	assert.NotNil(t, p.SocialProfiles)
	assert.Equal(t, fixedNow, p.LastUpdated)
}

func TestNormalizePerson_Idempotent(t *testing.T) {
	t.Parallel()

	raw := mustRecord(t, `{"id":3,"firstName":"Grace","lastName":"Hopper","skills":["COBOL"],
		"experience":[{"id":"e1","company":"Navy","position":"Rear Admiral","startDate":"1943-12-01","endDate":"garbage"},
		              {"id":"e2","company":"UNIVAC","position":"Engineer","startDate":"1949-01-01"}],
		"socialProfiles":[{"platform":"web","url":"https://example.com"}]}`)

	first, err := NormalizePerson(raw, fixedNow)
	require.NoError(t, err)
	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	second, err := NormalizePerson(mustRecord(t, string(encoded)), fixedNow.Add(time.Hour))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("person drifted (-first +second):\n%s", diff)
	}
}

func TestNormalizeResults_PassThroughAndCompute(t *testing.T) {
	t.Parallel()

	raws := mustRecords(t, `{"data": [
		{"id": 100, "person": {"id": 1, "first_name": "Ada", "last_name": "Lovelace", "company": "Google"}, "relevance_score": 91, "matched_fields": ["company"]},
		{"person": {"id": 2, "first_name": "Alan", "last_name": "Turing", "company": "Googleplex"}},
		{"id": 3, "first_name": "Bare", "last_name": "Person", "company": "Other", "relevanceScore": 250}
	]}`)

	results, err := NormalizeResults(raws, domain.SearchFilter{Company: "goog"}, fixedNow)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "100", results[0].ID)
	assert.Equal(t, 91, results[0].RelevanceScore)
	assert.Equal(t, []string{"company"}, results[0].MatchedFields)

	assert.Equal(t, "2", results[1].ID, "falls back to the person id")
	assert.Equal(t, 65, results[1].RelevanceScore)
	assert.Equal(t, []string{domain.FieldCompany}, results[1].MatchedFields)

	assert.Equal(t, "3", results[2].ID)
	assert.Equal(t, domain.MaxScore, results[2].RelevanceScore)
	assert.Empty(t, results[2].MatchedFields)
	assert.NotNil(t, results[2].MatchedFields)
}

func TestNormalizeResults_OutOfRangeScores(t *testing.T) {
	t.Parallel()

	raws := mustRecords(t, `[
		{"id": 1, "company": "Googleplex", "relevance_score": 1e20},
		{"id": 2, "company": "Googleplex", "relevance_score": -1e20},
		{"id": 3, "company": "Googleplex", "relevance_score": "NaN"},
		{"id": 4, "company": "Googleplex", "relevance_score": "+Inf"}
	]`)

	results, err := NormalizeResults(raws, domain.SearchFilter{Company: "goog"}, fixedNow)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, domain.MaxScore, results[0].RelevanceScore)
	assert.Equal(t, domain.BaseScore, results[1].RelevanceScore)
	assert.Equal(t, 65, results[2].RelevanceScore, "non-numeric score is recomputed")
	assert.Equal(t, 65, results[3].RelevanceScore, "infinite score is recomputed")
}

func TestNormalizeResults_PreservesOrder(t *testing.T) {
	t.Parallel()

	raws := mustRecords(t, `[{"id":"c","first_name":"C"},{"id":"a","first_name":"A"},{"id":"b","first_name":"B"}]`)
	results, err := NormalizeResults(raws, domain.SearchFilter{Name: "a"}, fixedNow)
	require.NoError(t, err)

	ids := []string{results[0].ID, results[1].ID, results[2].ID}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestNormalizeResults_MissingID(t *testing.T) {
	t.Parallel()

	_, err := NormalizeResults(mustRecords(t, `[{"person":{"first_name":"Nobody"}}]`), domain.SearchFilter{}, fixedNow)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
