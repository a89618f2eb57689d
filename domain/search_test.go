package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFilter_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, SearchFilter{}.Validate())
	require.NoError(t, SearchFilter{Experience: &Range{Min: intPtr(1), Max: intPtr(5)}}.Validate())

	err := SearchFilter{
		Experience:  &Range{Min: intPtr(7), Max: intPtr(2)},
		SalaryRange: &Range{Min: intPtr(-1)},
	}.Validate()
	require.Error(t, err)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))

	fields := FieldsOf(err)
	assert.Contains(t, fields, "experience")
	assert.Contains(t, fields, "salaryRange.min")
}

func TestSearchFilter_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, SearchFilter{}.IsEmpty())
	assert.True(t, SearchFilter{Name: "  ", Skills: []string{""}, Experience: &Range{}}.IsEmpty())
	assert.False(t, SearchFilter{Industry: "fintech"}.IsEmpty())
}

func TestSearchFilter_Summary(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "all people", SearchFilter{}.Summary())
	got := SearchFilter{
		Company:    "Acme",
		Skills:     []string{"go", " ", "sql"},
		Experience: &Range{Min: intPtr(3)},
	}.Summary()
	assert.Equal(t, "company: Acme; skills: go, sql; experience: 3+", got)
}

func TestBulkResult_Err(t *testing.T) {
	t.Parallel()

	ok := BulkResult{Requested: []string{"1", "2"}, Succeeded: []string{"1", "2"}}
	assert.False(t, ok.Partial())
	assert.NoError(t, ok.Err())

	cause := WrapError(ErrCodeUnavailable, "boom", errors.New("dial tcp"))
	partial := BulkResult{
		Requested: []string{"1", "2", "3"},
		Succeeded: []string{"1", "3"},
		Failed:    map[string]error{"2": cause},
	}
	err := partial.Err()
	require.Error(t, err)
	assert.Equal(t, "only 2 of 3 deleted", MessageOf(err, ""))
	assert.True(t, IsDomainError(err, ErrCodeUnavailable))
	assert.ErrorIs(t, err, cause)
}
