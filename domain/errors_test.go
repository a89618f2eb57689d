package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, ErrCodeUnauthorized, CodeOf(fmt.Errorf("login: %w", ErrInvalidCredentials)))
	assert.Equal(t, ErrCodePending, CodeOf(ErrProfilePending))
}

func TestMessageOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "email has already been taken", MessageOf(ErrEmailTaken, "fallback"))
	assert.Equal(t, "fallback", MessageOf(errors.New("raw"), "fallback"))
	assert.Equal(t, "raw", MessageOf(errors.New("raw"), ""))
	assert.Equal(t, "fallback", MessageOf(nil, "fallback"))
}

func TestWithFieldsCopies(t *testing.T) {
	t.Parallel()

	withFields := ErrInvalidPayload.WithFields(map[string][]string{"email": {"required"}})
	assert.Nil(t, ErrInvalidPayload.Fields)
	assert.Equal(t, []string{"required"}, FieldsOf(withFields)["email"])
}
