package backend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/peoplesearch/domain"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", "peoplesearch")
	issuer.now = func() time.Time { return testNow }

	token, err := issuer.Issue(&domain.Session{ID: "sess-1", AccountID: "42", CreatedAt: testNow, ExpiresAt: testNow.Add(time.Hour)})
	require.NoError(t, err)

	accountID, sessionID, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), accountID)
	assert.Equal(t, "sess-1", sessionID)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", "peoplesearch")
	issuer.now = func() time.Time { return testNow }

	expired, err := issuer.Issue(&domain.Session{ID: "s", AccountID: "1", CreatedAt: testNow.Add(-2 * time.Hour), ExpiresAt: testNow.Add(-time.Hour)})
	require.NoError(t, err)
	foreign, err := NewTokenIssuer("secret", "elsewhere").Issue(&domain.Session{ID: "s", AccountID: "1", CreatedAt: testNow, ExpiresAt: testNow.Add(time.Hour)})
	require.NoError(t, err)
	badAccount, err := issuer.Issue(&domain.Session{ID: "s", AccountID: "abc", CreatedAt: testNow, ExpiresAt: testNow.Add(time.Hour)})
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":     "not-a-token",
		"expired":     expired,
		"issuer":      foreign,
		"bad account": badAccount,
	} {
		_, _, err := issuer.Parse(token)
		assert.Equal(t, domain.ErrCodeUnauthorized, domain.CodeOf(err), name)
	}
}
