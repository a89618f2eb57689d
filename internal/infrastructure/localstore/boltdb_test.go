package localstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "client.db")
	s, err := Open(path, "")
	require.NoError(t, err)
	return s, path
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	require.NoError(t, s.Set(ctx, repository.KeyAuthToken, []byte("secret-token")))
	require.NoError(t, s.Close())

	reopened, err := Open(path, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	v, err := reopened.Get(ctx, repository.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", string(v))
}

func TestStore_MissingAndRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	t.Cleanup(func() { _ = s.Close() })

	_, err := s.Get(ctx, repository.KeyAuthUser)
	assert.ErrorIs(t, err, domain.ErrStorageKeyNotFound)

	require.NoError(t, s.Set(ctx, repository.KeyAuthUser, []byte(`{"id":"1"}`)))
	n, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Remove(ctx, repository.KeyAuthUser))
	require.NoError(t, s.Remove(ctx, repository.KeyAuthUser))
	_, err = s.Get(ctx, repository.KeyAuthUser)
	assert.ErrorIs(t, err, domain.ErrStorageKeyNotFound)
}

func TestStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	t.Cleanup(func() { _ = s.Close() })

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.Set(ctx, "old", []byte("x")))
	s.now = func() time.Time { return base.Add(48 * time.Hour) }
	require.NoError(t, s.Set(ctx, "new", []byte("y")))

	removed, err := s.Cleanup(base.Add(24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.Get(ctx, "new")
	assert.NoError(t, err)
}
