package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewAccountRepository()

	first := &domain.Account{Name: "Ada", Email: "Ada@Example.com", PasswordHash: []byte("h")}
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, int64(1), first.ID)

	err := repo.Create(ctx, &domain.Account{Email: " ada@example.com "})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	got, err := repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	now := time.Now()
	require.NoError(t, repo.TouchLogin(ctx, got.ID, now))
	got, err = repo.GetByID(ctx, got.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestProfileRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewProfileRepository()

	_, err := repo.Get(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.Profile{AccountID: 1}), domain.ErrProfileNotFound)

	require.NoError(t, repo.Create(ctx, &domain.Profile{AccountID: 1, FirstName: "Ada"}))
	require.NoError(t, repo.Create(ctx, &domain.Profile{AccountID: 1, FirstName: "Ignored"}))

	p, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FirstName)
}

func TestPersonRepository_ListFiltersAndPages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewPersonRepository(
		domain.Person{ID: "1", Company: "Google", LastUpdated: base},
		domain.Person{ID: "2", Company: "Googleplex", LastUpdated: base.Add(time.Hour)},
		domain.Person{ID: "3", Company: "Meta", LastUpdated: base},
	)

	got, err := repo.List(ctx, repository.PersonQuery{Company: "GOOG"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.NotNil(t, got[0].Skills)

	got, err = repo.List(ctx, repository.PersonQuery{Limit: 1, Offset: 2})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = repo.List(ctx, repository.PersonQuery{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistoryRepository_ScopedToUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewHistoryRepository()

	mine, err := repo.Create(ctx, &domain.SearchHistory{UserID: "u1", Query: "a"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.SearchHistory{UserID: "u2", Query: "b"})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, "u2", mine.ID), domain.ErrHistoryNotFound)

	list, err := repo.List(ctx, repository.HistoryFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	removed, err := repo.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	list, err = repo.List(ctx, repository.HistoryFilter{UserID: "u2"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.Create(ctx, &domain.SearchHistory{})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestSessionRepository_PurgeExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := NewSessionRepository(time.Minute)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "live"}))
	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "old", CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-time.Minute)}))

	_, err := repo.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	removed, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	s, err := repo.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), s.ExpiresAt)
}

func TestStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStorage()

	_, err := s.Get(ctx, repository.KeyAuthToken)
	assert.ErrorIs(t, err, domain.ErrStorageKeyNotFound)

	require.NoError(t, s.Set(ctx, repository.KeyAuthToken, []byte("tok")))
	v, err := s.Get(ctx, repository.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), v)

	require.NoError(t, s.Remove(ctx, repository.KeyAuthToken))
	require.NoError(t, s.Remove(ctx, repository.KeyAuthToken))
}
