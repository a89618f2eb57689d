package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository/memory"
)

type fakeHealth struct{ online bool }

func (f fakeHealth) IsOnline() bool { return f.online }

func TestJanitor_PurgesExpiredSessions(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	clock := now
	sessions := memory.NewSessionRepository(time.Hour, memory.WithClock(func() time.Time { return clock }))
	ctx := context.Background()
	require.NoError(t, sessions.Save(ctx, &domain.Session{ID: "old", AccountID: "1", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, sessions.Save(ctx, &domain.Session{ID: "live", AccountID: "1", ExpiresAt: now.Add(2 * time.Hour)}))

	j, err := NewJanitor(JanitorConfig{}, nil, nil, SessionPurgeTask(sessions))
	require.NoError(t, err)

	clock = now.Add(30 * time.Minute)
	require.NoError(t, j.RunOnce(ctx))

	_, err = sessions.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = sessions.Get(ctx, "live")
	assert.NoError(t, err)
}

func TestJanitor_FailingTaskDoesNotStopOthers(t *testing.T) {
	ran := false
	boom := errors.New("boom")
	j, err := NewJanitor(JanitorConfig{Schedule: "@every 1h"}, fakeHealth{online: true}, nil,
		Task{Name: "broken", Run: func(context.Context) (int, error) { return 0, boom }},
		Task{Name: "ok", Run: func(context.Context) (int, error) { ran = true; return 3, nil }},
	)
	require.NoError(t, err)

	err = j.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.True(t, ran)
}

func TestJanitor_SkipsWhileOffline(t *testing.T) {
	ran := false
	j, err := NewJanitor(JanitorConfig{}, fakeHealth{online: false}, nil,
		Task{Name: "t", Run: func(context.Context) (int, error) { ran = true; return 0, nil }})
	require.NoError(t, err)

	require.NoError(t, j.RunOnce(context.Background()))
	assert.False(t, ran)
}

func TestJanitor_InvalidSchedule(t *testing.T) {
	_, err := NewJanitor(JanitorConfig{Schedule: "every now and then"}, nil, nil)
	assert.Error(t, err)
}

func TestJanitor_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	j, err := NewJanitor(JanitorConfig{Schedule: "@every 1h"}, nil, nil)
	require.NoError(t, err)
	j.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.Stop(ctx)
}
