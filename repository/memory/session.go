package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

// SessionRepository keeps sessions in process memory. Expired entries are hidden from
// Get and removed by PurgeExpired.
type SessionRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]domain.Session
}

var (
	_ repository.SessionRepository = (*SessionRepository)(nil)
	_ repository.SessionPurger     = (*SessionRepository)(nil)
)

// SessionOption configures a SessionRepository.
type SessionOption func(*SessionRepository)

// WithClock replaces the clock used for expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(r *SessionRepository) { r.now = now }
}

func NewSessionRepository(ttl time.Duration, opts ...SessionOption) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	r := &SessionRepository{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]domain.Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.IsExpired(r.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *SessionRepository) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	now := r.now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	r.mu.Lock()
	r.sessions[session.ID] = *session
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) Extend(_ context.Context, id string, ttlSeconds int) error {
	duration := time.Duration(ttlSeconds) * time.Second
	if duration <= 0 {
		duration = r.ttl
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.ExpiresAt = r.now().Add(duration)
	r.sessions[id] = s
	return nil
}

// PurgeExpired drops every expired session and reports how many were removed.
func (r *SessionRepository) PurgeExpired(_ context.Context) (int, error) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.IsExpired(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}
