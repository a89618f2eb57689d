// Package session holds the single authenticated identity of the client and the
// bearer credential that signs every backend request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/driver"
	"github.com/fastygo/peoplesearch/repository"
)

// Store is the authoritative holder of who is logged in. Concurrent mutations
// are memory safe; the last one to finish wins.
type Store struct {
	auth    driver.Auth
	storage repository.LocalStorage
	retry   RetryConfig
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	state     State
	inflight  int
	token     string
	identity  *domain.Identity
	cached    *domain.Identity
	listeners map[int]func(Snapshot)
	nextID    int
}

func New(auth driver.Auth, storage repository.LocalStorage, retry RetryConfig, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		auth:      auth,
		storage:   storage,
		retry:     retry,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]func(Snapshot)),
	}
}

// Restore resumes the persisted session. The cached identity is only a hint until
// the backend confirms the credential. An unauthorized reply clears the session;
// a transient failure keeps the credential and leaves the state unknown.
func (s *Store) Restore(ctx context.Context) error {
	s.begin()
	defer s.end()

	raw, err := s.storage.Get(ctx, repository.KeyAuthToken)
	if errors.Is(err, domain.ErrStorageKeyNotFound) || (err == nil && len(raw) == 0) {
		s.set(StateUnauthenticated, "", nil)
		return nil
	}
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "failed to read stored credential", err)
	}
	token := string(raw)
	s.loadCached(ctx)

	user, err := s.auth.Profile(ctx, token)
	switch {
	case err == nil:
		return s.authenticate(ctx, token, user)
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		s.logger.Info("stored credential rejected, clearing session")
		s.clear(ctx)
		return nil
	case errors.Is(err, domain.ErrProfileNotFound):
		return s.awaitProfile(ctx, token, s.Snapshot().State)
	default:
		s.logger.Warn("session restore failed", zap.Error(err))
		return err
	}
}

// Login exchanges credentials for a session. On failure the prior state is kept.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.begin()
	defer s.end()

	grant, err := s.auth.Login(ctx, adapter.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	return s.establish(ctx, grant)
}

// Register creates an account and logs into it, waiting for the backend to
// provision the profile.
func (s *Store) Register(ctx context.Context, reg adapter.Registration) error {
	s.begin()
	defer s.end()

	grant, err := s.auth.Register(ctx, reg)
	if err != nil {
		return err
	}
	return s.establish(ctx, grant)
}

// Logout notifies the backend best-effort and always clears the local session.
func (s *Store) Logout(ctx context.Context) {
	s.begin()
	defer s.end()

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token != "" {
		if err := s.auth.Logout(ctx, token); err != nil {
			s.logger.Warn("backend logout failed", zap.Error(err))
		}
	}
	s.clear(ctx)
}

// UpdateProfile sends the changed fields and replaces the identity with the reply.
// A failure other than unauthorized keeps the prior identity.
func (s *Store) UpdateProfile(ctx context.Context, update adapter.ProfileUpdate) (*domain.Identity, error) {
	if update.Empty() {
		if id := s.Identity(); id != nil {
			return id, nil
		}
		return nil, domain.ErrNotAuthenticated
	}
	return s.replaceIdentity(ctx, func(ctx context.Context, token string) (adapter.Record, error) {
		return s.auth.UpdateProfile(ctx, token, update)
	})
}

// ChangePlan switches the subscription plan.
func (s *Store) ChangePlan(ctx context.Context, plan string) (*domain.Identity, error) {
	name, ok := domain.ParsePlanName(plan)
	if !ok {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown subscription plan").WithFields(map[string][]string{
			"plan": {"The selected plan is invalid."},
		})
	}
	return s.replaceIdentity(ctx, func(ctx context.Context, token string) (adapter.Record, error) {
		return s.auth.UpdateSubscription(ctx, token, name)
	})
}

// Refresh re-reads the identity from the backend. In the pending state it makes
// one attempt to complete provisioning.
func (s *Store) Refresh(ctx context.Context) error {
	s.begin()
	defer s.end()

	s.mu.Lock()
	token, state := s.token, s.state
	s.mu.Unlock()
	if token == "" {
		return domain.ErrNotAuthenticated
	}

	user, err := s.auth.Profile(ctx, token)
	switch {
	case err == nil:
		return s.authenticate(ctx, token, user)
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		s.expire(ctx, token)
		return err
	case state == StatePendingProvisioning && errors.Is(err, domain.ErrProfileNotFound):
		return domain.ErrProfilePending
	default:
		return err
	}
}

// Do runs fn with the current credential. An unauthorized error from fn ends the session.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	s.mu.Lock()
	token, state := s.token, s.state
	s.mu.Unlock()

	switch {
	case state == StatePendingProvisioning:
		return domain.ErrProfilePending
	case state != StateAuthenticated || token == "":
		return domain.ErrNotAuthenticated
	}

	err := fn(ctx, token)
	if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		s.expire(ctx, token)
	}
	return err
}

// Subscribe registers fn for state changes and returns a function removing it.
// fn runs on the goroutine that changed the state.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Identity returns a copy of the authenticated identity, or nil.
func (s *Store) Identity() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return nil
	}
	return s.identity.Clone()
}

// CachedIdentity returns the identity persisted by the last session. It is not
// proof of authentication.
func (s *Store) CachedIdentity() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cached.Clone()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state, Loading: s.inflight > 0}
	if s.state == StateAuthenticated {
		snap.Identity = s.identity.Clone()
	}
	return snap
}

func (s *Store) replaceIdentity(ctx context.Context, call func(ctx context.Context, token string) (adapter.Record, error)) (*domain.Identity, error) {
	s.begin()
	defer s.end()

	var (
		user  adapter.Record
		token string
	)
	err := s.Do(ctx, func(ctx context.Context, t string) error {
		var err error
		token = t
		user, err = call(ctx, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.authenticate(ctx, token, user); err != nil {
		return nil, err
	}
	return s.Identity(), nil
}

// establish turns a grant into a session, waiting for provisioning when the
// grant carries no user yet.
func (s *Store) establish(ctx context.Context, grant *driver.Grant) error {
	if grant.User != nil {
		return s.authenticate(ctx, grant.Token, grant.User)
	}
	return s.awaitProfile(ctx, grant.Token, s.Snapshot().State)
}

// awaitProfile polls the profile with capped exponential backoff. While polling the
// state is pending; on exhaustion the credential stays in memory only and
// domain.ErrProfilePending is returned. Any other failure restores prior.
func (s *Store) awaitProfile(ctx context.Context, token string, prior State) error {
	s.mu.Lock()
	priorToken, priorIdentity := s.token, s.identity
	s.mu.Unlock()
	s.set(StatePendingProvisioning, token, nil)

	var user adapter.Record
	attempt := 0
	op := func() error {
		attempt++
		rec, err := s.auth.Profile(ctx, token)
		if err != nil {
			if errors.Is(err, domain.ErrProfileNotFound) {
				return err
			}
			return backoff.Permanent(err)
		}
		user = rec
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Debug("profile not provisioned yet", zap.Int("attempt", attempt), zap.Duration("retry_in", wait))
	}

	err := backoff.RetryNotify(op, s.policy(ctx), notify)
	switch {
	case err == nil:
		return s.authenticate(ctx, token, user)
	case errors.Is(err, domain.ErrProfileNotFound), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("profile provisioning still pending", zap.Int("attempts", attempt))
		return domain.ErrProfilePending
	default:
		s.set(prior, priorToken, priorIdentity)
		return err
	}
}

func (s *Store) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retry.InitialInterval
	b.Multiplier = s.retry.Multiplier
	b.MaxInterval = s.retry.MaxInterval
	b.MaxElapsedTime = s.retry.MaxElapsed

	var policy backoff.BackOff = b
	if s.retry.MaxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, s.retry.MaxAttempts-1)
	}
	return backoff.WithContext(policy, ctx)
}

// authenticate normalizes the user payload and installs it with the credential.
func (s *Store) authenticate(ctx context.Context, token string, user adapter.Record) error {
	identity, err := adapter.NormalizeIdentity(user, s.now())
	if err != nil {
		return err
	}
	s.set(StateAuthenticated, token, identity)
	s.persist(ctx, token, identity)
	return nil
}

func (s *Store) persist(ctx context.Context, token string, identity *domain.Identity) {
	if err := s.storage.Set(ctx, repository.KeyAuthToken, []byte(token)); err != nil {
		s.logger.Warn("failed to persist credential", zap.Error(err))
		return
	}
	data, err := json.Marshal(identity)
	if err != nil {
		s.logger.Warn("failed to encode identity", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, repository.KeyAuthUser, data); err != nil {
		s.logger.Warn("failed to persist identity", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.cached = identity.Clone()
	s.mu.Unlock()
}

func (s *Store) loadCached(ctx context.Context) {
	data, err := s.storage.Get(ctx, repository.KeyAuthUser)
	if err != nil {
		return
	}
	rec, err := adapter.DecodeRecord(data)
	if err != nil {
		s.logger.Debug("ignoring unreadable cached identity", zap.Error(err))
		return
	}
	identity, err := adapter.NormalizeIdentity(rec, s.now())
	if err != nil {
		return
	}
	s.mu.Lock()
	s.cached = identity
	s.mu.Unlock()
}

// expire clears the session unless a newer credential has replaced token meanwhile.
func (s *Store) expire(ctx context.Context, token string) {
	s.mu.Lock()
	current := s.token
	s.mu.Unlock()
	if current != token {
		return
	}
	s.logger.Info("credential rejected by backend, session cleared")
	s.clear(ctx)
}

func (s *Store) clear(ctx context.Context) {
	for _, key := range []string{repository.KeyAuthToken, repository.KeyAuthUser} {
		if err := s.storage.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to remove stored session", zap.String("key", key), zap.Error(err))
		}
	}
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
	s.set(StateUnauthenticated, "", nil)
}

func (s *Store) set(state State, token string, identity *domain.Identity) {
	s.mu.Lock()
	s.state = state
	s.token = token
	s.identity = identity
	s.mu.Unlock()
	s.publish()
}

func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
	s.publish()
}

func (s *Store) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
	s.publish()
}

func (s *Store) publish() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
