package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/driver"
	"github.com/fastygo/peoplesearch/repository"
	"github.com/fastygo/peoplesearch/repository/memory"
)

type reply struct {
	user adapter.Record
	err  error
}

type fakeAuth struct {
	mu sync.Mutex

	loginGrant    *driver.Grant
	loginErr      error
	registerGrant *driver.Grant
	registerErr   error
	logoutErr     error
	logoutTokens  []string

	profiles     []reply
	profileCalls int

	updateUser   adapter.Record
	updateErr    error
	lastUpdate   *adapter.ProfileUpdate
	lastPlan     domain.PlanName
	updateTokens []string
}

func (f *fakeAuth) Login(_ context.Context, _ adapter.Credentials) (*driver.Grant, error) {
	return f.loginGrant, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, _ adapter.Registration) (*driver.Grant, error) {
	return f.registerGrant, f.registerErr
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutTokens = append(f.logoutTokens, token)
	return f.logoutErr
}

// Profile plays the queued replies in order, repeating the last one.
func (f *fakeAuth) Profile(_ context.Context, _ string) (adapter.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	if len(f.profiles) == 0 {
		return nil, domain.ErrProfileNotFound
	}
	r := f.profiles[0]
	if len(f.profiles) > 1 {
		f.profiles = f.profiles[1:]
	}
	return r.user, r.err
}

func (f *fakeAuth) UpdateProfile(_ context.Context, token string, update adapter.ProfileUpdate) (adapter.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = &update
	f.updateTokens = append(f.updateTokens, token)
	return f.updateUser, f.updateErr
}

func (f *fakeAuth) UpdateSubscription(_ context.Context, token string, plan domain.PlanName) (adapter.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPlan = plan
	f.updateTokens = append(f.updateTokens, token)
	return f.updateUser, f.updateErr
}

func (f *fakeAuth) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileCalls
}

var fastRetry = RetryConfig{
	InitialInterval: time.Millisecond,
	Multiplier:      2,
	MaxInterval:     4 * time.Millisecond,
	MaxElapsed:      time.Second,
	MaxAttempts:     3,
}

func laravelUser(id int, name string) adapter.Record {
	return adapter.Record{
		"id":    id,
		"name":  name,
		"email": "user@example.com",
		"profile": map[string]any{
			"role":              "user",
			"subscription_plan": "basic",
		},
	}
}

func newStore(t *testing.T, auth *fakeAuth) (*Store, *memory.Storage) {
	t.Helper()
	storage := memory.NewStorage()
	store := New(auth, storage, fastRetry, nil)
	return store, storage
}

func stored(t *testing.T, storage *memory.Storage, key string) (string, bool) {
	t.Helper()
	v, err := storage.Get(context.Background(), key)
	if errors.Is(err, domain.ErrStorageKeyNotFound) {
		return "", false
	}
	require.NoError(t, err)
	return string(v), true
}

func login(t *testing.T, store *Store, auth *fakeAuth) {
	t.Helper()
	auth.loginGrant = &driver.Grant{Token: "tok-1", User: laravelUser(7, "Ada Lovelace King")}
	require.NoError(t, store.Login(context.Background(), "user@example.com", "pw"))
}

func TestStore_RestoreWithoutCredential(t *testing.T) {
	auth := &fakeAuth{}
	store, _ := newStore(t, auth)

	require.NoError(t, store.Restore(context.Background()))
	assert.Equal(t, StateUnauthenticated, store.Snapshot().State)
	assert.Zero(t, auth.calls())
}

func TestStore_RestoreConfirmsWithBackend(t *testing.T) {
	auth := &fakeAuth{profiles: []reply{{user: laravelUser(7, "Ada Lovelace")}}}
	store, storage := newStore(t, auth)
	ctx := context.Background()
	require.NoError(t, storage.Set(ctx, repository.KeyAuthToken, []byte("tok-1")))
	require.NoError(t, storage.Set(ctx, repository.KeyAuthUser, []byte(`{"id":"7","email":"stale@example.com","firstName":"Old"}`)))

	require.NoError(t, store.Restore(ctx))

	snap := store.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "7", snap.Identity.ID)
	assert.Equal(t, "Ada", snap.Identity.FirstName)
	assert.Equal(t, "Ada", store.CachedIdentity().FirstName)
}

func TestStore_RestoreUnauthorizedClears(t *testing.T) {
	auth := &fakeAuth{profiles: []reply{{err: domain.ErrUnauthorized}}}
	store, storage := newStore(t, auth)
	ctx := context.Background()
	require.NoError(t, storage.Set(ctx, repository.KeyAuthToken, []byte("expired")))
	require.NoError(t, storage.Set(ctx, repository.KeyAuthUser, []byte(`{"id":"7"}`)))

	require.NoError(t, store.Restore(ctx))
	assert.Equal(t, StateUnauthenticated, store.Snapshot().State)
	_, ok := stored(t, storage, repository.KeyAuthToken)
	assert.False(t, ok)
	_, ok = stored(t, storage, repository.KeyAuthUser)
	assert.False(t, ok)
	assert.Nil(t, store.CachedIdentity())
}

func TestStore_RestoreTransientKeepsCredential(t *testing.T) {
	auth := &fakeAuth{profiles: []reply{{err: domain.ErrBackendUnavailable}}}
	store, storage := newStore(t, auth)
	ctx := context.Background()
	require.NoError(t, storage.Set(ctx, repository.KeyAuthToken, []byte("tok-1")))

	err := store.Restore(ctx)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Equal(t, StateUnknown, store.Snapshot().State)
	token, ok := stored(t, storage, repository.KeyAuthToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestStore_LoginPersistsAndNormalizes(t *testing.T) {
	auth := &fakeAuth{}
	store, storage := newStore(t, auth)
	login(t, store, auth)

	identity := store.Identity()
	require.NotNil(t, identity)
	assert.Equal(t, "Ada", identity.FirstName)
	assert.Equal(t, "Lovelace King", identity.LastName)
	assert.Equal(t, domain.PlanBasic, identity.SubscriptionPlan.Name)

	token, ok := stored(t, storage, repository.KeyAuthToken)
	require.True(t, ok)
	assert.Equal(t, "tok-1", token)

	cached, ok := stored(t, storage, repository.KeyAuthUser)
	require.True(t, ok)
	rec, err := adapter.DecodeRecord([]byte(cached))
	require.NoError(t, err)
	again, err := adapter.NormalizeIdentity(rec, time.Now())
	require.NoError(t, err)
	assert.Equal(t, identity.FullName(), again.FullName())
}

func TestStore_LoginFailureKeepsPriorState(t *testing.T) {
	auth := &fakeAuth{}
	store, storage := newStore(t, auth)
	login(t, store, auth)

	auth.loginErr = domain.NewError(domain.ErrCodeUnauthorized, "These credentials do not match our records.")
	err := store.Login(context.Background(), "user@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "These credentials do not match our records.", domain.MessageOf(err, "Login failed"))

	snap := store.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.False(t, snap.Loading)
	assert.Equal(t, "Ada", snap.Identity.FirstName)
	token, _ := stored(t, storage, repository.KeyAuthToken)
	assert.Equal(t, "tok-1", token)
}

func TestStore_RegisterWaitsForProvisioning(t *testing.T) {
	auth := &fakeAuth{
		registerGrant: &driver.Grant{Token: "tok-new"},
		profiles: []reply{
			{err: domain.ErrProfileNotFound},
			{err: domain.ErrProfileNotFound},
			{user: laravelUser(9, "Grace Hopper")},
		},
	}
	store, _ := newStore(t, auth)

	var mu sync.Mutex
	var states []State
	unsubscribe := store.Subscribe(func(s Snapshot) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})
	defer unsubscribe()

	require.NoError(t, store.Register(context.Background(), adapter.Registration{Email: "g@example.com", Password: "password123"}))
	assert.Equal(t, StateAuthenticated, store.Snapshot().State)
	assert.Equal(t, "Grace", store.Identity().FirstName)
	assert.Equal(t, 3, auth.calls())

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, StatePendingProvisioning)
	assert.Equal(t, StateAuthenticated, states[len(states)-1])
}

func TestStore_RegisterProvisioningExhausted(t *testing.T) {
	auth := &fakeAuth{registerGrant: &driver.Grant{Token: "tok-new"}}
	store, storage := newStore(t, auth)
	ctx := context.Background()

	err := store.Register(ctx, adapter.Registration{Email: "g@example.com", Password: "password123"})
	require.ErrorIs(t, err, domain.ErrProfilePending)
	assert.Equal(t, domain.ErrCodePending, domain.CodeOf(err))
	assert.Equal(t, int(fastRetry.MaxAttempts), auth.calls())

	assert.Equal(t, StatePendingProvisioning, store.Snapshot().State)
	assert.Nil(t, store.Identity())
	_, ok := stored(t, storage, repository.KeyAuthToken)
	assert.False(t, ok)

	assert.ErrorIs(t, store.Do(ctx, func(context.Context, string) error { return nil }), domain.ErrProfilePending)
	assert.ErrorIs(t, store.Refresh(ctx), domain.ErrProfilePending)

	auth.mu.Lock()
	auth.profiles = []reply{{user: laravelUser(9, "Grace Hopper")}}
	auth.mu.Unlock()
	require.NoError(t, store.Refresh(ctx))
	assert.Equal(t, StateAuthenticated, store.Snapshot().State)
	token, ok := stored(t, storage, repository.KeyAuthToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-new", token)
}

func TestStore_PendingLogoutClears(t *testing.T) {
	auth := &fakeAuth{registerGrant: &driver.Grant{Token: "tok-new"}}
	store, _ := newStore(t, auth)

	_ = store.Register(context.Background(), adapter.Registration{Email: "g@example.com", Password: "password123"})
	store.Logout(context.Background())
	assert.Equal(t, StateUnauthenticated, store.Snapshot().State)
	assert.Equal(t, []string{"tok-new"}, auth.logoutTokens)
}

func TestStore_ProvisioningOtherFailureRestoresPriorState(t *testing.T) {
	auth := &fakeAuth{
		registerGrant: &driver.Grant{Token: "tok-new"},
		profiles:      []reply{{err: domain.ErrProfileNotFound}, {err: domain.ErrBackendUnavailable}},
	}
	store, _ := newStore(t, auth)
	require.NoError(t, store.Restore(context.Background()))

	err := store.Register(context.Background(), adapter.Registration{Email: "g@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Equal(t, StateUnauthenticated, store.Snapshot().State)
}

func TestStore_LogoutClearsEvenWhenBackendFails(t *testing.T) {
	auth := &fakeAuth{logoutErr: domain.ErrBackendUnavailable}
	store, storage := newStore(t, auth)
	login(t, store, auth)

	store.Logout(context.Background())

	assert.Equal(t, []string{"tok-1"}, auth.logoutTokens)
	assert.Equal(t, StateUnauthenticated, store.Snapshot().State)
	assert.Nil(t, store.Identity())
	_, ok := stored(t, storage, repository.KeyAuthToken)
	assert.False(t, ok)
	_, ok = stored(t, storage, repository.KeyAuthUser)
	assert.False(t, ok)
}

func TestStore_UpdateProfile(t *testing.T) {
	auth := &fakeAuth{}
	store, _ := newStore(t, auth)
	login(t, store, auth)
	ctx := context.Background()

	bio := "Mathematician"
	updated := laravelUser(7, "Ada Lovelace")
	updated["profile"].(map[string]any)["bio"] = bio
	auth.updateUser = updated

	identity, err := store.UpdateProfile(ctx, adapter.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Mathematician", identity.Bio)
	assert.Equal(t, map[string]any{"bio": "Mathematician"}, auth.lastUpdate.Wire())
	assert.Equal(t, []string{"tok-1"}, auth.updateTokens)

	auth.updateErr = domain.ErrBackendUnavailable
	other := "x"
	_, err = store.UpdateProfile(ctx, adapter.ProfileUpdate{Bio: &other})
	require.Error(t, err)
	assert.Equal(t, StateAuthenticated, store.Snapshot().State)
	assert.Equal(t, "Mathematician", store.Identity().Bio)
}

func TestStore_UpdateProfileUnauthorizedClears(t *testing.T) {
	auth := &fakeAuth{}
	store, storage := newStore(t, auth)
	login(t, store, auth)

	auth.updateErr = domain.ErrUnauthorized
	bio := "x"
	_, err := store.UpdateProfile(context.Background(), adapter.ProfileUpdate{Bio: &bio})
	require.Error(t, err)
	assert.Equal(t, StateUnauthenticated, store.Snapshot().State)
	_, ok := stored(t, storage, repository.KeyAuthToken)
	assert.False(t, ok)
}

func TestStore_UpdateProfileWithoutChanges(t *testing.T) {
	auth := &fakeAuth{}
	store, _ := newStore(t, auth)

	_, err := store.UpdateProfile(context.Background(), adapter.ProfileUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	login(t, store, auth)
	identity, err := store.UpdateProfile(context.Background(), adapter.ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Ada", identity.FirstName)
	assert.Nil(t, auth.lastUpdate)
}

func TestStore_ChangePlan(t *testing.T) {
	auth := &fakeAuth{}
	store, _ := newStore(t, auth)
	login(t, store, auth)

	_, err := store.ChangePlan(context.Background(), "platinum")
	assert.Equal(t, domain.ErrCodeInvalid, domain.CodeOf(err))
	assert.Empty(t, auth.lastPlan)

	upgraded := laravelUser(7, "Ada Lovelace")
	upgraded["profile"] = map[string]any{"role": "premium", "subscription_plan": "premium"}
	auth.updateUser = upgraded
	identity, err := store.ChangePlan(context.Background(), " Premium ")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPremium, auth.lastPlan)
	assert.Equal(t, domain.RolePremium, identity.Role)
	assert.Equal(t, domain.Unlimited, identity.SubscriptionPlan.MaxSearches)
}

func TestStore_DoExpiresOnUnauthorized(t *testing.T) {
	auth := &fakeAuth{}
	store, _ := newStore(t, auth)
	ctx := context.Background()

	err := store.Do(ctx, func(context.Context, string) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	login(t, store, auth)
	var seen string
	require.NoError(t, store.Do(ctx, func(_ context.Context, token string) error {
		seen = token
		return nil
	}))
	assert.Equal(t, "tok-1", seen)

	err = store.Do(ctx, func(context.Context, string) error { return domain.ErrBackendUnavailable })
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Equal(t, StateAuthenticated, store.Snapshot().State)

	err = store.Do(ctx, func(context.Context, string) error {
		return domain.NewError(domain.ErrCodeUnauthorized, "Unauthenticated.")
	})
	require.Error(t, err)
	assert.Equal(t, StateUnauthenticated, store.Snapshot().State)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	auth := &fakeAuth{loginGrant: &driver.Grant{Token: "tok-1", User: laravelUser(7, "Ada Lovelace")}}
	store, _ := newStore(t, auth)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Login(context.Background(), "user@example.com", "pw")
		}()
		go func() {
			defer wg.Done()
			_ = store.Identity()
			_ = store.Snapshot()
		}()
	}
	wg.Wait()

	snap := store.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.False(t, snap.Loading)
}
