// Package driver defines the backend contract the client use cases depend on.
// Drivers return raw records; the adapter package turns them into the canonical model.
package driver

import (
	"context"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
)

type Kind string

const (
	KindREST Kind = "rest"
	KindBaaS Kind = "baas"
	KindMock Kind = "mock"
)

// Grant is the result of a login or registration. User is nil while the backend
// has not provisioned the profile yet; callers then poll Auth.Profile.
type Grant struct {
	Token string
	User  adapter.Record
}

type Auth interface {
	Login(ctx context.Context, creds adapter.Credentials) (*Grant, error)
	Register(ctx context.Context, reg adapter.Registration) (*Grant, error)
	Logout(ctx context.Context, token string) error
	// Profile returns the current user. It fails with domain.ErrProfileNotFound
	// while provisioning is incomplete.
	Profile(ctx context.Context, token string) (adapter.Record, error)
	UpdateProfile(ctx context.Context, token string, update adapter.ProfileUpdate) (adapter.Record, error)
	UpdateSubscription(ctx context.Context, token string, plan domain.PlanName) (adapter.Record, error)
}

type Directory interface {
	Search(ctx context.Context, token string, filter domain.SearchFilter) ([]adapter.Record, error)
	Person(ctx context.Context, token, id string) (adapter.Record, error)
}

type History interface {
	ListHistory(ctx context.Context, token string, limit int) ([]adapter.Record, error)
	SaveHistory(ctx context.Context, token string, entry adapter.HistoryEntry) (adapter.Record, error)
	DeleteHistory(ctx context.Context, token, id string) error
	ClearHistory(ctx context.Context, token string) error
}

type Reports interface {
	Analytics(ctx context.Context, token string) (adapter.Record, error)
}

// Driver is one interchangeable backend, selected once at startup.
type Driver interface {
	Auth
	Directory
	History
	Reports
	Kind() Kind
	Close() error
}
