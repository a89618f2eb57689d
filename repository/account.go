package repository

import (
	"context"
	"time"

	"github.com/fastygo/peoplesearch/domain"
)

type AccountRepository interface {
	// Create assigns the account ID. Returns domain.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	TouchLogin(ctx context.Context, id int64, at time.Time) error
}

// ProfileRepository stores the profile rows provisioned for accounts.
// Get returns domain.ErrProfileNotFound until the row exists.
type ProfileRepository interface {
	Get(ctx context.Context, accountID int64) (*domain.Profile, error)
	Create(ctx context.Context, profile *domain.Profile) error
	Update(ctx context.Context, profile *domain.Profile) error
}
