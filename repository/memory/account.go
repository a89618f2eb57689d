// Package memory holds in-process repositories used by the mock backend and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

type accountRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]domain.Account
	byEmail map[string]int64
}

// NewAccountRepository returns an empty in-memory AccountRepository.
func NewAccountRepository() repository.AccountRepository {
	return &accountRepository{
		byID:    make(map[int64]domain.Account),
		byEmail: make(map[string]int64),
	}
}

func (r *accountRepository) Create(_ context.Context, account *domain.Account) error {
	if account == nil {
		return domain.ErrInvalidPayload
	}
	email := domain.NormalizeEmail(account.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[email]; taken {
		return domain.ErrEmailTaken
	}
	r.nextID++
	now := time.Now().UTC()
	account.ID = r.nextID
	account.Email = email
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	r.byID[account.ID] = cloneAccount(*account)
	r.byEmail[email] = account.ID
	return nil
}

func (r *accountRepository) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := cloneAccount(account)
	return &cp, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *accountRepository) TouchLogin(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.LastLoginAt = &at
	account.UpdatedAt = at
	r.byID[id] = account
	return nil
}

func cloneAccount(a domain.Account) domain.Account {
	a.PasswordHash = append([]byte(nil), a.PasswordHash...)
	if a.Metadata != nil {
		md := make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			md[k] = v
		}
		a.Metadata = md
	}
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		a.LastLoginAt = &t
	}
	return a
}
