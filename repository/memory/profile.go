package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

type profileRepository struct {
	mu       sync.RWMutex
	profiles map[int64]domain.Profile
}

// NewProfileRepository returns an empty in-memory ProfileRepository.
func NewProfileRepository() repository.ProfileRepository {
	return &profileRepository{profiles: make(map[int64]domain.Profile)}
}

func (r *profileRepository) Get(_ context.Context, accountID int64) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[accountID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := cloneProfile(p)
	return &cp, nil
}

func (r *profileRepository) Create(_ context.Context, profile *domain.Profile) error {
	if profile == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.AccountID]; exists {
		return nil
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.profiles[profile.AccountID] = cloneProfile(*profile)
	return nil
}

func (r *profileRepository) Update(_ context.Context, profile *domain.Profile) error {
	if profile == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.AccountID]; !exists {
		return domain.ErrProfileNotFound
	}
	profile.UpdatedAt = time.Now().UTC()
	r.profiles[profile.AccountID] = cloneProfile(*profile)
	return nil
}

func cloneProfile(p domain.Profile) domain.Profile {
	if p.PlanExpiresAt != nil {
		t := *p.PlanExpiresAt
		p.PlanExpiresAt = &t
	}
	return p
}
