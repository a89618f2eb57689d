package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

type historyRepository struct {
	mu      sync.RWMutex
	entries map[string]domain.SearchHistory
}

// NewHistoryRepository returns an empty in-memory HistoryRepository.
func NewHistoryRepository() repository.HistoryRepository {
	return &historyRepository{entries: make(map[string]domain.SearchHistory)}
}

func (r *historyRepository) List(_ context.Context, filter repository.HistoryFilter) ([]domain.SearchHistory, error) {
	r.mu.RLock()
	out := make([]domain.SearchHistory, 0)
	for _, e := range r.entries {
		if e.UserID != filter.UserID {
			continue
		}
		if !filter.Since.IsZero() && e.CreatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, filter.Offset, filter.Limit), nil
}

func (r *historyRepository) Create(_ context.Context, entry *domain.SearchHistory) (*domain.SearchHistory, error) {
	if entry == nil || entry.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	r.entries[entry.ID] = *entry
	r.mu.Unlock()

	cp := *entry
	return &cp, nil
}

func (r *historyRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return domain.ErrHistoryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *historyRepository) Clear(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if e.UserID == userID {
			delete(r.entries, id)
			removed++
		}
	}
	return removed, nil
}
