package repository

import (
	"context"
	"time"

	"github.com/fastygo/peoplesearch/domain"
)

type HistoryFilter struct {
	UserID string
	Since  time.Time
	Limit  int
	Offset int
}

type HistoryRepository interface {
	List(ctx context.Context, filter HistoryFilter) ([]domain.SearchHistory, error)
	Create(ctx context.Context, entry *domain.SearchHistory) (*domain.SearchHistory, error)
	// Delete removes one entry of the user. Returns domain.ErrHistoryNotFound when absent.
	Delete(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) (int, error)
}
