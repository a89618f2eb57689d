package repository

import (
	"context"

	"github.com/fastygo/peoplesearch/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, ttlSeconds int) error
}

// SessionPurger is implemented by session stores without native expiry.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}
