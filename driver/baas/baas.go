// Package baas is the driver for the hosted Postgres backend: accounts live in
// auth_users and a database trigger provisions user_profiles asynchronously
// with respect to sign-up.
package baas

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/driver"
	"github.com/fastygo/peoplesearch/driver/local"
	"github.com/fastygo/peoplesearch/internal/backend"
	"github.com/fastygo/peoplesearch/repository"
	"github.com/fastygo/peoplesearch/repository/memory"
	"github.com/fastygo/peoplesearch/repository/postgres"
)

type Config struct {
	JWTSecret  string
	Issuer     string
	SessionTTL time.Duration
	// Sessions defaults to an in-process store.
	Sessions repository.SessionRepository
}

// New builds the driver over pool. Closing the driver closes the pool.
func New(pool *pgxpool.Pool, cfg Config, logger *zap.Logger) *local.Driver {
	sessions := cfg.Sessions
	if sessions == nil {
		sessions = memory.NewSessionRepository(cfg.SessionTTL)
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = string(driver.KindBaaS)
	}

	svc := backend.New(backend.Repositories{
		Accounts: postgres.NewAccountRepository(pool),
		Profiles: postgres.NewProfileRepository(pool),
		People:   postgres.NewPersonRepository(pool),
		History:  postgres.NewHistoryRepository(pool),
		Sessions: sessions,
	}, backend.NewTokenIssuer(cfg.JWTSecret, issuer), backend.Options{
		Provision:  backend.ProvisionTrigger,
		SessionTTL: cfg.SessionTTL,
	}, logger)
	return local.New(driver.KindBaaS, svc, backend.ShapeBaaS, func() error {
		pool.Close()
		return nil
	})
}
