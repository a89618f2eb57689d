// Package mock builds an in-memory backend with demo people. A provisioning delay
// reproduces the window in which a new account has no profile yet.
package mock

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/driver"
	"github.com/fastygo/peoplesearch/driver/local"
	"github.com/fastygo/peoplesearch/internal/backend"
	"github.com/fastygo/peoplesearch/repository/memory"
)

type Config struct {
	ProvisionDelay time.Duration
	SessionTTL     time.Duration
	// People replaces the demo directory when set.
	People   []domain.Person
	HashCost int
}

func New(cfg Config, logger *zap.Logger) *local.Driver {
	people := cfg.People
	if people == nil {
		people = backend.DemoPeople()
	}
	opts := backend.Options{
		Provision:  backend.ProvisionInline,
		SessionTTL: cfg.SessionTTL,
		HashCost:   cfg.HashCost,
	}
	if cfg.ProvisionDelay > 0 {
		opts.Provision = backend.ProvisionDeferred
		opts.ProvisionDelay = cfg.ProvisionDelay
	}

	svc := backend.New(backend.Repositories{
		Accounts: memory.NewAccountRepository(),
		Profiles: memory.NewProfileRepository(),
		People:   memory.NewPersonRepository(people...),
		History:  memory.NewHistoryRepository(),
		Sessions: memory.NewSessionRepository(cfg.SessionTTL),
	}, backend.NewTokenIssuer(uuid.NewString(), string(driver.KindMock)), opts, logger)
	return local.New(driver.KindMock, svc, backend.ShapeCanonical)
}
