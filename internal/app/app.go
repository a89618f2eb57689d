// Package app wires the client: backend driver, durable storage, session store
// and the use cases built on top of it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/driver"
	"github.com/fastygo/peoplesearch/driver/baas"
	"github.com/fastygo/peoplesearch/driver/mock"
	"github.com/fastygo/peoplesearch/driver/rest"
	"github.com/fastygo/peoplesearch/internal/config"
	"github.com/fastygo/peoplesearch/internal/infrastructure/localstore"
	pgInfra "github.com/fastygo/peoplesearch/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/peoplesearch/internal/infrastructure/redis"
	"github.com/fastygo/peoplesearch/repository"
	"github.com/fastygo/peoplesearch/repository/memory"
	redisRepo "github.com/fastygo/peoplesearch/repository/redis"
	"github.com/fastygo/peoplesearch/usecase/analytics"
	"github.com/fastygo/peoplesearch/usecase/history"
	"github.com/fastygo/peoplesearch/usecase/search"
	"github.com/fastygo/peoplesearch/usecase/session"
)

const storageBucket = "session"

// App holds everything a client command needs.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Driver    driver.Driver
	Session   *session.Store
	Search    *search.UseCase
	History   *history.Manager
	Analytics *analytics.UseCase

	closers []func() error
}

// Option overrides a dependency, mostly for tests.
type Option func(*options)

type options struct {
	driver  driver.Driver
	storage repository.LocalStorage
}

// WithDriver skips driver construction from configuration.
func WithDriver(d driver.Driver) Option {
	return func(o *options) { o.driver = d }
}

// WithStorage skips opening the bbolt file.
func WithStorage(s repository.LocalStorage) Option {
	return func(o *options) { o.storage = s }
}

// New builds the client. Configuration warnings are logged, not returned.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, w := range cfg.Warnings() {
		logger.Warn("configuration", zap.String("warning", w))
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Logger: logger}

	drv := o.driver
	if drv == nil {
		var err error
		drv, err = a.openDriver(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, drv.Close)
	}

	storage := o.storage
	if storage == nil {
		var err error
		storage, err = a.openStorage()
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Driver = drv
	a.Session = session.New(drv, storage, retryConfig(cfg.Provisioning), logger.Named("session"))
	a.Search = search.New(a.Session, drv, drv, logger.Named("search"))
	a.History = history.New(a.Session, drv, logger.Named("history"))
	a.Analytics = analytics.New(a.Session, drv, logger.Named("analytics"))
	return a, nil
}

// Close releases the driver and storage in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openDriver(ctx context.Context) (driver.Driver, error) {
	cfg := a.Config
	switch cfg.Backend.Driver {
	case config.DriverREST:
		client := &fasthttp.Client{
			Name:         cfg.App.Name,
			ReadTimeout:  cfg.Backend.Timeout,
			WriteTimeout: cfg.Backend.Timeout,
		}
		return rest.New(cfg.Backend.BaseURL, rest.WithHTTPClient(client), rest.WithLogger(a.Logger.Named("rest"))), nil

	case config.DriverBaaS:
		if err := pgInfra.RunMigrations(cfg, a.Logger); err != nil {
			return nil, fmt.Errorf("baas migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.DB, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("baas connection: %w", err)
		}
		bcfg := baas.Config{
			JWTSecret:  cfg.JWT.Secret,
			Issuer:     cfg.JWT.Issuer,
			SessionTTL: cfg.JWT.TTL,
		}
		if cfg.Redis.Enabled {
			client, err := redisInfra.NewClient(ctx, cfg.Redis, a.Logger)
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("baas sessions: %w", err)
			}
			a.closers = append(a.closers, client.Close)
			bcfg.Sessions = redisRepo.NewSessionRepository(client, cfg.Redis.Prefix, cfg.JWT.TTL)
		}
		return baas.New(pool, bcfg, a.Logger.Named("baas")), nil

	case config.DriverMock:
		return mock.New(mock.Config{
			ProvisionDelay: cfg.Backend.ProvisionDelay,
			SessionTTL:     cfg.JWT.TTL,
		}, a.Logger.Named("mock")), nil

	default:
		return nil, fmt.Errorf("unsupported backend driver %q", cfg.Backend.Driver)
	}
}

func (a *App) openStorage() (repository.LocalStorage, error) {
	cfg := a.Config.Storage
	if cfg.Path == "" {
		return memory.NewStorage(), nil
	}
	store, err := localstore.Open(cfg.Path, storageBucket)
	if err != nil {
		return nil, fmt.Errorf("open session storage %s: %w", cfg.Path, err)
	}
	a.closers = append(a.closers, store.Close)

	if cfg.MaxAge > 0 {
		removed, err := store.Cleanup(time.Now().Add(-cfg.MaxAge))
		if err != nil {
			a.Logger.Warn("session storage cleanup failed", zap.Error(err))
		} else if removed > 0 {
			a.Logger.Info("stale session slots removed", zap.Int("count", removed))
		}
	}
	if slots, err := store.Size(); err == nil {
		a.Logger.Debug("session storage opened", zap.String("path", cfg.Path), zap.Int("slots", slots))
	}
	return store, nil
}

func retryConfig(cfg config.ProvisioningConfig) session.RetryConfig {
	return session.RetryConfig{
		InitialInterval: cfg.InitialInterval,
		Multiplier:      cfg.Multiplier,
		MaxInterval:     cfg.MaxInterval,
		MaxElapsed:      cfg.MaxElapsed,
		MaxAttempts:     cfg.MaxAttempts,
	}
}
