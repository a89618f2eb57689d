package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/peoplesearch/api/handler"
	"github.com/fastygo/peoplesearch/internal/backend"
	"github.com/fastygo/peoplesearch/internal/config"
	"github.com/fastygo/peoplesearch/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/peoplesearch/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/peoplesearch/internal/infrastructure/redis"
	"github.com/fastygo/peoplesearch/internal/middleware"
	"github.com/fastygo/peoplesearch/internal/router"
	"github.com/fastygo/peoplesearch/internal/services"
	"github.com/fastygo/peoplesearch/internal/services/lifecycle"
	"github.com/fastygo/peoplesearch/pkg/httpcontext"
	"github.com/fastygo/peoplesearch/pkg/logger"
	"github.com/fastygo/peoplesearch/repository"
	"github.com/fastygo/peoplesearch/repository/memory"
	"github.com/fastygo/peoplesearch/repository/postgres"
	redisRepo "github.com/fastygo/peoplesearch/repository/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		Fields:   map[string]string{"app": cfg.App.Name, "env": cfg.App.Env},
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	for _, w := range cfg.Warnings() {
		zapLogger.Warn("configuration", zap.String("warning", w))
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	stopSignals := manager.Listen(cancel)
	defer stopSignals()

	var (
		repos    backend.Repositories
		backends apiHandler.Backends
		checks   []monitor.Check
		tasks    []services.Task
		opts     = backend.Options{SessionTTL: cfg.JWT.TTL, ProvisionDelay: cfg.Backend.ProvisionDelay}
	)

	if cfg.DB.Enabled {
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(appCtx, cfg.DB, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
		repos.Accounts = postgres.NewAccountRepository(pool)
		repos.Profiles = postgres.NewProfileRepository(pool)
		repos.People = postgres.NewPersonRepository(pool)
		repos.History = postgres.NewHistoryRepository(pool)
		checks = append(checks, monitor.PostgresCheck(pool))
		opts.Provision = backend.ProvisionTrigger
		backends.Storage = "postgres"
	} else {
		repos.Accounts = memory.NewAccountRepository()
		repos.Profiles = memory.NewProfileRepository()
		repos.People = memory.NewPersonRepository()
		repos.History = memory.NewHistoryRepository()
		opts.Provision = backend.ProvisionInline
		if cfg.Backend.ProvisionDelay > 0 {
			opts.Provision = backend.ProvisionDeferred
		}
		backends.Storage = "memory"
		zapLogger.Warn("DB_ENABLED is false; data lives in memory only")
	}

	if cfg.Redis.Enabled {
		redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		repos.Sessions = redisRepo.NewSessionRepository(redisClient, cfg.Redis.Prefix, cfg.JWT.TTL)
		checks = append(checks, monitor.RedisCheck(redisClient))
		backends.Sessions = "redis"
	} else {
		sessions := memory.NewSessionRepository(cfg.JWT.TTL)
		repos.Sessions = sessions
		tasks = append(tasks, services.SessionPurgeTask(sessions))
		backends.Sessions = "memory"
	}

	svc := backend.New(repos, backend.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer), opts, zapLogger)
	manager.Register("backend", func(ctx context.Context) error {
		return svc.Close()
	})
	if cfg.Backend.Seed {
		seedDirectory(appCtx, svc, repos.People, zapLogger)
	}

	mon := monitor.New(10*time.Second, zapLogger, checks...)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	janitor, err := services.NewJanitor(services.JanitorConfig{Schedule: cfg.Janitor.Schedule}, mon, zapLogger, tasks...)
	if err != nil {
		zapLogger.Fatal("janitor setup failed", zap.Error(err))
	}
	janitor.Start()
	manager.Register("janitor", func(ctx context.Context) error {
		janitor.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(svc, ctxAdapter, zapLogger),
		Profile:   apiHandler.NewProfileHandler(svc, ctxAdapter, zapLogger),
		People:    apiHandler.NewPeopleHandler(svc, ctxAdapter, zapLogger),
		History:   apiHandler.NewHistoryHandler(svc, ctxAdapter, zapLogger),
		Analytics: apiHandler.NewAnalyticsHandler(svc, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, backends, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.BearerAuth(svc, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware, router.Options{EnableMetrics: cfg.Server.EnableMetrics})

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Concurrency:  cfg.Server.MaxConn,
		Name:         cfg.App.Name,
	}

	manager.Go("http_server", cancel, func() error {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	if err := manager.Err(); err != nil {
		zapLogger.Fatal("server crashed", zap.Error(err))
	}
}

// seedDirectory loads the demo people into an empty directory.
func seedDirectory(ctx context.Context, svc *backend.Service, people repository.PersonRepository, zapLogger *zap.Logger) {
	existing, err := people.List(ctx, repository.PersonQuery{Limit: 1})
	if err != nil {
		zapLogger.Warn("skipping directory seed", zap.Error(err))
		return
	}
	if len(existing) > 0 {
		return
	}
	demo := backend.DemoPeople()
	if err := svc.SeedPeople(ctx, demo); err != nil {
		zapLogger.Warn("directory seed failed", zap.Error(err))
		return
	}
	zapLogger.Info("directory seeded", zap.Int("people", len(demo)))
}
