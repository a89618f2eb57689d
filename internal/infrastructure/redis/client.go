package redis

import (
	"context"
	"fmt"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/internal/config"
	"github.com/fastygo/peoplesearch/internal/infrastructure/monitor"
)

// NewClient builds the session store client and waits up to cfg.ConnectTimeout
// for Redis to answer. Explicit password and DB override the URL.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redislib.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts, err := redislib.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := redislib.NewClient(opts)
	if err := monitor.WaitReady(ctx, monitor.RedisCheck(client), cfg.ConnectTimeout, logger); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB), zap.String("prefix", cfg.Prefix))
	return client, nil
}
