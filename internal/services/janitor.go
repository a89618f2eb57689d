package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// Task is one housekeeping job. Run returns how many items it removed.
type Task struct {
	Name string
	Run  func(ctx context.Context) (int, error)
}

// SessionPurgeTask removes expired sessions from a store without native expiry.
func SessionPurgeTask(purger repository.SessionPurger) Task {
	return Task{Name: "expired_sessions", Run: purger.PurgeExpired}
}

// JanitorConfig controls when housekeeping runs.
type JanitorConfig struct {
	// Schedule is a cron spec with seconds, or a descriptor such as "@every 5m".
	Schedule string
	Timeout  time.Duration
}

// Janitor runs housekeeping tasks on a cron schedule.
type Janitor struct {
	tasks   []Task
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     JanitorConfig
}

func NewJanitor(cfg JanitorConfig, monitor ConnectionHealth, logger *zap.Logger, tasks ...Task) (*Janitor, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 5m"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	j := &Janitor{
		tasks:   tasks,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	_, err := j.cron.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := j.RunOnce(ctx); err != nil {
			j.logger.Error("janitor run failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", cfg.Schedule, err)
	}
	return j, nil
}

// Start launches the cron scheduler.
func (j *Janitor) Start() {
	if j == nil || j.cron == nil {
		return
	}
	j.cron.Start()
	j.logger.Info("janitor started", zap.String("schedule", j.cfg.Schedule), zap.Int("tasks", len(j.tasks)))
}

// Stop stops the scheduler and waits for a running pass, bounded by ctx.
func (j *Janitor) Stop(ctx context.Context) {
	if j == nil || j.cron == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	j.logger.Info("janitor stopped")
}

// RunOnce runs every task synchronously. A failing task does not stop the others.
func (j *Janitor) RunOnce(ctx context.Context) error {
	if j == nil {
		return nil
	}
	if j.monitor != nil && !j.monitor.IsOnline() {
		j.logger.Debug("skipping janitor run (offline)")
		return nil
	}

	var result error
	for _, t := range j.tasks {
		removed, err := t.Run(ctx)
		if err != nil {
			j.logger.Error("janitor task failed", zap.String("task", t.Name), zap.Error(err))
			result = errors.Join(result, fmt.Errorf("%s: %w", t.Name, err))
			continue
		}
		if removed > 0 {
			j.logger.Info("janitor task removed items", zap.String("task", t.Name), zap.Int("removed", removed))
		}
	}
	return result
}
