package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Check probes one dependency.
type Check struct {
	Name    string
	Timeout time.Duration
	Ping    func(ctx context.Context) error
}

// PostgresCheck probes a pgx pool.
func PostgresCheck(pool *pgxpool.Pool) Check {
	return Check{Name: "postgresql", Timeout: 3 * time.Second, Ping: pool.Ping}
}

// RedisCheck probes a Redis client.
func RedisCheck(client redislib.Cmdable) Check {
	return Check{
		Name:    "redis",
		Timeout: 2 * time.Second,
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

// WaitReady pings c until it answers or maxWait elapses, backing off between attempts.
func WaitReady(ctx context.Context, c Check, maxWait time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxWait <= 0 {
		maxWait = c.timeout()
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = time.Second
	policy.MaxElapsedTime = maxWait

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, c.timeout())
		defer cancel()
		err := c.Ping(pingCtx)
		if err != nil {
			logger.Debug("dependency not ready", zap.String("service", c.Name), zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("%s not ready after %d attempts: %w", c.Name, attempt, err)
	}
	return nil
}

func (c Check) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 3 * time.Second
	}
	return c.Timeout
}

type Monitor struct {
	checks []Check

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	started  bool
	done     chan struct{}
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger, checks ...Check) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		status:   Status{Services: map[string]bool{}},
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	go m.loop()
}

// Stop ends the probe loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.RLock()
	started := m.started
	m.mu.RUnlock()
	m.stopOnce.Do(func() { close(m.stopCh) })
	if started {
		<-m.done
	}
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for k, v := range m.status.Services {
		services[k] = v
	}
	return Status{Services: services, LastCheck: m.status.LastCheck}
}

func (m *Monitor) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every dependency once.
func (m *Monitor) Refresh() {
	status := Status{Services: make(map[string]bool, len(m.checks)), LastCheck: time.Now()}
	for _, c := range m.checks {
		status.Services[c.Name] = m.probe(c)
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	for name, ok := range status.Services {
		if was, seen := previous.Services[name]; (!seen || was) && !ok {
			m.logger.Warn("dependency unhealthy", zap.String("service", name))
		} else if seen && !was && ok {
			m.logger.Info("dependency recovered", zap.String("service", name))
		}
	}
}

func (m *Monitor) probe(c Check) bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout())
	defer cancel()
	return c.Ping(ctx) == nil
}
