// Package history mirrors the saved-search list of the logged-in user.
package history

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/driver"
)

const (
	// DefaultLimit is the number of entries loaded.
	DefaultLimit  = 50
	deleteWorkers = 4
)

type Signer interface {
	Do(ctx context.Context, fn func(ctx context.Context, token string) error) error
}

// Manager keeps a local copy of the list in sync with the backend.
type Manager struct {
	signer  Signer
	history driver.History
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries []domain.SearchHistory
}

func New(signer Signer, history driver.History, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		signer:  signer,
		history: history,
		logger:  logger,
		now:     time.Now,
		entries: []domain.SearchHistory{},
	}
}

// Load replaces the local list with the backend's.
func (m *Manager) Load(ctx context.Context) ([]domain.SearchHistory, error) {
	var raw []adapter.Record
	err := m.signer.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		raw, err = m.history.ListHistory(ctx, token, DefaultLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	entries, err := adapter.NormalizeHistoryList(raw, m.now())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	return m.Entries(), nil
}

// Entries returns a copy of the local list.
func (m *Manager) Entries() []domain.SearchHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SearchHistory{}, m.entries...)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.deleteOne(ctx, id); err != nil {
		return err
	}
	m.remove(map[string]bool{id: true})
	return nil
}

// DeleteMany deletes ids concurrently and reports which succeeded. Full success
// updates the local list; any failure reloads it from the backend instead.
func (m *Manager) DeleteMany(ctx context.Context, ids []string) (domain.BulkResult, error) {
	result := domain.BulkResult{
		Requested: append([]string(nil), ids...),
		Succeeded: []string{},
		Failed:    map[string]error{},
	}
	if len(ids) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(deleteWorkers)
	for _, id := range ids {
		g.Go(func() error {
			err := m.deleteOne(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[id] = err
			} else {
				result.Succeeded = append(result.Succeeded, id)
			}
			return nil
		})
	}
	_ = g.Wait()

	if !result.Partial() {
		done := make(map[string]bool, len(ids))
		for _, id := range ids {
			done[id] = true
		}
		m.remove(done)
		return result, nil
	}

	m.logger.Warn("bulk history delete partially failed",
		zap.Int("requested", len(ids)), zap.Int("succeeded", len(result.Succeeded)))
	if _, err := m.Load(ctx); err != nil {
		m.logger.Warn("failed to resync history", zap.Error(err))
	}
	return result, result.Err()
}

func (m *Manager) Clear(ctx context.Context) error {
	err := m.signer.Do(ctx, func(ctx context.Context, token string) error {
		return m.history.ClearHistory(ctx, token)
	})
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries = []domain.SearchHistory{}
	m.mu.Unlock()
	return nil
}

func (m *Manager) deleteOne(ctx context.Context, id string) error {
	return m.signer.Do(ctx, func(ctx context.Context, token string) error {
		return m.history.DeleteHistory(ctx, token, id)
	})
}

func (m *Manager) remove(ids map[string]bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !ids[e.ID] {
			kept = append(kept, e)
		}
	}
	m.entries = kept
}
