// Package search runs directory searches for the logged-in user and records them.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/driver"
)

// Signer runs a backend call with the session credential.
type Signer interface {
	Do(ctx context.Context, fn func(ctx context.Context, token string) error) error
}

type UseCase struct {
	signer    Signer
	directory driver.Directory
	history   driver.History
	logger    *zap.Logger
	now       func() time.Time
}

func New(signer Signer, directory driver.Directory, history driver.History, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		signer:    signer,
		directory: directory,
		history:   history,
		logger:    logger,
		now:       time.Now,
	}
}

// Search validates the filter, returns hits in backend order and saves the search
// to history. A failed save is logged, never returned. An empty query is replaced
// by a summary of the filter.
func (uc *UseCase) Search(ctx context.Context, query string, filter domain.SearchFilter) ([]domain.SearchResult, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var raw []adapter.Record
	err := uc.signer.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		raw, err = uc.directory.Search(ctx, token, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	results, err := adapter.NormalizeResults(raw, filter, uc.now())
	if err != nil {
		return nil, err
	}

	entry := adapter.HistoryEntry{Query: strings.TrimSpace(query), Filters: filter, ResultsCount: len(results)}
	if entry.Query == "" {
		entry.Query = filter.Summary()
	}
	err = uc.signer.Do(ctx, func(ctx context.Context, token string) error {
		_, err := uc.history.SaveHistory(ctx, token, entry)
		return err
	})
	if err != nil {
		uc.logger.Warn("failed to save search history", zap.String("query", entry.Query), zap.Error(err))
	}
	return results, nil
}

func (uc *UseCase) Person(ctx context.Context, id string) (*domain.Person, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "person id is required")
	}
	var raw adapter.Record
	err := uc.signer.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		raw, err = uc.directory.Person(ctx, token, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	person, err := adapter.NormalizePerson(raw, uc.now())
	if err != nil {
		return nil, err
	}
	return &person, nil
}
