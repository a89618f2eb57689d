package backend

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

const (
	historyPage   = 100
	topCount      = 5
	dailyWindow   = 7
	historyLayout = "2006-01-02"
)

func (s *Service) History(ctx context.Context, accountID int64, limit int) ([]domain.SearchHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.history.List(ctx, repository.HistoryFilter{UserID: userKey(accountID), Limit: limit})
}

func (s *Service) SaveHistory(ctx context.Context, accountID int64, entry adapter.HistoryEntry) (*domain.SearchHistory, error) {
	if err := entry.Filters.Validate(); err != nil {
		return nil, err
	}
	if entry.ResultsCount < 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "The given data was invalid.").WithFields(map[string][]string{
			"results_count": {"The results count must be at least 0."},
		})
	}
	query := strings.TrimSpace(entry.Query)
	if query == "" {
		query = entry.Filters.Summary()
	}
	return s.history.Create(ctx, &domain.SearchHistory{
		Query:        query,
		Filters:      entry.Filters,
		ResultsCount: entry.ResultsCount,
		CreatedAt:    s.now(),
		UserID:       userKey(accountID),
	})
}

func (s *Service) DeleteHistory(ctx context.Context, accountID int64, id string) error {
	return s.history.Delete(ctx, userKey(accountID), id)
}

func (s *Service) ClearHistory(ctx context.Context, accountID int64) (int, error) {
	return s.history.Clear(ctx, userKey(accountID))
}

// Analytics aggregates the saved searches of the account. Exports are not
// recorded server-side and stay at zero.
func (s *Service) Analytics(ctx context.Context, accountID int64) (domain.Analytics, error) {
	entries, err := s.allHistory(ctx, accountID)
	if err != nil {
		return domain.Analytics{}, err
	}
	now := s.now()
	return aggregate(entries, now), nil
}

func (s *Service) allHistory(ctx context.Context, accountID int64) ([]domain.SearchHistory, error) {
	var all []domain.SearchHistory
	for offset := 0; ; offset += historyPage {
		batch, err := s.history.List(ctx, repository.HistoryFilter{
			UserID: userKey(accountID),
			Limit:  historyPage,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < historyPage {
			return all, nil
		}
	}
}

func aggregate(entries []domain.SearchHistory, now time.Time) domain.Analytics {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	windowStart := dayStart.AddDate(0, 0, -(dailyWindow - 1))

	companies := map[string]int{}
	positions := map[string]int{}
	days := map[string]int{}
	a := domain.Analytics{TotalSearches: len(entries), GeneratedAt: now}
	for _, e := range entries {
		created := e.CreatedAt.UTC()
		if !created.Before(monthStart) {
			a.SearchesThisMonth++
		}
		if !created.Before(windowStart) {
			days[created.Format(historyLayout)]++
		}
		if c := strings.TrimSpace(e.Filters.Company); c != "" {
			companies[c]++
		}
		if p := strings.TrimSpace(e.Filters.Position); p != "" {
			positions[p]++
		}
	}

	a.TopCompanies = top(companies, topCount)
	a.TopPositions = top(positions, topCount)
	for i := 0; i < dailyWindow; i++ {
		label := windowStart.AddDate(0, 0, i).Format(historyLayout)
		a.SearchesByDay = append(a.SearchesByDay, domain.Count{Label: label, Count: days[label]})
	}
	a.EnsureCollections()
	return a
}

func top(tally map[string]int, n int) []domain.Count {
	out := make([]domain.Count, 0, len(tally))
	for label, count := range tally {
		out = append(out, domain.Count{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
