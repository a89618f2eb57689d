package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository returns a Postgres-backed implementation of HistoryRepository.
func NewHistoryRepository(pool *pgxpool.Pool) repository.HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) List(ctx context.Context, filter repository.HistoryFilter) ([]domain.SearchHistory, error) {
	const query = `
	SELECT id, user_id, query, filters, results_count, created_at
	FROM search_history
	WHERE user_id = $1
	  AND ($2::timestamptz IS NULL OR created_at >= $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, nullTime(filter.Since), clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.SearchHistory{}
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func (r *historyRepository) Create(ctx context.Context, entry *domain.SearchHistory) (*domain.SearchHistory, error) {
	if entry == nil || entry.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO search_history (id, user_id, query, filters, results_count, created_at)
	VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
	RETURNING created_at
	`

	filters, err := json.Marshal(entry.Filters)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "encode search filters", err)
	}

	if err := r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Query,
		filters,
		entry.ResultsCount,
		nullTime(entry.CreatedAt),
	).Scan(&entry.CreatedAt); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *historyRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM search_history WHERE user_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, query, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHistoryNotFound
	}
	return nil
}

func (r *historyRepository) Clear(ctx context.Context, userID string) (int, error) {
	const query = `DELETE FROM search_history WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanHistory(row scanner) (*domain.SearchHistory, error) {
	var entry domain.SearchHistory
	var filters []byte

	if err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Query,
		&filters,
		&entry.ResultsCount,
		&entry.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHistoryNotFound
		}
		return nil, err
	}

	if len(filters) > 0 {
		_ = json.Unmarshal(filters, &entry.Filters)
	}
	return &entry, nil
}
