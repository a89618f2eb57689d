package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository instantiates a Postgres-backed account repository.
// Profiles for new rows are provisioned by the auth_users insert trigger.
func NewAccountRepository(pool *pgxpool.Pool) repository.AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO auth_users (name, email, password_hash, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), NOW())
	RETURNING id, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		account.Name,
		domain.NormalizeEmail(account.Email),
		account.PasswordHash,
		marshalMap(account.Metadata),
		nullTime(account.CreatedAt),
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	const query = `
	SELECT id, name, email, password_hash, metadata, last_login_at, created_at, updated_at
	FROM auth_users
	WHERE id = $1
	`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `
	SELECT id, name, email, password_hash, metadata, last_login_at, created_at, updated_at
	FROM auth_users
	WHERE email = $1
	`
	return scanAccount(r.pool.QueryRow(ctx, query, domain.NormalizeEmail(email)))
}

func (r *accountRepository) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE auth_users SET last_login_at = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row scanner) (*domain.Account, error) {
	var account domain.Account
	var metadata []byte

	if err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&metadata,
		&account.LastLoginAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &account.Metadata)
	}
	return &account, nil
}
