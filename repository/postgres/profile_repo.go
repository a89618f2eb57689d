package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed ProfileRepository over user_profiles.
func NewProfileRepository(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `user_id, first_name, last_name, avatar_url, bio, phone, location,
	role, subscription_plan, subscription_expires_at, created_at, updated_at`

func (r *profileRepository) Get(ctx context.Context, accountID int64) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, accountID))
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if profile == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO user_profiles (user_id, first_name, last_name, avatar_url, bio, phone, location, role, subscription_plan, subscription_expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (user_id) DO NOTHING
	RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, profileArgs(profile)...).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// already provisioned by the trigger
		return nil
	}
	return err
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	if profile == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE user_profiles
	SET first_name = $2,
		last_name = $3,
		avatar_url = $4,
		bio = $5,
		phone = $6,
		location = $7,
		role = $8,
		subscription_plan = $9,
		subscription_expires_at = $10,
		updated_at = NOW()
	WHERE user_id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query, profileArgs(profile)...).Scan(&profile.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrProfileNotFound
		}
		return err
	}
	return nil
}

func profileArgs(p *domain.Profile) []interface{} {
	return []interface{}{
		p.AccountID,
		p.FirstName,
		p.LastName,
		p.Avatar,
		p.Bio,
		p.Phone,
		p.Location,
		string(p.Role),
		string(p.Plan),
		nullTimePtr(p.PlanExpiresAt),
	}
}

func scanProfile(row scanner) (*domain.Profile, error) {
	var p domain.Profile
	var role, plan string

	if err := row.Scan(
		&p.AccountID,
		&p.FirstName,
		&p.LastName,
		&p.Avatar,
		&p.Bio,
		&p.Phone,
		&p.Location,
		&role,
		&plan,
		&p.PlanExpiresAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	p.Role = domain.ParseRole(role)
	p.Plan = domain.LookupPlan(plan).Name
	return &p, nil
}
