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

type personRepository struct {
	pool *pgxpool.Pool
}

// NewPersonRepository creates a Postgres-backed PersonRepository implementation.
func NewPersonRepository(pool *pgxpool.Pool) repository.PersonRepository {
	return &personRepository{pool: pool}
}

const personColumns = `id, first_name, last_name, email, phone, company, position, location,
	linkedin_url, avatar_url, bio, skills, experience, education, social_profiles, last_updated`

func (r *personRepository) Get(ctx context.Context, id string) (*domain.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE id = $1`
	return scanPerson(r.pool.QueryRow(ctx, query, id))
}

func (r *personRepository) List(ctx context.Context, q repository.PersonQuery) ([]domain.Person, error) {
	query := `SELECT ` + personColumns + `
	FROM people
	WHERE ($1 = '' OR company ILIKE '%' || $1 || '%')
	  AND ($2 = '' OR position ILIKE '%' || $2 || '%')
	  AND ($3 = '' OR location ILIKE '%' || $3 || '%')
	ORDER BY last_updated DESC, id
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query, q.Company, q.Position, q.Location, clampLimit(q.Limit), q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	people := []domain.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

func (r *personRepository) Upsert(ctx context.Context, p *domain.Person) error {
	if p == nil {
		return domain.ErrInvalidPayload
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.EnsureCollections()

	const query = `
	INSERT INTO people (id, first_name, last_name, email, phone, company, position, location,
		linkedin_url, avatar_url, bio, skills, experience, education, social_profiles, last_updated)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, COALESCE($16, NOW()))
	ON CONFLICT (id) DO UPDATE
	SET first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		email = EXCLUDED.email,
		phone = EXCLUDED.phone,
		company = EXCLUDED.company,
		position = EXCLUDED.position,
		location = EXCLUDED.location,
		linkedin_url = EXCLUDED.linkedin_url,
		avatar_url = EXCLUDED.avatar_url,
		bio = EXCLUDED.bio,
		skills = EXCLUDED.skills,
		experience = EXCLUDED.experience,
		education = EXCLUDED.education,
		social_profiles = EXCLUDED.social_profiles,
		last_updated = EXCLUDED.last_updated
	RETURNING last_updated
	`

	return r.pool.QueryRow(ctx, query,
		p.ID,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Phone,
		p.Company,
		p.Position,
		p.Location,
		p.LinkedinURL,
		p.Avatar,
		p.Bio,
		p.Skills,
		marshalList(p.Experience),
		marshalList(p.Education),
		marshalList(p.SocialProfiles),
		nullTime(p.LastUpdated),
	).Scan(&p.LastUpdated)
}

func scanPerson(row scanner) (*domain.Person, error) {
	var p domain.Person
	var experience, education, social []byte

	if err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.Company,
		&p.Position,
		&p.Location,
		&p.LinkedinURL,
		&p.Avatar,
		&p.Bio,
		&p.Skills,
		&experience,
		&education,
		&social,
		&p.LastUpdated,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPersonNotFound
		}
		return nil, err
	}

	if len(experience) > 0 {
		_ = json.Unmarshal(experience, &p.Experience)
	}
	if len(education) > 0 {
		_ = json.Unmarshal(education, &p.Education)
	}
	if len(social) > 0 {
		_ = json.Unmarshal(social, &p.SocialProfiles)
	}
	p.EnsureCollections()
	return &p, nil
}
