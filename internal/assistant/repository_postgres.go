package assistant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	profileColumns = `user_id, bio, skills, hourly_rate, experience_years, location_id, available, created_at, updated_at`

	getProfileQuery    = `SELECT ` + profileColumns + ` FROM assistants WHERE user_id = $1`
	upsertProfileQuery = `
		INSERT INTO assistants (user_id, bio, skills, hourly_rate, experience_years, location_id, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET bio = EXCLUDED.bio,
			skills = EXCLUDED.skills,
			hourly_rate = EXCLUDED.hourly_rate,
			experience_years = EXCLUDED.experience_years,
			location_id = EXCLUDED.location_id,
			available = EXCLUDED.available,
			updated_at = now()
		RETURNING created_at, updated_at
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Profile, error) {
	var (
		where []string
		args  []any
	)
	if f.LocationID > 0 {
		args = append(args, f.LocationID)
		where = append(where, fmt.Sprintf("location_id = $%d", len(args)))
	}
	if f.Available != nil {
		args = append(args, *f.Available)
		where = append(where, fmt.Sprintf("available = $%d", len(args)))
	}
	query := `SELECT ` + profileColumns + ` FROM assistants`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID int) (Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, getProfileQuery, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) Upsert(ctx context.Context, p Profile) (Profile, error) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	var location any
	if p.LocationID != nil {
		location = *p.LocationID
	}
	err := r.db.QueryRowContext(ctx, upsertProfileQuery,
		p.UserID,
		p.Bio,
		pq.Array(p.Skills),
		p.HourlyRate,
		p.ExperienceYears,
		location,
		p.Available,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func scanProfile(row rowScanner) (Profile, error) {
	var (
		p        Profile
		location sql.NullInt64
	)
	err := row.Scan(
		&p.UserID,
		&p.Bio,
		pq.Array(&p.Skills),
		&p.HourlyRate,
		&p.ExperienceYears,
		&location,
		&p.Available,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Profile{}, err
	}
	if location.Valid {
		id := int(location.Int64)
		p.LocationID = &id
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p, nil
}
