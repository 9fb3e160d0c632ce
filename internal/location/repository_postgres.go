package location

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/carehub-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listLocationsQuery  = `SELECT location_id, name, province, created_at FROM locations ORDER BY name`
	getLocationQuery    = `SELECT location_id, name, province, created_at FROM locations WHERE location_id = $1`
	insertLocationQuery = `
		INSERT INTO locations (name, province)
		VALUES ($1, $2)
		RETURNING location_id, created_at
	`
	updateLocationQuery = `
		UPDATE locations SET name = $1, province = $2
		WHERE location_id = $3
		RETURNING created_at
	`
	deleteLocationQuery = `DELETE FROM locations WHERE location_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Location, error) {
	rows, err := r.db.QueryContext(ctx, listLocationsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Location, 0)
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Province, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Location, error) {
	var l Location
	err := r.db.QueryRowContext(ctx, getLocationQuery, id).Scan(&l.ID, &l.Name, &l.Province, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Location{}, ErrNotFound
	}
	return l, err
}

func (r *PostgresRepository) Create(ctx context.Context, l Location) (Location, error) {
	err := r.db.QueryRowContext(ctx, insertLocationQuery, l.Name, l.Province).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Location{}, ErrNameExists
		}
		return Location{}, err
	}
	return l, nil
}

func (r *PostgresRepository) Update(ctx context.Context, l Location) (Location, error) {
	err := r.db.QueryRowContext(ctx, updateLocationQuery, l.Name, l.Province, l.ID).Scan(&l.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Location{}, ErrNotFound
	case database.IsUniqueViolation(err):
		return Location{}, ErrNameExists
	case err != nil:
		return Location{}, err
	}
	return l, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, deleteLocationQuery, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
