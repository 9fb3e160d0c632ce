package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/wichananm65/carehub-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	requestColumns = `request_id, user_id, location_id, title, description, care_type, start_date, hours, budget, status, assistant_id, created_at, updated_at`

	getRequestQuery    = `SELECT ` + requestColumns + ` FROM requests WHERE request_id = $1`
	listByOwnerQuery   = `SELECT ` + requestColumns + ` FROM requests WHERE user_id = $1 ORDER BY created_at DESC, request_id DESC`
	insertRequestQuery = `
		INSERT INTO requests (user_id, location_id, title, description, care_type, start_date, hours, budget)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING request_id, status, created_at, updated_at
	`
	updateRequestQuery = `
		UPDATE requests
		SET location_id = $1,
			title = $2,
			description = $3,
			care_type = $4,
			start_date = $5,
			hours = $6,
			budget = $7,
			updated_at = now()
		WHERE request_id = $8 AND status = 'open'
		RETURNING ` + requestColumns
	transitionQuery = `
		UPDATE requests SET status = $1, updated_at = now()
		WHERE request_id = $2 AND status = ANY($3)
		RETURNING ` + requestColumns
	existsQuery        = `SELECT 1 FROM requests WHERE request_id = $1`
	countByStatusQuery = `SELECT status, count(*) FROM requests WHERE user_id = $1 GROUP BY status`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Request, error) {
	f = f.normalized()

	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.LocationID > 0 {
		add("location_id = $%d", f.LocationID)
	}
	if f.CareType != "" {
		add("care_type = $%d", f.CareType)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		add("strpos(lower(title), lower($%d)) > 0", q)
	}

	query := `SELECT ` + requestColumns + ` FROM requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, request_id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID int) ([]Request, error) {
	rows, err := r.db.QueryContext(ctx, listByOwnerQuery, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Request, error) {
	req, err := scanRequest(r.db.QueryRowContext(ctx, getRequestQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (r *PostgresRepository) Create(ctx context.Context, req Request) (Request, error) {
	var status string
	err := r.db.QueryRowContext(ctx, insertRequestQuery,
		req.UserID,
		req.LocationID,
		req.Title,
		req.Description,
		req.CareType,
		req.StartDate,
		req.Hours,
		req.Budget,
	).Scan(&req.ID, &status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return Request{}, ErrUnknownLocation
		}
		return Request{}, err
	}
	req.Status = Status(status)
	return req, nil
}

func (r *PostgresRepository) Update(ctx context.Context, req Request) (Request, error) {
	updated, err := scanRequest(r.db.QueryRowContext(ctx, updateRequestQuery,
		req.LocationID,
		req.Title,
		req.Description,
		req.CareType,
		req.StartDate,
		req.Hours,
		req.Budget,
		req.ID,
	))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Request{}, r.missingOrConflict(ctx, req.ID)
	case database.IsForeignKeyViolation(err):
		return Request{}, ErrUnknownLocation
	}
	return updated, err
}

func (r *PostgresRepository) Transition(ctx context.Context, id int, from []Status, to Status) (Request, error) {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}
	req, err := scanRequest(r.db.QueryRowContext(ctx, transitionQuery, string(to), id, pq.Array(states)))
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, r.missingOrConflict(ctx, id)
	}
	return req, err
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, userID int) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, countByStatusQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[Status]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

// missingOrConflict tells a missing row apart from one whose status guard
// failed.
func (r *PostgresRepository) missingOrConflict(ctx context.Context, id int) error {
	var one int
	err := r.db.QueryRowContext(ctx, existsQuery, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrStatusConflict
}

func collect(rows *sql.Rows) ([]Request, error) {
	defer rows.Close()

	out := make([]Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(row rowScanner) (Request, error) {
	var (
		req       Request
		status    string
		startDate sql.NullTime
		assistant sql.NullInt64
	)
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.LocationID,
		&req.Title,
		&req.Description,
		&req.CareType,
		&startDate,
		&req.Hours,
		&req.Budget,
		&status,
		&assistant,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return Request{}, err
	}
	req.Status = Status(status)
	if startDate.Valid {
		t := startDate.Time
		req.StartDate = &t
	}
	if assistant.Valid {
		id := int(assistant.Int64)
		req.AssistantID = &id
	}
	return req, nil
}
