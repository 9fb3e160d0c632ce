package application

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/carehub-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	applicationColumns  = `application_id, request_id, assistant_id, message, proposed_rate, status, created_at, updated_at`
	qualifiedAppColumns = `a.application_id, a.request_id, a.assistant_id, a.message, a.proposed_rate, a.status, a.created_at, a.updated_at`

	// The request row is share-locked so a concurrent accept either sees the
	// new application or makes this insert a no-op.
	insertApplicationQuery = `
		INSERT INTO applications (request_id, assistant_id, message, proposed_rate)
		SELECT r.request_id, $2, $3::text, $4::numeric
		FROM requests r
		WHERE r.request_id = $1 AND r.status = 'open'
		FOR SHARE
		RETURNING application_id, status, created_at, updated_at
	`
	getApplicationQuery  = `SELECT ` + applicationColumns + ` FROM applications WHERE application_id = $1`
	listByRequestQuery   = `SELECT ` + applicationColumns + ` FROM applications WHERE request_id = $1 ORDER BY created_at DESC, application_id DESC`
	listByAssistantQuery = `SELECT ` + applicationColumns + ` FROM applications WHERE assistant_id = $1 ORDER BY created_at DESC, application_id DESC`
	setStatusQuery       = `
		UPDATE applications SET status = $1, updated_at = now()
		WHERE application_id = $2 AND status = $3
		RETURNING ` + applicationColumns
	countByStatusQuery   = `SELECT status, count(*) FROM applications WHERE assistant_id = $1 GROUP BY status`
	countPendingForOwner = `
		SELECT count(*) FROM applications a
		JOIN requests r ON r.request_id = a.request_id
		WHERE r.user_id = $1 AND a.status = 'pending'
	`
	latestForOwnerQuery = `
		SELECT ` + qualifiedAppColumns + ` FROM applications a
		JOIN requests r ON r.request_id = a.request_id
		WHERE r.user_id = $1
		ORDER BY a.created_at DESC, a.application_id DESC
		LIMIT $2
	`

	acceptApplicationQuery = `UPDATE applications SET status = 'accepted', updated_at = now() WHERE application_id = $1 AND status = 'pending'`
	assignRequestQuery     = `UPDATE requests SET status = 'assigned', assistant_id = $1, updated_at = now() WHERE request_id = $2 AND status = 'open'`
	rejectOthersQuery      = `UPDATE applications SET status = 'rejected', updated_at = now() WHERE request_id = $1 AND application_id <> $2 AND status = 'pending'`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a Application) (Application, error) {
	var status string
	err := r.db.QueryRowContext(ctx, insertApplicationQuery, a.RequestID, a.AssistantID, a.Message, a.ProposedRate).
		Scan(&a.ID, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrRequestNotOpen
		}
		if database.IsUniqueViolation(err) {
			return Application{}, ErrAlreadyApplied
		}
		return Application{}, err
	}
	a.Status = Status(status)
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Application, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx, getApplicationQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepository) ListByRequest(ctx context.Context, requestID int) ([]Application, error) {
	return r.query(ctx, listByRequestQuery, requestID)
}

func (r *PostgresRepository) ListByAssistant(ctx context.Context, assistantID int) ([]Application, error) {
	return r.query(ctx, listByAssistantQuery, assistantID)
}

func (r *PostgresRepository) LatestForOwner(ctx context.Context, ownerID, limit int) ([]Application, error) {
	return r.query(ctx, latestForOwnerQuery, ownerID, limit)
}

func (r *PostgresRepository) Accept(ctx context.Context, a Application) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := expectOne(tx.ExecContext(ctx, acceptApplicationQuery, a.ID)); err != nil {
			if errors.Is(err, errNoRows) {
				return ErrNotPending
			}
			return err
		}
		if err := expectOne(tx.ExecContext(ctx, assignRequestQuery, a.AssistantID, a.RequestID)); err != nil {
			if errors.Is(err, errNoRows) {
				return ErrRequestNotOpen
			}
			return err
		}
		_, err := tx.ExecContext(ctx, rejectOthersQuery, a.RequestID, a.ID)
		return err
	})
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id int, from, to Status) (Application, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx, setStatusQuery, string(to), id, string(from)))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return Application{}, getErr
		}
		return Application{}, ErrNotPending
	}
	return a, err
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, assistantID int) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, countByStatusQuery, assistantID)
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

func (r *PostgresRepository) CountPendingForOwner(ctx context.Context, ownerID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countPendingForOwner, ownerID).Scan(&n)
	return n, err
}

func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]Application, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var errNoRows = errors.New("no rows affected")

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNoRows
	}
	return nil
}

func scanApplication(row rowScanner) (Application, error) {
	var (
		a      Application
		status string
	)
	if err := row.Scan(&a.ID, &a.RequestID, &a.AssistantID, &a.Message, &a.ProposedRate, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Application{}, err
	}
	a.Status = Status(status)
	return a, nil
}
