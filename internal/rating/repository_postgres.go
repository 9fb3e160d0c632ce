package rating

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/wichananm65/carehub-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertRatingQuery = `
		INSERT INTO ratings (request_id, assistant_id, user_id, score, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING rating_id, created_at
	`
	listByAssistantQuery = `
		SELECT rating_id, request_id, assistant_id, user_id, score, comment, created_at
		FROM ratings WHERE assistant_id = $1
		ORDER BY created_at DESC, rating_id DESC
		LIMIT $2
	`
	summariesQuery = `
		SELECT assistant_id, round(avg(score)::numeric, 2)::float8, count(*)
		FROM ratings WHERE assistant_id = ANY($1)
		GROUP BY assistant_id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rt Rating) (Rating, error) {
	err := r.db.QueryRowContext(ctx, insertRatingQuery, rt.RequestID, rt.AssistantID, rt.UserID, rt.Score, rt.Comment).
		Scan(&rt.ID, &rt.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Rating{}, ErrAlreadyRated
		}
		return Rating{}, err
	}
	return rt, nil
}

// ListByAssistant returns the newest ratings first. A limit of 0 means all.
func (r *PostgresRepository) ListByAssistant(ctx context.Context, assistantID, limit int) ([]Rating, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := r.db.QueryContext(ctx, listByAssistantQuery, assistantID, lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Rating, 0)
	for rows.Next() {
		var rt Rating
		if err := rows.Scan(&rt.ID, &rt.RequestID, &rt.AssistantID, &rt.UserID, &rt.Score, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Summaries(ctx context.Context, assistantIDs []int) (map[int]Summary, error) {
	out := map[int]Summary{}
	if len(assistantIDs) == 0 {
		return out, nil
	}
	ids := make([]int64, len(assistantIDs))
	for i, id := range assistantIDs {
		ids[i] = int64(id)
	}
	rows, err := r.db.QueryContext(ctx, summariesQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id int
			s  Summary
		)
		if err := rows.Scan(&id, &s.Average, &s.Count); err != nil {
			return nil, err
		}
		out[id] = s
	}
	return out, rows.Err()
}
