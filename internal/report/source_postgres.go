package report

import (
	"context"
	"database/sql"
)

const requestRowsQuery = `
	SELECT r.request_id, r.title, r.care_type, r.status,
		trim(o.first_name || ' ' || o.last_name), o.email,
		l.name,
		COALESCE(trim(a.first_name || ' ' || a.last_name), ''),
		r.hours, r.budget,
		COUNT(ap.application_id),
		COUNT(ap.application_id) FILTER (WHERE ap.status = 'pending'),
		r.created_at
	FROM requests r
	JOIN users o ON o.user_id = r.user_id
	JOIN locations l ON l.location_id = r.location_id
	LEFT JOIN users a ON a.user_id = r.assistant_id
	LEFT JOIN applications ap ON ap.request_id = r.request_id
	GROUP BY r.request_id, o.user_id, l.location_id, a.user_id
	ORDER BY r.request_id
`

type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) RequestRows(ctx context.Context) ([]RequestRow, error) {
	rows, err := s.db.QueryContext(ctx, requestRowsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RequestRow, 0)
	for rows.Next() {
		var r RequestRow
		if err := rows.Scan(
			&r.ID, &r.Title, &r.CareType, &r.Status,
			&r.Owner, &r.OwnerEmail,
			&r.Location,
			&r.Assistant,
			&r.Hours, &r.Budget,
			&r.Applications, &r.Pending,
			&r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
