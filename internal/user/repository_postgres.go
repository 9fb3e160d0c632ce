package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/wichananm65/carehub-backend/internal/auth"
	"github.com/wichananm65/carehub-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns = `user_id, email, password, first_name, last_name, phone, role, avatar_url, created_at, updated_at`

	listUsersQuery      = `SELECT ` + userColumns + ` FROM users ORDER BY user_id`
	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	insertUserQuery     = `
		INSERT INTO users (email, password, first_name, last_name, phone, role, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING user_id, created_at, updated_at
	`
	updateUserQuery = `
		UPDATE users
		SET email = $1,
			first_name = $2,
			last_name = $3,
			phone = $4,
			avatar_url = $5,
			password = COALESCE(NULLIF($6, ''), password),
			updated_at = now()
		WHERE user_id = $7
		RETURNING created_at, updated_at
	`
	deleteUserQuery = `DELETE FROM users WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByEmailQuery, strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	err := r.db.QueryRowContext(ctx, insertUserQuery,
		u.Email,
		u.Password,
		u.FirstName,
		u.LastName,
		u.Phone,
		string(u.Role),
		nullString(u.AvatarURL),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u User) (User, error) {
	// a nil avatar must reach the database as NULL, not as an empty string
	err := r.db.QueryRowContext(ctx, updateUserQuery,
		u.Email,
		u.FirstName,
		u.LastName,
		u.Phone,
		nullString(u.AvatarURL),
		u.Password,
		u.ID,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		if database.IsUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, deleteUserQuery, id)
	if err != nil {
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

func scanUser(row rowScanner) (User, error) {
	var (
		u      User
		role   string
		avatar sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Phone, &role, &avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	u.Role = auth.Role(role)
	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	return u, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
