package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wichananm65/carehub-backend/internal/auth"
)

var userRowColumns = []string{"user_id", "email", "password", "first_name", "last_name", "phone", "role", "avatar_url", "created_at", "updated_at"}

func TestPostgresGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow(4, "a@example.com", "hash", "Ann", "Lee", "081", "assistant", nil, now, now)
	mock.ExpectQuery("FROM users WHERE lower\\(email\\)").WithArgs("a@example.com").WillReturnRows(rows)

	u, err := repo.GetByEmail(context.Background(), " a@example.com ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 4 || u.Role != auth.RoleAssistant || u.AvatarURL != nil {
		t.Fatalf("unexpected user %+v", u)
	}

	mock.ExpectQuery("FROM users WHERE user_id").WithArgs(9).WillReturnRows(sqlmock.NewRows(userRowColumns))
	if _, err := repo.GetByID(context.Background(), 9); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("a@example.com", "hash", "Ann", "Lee", "081", "user", nil).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Create(context.Background(), User{Email: "a@example.com", Password: "hash", FirstName: "Ann", LastName: "Lee", Phone: "081", Role: auth.RoleUser})
	if err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresDelete_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("DELETE FROM users").WithArgs(12).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), 12); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
