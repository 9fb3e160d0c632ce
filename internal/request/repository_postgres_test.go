package request

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

var requestRowColumns = []string{"request_id", "user_id", "location_id", "title", "description", "care_type", "start_date", "hours", "budget", "status", "assistant_id", "created_at", "updated_at"}

func TestPostgresList_BuildsFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(requestRowColumns).
		AddRow(3, 5, 1, "Night nurse", "Calm | Shift: night", "medical", nil, 8, 1200.5, "open", nil, now, now)
	mock.ExpectQuery(`FROM requests WHERE status = \$1 AND location_id = \$2 AND care_type = \$3 AND strpos\(lower\(title\), lower\(\$4\)\) > 0 ORDER BY created_at DESC, request_id DESC LIMIT \$5 OFFSET \$6`).
		WithArgs("open", 1, "medical", "nurse", 20, 0).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), Filter{Status: StatusOpen, LocationID: 1, CareType: "medical", Query: " nurse "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Budget != 1200.5 || got[0].StartDate != nil || got[0].AssistantID != nil {
		t.Fatalf("unexpected rows %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresList_QueryIsLiteral(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(`FROM requests WHERE strpos\(lower\(title\), lower\(\$1\)\) > 0 ORDER BY`).
		WithArgs("100%_care", 20, 0).
		WillReturnRows(sqlmock.NewRows(requestRowColumns))

	if _, err := repo.List(context.Background(), Filter{Query: "100%_care"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresTransition_Conflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("UPDATE requests SET status").
		WithArgs("completed", 4, pq.Array([]string{"assigned"})).
		WillReturnRows(sqlmock.NewRows(requestRowColumns))
	mock.ExpectQuery("SELECT 1 FROM requests").WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	if _, err := repo.Transition(context.Background(), 4, []Status{StatusAssigned}, StatusCompleted); err != ErrStatusConflict {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}

	mock.ExpectQuery("UPDATE requests SET status").
		WithArgs("cancelled", 5, pq.Array([]string{"open", "assigned"})).
		WillReturnRows(sqlmock.NewRows(requestRowColumns))
	mock.ExpectQuery("SELECT 1 FROM requests").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"one"}))

	if _, err := repo.Transition(context.Background(), 5, []Status{StatusOpen, StatusAssigned}, StatusCancelled); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
