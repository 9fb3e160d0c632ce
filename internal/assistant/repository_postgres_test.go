package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresList_ScansSkills(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "bio", "skills", "hourly_rate", "experience_years", "location_id", "available", "created_at", "updated_at"}).
		AddRow(7, "Nurse aide", "{elderly,medical}", 200.0, 4, 1, true, now, now).
		AddRow(8, "", "{}", 0.0, 0, nil, true, now, now)
	mock.ExpectQuery(`FROM assistants WHERE location_id = \$1 AND available = \$2 ORDER BY user_id`).
		WithArgs(1, true).
		WillReturnRows(rows)

	available := true
	got, err := repo.List(context.Background(), Filter{LocationID: 1, Available: &available})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"elderly", "medical"}, got[0].Skills)
	assert.Equal(t, 1, *got[0].LocationID)
	assert.Equal(t, []string{}, got[1].Skills)
	assert.Nil(t, got[1].LocationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO assistants").
		WithArgs(7, "bio", pq.Array([]string{"child"}), 150.0, 2, nil, true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	p, err := repo.Upsert(context.Background(), Profile{UserID: 7, Bio: "bio", Skills: []string{"child"}, HourlyRate: 150, ExperienceYears: 2, Available: true})
	require.NoError(t, err)
	assert.Equal(t, now, p.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
