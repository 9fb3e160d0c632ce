package rating

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySummaries(t *testing.T) {
	repo := NewInMemoryRepository([]Rating{
		{ID: 1, RequestID: 1, AssistantID: 7, Score: 5},
		{ID: 2, RequestID: 2, AssistantID: 7, Score: 4},
		{ID: 3, RequestID: 3, AssistantID: 7, Score: 4},
		{ID: 4, RequestID: 4, AssistantID: 8, Score: 2},
	})

	got, err := repo.Summaries(context.Background(), []int{7, 9})
	require.NoError(t, err)
	assert.Equal(t, map[int]Summary{7: {Average: 4.33, Count: 3}}, got)

	recent, err := repo.ListByAssistant(context.Background(), 7, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].ID)
}

func TestPostgresSummaries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM ratings WHERE assistant_id = ANY").
		WithArgs(pq.Array([]int64{7, 8})).
		WillReturnRows(sqlmock.NewRows([]string{"assistant_id", "avg", "count"}).AddRow(7, 4.5, 2))

	got, err := repo.Summaries(context.Background(), []int{7, 8})
	require.NoError(t, err)
	assert.Equal(t, map[int]Summary{7: {Average: 4.5, Count: 2}}, got)

	empty, err := repo.Summaries(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}
