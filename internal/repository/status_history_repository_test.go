package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/college-icrs/icrs-api/internal/models"
)

var historyRowColumns = []string{"id", "grievance_id", "from_status", "to_status", "actor_id", "actor_name", "reason", "changed_at"}

func TestStatusHistoryNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatusHistoryRepository(db)

	later := time.Now()
	earlier := later.Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY h.changed_at DESC, h.seq DESC")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(historyRowColumns).
			AddRow("h2", "g1", "IN_PROGRESS", "RESOLVED", "f1", "Academic Desk", "done", later).
			AddRow("h1", "g1", "SUBMITTED", "IN_PROGRESS", "f1", "Academic Desk", nil, earlier))

	rows, err := repo.ListByGrievance(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.StatusResolved, rows[0].ToStatus)
	assert.Nil(t, rows[1].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusHistoryChronological(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatusHistoryRepository(db)

	at := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY h.changed_at ASC, h.seq ASC")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(historyRowColumns).
			AddRow("h9", "g1", "SUBMITTED", "IN_PROGRESS", "f1", "Academic Desk", nil, at).
			AddRow("h1", "g1", "IN_PROGRESS", "RESOLVED", "f1", "Academic Desk", "done", at))

	rows, err := repo.ListByGrievanceChronological(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.StatusSubmitted, rows[0].FromStatus)
	assert.Equal(t, models.StatusResolved, rows[1].ToStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
