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

func TestCommentCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectExec("INSERT INTO comments").WillReturnResult(sqlmock.NewResult(1, 1))

	comment := &models.Comment{GrievanceID: "g1", AuthorID: "s1", Body: "any update?"}
	require.NoError(t, repo.Create(context.Background(), comment))
	assert.NotEmpty(t, comment.ID)
	assert.False(t, comment.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentListOldestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY cm.created_at ASC, cm.id ASC")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "grievance_id", "author_id", "author_name", "author_role", "body", "created_at"}).
			AddRow("c1", "g1", "s1", "Student", "STUDENT", "first", now).
			AddRow("c2", "g1", "f1", "Academic Desk", "FACULTY", "second", now.Add(time.Minute)))

	comments, err := repo.ListByGrievance(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, models.RoleFaculty, *comments[1].AuthorRole)
	assert.NoError(t, mock.ExpectationsWereMet())
}
