package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/college-icrs/icrs-api/internal/models"
)

func TestCategoryListAttachesSubcategories(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM categories c")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "default_assignee_id", "default_assignee_name", "sensitive", "hide_identity", "created_at"}).
			AddRow("c1", "Academic", "Coursework", "f1", "Academic Desk", false, false, now).
			AddRow("c2", "Hostel", nil, nil, nil, true, true, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM subcategories s")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "name", "description", "default_assignee_id", "default_assignee_name", "created_at"}).
			AddRow("s1", "c1", "Exams", nil, "f2", "Exam Cell", now).
			AddRow("s2", "c1", "Grades", nil, nil, nil, now))

	categories, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Len(t, categories[0].Subcategories, 2)
	assert.NotNil(t, categories[1].Subcategories)
	assert.Empty(t, categories[1].Subcategories)
	assert.True(t, categories[1].HideIdentity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSubcategoryByNameScopesToCategory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.category_id = $1 AND LOWER(s.name) = LOWER($2)")).
		WithArgs("c1", "wifi / network").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindSubcategoryByName(context.Background(), "c1", "wifi / network")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectExec("INSERT INTO categories").WillReturnResult(sqlmock.NewResult(1, 1))

	category := &models.Category{Name: "Transport"}
	require.NoError(t, repo.Create(context.Background(), category))
	assert.NotEmpty(t, category.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategoryCascadesInTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grievances SET subcategory_id = NULL")).WithArgs("c1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grievances SET category_id = NULL")).WithArgs("c1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subcategories WHERE category_id = $1")).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategoryMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE grievances SET subcategory_id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE grievances SET category_id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM subcategories").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM categories").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
