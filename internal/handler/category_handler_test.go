package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/college-icrs/icrs-api/internal/dto"
	"github.com/college-icrs/icrs-api/internal/models"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
)

type categoryServiceMock struct {
	created   dto.CreateCategoryRequest
	subParent string
	err       error
}

func (m *categoryServiceMock) List(ctx context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "c-1", Name: "Academic", Subcategories: []models.Subcategory{{Name: "Grades"}}}}, m.err
}

func (m *categoryServiceMock) Create(ctx context.Context, caller models.Caller, req dto.CreateCategoryRequest) (*models.Category, error) {
	m.created = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Category{ID: "c-2", Name: req.Name}, nil
}

func (m *categoryServiceMock) CreateSubcategory(ctx context.Context, caller models.Caller, categoryID string, req dto.CreateSubcategoryRequest) (*models.Subcategory, error) {
	m.subParent = categoryID
	return &models.Subcategory{ID: "s-1", CategoryID: categoryID, Name: req.Name}, m.err
}

func (m *categoryServiceMock) Delete(ctx context.Context, caller models.Caller, id string) error {
	return m.err
}

var adminClaims = &models.JWTClaims{UserID: "a-1", Role: models.RoleAdmin}

func TestCategoryHandlerList(t *testing.T) {
	h := NewCategoryHandler(&categoryServiceMock{})

	w := performRequest(h.List, http.MethodGet, "/categories", "/categories", nil, studentClaims)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Grades")
}

func TestCategoryHandlerCreateConflict(t *testing.T) {
	svc := &categoryServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "category already exists")}
	h := NewCategoryHandler(svc)

	w := performRequest(h.Create, http.MethodPost, "/categories", "/categories", map[string]interface{}{"name": "Academic", "hide_identity": true}, adminClaims)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, svc.created.HideIdentity)
}

func TestCategoryHandlerCreateSubcategory(t *testing.T) {
	svc := &categoryServiceMock{}
	h := NewCategoryHandler(svc)
	parent := uuid.NewString()

	w := performRequest(h.CreateSubcategory, http.MethodPost, "/categories/"+parent+"/subcategories", "/categories/:id/subcategories", map[string]string{"name": "Library"}, adminClaims)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, parent, svc.subParent)
}

func TestCategoryHandlerDelete(t *testing.T) {
	h := NewCategoryHandler(&categoryServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "category not found")})

	w := performRequest(h.Delete, http.MethodDelete, "/categories/"+uuid.NewString(), "/categories/:id", nil, adminClaims)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
