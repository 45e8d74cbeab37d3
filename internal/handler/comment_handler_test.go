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

type commentServiceMock struct {
	body string
	err  error
}

func (m *commentServiceMock) AddComment(ctx context.Context, caller models.Caller, grievanceID string, req dto.CreateCommentRequest) (*models.Comment, error) {
	m.body = req.Body
	if m.err != nil {
		return nil, m.err
	}
	return &models.Comment{ID: "c-1", GrievanceID: grievanceID, AuthorID: caller.ID, Body: req.Body}, nil
}

func (m *commentServiceMock) ListComments(ctx context.Context, caller models.Caller, grievanceID string) ([]models.Comment, error) {
	return []models.Comment{{ID: "c-1", Body: "first"}}, m.err
}

func TestCommentHandlerAdd(t *testing.T) {
	svc := &commentServiceMock{}
	h := NewCommentHandler(svc)

	w := performRequest(h.Add, http.MethodPost, "/grievances/"+uuid.NewString()+"/comments", "/grievances/:id/comments", map[string]string{"body": "any update?"}, studentClaims)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "any update?", svc.body)
}

func TestCommentHandlerAddForbidden(t *testing.T) {
	h := NewCommentHandler(&commentServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "you cannot comment on this grievance")})

	w := performRequest(h.Add, http.MethodPost, "/grievances/"+uuid.NewString()+"/comments", "/grievances/:id/comments", map[string]string{"body": "me too"}, studentClaims)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCommentHandlerList(t *testing.T) {
	h := NewCommentHandler(&commentServiceMock{})

	w := performRequest(h.List, http.MethodGet, "/grievances/"+uuid.NewString()+"/comments", "/grievances/:id/comments", nil, studentClaims)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "first")
}
