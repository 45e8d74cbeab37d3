package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/college-icrs/icrs-api/internal/dto"
	"github.com/college-icrs/icrs-api/internal/models"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
	"github.com/college-icrs/icrs-api/pkg/response"
)

type commentService interface {
	AddComment(ctx context.Context, caller models.Caller, grievanceID string, req dto.CreateCommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, caller models.Caller, grievanceID string) ([]models.Comment, error)
}

// CommentHandler exposes grievance discussion threads.
type CommentHandler struct {
	service commentService
}

// NewCommentHandler builds a new handler.
func NewCommentHandler(svc commentService) *CommentHandler {
	return &CommentHandler{service: svc}
}

// List godoc
// @Summary List comments on a grievance
// @Tags Comments
// @Produce json
// @Param id path string true "Grievance ID"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.ListComments(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Add godoc
// @Summary Comment on a grievance
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Grievance ID"
// @Param payload body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /grievances/{id}/comments [post]
func (h *CommentHandler) Add(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}
	item, err := h.service.AddComment(c.Request.Context(), caller, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}
