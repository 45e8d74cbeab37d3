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

type categoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, caller models.Caller, req dto.CreateCategoryRequest) (*models.Category, error)
	CreateSubcategory(ctx context.Context, caller models.Caller, categoryID string, req dto.CreateSubcategoryRequest) (*models.Subcategory, error)
	Delete(ctx context.Context, caller models.Caller, id string) error
}

// CategoryHandler exposes the category registry.
type CategoryHandler struct {
	service categoryService
}

// NewCategoryHandler builds a new handler.
func NewCategoryHandler(svc categoryService) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// List godoc
// @Summary List categories with subcategories
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param payload body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid category payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// CreateSubcategory godoc
// @Summary Create a subcategory
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param payload body dto.CreateSubcategoryRequest true "Subcategory"
// @Success 201 {object} response.Envelope
// @Router /categories/{id}/subcategories [post]
func (h *CategoryHandler) CreateSubcategory(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subcategory payload"))
		return
	}
	item, err := h.service.CreateSubcategory(c.Request.Context(), caller, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Delete godoc
// @Summary Delete a category
// @Description Removes the category and its subcategories; grievances keep existing without one
// @Tags Categories
// @Param id path string true "Category ID"
// @Success 204
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
