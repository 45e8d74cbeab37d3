package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/college-icrs/icrs-api/internal/models"
	"github.com/college-icrs/icrs-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, caller models.Caller, filter models.UserFilter) ([]models.User, *models.Pagination, error)
}

// UserHandler exposes the account directory.
type UserHandler struct {
	service userService
}

// NewUserHandler builds a new handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List users
// @Description List accounts with pagination and filtering. Admin only.
// @Tags Users
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param role query string false "STUDENT, FACULTY or ADMIN"
// @Param enabled query bool false "Enabled filter"
// @Param search query string false "Matches email or full name"
// @Param sort_by query string false "email, full_name, role or created_at"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	var filter models.UserFilter
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}
	if enabled := c.Query("enabled"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			filter.Enabled = &val
		}
	}
	filter.Search = c.Query("search")
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")

	users, pagination, err := h.service.List(c.Request.Context(), caller, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}
