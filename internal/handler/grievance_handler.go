package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/college-icrs/icrs-api/internal/dto"
	"github.com/college-icrs/icrs-api/internal/models"
	"github.com/college-icrs/icrs-api/internal/service"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
	"github.com/college-icrs/icrs-api/pkg/response"
)

type grievanceService interface {
	CreateGrievance(ctx context.Context, caller models.Caller, req dto.CreateGrievanceRequest) (*dto.GrievanceResponse, error)
	AssignToFaculty(ctx context.Context, caller models.Caller, grievanceID, facultyID string) (*dto.GrievanceResponse, error)
	UpdateStatus(ctx context.Context, caller models.Caller, grievanceID string, req dto.UpdateStatusRequest) (*dto.GrievanceResponse, error)
	GetStatistics(ctx context.Context, caller models.Caller) (*models.GrievanceStatistics, error)
	GetGrievance(ctx context.Context, caller models.Caller, id string) (*dto.GrievanceResponse, error)
	UpdateGrievance(ctx context.Context, caller models.Caller, id string, req dto.UpdateGrievanceRequest) (*dto.GrievanceResponse, error)
	DeleteGrievance(ctx context.Context, caller models.Caller, id string) error
	ListGrievances(ctx context.Context, caller models.Caller, query dto.GrievanceQuery) ([]dto.GrievanceResponse, *models.Pagination, error)
	ListByStatus(ctx context.Context, caller models.Caller, status string, query dto.GrievanceQuery) ([]dto.GrievanceResponse, *models.Pagination, error)
	ListByStudent(ctx context.Context, caller models.Caller, studentID string) ([]dto.GrievanceResponse, error)
	ListAssigned(ctx context.Context, caller models.Caller) ([]dto.GrievanceResponse, error)
	SearchByTitle(ctx context.Context, caller models.Caller, q string) ([]dto.GrievanceResponse, error)
	ListStatusHistory(ctx context.Context, caller models.Caller, grievanceID string, chronological bool) ([]dto.StatusHistoryItem, error)
}

type grievanceExporter interface {
	ExportGrievances(ctx context.Context, caller models.Caller, query dto.GrievanceQuery, format string) (*service.ExportResult, error)
}

// GrievanceHandler exposes the grievance lifecycle endpoints.
type GrievanceHandler struct {
	service  grievanceService
	exporter grievanceExporter
}

// NewGrievanceHandler builds a new handler.
func NewGrievanceHandler(svc grievanceService, exporter grievanceExporter) *GrievanceHandler {
	return &GrievanceHandler{service: svc, exporter: exporter}
}

// Create godoc
// @Summary File a grievance
// @Description Submits a grievance for the calling student and routes it to a default assignee when one is configured
// @Tags Grievances
// @Accept json
// @Produce json
// @Param payload body dto.CreateGrievanceRequest true "Grievance draft"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grievances [post]
func (h *GrievanceHandler) Create(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grievance payload"))
		return
	}
	item, err := h.service.CreateGrievance(c.Request.Context(), caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// List godoc
// @Summary List grievances
// @Tags Grievances
// @Produce json
// @Param status query string false "SUBMITTED, IN_PROGRESS or RESOLVED"
// @Param q query string false "Title contains"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param sort_by query string false "created_at, updated_at, title or status"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /grievances [get]
func (h *GrievanceHandler) List(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var query dto.GrievanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.ListGrievances(c.Request.Context(), caller, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// ListByStatus godoc
// @Summary List grievances in one status
// @Tags Grievances
// @Produce json
// @Param status path string true "SUBMITTED, IN_PROGRESS or RESOLVED"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grievances/status/{status} [get]
func (h *GrievanceHandler) ListByStatus(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var query dto.GrievanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.ListByStatus(c.Request.Context(), caller, c.Param("status"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Statistics godoc
// @Summary Grievance counts per status
// @Tags Grievances
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grievances/statistics [get]
func (h *GrievanceHandler) Statistics(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	stats, err := h.service.GetStatistics(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Search godoc
// @Summary Search grievances by title
// @Tags Grievances
// @Produce json
// @Param q query string true "Title contains"
// @Success 200 {object} response.Envelope
// @Router /grievances/search [get]
func (h *GrievanceHandler) Search(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.SearchByTitle(c.Request.Context(), caller, c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Assigned godoc
// @Summary Grievances assigned to the caller
// @Tags Grievances
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grievances/assigned [get]
func (h *GrievanceHandler) Assigned(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.ListAssigned(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Export godoc
// @Summary Export grievances
// @Description Renders the filtered grievance list as CSV or PDF
// @Tags Grievances
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /grievances/export [get]
func (h *GrievanceHandler) Export(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var query dto.GrievanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	result, err := h.exporter.ExportGrievances(c.Request.Context(), caller, query, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}

// ListByStudent godoc
// @Summary Grievances filed by a student
// @Tags Grievances
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /grievances/student/{studentId} [get]
func (h *GrievanceHandler) ListByStudent(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	items, err := h.service.ListByStudent(c.Request.Context(), caller, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get a grievance
// @Tags Grievances
// @Produce json
// @Param id path string true "Grievance ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grievances/{id} [get]
func (h *GrievanceHandler) Get(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetGrievance(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Update grievance details
// @Tags Grievances
// @Accept json
// @Produce json
// @Param id path string true "Grievance ID"
// @Param payload body dto.UpdateGrievanceRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id} [put]
func (h *GrievanceHandler) Update(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grievance payload"))
		return
	}
	item, err := h.service.UpdateGrievance(c.Request.Context(), caller, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a grievance
// @Tags Grievances
// @Param id path string true "Grievance ID"
// @Success 204
// @Router /grievances/{id} [delete]
func (h *GrievanceHandler) Delete(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteGrievance(c.Request.Context(), caller, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Assign godoc
// @Summary Assign a grievance to faculty
// @Description Sets the assignee and moves the grievance to IN_PROGRESS
// @Tags Grievances
// @Accept json
// @Produce json
// @Param id path string true "Grievance ID"
// @Param payload body dto.AssignGrievanceRequest true "Assignee"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id}/assign [patch]
func (h *GrievanceHandler) Assign(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	item, err := h.service.AssignToFaculty(c.Request.Context(), caller, id, req.FacultyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// UpdateStatus godoc
// @Summary Change grievance status
// @Description Records the transition in the status history
// @Tags Grievances
// @Accept json
// @Produce json
// @Param id path string true "Grievance ID"
// @Param payload body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id}/status [patch]
func (h *GrievanceHandler) UpdateStatus(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	item, err := h.service.UpdateStatus(c.Request.Context(), caller, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// History godoc
// @Summary Status history of a grievance
// @Tags Grievances
// @Produce json
// @Param id path string true "Grievance ID"
// @Param order query string false "desc (newest first, default) or asc (oldest first)"
// @Success 200 {object} response.Envelope
// @Router /grievances/{id}/history [get]
func (h *GrievanceHandler) History(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var chronological bool
	switch strings.ToLower(c.DefaultQuery("order", "desc")) {
	case "asc":
		chronological = true
	case "desc":
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "order must be asc or desc"))
		return
	}
	items, err := h.service.ListStatusHistory(c.Request.Context(), caller, id, chronological)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
