package dto

import "github.com/college-icrs/icrs-api/internal/models"

// CreateGrievanceRequest is the draft a student submits. Category and subcategory may be
// referenced by id or by name.
type CreateGrievanceRequest struct {
	Title              string  `json:"title" validate:"required,max=200"`
	Description        string  `json:"description" validate:"required,max=5000"`
	CategoryID         *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Category           *string `json:"category,omitempty" validate:"omitempty,max=100"`
	SubcategoryID      *string `json:"subcategory_id,omitempty" validate:"omitempty,uuid"`
	Subcategory        *string `json:"subcategory,omitempty" validate:"omitempty,max=100"`
	RegistrationNumber *string `json:"registration_number,omitempty" validate:"omitempty,max=50"`
	AssigneeID         *string `json:"assignee_id,omitempty" validate:"omitempty,uuid"`
	Priority           *string `json:"priority,omitempty" validate:"omitempty,max=20"`
}

// UpdateGrievanceRequest carries the descriptive fields an owner or staff member may change.
// Nil fields are left as they are.
type UpdateGrievanceRequest struct {
	Title              *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description        *string `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
	CategoryID         *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Category           *string `json:"category,omitempty" validate:"omitempty,max=100"`
	SubcategoryID      *string `json:"subcategory_id,omitempty" validate:"omitempty,uuid"`
	Subcategory        *string `json:"subcategory,omitempty" validate:"omitempty,max=100"`
	RegistrationNumber *string `json:"registration_number,omitempty" validate:"omitempty,max=50"`
	Priority           *string `json:"priority,omitempty" validate:"omitempty,max=20"`
}

// AssignGrievanceRequest names the staff member taking a grievance.
type AssignGrievanceRequest struct {
	FacultyID string `json:"faculty_id" validate:"required,uuid"`
}

// UpdateStatusRequest moves a grievance through its lifecycle.
type UpdateStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

// GrievanceQuery holds list query parameters.
type GrievanceQuery struct {
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	CategoryID string `form:"category_id"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
	Search     string `form:"q"`
}

// GrievanceResponse is the grievance as returned to clients.
type GrievanceResponse struct {
	models.Grievance
	StatusLabel string `json:"status_label"`
}

// StatusHistoryItem is one ledger row with readable labels.
type StatusHistoryItem struct {
	models.StatusHistory
	FromLabel string `json:"from_label"`
	ToLabel   string `json:"to_label"`
}

// NewGrievanceResponse decorates a grievance for output.
func NewGrievanceResponse(g models.Grievance) GrievanceResponse {
	return GrievanceResponse{Grievance: g, StatusLabel: g.Status.Label()}
}

// NewStatusHistoryItem decorates a ledger row for output.
func NewStatusHistoryItem(h models.StatusHistory) StatusHistoryItem {
	return StatusHistoryItem{StatusHistory: h, FromLabel: h.FromStatus.Label(), ToLabel: h.ToStatus.Label()}
}
