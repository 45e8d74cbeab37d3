package models

import (
	"strings"
	"time"
)

// GrievanceStatus is the lifecycle state of a grievance.
type GrievanceStatus string

const (
	StatusSubmitted  GrievanceStatus = "SUBMITTED"
	StatusInProgress GrievanceStatus = "IN_PROGRESS"
	StatusResolved   GrievanceStatus = "RESOLVED"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s GrievanceStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Label renders the status for people.
func (s GrievanceStatus) Label() string {
	switch s {
	case StatusSubmitted:
		return "Submitted"
	case StatusInProgress:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	}
	return string(s)
}

// ParseGrievanceStatus accepts any casing and hyphen or space separators.
func ParseGrievanceStatus(raw string) (GrievanceStatus, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	status := GrievanceStatus(normalized)
	return status, status.Valid()
}

// GrievancePriority ranks how urgently a grievance should be handled.
type GrievancePriority string

const (
	PriorityLow    GrievancePriority = "LOW"
	PriorityMedium GrievancePriority = "MEDIUM"
	PriorityHigh   GrievancePriority = "HIGH"
	PriorityUrgent GrievancePriority = "URGENT"
)

// ParseGrievancePriority accepts any casing.
func ParseGrievancePriority(raw string) (GrievancePriority, bool) {
	priority := GrievancePriority(strings.ToUpper(strings.TrimSpace(raw)))
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return priority, true
	}
	return priority, false
}

// Grievance is a complaint filed by a student. Joined columns are populated on reads.
type Grievance struct {
	ID                 string             `db:"id" json:"id"`
	Title              string             `db:"title" json:"title"`
	Description        string             `db:"description" json:"description"`
	RegistrationNumber *string            `db:"registration_number" json:"registration_number,omitempty"`
	StudentID          string             `db:"student_id" json:"student_id,omitempty"`
	CategoryID         *string            `db:"category_id" json:"category_id,omitempty"`
	SubcategoryID      *string            `db:"subcategory_id" json:"subcategory_id,omitempty"`
	AssigneeID         *string            `db:"assignee_id" json:"assignee_id,omitempty"`
	Status             GrievanceStatus    `db:"status" json:"status"`
	Priority           *GrievancePriority `db:"priority" json:"priority,omitempty"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`

	StudentName     *string `db:"student_name" json:"student_name,omitempty"`
	StudentEmail    *string `db:"student_email" json:"student_email,omitempty"`
	AssigneeName    *string `db:"assignee_name" json:"assignee_name,omitempty"`
	AssigneeEmail   *string `db:"assignee_email" json:"assignee_email,omitempty"`
	CategoryName    *string `db:"category_name" json:"category_name,omitempty"`
	SubcategoryName *string `db:"subcategory_name" json:"subcategory_name,omitempty"`
	Sensitive       bool    `db:"category_sensitive" json:"sensitive"`
	HideIdentity    bool    `db:"category_hide_identity" json:"hide_identity"`
}

// GrievanceFilter captures filtering criteria for listing grievances.
type GrievanceFilter struct {
	Status     *GrievanceStatus
	Priority   *GrievancePriority
	CategoryID string
	StudentID  string
	AssigneeID string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// GrievanceStatistics summarises grievances per lifecycle state.
type GrievanceStatistics struct {
	Total      int `db:"total" json:"total"`
	Submitted  int `db:"submitted" json:"submitted"`
	InProgress int `db:"in_progress" json:"in_progress"`
	Resolved   int `db:"resolved" json:"resolved"`
}
