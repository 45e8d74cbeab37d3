package models

import "time"

// NotificationKind identifies which lifecycle event produced an email.
type NotificationKind string

const (
	NotificationGrievanceSubmitted NotificationKind = "GRIEVANCE_SUBMITTED"
	NotificationGrievanceAssigned  NotificationKind = "GRIEVANCE_ASSIGNED"
	NotificationStatusChanged      NotificationKind = "STATUS_CHANGED"
	NotificationCommentAdded       NotificationKind = "COMMENT_ADDED"
)

// Notification is the task payload drained by the notification workers.
type Notification struct {
	ID          string           `json:"id"`
	Kind        NotificationKind `json:"kind"`
	To          string           `json:"to"`
	Subject     string           `json:"subject"`
	Body        string           `json:"body"`
	GrievanceID string           `json:"grievance_id"`
	EnqueuedAt  time.Time        `json:"enqueued_at"`
}
