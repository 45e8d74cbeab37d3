package models

import "time"

// StatusHistory is an append-only ledger row recording one status transition.
type StatusHistory struct {
	ID          string          `db:"id" json:"id"`
	GrievanceID string          `db:"grievance_id" json:"grievance_id"`
	FromStatus  GrievanceStatus `db:"from_status" json:"from_status"`
	ToStatus    GrievanceStatus `db:"to_status" json:"to_status"`
	ActorID     *string         `db:"actor_id" json:"actor_id,omitempty"`
	ActorName   *string         `db:"actor_name" json:"actor_name,omitempty"`
	Reason      *string         `db:"reason" json:"reason,omitempty"`
	ChangedAt   time.Time       `db:"changed_at" json:"changed_at"`
}
