package models

import "time"

// Comment is an immutable message in a grievance thread.
type Comment struct {
	ID          string    `db:"id" json:"id"`
	GrievanceID string    `db:"grievance_id" json:"grievance_id"`
	AuthorID    string    `db:"author_id" json:"author_id,omitempty"`
	AuthorName  *string   `db:"author_name" json:"author_name,omitempty"`
	AuthorRole  *UserRole `db:"author_role" json:"author_role,omitempty"`
	Body        string    `db:"body" json:"body"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
