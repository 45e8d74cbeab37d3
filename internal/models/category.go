package models

import "time"

// Category groups grievances and carries routing and privacy policy.
type Category struct {
	ID                  string        `db:"id" json:"id"`
	Name                string        `db:"name" json:"name"`
	Description         *string       `db:"description" json:"description,omitempty"`
	DefaultAssigneeID   *string       `db:"default_assignee_id" json:"default_assignee_id,omitempty"`
	DefaultAssigneeName *string       `db:"default_assignee_name" json:"default_assignee_name,omitempty"`
	Sensitive           bool          `db:"sensitive" json:"sensitive"`
	HideIdentity        bool          `db:"hide_identity" json:"hide_identity"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
	Subcategories       []Subcategory `db:"-" json:"subcategories"`
}

// Subcategory refines a category and may carry its own default assignee.
type Subcategory struct {
	ID                  string    `db:"id" json:"id"`
	CategoryID          string    `db:"category_id" json:"category_id"`
	Name                string    `db:"name" json:"name"`
	Description         *string   `db:"description" json:"description,omitempty"`
	DefaultAssigneeID   *string   `db:"default_assignee_id" json:"default_assignee_id,omitempty"`
	DefaultAssigneeName *string   `db:"default_assignee_name" json:"default_assignee_name,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}
