package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleFaculty UserRole = "FACULTY"
	RoleAdmin   UserRole = "ADMIN"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleFaculty || r == RoleAdmin
}

// IsStaff reports whether the role handles grievances rather than filing them.
func (r UserRole) IsStaff() bool {
	return r == RoleFaculty || r == RoleAdmin
}

// User represents an application user stored in the users table.
type User struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	FullName      string    `db:"full_name" json:"full_name"`
	Role          UserRole  `db:"role" json:"role"`
	Enabled       bool      `db:"enabled" json:"enabled"`
	Department    *string   `db:"department" json:"department,omitempty"`
	StudentNumber *string   `db:"student_number" json:"student_number,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Enabled   *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Caller is the authenticated identity a service operation acts on behalf of.
type Caller struct {
	ID    string
	Email string
	Role  UserRole
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
