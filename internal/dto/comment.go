package dto

// CreateCommentRequest is a new message on a grievance thread.
type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}
