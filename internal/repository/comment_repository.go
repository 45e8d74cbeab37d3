package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/college-icrs/icrs-api/internal/models"
)

// CommentRepository stores grievance comment threads.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository constructs the repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO comments (id, grievance_id, author_id, body, created_at) VALUES (:id, :grievance_id, :author_id, :body, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListByGrievance returns the thread oldest first.
func (r *CommentRepository) ListByGrievance(ctx context.Context, grievanceID string) ([]models.Comment, error) {
	const query = `SELECT cm.id, cm.grievance_id, cm.author_id, u.full_name AS author_name, u.role AS author_role, cm.body, cm.created_at
FROM comments cm
LEFT JOIN users u ON u.id = cm.author_id
WHERE cm.grievance_id = $1
ORDER BY cm.created_at ASC, cm.id ASC`
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, grievanceID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
