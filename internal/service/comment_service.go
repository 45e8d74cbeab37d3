package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/college-icrs/icrs-api/internal/dto"
	"github.com/college-icrs/icrs-api/internal/models"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
)

type commentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByGrievance(ctx context.Context, grievanceID string) ([]models.Comment, error)
}

type grievanceReader interface {
	FindByID(ctx context.Context, id string) (*models.Grievance, error)
}

type commentNotifier interface {
	CommentAdded(ctx context.Context, g *models.Grievance, author *models.User, comment *models.Comment)
}

// CommentService manages grievance discussion threads.
type CommentService struct {
	comments   commentStore
	grievances grievanceReader
	users      userFinder
	notifier   commentNotifier
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCommentService constructs the service.
func NewCommentService(comments commentStore, grievances grievanceReader, users userFinder, notifier commentNotifier, validate *validator.Validate, logger *zap.Logger) *CommentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		comments:   comments,
		grievances: grievances,
		users:      users,
		notifier:   notifier,
		validator:  validate,
		logger:     logger,
	}
}

// AddComment appends a comment authored by the caller. The author is resolved from the
// caller's email and authorised with the role stored on the account.
func (s *CommentService) AddComment(ctx context.Context, caller models.Caller, grievanceID string, req dto.CreateCommentRequest) (*models.Comment, error) {
	g, err := s.grievances.FindByID(ctx, grievanceID)
	if err != nil {
		return nil, notFoundOrInternal(err, "grievance not found", "failed to load grievance")
	}
	author, err := s.users.FindByEmail(ctx, caller.Email)
	if err != nil {
		return nil, notFoundOrInternal(err, "author not found", "failed to load author")
	}
	if !CanComment(models.Caller{ID: author.ID, Email: author.Email, Role: author.Role}, g) {
		return nil, forbidden("you cannot comment on this grievance")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid comment payload")
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "comment body is required")
	}

	comment := &models.Comment{GrievanceID: g.ID, AuthorID: author.ID, Body: body}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, appErrors.Internal(err, "failed to add comment")
	}
	comment.AuthorName = &author.FullName
	role := author.Role
	comment.AuthorRole = &role

	s.logger.Info("comment added",
		zap.String("grievance_id", g.ID),
		zap.String("comment_id", comment.ID),
		zap.String("author_id", author.ID),
	)
	s.notifier.CommentAdded(ctx, g, author, comment)
	return comment, nil
}

// ListComments returns the thread oldest first. Student authors are masked like the grievance itself.
func (s *CommentService) ListComments(ctx context.Context, caller models.Caller, grievanceID string) ([]models.Comment, error) {
	g, err := s.grievances.FindByID(ctx, grievanceID)
	if err != nil {
		return nil, notFoundOrInternal(err, "grievance not found", "failed to load grievance")
	}
	if !CanViewGrievance(caller, g) {
		return nil, forbidden("you cannot view this grievance")
	}
	comments, err := s.comments.ListByGrievance(ctx, grievanceID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list comments")
	}
	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, MaskCommentAuthor(caller, g, c))
	}
	return out, nil
}
