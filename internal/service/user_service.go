package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/college-icrs/icrs-api/internal/models"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
)

type userLister interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

// UserService exposes the account directory to administrators.
type UserService struct {
	repo   userLister
	logger *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userLister, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// List returns paginated users and pagination metadata. Password hashes never leave the model.
func (s *UserService) List(ctx context.Context, caller models.Caller, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if !CanManageUsers(caller) {
		return nil, nil, forbidden("only admin can list users")
	}
	if filter.Role != nil {
		role := models.UserRole(strings.ToUpper(strings.TrimSpace(string(*filter.Role))))
		if !role.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role "+string(*filter.Role))
		}
		filter.Role = &role
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}
