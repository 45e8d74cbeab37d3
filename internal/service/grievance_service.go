package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/college-icrs/icrs-api/internal/dto"
	"github.com/college-icrs/icrs-api/internal/models"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
)

type grievanceStore interface {
	Create(ctx context.Context, g *models.Grievance) error
	FindByID(ctx context.Context, id string) (*models.Grievance, error)
	Update(ctx context.Context, g *models.Grievance) error
	Assign(ctx context.Context, id, assigneeID string, status models.GrievanceStatus) error
	TransitionStatus(ctx context.Context, id string, to models.GrievanceStatus, actorID, reason *string) (*models.StatusHistory, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, int, error)
	ListAll(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, error)
	Statistics(ctx context.Context) (*models.GrievanceStatistics, error)
}

type statusHistoryReader interface {
	ListByGrievance(ctx context.Context, grievanceID string) ([]models.StatusHistory, error)
	ListByGrievanceChronological(ctx context.Context, grievanceID string) ([]models.StatusHistory, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type categoryFinder interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindSubcategoryByID(ctx context.Context, id string) (*models.Subcategory, error)
	FindSubcategoryByName(ctx context.Context, categoryID, name string) (*models.Subcategory, error)
}

type lifecycleNotifier interface {
	GrievanceSubmitted(ctx context.Context, g *models.Grievance)
	GrievanceAssigned(ctx context.Context, g *models.Grievance)
	StatusChanged(ctx context.Context, g *models.Grievance, from, to models.GrievanceStatus, reason *string)
}

// GrievanceService runs the grievance lifecycle: creation with routing, assignment,
// status transitions and the reads around them.
type GrievanceService struct {
	grievances grievanceStore
	history    statusHistoryReader
	users      userFinder
	categories categoryFinder
	notifier   lifecycleNotifier
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewGrievanceService constructs the service.
func NewGrievanceService(
	grievances grievanceStore,
	history statusHistoryReader,
	users userFinder,
	categories categoryFinder,
	notifier lifecycleNotifier,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *GrievanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GrievanceService{
		grievances: grievances,
		history:    history,
		users:      users,
		categories: categories,
		notifier:   notifier,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// CreateGrievance files a grievance for the calling student and routes it.
func (s *GrievanceService) CreateGrievance(ctx context.Context, caller models.Caller, req dto.CreateGrievanceRequest) (*dto.GrievanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grievance payload")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title and description are required")
	}

	student, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, notFoundOrInternal(err, "student not found", "failed to load student")
	}
	if !student.Enabled || student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	category, subcategory, err := s.resolveRefs(ctx, req.CategoryID, req.Category, req.SubcategoryID, req.Subcategory)
	if err != nil {
		return nil, err
	}

	priority, err := parsePriority(req.Priority)
	if err != nil {
		return nil, err
	}

	if req.AssigneeID != nil && *req.AssigneeID != "" {
		if _, err := s.loadAssignee(ctx, *req.AssigneeID); err != nil {
			return nil, err
		}
	}

	decision := Route(req.AssigneeID, category, subcategory)
	g := &models.Grievance{
		Title:              req.Title,
		Description:        req.Description,
		RegistrationNumber: trimmedOrNil(req.RegistrationNumber),
		StudentID:          student.ID,
		AssigneeID:         decision.AssigneeID,
		Status:             decision.Status,
		Priority:           priority,
	}
	if category != nil {
		g.CategoryID = &category.ID
	}
	if subcategory != nil {
		g.SubcategoryID = &subcategory.ID
	}

	if err := s.grievances.Create(ctx, g); err != nil {
		return nil, appErrors.Internal(err, "failed to create grievance")
	}
	s.metrics.RecordGrievanceCreated(decision.Source)
	s.logger.Info("grievance created",
		zap.String("grievance_id", g.ID),
		zap.String("student_id", g.StudentID),
		zap.String("route", string(decision.Source)),
		zap.String("status", string(g.Status)),
	)

	stored := s.reload(ctx, g)
	if stored == g {
		g.StudentName, g.StudentEmail = &student.FullName, &student.Email
	}
	s.notifier.GrievanceSubmitted(ctx, stored)
	return s.present(caller, stored), nil
}

// AssignToFaculty gives the grievance to a staff member and moves it to IN_PROGRESS.
// No ledger row is written for assignment.
func (s *GrievanceService) AssignToFaculty(ctx context.Context, caller models.Caller, grievanceID, facultyID string) (*dto.GrievanceResponse, error) {
	if !CanManageLifecycle(caller) {
		return nil, forbidden("only faculty or admin can assign grievances")
	}

	g, err := s.grievances.FindByID(ctx, grievanceID)
	if err != nil {
		return nil, notFoundOrInternal(err, "grievance not found", "failed to load grievance")
	}
	if _, err := s.loadAssignee(ctx, facultyID); err != nil {
		return nil, err
	}

	if err := s.grievances.Assign(ctx, g.ID, facultyID, models.StatusInProgress); err != nil {
		return nil, notFoundOrInternal(err, "grievance not found", "failed to assign grievance")
	}
	s.logger.Info("grievance assigned",
		zap.String("grievance_id", g.ID),
		zap.String("assignee_id", facultyID),
		zap.String("actor_id", caller.ID),
	)

	g.AssigneeID = &facultyID
	g.Status = models.StatusInProgress
	stored := s.reload(ctx, g)
	s.notifier.GrievanceAssigned(ctx, stored)
	return s.present(caller, stored), nil
}

// UpdateStatus transitions the grievance and appends a ledger row atomically.
// Any status may follow any other.
func (s *GrievanceService) UpdateStatus(ctx context.Context, caller models.Caller, grievanceID string, req dto.UpdateStatusRequest) (*dto.GrievanceResponse, error) {
	if !CanManageLifecycle(caller) {
		return nil, forbidden("only faculty or admin can change status")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	status, ok := models.ParseGrievanceStatus(req.Status)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+req.Status)
	}

	reason := trimmedOrNil(req.Reason)
	var actorID *string
	if caller.ID != "" {
		actorID = &caller.ID
	}

	entry, err := s.grievances.TransitionStatus(ctx, grievanceID, status, actorID, reason)
	if err != nil {
		return nil, notFoundOrInternal(err, "grievance not found", "failed to update status")
	}
	s.metrics.RecordTransition(entry.FromStatus, entry.ToStatus)
	s.logger.Info("grievance status changed",
		zap.String("grievance_id", grievanceID),
		zap.String("from", string(entry.FromStatus)),
		zap.String("to", string(entry.ToStatus)),
		zap.String("actor_id", caller.ID),
	)

	g, err := s.grievances.FindByID(ctx, grievanceID)
	if err != nil {
		return nil, notFoundOrInternal(err, "grievance not found", "failed to load grievance")
	}
	s.notifier.StatusChanged(ctx, g, entry.FromStatus, entry.ToStatus, reason)
	return s.present(caller, g), nil
}

// GetStatistics counts grievances per status. Every call reads the store.
func (s *GrievanceService) GetStatistics(ctx context.Context, caller models.Caller) (*models.GrievanceStatistics, error) {
	if !CanViewReports(caller) {
		return nil, forbidden("only faculty or admin can view statistics")
	}
	stats, err := s.grievances.Statistics(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to compute statistics")
	}
	return stats, nil
}

// GetGrievance returns a grievance the caller may see.
func (s *GrievanceService) GetGrievance(ctx context.Context, caller models.Caller, id string) (*dto.GrievanceResponse, error) {
	g, err := s.grievances.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "grievance not found", "failed to load grievance")
	}
	if !CanViewGrievance(caller, g) {
		return nil, forbidden("you cannot view this grievance")
	}
	return s.present(caller, g), nil
}

// UpdateGrievance changes descriptive fields. Status, student and assignee cannot be changed here.
func (s *GrievanceService) UpdateGrievance(ctx context.Context, caller models.Caller, id string, req dto.UpdateGrievanceRequest) (*dto.GrievanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grievance payload")
	}
	g, err := s.grievances.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "grievance not found", "failed to load grievance")
	}
	if !CanModifyGrievance(caller, g) {
		return nil, forbidden("you cannot modify this grievance")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "title cannot be blank")
		}
		g.Title = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "description cannot be blank")
		}
		g.Description = description
	}
	if req.RegistrationNumber != nil {
		g.RegistrationNumber = trimmedOrNil(req.RegistrationNumber)
	}
	if req.Priority != nil {
		priority, err := parsePriority(req.Priority)
		if err != nil {
			return nil, err
		}
		g.Priority = priority
	}

	if req.CategoryID != nil || req.Category != nil || req.SubcategoryID != nil || req.Subcategory != nil {
		category, subcategory, err := s.resolveRefs(ctx, req.CategoryID, req.Category, req.SubcategoryID, req.Subcategory)
		if err != nil {
			return nil, err
		}
		if category != nil {
			g.CategoryID = &category.ID
			if subcategory == nil && g.SubcategoryID != nil {
				// keep the old subcategory only if it still belongs to the category
				if current, err := s.categories.FindSubcategoryByID(ctx, *g.SubcategoryID); err != nil || current.CategoryID != category.ID {
					g.SubcategoryID = nil
				}
			}
		}
		if subcategory != nil {
			g.SubcategoryID = &subcategory.ID
		}
	}

	if err := s.grievances.Update(ctx, g); err != nil {
		return nil, notFoundOrInternal(err, "grievance not found", "failed to update grievance")
	}
	return s.present(caller, s.reload(ctx, g)), nil
}

// DeleteGrievance removes a grievance together with its ledger and comments.
func (s *GrievanceService) DeleteGrievance(ctx context.Context, caller models.Caller, id string) error {
	g, err := s.grievances.FindByID(ctx, id)
	if err != nil {
		return notFoundOrInternal(err, "grievance not found", "failed to load grievance")
	}
	if !CanDeleteGrievance(caller, g) {
		return forbidden("you cannot delete this grievance")
	}
	if err := s.grievances.Delete(ctx, id); err != nil {
		return notFoundOrInternal(err, "grievance not found", "failed to delete grievance")
	}
	s.logger.Info("grievance deleted", zap.String("grievance_id", id), zap.String("actor_id", caller.ID))
	return nil
}

// ListGrievances returns a page of grievances for staff.
func (s *GrievanceService) ListGrievances(ctx context.Context, caller models.Caller, query dto.GrievanceQuery) ([]dto.GrievanceResponse, *models.Pagination, error) {
	if !CanViewReports(caller) {
		return nil, nil, forbidden("only faculty or admin can list grievances")
	}
	filter, err := filterFromQuery(query)
	if err != nil {
		return nil, nil, err
	}

	items, total, err := s.grievances.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list grievances")
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return s.presentAll(caller, items), &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListByStatus returns a page of grievances in one status.
func (s *GrievanceService) ListByStatus(ctx context.Context, caller models.Caller, status string, query dto.GrievanceQuery) ([]dto.GrievanceResponse, *models.Pagination, error) {
	if _, ok := models.ParseGrievanceStatus(status); !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+status)
	}
	query.Status = status
	return s.ListGrievances(ctx, caller, query)
}

// ListByStudent returns the grievances filed by a student. The listing itself names the
// student, so grievances whose identity is hidden from the caller are left out.
func (s *GrievanceService) ListByStudent(ctx context.Context, caller models.Caller, studentID string) ([]dto.GrievanceResponse, error) {
	if !CanListStudentGrievances(caller, studentID) {
		return nil, forbidden("you cannot list this student's grievances")
	}
	items, err := s.grievances.ListAll(ctx, models.GrievanceFilter{StudentID: studentID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list grievances")
	}
	visible := items[:0]
	for _, g := range items {
		if ShouldMaskIdentity(caller, &g) {
			continue
		}
		visible = append(visible, g)
	}
	return s.presentAll(caller, visible), nil
}

// ListAssigned returns the grievances assigned to the calling staff member.
func (s *GrievanceService) ListAssigned(ctx context.Context, caller models.Caller) ([]dto.GrievanceResponse, error) {
	if !CanManageLifecycle(caller) {
		return nil, forbidden("only faculty or admin have assigned grievances")
	}
	items, err := s.grievances.ListAll(ctx, models.GrievanceFilter{AssigneeID: caller.ID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list grievances")
	}
	return s.presentAll(caller, items), nil
}

// SearchByTitle finds grievances whose title contains q, ignoring case.
func (s *GrievanceService) SearchByTitle(ctx context.Context, caller models.Caller, q string) ([]dto.GrievanceResponse, error) {
	if !CanViewReports(caller) {
		return nil, forbidden("only faculty or admin can search grievances")
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "search query is required")
	}
	items, err := s.grievances.ListAll(ctx, models.GrievanceFilter{Search: q})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to search grievances")
	}
	return s.presentAll(caller, items), nil
}

// ListStatusHistory returns the ledger newest first, or oldest first when chronological is set.
func (s *GrievanceService) ListStatusHistory(ctx context.Context, caller models.Caller, grievanceID string, chronological bool) ([]dto.StatusHistoryItem, error) {
	g, err := s.grievances.FindByID(ctx, grievanceID)
	if err != nil {
		return nil, notFoundOrInternal(err, "grievance not found", "failed to load grievance")
	}
	if !CanViewGrievance(caller, g) {
		return nil, forbidden("you cannot view this grievance")
	}
	read := s.history.ListByGrievance
	if chronological {
		read = s.history.ListByGrievanceChronological
	}
	rows, err := read(ctx, grievanceID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load status history")
	}
	items := make([]dto.StatusHistoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.NewStatusHistoryItem(row))
	}
	return items, nil
}

func (s *GrievanceService) resolveRefs(ctx context.Context, categoryID, categoryName, subcategoryID, subcategoryName *string) (*models.Category, *models.Subcategory, error) {
	var category *models.Category
	var err error

	switch {
	case nonEmpty(categoryID):
		category, err = s.categories.FindByID(ctx, *categoryID)
		if err != nil {
			return nil, nil, notFoundOrInternal(err, "category not found", "failed to load category")
		}
	case nonEmpty(categoryName):
		category, err = s.categories.FindByName(ctx, *categoryName)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, nil, appErrors.Internal(err, "failed to load category")
			}
			category = nil
		}
	}

	var subcategory *models.Subcategory
	switch {
	case nonEmpty(subcategoryID):
		subcategory, err = s.categories.FindSubcategoryByID(ctx, *subcategoryID)
		if err != nil {
			return nil, nil, notFoundOrInternal(err, "subcategory not found", "failed to load subcategory")
		}
		if category == nil {
			category, err = s.categories.FindByID(ctx, subcategory.CategoryID)
			if err != nil {
				return nil, nil, notFoundOrInternal(err, "category not found", "failed to load category")
			}
		} else if category.ID != subcategory.CategoryID {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "subcategory does not belong to the selected category")
		}
	case nonEmpty(subcategoryName) && category != nil:
		subcategory, err = s.categories.FindSubcategoryByName(ctx, category.ID, *subcategoryName)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, nil, appErrors.Internal(err, "failed to load subcategory")
			}
			subcategory = nil
		}
	}

	return category, subcategory, nil
}

func (s *GrievanceService) loadAssignee(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "faculty not found", "failed to load faculty")
	}
	if !user.Role.IsStaff() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignee must be faculty or admin")
	}
	if !user.Enabled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignee account is not enabled")
	}
	return user, nil
}

// reload fetches the joined read model after a write, falling back to the local copy.
func (s *GrievanceService) reload(ctx context.Context, g *models.Grievance) *models.Grievance {
	stored, err := s.grievances.FindByID(ctx, g.ID)
	if err != nil {
		s.logger.Warn("failed to reload grievance", zap.String("grievance_id", g.ID), zap.Error(err))
		return g
	}
	return stored
}

func (s *GrievanceService) present(caller models.Caller, g *models.Grievance) *dto.GrievanceResponse {
	resp := dto.NewGrievanceResponse(MaskIdentity(caller, *g))
	return &resp
}

func (s *GrievanceService) presentAll(caller models.Caller, items []models.Grievance) []dto.GrievanceResponse {
	out := make([]dto.GrievanceResponse, 0, len(items))
	for _, g := range items {
		out = append(out, dto.NewGrievanceResponse(MaskIdentity(caller, g)))
	}
	return out
}

func filterFromQuery(query dto.GrievanceQuery) (models.GrievanceFilter, error) {
	filter := models.GrievanceFilter{
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
		Search:    query.Search,
	}
	if query.Status != "" {
		status, ok := models.ParseGrievanceStatus(query.Status)
		if !ok {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown status "+query.Status)
		}
		filter.Status = &status
	}
	if query.Priority != "" {
		priority, ok := models.ParseGrievancePriority(query.Priority)
		if !ok {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown priority "+query.Priority)
		}
		filter.Priority = &priority
	}
	if query.CategoryID != "" {
		if _, err := uuid.Parse(query.CategoryID); err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "category_id must be a UUID")
		}
		filter.CategoryID = query.CategoryID
	}
	return filter, nil
}

func parsePriority(raw *string) (*models.GrievancePriority, error) {
	if !nonEmpty(raw) {
		return nil, nil
	}
	priority, ok := models.ParseGrievancePriority(*raw)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "priority must be one of LOW, MEDIUM, HIGH, URGENT")
	}
	return &priority, nil
}

func nonEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
