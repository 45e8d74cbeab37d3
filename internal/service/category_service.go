package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/college-icrs/icrs-api/internal/dto"
	"github.com/college-icrs/icrs-api/internal/models"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
)

type categoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindSubcategoryByName(ctx context.Context, categoryID, name string) (*models.Subcategory, error)
	Create(ctx context.Context, category *models.Category) error
	CreateSubcategory(ctx context.Context, sub *models.Subcategory) error
	Delete(ctx context.Context, id string) error
}

type registryUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	EnsureByEmail(ctx context.Context, user *models.User) (string, error)
}

// CategoryService maintains the category registry used to route grievances.
type CategoryService struct {
	categories categoryStore
	users      registryUserStore
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCategoryService constructs the service.
func NewCategoryService(categories categoryStore, users registryUserStore, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{categories: categories, users: users, validator: validate, logger: logger}
}

// List returns every category with its subcategories.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list categories")
	}
	return items, nil
}

// Create adds a category. Names are unique ignoring case.
func (s *CategoryService) Create(ctx context.Context, caller models.Caller, req dto.CreateCategoryRequest) (*models.Category, error) {
	if !CanManageCategories(caller) {
		return nil, forbidden("only admin can manage categories")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid category payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "category name is required")
	}

	if _, err := s.categories.FindByName(ctx, name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "category already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check category uniqueness")
	}

	assignee, err := s.defaultAssignee(ctx, req.DefaultAssigneeID)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:              name,
		Description:       trimmedOrNil(req.Description),
		DefaultAssigneeID: assignee,
		Sensitive:         req.Sensitive,
		HideIdentity:      req.HideIdentity,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, appErrors.Internal(err, "failed to create category")
	}
	category.Subcategories = []models.Subcategory{}
	s.logger.Info("category created", zap.String("category_id", category.ID), zap.String("name", name), zap.String("actor_id", caller.ID))
	return category, nil
}

// CreateSubcategory adds a subcategory. Names are unique within their category.
func (s *CategoryService) CreateSubcategory(ctx context.Context, caller models.Caller, categoryID string, req dto.CreateSubcategoryRequest) (*models.Subcategory, error) {
	if !CanManageCategories(caller) {
		return nil, forbidden("only admin can manage categories")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subcategory payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subcategory name is required")
	}

	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, notFoundOrInternal(err, "category not found", "failed to load category")
	}
	if _, err := s.categories.FindSubcategoryByName(ctx, category.ID, name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subcategory already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check subcategory uniqueness")
	}

	assignee, err := s.defaultAssignee(ctx, req.DefaultAssigneeID)
	if err != nil {
		return nil, err
	}

	sub := &models.Subcategory{
		CategoryID:        category.ID,
		Name:              name,
		Description:       trimmedOrNil(req.Description),
		DefaultAssigneeID: assignee,
	}
	if err := s.categories.CreateSubcategory(ctx, sub); err != nil {
		return nil, appErrors.Internal(err, "failed to create subcategory")
	}
	s.logger.Info("subcategory created", zap.String("category_id", category.ID), zap.String("subcategory_id", sub.ID), zap.String("name", name))
	return sub, nil
}

// Delete removes a category with its subcategories. Grievances keep existing without a category.
func (s *CategoryService) Delete(ctx context.Context, caller models.Caller, id string) error {
	if !CanManageCategories(caller) {
		return forbidden("only admin can manage categories")
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return notFoundOrInternal(err, "category not found", "failed to delete category")
	}
	s.logger.Info("category deleted", zap.String("category_id", id), zap.String("actor_id", caller.ID))
	return nil
}

func (s *CategoryService) defaultAssignee(ctx context.Context, id *string) (*string, error) {
	if !nonEmpty(id) {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, *id)
	if err != nil {
		return nil, notFoundOrInternal(err, "default assignee not found", "failed to load default assignee")
	}
	if !user.Role.IsStaff() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "default assignee must be faculty or admin")
	}
	return &user.ID, nil
}

type seedDesk struct {
	key   string
	email string
	name  string
}

type seedSubcategory struct {
	name        string
	description string
	desk        string
}

type seedCategory struct {
	name        string
	description string
	desk        string
	subs        []seedSubcategory
}

var referenceDesks = []seedDesk{
	{"academic", "faculty@college.edu", "Academic Desk"},
	{"admin", "faculty2@college.edu", "Admin Desk"},
	{"it", "it.support@college.edu", "IT Support"},
	{"hostel", "hostel@college.edu", "Hostel Office"},
	{"finance", "finance@college.edu", "Finance Office"},
	{"discipline", "discipline@college.edu", "Discipline Cell"},
	{"exam", "examcell@college.edu", "Exam Cell"},
}

var referenceCategories = []seedCategory{
	{"Academic", "Coursework, grades, attendance", "academic", []seedSubcategory{
		{"Exams", "Exam timetable, hall tickets", "exam"},
		{"Grades", "Grade corrections and disputes", "academic"},
		{"Attendance", "Attendance shortages / regularization", "academic"},
	}},
	{"Administrative", "Certificates, IDs, admin processes", "admin", []seedSubcategory{
		{"Certificates", "Bonafide, transcripts, ID cards", "admin"},
		{"Transfers", "Section change, branch transfer requests", "admin"},
	}},
	{"IT Support", "LMS, email, Wi‑Fi, lab access", "it", []seedSubcategory{
		{"WiFi / Network", "Campus Wi‑Fi, VPN, network access", "it"},
		{"LMS / Email", "LMS access, college email issues", "it"},
		{"Lab Machines", "Lab desktop / software access", "it"},
	}},
	{"Hostel & Accommodation", "Room allocation, facilities, maintenance", "hostel", []seedSubcategory{
		{"Room Allocation", "Allotment, change requests", "hostel"},
		{"Maintenance", "Repairs, cleanliness, electricity", "hostel"},
		{"Mess", "Food quality, billing issues", "hostel"},
	}},
	{"Finance & Scholarships", "Fees, refunds, stipends, scholarships", "finance", []seedSubcategory{
		{"Fee Payment", "Payment failures, late fees", "finance"},
		{"Scholarship", "Disbursement delays, eligibility", "finance"},
		{"Refunds", "Refund status and timelines", "finance"},
	}},
	{"Discipline & Safety", "Code of conduct, harassment, security", "discipline", []seedSubcategory{
		{"Code of Conduct", "Ragging, harassment, misconduct", "discipline"},
		{"Security", "Campus security or safety concerns", "discipline"},
	}},
	{"Examinations", "Timetable, hall tickets, revaluation", "exam", []seedSubcategory{
		{"Revaluation", "Revaluation / recounting requests", "exam"},
		{"Exam Schedule", "Timetable clashes or errors", "exam"},
		{"Hall Ticket", "Download / correction issues", "exam"},
	}},
}

// SeedDefaults installs the faculty desks and the reference category tree. Existing rows are
// matched by email or name and left as they are, so running it twice changes nothing.
func (s *CategoryService) SeedDefaults(ctx context.Context, facultyPassword string) error {
	if facultyPassword == "" {
		return appErrors.Clone(appErrors.ErrValidation, "faculty password is required for seeding")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(facultyPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash faculty password")
	}

	desks := make(map[string]string, len(referenceDesks))
	for _, desk := range referenceDesks {
		id, err := s.users.EnsureByEmail(ctx, &models.User{
			Email:        desk.email,
			PasswordHash: string(hash),
			FullName:     desk.name,
			Role:         models.RoleFaculty,
			Enabled:      true,
		})
		if err != nil {
			return appErrors.Internal(err, "failed to seed faculty "+desk.email)
		}
		desks[desk.key] = id
	}

	created := 0
	for _, ref := range referenceCategories {
		category, err := s.categories.FindByName(ctx, ref.name)
		if errors.Is(err, sql.ErrNoRows) {
			category = &models.Category{Name: ref.name, Description: stringPtr(ref.description), DefaultAssigneeID: deskID(desks, ref.desk)}
			if err := s.categories.Create(ctx, category); err != nil {
				return appErrors.Internal(err, "failed to seed category "+ref.name)
			}
			created++
		} else if err != nil {
			return appErrors.Internal(err, "failed to load category "+ref.name)
		}

		for _, subRef := range ref.subs {
			_, err := s.categories.FindSubcategoryByName(ctx, category.ID, subRef.name)
			if err == nil {
				continue
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return appErrors.Internal(err, "failed to load subcategory "+subRef.name)
			}
			sub := &models.Subcategory{CategoryID: category.ID, Name: subRef.name, Description: stringPtr(subRef.description), DefaultAssigneeID: deskID(desks, subRef.desk)}
			if err := s.categories.CreateSubcategory(ctx, sub); err != nil {
				return appErrors.Internal(err, "failed to seed subcategory "+subRef.name)
			}
			created++
		}
	}

	s.logger.Info("reference data seeded", zap.Int("desks", len(desks)), zap.Int("created", created))
	return nil
}

func deskID(desks map[string]string, key string) *string {
	id, ok := desks[key]
	if !ok {
		return nil
	}
	return &id
}

func stringPtr(s string) *string {
	return &s
}
