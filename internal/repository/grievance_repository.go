package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/college-icrs/icrs-api/internal/models"
	"github.com/college-icrs/icrs-api/pkg/database"
)

const grievanceSelect = `SELECT g.id, g.title, g.description, g.registration_number, g.student_id, g.category_id, g.subcategory_id, g.assignee_id, g.status, g.priority, g.created_at, g.updated_at,
s.full_name AS student_name, s.email AS student_email, a.full_name AS assignee_name, a.email AS assignee_email,
c.name AS category_name, sc.name AS subcategory_name,
COALESCE(c.sensitive, FALSE) AS category_sensitive, COALESCE(c.hide_identity, FALSE) AS category_hide_identity
FROM grievances g
JOIN users s ON s.id = g.student_id
LEFT JOIN users a ON a.id = g.assignee_id
LEFT JOIN categories c ON c.id = g.category_id
LEFT JOIN subcategories sc ON sc.id = g.subcategory_id`

var grievanceSorts = map[string]string{
	"created_at": "g.created_at",
	"updated_at": "g.updated_at",
	"title":      "g.title",
	"status":     "g.status",
	"priority":   "g.priority",
}

// GrievanceRepository is the lifecycle store for grievances.
type GrievanceRepository struct {
	db *sqlx.DB
}

// NewGrievanceRepository constructs the repository.
func NewGrievanceRepository(db *sqlx.DB) *GrievanceRepository {
	return &GrievanceRepository{db: db}
}

// Create inserts a new grievance.
func (r *GrievanceRepository) Create(ctx context.Context, g *models.Grievance) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	const query = `INSERT INTO grievances (id, title, description, registration_number, student_id, category_id, subcategory_id, assignee_id, status, priority, created_at, updated_at)
VALUES (:id, :title, :description, :registration_number, :student_id, :category_id, :subcategory_id, :assignee_id, :status, :priority, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, g); err != nil {
		return fmt.Errorf("create grievance: %w", err)
	}
	return nil
}

// FindByID returns a grievance with its joined read-model columns.
func (r *GrievanceRepository) FindByID(ctx context.Context, id string) (*models.Grievance, error) {
	var g models.Grievance
	if err := r.db.GetContext(ctx, &g, grievanceSelect+` WHERE g.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find grievance: %w", err)
	}
	return &g, nil
}

// Update persists the descriptive fields. Status, student and assignee are left untouched.
func (r *GrievanceRepository) Update(ctx context.Context, g *models.Grievance) error {
	g.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grievances SET title = :title, description = :description, registration_number = :registration_number, category_id = :category_id, subcategory_id = :subcategory_id, priority = :priority, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, g)
	if err != nil {
		return fmt.Errorf("update grievance: %w", err)
	}
	return requireAffected(res, "update grievance")
}

// Assign sets the assignee and status in one statement.
func (r *GrievanceRepository) Assign(ctx context.Context, id, assigneeID string, status models.GrievanceStatus) error {
	const query = `UPDATE grievances SET assignee_id = $2, status = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, assigneeID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("assign grievance: %w", err)
	}
	return requireAffected(res, "assign grievance")
}

// TransitionStatus moves a grievance to a new status and appends the ledger row in the same
// transaction. The grievance row is locked first so concurrent transitions serialize and the
// recorded from-status is exact.
func (r *GrievanceRepository) TransitionStatus(ctx context.Context, id string, to models.GrievanceStatus, actorID, reason *string) (*models.StatusHistory, error) {
	var entry *models.StatusHistory
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var from models.GrievanceStatus
		if err := tx.GetContext(ctx, &from, `SELECT status FROM grievances WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return fmt.Errorf("lock grievance: %w", err)
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `UPDATE grievances SET status = $2, updated_at = $3 WHERE id = $1`, id, to, now); err != nil {
			return fmt.Errorf("update grievance status: %w", err)
		}

		entry = &models.StatusHistory{
			GrievanceID: id,
			FromStatus:  from,
			ToStatus:    to,
			ActorID:     actorID,
			Reason:      reason,
			ChangedAt:   now,
		}
		return insertStatusHistory(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes a grievance with its ledger and comments. Returns sql.ErrNoRows when absent.
func (r *GrievanceRepository) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM status_history WHERE grievance_id = $1`, id); err != nil {
			return fmt.Errorf("delete status history: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE grievance_id = $1`, id); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM grievances WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete grievance: %w", err)
		}
		return requireAffected(res, "delete grievance")
	})
}

// List returns a page of grievances matching the filter and the total match count.
func (r *GrievanceRepository) List(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, int, error) {
	where, args := grievanceWhere(filter)

	sortBy, ok := grievanceSorts[filter.SortBy]
	if !ok {
		sortBy = "g.created_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("%s%s ORDER BY %s %s, g.id LIMIT %d OFFSET %d", grievanceSelect, where, sortBy, sortOrder, pageSize, offset)
	var items []models.Grievance
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list grievances: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM grievances g"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count grievances: %w", err)
	}
	return items, total, nil
}

// ListAll returns every grievance matching the filter, newest first.
func (r *GrievanceRepository) ListAll(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, error) {
	where, args := grievanceWhere(filter)
	var items []models.Grievance
	if err := r.db.SelectContext(ctx, &items, grievanceSelect+where+" ORDER BY g.created_at DESC, g.id", args...); err != nil {
		return nil, fmt.Errorf("list all grievances: %w", err)
	}
	return items, nil
}

// Statistics counts grievances per status in a single aggregate statement.
func (r *GrievanceRepository) Statistics(ctx context.Context) (*models.GrievanceStatistics, error) {
	const query = `SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE status = 'SUBMITTED') AS submitted,
COUNT(*) FILTER (WHERE status = 'IN_PROGRESS') AS in_progress,
COUNT(*) FILTER (WHERE status = 'RESOLVED') AS resolved
FROM grievances`
	var stats models.GrievanceStatistics
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("grievance statistics: %w", err)
	}
	return &stats, nil
}

func grievanceWhere(filter models.GrievanceFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("g.status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		conditions = append(conditions, fmt.Sprintf("g.priority = $%d", len(args)))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("g.category_id = $%d", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("g.student_id = $%d", len(args)))
	}
	if filter.AssigneeID != "" {
		args = append(args, filter.AssigneeID)
		conditions = append(conditions, fmt.Sprintf("g.assignee_id = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(g.title) LIKE $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
