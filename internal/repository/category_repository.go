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

const (
	categorySelect = `SELECT c.id, c.name, c.description, c.default_assignee_id, u.full_name AS default_assignee_name, c.sensitive, c.hide_identity, c.created_at
FROM categories c
LEFT JOIN users u ON u.id = c.default_assignee_id`
	subcategorySelect = `SELECT s.id, s.category_id, s.name, s.description, s.default_assignee_id, u.full_name AS default_assignee_name, s.created_at
FROM subcategories s
LEFT JOIN users u ON u.id = s.default_assignee_id`
)

// CategoryRepository manages the category and subcategory registry.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs the repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns every category ordered by name with its subcategories attached.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, categorySelect+` ORDER BY LOWER(c.name)`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	var subs []models.Subcategory
	if err := r.db.SelectContext(ctx, &subs, subcategorySelect+` ORDER BY LOWER(s.name)`); err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}

	byCategory := make(map[string][]models.Subcategory, len(categories))
	for _, sub := range subs {
		byCategory[sub.CategoryID] = append(byCategory[sub.CategoryID], sub)
	}
	for i := range categories {
		categories[i].Subcategories = byCategory[categories[i].ID]
		if categories[i].Subcategories == nil {
			categories[i].Subcategories = []models.Subcategory{}
		}
	}
	return categories, nil
}

// FindByID fetches a category by id.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.GetContext(ctx, &category, categorySelect+` WHERE c.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

// FindByName fetches a category by name ignoring case.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.GetContext(ctx, &category, categorySelect+` WHERE LOWER(c.name) = LOWER($1)`, strings.TrimSpace(name)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return &category, nil
}

// FindSubcategoryByID fetches a subcategory by id.
func (r *CategoryRepository) FindSubcategoryByID(ctx context.Context, id string) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := r.db.GetContext(ctx, &sub, subcategorySelect+` WHERE s.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find subcategory: %w", err)
	}
	return &sub, nil
}

// FindSubcategoryByName fetches a subcategory by name within a category ignoring case.
func (r *CategoryRepository) FindSubcategoryByName(ctx context.Context, categoryID, name string) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := r.db.GetContext(ctx, &sub, subcategorySelect+` WHERE s.category_id = $1 AND LOWER(s.name) = LOWER($2)`, categoryID, strings.TrimSpace(name)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find subcategory by name: %w", err)
	}
	return &sub, nil
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO categories (id, name, description, default_assignee_id, sensitive, hide_identity, created_at) VALUES (:id, :name, :description, :default_assignee_id, :sensitive, :hide_identity, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// CreateSubcategory inserts a subcategory under its category.
func (r *CategoryRepository) CreateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO subcategories (id, category_id, name, description, default_assignee_id, created_at) VALUES (:id, :category_id, :name, :description, :default_assignee_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create subcategory: %w", err)
	}
	return nil
}

// Delete removes a category and its subcategories, clearing references held by grievances.
// Returns sql.ErrNoRows when the category does not exist.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `UPDATE grievances SET subcategory_id = NULL, updated_at = $2 WHERE subcategory_id IN (SELECT id FROM subcategories WHERE category_id = $1)`, id, now); err != nil {
			return fmt.Errorf("detach grievance subcategories: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE grievances SET category_id = NULL, updated_at = $2 WHERE category_id = $1`, id, now); err != nil {
			return fmt.Errorf("detach grievance categories: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM subcategories WHERE category_id = $1`, id); err != nil {
			return fmt.Errorf("delete subcategories: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete category rows affected: %w", err)
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}
