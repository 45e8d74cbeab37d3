package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/college-icrs/icrs-api/internal/models"
)

const statusHistorySelect = `SELECT h.id, h.grievance_id, h.from_status, h.to_status, h.actor_id, u.full_name AS actor_name, h.reason, h.changed_at
FROM status_history h
LEFT JOIN users u ON u.id = h.actor_id
WHERE h.grievance_id = $1`

// StatusHistoryRepository reads the append-only status ledger.
// Rows are only written by GrievanceRepository.TransitionStatus.
type StatusHistoryRepository struct {
	db *sqlx.DB
}

// NewStatusHistoryRepository constructs the repository.
func NewStatusHistoryRepository(db *sqlx.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

// ListByGrievance returns ledger rows newest first.
func (r *StatusHistoryRepository) ListByGrievance(ctx context.Context, grievanceID string) ([]models.StatusHistory, error) {
	return r.list(ctx, grievanceID, "DESC")
}

// ListByGrievanceChronological returns ledger rows oldest first, in the order they were written.
func (r *StatusHistoryRepository) ListByGrievanceChronological(ctx context.Context, grievanceID string) ([]models.StatusHistory, error) {
	return r.list(ctx, grievanceID, "ASC")
}

// seq is assigned on insert, so it breaks ties between rows written within the same instant.
func (r *StatusHistoryRepository) list(ctx context.Context, grievanceID, order string) ([]models.StatusHistory, error) {
	query := fmt.Sprintf("%s ORDER BY h.changed_at %s, h.seq %s", statusHistorySelect, order, order)
	var rows []models.StatusHistory
	if err := r.db.SelectContext(ctx, &rows, query, grievanceID); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return rows, nil
}

func insertStatusHistory(ctx context.Context, tx *sqlx.Tx, entry *models.StatusHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `INSERT INTO status_history (id, grievance_id, from_status, to_status, actor_id, reason, changed_at) VALUES (:id, :grievance_id, :from_status, :to_status, :actor_id, :reason, :changed_at)`
	if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}
