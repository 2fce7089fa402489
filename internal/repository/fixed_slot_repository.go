package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mlsaran/tt-scheduler-api/internal/models"
)

// FixedSlotRepository handles persistence for pre-pinned batch/day/period
// assignments consumed by the scheduler ahead of solving.
type FixedSlotRepository struct {
	db *sqlx.DB
}

// NewFixedSlotRepository constructs a new FixedSlotRepository.
func NewFixedSlotRepository(db *sqlx.DB) *FixedSlotRepository {
	return &FixedSlotRepository{db: db}
}

// ListByClass returns the fixed slots pinned for a single class.
func (r *FixedSlotRepository) ListByClass(ctx context.Context, classID string) ([]models.FixedSlot, error) {
	const query = `SELECT id, class_id, day, period, room_id, created_at FROM fixed_slots WHERE class_id = $1 ORDER BY day ASC, period ASC`
	var slots []models.FixedSlot
	if err := r.db.SelectContext(ctx, &slots, query, classID); err != nil {
		return nil, fmt.Errorf("list fixed slots by class: %w", err)
	}
	return slots, nil
}

// ListAll returns every fixed slot unfiltered and unpaginated, for the
// scheduler's Catalog.
func (r *FixedSlotRepository) ListAll(ctx context.Context) ([]models.FixedSlot, error) {
	const query = `SELECT id, class_id, day, period, room_id, created_at FROM fixed_slots ORDER BY class_id ASC, day ASC, period ASC`
	var slots []models.FixedSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list all fixed slots: %w", err)
	}
	return slots, nil
}

// Create persists a new fixed slot.
func (r *FixedSlotRepository) Create(ctx context.Context, slot *models.FixedSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}

	const query = `INSERT INTO fixed_slots (id, class_id, day, period, room_id, created_at) VALUES (:id, :class_id, :day, :period, :room_id, NOW())`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create fixed slot: %w", err)
	}
	return nil
}

// Delete removes a fixed slot record.
func (r *FixedSlotRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM fixed_slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete fixed slot: %w", err)
	}
	return nil
}
