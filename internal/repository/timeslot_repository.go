package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

// TimeSlotRepository provides database access for availability slots.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new instance of TimeSlotRepository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// Create inserts a slot. The (counsellor, day, start) unique constraint is
// the real duplicate guard.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO time_slots (id, counsellor_id, day_of_week, start_time, end_time, available, created_at, updated_at) VALUES (:id, :counsellor_id, :day_of_week, :start_time, :end_time, :available, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		if isUniqueViolation(err, constraintSlotOwnerDayStart) {
			return appErrors.ErrDuplicateSlot
		}
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// FindByID returns a slot by identifier.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	const query = `SELECT id, counsellor_id, day_of_week, start_time, end_time, available, created_at, updated_at FROM time_slots WHERE id = $1 LIMIT 1`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find time slot: %w", err)
	}
	return &slot, nil
}

// Exists reports whether a (counsellor, day, start) triple is taken.
func (r *TimeSlotRepository) Exists(ctx context.Context, counsellorID string, dayOfWeek int, startTime string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM time_slots WHERE counsellor_id = $1 AND day_of_week = $2 AND start_time = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, counsellorID, dayOfWeek, startTime); err != nil {
		return false, fmt.Errorf("check time slot: %w", err)
	}
	return exists, nil
}

// ListAvailable returns a counsellor's bookable slots ordered by day and
// start time.
func (r *TimeSlotRepository) ListAvailable(ctx context.Context, counsellorID string) ([]models.TimeSlot, error) {
	const query = `SELECT id, counsellor_id, day_of_week, start_time, end_time, available, created_at, updated_at FROM time_slots WHERE counsellor_id = $1 AND available = TRUE ORDER BY day_of_week, start_time`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, counsellorID); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// Update persists mutable slot fields.
func (r *TimeSlotRepository) Update(ctx context.Context, slot *models.TimeSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_slots SET start_time = :start_time, end_time = :end_time, available = :available, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}
	return nil
}

// Delete removes a slot.
func (r *TimeSlotRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM time_slots WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}
	return nil
}
