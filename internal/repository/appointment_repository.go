package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

// AppointmentRepository provides database access for bookings.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates a new instance of AppointmentRepository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create inserts a booking. A partial unique index over (student_id) WHERE
// status = 'scheduled' backs the one-active-appointment invariant.
func (r *AppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now

	const query = `INSERT INTO appointments (id, student_id, counsellor_id, time_slot_id, scheduled_at, status, created_at, updated_at) VALUES (:id, :student_id, :counsellor_id, :time_slot_id, :scheduled_at, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appt); err != nil {
		if isUniqueViolation(err, constraintOneScheduledBooking) {
			return appErrors.ErrConflictingAppointment
		}
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// FindByID returns an appointment by identifier.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	const query = `SELECT id, student_id, counsellor_id, time_slot_id, scheduled_at, status, created_at, updated_at FROM appointments WHERE id = $1 LIMIT 1`
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return &appt, nil
}

// HasScheduled reports whether the student holds a scheduled appointment
// dated at or after the reference instant.
func (r *AppointmentRepository) HasScheduled(ctx context.Context, studentID string, from time.Time) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM appointments WHERE student_id = $1 AND status = $2 AND scheduled_at >= $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, models.AppointmentScheduled, from); err != nil {
		return false, fmt.Errorf("check scheduled appointment: %w", err)
	}
	return exists, nil
}

// FindScheduledInWindow locates the scheduled appointment between a student
// and counsellor whose date falls inside [from, to]. Used by QR check-in.
func (r *AppointmentRepository) FindScheduledInWindow(ctx context.Context, studentID, counsellorID string, from, to time.Time) (*models.Appointment, error) {
	const query = `SELECT id, student_id, counsellor_id, time_slot_id, scheduled_at, status, created_at, updated_at
		FROM appointments
		WHERE student_id = $1 AND counsellor_id = $2 AND status = $3 AND scheduled_at BETWEEN $4 AND $5
		ORDER BY scheduled_at DESC
		LIMIT 1`
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, studentID, counsellorID, models.AppointmentScheduled, from, to); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find appointment in window: %w", err)
	}
	return &appt, nil
}

// UpdateStatus transitions an appointment's lifecycle status.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	const query = `UPDATE appointments SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	return nil
}

// ListForStudent returns the student's bookings with counsellor names.
func (r *AppointmentRepository) ListForStudent(ctx context.Context, studentID string) ([]dto.AppointmentView, error) {
	const query = `SELECT a.id, a.counsellor_id, cp.display_name AS counsellor_name, '' AS student_handle, a.time_slot_id, a.scheduled_at, a.status
		FROM appointments a
		JOIN counsellor_profiles cp ON cp.user_id = a.counsellor_id
		WHERE a.student_id = $1
		ORDER BY a.scheduled_at DESC`
	var views []dto.AppointmentView
	if err := r.db.SelectContext(ctx, &views, query, studentID); err != nil {
		return nil, fmt.Errorf("list student appointments: %w", err)
	}
	return views, nil
}

// ListForCounsellor returns the counsellor's bookings. Students appear only
// as their anonymous handle.
func (r *AppointmentRepository) ListForCounsellor(ctx context.Context, counsellorID string) ([]dto.AppointmentView, error) {
	const query = `SELECT a.id, a.counsellor_id, '' AS counsellor_name, COALESCE(sp.anon_handle, '') AS student_handle, a.time_slot_id, a.scheduled_at, a.status
		FROM appointments a
		JOIN student_profiles sp ON sp.user_id = a.student_id
		WHERE a.counsellor_id = $1
		ORDER BY a.scheduled_at DESC`
	var views []dto.AppointmentView
	if err := r.db.SelectContext(ctx, &views, query, counsellorID); err != nil {
		return nil, fmt.Errorf("list counsellor appointments: %w", err)
	}
	return views, nil
}
