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

// SessionRepository provides database access for realised sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session at QR check-in. appointment_id is unique, so a
// second check-in against the same booking is rejected by the store.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `INSERT INTO sessions (id, appointment_id, student_id, counsellor_id, started_at, ended_at, qr_scanned_in_at, qr_scanned_out_at, notes, severity, created_at, updated_at) VALUES (:id, :appointment_id, :student_id, :counsellor_id, :started_at, :ended_at, :qr_scanned_in_at, :qr_scanned_out_at, :notes, :severity, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		if isUniqueViolation(err, constraintOneSessionPerBooking) {
			return appErrors.Clone(appErrors.ErrConflict, "appointment already checked in")
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindByID returns a session by identifier.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	const query = `SELECT id, appointment_id, student_id, counsellor_id, started_at, ended_at, qr_scanned_in_at, qr_scanned_out_at, notes, severity, created_at, updated_at FROM sessions WHERE id = $1 LIMIT 1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// HasOpenByCounsellor reports whether the counsellor has an unfinished
// session. This existence check is the derived availability flag.
func (r *SessionRepository) HasOpenByCounsellor(ctx context.Context, counsellorID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM sessions WHERE counsellor_id = $1 AND ended_at IS NULL)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, counsellorID); err != nil {
		return false, fmt.Errorf("check open session: %w", err)
	}
	return exists, nil
}

// End closes a session exactly once: the WHERE clause refuses sessions that
// already carry an end timestamp.
func (r *SessionRepository) End(ctx context.Context, id string, endedAt time.Time, notes string, severity models.Severity) error {
	const query = `UPDATE sessions
		SET ended_at = $2, qr_scanned_out_at = $2, notes = $3, severity = $4, updated_at = $2
		WHERE id = $1 AND ended_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, endedAt, notes, severity)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if affected == 0 {
		return appErrors.ErrSessionAlreadyEnded
	}
	return nil
}

// ListForStudent returns the student's sessions with counsellor names.
func (r *SessionRepository) ListForStudent(ctx context.Context, studentID string) ([]dto.SessionView, error) {
	const query = `SELECT s.id, s.appointment_id, '' AS student_handle, cp.display_name AS counsellor_name, s.started_at, s.ended_at, s.severity, s.notes
		FROM sessions s
		JOIN counsellor_profiles cp ON cp.user_id = s.counsellor_id
		WHERE s.student_id = $1
		ORDER BY s.started_at DESC`
	var views []dto.SessionView
	if err := r.db.SelectContext(ctx, &views, query, studentID); err != nil {
		return nil, fmt.Errorf("list student sessions: %w", err)
	}
	return views, nil
}

// ListForCounsellor returns the counsellor's sessions. Students appear only
// as their anonymous handle.
func (r *SessionRepository) ListForCounsellor(ctx context.Context, counsellorID string) ([]dto.SessionView, error) {
	const query = `SELECT s.id, s.appointment_id, COALESCE(sp.anon_handle, '') AS student_handle, '' AS counsellor_name, s.started_at, s.ended_at, s.severity, s.notes
		FROM sessions s
		JOIN student_profiles sp ON sp.user_id = s.student_id
		WHERE s.counsellor_id = $1
		ORDER BY s.started_at DESC`
	var views []dto.SessionView
	if err := r.db.SelectContext(ctx, &views, query, counsellorID); err != nil {
		return nil, fmt.Errorf("list counsellor sessions: %w", err)
	}
	return views, nil
}
