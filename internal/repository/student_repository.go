package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

// StudentRepository provides database access for student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts an empty profile for a new student account.
func (r *StudentRepository) Create(ctx context.Context, profile *models.StudentProfile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	const query = `INSERT INTO student_profiles (user_id, anon_handle, qr_secret, year, department, onboarded, onboarded_at, created_at, updated_at) VALUES (:user_id, :anon_handle, :qr_secret, :year, :department, :onboarded, :onboarded_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create student profile: %w", err)
	}
	return nil
}

// FindByUserID returns the profile for a student user.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	const query = `SELECT user_id, anon_handle, qr_secret, year, department, onboarded, onboarded_at, created_at, updated_at FROM student_profiles WHERE user_id = $1 LIMIT 1`
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student profile: %w", err)
	}
	return &profile, nil
}

// HandleExists reports whether an anonymous handle is already taken.
func (r *StudentRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM student_profiles WHERE anon_handle = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, handle); err != nil {
		return false, fmt.Errorf("check handle: %w", err)
	}
	return exists, nil
}

// SetIdentity binds the anonymous handle, QR secret, year and department to
// a profile exactly once. The WHERE clause refuses profiles that already
// hold an identity, making this the sole mutation point for handle/secret.
func (r *StudentRepository) SetIdentity(ctx context.Context, userID, handle, secret string, year int, department string, at time.Time) error {
	const query = `UPDATE student_profiles
		SET anon_handle = $2, qr_secret = $3, year = $4, department = $5, onboarded = TRUE, onboarded_at = $6, updated_at = $6
		WHERE user_id = $1 AND anon_handle IS NULL`
	res, err := r.db.ExecContext(ctx, query, userID, handle, secret, year, department, at)
	if err != nil {
		if isUniqueViolation(err, constraintStudentHandle) {
			return appErrors.Clone(appErrors.ErrConflict, "handle already taken")
		}
		return fmt.Errorf("set student identity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set student identity: %w", err)
	}
	if affected == 0 {
		return appErrors.ErrAlreadyOnboarded
	}
	return nil
}
