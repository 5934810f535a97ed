package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campuswell/counsel-api/internal/models"
)

// CounsellorDirectoryEntry is a directory row with derived availability.
type CounsellorDirectoryEntry struct {
	UserID         string `db:"user_id"`
	DisplayName    string `db:"display_name"`
	Specialization string `db:"specialization"`
	Busy           bool   `db:"busy"`
}

// CounsellorRepository provides database access for counsellor profiles.
type CounsellorRepository struct {
	db *sqlx.DB
}

// NewCounsellorRepository creates a new instance of CounsellorRepository.
func NewCounsellorRepository(db *sqlx.DB) *CounsellorRepository {
	return &CounsellorRepository{db: db}
}

// Create inserts a counsellor profile.
func (r *CounsellorRepository) Create(ctx context.Context, profile *models.CounsellorProfile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	const query = `INSERT INTO counsellor_profiles (user_id, display_name, specialization, created_at, updated_at) VALUES (:user_id, :display_name, :specialization, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create counsellor profile: %w", err)
	}
	return nil
}

// FindByUserID returns the profile for a counsellor user.
func (r *CounsellorRepository) FindByUserID(ctx context.Context, userID string) (*models.CounsellorProfile, error) {
	const query = `SELECT user_id, display_name, specialization, created_at, updated_at FROM counsellor_profiles WHERE user_id = $1 LIMIT 1`
	var profile models.CounsellorProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find counsellor profile: %w", err)
	}
	return &profile, nil
}

// Directory lists active counsellors with availability derived from open
// sessions rather than a stored flag.
func (r *CounsellorRepository) Directory(ctx context.Context) ([]CounsellorDirectoryEntry, error) {
	const query = `SELECT cp.user_id, cp.display_name, cp.specialization,
			EXISTS (SELECT 1 FROM sessions s WHERE s.counsellor_id = cp.user_id AND s.ended_at IS NULL) AS busy
		FROM counsellor_profiles cp
		JOIN users u ON u.id = cp.user_id
		WHERE u.active = TRUE
		ORDER BY cp.display_name`
	var entries []CounsellorDirectoryEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list counsellor directory: %w", err)
	}
	return entries, nil
}
