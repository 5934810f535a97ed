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

// FeedbackRepository provides database access for session feedback.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository creates a new instance of FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts feedback. The session_id unique constraint guarantees at
// most one feedback per session regardless of racing pre-checks.
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO session_feedback (id, session_id, student_id, rating, comment, was_helpful, would_recommend, created_at) VALUES (:id, :session_id, :student_id, :rating, :comment, :was_helpful, :would_recommend, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fb); err != nil {
		if isUniqueViolation(err, constraintOneFeedbackPerSess) {
			return appErrors.ErrDuplicateFeedback
		}
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// FindBySession returns the feedback attached to a session, if any.
func (r *FeedbackRepository) FindBySession(ctx context.Context, sessionID string) (*models.Feedback, error) {
	const query = `SELECT id, session_id, student_id, rating, comment, was_helpful, would_recommend, created_at FROM session_feedback WHERE session_id = $1 LIMIT 1`
	var fb models.Feedback
	if err := r.db.GetContext(ctx, &fb, query, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find feedback: %w", err)
	}
	return &fb, nil
}
