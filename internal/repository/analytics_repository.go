package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campuswell/counsel-api/internal/models"
)

// AnalyticsRepository provides read-only rollups over completed sessions.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// DepartmentSummary groups completed sessions by the student's department.
func (r *AnalyticsRepository) DepartmentSummary(ctx context.Context) ([]models.DepartmentSummary, error) {
	const query = `SELECT COALESCE(sp.department, 'unknown') AS department,
			COUNT(s.id) AS sessions,
			COUNT(DISTINCT s.student_id) AS students
		FROM sessions s
		JOIN student_profiles sp ON sp.user_id = s.student_id
		WHERE s.ended_at IS NOT NULL
		GROUP BY sp.department
		ORDER BY sessions DESC`
	var rows []models.DepartmentSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("department summary: %w", err)
	}
	return rows, nil
}

// YearSummary groups completed sessions by the student's academic year.
func (r *AnalyticsRepository) YearSummary(ctx context.Context) ([]models.YearSummary, error) {
	const query = `SELECT COALESCE(sp.year, 0) AS year,
			COUNT(s.id) AS sessions,
			COUNT(DISTINCT s.student_id) AS students
		FROM sessions s
		JOIN student_profiles sp ON sp.user_id = s.student_id
		WHERE s.ended_at IS NOT NULL
		GROUP BY sp.year
		ORDER BY year`
	var rows []models.YearSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("year summary: %w", err)
	}
	return rows, nil
}

// SeverityCounts returns raw per-severity counts for completed sessions.
// Zero-filling of missing buckets happens in the service.
func (r *AnalyticsRepository) SeverityCounts(ctx context.Context) ([]models.SeverityBucket, error) {
	const query = `SELECT severity, COUNT(*) AS count
		FROM sessions
		WHERE ended_at IS NOT NULL AND severity IS NOT NULL
		GROUP BY severity`
	var rows []models.SeverityBucket
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("severity counts: %w", err)
	}
	return rows, nil
}

// MonthlyVolume counts completed sessions per calendar month since the
// provided instant.
func (r *AnalyticsRepository) MonthlyVolume(ctx context.Context, since time.Time) ([]models.VolumeBucket, error) {
	const query = `SELECT TO_CHAR(DATE_TRUNC('month', started_at), 'YYYY-MM') AS month, COUNT(*) AS sessions
		FROM sessions
		WHERE ended_at IS NOT NULL AND started_at >= $1
		GROUP BY 1
		ORDER BY 1`
	var rows []models.VolumeBucket
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("monthly volume: %w", err)
	}
	return rows, nil
}
