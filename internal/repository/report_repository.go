package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuswell/counsel-api/internal/models"
)

// ReportRepository persists background report job metadata.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a queued job.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO report_jobs (id, type, params, status, result_url, created_by, created_at, finished_at, error_message) VALUES (:id, :type, :params, :status, :result_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// FindByID returns a job by identifier.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	const query = `SELECT id, type, params, status, result_url, created_by, created_at, finished_at, error_message FROM report_jobs WHERE id = $1 LIMIT 1`
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find report job: %w", err)
	}
	return &job, nil
}

// UpdateStatus transitions a job's lifecycle state.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) error {
	const query = `UPDATE report_jobs SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update report job status: %w", err)
	}
	return nil
}

// Finish marks a job as finished with its signed download URL.
func (r *ReportRepository) Finish(ctx context.Context, id, resultURL string, at time.Time) error {
	const query = `UPDATE report_jobs SET status = $2, result_url = $3, finished_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ReportStatusFinished, resultURL, at); err != nil {
		return fmt.Errorf("finish report job: %w", err)
	}
	return nil
}

// Fail marks a job as failed with a message.
func (r *ReportRepository) Fail(ctx context.Context, id, message string, at time.Time) error {
	const query = `UPDATE report_jobs SET status = $2, error_message = $3, finished_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ReportStatusFailed, message, at); err != nil {
		return fmt.Errorf("fail report job: %w", err)
	}
	return nil
}

// ListPending returns jobs that never finished, for recovery on restart.
func (r *ReportRepository) ListPending(ctx context.Context) ([]models.ReportJob, error) {
	const query = `SELECT id, type, params, status, result_url, created_by, created_at, finished_at, error_message FROM report_jobs WHERE status IN ($1, $2) ORDER BY created_at`
	var jobs []models.ReportJob
	if err := r.db.SelectContext(ctx, &jobs, query, models.ReportStatusQueued, models.ReportStatusProcessing); err != nil {
		return nil, fmt.Errorf("list pending report jobs: %w", err)
	}
	return jobs, nil
}
