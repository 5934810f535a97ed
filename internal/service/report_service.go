package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
	"github.com/campuswell/counsel-api/pkg/export"
	"github.com/campuswell/counsel-api/pkg/jobs"
	"github.com/campuswell/counsel-api/pkg/storage"
)

type reportRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) error
	Finish(ctx context.Context, id, resultURL string, at time.Time) error
	Fail(ctx context.Context, id, message string, at time.Time) error
	ListPending(ctx context.Context) ([]models.ReportJob, error)
}

type reportAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ReportConfig configures asynchronous report generation.
type ReportConfig struct {
	StorageDir      string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
	WorkerCount     int
	WorkerRetries   int
}

// ReportService generates management reports asynchronously: requests are
// persisted, queued, rendered to CSV or PDF on disk and exposed through
// time-limited signed download URLs.
type ReportService struct {
	repo      reportRepository
	audit     reportAuditRepository
	analytics *AnalyticsService
	queue     *jobs.Queue
	storage   *storage.LocalStorage
	signer    *storage.SignedURLSigner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	config    ReportConfig
}

// NewReportService constructs a ReportService and its worker queue. Call
// Start before enqueueing.
func NewReportService(repo reportRepository, audit reportAuditRepository, analytics *AnalyticsService, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger, config ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportService{
		repo:      repo,
		audit:     audit,
		analytics: analytics,
		storage:   store,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		config:    config,
	}
	s.queue = jobs.NewQueue("reports", s.process, jobs.QueueConfig{
		Workers:    config.WorkerCount,
		MaxRetries: config.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool, requeues jobs interrupted by a restart and
// begins the periodic export cleanup.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	s.recoverPending(ctx)
	go s.cleanupLoop(ctx)
}

// Stop drains the worker pool.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Enqueue persists and queues a new report job.
func (s *ReportService) Enqueue(ctx context.Context, createdBy string, req dto.ReportRequest) (*dto.ReportJobResponse, error) {
	switch req.Type {
	case models.ReportTypeDepartment, models.ReportTypeYear, models.ReportTypeSeverity, models.ReportTypeVolume:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report type")
	}
	switch req.Format {
	case models.ReportFormatCSV, models.ReportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	job := &models.ReportJob{
		Type:      req.Type,
		Params:    models.ReportJobParams{Format: req.Format, Months: req.Months},
		Status:    models.ReportStatusQueued,
		CreatedBy: createdBy,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist report job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		if ferr := s.repo.Fail(ctx, job.ID, "queue unavailable", time.Now().UTC()); ferr != nil {
			s.logger.Warn("failed to mark report job failed", zap.Error(ferr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue report job")
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &createdBy,
		Action:     models.AuditActionReportCreated,
		Resource:   "report_job",
		ResourceID: &job.ID,
		NewValues:  []byte(fmt.Sprintf(`{"type":%q,"format":%q}`, job.Type, req.Format)),
	}); err != nil {
		s.logger.Warn("failed to record report audit log", zap.Error(err))
	}

	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status}, nil
}

// Status returns the current state of a report job.
func (s *ReportService) Status(ctx context.Context, jobID string) (*dto.ReportStatusResponse, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	return &dto.ReportStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		ResultURL: job.ResultURL,
		Error:     job.ErrorMessage,
	}, nil
}

// OpenDownload validates a signed token and opens the referenced export.
func (s *ReportService) OpenDownload(ctx context.Context, token string) (*os.File, string, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	if _, err := s.repo.FindByID(ctx, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report file no longer available")
	}
	return file, relPath, nil
}

func (s *ReportService) process(ctx context.Context, job jobs.Job) error {
	record, err := s.repo.FindByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", job.ID, err)
	}
	if record.Status == models.ReportStatusFinished {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, record.ID, models.ReportStatusProcessing); err != nil {
		return fmt.Errorf("mark report job processing: %w", err)
	}

	dataset, title, err := s.buildDataset(ctx, record)
	if err != nil {
		s.failJob(ctx, record.ID, err)
		return nil
	}

	var payload []byte
	ext := "csv"
	switch record.Params.Format {
	case models.ReportFormatPDF:
		ext = "pdf"
		payload, err = s.pdf.Render(dataset, title)
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.failJob(ctx, record.ID, err)
		return nil
	}

	filename := fmt.Sprintf("%s/%s.%s", record.CreatedAt.Format("2006-01"), record.ID, ext)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.failJob(ctx, record.ID, err)
		return nil
	}

	token, _, err := s.signer.Generate(record.ID, relPath)
	if err != nil {
		s.failJob(ctx, record.ID, err)
		return nil
	}

	if err := s.repo.Finish(ctx, record.ID, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("finish report job: %w", err)
	}
	s.logger.Info("report job finished", zap.String("job_id", record.ID), zap.String("type", string(record.Type)))
	return nil
}

func (s *ReportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeDepartment:
		rows, err := s.analytics.DepartmentSummary(ctx)
		if err != nil {
			return export.Dataset{}, "", err
		}
		ds := export.Dataset{Headers: []string{"Department", "Sessions", "Students"}}
		for _, r := range rows {
			ds.Rows = append(ds.Rows, map[string]string{
				"Department": r.Department,
				"Sessions":   strconv.Itoa(r.Sessions),
				"Students":   strconv.Itoa(r.Students),
			})
		}
		return ds, "Sessions by Department", nil
	case models.ReportTypeYear:
		rows, err := s.analytics.YearSummary(ctx)
		if err != nil {
			return export.Dataset{}, "", err
		}
		ds := export.Dataset{Headers: []string{"Year", "Sessions", "Students"}}
		for _, r := range rows {
			ds.Rows = append(ds.Rows, map[string]string{
				"Year":     strconv.Itoa(r.Year),
				"Sessions": strconv.Itoa(r.Sessions),
				"Students": strconv.Itoa(r.Students),
			})
		}
		return ds, "Sessions by Academic Year", nil
	case models.ReportTypeSeverity:
		dist, err := s.analytics.SeverityDistribution(ctx)
		if err != nil {
			return export.Dataset{}, "", err
		}
		ds := export.Dataset{Headers: []string{"Severity", "Count"}}
		for _, b := range dist.Buckets {
			ds.Rows = append(ds.Rows, map[string]string{
				"Severity": string(b.Severity),
				"Count":    strconv.Itoa(b.Count),
			})
		}
		return ds, "Severity Distribution", nil
	case models.ReportTypeVolume:
		vol, err := s.analytics.Volume(ctx, job.Params.Months)
		if err != nil {
			return export.Dataset{}, "", err
		}
		ds := export.Dataset{Headers: []string{"Month", "Sessions"}}
		for _, b := range vol.Months {
			ds.Rows = append(ds.Rows, map[string]string{
				"Month":    b.Month,
				"Sessions": strconv.Itoa(b.Sessions),
			})
		}
		return ds, "Monthly Session Volume", nil
	default:
		return export.Dataset{}, "", fmt.Errorf("unknown report type %q", job.Type)
	}
}

func (s *ReportService) failJob(ctx context.Context, jobID string, cause error) {
	s.logger.Error("report job failed", zap.String("job_id", jobID), zap.Error(cause))
	if err := s.repo.Fail(ctx, jobID, cause.Error(), time.Now().UTC()); err != nil {
		s.logger.Warn("failed to persist report job failure", zap.Error(err))
	}
}

func (s *ReportService) recoverPending(ctx context.Context) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		s.logger.Warn("failed to list pending report jobs", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
			s.logger.Warn("failed to requeue report job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		s.logger.Info("requeued interrupted report jobs", zap.Int("count", len(pending)))
	}
}

func (s *ReportService) cleanupLoop(ctx context.Context) {
	interval := s.config.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ttl := s.config.SignedURLTTL
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			deleted, err := s.storage.CleanupOlderThan(ttl)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("removed expired exports", zap.Int("count", len(deleted)))
			}
		}
	}
}
