package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type analyticsRepository interface {
	DepartmentSummary(ctx context.Context) ([]models.DepartmentSummary, error)
	YearSummary(ctx context.Context) ([]models.YearSummary, error)
	SeverityCounts(ctx context.Context) ([]models.SeverityBucket, error)
	MonthlyVolume(ctx context.Context, since time.Time) ([]models.VolumeBucket, error)
}

const (
	cacheKeyDepartments = "analytics:departments"
	cacheKeyYears       = "analytics:years"
	cacheKeySeverity    = "analytics:severity"
	cacheKeyVolume      = "analytics:volume:%d"
	defaultVolumeMonths = 6
	maxVolumeMonths     = 24
)

// AnalyticsService serves aggregated, anonymity-preserving rollups over
// completed sessions. Rollups never expose individual students.
type AnalyticsService struct {
	repo     analyticsRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(repo analyticsRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &AnalyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DepartmentSummary returns completed-session counts per department.
func (s *AnalyticsService) DepartmentSummary(ctx context.Context) ([]models.DepartmentSummary, error) {
	var cached []models.DepartmentSummary
	if hit, _ := s.cache.Get(ctx, cacheKeyDepartments, &cached); hit {
		return cached, nil
	}

	rows, err := s.repo.DepartmentSummary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build department summary")
	}
	if rows == nil {
		rows = []models.DepartmentSummary{}
	}
	if err := s.cache.Set(ctx, cacheKeyDepartments, rows, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache department summary", zap.Error(err))
	}
	return rows, nil
}

// YearSummary returns completed-session counts per academic year.
func (s *AnalyticsService) YearSummary(ctx context.Context) ([]models.YearSummary, error) {
	var cached []models.YearSummary
	if hit, _ := s.cache.Get(ctx, cacheKeyYears, &cached); hit {
		return cached, nil
	}

	rows, err := s.repo.YearSummary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build year summary")
	}
	if rows == nil {
		rows = []models.YearSummary{}
	}
	if err := s.cache.Set(ctx, cacheKeyYears, rows, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache year summary", zap.Error(err))
	}
	return rows, nil
}

// SeverityDistribution returns the red/yellow/green distribution with every
// bucket present even at zero count.
func (s *AnalyticsService) SeverityDistribution(ctx context.Context) (*dto.SeverityDistributionResponse, error) {
	var cached dto.SeverityDistributionResponse
	if hit, _ := s.cache.Get(ctx, cacheKeySeverity, &cached); hit {
		return &cached, nil
	}

	raw, err := s.repo.SeverityCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build severity distribution")
	}

	counts := make(map[models.Severity]int, len(raw))
	for _, bucket := range raw {
		counts[bucket.Severity] = bucket.Count
	}

	resp := &dto.SeverityDistributionResponse{Buckets: make([]models.SeverityBucket, 0, len(models.Severities))}
	for _, sev := range models.Severities {
		count := counts[sev]
		resp.Buckets = append(resp.Buckets, models.SeverityBucket{Severity: sev, Count: count})
		resp.Total += count
	}

	if err := s.cache.Set(ctx, cacheKeySeverity, resp, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache severity distribution", zap.Error(err))
	}
	return resp, nil
}

// Volume returns per-month completed-session counts for the trailing N
// months, zero-filling months without sessions.
func (s *AnalyticsService) Volume(ctx context.Context, months int) (*dto.VolumeResponse, error) {
	if months <= 0 {
		months = defaultVolumeMonths
	}
	if months > maxVolumeMonths {
		months = maxVolumeMonths
	}

	key := fmt.Sprintf(cacheKeyVolume, months)
	var cached dto.VolumeResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	now := s.now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	raw, err := s.repo.MonthlyVolume(ctx, since)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build volume report")
	}

	counts := make(map[string]int, len(raw))
	for _, bucket := range raw {
		counts[bucket.Month] = bucket.Sessions
	}

	resp := &dto.VolumeResponse{Months: make([]models.VolumeBucket, 0, months)}
	for i := 0; i < months; i++ {
		month := since.AddDate(0, i, 0).Format("2006-01")
		resp.Months = append(resp.Months, models.VolumeBucket{Month: month, Sessions: counts[month]})
	}

	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache volume report", zap.Error(err))
	}
	return resp, nil
}

// InvalidateCache drops all cached analytics payloads.
func (s *AnalyticsService) InvalidateCache(ctx context.Context) error {
	return s.cache.Invalidate(ctx, "analytics:*")
}
