package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type journalRepository interface {
	Create(ctx context.Context, entry *models.JournalEntry) (bool, error)
	List(ctx context.Context, studentID string, filter dto.JournalFilter) ([]models.JournalEntry, int, error)
}

// JournalService manages private student mood and journal entries.
type JournalService struct {
	journals  journalRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJournalService constructs a JournalService.
func NewJournalService(journals journalRepository, validate *validator.Validate, logger *zap.Logger) *JournalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalService{journals: journals, validator: validate, logger: logger}
}

// Log records a mood or journal entry. Replays of the same client key return
// the already-stored entry; the bool reports whether a new row was written.
func (s *JournalService) Log(ctx context.Context, studentID string, req dto.LogJournalRequest) (*models.JournalEntry, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid journal payload")
	}

	kind := models.JournalKind(req.Kind)
	if kind == models.JournalKindMood && (req.Mood == nil || *req.Mood == "") {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "mood entries require a mood value")
	}

	loggedAt := time.Now().UTC()
	if req.LoggedAt != nil {
		loggedAt = req.LoggedAt.UTC()
	}

	entry := &models.JournalEntry{
		StudentID: studentID,
		Kind:      kind,
		Mood:      req.Mood,
		Body:      req.Body,
		ClientKey: req.ClientKey,
		LoggedAt:  loggedAt,
	}
	created, err := s.journals.Create(ctx, entry)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save journal entry")
	}
	return entry, created, nil
}

// List returns the owner's entries with pagination metadata.
func (s *JournalService) List(ctx context.Context, studentID string, filter dto.JournalFilter) ([]models.JournalEntry, *models.Pagination, error) {
	entries, total, err := s.journals.List(ctx, studentID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list journal entries")
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return entries, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}
