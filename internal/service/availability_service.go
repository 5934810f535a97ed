package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type timeSlotRepository interface {
	Create(ctx context.Context, slot *models.TimeSlot) error
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	Exists(ctx context.Context, counsellorID string, dayOfWeek int, startTime string) (bool, error)
	ListAvailable(ctx context.Context, counsellorID string) ([]models.TimeSlot, error)
	Update(ctx context.Context, slot *models.TimeSlot) error
	Delete(ctx context.Context, id string) error
}

var timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// AvailabilityService manages counsellor-declared recurring time slots.
type AvailabilityService struct {
	slots     timeSlotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(slots timeSlotRepository, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{slots: slots, validator: validate, logger: logger}
}

// CreateSlot declares a new availability window for the counsellor. The
// pre-check gives a friendly error; the unique constraint is the guarantee.
func (s *AvailabilityService) CreateSlot(ctx context.Context, counsellorID string, req dto.CreateSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	if err := validateSlotTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	taken, err := s.slots.Exists(ctx, counsellorID, req.DayOfWeek, req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot")
	}
	if taken {
		return nil, appErrors.ErrDuplicateSlot
	}

	slot := &models.TimeSlot{
		CounsellorID: counsellorID,
		DayOfWeek:    req.DayOfWeek,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Available:    true,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot")
	}
	return slot, nil
}

// ListSlots returns a counsellor's bookable slots.
func (s *AvailabilityService) ListSlots(ctx context.Context, counsellorID string) ([]models.TimeSlot, error) {
	slots, err := s.slots.ListAvailable(ctx, counsellorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	if slots == nil {
		slots = []models.TimeSlot{}
	}
	return slots, nil
}

// UpdateSlot edits or toggles a slot owned by the counsellor.
func (s *AvailabilityService) UpdateSlot(ctx context.Context, counsellorID, slotID string, req dto.UpdateSlotRequest) (*models.TimeSlot, error) {
	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	if slot.CounsellorID != counsellorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "slot belongs to another counsellor")
	}

	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if req.StartTime != nil || req.EndTime != nil {
		if err := validateSlotTimes(slot.StartTime, slot.EndTime); err != nil {
			return nil, err
		}
	}
	if req.Available != nil {
		slot.Available = *req.Available
	}

	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update slot")
	}
	return slot, nil
}

// DeleteSlot removes a slot owned by the counsellor.
func (s *AvailabilityService) DeleteSlot(ctx context.Context, counsellorID, slotID string) error {
	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	if slot.CounsellorID != counsellorID {
		return appErrors.Clone(appErrors.ErrForbidden, "slot belongs to another counsellor")
	}
	if err := s.slots.Delete(ctx, slotID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot")
	}
	return nil
}

func validateSlotTimes(start, end string) error {
	if !timeOfDayPattern.MatchString(start) || !timeOfDayPattern.MatchString(end) {
		return appErrors.Clone(appErrors.ErrValidation, "times must use HH:MM 24-hour format")
	}
	if start >= end {
		return appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}
	return nil
}
