package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type appointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	HasScheduled(ctx context.Context, studentID string, from time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error
	ListForStudent(ctx context.Context, studentID string) ([]dto.AppointmentView, error)
	ListForCounsellor(ctx context.Context, counsellorID string) ([]dto.AppointmentView, error)
}

type appointmentSlotRepository interface {
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
}

// AppointmentService manages the booking lifecycle up to check-in.
type AppointmentService struct {
	appointments appointmentRepository
	slots        appointmentSlotRepository
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewAppointmentService constructs an AppointmentService.
func NewAppointmentService(appointments appointmentRepository, slots appointmentSlotRepository, validate *validator.Validate, logger *zap.Logger) *AppointmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{
		appointments: appointments,
		slots:        slots,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Book creates a scheduled appointment for the student. A student may hold at
// most one scheduled appointment at a time; the pre-check returns the
// friendly conflict and the partial unique index catches the race.
func (s *AppointmentService) Book(ctx context.Context, studentID string, req dto.BookAppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	now := s.now()
	if !req.AppointmentDate.After(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "appointment date must be in the future")
	}

	slot, err := s.slots.FindByID(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	if slot.CounsellorID != req.CounsellorID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time slot does not belong to the counsellor")
	}
	if !slot.Available {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time slot is not available")
	}
	if int(req.AppointmentDate.Weekday()) != slot.DayOfWeek {
		return nil, appErrors.Clone(appErrors.ErrValidation, "appointment date does not fall on the slot's weekday")
	}

	busy, err := s.appointments.HasScheduled(ctx, studentID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing bookings")
	}
	if busy {
		return nil, appErrors.ErrConflictingAppointment
	}

	appt := &models.Appointment{
		StudentID:    studentID,
		CounsellorID: req.CounsellorID,
		TimeSlotID:   req.TimeSlotID,
		ScheduledAt:  req.AppointmentDate.UTC(),
		Status:       models.AppointmentScheduled,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appointment")
	}
	return appt, nil
}

// Cancel cancels a scheduled appointment. Students may cancel their own;
// management may cancel any.
func (s *AppointmentService) Cancel(ctx context.Context, actorID string, actorRole models.UserRole, appointmentID string) error {
	appt, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}

	switch actorRole {
	case models.RoleManagement:
	case models.RoleStudent:
		if appt.StudentID != actorID {
			return appErrors.Clone(appErrors.ErrForbidden, "appointment belongs to another student")
		}
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role may not cancel appointments")
	}

	if appt.Status != models.AppointmentScheduled {
		return appErrors.Clone(appErrors.ErrConflict, "only scheduled appointments can be cancelled")
	}

	if err := s.appointments.UpdateStatus(ctx, appointmentID, models.AppointmentCancelled); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel appointment")
	}
	return nil
}

// RequestReschedule flags a scheduled appointment for rescheduling.
func (s *AppointmentService) RequestReschedule(ctx context.Context, studentID, appointmentID string) error {
	appt, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	if appt.StudentID != studentID {
		return appErrors.Clone(appErrors.ErrForbidden, "appointment belongs to another student")
	}
	if appt.Status != models.AppointmentScheduled {
		return appErrors.Clone(appErrors.ErrConflict, "only scheduled appointments can be rescheduled")
	}
	if err := s.appointments.UpdateStatus(ctx, appointmentID, models.AppointmentRescheduleRequested); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment")
	}
	return nil
}

// ListForStudent returns the student's own bookings.
func (s *AppointmentService) ListForStudent(ctx context.Context, studentID string) ([]dto.AppointmentView, error) {
	views, err := s.appointments.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	if views == nil {
		views = []dto.AppointmentView{}
	}
	return views, nil
}

// ListForCounsellor returns the counsellor's bookings, students identified
// only by their anonymous handle.
func (s *AppointmentService) ListForCounsellor(ctx context.Context, counsellorID string) ([]dto.AppointmentView, error) {
	views, err := s.appointments.ListForCounsellor(ctx, counsellorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	if views == nil {
		views = []dto.AppointmentView{}
	}
	return views, nil
}
