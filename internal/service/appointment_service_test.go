package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type apptRepoStub struct {
	appointments map[string]models.Appointment
	hasScheduled bool
	created      []*models.Appointment
	createErr    error
	statuses     map[string]models.AppointmentStatus
}

func (s *apptRepoStub) Create(ctx context.Context, appt *models.Appointment) error {
	if s.createErr != nil {
		return s.createErr
	}
	appt.ID = "appt-1"
	s.created = append(s.created, appt)
	return nil
}

func (s *apptRepoStub) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	if a, ok := s.appointments[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (s *apptRepoStub) HasScheduled(ctx context.Context, studentID string, from time.Time) (bool, error) {
	return s.hasScheduled, nil
}

func (s *apptRepoStub) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	if s.statuses == nil {
		s.statuses = make(map[string]models.AppointmentStatus)
	}
	s.statuses[id] = status
	return nil
}

func (s *apptRepoStub) ListForStudent(ctx context.Context, studentID string) ([]dto.AppointmentView, error) {
	return nil, nil
}

func (s *apptRepoStub) ListForCounsellor(ctx context.Context, counsellorID string) ([]dto.AppointmentView, error) {
	return nil, nil
}

type slotLookupStub struct {
	slots map[string]models.TimeSlot
}

func (s *slotLookupStub) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	if slot, ok := s.slots[id]; ok {
		return &slot, nil
	}
	return nil, sql.ErrNoRows
}

func nextWeekday(day time.Weekday) time.Time {
	ts := time.Now().UTC().AddDate(0, 0, 1)
	for ts.Weekday() != day {
		ts = ts.AddDate(0, 0, 1)
	}
	return ts
}

func newBookingFixture() (*apptRepoStub, *slotLookupStub, dto.BookAppointmentRequest) {
	date := nextWeekday(time.Monday)
	appts := &apptRepoStub{appointments: map[string]models.Appointment{}}
	slots := &slotLookupStub{slots: map[string]models.TimeSlot{
		"slot-1": {ID: "slot-1", CounsellorID: "coun-1", DayOfWeek: int(time.Monday), StartTime: "10:00", EndTime: "11:00", Available: true},
	}}
	req := dto.BookAppointmentRequest{CounsellorID: "coun-1", TimeSlotID: "slot-1", AppointmentDate: date}
	return appts, slots, req
}

func TestAppointmentServiceBook(t *testing.T) {
	appts, slots, req := newBookingFixture()
	svc := NewAppointmentService(appts, slots, validator.New(), nil)

	appt, err := svc.Book(context.Background(), "student-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentScheduled, appt.Status)
	assert.Equal(t, "student-1", appt.StudentID)
	require.Len(t, appts.created, 1)
}

func TestAppointmentServiceBookRejectsSecondScheduled(t *testing.T) {
	appts, slots, req := newBookingFixture()
	appts.hasScheduled = true
	svc := NewAppointmentService(appts, slots, validator.New(), nil)

	_, err := svc.Book(context.Background(), "student-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflictingAppointment.Code, appErrors.FromError(err).Code)
	assert.Empty(t, appts.created)
}

func TestAppointmentServiceBookSurfacesConstraintRace(t *testing.T) {
	appts, slots, req := newBookingFixture()
	appts.createErr = appErrors.ErrConflictingAppointment
	svc := NewAppointmentService(appts, slots, validator.New(), nil)

	_, err := svc.Book(context.Background(), "student-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflictingAppointment.Code, appErrors.FromError(err).Code)
}

func TestAppointmentServiceBookRejectsPastDate(t *testing.T) {
	appts, slots, req := newBookingFixture()
	req.AppointmentDate = time.Now().UTC().Add(-time.Hour)
	svc := NewAppointmentService(appts, slots, validator.New(), nil)

	_, err := svc.Book(context.Background(), "student-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAppointmentServiceBookRejectsWrongWeekday(t *testing.T) {
	appts, slots, req := newBookingFixture()
	req.AppointmentDate = nextWeekday(time.Tuesday)
	svc := NewAppointmentService(appts, slots, validator.New(), nil)

	_, err := svc.Book(context.Background(), "student-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAppointmentServiceBookRejectsForeignSlot(t *testing.T) {
	appts, slots, req := newBookingFixture()
	req.CounsellorID = "coun-2"
	svc := NewAppointmentService(appts, slots, validator.New(), nil)

	_, err := svc.Book(context.Background(), "student-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAppointmentServiceCancelByOwner(t *testing.T) {
	appts, slots, _ := newBookingFixture()
	appts.appointments["appt-1"] = models.Appointment{ID: "appt-1", StudentID: "student-1", Status: models.AppointmentScheduled}
	svc := NewAppointmentService(appts, slots, validator.New(), nil)

	err := svc.Cancel(context.Background(), "student-1", models.RoleStudent, "appt-1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCancelled, appts.statuses["appt-1"])
}

func TestAppointmentServiceCancelByForeignStudent(t *testing.T) {
	appts, slots, _ := newBookingFixture()
	appts.appointments["appt-1"] = models.Appointment{ID: "appt-1", StudentID: "student-1", Status: models.AppointmentScheduled}
	svc := NewAppointmentService(appts, slots, validator.New(), nil)

	err := svc.Cancel(context.Background(), "student-2", models.RoleStudent, "appt-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAppointmentServiceCancelByManagement(t *testing.T) {
	appts, slots, _ := newBookingFixture()
	appts.appointments["appt-1"] = models.Appointment{ID: "appt-1", StudentID: "student-1", Status: models.AppointmentScheduled}
	svc := NewAppointmentService(appts, slots, validator.New(), nil)

	err := svc.Cancel(context.Background(), "mgmt-1", models.RoleManagement, "appt-1")
	require.NoError(t, err)
}

func TestAppointmentServiceCancelNonScheduled(t *testing.T) {
	appts, slots, _ := newBookingFixture()
	appts.appointments["appt-1"] = models.Appointment{ID: "appt-1", StudentID: "student-1", Status: models.AppointmentCompleted}
	svc := NewAppointmentService(appts, slots, validator.New(), nil)

	err := svc.Cancel(context.Background(), "student-1", models.RoleStudent, "appt-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAppointmentServiceRequestReschedule(t *testing.T) {
	appts, slots, _ := newBookingFixture()
	appts.appointments["appt-1"] = models.Appointment{ID: "appt-1", StudentID: "student-1", Status: models.AppointmentScheduled}
	svc := NewAppointmentService(appts, slots, validator.New(), nil)

	err := svc.RequestReschedule(context.Background(), "student-1", "appt-1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentRescheduleRequested, appts.statuses["appt-1"])
}
