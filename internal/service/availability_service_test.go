package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type slotRepoStub struct {
	slots     map[string]models.TimeSlot
	exists    bool
	createErr error
	updated   []*models.TimeSlot
	deleted   []string
}

func (s *slotRepoStub) Create(ctx context.Context, slot *models.TimeSlot) error {
	if s.createErr != nil {
		return s.createErr
	}
	slot.ID = "slot-1"
	return nil
}

func (s *slotRepoStub) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	if slot, ok := s.slots[id]; ok {
		return &slot, nil
	}
	return nil, sql.ErrNoRows
}

func (s *slotRepoStub) Exists(ctx context.Context, counsellorID string, dayOfWeek int, startTime string) (bool, error) {
	return s.exists, nil
}

func (s *slotRepoStub) ListAvailable(ctx context.Context, counsellorID string) ([]models.TimeSlot, error) {
	return nil, nil
}

func (s *slotRepoStub) Update(ctx context.Context, slot *models.TimeSlot) error {
	s.updated = append(s.updated, slot)
	return nil
}

func (s *slotRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func TestAvailabilityServiceCreateSlot(t *testing.T) {
	repo := &slotRepoStub{}
	svc := NewAvailabilityService(repo, validator.New(), nil)

	slot, err := svc.CreateSlot(context.Background(), "coun-1", dto.CreateSlotRequest{
		DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "coun-1", slot.CounsellorID)
	assert.True(t, slot.Available)
}

func TestAvailabilityServiceCreateSlotDuplicate(t *testing.T) {
	repo := &slotRepoStub{exists: true}
	svc := NewAvailabilityService(repo, validator.New(), nil)

	_, err := svc.CreateSlot(context.Background(), "coun-1", dto.CreateSlotRequest{
		DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateSlot.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceCreateSlotSurfacesConstraintRace(t *testing.T) {
	repo := &slotRepoStub{createErr: appErrors.ErrDuplicateSlot}
	svc := NewAvailabilityService(repo, validator.New(), nil)

	_, err := svc.CreateSlot(context.Background(), "coun-1", dto.CreateSlotRequest{
		DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateSlot.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceCreateSlotRejectsBadTimeFormat(t *testing.T) {
	svc := NewAvailabilityService(&slotRepoStub{}, validator.New(), nil)

	_, err := svc.CreateSlot(context.Background(), "coun-1", dto.CreateSlotRequest{
		DayOfWeek: 1, StartTime: "25:00", EndTime: "26:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceCreateSlotRejectsInvertedTimes(t *testing.T) {
	svc := NewAvailabilityService(&slotRepoStub{}, validator.New(), nil)

	_, err := svc.CreateSlot(context.Background(), "coun-1", dto.CreateSlotRequest{
		DayOfWeek: 1, StartTime: "11:00", EndTime: "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceUpdateSlotForeignOwner(t *testing.T) {
	repo := &slotRepoStub{slots: map[string]models.TimeSlot{
		"slot-1": {ID: "slot-1", CounsellorID: "coun-1", StartTime: "10:00", EndTime: "11:00"},
	}}
	svc := NewAvailabilityService(repo, validator.New(), nil)

	avail := false
	_, err := svc.UpdateSlot(context.Background(), "coun-2", "slot-1", dto.UpdateSlotRequest{Available: &avail})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}

func TestAvailabilityServiceUpdateSlotToggleAvailability(t *testing.T) {
	repo := &slotRepoStub{slots: map[string]models.TimeSlot{
		"slot-1": {ID: "slot-1", CounsellorID: "coun-1", StartTime: "10:00", EndTime: "11:00", Available: true},
	}}
	svc := NewAvailabilityService(repo, validator.New(), nil)

	avail := false
	slot, err := svc.UpdateSlot(context.Background(), "coun-1", "slot-1", dto.UpdateSlotRequest{Available: &avail})
	require.NoError(t, err)
	assert.False(t, slot.Available)
	require.Len(t, repo.updated, 1)
}

func TestAvailabilityServiceUpdateSlotRevalidatesTimes(t *testing.T) {
	repo := &slotRepoStub{slots: map[string]models.TimeSlot{
		"slot-1": {ID: "slot-1", CounsellorID: "coun-1", StartTime: "10:00", EndTime: "11:00"},
	}}
	svc := NewAvailabilityService(repo, validator.New(), nil)

	start := "12:00"
	_, err := svc.UpdateSlot(context.Background(), "coun-1", "slot-1", dto.UpdateSlotRequest{StartTime: &start})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceDeleteSlot(t *testing.T) {
	repo := &slotRepoStub{slots: map[string]models.TimeSlot{
		"slot-1": {ID: "slot-1", CounsellorID: "coun-1"},
	}}
	svc := NewAvailabilityService(repo, validator.New(), nil)

	require.NoError(t, svc.DeleteSlot(context.Background(), "coun-1", "slot-1"))
	assert.Equal(t, []string{"slot-1"}, repo.deleted)

	err := svc.DeleteSlot(context.Background(), "coun-2", "slot-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceDeleteSlotNotFound(t *testing.T) {
	svc := NewAvailabilityService(&slotRepoStub{slots: map[string]models.TimeSlot{}}, validator.New(), nil)

	err := svc.DeleteSlot(context.Background(), "coun-1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
