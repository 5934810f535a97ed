package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type identityStudentStub struct {
	profiles map[string]models.StudentProfile
	taken    map[string]bool
	setErr   error
}

func (s *identityStudentStub) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	if p, ok := s.profiles[userID]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (s *identityStudentStub) HandleExists(ctx context.Context, handle string) (bool, error) {
	return s.taken[handle], nil
}

func (s *identityStudentStub) SetIdentity(ctx context.Context, userID, handle, secret string, year int, department string, at time.Time) error {
	if s.setErr != nil {
		return s.setErr
	}
	p := s.profiles[userID]
	p.AnonHandle = &handle
	p.QRSecret = &secret
	p.Year = &year
	p.Department = &department
	p.Onboarded = true
	p.OnboardedAt = &at
	s.profiles[userID] = p
	return nil
}

func TestIdentityServiceCompleteOnboarding(t *testing.T) {
	students := &identityStudentStub{profiles: map[string]models.StudentProfile{
		"student-1": {UserID: "student-1"},
	}}
	audit := &auditTrailStub{}
	svc := NewIdentityService(students, audit, validator.New(), nil, IdentityConfig{})

	res, err := svc.CompleteOnboarding(context.Background(), "student-1", dto.OnboardingRequest{Year: 2, Department: "Physics"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Handle, "S-"))
	assert.Len(t, res.Handle, len("S-")+5)

	var payload models.QRPayload
	require.NoError(t, json.Unmarshal([]byte(res.QRCode), &payload))
	assert.Equal(t, "student-1", payload.StudentID)
	assert.Equal(t, res.Handle, payload.Username)
	assert.NotEmpty(t, payload.Secret)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionOnboarding, audit.logs[0].Action)
}

func TestIdentityServiceCompleteOnboardingTwice(t *testing.T) {
	students := &identityStudentStub{profiles: map[string]models.StudentProfile{
		"student-1": {UserID: "student-1"},
	}}
	svc := NewIdentityService(students, &auditTrailStub{}, validator.New(), nil, IdentityConfig{})

	_, err := svc.CompleteOnboarding(context.Background(), "student-1", dto.OnboardingRequest{Year: 2, Department: "Physics"})
	require.NoError(t, err)

	_, err = svc.CompleteOnboarding(context.Background(), "student-1", dto.OnboardingRequest{Year: 3, Department: "Maths"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyOnboarded.Code, appErrors.FromError(err).Code)
}

func TestIdentityServiceCompleteOnboardingRaceSurfacesAlreadyOnboarded(t *testing.T) {
	students := &identityStudentStub{
		profiles: map[string]models.StudentProfile{"student-1": {UserID: "student-1"}},
		setErr:   appErrors.ErrAlreadyOnboarded,
	}
	svc := NewIdentityService(students, &auditTrailStub{}, validator.New(), nil, IdentityConfig{})

	_, err := svc.CompleteOnboarding(context.Background(), "student-1", dto.OnboardingRequest{Year: 1, Department: "Arts"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyOnboarded.Code, appErrors.FromError(err).Code)
}

func TestIdentityServiceCompleteOnboardingValidatesPayload(t *testing.T) {
	svc := NewIdentityService(&identityStudentStub{profiles: map[string]models.StudentProfile{}}, &auditTrailStub{}, validator.New(), nil, IdentityConfig{})

	_, err := svc.CompleteOnboarding(context.Background(), "student-1", dto.OnboardingRequest{Year: 9, Department: "Physics"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIdentityServiceIdentityRoundTrip(t *testing.T) {
	students := &identityStudentStub{profiles: map[string]models.StudentProfile{
		"student-1": {UserID: "student-1"},
	}}
	svc := NewIdentityService(students, &auditTrailStub{}, validator.New(), nil, IdentityConfig{})

	issued, err := svc.CompleteOnboarding(context.Background(), "student-1", dto.OnboardingRequest{Year: 4, Department: "History"})
	require.NoError(t, err)

	identity, err := svc.Identity(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, issued.Handle, identity.Username)
	assert.Equal(t, issued.QRCode, identity.QRCode)

	var payload models.QRPayload
	require.NoError(t, json.Unmarshal([]byte(identity.QRCode), &payload))
	assert.Equal(t, identity.QRSecret, payload.Secret)
}

func TestIdentityServiceIdentityBeforeOnboarding(t *testing.T) {
	students := &identityStudentStub{profiles: map[string]models.StudentProfile{
		"student-1": {UserID: "student-1"},
	}}
	svc := NewIdentityService(students, &auditTrailStub{}, validator.New(), nil, IdentityConfig{})

	_, err := svc.Identity(context.Background(), "student-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
