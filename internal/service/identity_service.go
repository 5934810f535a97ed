package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type identityStudentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
	SetIdentity(ctx context.Context, userID, handle, secret string, year int, department string, at time.Time) error
}

type identityAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// IdentityConfig tunes anonymous handle generation.
type IdentityConfig struct {
	HandlePrefix      string
	HandleSuffixLen   int
	HandleMaxAttempts int
}

// IdentityService manages the anonymous student identity lifecycle:
// one-time onboarding, handle generation and the QR payload.
type IdentityService struct {
	students  identityStudentRepository
	audit     identityAuditRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    IdentityConfig
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(students identityStudentRepository, audit identityAuditRepository, validate *validator.Validate, logger *zap.Logger, config IdentityConfig) *IdentityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.HandlePrefix == "" {
		config.HandlePrefix = "S-"
	}
	if config.HandleSuffixLen <= 0 {
		config.HandleSuffixLen = 5
	}
	if config.HandleMaxAttempts <= 0 {
		config.HandleMaxAttempts = 10
	}
	return &IdentityService{students: students, audit: audit, validator: validate, logger: logger, config: config}
}

// CompleteOnboarding issues the anonymous handle and QR secret for a student.
// The operation succeeds at most once per student; repeats return
// ALREADY_ONBOARDED regardless of the submitted payload.
func (s *IdentityService) CompleteOnboarding(ctx context.Context, studentID string, req dto.OnboardingRequest) (*dto.OnboardingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid onboarding payload")
	}

	profile, err := s.students.FindByUserID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	if profile.Onboarded || profile.AnonHandle != nil {
		return nil, appErrors.ErrAlreadyOnboarded
	}

	secret, err := s.generateSecret()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate qr secret")
	}

	// Handle uniqueness is guaranteed by the database constraint; the loop
	// only retries the statistically rare collision.
	var handle string
	now := time.Now().UTC()
	for attempt := 0; attempt < s.config.HandleMaxAttempts; attempt++ {
		candidate, err := s.generateHandle()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate handle")
		}
		taken, err := s.students.HandleExists(ctx, candidate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check handle")
		}
		if taken {
			continue
		}
		if err := s.students.SetIdentity(ctx, studentID, candidate, secret, req.Year, req.Department, now); err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrConflict.Code {
				// Lost the race on the handle; try another one.
				continue
			}
			return nil, err
		}
		handle = candidate
		break
	}
	if handle == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "could not allocate a unique handle")
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &studentID,
		Action:     models.AuditActionOnboarding,
		Resource:   "student_profile",
		ResourceID: &studentID,
		NewValues:  []byte(fmt.Sprintf(`{"handle":%q}`, handle)),
	}); err != nil {
		s.logger.Warn("failed to record onboarding audit log", zap.Error(err))
	}

	qrCode, err := encodeQRPayload(studentID, handle, secret)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode qr payload")
	}

	return &dto.OnboardingResponse{Handle: handle, QRCode: qrCode}, nil
}

// Identity returns the owning student's QR identity. The secret is only
// ever disclosed through this path.
func (s *IdentityService) Identity(ctx context.Context, studentID string) (*dto.IdentityResponse, error) {
	profile, err := s.students.FindByUserID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	if profile.AnonHandle == nil || profile.QRSecret == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "onboarding not completed")
	}

	qrCode, err := encodeQRPayload(studentID, *profile.AnonHandle, *profile.QRSecret)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode qr payload")
	}

	return &dto.IdentityResponse{
		Username: *profile.AnonHandle,
		QRSecret: *profile.QRSecret,
		QRCode:   qrCode,
	}, nil
}

const handleAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func (s *IdentityService) generateHandle() (string, error) {
	suffix := make([]byte, s.config.HandleSuffixLen)
	max := big.NewInt(int64(len(handleAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = handleAlphabet[n.Int64()]
	}
	return s.config.HandlePrefix + string(suffix), nil
}

func (s *IdentityService) generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func encodeQRPayload(studentID, username, secret string) (string, error) {
	payload, err := json.Marshal(models.QRPayload{StudentID: studentID, Username: username, Secret: secret})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
