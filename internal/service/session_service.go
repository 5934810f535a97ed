package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type sessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	HasOpenByCounsellor(ctx context.Context, counsellorID string) (bool, error)
	End(ctx context.Context, id string, endedAt time.Time, notes string, severity models.Severity) error
	ListForStudent(ctx context.Context, studentID string) ([]dto.SessionView, error)
	ListForCounsellor(ctx context.Context, counsellorID string) ([]dto.SessionView, error)
}

type sessionStudentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
}

type sessionAppointmentRepository interface {
	FindScheduledInWindow(ctx context.Context, studentID, counsellorID string, from, to time.Time) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error
}

type feedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	FindBySession(ctx context.Context, sessionID string) (*models.Feedback, error)
}

type sessionAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SessionConfig tunes the check-in flow.
type SessionConfig struct {
	CheckInWindow time.Duration
}

// SessionService drives the realised-session state machine: QR check-in,
// check-out with triage severity, and post-session feedback.
type SessionService struct {
	sessions     sessionRepository
	students     sessionStudentRepository
	appointments sessionAppointmentRepository
	feedback     feedbackRepository
	audit        sessionAuditRepository
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	config       SessionConfig
	now          func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(sessions sessionRepository, students sessionStudentRepository, appointments sessionAppointmentRepository, feedback feedbackRepository, audit sessionAuditRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config SessionConfig) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CheckInWindow <= 0 {
		config.CheckInWindow = 24 * time.Hour
	}
	return &SessionService{
		sessions:     sessions,
		students:     students,
		appointments: appointments,
		feedback:     feedback,
		audit:        audit,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		config:       config,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start verifies a scanned QR payload and opens a session against the
// matching scheduled appointment. Every verification failure maps to the
// same generic invalid-code error so a scanner learns nothing about which
// part of the payload was wrong, and nothing is mutated until every check
// has passed.
func (s *SessionService) Start(ctx context.Context, counsellorID string, req dto.StartSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}

	var payload models.QRPayload
	if err := json.Unmarshal([]byte(req.QRData), &payload); err != nil {
		return nil, appErrors.ErrInvalidQRCode
	}
	if payload.StudentID == "" || payload.Username == "" || payload.Secret == "" {
		return nil, appErrors.ErrInvalidQRCode
	}

	profile, err := s.students.FindByUserID(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidQRCode
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	if profile.AnonHandle == nil || profile.QRSecret == nil {
		return nil, appErrors.ErrInvalidQRCode
	}

	secretOK := subtle.ConstantTimeCompare([]byte(payload.Secret), []byte(*profile.QRSecret)) == 1
	handleOK := subtle.ConstantTimeCompare([]byte(payload.Username), []byte(*profile.AnonHandle)) == 1
	if !secretOK || !handleOK {
		return nil, appErrors.ErrInvalidQRCode
	}

	open, err := s.sessions.HasOpenByCounsellor(ctx, counsellorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check open sessions")
	}
	if open {
		return nil, appErrors.ErrSessionInProgress
	}

	now := s.now()
	appt, err := s.appointments.FindScheduledInWindow(ctx, payload.StudentID, counsellorID, now.Add(-s.config.CheckInWindow), now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoMatchingAppointment
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to locate appointment")
	}

	session := &models.Session{
		AppointmentID: appt.ID,
		StudentID:     payload.StudentID,
		CounsellorID:  counsellorID,
		StartedAt:     now,
		QRScannedInAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &counsellorID,
		Action:     models.AuditActionSessionStart,
		Resource:   "session",
		ResourceID: &session.ID,
		NewValues:  []byte(fmt.Sprintf(`{"appointment_id":%q}`, appt.ID)),
	}); err != nil {
		s.logger.Warn("failed to record check-in audit log", zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordSessionStarted()
	}

	return session, nil
}

// End closes an open session with notes and a triage severity. Only the
// counsellor who opened the session may close it, and the close happens
// exactly once.
func (s *SessionService) End(ctx context.Context, counsellorID, sessionID string, req dto.EndSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-out payload")
	}
	severity, err := models.ParseSeverity(req.Severity)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "severity must be red, yellow or green")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.CounsellorID != counsellorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "session belongs to another counsellor")
	}

	endedAt := s.now()
	if err := s.sessions.End(ctx, sessionID, endedAt, req.Notes, severity); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end session")
	}

	if err := s.appointments.UpdateStatus(ctx, session.AppointmentID, models.AppointmentCompleted); err != nil {
		s.logger.Warn("failed to mark appointment completed", zap.String("appointment_id", session.AppointmentID), zap.Error(err))
	}

	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &counsellorID,
		Action:     models.AuditActionSessionEnd,
		Resource:   "session",
		ResourceID: &sessionID,
		NewValues:  []byte(fmt.Sprintf(`{"severity":%q}`, severity)),
	}); err != nil {
		s.logger.Warn("failed to record check-out audit log", zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordSessionEnded(string(severity))
	}

	session.EndedAt = &endedAt
	session.QRScannedOutAt = &endedAt
	session.Notes = &req.Notes
	session.Severity = &severity
	return session, nil
}

// SubmitFeedback records the student's one-time rating for an ended session.
func (s *SessionService) SubmitFeedback(ctx context.Context, studentID, sessionID string, req dto.FeedbackRequest) (*models.Feedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "session belongs to another student")
	}
	if session.Open() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "feedback is only accepted after the session ends")
	}

	if _, err := s.feedback.FindBySession(ctx, sessionID); err == nil {
		return nil, appErrors.ErrDuplicateFeedback
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing feedback")
	}

	fb := &models.Feedback{
		SessionID:      sessionID,
		StudentID:      studentID,
		Rating:         req.Rating,
		Comment:        req.Comment,
		WasHelpful:     req.WasHelpful,
		WouldRecommend: req.WouldRecommend,
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save feedback")
	}
	return fb, nil
}

// ListForStudent returns the student's session history.
func (s *SessionService) ListForStudent(ctx context.Context, studentID string) ([]dto.SessionView, error) {
	views, err := s.sessions.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	if views == nil {
		views = []dto.SessionView{}
	}
	return views, nil
}

// ListForCounsellor returns the counsellor's session history.
func (s *SessionService) ListForCounsellor(ctx context.Context, counsellorID string) ([]dto.SessionView, error) {
	views, err := s.sessions.ListForCounsellor(ctx, counsellorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	if views == nil {
		views = []dto.SessionView{}
	}
	return views, nil
}
