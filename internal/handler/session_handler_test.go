package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/middleware"
	"github.com/campuswell/counsel-api/internal/models"
	"github.com/campuswell/counsel-api/internal/service"
	"github.com/campuswell/counsel-api/pkg/response"
)

type sessionStoreStub struct {
	sessions map[string]models.Session
	endErr   error
}

func (s *sessionStoreStub) Create(ctx context.Context, session *models.Session) error {
	session.ID = "sess-1"
	return nil
}

func (s *sessionStoreStub) FindByID(ctx context.Context, id string) (*models.Session, error) {
	if sess, ok := s.sessions[id]; ok {
		return &sess, nil
	}
	return nil, sql.ErrNoRows
}

func (s *sessionStoreStub) HasOpenByCounsellor(ctx context.Context, counsellorID string) (bool, error) {
	return false, nil
}

func (s *sessionStoreStub) End(ctx context.Context, id string, endedAt time.Time, notes string, severity models.Severity) error {
	return s.endErr
}

func (s *sessionStoreStub) ListForStudent(ctx context.Context, studentID string) ([]dto.SessionView, error) {
	return []dto.SessionView{{ID: "sess-1", CounsellorName: "Dr. Reed"}}, nil
}

func (s *sessionStoreStub) ListForCounsellor(ctx context.Context, counsellorID string) ([]dto.SessionView, error) {
	return []dto.SessionView{{ID: "sess-1", StudentHandle: "S-AB2CD"}}, nil
}

type studentStoreStub struct {
	handle string
	secret string
}

func (s *studentStoreStub) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	return &models.StudentProfile{UserID: userID, AnonHandle: &s.handle, QRSecret: &s.secret, Onboarded: true}, nil
}

type apptStoreStub struct{}

func (s *apptStoreStub) FindScheduledInWindow(ctx context.Context, studentID, counsellorID string, from, to time.Time) (*models.Appointment, error) {
	return &models.Appointment{ID: "appt-1", StudentID: studentID, CounsellorID: counsellorID, Status: models.AppointmentScheduled}, nil
}

func (s *apptStoreStub) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	return nil
}

type feedbackStoreStub struct{}

func (s *feedbackStoreStub) Create(ctx context.Context, fb *models.Feedback) error {
	fb.ID = "fb-1"
	return nil
}

func (s *feedbackStoreStub) FindBySession(ctx context.Context, sessionID string) (*models.Feedback, error) {
	return nil, sql.ErrNoRows
}

type auditStoreStub struct{}

func (s *auditStoreStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

func newSessionHandler(store *sessionStoreStub) *SessionHandler {
	svc := service.NewSessionService(store, &studentStoreStub{handle: "S-AB2CD", secret: "super-secret"}, &apptStoreStub{}, &feedbackStoreStub{}, &auditStoreStub{}, nil, nil, nil, service.SessionConfig{})
	return NewSessionHandler(svc)
}

func newTestContext(t *testing.T, method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestSessionHandlerStart(t *testing.T) {
	h := newSessionHandler(&sessionStoreStub{})

	qr, err := json.Marshal(models.QRPayload{StudentID: "student-1", Username: "S-AB2CD", Secret: "super-secret"})
	require.NoError(t, err)

	c, w := newTestContext(t, http.MethodPost, "/sessions", dto.StartSessionRequest{QRData: string(qr)})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "coun-1", Role: models.RoleCounsellor})

	h.Start(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
}

func TestSessionHandlerStartRejectsBadSecret(t *testing.T) {
	h := newSessionHandler(&sessionStoreStub{})

	qr, err := json.Marshal(models.QRPayload{StudentID: "student-1", Username: "S-AB2CD", Secret: "wrong"})
	require.NoError(t, err)

	c, w := newTestContext(t, http.MethodPost, "/sessions", dto.StartSessionRequest{QRData: string(qr)})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "coun-1", Role: models.RoleCounsellor})

	h.Start(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_QR_CODE", envelope.Error.Code)
}

func TestSessionHandlerStartWithoutClaims(t *testing.T) {
	h := newSessionHandler(&sessionStoreStub{})

	c, w := newTestContext(t, http.MethodPost, "/sessions", dto.StartSessionRequest{QRData: "{}"})

	h.Start(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionHandlerEnd(t *testing.T) {
	store := &sessionStoreStub{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", AppointmentID: "appt-1", StudentID: "student-1", CounsellorID: "coun-1", StartedAt: time.Now().UTC()},
	}}
	h := newSessionHandler(store)

	c, w := newTestContext(t, http.MethodPost, "/sessions/sess-1/end", dto.EndSessionRequest{Notes: "went well", Severity: "green"})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "coun-1", Role: models.RoleCounsellor})
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}

	h.End(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionHandlerEndRejectsUnknownSeverity(t *testing.T) {
	h := newSessionHandler(&sessionStoreStub{})

	c, w := newTestContext(t, http.MethodPost, "/sessions/sess-1/end", dto.EndSessionRequest{Notes: "n", Severity: "purple"})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "coun-1", Role: models.RoleCounsellor})
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}

	h.End(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerSubmitFeedback(t *testing.T) {
	ended := time.Now().UTC()
	store := &sessionStoreStub{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", StudentID: "student-1", CounsellorID: "coun-1", EndedAt: &ended},
	}}
	h := newSessionHandler(store)

	c, w := newTestContext(t, http.MethodPost, "/sessions/sess-1/feedback", dto.FeedbackRequest{Rating: 5, WasHelpful: true})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}

	h.SubmitFeedback(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSessionHandlerListByRole(t *testing.T) {
	h := newSessionHandler(&sessionStoreStub{})

	c, w := newTestContext(t, http.MethodGet, "/sessions", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "coun-1", Role: models.RoleCounsellor})
	h.List(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "S-AB2CD")

	c, w = newTestContext(t, http.MethodGet, "/sessions", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	h.List(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dr. Reed")
}
