package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/middleware"
	"github.com/campuswell/counsel-api/internal/models"
	"github.com/campuswell/counsel-api/internal/service"
	"github.com/campuswell/counsel-api/pkg/response"
)

type userStoreStub struct {
	users  map[string]models.User
	tokens map[string]models.RefreshToken
}

func (s *userStoreStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userStoreStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userStoreStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error { return nil }

func (s *userStoreStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	return nil
}

func (s *userStoreStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error { return nil }

func (s *userStoreStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if s.tokens == nil {
		s.tokens = make(map[string]models.RefreshToken)
	}
	s.tokens[token.Token] = *token
	return nil
}

func (s *userStoreStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.tokens[token]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userStoreStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	return nil
}

func (s *userStoreStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error { return nil }

type identityStoreStub struct {
	profiles map[string]models.StudentProfile
}

func (s *identityStoreStub) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	if p, ok := s.profiles[userID]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (s *identityStoreStub) HandleExists(ctx context.Context, handle string) (bool, error) {
	return false, nil
}

func (s *identityStoreStub) SetIdentity(ctx context.Context, userID, handle, secret string, year int, department string, at time.Time) error {
	p := s.profiles[userID]
	p.AnonHandle = &handle
	p.QRSecret = &secret
	p.Onboarded = true
	s.profiles[userID] = p
	return nil
}

func newAuthHandler(t *testing.T) (*AuthHandler, *userStoreStub) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &userStoreStub{users: map[string]models.User{
		"user-1": {ID: "user-1", Email: "sam@campus.test", PasswordHash: string(hash), Role: models.RoleStudent, Active: true},
	}}
	auth := service.NewAuthService(users, nil, nil, service.AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "counsel-api",
	})
	identity := service.NewIdentityService(&identityStoreStub{profiles: map[string]models.StudentProfile{
		"user-1": {UserID: "user-1"},
	}}, users, nil, nil, service.IdentityConfig{})
	return NewAuthHandler(auth, identity), users
}

func TestAuthHandlerLogin(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, w := newTestContext(t, http.MethodPost, "/auth/login", models.LoginRequest{Email: "sam@campus.test", Password: "correct-horse"})
	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, w := newTestContext(t, http.MethodPost, "/auth/login", models.LoginRequest{Email: "sam@campus.test", Password: "wrong"})
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, w := newTestContext(t, http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Email: "sam@campus.test", Role: models.RoleStudent})
	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sam@campus.test")
}

func TestAuthHandlerCompleteOnboarding(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, w := newTestContext(t, http.MethodPost, "/auth/onboarding", dto.OnboardingRequest{Year: 2, Department: "Physics"})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	h.CompleteOnboarding(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "S-")
}

func TestAuthHandlerQRCodeBeforeOnboarding(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, w := newTestContext(t, http.MethodGet, "/students/me/qr-code", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	h.QRCode(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandlerLogoutWithoutClaims(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, w := newTestContext(t, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": "tok"})
	h.Logout(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
