package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type authRepoStub struct {
	users        map[string]models.User
	tokens       map[string]models.RefreshToken
	revokedAll   []string
	revokedIDs   []string
	auditActions []string
	passwords    map[string]string
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *authRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if s.passwords == nil {
		s.passwords = make(map[string]string)
	}
	s.passwords[id] = passwordHash
	return nil
}

func (s *authRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revokedAll = append(s.revokedAll, userID)
	return nil
}

func (s *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if s.tokens == nil {
		s.tokens = make(map[string]models.RefreshToken)
	}
	s.tokens[token.Token] = *token
	return nil
}

func (s *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.tokens[token]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	s.revokedIDs = append(s.revokedIDs, id)
	return nil
}

func (s *authRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.auditActions = append(s.auditActions, log.Action)
	return nil
}

func newAuthFixture(t *testing.T) (*authRepoStub, *AuthService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &authRepoStub{users: map[string]models.User{
		"user-1": {ID: "user-1", Email: "sam@campus.test", PasswordHash: string(hash), Role: models.RoleStudent, Active: true},
	}}
	svc := NewAuthService(repo, validator.New(), nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "counsel-api",
	})
	return repo, svc
}

func TestAuthServiceLogin(t *testing.T) {
	repo, svc := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "sam@campus.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "user-1", res.User.ID)
	assert.Contains(t, repo.auditActions, models.AuditActionLogin)
	assert.Contains(t, repo.tokens, res.RefreshToken)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "sam@campus.test", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@campus.test", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo, svc := newAuthFixture(t)
	u := repo.users["user-1"]
	u.Active = false
	repo.users["user-1"] = u

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "sam@campus.test", Password: "correct-horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRoundTrip(t *testing.T) {
	_, svc := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "sam@campus.test", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceValidateTokenRejectsForgedToken(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo, svc := newAuthFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "sam@campus.test", Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	oldToken := repo.tokens[login.RefreshToken]
	assert.Contains(t, repo.revokedIDs, oldToken.ID)
}

func TestAuthServiceRefreshRejectsExpiredToken(t *testing.T) {
	repo, svc := newAuthFixture(t)
	repo.tokens = map[string]models.RefreshToken{
		"stale": {ID: "tok-1", UserID: "user-1", Token: "stale", ExpiresAt: time.Now().UTC().Add(-time.Hour)},
	}

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo, svc := newAuthFixture(t)
	repo.tokens = map[string]models.RefreshToken{
		"theirs": {ID: "tok-1", UserID: "user-2", Token: "theirs", ExpiresAt: time.Now().UTC().Add(time.Hour)},
	}

	err := svc.Logout(context.Background(), "theirs", "user-1", models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	repo, svc := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "correct-horse",
		NewPassword: "battery-staple",
	})
	require.NoError(t, err)
	assert.Contains(t, repo.revokedAll, "user-1")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwords["user-1"]), []byte("battery-staple")))
}

func TestAuthServiceChangePasswordRejectsWrongOldPassword(t *testing.T) {
	repo, svc := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "battery-staple",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.passwords)
}
