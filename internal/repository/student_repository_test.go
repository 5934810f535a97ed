package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

func newStudentMock(t *testing.T) (*StudentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStudentRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestStudentRepositorySetIdentity(t *testing.T) {
	repo, mock := newStudentMock(t)

	at := time.Now().UTC()
	mock.ExpectExec(`UPDATE student_profiles`).
		WithArgs("user-1", "S-AB2CD", "secret", 2, "Physics", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetIdentity(context.Background(), "user-1", "S-AB2CD", "secret", 2, "Physics", at)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySetIdentityAlreadyOnboarded(t *testing.T) {
	repo, mock := newStudentMock(t)

	at := time.Now().UTC()
	mock.ExpectExec(`UPDATE student_profiles`).
		WithArgs("user-1", "S-AB2CD", "secret", 2, "Physics", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetIdentity(context.Background(), "user-1", "S-AB2CD", "secret", 2, "Physics", at)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyOnboarded.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySetIdentityHandleTaken(t *testing.T) {
	repo, mock := newStudentMock(t)

	at := time.Now().UTC()
	mock.ExpectExec(`UPDATE student_profiles`).
		WithArgs("user-1", "S-AB2CD", "secret", 2, "Physics", at).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "student_profiles_anon_handle_key"})

	err := repo.SetIdentity(context.Background(), "user-1", "S-AB2CD", "secret", 2, "Physics", at)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryHandleExists(t *testing.T) {
	repo, mock := newStudentMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM student_profiles WHERE anon_handle = $1)`)).
		WithArgs("S-AB2CD").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HandleExists(context.Background(), "S-AB2CD")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByUserID(t *testing.T) {
	repo, mock := newStudentMock(t)

	handle := "S-AB2CD"
	rows := sqlmock.NewRows([]string{"user_id", "anon_handle", "qr_secret", "year", "department", "onboarded", "onboarded_at", "created_at", "updated_at"}).
		AddRow("user-1", handle, "secret", 2, "Physics", true, time.Now(), time.Now(), time.Now())
	mock.ExpectQuery(`SELECT .+ FROM student_profiles WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(rows)

	profile, err := repo.FindByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, profile.AnonHandle)
	assert.Equal(t, handle, *profile.AnonHandle)
	require.NoError(t, mock.ExpectationsWereMet())
}
