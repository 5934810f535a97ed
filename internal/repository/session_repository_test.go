package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

func newSessionMock(t *testing.T) (*SessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSessionRepositoryCreate(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectExec(`INSERT INTO sessions`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	session := &models.Session{
		AppointmentID: "appt-1",
		StudentID:     "student-1",
		CounsellorID:  "coun-1",
		StartedAt:     time.Now().UTC(),
	}
	err := repo.Create(context.Background(), session)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateDuplicateCheckIn(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectExec(`INSERT INTO sessions`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "sessions_appointment_id_key"})

	err := repo.Create(context.Background(), &models.Session{AppointmentID: "appt-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryEnd(t *testing.T) {
	repo, mock := newSessionMock(t)

	endedAt := time.Now().UTC()
	mock.ExpectExec(`UPDATE sessions`).
		WithArgs("sess-1", endedAt, "notes", models.SeverityGreen).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.End(context.Background(), "sess-1", endedAt, "notes", models.SeverityGreen)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryEndAlreadyEnded(t *testing.T) {
	repo, mock := newSessionMock(t)

	endedAt := time.Now().UTC()
	mock.ExpectExec(`UPDATE sessions`).
		WithArgs("sess-1", endedAt, "notes", models.SeverityRed).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.End(context.Background(), "sess-1", endedAt, "notes", models.SeverityRed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionAlreadyEnded.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryHasOpenByCounsellor(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM sessions WHERE counsellor_id = \$1 AND ended_at IS NULL\)`).
		WithArgs("coun-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	open, err := repo.HasOpenByCounsellor(context.Background(), "coun-1")
	require.NoError(t, err)
	assert.True(t, open)
	require.NoError(t, mock.ExpectationsWereMet())
}
