package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

func newTimeSlotMock(t *testing.T) (*TimeSlotRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTimeSlotRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestTimeSlotRepositoryCreate(t *testing.T) {
	repo, mock := newTimeSlotMock(t)

	mock.ExpectExec(`INSERT INTO time_slots`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	slot := &models.TimeSlot{CounsellorID: "coun-1", DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00", Available: true}
	err := repo.Create(context.Background(), slot)
	require.NoError(t, err)
	assert.NotEmpty(t, slot.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryCreateDuplicate(t *testing.T) {
	repo, mock := newTimeSlotMock(t)

	mock.ExpectExec(`INSERT INTO time_slots`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "time_slots_counsellor_day_start_key"})

	err := repo.Create(context.Background(), &models.TimeSlot{CounsellorID: "coun-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateSlot.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryExists(t *testing.T) {
	repo, mock := newTimeSlotMock(t)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM time_slots`).
		WithArgs("coun-1", 1, "10:00").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), "coun-1", 1, "10:00")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryListAvailable(t *testing.T) {
	repo, mock := newTimeSlotMock(t)

	rows := sqlmock.NewRows([]string{"id", "counsellor_id", "day_of_week", "start_time", "end_time", "available"}).
		AddRow("slot-1", "coun-1", 1, "10:00", "11:00", true).
		AddRow("slot-2", "coun-1", 3, "14:00", "15:00", true)
	mock.ExpectQuery(`SELECT .+ FROM time_slots WHERE counsellor_id = \$1 AND available = TRUE`).
		WithArgs("coun-1").
		WillReturnRows(rows)

	slots, err := repo.ListAvailable(context.Background(), "coun-1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "slot-1", slots[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
