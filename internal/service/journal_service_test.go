package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type journalRepoStub struct {
	byClientKey map[string]models.JournalEntry
	entries     []models.JournalEntry
	total       int
}

func (s *journalRepoStub) Create(ctx context.Context, entry *models.JournalEntry) (bool, error) {
	if existing, ok := s.byClientKey[entry.StudentID+"/"+entry.ClientKey]; ok {
		*entry = existing
		return false, nil
	}
	entry.ID = "entry-1"
	if s.byClientKey == nil {
		s.byClientKey = make(map[string]models.JournalEntry)
	}
	s.byClientKey[entry.StudentID+"/"+entry.ClientKey] = *entry
	return true, nil
}

func (s *journalRepoStub) List(ctx context.Context, studentID string, filter dto.JournalFilter) ([]models.JournalEntry, int, error) {
	return s.entries, s.total, nil
}

func TestJournalServiceLog(t *testing.T) {
	repo := &journalRepoStub{}
	svc := NewJournalService(repo, validator.New(), nil)

	entry, created, err := svc.Log(context.Background(), "student-1", dto.LogJournalRequest{
		Kind: "journal", Body: "long day", ClientKey: "key-1",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "student-1", entry.StudentID)
	assert.False(t, entry.LoggedAt.IsZero())
}

func TestJournalServiceLogReplayReturnsStoredEntry(t *testing.T) {
	repo := &journalRepoStub{}
	svc := NewJournalService(repo, validator.New(), nil)

	first, created, err := svc.Log(context.Background(), "student-1", dto.LogJournalRequest{
		Kind: "journal", Body: "long day", ClientKey: "key-1",
	})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.Log(context.Background(), "student-1", dto.LogJournalRequest{
		Kind: "journal", Body: "edited later", ClientKey: "key-1",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Body, second.Body)
}

func TestJournalServiceLogMoodRequiresMood(t *testing.T) {
	svc := NewJournalService(&journalRepoStub{}, validator.New(), nil)

	_, _, err := svc.Log(context.Background(), "student-1", dto.LogJournalRequest{
		Kind: "mood", Body: "feeling", ClientKey: "key-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	mood := "calm"
	entry, created, err := svc.Log(context.Background(), "student-1", dto.LogJournalRequest{
		Kind: "mood", Mood: &mood, Body: "feeling", ClientKey: "key-2",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.JournalKindMood, entry.Kind)
}

func TestJournalServiceLogHonoursClientTimestamp(t *testing.T) {
	svc := NewJournalService(&journalRepoStub{}, validator.New(), nil)

	at := time.Date(2026, 3, 4, 21, 15, 0, 0, time.UTC)
	entry, _, err := svc.Log(context.Background(), "student-1", dto.LogJournalRequest{
		Kind: "journal", Body: "backfilled", ClientKey: "key-1", LoggedAt: &at,
	})
	require.NoError(t, err)
	assert.Equal(t, at, entry.LoggedAt)
}

func TestJournalServiceListPagination(t *testing.T) {
	repo := &journalRepoStub{total: 42}
	svc := NewJournalService(repo, validator.New(), nil)

	entries, page, err := svc.List(context.Background(), "student-1", dto.JournalFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 42, page.TotalCount)
}
