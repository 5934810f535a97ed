package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswell/counsel-api/internal/repository"
)

type counsellorRepoStub struct {
	entries []repository.CounsellorDirectoryEntry
}

func (s *counsellorRepoStub) Directory(ctx context.Context) ([]repository.CounsellorDirectoryEntry, error) {
	return s.entries, nil
}

func TestCounsellorServiceDirectoryDerivesAvailability(t *testing.T) {
	repo := &counsellorRepoStub{entries: []repository.CounsellorDirectoryEntry{
		{UserID: "coun-1", DisplayName: "Dr. Reed", Specialization: "anxiety", Busy: false},
		{UserID: "coun-2", DisplayName: "Dr. Okafor", Specialization: "grief", Busy: true},
	}}
	svc := NewCounsellorService(repo, nil)

	views, err := svc.Directory(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].Available)
	assert.False(t, views[1].Available)
}

func TestCounsellorServiceDirectoryEmpty(t *testing.T) {
	svc := NewCounsellorService(&counsellorRepoStub{}, nil)

	views, err := svc.Directory(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}
