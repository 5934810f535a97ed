package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/repository"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
)

type counsellorRepository interface {
	Directory(ctx context.Context) ([]repository.CounsellorDirectoryEntry, error)
}

// CounsellorService serves the public counsellor directory.
type CounsellorService struct {
	counsellors counsellorRepository
	logger      *zap.Logger
}

// NewCounsellorService constructs a CounsellorService.
func NewCounsellorService(counsellors counsellorRepository, logger *zap.Logger) *CounsellorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounsellorService{counsellors: counsellors, logger: logger}
}

// Directory lists active counsellors. Availability is derived: a counsellor
// is available exactly when they have no open session.
func (s *CounsellorService) Directory(ctx context.Context) ([]dto.CounsellorView, error) {
	entries, err := s.counsellors.Directory(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list counsellors")
	}
	views := make([]dto.CounsellorView, 0, len(entries))
	for _, e := range entries {
		views = append(views, dto.CounsellorView{
			ID:             e.UserID,
			DisplayName:    e.DisplayName,
			Specialization: e.Specialization,
			Available:      !e.Busy,
		})
	}
	return views, nil
}
