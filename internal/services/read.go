package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/data/dberr"
	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type ReadService interface {
	Record(ctx context.Context, courseID, subID uuid.UUID) (*types.CourseRead, error)
	ListForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.CourseRead, error)
	Count(ctx context.Context, filter repos.ReadCountFilter) (int64, error)
}

type readService struct {
	log      *logger.Logger
	readRepo repos.CourseReadRepo
	subRepo  repos.CourseContentSubRepo
}

func NewReadService(log *logger.Logger, readRepo repos.CourseReadRepo, subRepo repos.CourseContentSubRepo) ReadService {
	return &readService{log: log.With("service", "ReadService"), readRepo: readRepo, subRepo: subRepo}
}

var errReadExists = apierr.Conflict("read_exists", "Course read record already exists.")

// Record expects course access to be authorized by the caller.
func (s *readService) Record(ctx context.Context, courseID, subID uuid.UUID) (*types.CourseRead, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	ok, err := s.subRepo.IsValid(dbc, courseID, subID)
	if err != nil {
		return nil, internalErr("check sub", err)
	}
	if !ok {
		return nil, errSubNotFound
	}
	exists, err := s.readRepo.Exists(dbc, subID, rd.UserID)
	if err != nil {
		return nil, internalErr("check read", err)
	}
	if exists {
		return nil, errReadExists
	}
	read := &types.CourseRead{CourseContentSubID: subID, CourseID: courseID, StudentID: rd.UserID}
	if err := s.readRepo.Create(dbc, read); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, errReadExists
		}
		return nil, internalErr("create read", err)
	}
	return read, nil
}

func (s *readService) ListForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.CourseRead, error) {
	rd, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.readRepo.ListForCourse(dbctx.New(ctx), courseID, rd.UserID)
	if err != nil {
		return nil, internalErr("list reads", err)
	}
	return rows, nil
}

func (s *readService) Count(ctx context.Context, filter repos.ReadCountFilter) (int64, error) {
	n, err := s.readRepo.Count(dbctx.New(ctx), filter)
	if err != nil {
		return 0, internalErr("count reads", err)
	}
	return n, nil
}
