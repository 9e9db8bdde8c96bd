package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type ContentInput struct {
	Title    string    `json:"title" validate:"required,max=200"`
	CourseID uuid.UUID `json:"courseId" validate:"required"`
}

type ContentService interface {
	Create(ctx context.Context, in ContentInput) (*types.CourseContent, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*types.CourseContent, error)
	Get(ctx context.Context, id uuid.UUID) (*types.CourseContent, error)
	Update(ctx context.Context, id uuid.UUID, title string) (*types.CourseContent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type contentService struct {
	log         *logger.Logger
	courses     CourseService
	contentRepo repos.CourseContentRepo
	subRepo     repos.CourseContentSubRepo
}

func NewContentService(log *logger.Logger, courses CourseService, contentRepo repos.CourseContentRepo, subRepo repos.CourseContentSubRepo) ContentService {
	return &contentService{
		log:         log.With("service", "ContentService"),
		courses:     courses,
		contentRepo: contentRepo,
		subRepo:     subRepo,
	}
}

func (s *contentService) Create(ctx context.Context, in ContentInput) (*types.CourseContent, error) {
	course, err := s.courses.OwnedCourse(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}
	c := &types.CourseContent{Title: strings.TrimSpace(in.Title), CourseID: course.ID}
	if err := s.contentRepo.Create(dbctx.New(ctx), c); err != nil {
		return nil, internalErr("create content", err)
	}
	return c, nil
}

func (s *contentService) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*types.CourseContent, error) {
	if _, err := s.courses.OwnedCourse(ctx, courseID); err != nil {
		return nil, err
	}
	rows, err := s.contentRepo.ListByCourse(dbctx.New(ctx), courseID)
	if err != nil {
		return nil, internalErr("list contents", err)
	}
	return rows, nil
}

// owned loads a content section and its course after checking the caller may manage it.
func (s *contentService) owned(ctx context.Context, id uuid.UUID) (*types.CourseContent, *types.Course, error) {
	c, err := s.contentRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, nil, internalErr("load content", err)
	}
	if c == nil {
		return nil, nil, apierr.NotFound("content_not_found", "Course content not found")
	}
	course, err := s.courses.OwnedCourse(ctx, c.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return c, course, nil
}

func (s *contentService) Get(ctx context.Context, id uuid.UUID) (*types.CourseContent, error) {
	c, _, err := s.owned(ctx, id)
	return c, err
}

func (s *contentService) Update(ctx context.Context, id uuid.UUID, title string) (*types.CourseContent, error) {
	c, _, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierr.BadRequest("invalid_title", "Title is required")
	}
	if err := s.contentRepo.UpdateFields(dbctx.New(ctx), id, map[string]any{"title": title}); err != nil {
		return nil, internalErr("update content", err)
	}
	c.Title = title
	return c, nil
}

func (s *contentService) Delete(ctx context.Context, id uuid.UUID) error {
	_, course, err := s.owned(ctx, id)
	if err != nil {
		return err
	}
	if course.IsPublished {
		return apierr.BadRequest("course_published", "Content of a published course cannot be deleted")
	}
	dbc := dbctx.New(ctx)
	n, err := s.subRepo.CountByContent(dbc, id)
	if err != nil {
		return internalErr("count subs", err)
	}
	if n > 0 {
		return apierr.Conflict("content_in_use", "Course content with lessons cannot be deleted")
	}
	if err := s.contentRepo.Delete(dbc, id); err != nil {
		return internalErr("delete content", err)
	}
	return nil
}

type SubInput struct {
	CourseContentID uuid.UUID       `json:"courseContentId" validate:"required"`
	Title           string          `json:"title" validate:"required,max=200"`
	Duration        int             `json:"duration" validate:"gte=0"`
	Media           string          `json:"media" validate:"omitempty,url"`
	PreviewURL      string          `json:"previewUrl" validate:"omitempty,url"`
	MediaType       types.MediaType `json:"mediaType" validate:"required,oneof=audio video image document assessment"`
}

type SubUpdate struct {
	Title      *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Duration   *int             `json:"duration" validate:"omitempty,gte=0"`
	Media      *string          `json:"media" validate:"omitempty,url"`
	PreviewURL *string          `json:"previewUrl" validate:"omitempty,url"`
	MediaType  *types.MediaType `json:"mediaType" validate:"omitempty,oneof=audio video image document assessment"`
}

type SubOrder struct {
	ID    uuid.UUID `json:"id" validate:"required"`
	Order int       `json:"order" validate:"gte=1"`
}

type ContentSubService interface {
	Create(ctx context.Context, in SubInput) (*types.CourseContentSub, error)
	ListByContent(ctx context.Context, contentID uuid.UUID) ([]*types.CourseContentSub, error)
	Get(ctx context.Context, id uuid.UUID) (*types.CourseContentSub, error)
	Update(ctx context.Context, id uuid.UUID, in SubUpdate) (*types.CourseContentSub, error)
	UpdateForInstructor(ctx context.Context, id uuid.UUID, in SubUpdate) (*types.CourseContentSub, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, courseID uuid.UUID, orders []SubOrder) error
	IsValid(ctx context.Context, courseID, subID uuid.UUID) (bool, error)
	Count(ctx context.Context, filter repos.SubCountFilter) (int64, error)
}

type contentSubService struct {
	db          *gorm.DB
	log         *logger.Logger
	courses     CourseService
	contentRepo repos.CourseContentRepo
	subRepo     repos.CourseContentSubRepo
}

func NewContentSubService(
	db *gorm.DB,
	log *logger.Logger,
	courses CourseService,
	contentRepo repos.CourseContentRepo,
	subRepo repos.CourseContentSubRepo,
) ContentSubService {
	return &contentSubService{
		db:          db,
		log:         log.With("service", "ContentSubService"),
		courses:     courses,
		contentRepo: contentRepo,
		subRepo:     subRepo,
	}
}

var errSubNotFound = apierr.NotFound("sub_not_found", "Course content sub not found.")

func (s *contentSubService) Create(ctx context.Context, in SubInput) (*types.CourseContentSub, error) {
	if !in.MediaType.Valid() {
		return nil, apierr.BadRequest("invalid_media_type", "Unsupported media type")
	}
	dbc := dbctx.New(ctx)
	content, err := s.contentRepo.GetByID(dbc, in.CourseContentID)
	if err != nil {
		return nil, internalErr("load content", err)
	}
	if content == nil {
		return nil, apierr.NotFound("content_not_found", "Course content not found")
	}
	if _, err := s.courses.OwnedCourse(ctx, content.CourseID); err != nil {
		return nil, err
	}
	sub := &types.CourseContentSub{
		Title:           strings.TrimSpace(in.Title),
		CourseID:        content.CourseID,
		CourseContentID: content.ID,
		Duration:        in.Duration,
		Media:           strings.TrimSpace(in.Media),
		PreviewURL:      strings.TrimSpace(in.PreviewURL),
		MediaType:       in.MediaType,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.WithTx(ctx, tx)
		last, err := s.subRepo.MaxOrder(txc, content.CourseID)
		if err != nil {
			return err
		}
		sub.Order = last + 1
		return s.subRepo.Create(txc, sub)
	})
	if err != nil {
		return nil, internalErr("create sub", err)
	}
	return sub, nil
}

func (s *contentSubService) ListByContent(ctx context.Context, contentID uuid.UUID) ([]*types.CourseContentSub, error) {
	dbc := dbctx.New(ctx)
	content, err := s.contentRepo.GetByID(dbc, contentID)
	if err != nil {
		return nil, internalErr("load content", err)
	}
	if content == nil {
		return nil, apierr.NotFound("content_not_found", "Course content not found")
	}
	if _, err := s.courses.OwnedCourse(ctx, content.CourseID); err != nil {
		return nil, err
	}
	return content.Subs, nil
}

func (s *contentSubService) owned(ctx context.Context, id uuid.UUID) (*types.CourseContentSub, *types.Course, error) {
	sub, err := s.subRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, nil, internalErr("load sub", err)
	}
	if sub == nil {
		return nil, nil, errSubNotFound
	}
	course, err := s.courses.OwnedCourse(ctx, sub.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return sub, course, nil
}

func (s *contentSubService) Get(ctx context.Context, id uuid.UUID) (*types.CourseContentSub, error) {
	sub, _, err := s.owned(ctx, id)
	return sub, err
}

func (s *contentSubService) Update(ctx context.Context, id uuid.UUID, in SubUpdate) (*types.CourseContentSub, error) {
	if _, _, err := s.owned(ctx, id); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, in)
}

func (s *contentSubService) UpdateForInstructor(ctx context.Context, id uuid.UUID, in SubUpdate) (*types.CourseContentSub, error) {
	_, course, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.IsPublished {
		return nil, apierr.BadRequest("course_published", "A published course cannot be updated")
	}
	return s.apply(ctx, id, in)
}

func (s *contentSubService) apply(ctx context.Context, id uuid.UUID, in SubUpdate) (*types.CourseContentSub, error) {
	updates := map[string]any{}
	if v := trimPtr(in.Title); v != nil && *v != "" {
		updates["title"] = *v
	}
	if in.Duration != nil {
		updates["duration"] = *in.Duration
	}
	if v := trimPtr(in.Media); v != nil {
		updates["media"] = *v
	}
	if v := trimPtr(in.PreviewURL); v != nil {
		updates["preview_url"] = *v
	}
	if in.MediaType != nil {
		if !in.MediaType.Valid() {
			return nil, apierr.BadRequest("invalid_media_type", "Unsupported media type")
		}
		updates["media_type"] = *in.MediaType
	}
	dbc := dbctx.New(ctx)
	if err := s.subRepo.UpdateFields(dbc, id, updates); err != nil {
		return nil, internalErr("update sub", err)
	}
	sub, err := s.subRepo.GetByID(dbc, id)
	if err != nil {
		return nil, internalErr("load sub", err)
	}
	return sub, nil
}

func (s *contentSubService) Delete(ctx context.Context, id uuid.UUID) error {
	_, course, err := s.owned(ctx, id)
	if err != nil {
		return err
	}
	if course.IsPublished {
		return apierr.BadRequest("course_published", "A lesson of a published course cannot be deleted")
	}
	if err := s.subRepo.Delete(dbctx.New(ctx), id); err != nil {
		return internalErr("delete sub", err)
	}
	return nil
}

func (s *contentSubService) Reorder(ctx context.Context, courseID uuid.UUID, orders []SubOrder) error {
	if len(orders) == 0 {
		return apierr.BadRequest("empty_order", "At least one lesson order is required")
	}
	if _, err := s.courses.OwnedCourse(ctx, courseID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.WithTx(ctx, tx)
		for _, o := range orders {
			ok, err := s.subRepo.IsValid(txc, courseID, o.ID)
			if err != nil {
				return internalErr("check sub", err)
			}
			if !ok {
				return errSubNotFound
			}
			if err := s.subRepo.UpdateFields(txc, o.ID, map[string]any{"position": o.Order}); err != nil {
				return internalErr("reorder sub", err)
			}
		}
		return nil
	})
}

func (s *contentSubService) IsValid(ctx context.Context, courseID, subID uuid.UUID) (bool, error) {
	ok, err := s.subRepo.IsValid(dbctx.New(ctx), courseID, subID)
	if err != nil {
		return false, internalErr("check sub", err)
	}
	return ok, nil
}

func (s *contentSubService) Count(ctx context.Context, filter repos.SubCountFilter) (int64, error) {
	n, err := s.subRepo.Count(dbctx.New(ctx), filter)
	if err != nil {
		return 0, internalErr("count subs", err)
	}
	return n, nil
}
