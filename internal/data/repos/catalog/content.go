package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type CourseContentRepo interface {
	Create(dbc dbctx.Context, c *types.CourseContent) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseContent, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseContent, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type courseContentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseContentRepo(db *gorm.DB, baseLog *logger.Logger) CourseContentRepo {
	return &courseContentRepo{db: db, log: baseLog.With("repo", "CourseContentRepo")}
}

func (r *courseContentRepo) Create(dbc dbctx.Context, c *types.CourseContent) error {
	return dbc.DB(r.db).Create(c).Error
}

func (r *courseContentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseContent, error) {
	var c types.CourseContent
	if err := dbc.DB(r.db).
		Preload("Subs", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).Limit(1).Find(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

func (r *courseContentRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseContent, error) {
	var out []*types.CourseContent
	if err := dbc.DB(r.db).
		Preload("Subs", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseContentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.CourseContent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *courseContentRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.CourseContent{}).Error
}

type SubCountFilter struct {
	CourseID  uuid.UUID
	MediaType types.MediaType
	// Exclude drops lessons of this media type from the count.
	Exclude types.MediaType
}

type CourseContentSubRepo interface {
	Create(dbc dbctx.Context, s *types.CourseContentSub) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseContentSub, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CourseContentSub, error)
	ListByContent(dbc dbctx.Context, contentID uuid.UUID) ([]*types.CourseContentSub, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID, mediaType types.MediaType) ([]*types.CourseContentSub, error)
	MaxOrder(dbc dbctx.Context, courseID uuid.UUID) (int, error)
	IsValid(dbc dbctx.Context, courseID, subID uuid.UUID) (bool, error)
	Count(dbc dbctx.Context, filter SubCountFilter) (int64, error)
	CountByContent(dbc dbctx.Context, contentID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type courseContentSubRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseContentSubRepo(db *gorm.DB, baseLog *logger.Logger) CourseContentSubRepo {
	return &courseContentSubRepo{db: db, log: baseLog.With("repo", "CourseContentSubRepo")}
}

func (r *courseContentSubRepo) Create(dbc dbctx.Context, s *types.CourseContentSub) error {
	return dbc.DB(r.db).Create(s).Error
}

func (r *courseContentSubRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseContentSub, error) {
	var s types.CourseContentSub
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&s).Error; err != nil {
		return nil, err
	}
	if s.ID == uuid.Nil {
		return nil, nil
	}
	return &s, nil
}

func (r *courseContentSubRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CourseContentSub, error) {
	var out []*types.CourseContentSub
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseContentSubRepo) ListByContent(dbc dbctx.Context, contentID uuid.UUID) ([]*types.CourseContentSub, error) {
	var out []*types.CourseContentSub
	if err := dbc.DB(r.db).Where("course_content_id = ?", contentID).Order("position ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseContentSubRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID, mediaType types.MediaType) ([]*types.CourseContentSub, error) {
	q := dbc.DB(r.db).Where("course_id = ?", courseID)
	if mediaType != "" {
		q = q.Where("media_type = ?", mediaType)
	}
	var out []*types.CourseContentSub
	if err := q.Order("position ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseContentSubRepo) MaxOrder(dbc dbctx.Context, courseID uuid.UUID) (int, error) {
	var max int
	row := dbc.DB(r.db).Model(&types.CourseContentSub{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *courseContentSubRepo) IsValid(dbc dbctx.Context, courseID, subID uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).Model(&types.CourseContentSub{}).
		Where("id = ? AND course_id = ?", subID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *courseContentSubRepo) Count(dbc dbctx.Context, filter SubCountFilter) (int64, error) {
	q := dbc.DB(r.db).Model(&types.CourseContentSub{}).Where("course_id = ?", filter.CourseID)
	if filter.MediaType != "" {
		q = q.Where("media_type = ?", filter.MediaType)
	}
	if filter.Exclude != "" {
		q = q.Where("media_type <> ?", filter.Exclude)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *courseContentSubRepo) CountByContent(dbc dbctx.Context, contentID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.CourseContentSub{}).Where("course_content_id = ?", contentID).Count(&count).Error
	return count, err
}

func (r *courseContentSubRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.CourseContentSub{}).Where("id = ?", id).Updates(updates).Error
}

func (r *courseContentSubRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.CourseContentSub{}).Error
}
