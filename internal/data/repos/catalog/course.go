package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

var CourseOrderColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"price":     "price",
	"discount":  "discount",
}

type CourseFilter struct {
	Title        string
	CategoryID   uuid.UUID
	InstructorID uuid.UUID
	IsPublished  *bool
}

type CourseRepo interface {
	Create(dbc dbctx.Context, c *types.Course) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error)
	GetTree(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)
	TitleExistsInCategory(dbc dbctx.Context, categoryID uuid.UUID, title string, excludeID uuid.UUID) (bool, error)
	CountByCategory(dbc dbctx.Context, categoryID uuid.UUID) (int64, error)
	List(dbc dbctx.Context, filter CourseFilter, p pagination.Params) ([]*types.Course, int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(dbc dbctx.Context, c *types.Course) error {
	return dbc.DB(r.db).Create(c).Error
}

func (r *courseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	var c types.Course
	if err := dbc.DB(r.db).
		Preload("Category").
		Preload("Instructor").
		Where("id = ?", id).
		Limit(1).
		Find(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

func (r *courseRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error) {
	var out []*types.Course
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Preload("Instructor").Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetTree loads the course with its contents and their lessons in display order.
func (r *courseRepo) GetTree(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	var c types.Course
	if err := dbc.DB(r.db).
		Preload("Category").
		Preload("Instructor").
		Preload("Contents", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_content.created_at ASC")
		}).
		Preload("Contents.Subs", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_content_sub.position ASC")
		}).
		Where("id = ?", id).
		Limit(1).
		Find(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

func (r *courseRepo) TitleExistsInCategory(dbc dbctx.Context, categoryID uuid.UUID, title string, excludeID uuid.UUID) (bool, error) {
	q := dbc.DB(r.db).Model(&types.Course{}).
		Where("category_id = ? AND LOWER(title) = ?", categoryID, strings.ToLower(strings.TrimSpace(title)))
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *courseRepo) CountByCategory(dbc dbctx.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.Course{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

func (r *courseRepo) List(dbc dbctx.Context, filter CourseFilter, p pagination.Params) ([]*types.Course, int64, error) {
	q := dbc.DB(r.db).Model(&types.Course{})
	if t := strings.ToLower(strings.TrimSpace(filter.Title)); t != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+t+"%")
	}
	if filter.CategoryID != uuid.Nil {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.InstructorID != uuid.Nil {
		q = q.Where("instructor_id = ?", filter.InstructorID)
	}
	if filter.IsPublished != nil {
		q = q.Where("is_published = ?", *filter.IsPublished)
	}
	q = q.Session(&gorm.Session{})
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Course
	if err := p.Normalize(CourseOrderColumns).
		Apply(q.Preload("Category").Preload("Instructor"), "").
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (r *courseRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Course{}).Where("id = ?", id).Updates(updates).Error
}

func (r *courseRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Course{}).Error
}
