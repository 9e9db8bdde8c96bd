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

var TitleOrderColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
}

type ProgramFilter struct {
	Title       string
	IsPublished *bool
}

type ProgramRepo interface {
	Create(dbc dbctx.Context, p *types.Program) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Program, error)
	GetByTitle(dbc dbctx.Context, title string) (*types.Program, error)
	TitleExists(dbc dbctx.Context, title string, excludeID uuid.UUID) (bool, error)
	List(dbc dbctx.Context, filter ProgramFilter, p pagination.Params) ([]*types.Program, int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type programRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgramRepo(db *gorm.DB, baseLog *logger.Logger) ProgramRepo {
	return &programRepo{db: db, log: baseLog.With("repo", "ProgramRepo")}
}

func (r *programRepo) Create(dbc dbctx.Context, p *types.Program) error {
	return dbc.DB(r.db).Create(p).Error
}

func (r *programRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Program, error) {
	var p types.Program
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	return &p, nil
}

func (r *programRepo) GetByTitle(dbc dbctx.Context, title string) (*types.Program, error) {
	var p types.Program
	if err := dbc.DB(r.db).Where("LOWER(title) = ?", strings.ToLower(strings.TrimSpace(title))).Limit(1).Find(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	return &p, nil
}

func (r *programRepo) TitleExists(dbc dbctx.Context, title string, excludeID uuid.UUID) (bool, error) {
	q := dbc.DB(r.db).Model(&types.Program{}).Where("LOWER(title) = ?", strings.ToLower(strings.TrimSpace(title)))
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *programRepo) List(dbc dbctx.Context, filter ProgramFilter, p pagination.Params) ([]*types.Program, int64, error) {
	q := dbc.DB(r.db).Model(&types.Program{})
	if t := strings.ToLower(strings.TrimSpace(filter.Title)); t != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+t+"%")
	}
	if filter.IsPublished != nil {
		q = q.Where("is_published = ?", *filter.IsPublished)
	}
	q = q.Session(&gorm.Session{})
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Program
	if err := p.Normalize(TitleOrderColumns).Apply(q, "").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (r *programRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Program{}).Where("id = ?", id).Updates(updates).Error
}

func (r *programRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Program{}).Error
}

type CategoryFilter struct {
	ProgramID   uuid.UUID
	Title       string
	IsPublished *bool
}

type CategoryRepo interface {
	Create(dbc dbctx.Context, c *types.Category) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Category, error)
	GetByTitle(dbc dbctx.Context, programID uuid.UUID, title string) (*types.Category, error)
	TitleExists(dbc dbctx.Context, programID uuid.UUID, title string, excludeID uuid.UUID) (bool, error)
	CountByProgram(dbc dbctx.Context, programID uuid.UUID) (int64, error)
	List(dbc dbctx.Context, filter CategoryFilter, p pagination.Params) ([]*types.Category, int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) Create(dbc dbctx.Context, c *types.Category) error {
	return dbc.DB(r.db).Create(c).Error
}

func (r *categoryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Category, error) {
	var c types.Category
	if err := dbc.DB(r.db).Preload("Program").Where("id = ?", id).Limit(1).Find(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

func (r *categoryRepo) GetByTitle(dbc dbctx.Context, programID uuid.UUID, title string) (*types.Category, error) {
	var c types.Category
	if err := dbc.DB(r.db).
		Where("program_id = ? AND LOWER(title) = ?", programID, strings.ToLower(strings.TrimSpace(title))).
		Limit(1).Find(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

func (r *categoryRepo) TitleExists(dbc dbctx.Context, programID uuid.UUID, title string, excludeID uuid.UUID) (bool, error) {
	q := dbc.DB(r.db).Model(&types.Category{}).
		Where("program_id = ? AND LOWER(title) = ?", programID, strings.ToLower(strings.TrimSpace(title)))
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepo) CountByProgram(dbc dbctx.Context, programID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.Category{}).Where("program_id = ?", programID).Count(&count).Error
	return count, err
}

func (r *categoryRepo) List(dbc dbctx.Context, filter CategoryFilter, p pagination.Params) ([]*types.Category, int64, error) {
	q := dbc.DB(r.db).Model(&types.Category{})
	if filter.ProgramID != uuid.Nil {
		q = q.Where("program_id = ?", filter.ProgramID)
	}
	if t := strings.ToLower(strings.TrimSpace(filter.Title)); t != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+t+"%")
	}
	if filter.IsPublished != nil {
		q = q.Where("is_published = ?", *filter.IsPublished)
	}
	q = q.Session(&gorm.Session{})
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Category
	if err := p.Normalize(TitleOrderColumns).Apply(q.Preload("Program"), "").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (r *categoryRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Category{}).Where("id = ?", id).Updates(updates).Error
}

func (r *categoryRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Category{}).Error
}
