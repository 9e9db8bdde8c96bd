package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type AssessmentQuestionRepo interface {
	Create(dbc dbctx.Context, q *types.AssessmentQuestion) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AssessmentQuestion, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.AssessmentQuestion, error)
	ListBySub(dbc dbctx.Context, subID uuid.UUID, publishedOnly bool) ([]*types.AssessmentQuestion, error)
	QuestionExists(dbc dbctx.Context, subID uuid.UUID, question string, excludeID uuid.UUID) (bool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type assessmentQuestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentQuestionRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentQuestionRepo {
	return &assessmentQuestionRepo{db: db, log: baseLog.With("repo", "AssessmentQuestionRepo")}
}

func (r *assessmentQuestionRepo) Create(dbc dbctx.Context, q *types.AssessmentQuestion) error {
	return dbc.DB(r.db).Create(q).Error
}

func (r *assessmentQuestionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AssessmentQuestion, error) {
	var q types.AssessmentQuestion
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&q).Error; err != nil {
		return nil, err
	}
	if q.ID == uuid.Nil {
		return nil, nil
	}
	return &q, nil
}

func (r *assessmentQuestionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.AssessmentQuestion, error) {
	var out []*types.AssessmentQuestion
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assessmentQuestionRepo) ListBySub(dbc dbctx.Context, subID uuid.UUID, publishedOnly bool) ([]*types.AssessmentQuestion, error) {
	q := dbc.DB(r.db).Where("course_content_sub_id = ?", subID)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var out []*types.AssessmentQuestion
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assessmentQuestionRepo) QuestionExists(dbc dbctx.Context, subID uuid.UUID, question string, excludeID uuid.UUID) (bool, error) {
	q := dbc.DB(r.db).Model(&types.AssessmentQuestion{}).
		Where("course_content_sub_id = ? AND LOWER(question) = ?", subID, strings.ToLower(strings.TrimSpace(question)))
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *assessmentQuestionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.AssessmentQuestion{}).Where("id = ?", id).Updates(updates).Error
}

func (r *assessmentQuestionRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.AssessmentQuestion{}).Error
}
