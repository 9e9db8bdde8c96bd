package engagement

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type AssessmentAttemptRepo interface {
	CreateBatch(dbc dbctx.Context, attempts []*types.AssessmentAttempt) error
	DeleteForQuestions(dbc dbctx.Context, studentID uuid.UUID, questionIDs []uuid.UUID) error
	ListBySubAndStudent(dbc dbctx.Context, subID, studentID uuid.UUID) ([]*types.AssessmentAttempt, error)
	CountBySubAndStudent(dbc dbctx.Context, subID, studentID uuid.UUID) (int64, error)
}

type assessmentAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentAttemptRepo {
	return &assessmentAttemptRepo{db: db, log: baseLog.With("repo", "AssessmentAttemptRepo")}
}

func (r *assessmentAttemptRepo) CreateBatch(dbc dbctx.Context, attempts []*types.AssessmentAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	return dbc.DB(r.db).Omit("Question").Create(&attempts).Error
}

func (r *assessmentAttemptRepo) DeleteForQuestions(dbc dbctx.Context, studentID uuid.UUID, questionIDs []uuid.UUID) error {
	if len(questionIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Where("student_id = ? AND question_id IN ?", studentID, questionIDs).
		Delete(&types.AssessmentAttempt{}).Error
}

func (r *assessmentAttemptRepo) ListBySubAndStudent(dbc dbctx.Context, subID, studentID uuid.UUID) ([]*types.AssessmentAttempt, error) {
	var out []*types.AssessmentAttempt
	if err := dbc.DB(r.db).
		Preload("Question").
		Where("course_content_sub_id = ? AND student_id = ?", subID, studentID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assessmentAttemptRepo) CountBySubAndStudent(dbc dbctx.Context, subID, studentID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.AssessmentAttempt{}).
		Where("course_content_sub_id = ? AND student_id = ?", subID, studentID).
		Count(&count).Error
	return count, err
}

var ResultOrderColumns = map[string]string{
	"createdAt": "created_at",
	"percent":   "percent",
	"score":     "score",
}

type ResultFilter struct {
	CourseID     uuid.UUID
	StudentID    uuid.UUID
	InstructorID uuid.UUID // courses taught by this instructor
}

type AssessmentResultRepo interface {
	// Replace deletes any result for the (sub, student) pair and inserts result.
	Replace(dbc dbctx.Context, result *types.AssessmentResult) error
	GetBySubAndStudent(dbc dbctx.Context, subID, studentID uuid.UUID) (*types.AssessmentResult, error)
	ListForCourse(dbc dbctx.Context, courseID, studentID uuid.UUID) ([]*types.AssessmentResult, error)
	List(dbc dbctx.Context, filter ResultFilter, p pagination.Params) ([]*types.AssessmentResult, int64, error)
	CountDone(dbc dbctx.Context, courseID, studentID uuid.UUID) (int64, error)
}

type assessmentResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentResultRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentResultRepo {
	return &assessmentResultRepo{db: db, log: baseLog.With("repo", "AssessmentResultRepo")}
}

func (r *assessmentResultRepo) Replace(dbc dbctx.Context, result *types.AssessmentResult) error {
	db := dbc.DB(r.db)
	if err := db.
		Where("course_content_sub_id = ? AND student_id = ?", result.CourseContentSubID, result.StudentID).
		Delete(&types.AssessmentResult{}).Error; err != nil {
		return err
	}
	return db.Omit("CourseContentSub").Create(result).Error
}

func (r *assessmentResultRepo) GetBySubAndStudent(dbc dbctx.Context, subID, studentID uuid.UUID) (*types.AssessmentResult, error) {
	var res types.AssessmentResult
	if err := dbc.DB(r.db).
		Where("course_content_sub_id = ? AND student_id = ?", subID, studentID).
		Limit(1).
		Find(&res).Error; err != nil {
		return nil, err
	}
	if res.ID == uuid.Nil {
		return nil, nil
	}
	return &res, nil
}

func (r *assessmentResultRepo) ListForCourse(dbc dbctx.Context, courseID, studentID uuid.UUID) ([]*types.AssessmentResult, error) {
	q := dbc.DB(r.db).Preload("CourseContentSub").Where("course_id = ?", courseID)
	if studentID != uuid.Nil {
		q = q.Where("student_id = ?", studentID)
	}
	var out []*types.AssessmentResult
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assessmentResultRepo) List(dbc dbctx.Context, filter ResultFilter, p pagination.Params) ([]*types.AssessmentResult, int64, error) {
	q := dbc.DB(r.db).Model(&types.AssessmentResult{})
	if filter.CourseID != uuid.Nil {
		q = q.Where("course_id = ?", filter.CourseID)
	}
	if filter.StudentID != uuid.Nil {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.InstructorID != uuid.Nil {
		q = q.Where("course_id IN (?)", dbc.DB(r.db).Table("courses").Select("id").Where("instructor_id = ?", filter.InstructorID))
	}
	q = q.Session(&gorm.Session{})
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.AssessmentResult
	if err := p.Normalize(ResultOrderColumns).Apply(q.Preload("CourseContentSub"), "").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (r *assessmentResultRepo) CountDone(dbc dbctx.Context, courseID, studentID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.AssessmentResult{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error
	return count, err
}
