package engagement

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type ReadCountFilter struct {
	CourseID           uuid.UUID
	StudentID          uuid.UUID
	ExcludeAssessments bool
}

type CourseReadRepo interface {
	Create(dbc dbctx.Context, read *types.CourseRead) error
	Exists(dbc dbctx.Context, subID, studentID uuid.UUID) (bool, error)
	ListForCourse(dbc dbctx.Context, courseID, studentID uuid.UUID) ([]*types.CourseRead, error)
	Count(dbc dbctx.Context, filter ReadCountFilter) (int64, error)
}

type courseReadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseReadRepo(db *gorm.DB, baseLog *logger.Logger) CourseReadRepo {
	return &courseReadRepo{db: db, log: baseLog.With("repo", "CourseReadRepo")}
}

func (r *courseReadRepo) Create(dbc dbctx.Context, read *types.CourseRead) error {
	return dbc.DB(r.db).Create(read).Error
}

func (r *courseReadRepo) Exists(dbc dbctx.Context, subID, studentID uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).Model(&types.CourseRead{}).
		Where("course_content_sub_id = ? AND student_id = ?", subID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *courseReadRepo) ListForCourse(dbc dbctx.Context, courseID, studentID uuid.UUID) ([]*types.CourseRead, error) {
	q := dbc.DB(r.db).Where("course_id = ?", courseID)
	if studentID != uuid.Nil {
		q = q.Where("student_id = ?", studentID)
	}
	var out []*types.CourseRead
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseReadRepo) Count(dbc dbctx.Context, filter ReadCountFilter) (int64, error) {
	q := dbc.DB(r.db).Model(&types.CourseRead{}).Where("course_read.course_id = ?", filter.CourseID)
	if filter.StudentID != uuid.Nil {
		q = q.Where("course_read.student_id = ?", filter.StudentID)
	}
	if filter.ExcludeAssessments {
		q = q.Joins("JOIN course_content_sub ON course_content_sub.id = course_read.course_content_sub_id").
			Where("course_content_sub.media_type <> ?", types.MediaAssessment)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
