package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos/catalog"
	"github.com/yungbote/coursehub-backend/internal/data/repos/commerce"
	"github.com/yungbote/coursehub-backend/internal/data/repos/engagement"
	"github.com/yungbote/coursehub-backend/internal/data/repos/identity"
	"github.com/yungbote/coursehub-backend/internal/data/repos/jobs"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type UserRepo = identity.UserRepo
type UserFilter = identity.UserFilter

type ProgramRepo = catalog.ProgramRepo
type ProgramFilter = catalog.ProgramFilter
type CategoryRepo = catalog.CategoryRepo
type CategoryFilter = catalog.CategoryFilter
type CourseRepo = catalog.CourseRepo
type CourseFilter = catalog.CourseFilter
type CourseContentRepo = catalog.CourseContentRepo
type CourseContentSubRepo = catalog.CourseContentSubRepo
type SubCountFilter = catalog.SubCountFilter
type AssessmentQuestionRepo = catalog.AssessmentQuestionRepo

type TransactionRepo = commerce.TransactionRepo
type TransactionFilter = commerce.TransactionFilter
type OrderRepo = commerce.OrderRepo
type OrderItemRepo = commerce.OrderItemRepo
type OrderedItemFilter = commerce.OrderedItemFilter

type CourseReadRepo = engagement.CourseReadRepo
type ReadCountFilter = engagement.ReadCountFilter
type AssessmentAttemptRepo = engagement.AssessmentAttemptRepo
type AssessmentResultRepo = engagement.AssessmentResultRepo
type ResultFilter = engagement.ResultFilter
type ReviewRepo = engagement.ReviewRepo
type NotificationRepo = engagement.NotificationRepo
type FeedFilter = engagement.FeedFilter

type JobRunRepo = jobs.JobRunRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return identity.NewUserRepo(db, baseLog) }

func NewProgramRepo(db *gorm.DB, baseLog *logger.Logger) ProgramRepo {
	return catalog.NewProgramRepo(db, baseLog)
}
func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, baseLog)
}
func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return catalog.NewCourseRepo(db, baseLog)
}
func NewCourseContentRepo(db *gorm.DB, baseLog *logger.Logger) CourseContentRepo {
	return catalog.NewCourseContentRepo(db, baseLog)
}
func NewCourseContentSubRepo(db *gorm.DB, baseLog *logger.Logger) CourseContentSubRepo {
	return catalog.NewCourseContentSubRepo(db, baseLog)
}
func NewAssessmentQuestionRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentQuestionRepo {
	return catalog.NewAssessmentQuestionRepo(db, baseLog)
}

func NewTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TransactionRepo {
	return commerce.NewTransactionRepo(db, baseLog)
}
func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return commerce.NewOrderRepo(db, baseLog)
}
func NewOrderItemRepo(db *gorm.DB, baseLog *logger.Logger) OrderItemRepo {
	return commerce.NewOrderItemRepo(db, baseLog)
}

func NewCourseReadRepo(db *gorm.DB, baseLog *logger.Logger) CourseReadRepo {
	return engagement.NewCourseReadRepo(db, baseLog)
}
func NewAssessmentAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentAttemptRepo {
	return engagement.NewAssessmentAttemptRepo(db, baseLog)
}
func NewAssessmentResultRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentResultRepo {
	return engagement.NewAssessmentResultRepo(db, baseLog)
}
func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return engagement.NewReviewRepo(db, baseLog)
}
func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return engagement.NewNotificationRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}
