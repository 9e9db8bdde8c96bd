package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type Repos struct {
	User               repos.UserRepo
	Program            repos.ProgramRepo
	Category           repos.CategoryRepo
	Course             repos.CourseRepo
	CourseContent      repos.CourseContentRepo
	CourseContentSub   repos.CourseContentSubRepo
	AssessmentQuestion repos.AssessmentQuestionRepo
	Transaction        repos.TransactionRepo
	Order              repos.OrderRepo
	OrderItem          repos.OrderItemRepo
	CourseRead         repos.CourseReadRepo
	AssessmentAttempt  repos.AssessmentAttemptRepo
	AssessmentResult   repos.AssessmentResultRepo
	Review             repos.ReviewRepo
	Notification       repos.NotificationRepo
	JobRun             repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:               repos.NewUserRepo(db, log),
		Program:            repos.NewProgramRepo(db, log),
		Category:           repos.NewCategoryRepo(db, log),
		Course:             repos.NewCourseRepo(db, log),
		CourseContent:      repos.NewCourseContentRepo(db, log),
		CourseContentSub:   repos.NewCourseContentSubRepo(db, log),
		AssessmentQuestion: repos.NewAssessmentQuestionRepo(db, log),
		Transaction:        repos.NewTransactionRepo(db, log),
		Order:              repos.NewOrderRepo(db, log),
		OrderItem:          repos.NewOrderItemRepo(db, log),
		CourseRead:         repos.NewCourseReadRepo(db, log),
		AssessmentAttempt:  repos.NewAssessmentAttemptRepo(db, log),
		AssessmentResult:   repos.NewAssessmentResultRepo(db, log),
		Review:             repos.NewReviewRepo(db, log),
		Notification:       repos.NewNotificationRepo(db, log),
		JobRun:             repos.NewJobRunRepo(db, log),
	}
}
