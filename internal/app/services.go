package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/jobs/mailjob"
	jobruntime "github.com/yungbote/coursehub-backend/internal/jobs/runtime"
	"github.com/yungbote/coursehub-backend/internal/jobs/schedule"
	"github.com/yungbote/coursehub-backend/internal/jobs/worker"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/realtime"
	"github.com/yungbote/coursehub-backend/internal/services"
	"github.com/yungbote/coursehub-backend/internal/temporalx/maildelivery"
	"github.com/yungbote/coursehub-backend/internal/temporalx/temporalworker"
)

type Services struct {
	Auth         services.AuthService
	User         services.UserService
	Program      services.ProgramService
	Category     services.CategoryService
	Course       services.CourseService
	Content      services.ContentService
	ContentSub   services.ContentSubService
	Question     services.QuestionService
	Order        services.OrderService
	Access       services.AccessService
	Read         services.ReadService
	Assessment   services.AssessmentService
	Review       services.ReviewService
	Notification services.NotificationService
	Upload       services.UploadService
	Mailer       services.Mailer
	Outbox       services.MailOutbox

	JobWorker      *worker.Worker
	OrderSweeper   *schedule.Sweeper
	TemporalWorker *temporalworker.Runner
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c *Clients, publisher realtime.Publisher) (Services, error) {
	log.Info("Wiring services...")

	templates := services.MailTemplates{AppName: cfg.AppName, BaseURL: cfg.AppBaseURL}
	tokens := services.NewTokens(cfg.JWTSecretKey)
	outbox := services.NewMailOutbox(log, r.JobRun)

	var mailer services.Mailer
	if c.SendGrid != nil {
		mailer = services.NewSendGridMailer(log, c.SendGrid, cfg.SendGrid.DefaultFromEmail, cfg.SendGrid.DefaultFromName)
	} else {
		mailer = services.NewLogMailer(log)
	}

	avatars, err := services.NewAvatarService(log, c.Bucket)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	notifications := services.NewNotificationService(log, r.Notification, publisher)
	courses := services.NewCourseService(log, r.Course, r.Category, r.User, r.OrderItem)

	s := Services{
		Auth: services.NewAuthService(db, log, r.User, tokens, outbox, templates, services.AuthConfig{
			AccessTTL: cfg.AccessTokenTTL,
			ResetTTL:  cfg.ResetTokenTTL,
			VerifyTTL: cfg.VerifyTokenTTL,
		}),
		User:       services.NewUserService(db, log, r.User, avatars, tokens, outbox, templates, cfg.VerifyTokenTTL, cfg.ContactEmail),
		Program:    services.NewProgramService(log, r.Program, r.Category),
		Category:   services.NewCategoryService(log, r.Program, r.Category, r.Course),
		Course:     courses,
		Content:    services.NewContentService(log, courses, r.CourseContent, r.CourseContentSub),
		ContentSub: services.NewContentSubService(db, log, courses, r.CourseContent, r.CourseContentSub),
		Question:   services.NewQuestionService(log, courses, r.CourseContentSub, r.AssessmentQuestion, r.OrderItem),
		Order: services.NewOrderService(db, log, services.OrderConfig{TaxRate: cfg.TaxRatePercent, Currency: cfg.Currency}, services.OrderDeps{
			Gateways:      c.Gateways,
			Courses:       r.Course,
			Users:         r.User,
			Transactions:  r.Transaction,
			Orders:        r.Order,
			Items:         r.OrderItem,
			Subs:          r.CourseContentSub,
			Reads:         r.CourseRead,
			Results:       r.AssessmentResult,
			Notifications: notifications,
			Outbox:        outbox,
			Templates:     templates,
		}),
		Access:       services.NewAccessService(log, courses, r.OrderItem, r.CourseContentSub, r.CourseRead, r.AssessmentResult),
		Read:         services.NewReadService(log, r.CourseRead, r.CourseContentSub),
		Assessment:   services.NewAssessmentService(db, log, r.Course, r.CourseContentSub, r.AssessmentQuestion, r.AssessmentAttempt, r.AssessmentResult, notifications),
		Review:       services.NewReviewService(db, log, courses, r.Course, r.Review, r.OrderItem, notifications),
		Notification: notifications,
		Upload:       services.NewUploadService(log, c.Bucket, c.Moderator),
		Mailer:       mailer,
		Outbox:       outbox,
	}

	var dispatcher maildelivery.Dispatcher
	if c.Temporal != nil {
		dispatcher = maildelivery.NewDispatcher(c.Temporal, cfg.Temporal.TaskQueue)
		runner, err := temporalworker.NewRunner(log, c.Temporal, cfg.Temporal, mailer)
		if err != nil {
			return Services{}, fmt.Errorf("init temporal worker: %w", err)
		}
		s.TemporalWorker = runner
	}

	registry := jobruntime.NewRegistry()
	if err := registry.Register(mailjob.New(log, mailer, dispatcher)); err != nil {
		return Services{}, fmt.Errorf("register mail job: %w", err)
	}
	s.JobWorker = worker.NewWorker(log, r.JobRun, registry, cfg.Worker)

	sweeper, err := schedule.NewSweeper(log, s.Order, cfg.OrderExpirySchedule, cfg.OrderPendingTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init order sweeper: %w", err)
	}
	s.OrderSweeper = sweeper

	return s, nil
}
