package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/http"
	httpH "github.com/yungbote/coursehub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursehub-backend/internal/http/middleware"
	"github.com/yungbote/coursehub-backend/internal/platform/idempotency"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/realtime"
)

type Middleware struct {
	Auth        *httpMW.AuthMiddleware
	Idempotency idempotency.Store
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	User         *httpH.UserHandler
	Program      *httpH.ProgramHandler
	Category     *httpH.CategoryHandler
	Course       *httpH.CourseHandler
	Content      *httpH.ContentHandler
	Question     *httpH.QuestionHandler
	Order        *httpH.OrderHandler
	Engagement   *httpH.EngagementHandler
	Notification *httpH.NotificationHandler
	Realtime     *httpH.RealtimeHandler
	Upload       *httpH.UploadHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, c *Clients, s Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(db, c.Redis),
		Auth:         httpH.NewAuthHandler(s.Auth),
		User:         httpH.NewUserHandler(s.User),
		Program:      httpH.NewProgramHandler(s.Program),
		Category:     httpH.NewCategoryHandler(s.Category),
		Course:       httpH.NewCourseHandler(s.Course, s.Access),
		Content:      httpH.NewContentHandler(s.Content, s.ContentSub),
		Question:     httpH.NewQuestionHandler(s.Question),
		Order:        httpH.NewOrderHandler(s.Order),
		Engagement:   httpH.NewEngagementHandler(s.Read, s.Assessment, s.Review),
		Notification: httpH.NewNotificationHandler(s.Notification),
		Realtime:     httpH.NewRealtimeHandler(log, hub),
		Upload:       httpH.NewUploadHandler(s.Upload),
	}
}

func wireMiddleware(log *logger.Logger, c *Clients, s Services) Middleware {
	log.Info("Wiring middleware...")
	store := idempotency.NewMemoryStore()
	if c.Redis != nil {
		store = idempotency.NewRedisStore(c.Redis, "")
	}
	return Middleware{
		Auth:        httpMW.NewAuthMiddleware(log, s.Auth),
		Idempotency: store,
	}
}

func wireRouter(log *logger.Logger, cfg Config, s Services, h Handlers, mw Middleware) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		CORSOrigins:    cfg.CORSOrigins,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Idempotency:    mw.Idempotency,
		AccessService:  s.Access,

		AuthMiddleware: mw.Auth,

		AuthHandler:         h.Auth,
		UserHandler:         h.User,
		ProgramHandler:      h.Program,
		CategoryHandler:     h.Category,
		CourseHandler:       h.Course,
		ContentHandler:      h.Content,
		QuestionHandler:     h.Question,
		OrderHandler:        h.Order,
		EngagementHandler:   h.Engagement,
		NotificationHandler: h.Notification,
		RealtimeHandler:     h.Realtime,
		UploadHandler:       h.Upload,
		HealthHandler:       h.Health,
	})
}
