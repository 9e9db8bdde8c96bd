package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	httpH "github.com/yungbote/coursehub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursehub-backend/internal/http/middleware"
	"github.com/yungbote/coursehub-backend/internal/platform/idempotency"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	IdempotencyTTL time.Duration
	Idempotency    idempotency.Store
	AccessService  services.AccessService

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler         *httpH.AuthHandler
	UserHandler         *httpH.UserHandler
	ProgramHandler      *httpH.ProgramHandler
	CategoryHandler     *httpH.CategoryHandler
	CourseHandler       *httpH.CourseHandler
	ContentHandler      *httpH.ContentHandler
	QuestionHandler     *httpH.QuestionHandler
	OrderHandler        *httpH.OrderHandler
	EngagementHandler   *httpH.EngagementHandler
	NotificationHandler *httpH.NotificationHandler
	RealtimeHandler     *httpH.RealtimeHandler
	UploadHandler       *httpH.UploadHandler
	HealthHandler       *httpH.HealthHandler
}

const (
	admin      = types.RoleAdmin
	subAdmin   = types.RoleSubAdmin
	instructor = types.RoleInstructor
	student    = types.RoleStudent
)

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(httpMW.Recovery(cfg.Log))
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	registerPublic(api, cfg)

	protected := api.Group("")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	roles := httpMW.RequireRoles

	idem := func(c *gin.Context) { c.Next() }
	if cfg.Idempotency != nil {
		idem = httpMW.Idempotency(cfg.Log, cfg.Idempotency, cfg.IdempotencyTTL)
	}
	courseAccess := func(subParam string) gin.HandlerFunc {
		return httpMW.RequireCourseAccess(cfg.AccessService, subParam)
	}

	// Auth
	if h := cfg.AuthHandler; h != nil {
		g := protected.Group("/auth")
		g.GET("/profile", h.Profile)
		g.PATCH("/profile", h.UpdateProfile)
		g.PATCH("/update-password", h.UpdatePassword)
		g.POST("/signout", h.SignOut)
	}

	// Users
	if h := cfg.UserHandler; h != nil {
		g := protected.Group("/user")
		g.POST("/sub-admin", roles(admin), h.CreateStaff(subAdmin))
		g.POST("/instructor", roles(admin), h.CreateStaff(instructor))
		g.GET("/sub-admins", roles(admin), h.List(subAdmin))
		g.GET("/instructors", roles(admin), h.List(instructor))
		g.GET("/students", roles(admin), h.List(student))
		g.GET("/sub-admin/:id", roles(admin), h.Get(subAdmin))
		g.GET("/instructor/:id", roles(admin), h.Get(instructor))
		g.GET("/student/:id", roles(admin), h.Get(student))
		g.PATCH("/validate-host/:id", roles(admin, subAdmin), h.ValidateHost)
		g.PATCH("/suspend/:id", roles(admin), h.Suspend)
	}

	// Programs and categories
	if h := cfg.ProgramHandler; h != nil {
		g := protected.Group("/programs")
		g.POST("", roles(admin), h.Create)
		g.GET("", roles(admin), h.List)
		g.GET("/fetch", roles(student, instructor), h.ListPublished)
		g.GET("/:id", roles(admin), h.Get)
		g.PATCH("/:id", roles(admin), h.Update)
		g.DELETE("/:id", roles(admin), h.Delete)
	}
	if h := cfg.CategoryHandler; h != nil {
		g := protected.Group("/categories")
		g.POST("", roles(admin), h.Create)
		g.GET("", roles(admin), h.List)
		g.GET("/fetch", roles(student, instructor), h.ListPublished)
		g.GET("/:id", roles(admin), h.Get)
		g.PATCH("/:id", roles(admin), h.Update)
		g.DELETE("/:id", roles(admin), h.Delete)
	}

	// Courses
	if h := cfg.CourseHandler; h != nil {
		g := protected.Group("/courses")
		g.POST("", roles(admin, instructor), h.Create)
		g.GET("", roles(admin), h.List)
		g.GET("/instructor", roles(instructor), h.ListForInstructor)
		g.GET("/fetch", roles(student), h.FetchPublished)
		g.GET("/purchased", roles(student), h.PurchasedCourses)
		g.GET("/ordered/:id", roles(student), h.OrderedCourseDetail)
		g.GET("/verified", roles(student), courseAccess(""), h.VerifiedDetail)
		g.GET("/instructor/:id", roles(admin, instructor), h.GetForInstructor)
		g.GET("/:id", roles(admin), h.Get)
		g.PATCH("/instructor/:id", roles(instructor), h.UpdateForInstructor)
		g.PATCH("/:id", roles(admin), h.Update)
		g.DELETE("/:id", roles(admin, instructor), h.Delete)
	}

	// Course contents, lessons and questions
	if h := cfg.ContentHandler; h != nil {
		g := protected.Group("/course-content")
		g.POST("", roles(admin, instructor), h.Create)
		g.GET("/course/:id", roles(admin, instructor), h.ListByCourse)
		g.GET("/:id", roles(admin, instructor), h.Get)
		g.PATCH("/:id", roles(admin, instructor), h.Update)
		g.DELETE("/:id", roles(admin, instructor), h.Delete)

		s := protected.Group("/course-content-sub")
		s.POST("", roles(admin, instructor), h.CreateSub)
		s.GET("/content/:id", roles(admin, instructor), h.ListSubs)
		s.GET("/count/:id", roles(admin, instructor), h.CountSubs)
		s.PUT("/reorder/:id", roles(admin, instructor), h.ReorderSubs)
		s.GET("/:id", roles(admin, instructor), h.GetSub)
		s.PATCH("/instructor/:id", roles(instructor), h.UpdateSubForInstructor)
		s.PATCH("/:id", roles(admin), h.UpdateSub)
		s.DELETE("/:id", roles(admin, instructor), h.DeleteSub)
	}
	if h := cfg.QuestionHandler; h != nil {
		g := protected.Group("/assessment-questions")
		g.POST("", roles(admin, instructor), h.Add)
		g.GET("/sub/:id", roles(admin, instructor), h.List)
		g.GET("/student/:id", roles(student), courseAccess("id"), h.ListForStudent)
		g.GET("/:id", roles(admin, instructor), h.Get)
		g.PATCH("/:id", roles(admin, instructor), h.Update)
		g.DELETE("/:id", roles(admin, instructor), h.Delete)
	}

	// Orders
	if h := cfg.OrderHandler; h != nil {
		g := protected.Group("/order")
		g.POST("", roles(student), idem, h.Create)
		g.POST("/confirm/:ref", roles(student), idem, h.Confirm)
		g.PATCH("/cancel/:ref", roles(student), idem, h.CancelForStudent)
		g.PATCH("/admin/cancel/:ref", roles(admin, subAdmin), idem, h.CancelForAdmin)
		g.GET("/transactions", roles(student, admin, subAdmin), h.ListTransactions)
		g.GET("/transactions/:id", roles(student, admin, subAdmin), h.TransactionDetail)
		g.GET("/ordered-items", roles(instructor, admin, subAdmin), h.ListOrderedItems)
		g.GET("/ordered-items/:id", roles(instructor, admin, subAdmin), h.OrderedItemDetail)
	}

	// Engagement
	if h := cfg.EngagementHandler; h != nil {
		rd := protected.Group("/course-read", roles(student))
		rd.POST("/:id", courseAccess("id"), h.RecordRead)
		rd.GET("", courseAccess(""), h.ListReads)
		rd.GET("/count", courseAccess(""), h.CountReads)

		as := protected.Group("/assessments")
		as.POST("/attempt", roles(student), courseAccess(""), h.Attempt)
		as.GET("/attempts/:id", roles(student), courseAccess("id"), h.AttemptsBySub)
		as.GET("/results/course", roles(student), courseAccess(""), h.CourseResults)
		as.GET("/results/count", roles(student), courseAccess(""), h.CountDone)
		as.GET("/results", roles(student, instructor, admin, subAdmin), h.Results)

		rv := protected.Group("/reviews")
		rv.POST("/course/:id", roles(student), h.AddReview)
		rv.GET("/course/:id", roles(instructor, admin), h.ViewReviews)
		rv.PATCH("/mute/:id", roles(instructor, admin), h.MuteReview)
		rv.PATCH("/unmute/:id", roles(instructor, admin), h.UnmuteReview)
	}

	// Notifications
	if h := cfg.NotificationHandler; h != nil {
		protected.GET("/notifications", h.Feed)
		protected.PATCH("/notifications/:id/read", h.MarkAsRead)
	}
	if h := cfg.RealtimeHandler; h != nil {
		protected.GET("/notifications/stream", h.Stream)
	}

	if h := cfg.UploadHandler; h != nil {
		protected.POST("/upload/:kind", h.Upload)
	}

	return r
}

func registerPublic(api *gin.RouterGroup, cfg RouterConfig) {
	if h := cfg.AuthHandler; h != nil {
		api.POST("/auth/signin", h.SignIn)
		api.GET("/auth/verify-email", h.VerifyEmail)
		api.POST("/auth/reset-password-request", h.RequestPasswordReset)
		api.POST("/auth/reset-password", h.ResetPassword)
	}
	if h := cfg.UserHandler; h != nil {
		api.POST("/user/client/signup", h.Signup)
		api.POST("/user/send-contact-message", h.SendContactMessage)
	}
	if h := cfg.ProgramHandler; h != nil {
		api.GET("/programs/public", h.ListPublished)
	}
	if h := cfg.CategoryHandler; h != nil {
		api.GET("/categories/public", h.ListPublished)
	}
	if h := cfg.CourseHandler; h != nil {
		api.GET("/course-content/public/:id", h.PublicDetail)
	}
	if h := cfg.EngagementHandler; h != nil {
		api.GET("/reviews/fetch-course-reviews/:id", h.PublicReviews)
	}
}
