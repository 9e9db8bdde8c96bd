package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/http/middleware"
	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/services"
)

// EngagementHandler serves the enrolled-student surface: reads, assessments
// and reviews. Course-scoped routes sit behind RequireCourseAccess.
type EngagementHandler struct {
	reads   services.ReadService
	assess  services.AssessmentService
	reviews services.ReviewService
}

func NewEngagementHandler(reads services.ReadService, assess services.AssessmentService, reviews services.ReviewService) *EngagementHandler {
	return &EngagementHandler{reads: reads, assess: assess, reviews: reviews}
}

func (h *EngagementHandler) RecordRead(c *gin.Context) {
	subID, ok := pathID(c, "id")
	if !ok {
		return
	}
	read, err := h.reads.Record(c.Request.Context(), middleware.CourseID(c), subID)
	if err != nil {
		response.RespondAPIError(c, err, "record_read_failed")
		return
	}
	response.RespondCreated(c, read)
}

func (h *EngagementHandler) ListReads(c *gin.Context) {
	rows, err := h.reads.ListForCourse(c.Request.Context(), middleware.CourseID(c))
	if err != nil {
		response.RespondAPIError(c, err, "list_reads_failed")
		return
	}
	response.RespondOK(c, gin.H{"data": rows, "count": len(rows)})
}

func (h *EngagementHandler) CountReads(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondAPIError(c, apierr.Unauthorized("unauthorized", "Unauthorized"), "unauthorized")
		return
	}
	n, err := h.reads.Count(c.Request.Context(), repos.ReadCountFilter{
		CourseID:           middleware.CourseID(c),
		StudentID:          rd.UserID,
		ExcludeAssessments: c.Query("excludeAssessments") == "true",
	})
	if err != nil {
		response.RespondAPIError(c, err, "count_reads_failed")
		return
	}
	response.RespondOK(c, gin.H{"count": n})
}

func (h *EngagementHandler) Attempt(c *gin.Context) {
	var req services.AttemptInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.assess.Attempt(c.Request.Context(), middleware.CourseID(c), req)
	if err != nil {
		response.RespondAPIError(c, err, "attempt_failed")
		return
	}
	response.RespondCreated(c, out)
}

func (h *EngagementHandler) AttemptsBySub(c *gin.Context) {
	subID, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.assess.AttemptsBySub(c.Request.Context(), subID)
	if err != nil {
		response.RespondAPIError(c, err, "list_attempts_failed")
		return
	}
	response.RespondOK(c, out)
}

func (h *EngagementHandler) CourseResults(c *gin.Context) {
	rows, err := h.assess.ResultsForCourse(c.Request.Context(), middleware.CourseID(c))
	if err != nil {
		response.RespondAPIError(c, err, "list_results_failed")
		return
	}
	response.RespondOK(c, gin.H{"data": rows, "count": len(rows)})
}

// Results lists results across courses; non-staff callers only see their own.
func (h *EngagementHandler) Results(c *gin.Context) {
	p, ok := pageParams(c)
	if !ok {
		return
	}
	courseID, ok := queryID(c, "courseId")
	if !ok {
		return
	}
	studentID, ok := queryID(c, "studentId")
	if !ok {
		return
	}
	page, err := h.assess.Results(c.Request.Context(), repos.ResultFilter{CourseID: courseID, StudentID: studentID}, p)
	if err != nil {
		response.RespondAPIError(c, err, "list_results_failed")
		return
	}
	response.RespondOK(c, page)
}

func (h *EngagementHandler) CountDone(c *gin.Context) {
	n, err := h.assess.CountDone(c.Request.Context(), middleware.CourseID(c))
	if err != nil {
		response.RespondAPIError(c, err, "count_results_failed")
		return
	}
	response.RespondOK(c, gin.H{"count": n})
}

func (h *EngagementHandler) AddReview(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ReviewInput
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.AddCourseReview(c.Request.Context(), courseID, req)
	if err != nil {
		response.RespondAPIError(c, err, "add_review_failed")
		return
	}
	response.RespondCreated(c, review)
}

func (h *EngagementHandler) ViewReviews(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.reviews.ViewCourseReviews(c.Request.Context(), courseID, p)
	if err != nil {
		response.RespondAPIError(c, err, "list_reviews_failed")
		return
	}
	response.RespondOK(c, page)
}

func (h *EngagementHandler) PublicReviews(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := pageParams(c)
	if !ok {
		return
	}
	page, err := h.reviews.PublicCourseReviews(c.Request.Context(), courseID, p)
	if err != nil {
		response.RespondAPIError(c, err, "list_reviews_failed")
		return
	}
	response.RespondOK(c, page)
}

func (h *EngagementHandler) setMuted(c *gin.Context, muted bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	review, err := h.reviews.SetMuted(c.Request.Context(), id, muted)
	if err != nil {
		response.RespondAPIError(c, err, "mute_review_failed")
		return
	}
	response.RespondOK(c, review)
}

func (h *EngagementHandler) MuteReview(c *gin.Context)   { h.setMuted(c, true) }
func (h *EngagementHandler) UnmuteReview(c *gin.Context) { h.setMuted(c, false) }
