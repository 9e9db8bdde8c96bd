package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/http/middleware"
	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type CourseHandler struct {
	courses services.CourseService
	access  services.AccessService
}

func NewCourseHandler(courses services.CourseService, access services.AccessService) *CourseHandler {
	return &CourseHandler{courses: courses, access: access}
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req services.CourseInput
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "create_course_failed")
		return
	}
	response.RespondCreated(c, services.NewCourseView(course))
}

func courseFilter(c *gin.Context) (repos.CourseFilter, bool) {
	categoryID, ok := queryID(c, "categoryId")
	if !ok {
		return repos.CourseFilter{}, false
	}
	instructorID, ok := queryID(c, "instructorId")
	if !ok {
		return repos.CourseFilter{}, false
	}
	published, ok := queryBool(c, "isPublished")
	if !ok {
		return repos.CourseFilter{}, false
	}
	return repos.CourseFilter{
		Title:        c.Query("title"),
		CategoryID:   categoryID,
		InstructorID: instructorID,
		IsPublished:  published,
	}, true
}

type courseLister func(c *gin.Context, filter repos.CourseFilter, p pagination.Params) (pagination.Page[services.CourseView], error)

func (h *CourseHandler) list(c *gin.Context, fn courseLister) {
	p, ok := pageParams(c)
	if !ok {
		return
	}
	filter, ok := courseFilter(c)
	if !ok {
		return
	}
	page, err := fn(c, filter, p)
	if err != nil {
		response.RespondAPIError(c, err, "list_courses_failed")
		return
	}
	response.RespondOK(c, page)
}

func (h *CourseHandler) List(c *gin.Context) {
	h.list(c, func(c *gin.Context, f repos.CourseFilter, p pagination.Params) (pagination.Page[services.CourseView], error) {
		return h.courses.List(c.Request.Context(), f, p)
	})
}

func (h *CourseHandler) ListForInstructor(c *gin.Context) {
	h.list(c, func(c *gin.Context, f repos.CourseFilter, p pagination.Params) (pagination.Page[services.CourseView], error) {
		return h.courses.ListForInstructor(c.Request.Context(), f, p)
	})
}

func (h *CourseHandler) FetchPublished(c *gin.Context) {
	h.list(c, func(c *gin.Context, f repos.CourseFilter, p pagination.Params) (pagination.Page[services.CourseView], error) {
		return h.courses.FetchPublished(c.Request.Context(), f, p)
	})
}

func (h *CourseHandler) byID(c *gin.Context, code string, fn func(id uuid.UUID) (any, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := fn(id)
	if err != nil {
		response.RespondAPIError(c, err, code)
		return
	}
	response.RespondOK(c, out)
}

func (h *CourseHandler) Get(c *gin.Context) {
	h.byID(c, "get_course_failed", func(id uuid.UUID) (any, error) { return h.courses.Get(c.Request.Context(), id) })
}

func (h *CourseHandler) GetForInstructor(c *gin.Context) {
	h.byID(c, "get_course_failed", func(id uuid.UUID) (any, error) { return h.courses.GetForInstructor(c.Request.Context(), id) })
}

func (h *CourseHandler) PublicDetail(c *gin.Context) {
	h.byID(c, "get_course_failed", func(id uuid.UUID) (any, error) { return h.courses.PublicDetail(c.Request.Context(), id) })
}

// VerifiedDetail serves the course authorized by RequireCourseAccess.
func (h *CourseHandler) VerifiedDetail(c *gin.Context) {
	detail, err := h.courses.VerifiedDetail(c.Request.Context(), middleware.CourseID(c))
	if err != nil {
		response.RespondAPIError(c, err, "get_course_failed")
		return
	}
	response.RespondOK(c, detail)
}

func (h *CourseHandler) OrderedCourseDetail(c *gin.Context) {
	h.byID(c, "get_course_failed", func(id uuid.UUID) (any, error) { return h.access.OrderedCourseDetail(c.Request.Context(), id) })
}

func (h *CourseHandler) PurchasedCourses(c *gin.Context) {
	out, err := h.access.PurchasedCourses(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "list_courses_failed")
		return
	}
	response.RespondOK(c, gin.H{"data": out, "count": len(out)})
}

func (h *CourseHandler) update(c *gin.Context, instructor bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.CourseUpdate
	if !bindJSON(c, &req) {
		return
	}
	var (
		view *services.CourseView
		err  error
	)
	if instructor {
		view, err = h.courses.UpdateForInstructor(c.Request.Context(), id, req)
	} else {
		view, err = h.courses.Update(c.Request.Context(), id, req)
	}
	if err != nil {
		response.RespondAPIError(c, err, "update_course_failed")
		return
	}
	response.RespondOK(c, view)
}

func (h *CourseHandler) Update(c *gin.Context)              { h.update(c, false) }
func (h *CourseHandler) UpdateForInstructor(c *gin.Context) { h.update(c, true) }

func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.courses.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err, "delete_course_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Course deleted"})
}
