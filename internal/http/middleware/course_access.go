package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/services"
)

const courseIDKey = "course_id"

// RequireCourseAccess checks the Course-Request-Id header against the caller's
// confirmed purchases. When subParam names a path parameter, that lesson must
// belong to the course.
func RequireCourseAccess(access services.AccessService, subParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subID := uuid.Nil
		if subParam != "" {
			id, err := uuid.Parse(c.Param(subParam))
			if err != nil {
				response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "invalid_id", err), "invalid_id")
				c.Abort()
				return
			}
			subID = id
		}
		courseID, err := access.AuthorizeStudentCourse(c.Request.Context(), c.GetHeader(services.CourseRequestHeader), subID)
		if err != nil {
			response.RespondAPIError(c, err, "course_access_failed")
			c.Abort()
			return
		}
		c.Set(courseIDKey, courseID)
		c.Next()
	}
}

// CourseID returns the course authorized by RequireCourseAccess.
func CourseID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(courseIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
