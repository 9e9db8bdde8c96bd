package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) Signup(c *gin.Context) {
	var req services.SignupInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := uh.userService.Signup(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "signup_failed")
		return
	}
	response.RespondCreated(c, u)
}

// CreateStaff returns a handler creating a user with the given staff role.
func (uh *UserHandler) CreateStaff(role types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.StaffInput
		if !bindJSON(c, &req) {
			return
		}
		u, err := uh.userService.CreateStaff(c.Request.Context(), role, req)
		if err != nil {
			response.RespondAPIError(c, err, "create_user_failed")
			return
		}
		response.RespondCreated(c, u)
	}
}

func (uh *UserHandler) List(role types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := pageParams(c)
		if !ok {
			return
		}
		page, err := uh.userService.List(c.Request.Context(), role, c.Query("search"), p)
		if err != nil {
			response.RespondAPIError(c, err, "list_users_failed")
			return
		}
		response.RespondOK(c, page)
	}
}

func (uh *UserHandler) Get(role types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		u, err := uh.userService.GetByRole(c.Request.Context(), id, role)
		if err != nil {
			response.RespondAPIError(c, err, "get_user_failed")
			return
		}
		response.RespondOK(c, u)
	}
}

func (uh *UserHandler) ValidateHost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := uh.userService.ValidateHost(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "validate_host_failed")
		return
	}
	response.RespondOK(c, u)
}

func (uh *UserHandler) Suspend(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Suspended *bool `json:"suspended" validate:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := uh.userService.SetSuspended(c.Request.Context(), id, *req.Suspended)
	if err != nil {
		response.RespondAPIError(c, err, "suspend_failed")
		return
	}
	response.RespondOK(c, u)
}

func (uh *UserHandler) SendContactMessage(c *gin.Context) {
	var req services.ContactInput
	if !bindJSON(c, &req) {
		return
	}
	if err := uh.userService.SendContactMessage(c.Request.Context(), req); err != nil {
		response.RespondAPIError(c, err, "contact_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Message sent"})
}
