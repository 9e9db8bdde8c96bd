package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondAPIError(c, err, "signin_failed")
		return
	}
	response.RespondOK(c, res)
}

func (ah *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("token is required"))
		return
	}
	if err := ah.authService.VerifyEmail(c.Request.Context(), token); err != nil {
		response.RespondAPIError(c, err, "verification_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Email verified"})
}

func (ah *AuthHandler) Profile(c *gin.Context) {
	u, err := ah.authService.Profile(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "profile_failed")
		return
	}
	response.RespondOK(c, u)
}

func (ah *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := ah.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.RespondAPIError(c, err, "reset_request_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "If the account exists, a reset link has been sent"})
}

func (ah *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token           string `json:"token" validate:"required"`
		Password        string `json:"password" validate:"required,min=8,max=72"`
		ConfirmPassword string `json:"confirmPassword" validate:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := ah.authService.ResetPassword(c.Request.Context(), req.Token, req.Password, req.ConfirmPassword); err != nil {
		response.RespondAPIError(c, err, "reset_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Password reset successful"})
}

func (ah *AuthHandler) UpdatePassword(c *gin.Context) {
	var req struct {
		OldPassword     string `json:"oldPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
		ConfirmPassword string `json:"confirmPassword" validate:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := ah.authService.UpdatePassword(c.Request.Context(), req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		response.RespondAPIError(c, err, "update_password_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Password updated"})
}

func (ah *AuthHandler) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	u, err := ah.authService.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "update_profile_failed")
		return
	}
	response.RespondOK(c, u)
}

func (ah *AuthHandler) SignOut(c *gin.Context) {
	if err := ah.authService.SignOut(c.Request.Context()); err != nil {
		response.RespondAPIError(c, err, "signout_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": "Signed out"})
}
