package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type NotificationHandler struct {
	notifications services.NotificationService
}

func NewNotificationHandler(notifications services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) Feed(c *gin.Context) {
	p, ok := pageParams(c)
	if !ok {
		return
	}
	read, ok := queryBool(c, "read")
	if !ok {
		return
	}
	page, err := h.notifications.Feed(c.Request.Context(), read, p)
	if err != nil {
		response.RespondAPIError(c, err, "list_notifications_failed")
		return
	}
	response.RespondOK(c, page)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	n, err := h.notifications.MarkAsRead(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "mark_notification_failed")
		return
	}
	response.RespondOK(c, n)
}
