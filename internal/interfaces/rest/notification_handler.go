package rest

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/domain/models"
)

// NotificationReader lists and acknowledges in-app notifications
type NotificationReader interface {
	GetMyNotifications(ctx context.Context, user *models.UserSession) ([]models.CRMNotification, error)
	MarkAsRead(ctx context.Context, id string, user *models.UserSession) error
}

type NotificationHandler struct {
	notifications NotificationReader
}

func NewNotificationHandler(notifications NotificationReader) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// GetNotifications handles GET /api/notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.notifications.GetMyNotifications(c.Request.Context(), user)
	})
}

// MarkAsRead handles POST /api/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleMessageEnvelope(c, func() (string, error) {
		return "Notification marked as read", h.notifications.MarkAsRead(c.Request.Context(), c.Param("id"), user)
	})
}
