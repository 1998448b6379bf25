package rest

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/domain/models"
)

// ActivityReader builds record timelines
type ActivityReader interface {
	GetActivities(ctx context.Context, name string, user *models.UserSession) (*models.Timeline, error)
}

type ActivityHandler struct {
	activities ActivityReader
}

func NewActivityHandler(activities ActivityReader) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// GetActivities handles GET /api/activities/:name
func (h *ActivityHandler) GetActivities(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.activities.GetActivities(c.Request.Context(), c.Param("name"), user)
	})
}
