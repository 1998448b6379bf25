package rest

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/domain/models"
)

// RecordDeleter deletes leads and opportunities
type RecordDeleter interface {
	Delete(ctx context.Context, doctype, name string, user *models.UserSession) error
}

type RecordHandler struct {
	records RecordDeleter
}

func NewRecordHandler(records RecordDeleter) *RecordHandler {
	return &RecordHandler{records: records}
}

// DeleteRecord handles DELETE /api/records/:doctype/:name
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	doctype := c.Param("doctype")
	HandleDeleteEnvelope(c, doctype+" deleted successfully", func() error {
		return h.records.Delete(c.Request.Context(), doctype, c.Param("name"), user)
	})
}
