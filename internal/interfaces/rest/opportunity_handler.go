package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/application/services"
	"github.com/rtCamp/next-crm/internal/domain/models"
)

// OpportunityManager is the opportunity and deal pipeline API
type OpportunityManager interface {
	GetOpportunity(ctx context.Context, name string, user *models.UserSession) (*models.OpportunityView, error)
	DeclareLost(ctx context.Context, name string, req services.DeclareLostRequest, user *models.UserSession) (string, error)
	UpdateDeal(ctx context.Context, req services.UpdateDealRequest, user *models.UserSession) (interface{}, error)
	CreateChecklist(ctx context.Context, docname, field, value string, user *models.UserSession) (string, error)
}

// ChecklistRequest is the body of POST /api/opportunities/:name/checklists
type ChecklistRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type OpportunityHandler struct {
	opportunities OpportunityManager
}

func NewOpportunityHandler(opportunities OpportunityManager) *OpportunityHandler {
	return &OpportunityHandler{opportunities: opportunities}
}

// GetOpportunity handles GET /api/opportunities/:name
func (h *OpportunityHandler) GetOpportunity(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.opportunities.GetOpportunity(c.Request.Context(), c.Param("name"), user)
	})
}

// DeclareLost handles POST /api/opportunities/:name/lost
func (h *OpportunityHandler) DeclareLost(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.DeclareLostRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleMessageEnvelope(c, func() (string, error) {
		return h.opportunities.DeclareLost(c.Request.Context(), c.Param("name"), req, user)
	})
}

// UpdateDeal handles POST /api/deals/update
func (h *OpportunityHandler) UpdateDeal(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateDealRequest
	HandleActionEnvelope(c, http.StatusOK, &req, func() (interface{}, error) {
		return h.opportunities.UpdateDeal(c.Request.Context(), req, user)
	})
}

// CreateChecklist handles POST /api/opportunities/:name/checklists
func (h *OpportunityHandler) CreateChecklist(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req ChecklistRequest
	HandleActionEnvelope(c, http.StatusOK, &req, func() (interface{}, error) {
		return h.opportunities.CreateChecklist(c.Request.Context(), c.Param("name"), req.Field, req.Value, user)
	})
}
