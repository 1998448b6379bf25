package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/application/services"
	"github.com/rtCamp/next-crm/internal/domain/models"
)

// LeadConverter carries a lead over to its opportunity
type LeadConverter interface {
	Convert(ctx context.Context, lead, opportunity string, user *models.UserSession) (*services.ConversionResult, error)
}

// ConvertLeadRequest is the body of POST /api/leads/:name/convert
type ConvertLeadRequest struct {
	Opportunity string `json:"opportunity" binding:"required"`
}

type LeadHandler struct {
	conversion LeadConverter
}

func NewLeadHandler(conversion LeadConverter) *LeadHandler {
	return &LeadHandler{conversion: conversion}
}

// Convert handles POST /api/leads/:name/convert
func (h *LeadHandler) Convert(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req ConvertLeadRequest
	HandleActionEnvelope(c, http.StatusOK, &req, func() (interface{}, error) {
		return h.conversion.Convert(c.Request.Context(), c.Param("name"), req.Opportunity, user)
	})
}
