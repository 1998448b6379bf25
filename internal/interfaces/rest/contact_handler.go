package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/domain/models"
)

// ContactManager is the contacts API
type ContactManager interface {
	GetContact(ctx context.Context, name string) (*models.Contact, error)
	GetContactByEmail(ctx context.Context, email string, user *models.UserSession) (*models.Contact, error)
	GetLinkedDocs(ctx context.Context, contact, doctype string) ([]string, error)
	GetLinkedOpportunities(ctx context.Context, contact string) ([]models.Opportunity, error)
	GetLinkedCustomers(ctx context.Context, contact string, user *models.UserSession) ([]models.Customer, error)
	GetLinkedLeads(ctx context.Context, contact string, user *models.UserSession) ([]models.Lead, error)
	CreateNew(ctx context.Context, contact, field, value string, user *models.UserSession) error
	SetAsPrimary(ctx context.Context, contact, field, value string, user *models.UserSession) error
	SearchEmails(ctx context.Context, txt string, user *models.UserSession) ([][]string, error)
	GetLinkedContact(ctx context.Context, doctype, name string) ([]string, error)
	LinkContactToDoc(ctx context.Context, contact, doctype, docname string, user *models.UserSession) (string, error)
	RemoveLinkFromContact(ctx context.Context, contact, doctype, docname string, user *models.UserSession) (string, error)
	GetLeadOpportunityContacts(ctx context.Context, doctype, docname string) ([]models.LinkedContact, error)
	SetOpportunityPrimaryContact(ctx context.Context, docname, contact string, user *models.UserSession) (bool, error)
}

// ContactValueRequest is the body of the contact value endpoints
type ContactValueRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// ContactLinkRequest is the body of POST /api/contacts/:name/links
type ContactLinkRequest struct {
	Doctype string `json:"doctype" binding:"required"`
	Docname string `json:"docname" binding:"required"`
}

// PrimaryContactRequest is the body of POST /api/opportunities/:name/primary-contact
type PrimaryContactRequest struct {
	Contact string `json:"contact"`
}

type ContactHandler struct {
	contacts ContactManager
}

func NewContactHandler(contacts ContactManager) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// GetContact handles GET /api/contacts/:name
func (h *ContactHandler) GetContact(c *gin.Context) {
	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.contacts.GetContact(c.Request.Context(), c.Param("name"))
	})
}

// GetContactByEmail handles GET /api/contacts/by-email?email=
func (h *ContactHandler) GetContactByEmail(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.contacts.GetContactByEmail(c.Request.Context(), c.Query("email"), user)
	})
}

// SearchEmails handles GET /api/contacts/search-emails?txt=
func (h *ContactHandler) SearchEmails(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.contacts.SearchEmails(c.Request.Context(), c.Query("txt"), user)
	})
}

// GetLinkedDocs handles GET /api/contacts/:name/linked/:doctype
func (h *ContactHandler) GetLinkedDocs(c *gin.Context) {
	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.contacts.GetLinkedDocs(c.Request.Context(), c.Param("name"), c.Param("doctype"))
	})
}

// GetLinkedOpportunities handles GET /api/contacts/:name/opportunities
func (h *ContactHandler) GetLinkedOpportunities(c *gin.Context) {
	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.contacts.GetLinkedOpportunities(c.Request.Context(), c.Param("name"))
	})
}

// GetLinkedCustomers handles GET /api/contacts/:name/customers
func (h *ContactHandler) GetLinkedCustomers(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.contacts.GetLinkedCustomers(c.Request.Context(), c.Param("name"), user)
	})
}

// GetLinkedLeads handles GET /api/contacts/:name/leads
func (h *ContactHandler) GetLinkedLeads(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.contacts.GetLinkedLeads(c.Request.Context(), c.Param("name"), user)
	})
}

// CreateNew handles POST /api/contacts/:name/values
func (h *ContactHandler) CreateNew(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req ContactValueRequest
	HandleActionEnvelope(c, http.StatusCreated, &req, func() (interface{}, error) {
		return true, h.contacts.CreateNew(c.Request.Context(), c.Param("name"), req.Field, req.Value, user)
	})
}

// SetAsPrimary handles PUT /api/contacts/:name/primary
func (h *ContactHandler) SetAsPrimary(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req ContactValueRequest
	HandleActionEnvelope(c, http.StatusOK, &req, func() (interface{}, error) {
		return true, h.contacts.SetAsPrimary(c.Request.Context(), c.Param("name"), req.Field, req.Value, user)
	})
}

// LinkContactToDoc handles POST /api/contacts/:name/links
func (h *ContactHandler) LinkContactToDoc(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req ContactLinkRequest
	HandleActionEnvelope(c, http.StatusOK, &req, func() (interface{}, error) {
		return h.contacts.LinkContactToDoc(c.Request.Context(), c.Param("name"), req.Doctype, req.Docname, user)
	})
}

// RemoveLinkFromContact handles DELETE /api/contacts/:name/links/:doctype/:docname
func (h *ContactHandler) RemoveLinkFromContact(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	HandleActionEnvelope(c, http.StatusOK, nil, func() (interface{}, error) {
		return h.contacts.RemoveLinkFromContact(c.Request.Context(), c.Param("name"), c.Param("doctype"), c.Param("docname"), user)
	})
}

// GetLinkedContact handles GET /api/records/:doctype/:name/contact-names
func (h *ContactHandler) GetLinkedContact(c *gin.Context) {
	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.contacts.GetLinkedContact(c.Request.Context(), c.Param("doctype"), c.Param("name"))
	})
}

// GetLeadOpportunityContacts handles GET /api/records/:doctype/:name/contacts
func (h *ContactHandler) GetLeadOpportunityContacts(c *gin.Context) {
	HandleGetEnvelope(c, "data", func() (interface{}, error) {
		return h.contacts.GetLeadOpportunityContacts(c.Request.Context(), c.Param("doctype"), c.Param("name"))
	})
}

// SetOpportunityPrimaryContact handles POST /api/opportunities/:name/primary-contact
func (h *ContactHandler) SetOpportunityPrimaryContact(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req PrimaryContactRequest
	HandleActionEnvelope(c, http.StatusOK, &req, func() (interface{}, error) {
		return h.contacts.SetOpportunityPrimaryContact(c.Request.Context(), c.Param("name"), req.Contact, user)
	})
}
