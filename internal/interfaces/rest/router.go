package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/application/services"
)

// Handlers bundles every REST handler of the API
type Handlers struct {
	Activities    *ActivityHandler
	Notes         *NoteHandler
	Leads         *LeadHandler
	Attachments   *AttachmentHandler
	Contacts      *ContactHandler
	Opportunities *OpportunityHandler
	Todos         *TodoHandler
	Records       *RecordHandler
	Notifications *NotificationHandler
}

// NewHandlers wires the handlers to the service manager
func NewHandlers(sm *services.ServiceManager) *Handlers {
	return &Handlers{
		Activities:    NewActivityHandler(sm.Activities),
		Notes:         NewNoteHandler(sm.Notes),
		Leads:         NewLeadHandler(sm.Conversion),
		Attachments:   NewAttachmentHandler(sm.Attachments),
		Contacts:      NewContactHandler(sm.Contacts),
		Opportunities: NewOpportunityHandler(sm.Opportunity),
		Todos:         NewTodoHandler(sm.Todos),
		Records:       NewRecordHandler(sm.Records),
		Notifications: NewNotificationHandler(sm.Notification),
	}
}

// RegisterRoutes mounts the API on an authenticated group
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/activities/:name", h.Activities.GetActivities)

	notes := api.Group("/notes")
	{
		notes.POST("", h.Notes.CreateNote)
		notes.POST("/log", h.Notes.LogNote)
		notes.PUT("/:name", h.Notes.UpdateNote)
		notes.DELETE("/:name", h.Notes.DeleteNote)
		notes.DELETE("/attachments/:file", h.Notes.DeleteNoteAttachment)
	}

	api.POST("/leads/:name/convert", h.Leads.Convert)

	api.POST("/files/upload", h.Attachments.Upload)
	api.DELETE("/attachments/:filename", h.Attachments.DeleteAttachment)

	contacts := api.Group("/contacts")
	{
		contacts.GET("/by-email", h.Contacts.GetContactByEmail)
		contacts.GET("/search-emails", h.Contacts.SearchEmails)
		contacts.GET("/:name", h.Contacts.GetContact)
		contacts.GET("/:name/linked/:doctype", h.Contacts.GetLinkedDocs)
		contacts.GET("/:name/opportunities", h.Contacts.GetLinkedOpportunities)
		contacts.GET("/:name/customers", h.Contacts.GetLinkedCustomers)
		contacts.GET("/:name/leads", h.Contacts.GetLinkedLeads)
		contacts.POST("/:name/values", h.Contacts.CreateNew)
		contacts.PUT("/:name/primary", h.Contacts.SetAsPrimary)
		contacts.POST("/:name/links", h.Contacts.LinkContactToDoc)
		contacts.DELETE("/:name/links/:doctype/:docname", h.Contacts.RemoveLinkFromContact)
	}

	opportunities := api.Group("/opportunities")
	{
		opportunities.GET("/:name", h.Opportunities.GetOpportunity)
		opportunities.POST("/:name/lost", h.Opportunities.DeclareLost)
		opportunities.POST("/:name/checklists", h.Opportunities.CreateChecklist)
		opportunities.POST("/:name/primary-contact", h.Contacts.SetOpportunityPrimaryContact)
	}
	api.POST("/deals/update", h.Opportunities.UpdateDeal)

	todos := api.Group("/todos")
	{
		todos.POST("", h.Todos.CreateTask)
		todos.PATCH("/:name/status", h.Todos.UpdateStatus)
	}

	records := api.Group("/records")
	{
		records.DELETE("/:doctype/:name", h.Records.DeleteRecord)
		records.GET("/:doctype/:name/contacts", h.Contacts.GetLeadOpportunityContacts)
		records.GET("/:doctype/:name/contact-names", h.Contacts.GetLinkedContact)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.Notifications.GetNotifications)
		notifications.POST("/:id/read", h.Notifications.MarkAsRead)
	}
}
