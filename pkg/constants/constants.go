package constants

// Doctypes exposed through the API
const (
	DoctypeLead          = "Lead"
	DoctypeOpportunity   = "Opportunity"
	DoctypeContact       = "Contact"
	DoctypeCustomer      = "Customer"
	DoctypeCRMNote       = "CRM Note"
	DoctypeToDo          = "ToDo"
	DoctypeEvent         = "Event"
	DoctypeFile          = "File"
	DoctypeComment       = "Comment"
	DoctypeCommunication = "Communication"
	DoctypeCRMDealStatus = "CRM Deal Status"
	DoctypeSalesStage    = "Sales Stage"
)

// Tables
const (
	TableLead             = "lead"
	TableOpportunity      = "opportunity"
	TableLostReasonDetail = "opportunity_lost_reason_detail"
	TableCompetitorDetail = "competitor_detail"
	TableQuotation        = "quotation"
	TableCustomer         = "customer"
	TableContact          = "contact"
	TableContactEmail     = "contact_email"
	TableContactPhone     = "contact_phone"
	TableDynamicLink      = "dynamic_link"
	TableNote             = "crm_note"
	TableNoteAttachment   = "note_attachment"
	TableFile             = "file"
	TableCallLog          = "crm_call_log"
	TableToDo             = "todo"
	TableEvent            = "event"
	TableEventParticipant = "event_participant"
	TableVersion          = "version"
	TableComment          = "comment"
	TableCommunication    = "communication"
	TableDocField         = "doc_field"
	TableFormScript       = "crm_form_script"
	TableSettings         = "crm_settings"
	TableDealStatus       = "crm_deal_status"
	TableLeadStatus       = "crm_lead_status"
	TableSalesStage       = "sales_stage"
	TableStatusChecklist  = "opportunity_status_checklist"
	TableCRMNotification  = "crm_notification"
	TableNotificationLog  = "notification_log"
	TableUser             = "user"
	TablePermission       = "crm_permission"
)

// Common columns
const (
	FieldName     = "name"
	FieldOwner    = "owner"
	FieldCreation = "creation"
	FieldModified = "modified"
	FieldParent   = "parent"
	FieldStatus   = "status"
	FieldTitle    = "title"
)

// Permission types
const (
	PermRead   = "read"
	PermWrite  = "write"
	PermCreate = "create"
	PermDelete = "delete"
)

// Roles and users that bypass permission checks
const (
	RoleSystemManager = "System Manager"
	UserAdministrator = "Administrator"
)

// Activity types
const (
	ActivityCreation      = "creation"
	ActivityChanged       = "changed"
	ActivityAdded         = "added"
	ActivityRemoved       = "removed"
	ActivityComment       = "comment"
	ActivityCommunication = "communication"
	ActivityAttachmentLog = "attachment_log"
)

// Comment types stored in the comment table
const (
	CommentTypeComment           = "Comment"
	CommentTypeInfo              = "Info"
	CommentTypeAttachment        = "Attachment"
	CommentTypeAttachmentRemoved = "Attachment Removed"
)

// Communication types and mediums
const (
	CommunicationTypeCommunication = "Communication"
	CommunicationTypeAutomated     = "Automated Message"
	CommunicationMediumEvent       = "Event"
	CommunicationTypeEmail         = "Email"
)

// ToDo values
const (
	ToDoStatusOpen      = "Open"
	ToDoStatusClosed    = "Closed"
	ToDoStatusCancelled = "Cancelled"
	ToDoPriorityMedium  = "Medium"
)

// Notification types
const (
	NotificationMention    = "Mention"
	NotificationAssignment = "Assignment"
)

// Opportunity values
const (
	OpportunityStatusLost = "Lost"
	OpportunityFromLead   = "Lead"
	ParentFieldNotes      = "notes"
	DefaultFolder         = "Home"
	UserTypeSystem        = "System User"
)

// Context keys
const (
	ContextKeyUser  = "user"
	ContextKeyToken = "token"
)

// HTTP constants
const (
	HeaderAuthorization = "Authorization"
	BearerPrefix        = "Bearer "
	ResponseError       = "error"
	FieldMessage        = "message"
)

// IsCRMReference reports whether notes, todos and deals may reference doctype
func IsCRMReference(doctype string) bool {
	return doctype == DoctypeLead || doctype == DoctypeOpportunity
}

// TableFor maps a reference doctype to its table
func TableFor(doctype string) (string, bool) {
	switch doctype {
	case DoctypeLead:
		return TableLead, true
	case DoctypeOpportunity:
		return TableOpportunity, true
	case DoctypeContact:
		return TableContact, true
	case DoctypeCustomer:
		return TableCustomer, true
	case DoctypeCRMNote:
		return TableNote, true
	case DoctypeToDo:
		return TableToDo, true
	case DoctypeEvent:
		return TableEvent, true
	case DoctypeFile:
		return TableFile, true
	}
	return "", false
}
