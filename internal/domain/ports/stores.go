package ports

import (
	"context"
	"io"

	"github.com/rtCamp/next-crm/internal/domain/models"
)

// Transactor runs fn inside a transaction carried by ctx. Nested calls join
// the outer transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// WithRetry reruns the whole transaction when the database reports a deadlock
	WithRetry(ctx context.Context, fn func(ctx context.Context) error, maxRetries int) error
}

// RecordStore covers the operations every doctype table shares
type RecordStore interface {
	Exists(ctx context.Context, table, name string) (bool, error)
	GetValue(ctx context.Context, table, name, field string) (string, bool, error)
	GetHeader(ctx context.Context, doctype, name string) (*models.RecordHeader, error)
	SetValues(ctx context.Context, table, name string, values map[string]interface{}) error
	Delete(ctx context.Context, table, name string) error
}

// DocInfoStore reads the history of a record and the field metadata of its doctype
type DocInfoStore interface {
	GetDocInfo(ctx context.Context, doctype, name string) (*models.DocInfo, error)
	Fields(ctx context.Context, doctype string) (map[string]models.DocField, error)
}

// FileStore keeps File rows
type FileStore interface {
	Get(ctx context.Context, name string) (*models.File, error)
	ListAttached(ctx context.Context, doctype, name string) ([]models.File, error)
	Insert(ctx context.Context, f *models.File) error
	Delete(ctx context.Context, name string) error
}

// NoteStore keeps CRM Notes and the rows linking them to files
type NoteStore interface {
	ListForRecord(ctx context.Context, parent string) ([]models.Note, error)
	RootNotes(ctx context.Context, doctype, parent string) ([]models.Note, error)
	Children(ctx context.Context, parentNote string) ([]models.Note, error)
	Get(ctx context.Context, name string) (*models.Note, error)
	Insert(ctx context.Context, n *models.Note) error
	Update(ctx context.Context, name string, values map[string]interface{}) error
	Delete(ctx context.Context, name string) error

	Attachments(ctx context.Context, notes []string) ([]models.NoteAttachment, error)
	RecordAttachments(ctx context.Context, doctype, parent string) ([]models.NoteAttachment, error)
	InsertAttachment(ctx context.Context, a *models.NoteAttachment) error
	DeleteAttachment(ctx context.Context, notes []string, filename string) (int64, error)
	DeleteAttachmentRows(ctx context.Context, names []string) error
	NotesWithFile(ctx context.Context, filename, doctype, parent string) ([]string, error)
	CountFileReferences(ctx context.Context, filename string) (int, error)
}

// ActivityStore reads call logs and calendar events
type ActivityStore interface {
	Calls(ctx context.Context, docname string) ([]models.CallLog, error)
	Events(ctx context.Context, docname string) ([]models.Event, error)
	LinkedEvent(ctx context.Context, name string) (*models.ToDoEvent, error)
}

// TodoStore keeps ToDos
type TodoStore interface {
	ListForRecord(ctx context.Context, docname string) ([]models.ToDo, error)
	Get(ctx context.Context, name string) (*models.ToDo, error)
	Insert(ctx context.Context, t *models.ToDo, owner string) error
	UpdateStatus(ctx context.Context, name, status string) error
	OpenWithTitleExists(ctx context.Context, doctype, docname, title string) (bool, error)
}

// ContactStore keeps contacts with their e-mails, phones and links
type ContactStore interface {
	Get(ctx context.Context, name string) (*models.Contact, error)
	Emails(ctx context.Context, contact string) ([]models.ContactEmail, error)
	Phones(ctx context.Context, contact string) ([]models.ContactPhone, error)
	Links(ctx context.Context, contact string) ([]models.DynamicLink, error)
	EmailOwners(ctx context.Context, email string) ([]models.EmailOwner, error)
	AddEmail(ctx context.Context, contact string, e *models.ContactEmail) error
	AddPhone(ctx context.Context, contact string, p *models.ContactPhone) error
	SetEmailFlags(ctx context.Context, emails []models.ContactEmail) error
	SetPhoneFlags(ctx context.Context, phones []models.ContactPhone) error
	SetPrimaryFields(ctx context.Context, contact, email, mobile, phone string) error
	LinkedContacts(ctx context.Context, doctype, name string) ([]string, error)
	AddLink(ctx context.Context, contact, doctype, name string) error
	RemoveLinks(ctx context.Context, contact, linkName string) error
	SearchEmails(ctx context.Context, txt string) ([][]string, error)
}

// CRMStore reads and updates leads, opportunities and customers
type CRMStore interface {
	GetLead(ctx context.Context, name string) (*models.Lead, []string, error)
	GetOpportunity(ctx context.Context, name string) (*models.Opportunity, []string, error)
	GetCustomer(ctx context.Context, name string) (*models.Customer, error)
	LinkedOpportunities(ctx context.Context, doctype, name string) ([]models.LinkedOpportunity, error)
	HasActiveQuotation(ctx context.Context, opportunity string) (bool, error)
	DeclareLost(ctx context.Context, name string, reasons, competitors []string, detail string) error
	ChecklistItems(ctx context.Context, parent, parentType string) ([]string, error)
	FormScripts(ctx context.Context, doctype string) ([]string, error)
	Setting(ctx context.Context, key string) (string, error)
	SetContactPerson(ctx context.Context, opportunity, contact string) error
}

// NotificationStore keeps in-app notifications and queued e-mails
type NotificationStore interface {
	Exists(ctx context.Context, n *models.CRMNotification) (bool, error)
	Insert(ctx context.Context, n *models.CRMNotification) error
	ForUser(ctx context.Context, user string, limit int) ([]models.CRMNotification, error)
	MarkRead(ctx context.Context, name, user string) (bool, error)
	DeleteForDoc(ctx context.Context, doc string) error
	InsertLog(ctx context.Context, l *models.NotificationLog) error
}

// UserStore reads users and role permissions
type UserStore interface {
	FullName(ctx context.Context, user string) (string, error)
	MentionRecipients(ctx context.Context, users []string) ([]string, error)
	RolesAllow(ctx context.Context, roles []string, doctype, perm string) (bool, error)
}

// BlobStore keeps file contents
type BlobStore interface {
	Enabled() bool
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	Delete(ctx context.Context, key string) error
}

// EmailThreadSource supplies e-mail threads linked to a record from an
// external mailbox integration
type EmailThreadSource interface {
	LinkedThreads(ctx context.Context, doctype, name string) ([]models.Activity, error)
}
