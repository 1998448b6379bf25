package services

import (
	"context"

	"github.com/rtCamp/next-crm/internal/domain/events"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/internal/infrastructure/database"
	"github.com/rtCamp/next-crm/internal/infrastructure/persistence"
)

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	db *database.Connection

	// Core services
	TxManager    *persistence.TransactionManager
	EventBus     *EventBus
	Permissions  *PermissionService
	Notification *NotificationService

	// Domain services
	Attachments *AttachmentService
	Notes       *NoteService
	Conversion  *ConversionService
	Activities  *ActivityService
	Contacts    *ContactService
	Opportunity *OpportunityService
	Todos       *TodoService
	Records     *RecordService

	unsubscribe []func()
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(db *database.Connection, blobs ports.BlobStore) *ServiceManager {
	sm := &ServiceManager{db: db}
	sqlDB := db.DB()

	records := persistence.NewRecordRepository(sqlDB)
	docinfo := persistence.NewDocInfoRepository(sqlDB)
	files := persistence.NewFileRepository(sqlDB)
	notes := persistence.NewNoteRepository(sqlDB)
	activity := persistence.NewActivityRepository(sqlDB)
	todos := persistence.NewTodoRepository(sqlDB)
	contacts := persistence.NewContactRepository(sqlDB)
	crm := persistence.NewCRMRepository(sqlDB)
	notifications := persistence.NewNotificationRepository(sqlDB)
	users := persistence.NewUserRepository(sqlDB)

	// Initialize services in dependency order
	sm.TxManager = persistence.NewTransactionManager(sqlDB)
	sm.EventBus = NewEventBus()
	sm.Permissions = NewPermissionService(users)
	sm.Notification = NewNotificationService(notifications)

	sm.Attachments = NewAttachmentService(files, notes, records, blobs, sm.Permissions)
	sm.Notes = NewNoteService(notes, records, users, sm.Permissions, sm.Notification, sm.Attachments, sm.TxManager)
	sm.Conversion = NewConversionService(notes, contacts, records, sm.Attachments, sm.Permissions, sm.TxManager, sm.EventBus)
	sm.Activities = NewActivityService(records, docinfo, files, notes, activity, todos, crm, sm.Permissions)
	sm.Contacts = NewContactService(contacts, crm, sm.Permissions, sm.TxManager)
	sm.Opportunity = NewOpportunityService(records, docinfo, crm, todos, sm.Permissions, sm.TxManager)
	sm.Todos = NewTodoService(todos, records, crm, users, sm.Permissions, sm.Notification)
	sm.Records = NewRecordService(records, sm.Permissions, sm.TxManager, sm.EventBus)

	sm.registerHandlers()
	return sm
}

// registerHandlers subscribes the record lifecycle side effects
func (sm *ServiceManager) registerHandlers() {
	sm.unsubscribe = append(sm.unsubscribe, subscribeNoteCleanup(sm.EventBus, sm.Attachments, sm.Notes))
}

// subscribeNoteCleanup removes the notes of deleted records together with
// their attachments and notifications
func subscribeNoteCleanup(bus ports.EventPublisher, attachments *AttachmentService, notes *NoteService) func() {
	return bus.Subscribe(events.RecordDeleted, func(ctx context.Context, payload interface{}) error {
		p, ok := payload.(RecordEventPayload)
		if !ok {
			return nil
		}
		if err := attachments.PurgeNoteAttachments(ctx, p.Doctype, p.Name); err != nil {
			return err
		}
		return notes.PurgeRecordNotes(ctx, p.Doctype, p.Name)
	})
}

// Ping checks the database is reachable
func (sm *ServiceManager) Ping(ctx context.Context) error {
	return sm.db.Ping(ctx)
}

// Close unsubscribes event handlers. The database connection is owned by the caller.
func (sm *ServiceManager) Close() {
	for _, u := range sm.unsubscribe {
		u()
	}
	sm.unsubscribe = nil
}
