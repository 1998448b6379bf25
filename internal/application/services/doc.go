// Package services provides the business logic layer of the CRM backend.
//
// This package contains the service implementations that handle:
//   - Activity timelines of leads and opportunities (ActivityService)
//   - CRM Notes with replies, attachments and mentions (NoteService)
//   - Lead to opportunity conversion (ConversionService)
//   - File uploads and deletion (AttachmentService)
//   - Contacts and their record links (ContactService)
//   - Opportunity details and deal updates (OpportunityService)
//   - Follow-up ToDos and assignment notifications (TodoService)
//   - Record deletion (RecordService)
//   - In-app notifications (NotificationService)
//   - Role based permission checks (PermissionService)
//   - Event publishing and subscription (EventBus)
//
// Services depend on the interfaces of internal/domain/ports and are wired
// together by ServiceManager.
package services
