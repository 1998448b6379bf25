package services

import (
	"context"
	"log"

	"github.com/rtCamp/next-crm/internal/domain/events"
	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/errors"
)

// RecordService deletes leads and opportunities and announces the deletion
type RecordService struct {
	records ports.RecordStore
	perms   *PermissionService
	tx      ports.Transactor
	events  ports.EventPublisher
}

// NewRecordService creates a new RecordService
func NewRecordService(records ports.RecordStore, perms *PermissionService, tx ports.Transactor, events ports.EventPublisher) *RecordService {
	return &RecordService{records: records, perms: perms, tx: tx, events: events}
}

// Delete removes a Lead or Opportunity. record.deleted handlers run in the
// same transaction; a failing handler rolls the deletion back.
func (s *RecordService) Delete(ctx context.Context, doctype, name string, user *models.UserSession) error {
	if !constants.IsCRMReference(doctype) {
		return errors.Invalid("Invalid doctype")
	}
	if err := s.perms.Require(ctx, doctype, constants.PermDelete, user, ""); err != nil {
		return err
	}

	table, _ := constants.TableFor(doctype)
	exists, err := s.records.Exists(ctx, table, name)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewNotFoundError(doctype, name)
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.records.Delete(ctx, table, name); err != nil {
			return err
		}
		return s.events.Publish(ctx, events.RecordDeleted, RecordEventPayload{
			Doctype: doctype, Name: name, CurrentUser: user,
		})
	})
	if err != nil {
		return err
	}

	log.Printf("🗑️ Deleted %s %s", doctype, name)
	return nil
}
