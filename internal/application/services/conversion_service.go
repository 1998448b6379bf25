package services

import (
	"context"
	"log"
	"time"

	"github.com/rtCamp/next-crm/internal/domain/events"
	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/errors"
)

// conversionRetries bounds the attempts of a conversion that hit a deadlock
const conversionRetries = 3

// ConversionResult reports what a lead conversion carried over
type ConversionResult struct {
	Lead             string `json:"lead"`
	Opportunity      string `json:"opportunity"`
	NotesCopied      int    `json:"notes_copied"`
	ContactsMigrated int    `json:"contacts_migrated"`
}

// ConversionService moves the notes and contacts of a lead to the
// opportunity created from it
type ConversionService struct {
	notes       ports.NoteStore
	contacts    ports.ContactStore
	records     ports.RecordStore
	attachments *AttachmentService
	perms       *PermissionService
	tx          ports.Transactor
	events      ports.EventPublisher
}

// NewConversionService creates a new ConversionService
func NewConversionService(notes ports.NoteStore, contacts ports.ContactStore, records ports.RecordStore,
	attachments *AttachmentService, perms *PermissionService, tx ports.Transactor, events ports.EventPublisher) *ConversionService {
	return &ConversionService{
		notes:       notes,
		contacts:    contacts,
		records:     records,
		attachments: attachments,
		perms:       perms,
		tx:          tx,
		events:      events,
	}
}

// Convert copies the lead's notes and contact links to opportunity and marks
// the lead converted
func (s *ConversionService) Convert(ctx context.Context, lead, opportunity string, user *models.UserSession) (*ConversionResult, error) {
	if opportunity == "" {
		return nil, errors.NewValidationError("opportunity", "is required")
	}
	for _, ref := range []struct{ table, name string }{
		{constants.TableLead, lead},
		{constants.TableOpportunity, opportunity},
	} {
		exists, err := s.records.Exists(ctx, ref.table, ref.name)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errors.NotFoundf("Document not found")
		}
	}
	if err := s.perms.Require(ctx, constants.DoctypeLead, constants.PermWrite, user, msgNotPermitted); err != nil {
		return nil, err
	}
	if err := s.perms.Require(ctx, constants.DoctypeOpportunity, constants.PermWrite, user, msgNotPermitted); err != nil {
		return nil, err
	}

	result := &ConversionResult{Lead: lead, Opportunity: opportunity}
	err := s.tx.WithRetry(ctx, func(ctx context.Context) error {
		copied, err := s.CopyNotesToOpportunity(ctx, lead, opportunity)
		if err != nil {
			return err
		}
		migrated, err := s.MigrateContacts(ctx, lead, opportunity)
		if err != nil {
			return err
		}
		result.NotesCopied, result.ContactsMigrated = copied, migrated

		return s.records.SetValues(ctx, constants.TableLead, lead, map[string]interface{}{"converted": 1})
	}, conversionRetries)
	if err != nil {
		return nil, err
	}

	if err := s.events.Publish(ctx, events.LeadConverted, ConversionEventPayload{
		Lead: lead, Opportunity: opportunity, CurrentUser: user,
	}); err != nil {
		log.Printf("⚠️ lead.converted handlers failed for %s: %v", lead, err)
	}

	log.Printf("✅ Converted lead %s to opportunity %s (%d notes, %d contacts)",
		lead, opportunity, result.NotesCopied, result.ContactsMigrated)
	return result, nil
}

// CopyNotesToOpportunity re-creates the root notes of a lead and their
// replies on the opportunity. Attachment files are duplicated; a file that
// cannot be duplicated is left out. Returns the number of notes created.
func (s *ConversionService) CopyNotesToOpportunity(ctx context.Context, lead, opportunity string) (int, error) {
	copied := 0
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		roots, err := s.notes.RootNotes(ctx, constants.DoctypeLead, lead)
		if err != nil {
			return err
		}

		for _, root := range roots {
			newRoot, err := s.copyNote(ctx, root, opportunity, "")
			if err != nil {
				return err
			}
			copied++

			children, err := s.notes.Children(ctx, root.Name)
			if err != nil {
				return err
			}
			for _, child := range children {
				if _, err := s.copyNote(ctx, child, opportunity, newRoot.Name); err != nil {
					return err
				}
				copied++
			}
		}
		return nil
	})
	return copied, err
}

func (s *ConversionService) copyNote(ctx context.Context, src models.Note, opportunity, parentNote string) (*models.Note, error) {
	addedOn := src.AddedOn
	if addedOn.IsZero() {
		addedOn = time.Now()
	}

	dst := &models.Note{
		CustomTitle:      src.CustomTitle,
		Note:             src.Note,
		ParentType:       constants.DoctypeOpportunity,
		Parent:           opportunity,
		AddedBy:          src.AddedBy,
		AddedOn:          addedOn,
		Owner:            src.Owner,
		CustomParentNote: parentNote,
	}
	if err := s.notes.Insert(ctx, dst); err != nil {
		return nil, err
	}

	rows, err := s.notes.Attachments(ctx, []string{src.Name})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		name, err := s.attachments.DuplicateFile(ctx, row.Filename, constants.DoctypeOpportunity, opportunity, src.Owner)
		if err != nil {
			log.Printf("❌ Error duplicating file %s: %v", row.Filename, err)
			continue
		}
		if err := s.notes.InsertAttachment(ctx, &models.NoteAttachment{Parent: dst.Name, Filename: name}); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// MigrateContacts links every contact of the lead to the opportunity.
// Returns the number of contacts linked.
func (s *ConversionService) MigrateContacts(ctx context.Context, lead, opportunity string) (int, error) {
	contacts, err := s.contacts.LinkedContacts(ctx, constants.DoctypeLead, lead)
	if err != nil {
		return 0, err
	}
	for _, c := range contacts {
		if err := s.contacts.AddLink(ctx, c, constants.DoctypeOpportunity, opportunity); err != nil {
			return 0, err
		}
	}
	return len(contacts), nil
}
