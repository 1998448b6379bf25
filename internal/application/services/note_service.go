package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rtCamp/next-crm/internal/domain/mentions"
	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/errors"
	"github.com/rtCamp/next-crm/pkg/utils"
)

const mentionTextTemplate = `<div class="mb-2 leading-5 text-ink-gray-5">` +
	`<span class="font-medium text-ink-gray-9">%s</span>` +
	`<span>mentioned you in a Note in %s</span>` +
	`<span class="font-medium text-ink-gray-9">%s</span>` +
	`</div>`

// NoteInput is the payload of create and log note requests.
// Attachments holds filename strings or {"filename": ...} objects.
type NoteInput struct {
	Doctype     string      `json:"doctype"`
	Docname     string      `json:"docname"`
	Title       string      `json:"title"`
	Note        string      `json:"note"`
	ParentNote  string      `json:"parent_note"`
	Attachments interface{} `json:"attachments"`
	AddedOn     string      `json:"added_on"`
}

// NoteUpdate carries the editable fields of a note
type NoteUpdate struct {
	CustomTitle string `json:"custom_title"`
	Note        string `json:"note"`
	AddedOn     string `json:"added_on"`
}

// NoteService manages CRM Notes, their attachments and mention notifications
type NoteService struct {
	notes       ports.NoteStore
	records     ports.RecordStore
	users       ports.UserStore
	perms       *PermissionService
	notify      *NotificationService
	attachments *AttachmentService
	tx          ports.Transactor
}

// NewNoteService creates a new NoteService
func NewNoteService(notes ports.NoteStore, records ports.RecordStore, users ports.UserStore, perms *PermissionService,
	notify *NotificationService, attachments *AttachmentService, tx ports.Transactor) *NoteService {
	return &NoteService{
		notes:       notes,
		records:     records,
		users:       users,
		perms:       perms,
		notify:      notify,
		attachments: attachments,
		tx:          tx,
	}
}

// attachmentNames reads filenames out of a decoded attachments value. In
// strict mode anything but a list of strings or {"filename"} objects fails.
func attachmentNames(raw interface{}, strict bool) ([]string, error) {
	if raw == nil {
		return nil, nil
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	default:
		if strict {
			return nil, errors.Invalid("attachments must be a list")
		}
		return nil, nil
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			names = append(names, v)
			continue
		case map[string]interface{}:
			if name, ok := v["filename"].(string); ok && name != "" {
				names = append(names, name)
				continue
			}
		}
		if strict {
			return nil, errors.Invalid("Invalid attachment format")
		}
	}
	return names, nil
}

// CreateNote stores a note on a record, links its attachments and notifies
// the users mentioned in it
func (s *NoteService) CreateNote(ctx context.Context, in NoteInput, user *models.UserSession) (*models.Note, error) {
	if in.Note == "" && in.Title == "" {
		return nil, errors.Invalid("Either note or title is required.")
	}
	if err := s.perms.Require(ctx, constants.DoctypeCRMNote, constants.PermCreate, user, msgNotPermitted); err != nil {
		return nil, err
	}

	addedOn := time.Now()
	if in.AddedOn != "" {
		t, err := utils.ParseDateTime(in.AddedOn)
		if err != nil {
			return nil, errors.NewValidationError("added_on", err.Error())
		}
		addedOn = t
	}

	files, err := attachmentNames(in.Attachments, false)
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		CustomTitle:      in.Title,
		Note:             in.Note,
		ParentType:       in.Doctype,
		Parent:           in.Docname,
		Owner:            user.Name,
		AddedBy:          user.Name,
		AddedOn:          addedOn,
		CustomParentNote: in.ParentNote,
		NoteReplies:      make([]*models.Note, 0),
		Attachments:      make([]models.NoteAttachment, 0),
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.notes.Insert(ctx, note); err != nil {
			return err
		}
		for _, f := range files {
			a := models.NoteAttachment{Parent: note.Name, Filename: f}
			if err := s.notes.InsertAttachment(ctx, &a); err != nil {
				return err
			}
			note.Attachments = append(note.Attachments, a)
		}
		return s.notifyMentions(ctx, in.Note, note.Name, in.Doctype, in.Docname, user)
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// LogNote validates the referenced record and the caller's rights before
// creating the note
func (s *NoteService) LogNote(ctx context.Context, in NoteInput, user *models.UserSession) (*models.Note, error) {
	if _, err := validateReference(ctx, s.records, s.perms, in.Doctype, in.Docname, user); err != nil {
		return nil, err
	}
	if err := s.perms.Require(ctx, constants.DoctypeCRMNote, constants.PermCreate, user, msgNotPermitted); err != nil {
		return nil, err
	}

	if in.ParentNote != "" {
		exists, err := s.records.Exists(ctx, constants.TableNote, in.ParentNote)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errors.NotFoundf("Parent note not found")
		}
	}

	if _, err := attachmentNames(in.Attachments, true); err != nil {
		return nil, err
	}

	return s.CreateNote(ctx, in, user)
}

// UpdateNote edits a note, appends attachments it does not have yet and
// notifies the users mentioned in the new text
func (s *NoteService) UpdateNote(ctx context.Context, doctype, docname, noteName string, in NoteUpdate, attachments interface{}, user *models.UserSession) (*models.Note, error) {
	if in.CustomTitle == "" && in.Note == "" {
		return nil, errors.Invalid("Either note or title is required.")
	}

	note, err := s.notes.Get(ctx, noteName)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, errors.NewNotFoundError(constants.DoctypeCRMNote, noteName)
	}
	if err := s.perms.Require(ctx, constants.DoctypeCRMNote, constants.PermWrite, user, msgNotPermitted); err != nil {
		return nil, err
	}

	values := map[string]interface{}{"custom_title": in.CustomTitle, "note": in.Note}
	if in.AddedOn != "" {
		t, err := utils.ParseDateTime(in.AddedOn)
		if err != nil {
			return nil, errors.NewValidationError("added_on", err.Error())
		}
		values["added_on"] = t
		note.AddedOn = t
	}

	files, err := attachmentNames(attachments, false)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.notes.Update(ctx, noteName, values); err != nil {
			return err
		}

		existing, err := s.notes.Attachments(ctx, []string{noteName})
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, a := range existing {
			have[a.Filename] = true
		}
		for _, f := range files {
			if f == "" || have[f] {
				continue
			}
			a := models.NoteAttachment{Parent: noteName, Filename: f}
			if err := s.notes.InsertAttachment(ctx, &a); err != nil {
				return err
			}
			existing = append(existing, a)
			have[f] = true
		}
		note.Attachments = existing

		return s.notifyMentions(ctx, in.Note, noteName, doctype, docname, user)
	})
	if err != nil {
		return nil, err
	}

	note.CustomTitle = in.CustomTitle
	note.Note = in.Note
	note.NoteReplies = make([]*models.Note, 0)
	return note, nil
}

// DeleteNote removes a note with its notifications and attachment files. A
// root note takes its replies with it.
func (s *NoteService) DeleteNote(ctx context.Context, noteName string, user *models.UserSession) error {
	note, err := s.notes.Get(ctx, noteName)
	if err != nil {
		return err
	}
	if note == nil {
		return errors.NotFoundf("Note not found.")
	}
	if err := s.perms.Require(ctx, constants.DoctypeCRMNote, constants.PermDelete, user, msgNotPermitted); err != nil {
		return err
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		files, err := s.attachedFiles(ctx, noteName)
		if err != nil {
			return err
		}

		if strings.TrimSpace(note.CustomParentNote) == "" {
			children, err := s.notes.Children(ctx, noteName)
			if err != nil {
				return err
			}
			for _, child := range children {
				childFiles, err := s.attachedFiles(ctx, child.Name)
				if err != nil {
					return err
				}
				files = append(files, childFiles...)
				if err := s.notify.DeleteForDoc(ctx, child.Name); err != nil {
					return err
				}
				if err := s.notes.Delete(ctx, child.Name); err != nil {
					return err
				}
			}
		}

		if err := s.notify.DeleteForDoc(ctx, noteName); err != nil {
			return err
		}
		if err := s.notes.Delete(ctx, noteName); err != nil {
			return err
		}

		for _, f := range files {
			if err := s.attachments.deleteFile(ctx, f); err != nil && !errors.IsNotFound(err) {
				return err
			}
		}
		return nil
	})
}

// PurgeRecordNotes deletes every note of a record along with the
// notifications that point at them. Attachment files are purged separately.
func (s *NoteService) PurgeRecordNotes(ctx context.Context, doctype, docname string) error {
	notes, err := s.notes.ListForRecord(ctx, docname)
	if err != nil {
		return err
	}
	for _, n := range notes {
		if n.ParentType != "" && n.ParentType != doctype {
			continue
		}
		if err := s.notify.DeleteForDoc(ctx, n.Name); err != nil {
			return err
		}
		if err := s.notes.Delete(ctx, n.Name); err != nil {
			return err
		}
	}
	return nil
}

func (s *NoteService) attachedFiles(ctx context.Context, noteName string) ([]string, error) {
	rows, err := s.notes.Attachments(ctx, []string{noteName})
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(rows))
	for _, r := range rows {
		files = append(files, r.Filename)
	}
	return files, nil
}

// DeleteNoteAttachment detaches a file from a note, when one is named, and
// deletes the File
func (s *NoteService) DeleteNoteAttachment(ctx context.Context, fileName, noteName string, user *models.UserSession) (string, error) {
	if fileName == "" {
		return "", errors.Invalid("File name is required.")
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if noteName != "" {
			note, err := s.notes.Get(ctx, noteName)
			if err != nil {
				return err
			}
			if note == nil {
				return errors.NewNotFoundError(constants.DoctypeCRMNote, noteName)
			}
			if err := s.perms.Require(ctx, constants.DoctypeCRMNote, constants.PermWrite, user, msgNotPermitted); err != nil {
				return err
			}

			removed, err := s.notes.DeleteAttachment(ctx, []string{noteName}, fileName)
			if err != nil {
				return err
			}
			if removed == 0 {
				return errors.Invalid("Attachment not found in CRM Note.")
			}
		}

		if err := s.attachments.deleteFile(ctx, fileName); err != nil && !errors.IsNotFound(err) {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return "Attachment deleted successfully.", nil
}

// notifyMentions sends a Mention notification to each user mentioned in
// content and queues the matching e-mails
func (s *NoteService) notifyMentions(ctx context.Context, content, noteName, doctype, docname string, user *models.UserSession) error {
	mentioned := mentions.Extract(content)
	if len(mentioned) == 0 {
		return nil
	}

	owner, err := s.users.FullName(ctx, user.Name)
	if err != nil {
		return err
	}

	var title string
	if table, ok := constants.TableFor(doctype); ok && constants.IsCRMReference(doctype) {
		if title, _, err = s.records.GetValue(ctx, table, docname, constants.FieldTitle); err != nil {
			return err
		}
	}
	name := title
	if name == "" {
		name = docname
	}

	text := fmt.Sprintf(mentionTextTemplate, owner, doctype, name)
	for _, m := range mentioned {
		err := s.notify.Notify(ctx, &models.CRMNotification{
			FromUser:                user.Name,
			ToUser:                  m,
			Type:                    constants.NotificationMention,
			Message:                 content,
			NotificationText:        text,
			NotificationTypeDoctype: constants.DoctypeCRMNote,
			NotificationTypeDoc:     noteName,
			ReferenceDoctype:        doctype,
			ReferenceName:           docname,
		})
		if err != nil {
			return err
		}
	}

	recipients, err := s.users.MentionRecipients(ctx, mentioned)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf(`[Next CRM] <b>%s</b> mentioned you in a Note in <b>%s</b> <span class="subject-title">%s</span>`,
		owner, doctype, title)
	return s.notify.QueueEmail(ctx, recipients, models.NotificationLog{
		Type:         constants.NotificationMention,
		DocumentType: doctype,
		DocumentName: docname,
		Subject:      subject,
		FromUser:     user.Name,
		EmailContent: content,
	})
}
