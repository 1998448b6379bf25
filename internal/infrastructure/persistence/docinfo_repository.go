package persistence

import (
	"context"
	"database/sql"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/query"
)

// DocInfoRepository reads the history attached to a record: versions,
// comments, communications and field metadata
type DocInfoRepository struct {
	baseRepository
}

// NewDocInfoRepository creates a new DocInfoRepository
func NewDocInfoRepository(db *sql.DB) *DocInfoRepository {
	return &DocInfoRepository{baseRepository{db: db}}
}

// GetDocInfo loads every history row of a record. Versions are oldest first.
func (r *DocInfoRepository) GetDocInfo(ctx context.Context, doctype, name string) (*models.DocInfo, error) {
	info := &models.DocInfo{}

	versions, err := r.versions(ctx, doctype, name)
	if err != nil {
		return nil, err
	}
	info.Versions = versions

	comments, err := r.comments(ctx, doctype, name)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		switch c.CommentType {
		case constants.CommentTypeComment:
			info.Comments = append(info.Comments, c)
		case constants.CommentTypeInfo:
			info.InfoLogs = append(info.InfoLogs, c)
		case constants.CommentTypeAttachment, constants.CommentTypeAttachmentRemoved:
			info.AttachmentLogs = append(info.AttachmentLogs, c)
		}
	}

	communications, err := r.communications(ctx, doctype, name)
	if err != nil {
		return nil, err
	}
	for _, c := range communications {
		if c.CommunicationType == constants.CommunicationTypeAutomated {
			info.AutomatedMessages = append(info.AutomatedMessages, c)
		} else {
			info.Communications = append(info.Communications, c)
		}
	}

	return info, nil
}

func (r *DocInfoRepository) versions(ctx context.Context, doctype, name string) ([]models.Version, error) {
	q := query.From(constants.TableVersion).
		Select(constants.FieldName, constants.FieldOwner, constants.FieldCreation, "data").
		WhereEq("ref_doctype", doctype).
		WhereEq("docname", name).
		OrderBy(constants.FieldCreation, query.ASC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Version, 0)
	for rows.Next() {
		var v models.Version
		if err := rows.Scan(&v.Name, str{&v.Owner}, stamp{&v.Creation}, str{&v.Data}); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *DocInfoRepository) comments(ctx context.Context, doctype, name string) ([]models.Comment, error) {
	q := query.From(constants.TableComment).
		Select(constants.FieldName, "comment_type", "content", constants.FieldOwner, constants.FieldCreation).
		WhereEq("reference_doctype", doctype).
		WhereEq("reference_name", name).
		OrderBy(constants.FieldCreation, query.DESC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.Name, str{&c.CommentType}, str{&c.Content}, str{&c.Owner}, stamp{&c.Creation}); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *DocInfoRepository) communications(ctx context.Context, doctype, name string) ([]models.Communication, error) {
	q := query.From(constants.TableCommunication).
		Select(constants.FieldName, "communication_type", "communication_medium", "subject", "content",
			"sender_full_name", "sender", "recipients", "cc", "bcc", "read_by_recipient", "delivery_status",
			constants.FieldCreation).
		WhereEq("reference_doctype", doctype).
		WhereEq("reference_name", name).
		OrderBy(constants.FieldCreation, query.DESC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Communication, 0)
	for rows.Next() {
		var c models.Communication
		if err := rows.Scan(&c.Name, str{&c.CommunicationType}, str{&c.CommunicationMedium}, str{&c.Subject},
			str{&c.Content}, str{&c.SenderFullName}, str{&c.Sender}, str{&c.Recipients}, str{&c.CC},
			str{&c.BCC}, flag{&c.ReadByRecipient}, str{&c.DeliveryStatus}, stamp{&c.Creation}); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Fields returns the field metadata of a doctype keyed by fieldname
func (r *DocInfoRepository) Fields(ctx context.Context, doctype string) (map[string]models.DocField, error) {
	q := query.From(constants.TableDocField).
		Select("fieldname", "label", "fieldtype", "options").
		WhereEq(constants.FieldParent, doctype).
		OrderBy("idx", query.ASC).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.DocField)
	for rows.Next() {
		var f models.DocField
		if err := rows.Scan(&f.Fieldname, str{&f.Label}, str{&f.Fieldtype}, str{&f.Options}); err != nil {
			return nil, err
		}
		out[f.Fieldname] = f
	}
	return out, rows.Err()
}
