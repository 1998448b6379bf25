package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/query"
	"github.com/rtCamp/next-crm/pkg/utils"
)

var notificationColumns = []string{
	constants.FieldName, "from_user", "to_user", "type", "message", "notification_text",
	"notification_type_doctype", "notification_type_doc", "reference_doctype", "reference_name", "read",
	constants.FieldCreation,
}

// NotificationRepository stores in-app notifications and queued e-mail logs
type NotificationRepository struct {
	baseRepository
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{baseRepository{db: db}}
}

// Exists reports whether an identical notification is already stored
func (r *NotificationRepository) Exists(ctx context.Context, n *models.CRMNotification) (bool, error) {
	q := query.From(constants.TableCRMNotification).
		Select(constants.FieldName).
		WhereEq("from_user", n.FromUser).
		WhereEq("to_user", n.ToUser).
		WhereEq("type", n.Type).
		WhereEq("message", n.Message).
		WhereEq("notification_text", n.NotificationText).
		WhereEq("notification_type_doctype", n.NotificationTypeDoctype).
		WhereEq("notification_type_doc", n.NotificationTypeDoc).
		WhereEq("reference_doctype", n.ReferenceDoctype).
		WhereEq("reference_name", n.ReferenceName).
		Limit(1).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

// Insert stores a notification, filling name and creation when empty
func (r *NotificationRepository) Insert(ctx context.Context, n *models.CRMNotification) error {
	if n.Name == "" {
		n.Name = utils.GenerateID()
	}
	if n.Creation.IsZero() {
		n.Creation = time.Now()
	}

	q := query.Insert(constants.TableCRMNotification, map[string]interface{}{
		constants.FieldName:         n.Name,
		"from_user":                 n.FromUser,
		"to_user":                   n.ToUser,
		"type":                      n.Type,
		"message":                   n.Message,
		"notification_text":         n.NotificationText,
		"notification_type_doctype": n.NotificationTypeDoctype,
		"notification_type_doc":     n.NotificationTypeDoc,
		"reference_doctype":         n.ReferenceDoctype,
		"reference_name":            n.ReferenceName,
		"read":                      utils.BoolToInt(n.Read),
		constants.FieldOwner:        n.FromUser,
		constants.FieldCreation:     n.Creation,
		constants.FieldModified:     n.Creation,
	}).Build()

	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// ForUser returns the notifications addressed to a user, newest first
func (r *NotificationRepository) ForUser(ctx context.Context, user string, limit int) ([]models.CRMNotification, error) {
	q := query.From(constants.TableCRMNotification).
		Select(notificationColumns...).
		WhereEq("to_user", user).
		OrderBy(constants.FieldCreation, query.DESC).
		Limit(limit).
		Build()

	rows, err := r.GetExecutor(ctx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CRMNotification, 0)
	for rows.Next() {
		var n models.CRMNotification
		if err := rows.Scan(&n.Name, str{&n.FromUser}, str{&n.ToUser}, str{&n.Type}, str{&n.Message},
			str{&n.NotificationText}, str{&n.NotificationTypeDoctype}, str{&n.NotificationTypeDoc},
			str{&n.ReferenceDoctype}, str{&n.ReferenceName}, flag{&n.Read}, stamp{&n.Creation}); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification of user as read. It returns false when
// no such notification exists.
func (r *NotificationRepository) MarkRead(ctx context.Context, name, user string) (bool, error) {
	q := query.Update(constants.TableCRMNotification).
		Set(map[string]interface{}{"read": 1, constants.FieldModified: time.Now()}).
		WhereEq(constants.FieldName, name).
		WhereEq("to_user", user).
		Build()

	res, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteForDoc removes the notifications raised about a document
func (r *NotificationRepository) DeleteForDoc(ctx context.Context, doc string) error {
	q := query.Delete(constants.TableCRMNotification).WhereEq("notification_type_doc", doc).Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}

// InsertLog queues an e-mail notification
func (r *NotificationRepository) InsertLog(ctx context.Context, l *models.NotificationLog) error {
	if l.Name == "" {
		l.Name = utils.GenerateID()
	}
	now := time.Now()
	q := query.Insert(constants.TableNotificationLog, map[string]interface{}{
		constants.FieldName:     l.Name,
		"type":                  l.Type,
		"document_type":         l.DocumentType,
		"document_name":         l.DocumentName,
		"subject":               l.Subject,
		"from_user":             l.FromUser,
		"for_user":              l.ForUser,
		"email_content":         l.EmailContent,
		constants.FieldOwner:    l.FromUser,
		constants.FieldCreation: now,
		constants.FieldModified: now,
	}).Build()
	_, err := r.GetExecutor(ctx).ExecContext(ctx, q.SQL, q.Params...)
	return err
}
