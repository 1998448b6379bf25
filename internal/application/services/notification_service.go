package services

import (
	"context"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/pkg/errors"
)

// NotificationListLimit caps GetMyNotifications
const NotificationListLimit = 20

// NotificationService stores in-app notifications and queued e-mails
type NotificationService struct {
	store ports.NotificationStore
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(store ports.NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// Notify stores n unless it targets its own sender or an identical one exists
func (s *NotificationService) Notify(ctx context.Context, n *models.CRMNotification) error {
	if n.ToUser == "" || n.FromUser == n.ToUser {
		return nil
	}

	exists, err := s.store.Exists(ctx, n)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.store.Insert(ctx, n)
}

// QueueEmail stores one notification log per non-empty recipient
func (s *NotificationService) QueueEmail(ctx context.Context, recipients []string, doc models.NotificationLog) error {
	for _, r := range recipients {
		if r == "" {
			continue
		}
		entry := doc
		entry.Name = ""
		entry.ForUser = r
		if err := s.store.InsertLog(ctx, &entry); err != nil {
			return err
		}
	}
	return nil
}

// GetMyNotifications returns the latest notifications of the user
func (s *NotificationService) GetMyNotifications(ctx context.Context, user *models.UserSession) ([]models.CRMNotification, error) {
	return s.store.ForUser(ctx, user.Name, NotificationListLimit)
}

// MarkAsRead marks a notification of the user as read
func (s *NotificationService) MarkAsRead(ctx context.Context, id string, user *models.UserSession) error {
	ok, err := s.store.MarkRead(ctx, id, user.Name)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewNotFoundError("Notification", id)
	}
	return nil
}

// DeleteForDoc drops the notifications raised about a document
func (s *NotificationService) DeleteForDoc(ctx context.Context, doc string) error {
	return s.store.DeleteForDoc(ctx, doc)
}
