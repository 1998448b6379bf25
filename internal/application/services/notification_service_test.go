package services

import (
	"context"
	"testing"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mention(to string) *models.CRMNotification {
	return &models.CRMNotification{
		FromUser:                adminUser.Name,
		ToUser:                  to,
		Type:                    "Mention",
		Message:                 "hello",
		NotificationTypeDoctype: "CRM Note",
		NotificationTypeDoc:     "note-1",
		ReferenceDoctype:        "Lead",
		ReferenceName:           "CRM-LEAD-0001",
	}
}

func TestNotify(t *testing.T) {
	store := &fakeNotifications{}
	svc := NewNotificationService(store)
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, mention(salesUser.Name)))
	require.Len(t, store.items, 1)

	// identical notification is stored once
	require.NoError(t, svc.Notify(ctx, mention(salesUser.Name)))
	assert.Len(t, store.items, 1)

	// a different message is not a duplicate
	other := mention(salesUser.Name)
	other.Message = "updated"
	require.NoError(t, svc.Notify(ctx, other))
	assert.Len(t, store.items, 2)
}

func TestNotify_SkipsSelfAndEmpty(t *testing.T) {
	store := &fakeNotifications{}
	svc := NewNotificationService(store)
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, mention(adminUser.Name)))
	require.NoError(t, svc.Notify(ctx, mention("")))
	assert.Empty(t, store.items)
}

func TestQueueEmail(t *testing.T) {
	store := &fakeNotifications{}
	svc := NewNotificationService(store)

	err := svc.QueueEmail(context.Background(), []string{"a@example.com", "", "b@example.com"},
		models.NotificationLog{Subject: "s", FromUser: adminUser.Name})
	require.NoError(t, err)
	require.Len(t, store.logs, 2)
	assert.Equal(t, "a@example.com", store.logs[0].ForUser)
	assert.Equal(t, "b@example.com", store.logs[1].ForUser)
	assert.Equal(t, "s", store.logs[1].Subject)
}

func TestMarkAsRead(t *testing.T) {
	store := &fakeNotifications{}
	svc := NewNotificationService(store)
	ctx := context.Background()
	require.NoError(t, svc.Notify(ctx, mention(salesUser.Name)))
	id := store.items[0].Name

	// only the recipient can mark it
	err := svc.MarkAsRead(ctx, id, adminUser)
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, svc.MarkAsRead(ctx, id, salesUser))
	assert.True(t, store.items[0].Read)

	list, err := svc.GetMyNotifications(ctx, salesUser)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
