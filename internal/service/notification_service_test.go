package service

import (
	"context"
	"testing"

	"taskflow/internal/apperr"
	"taskflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkAsReadIdempotentAndRecipientOnly(t *testing.T) {
	f := newFixture(t)
	petitionSvc := newPetitionService(f, &recordingMailer{})
	svc := NewNotificationService(f.notificationRepo)

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	other := f.seedUser(t, "other", model.RoleEmployee)

	// Creating a petition notifies the admin.
	f.seedPetition(t, petitionSvc, admin, "Noisy", true)

	notifications, total, err := svc.List(context.Background(), admin.ID, true, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	id := mustParse(t, notifications[0].ID)

	// Not the recipient.
	_, err = svc.MarkAsRead(context.Background(), other.ID, id)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	read, err := svc.MarkAsRead(context.Background(), admin.ID, id)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationRead, read.Status)

	// Second call succeeds without change.
	read, err = svc.MarkAsRead(context.Background(), admin.ID, id)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationRead, read.Status)

	// The unread filter now hides it.
	_, total, err = svc.List(context.Background(), admin.ID, true, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	_, total, err = svc.List(context.Background(), admin.ID, false, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestListNotificationsIsRecipientScoped(t *testing.T) {
	f := newFixture(t)
	petitionSvc := newPetitionService(f, &recordingMailer{})
	svc := NewNotificationService(f.notificationRepo)

	admin := f.seedUser(t, "admin", model.RoleAdmin)
	employee := f.seedUser(t, "employee", model.RoleEmployee)

	f.seedPetition(t, petitionSvc, employee, "Scoped", true)

	_, total, err := svc.List(context.Background(), admin.ID, false, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// The author is an employee and receives nothing.
	_, total, err = svc.List(context.Background(), employee.ID, false, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
