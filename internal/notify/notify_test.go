package notify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popin/backend/internal/models"
	"popin/backend/internal/notify"
	"popin/backend/internal/storage"
)

type fakeStore struct {
	storage.Storage
	published []models.NotificationEvent
	saved     []models.NotificationLog
	pubErr    error
}

func (f *fakeStore) PublishNotification(event models.NotificationEvent) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.published = append(f.published, event)
	return nil
}

func (f *fakeStore) SaveNotification(entry *models.NotificationLog) error {
	f.saved = append(f.saved, *entry)
	return nil
}

func TestNotify_PublishesAndLogs(t *testing.T) {
	store := &fakeStore{}
	svc := notify.NewService(store, nil)

	err := svc.Notify("sess", "cafe", "Corniche Cafe", "You're near Corniche Cafe. The room is open.")
	require.NoError(t, err)

	require.Len(t, store.published, 1)
	assert.Equal(t, "sess", store.published[0].SessionID)
	assert.Equal(t, "cafe", store.published[0].PlaceID)
	assert.False(t, store.published[0].SentAt.IsZero())

	require.Len(t, store.saved, 1)
	assert.True(t, store.saved[0].Delivered)
}

func TestNotify_PublishFailureStillAudited(t *testing.T) {
	store := &fakeStore{pubErr: errors.New("redis down")}
	svc := notify.NewService(store, nil)

	err := svc.Notify("sess", "cafe", "Corniche Cafe", "body")
	assert.Error(t, err, "the first delivery error surfaces to the caller")

	require.Len(t, store.saved, 1, "the audit row is written even when delivery fails")
	assert.False(t, store.saved[0].Delivered)
}
