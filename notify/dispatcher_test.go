package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextride/models"
	"nextride/utils"
)

type fakeStore struct {
	mu        sync.Mutex
	inserted  []models.Notification
	tokens    map[string]string
	insertErr error
}

func (f *fakeStore) Insert(_ context.Context, n *models.Notification) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = "n-1"
	f.inserted = append(f.inserted, *n)
	return nil
}

func (f *fakeStore) DeviceToken(_ context.Context, userID, role string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[role+":"+userID]
	if !ok {
		return "", errors.New("no token")
	}
	return tok, nil
}

type fakePusher struct {
	mu     sync.Mutex
	pushed []string // token
	data   []map[string]string
}

func (f *fakePusher) Push(token, title, body string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, token)
	f.data = append(f.data, data)
	return nil
}

func payload() models.NotificationPayload {
	return models.NotificationPayload{
		RideID: "ride-1",
		Type:   models.NotifyRideAccepted,
		UserID: "cust-1",
		Role:   "customer",
		Title:  "🚗 Driver Found!",
		Body:   "Grace is on the way to pick you up",
	}
}

func TestSend_PersistsAndPushes(t *testing.T) {
	store := &fakeStore{tokens: map[string]string{"customer:cust-1": "tok-abc"}}
	pusher := &fakePusher{}
	d := NewDispatcher(store, pusher)

	require.NoError(t, d.Send(context.Background(), payload()))

	require.Len(t, store.inserted, 1)
	n := store.inserted[0]
	assert.Equal(t, "cust-1", n.UserID)
	assert.Equal(t, models.NotifyRideAccepted, n.Type)
	require.NotNil(t, n.RideID)
	assert.Equal(t, "ride-1", *n.RideID)

	// The push runs on a tracked background goroutine.
	utils.WaitForBackgroundTasks(time.Second)

	pusher.mu.Lock()
	defer pusher.mu.Unlock()
	require.Len(t, pusher.pushed, 1)
	assert.Equal(t, "tok-abc", pusher.pushed[0])
	assert.Equal(t, "ride-1", pusher.data[0]["rideId"])
	assert.Equal(t, "ride_accepted", pusher.data[0]["type"])
}

func TestSend_InsertFailureSurfaces(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("db down")}
	d := NewDispatcher(store, &fakePusher{})

	err := d.Send(context.Background(), payload())
	assert.Error(t, err)
}

func TestSend_MissingTokenIsQuiet(t *testing.T) {
	store := &fakeStore{tokens: map[string]string{}}
	pusher := &fakePusher{}
	d := NewDispatcher(store, pusher)

	require.NoError(t, d.Send(context.Background(), payload()))
	utils.WaitForBackgroundTasks(time.Second)

	pusher.mu.Lock()
	defer pusher.mu.Unlock()
	assert.Empty(t, pusher.pushed, "no token means no push, but the row is still persisted")
	assert.Len(t, store.inserted, 1)
}

func TestSend_NoPusherConfigured(t *testing.T) {
	store := &fakeStore{}
	d := NewDispatcher(store, nil)

	require.NoError(t, d.Send(context.Background(), payload()))
	assert.Len(t, store.inserted, 1)
}
