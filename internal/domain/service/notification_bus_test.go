package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printmarket/internal/domain/entity"
	"printmarket/pkg/errors"
)

type stubNotificationRepo struct {
	mu            sync.Mutex
	notifications []*entity.Notification
	creates       int
	deletes       int
}

func (r *stubNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	r.creates++
	return nil
}

func (r *stubNotificationRepo) List(ctx context.Context) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Notification, len(r.notifications))
	copy(out, r.notifications)
	return out, nil
}

func (r *stubNotificationRepo) Update(ctx context.Context, n *entity.Notification) error {
	return nil
}

func (r *stubNotificationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			r.deletes++
			return nil
		}
	}
	return errors.NotFound("Notification", nil)
}

func (r *stubNotificationRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	r.notifications = kept
	return nil
}

func (r *stubNotificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notifications)
}

type recordingBroadcaster struct {
	mu         sync.Mutex
	broadcasts [][]byte
	sends      map[string][][]byte
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{sends: make(map[string][][]byte)}
}

func (b *recordingBroadcaster) Broadcast(message []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broadcasts = append(b.broadcasts, message)
}

func (b *recordingBroadcaster) SendToUser(userID string, message []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sends[userID] = append(b.sends[userID], message)
}

func TestPublishAssignsIdentity(t *testing.T) {
	bus := NewNotificationBus(&stubNotificationRepo{}, nil, 100)

	n, err := bus.Publish(context.Background(), &entity.Notification{
		Type:    entity.NotificationOrderAccepted,
		Title:   "Order Accepted",
		Message: "Your order was accepted",
		UserID:  "U1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Timestamp.IsZero())
	assert.False(t, n.Read)

	_, err = bus.Publish(context.Background(), &entity.Notification{Title: "no type"})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestPublishEvictsOldestBeyondCap(t *testing.T) {
	repo := &stubNotificationRepo{}
	bus := NewNotificationBus(repo, nil, 100)

	ctx := context.Background()
	for i := 0; i < 150; i++ {
		_, err := bus.Publish(ctx, &entity.Notification{
			Type:    entity.NotificationOrderStatusUpdate,
			Title:   fmt.Sprintf("update %d", i),
			Message: "order moved",
			UserID:  "U1",
		})
		require.NoError(t, err)
	}

	all := bus.GetNotifications("")
	require.Len(t, all, 100)

	// Newest first: the last publish leads, the 50 oldest are gone.
	assert.Equal(t, "update 149", all[0].Title)
	assert.Equal(t, "update 50", all[99].Title)

	// Storage mirrors the cache, including the evictions.
	assert.Equal(t, 100, repo.count())
	assert.Equal(t, 50, repo.deletes)
}

func TestSubscribeDeliversImmediateSnapshot(t *testing.T) {
	bus := NewNotificationBus(&stubNotificationRepo{}, nil, 100)
	ctx := context.Background()

	_, err := bus.Publish(ctx, &entity.Notification{Type: "a", Title: "first"})
	require.NoError(t, err)

	var got [][]*entity.Notification
	unsubscribe := bus.Subscribe(func(notifications []*entity.Notification) {
		got = append(got, notifications)
	})

	// Snapshot arrives synchronously on subscribe.
	require.Len(t, got, 1)
	require.Len(t, got[0], 1)
	assert.Equal(t, "first", got[0][0].Title)

	_, err = bus.Publish(ctx, &entity.Notification{Type: "b", Title: "second"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Len(t, got[1], 2)
	assert.Equal(t, "second", got[1][0].Title)

	unsubscribe()
	_, err = bus.Publish(ctx, &entity.Notification{Type: "c", Title: "third"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetNotificationsVisibility(t *testing.T) {
	bus := NewNotificationBus(&stubNotificationRepo{}, nil, 100)
	ctx := context.Background()

	_, err := bus.Publish(ctx, &entity.Notification{Type: "a", Title: "for U1", UserID: "U1"})
	require.NoError(t, err)
	_, err = bus.Publish(ctx, &entity.Notification{Type: "b", Title: "for U2", UserID: "U2"})
	require.NoError(t, err)
	_, err = bus.Publish(ctx, &entity.Notification{Type: "c", Title: "for everyone"})
	require.NoError(t, err)

	u1 := bus.GetNotifications("U1")
	require.Len(t, u1, 2)
	assert.Equal(t, "for everyone", u1[0].Title)
	assert.Equal(t, "for U1", u1[1].Title)

	assert.Len(t, bus.GetNotifications(""), 3)
	assert.Equal(t, 2, bus.GetUnreadCount("U1"))
	assert.Equal(t, 3, bus.GetUnreadCount(""))
}

func TestMarkAsRead(t *testing.T) {
	bus := NewNotificationBus(&stubNotificationRepo{}, nil, 100)
	ctx := context.Background()

	n, err := bus.Publish(ctx, &entity.Notification{Type: "a", Title: "t", UserID: "U1"})
	require.NoError(t, err)

	require.NoError(t, bus.MarkAsRead(ctx, n.ID, "U1"))
	assert.Equal(t, 0, bus.GetUnreadCount("U1"))

	err = bus.MarkAsRead(ctx, "missing", "")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestMarkAsReadOwnership(t *testing.T) {
	bus := NewNotificationBus(&stubNotificationRepo{}, nil, 100)
	ctx := context.Background()

	n, err := bus.Publish(ctx, &entity.Notification{Type: "a", Title: "t", UserID: "U1"})
	require.NoError(t, err)
	broadcast, err := bus.Publish(ctx, &entity.Notification{Type: entity.NotificationAdminAnnouncement, Title: "t"})
	require.NoError(t, err)

	// Another user's targeted notification reads as not found.
	err = bus.MarkAsRead(ctx, n.ID, "U2")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.Equal(t, 2, bus.GetUnreadCount("U1"))

	// Broadcasts are visible to everyone, so any recipient may mark them.
	require.NoError(t, bus.MarkAsRead(ctx, broadcast.ID, "U2"))

	// The admin view matches any notification.
	require.NoError(t, bus.MarkAsRead(ctx, n.ID, ""))
	assert.Equal(t, 0, bus.GetUnreadCount("U1"))
}

func TestMarkAllAsRead(t *testing.T) {
	bus := NewNotificationBus(&stubNotificationRepo{}, nil, 100)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := bus.Publish(ctx, &entity.Notification{Type: "a", Title: "t", UserID: "U1"})
		require.NoError(t, err)
	}
	_, err := bus.Publish(ctx, &entity.Notification{Type: "a", Title: "t", UserID: "U2"})
	require.NoError(t, err)

	require.NoError(t, bus.MarkAllAsRead(ctx, "U1"))
	assert.Equal(t, 0, bus.GetUnreadCount("U1"))
	assert.Equal(t, 1, bus.GetUnreadCount("U2"))
}

func TestDeleteAndClear(t *testing.T) {
	repo := &stubNotificationRepo{}
	bus := NewNotificationBus(repo, nil, 100)
	ctx := context.Background()

	n, err := bus.Publish(ctx, &entity.Notification{Type: "a", Title: "t", UserID: "U1"})
	require.NoError(t, err)
	_, err = bus.Publish(ctx, &entity.Notification{Type: "a", Title: "t", UserID: "U2"})
	require.NoError(t, err)

	require.NoError(t, bus.Delete(ctx, n.ID, "U1"))
	assert.Empty(t, bus.GetNotifications("U1"))
	assert.True(t, errors.Is(bus.Delete(ctx, n.ID, "U1"), "NOT_FOUND"))

	require.NoError(t, bus.Clear(ctx, "U2"))
	assert.Empty(t, bus.GetNotifications(""))
	assert.Equal(t, 0, repo.count())
}

func TestDeleteOwnership(t *testing.T) {
	repo := &stubNotificationRepo{}
	bus := NewNotificationBus(repo, nil, 100)
	ctx := context.Background()

	private, err := bus.Publish(ctx, &entity.Notification{Type: "a", Title: "for U1", UserID: "U1"})
	require.NoError(t, err)
	broadcast, err := bus.Publish(ctx, &entity.Notification{Type: entity.NotificationAdminAnnouncement, Title: "for everyone"})
	require.NoError(t, err)

	// Another user cannot remove U1's notification or the broadcast.
	assert.True(t, errors.Is(bus.Delete(ctx, private.ID, "U2"), "NOT_FOUND"))
	assert.True(t, errors.Is(bus.Delete(ctx, broadcast.ID, "U2"), "FORBIDDEN"))
	require.Len(t, bus.GetNotifications("U1"), 2)
	assert.Equal(t, 2, repo.count())

	// The addressee removes their own; the broadcast takes the admin view.
	require.NoError(t, bus.Delete(ctx, private.ID, "U1"))
	assert.True(t, errors.Is(bus.Delete(ctx, broadcast.ID, "U1"), "FORBIDDEN"))
	require.NoError(t, bus.Delete(ctx, broadcast.ID, ""))
	assert.Empty(t, bus.GetNotifications(""))
}

func TestMarkAllAsReadSharesBroadcastFlag(t *testing.T) {
	bus := NewNotificationBus(&stubNotificationRepo{}, nil, 100)
	ctx := context.Background()

	_, err := bus.Publish(ctx, &entity.Notification{Type: entity.NotificationAdminAnnouncement, Title: "for everyone"})
	require.NoError(t, err)
	_, err = bus.Publish(ctx, &entity.Notification{Type: "a", Title: "for U2", UserID: "U2"})
	require.NoError(t, err)

	// The broadcast carries one shared flag: U1 reading it clears it for
	// U2 as well, but U2's own targeted notification stays unread.
	require.NoError(t, bus.MarkAllAsRead(ctx, "U1"))
	assert.Equal(t, 0, bus.GetUnreadCount("U1"))
	assert.Equal(t, 1, bus.GetUnreadCount("U2"))
}

func TestStartAndReload(t *testing.T) {
	repo := &stubNotificationRepo{
		notifications: []*entity.Notification{
			{ID: "n1", Type: "a", Title: "persisted", UserID: "U1"},
		},
	}
	bus := NewNotificationBus(repo, nil, 100)

	require.NoError(t, bus.Start(context.Background()))
	require.Len(t, bus.GetNotifications("U1"), 1)

	// A remote signal triggers a full reload from storage.
	repo.notifications = append(repo.notifications, &entity.Notification{ID: "n2", Type: "a", Title: "remote", UserID: "U1"})
	require.NoError(t, bus.Reload(context.Background()))
	assert.Len(t, bus.GetNotifications("U1"), 2)
}

func TestSignalAddressing(t *testing.T) {
	broadcaster := newRecordingBroadcaster()
	bus := NewNotificationBus(&stubNotificationRepo{}, broadcaster, 100)
	ctx := context.Background()

	_, err := bus.Publish(ctx, &entity.Notification{Type: "a", Title: "targeted", UserID: "dealer_D1"})
	require.NoError(t, err)
	_, err = bus.Publish(ctx, &entity.Notification{Type: entity.NotificationAdminAnnouncement, Title: "everyone"})
	require.NoError(t, err)

	require.Len(t, broadcaster.sends["dealer_D1"], 1)
	require.Len(t, broadcasts(broadcaster), 1)

	var envelope busEnvelope
	require.NoError(t, json.Unmarshal(broadcaster.sends["dealer_D1"][0], &envelope))
	assert.Equal(t, "a", envelope.Type)
	require.NotNil(t, envelope.Notification)
	assert.Equal(t, "targeted", envelope.Notification.Title)
}

func broadcasts(b *recordingBroadcaster) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.broadcasts
}
