package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"printmarket/internal/domain/entity"
	"printmarket/internal/domain/repository"
	"printmarket/pkg/errors"
	"printmarket/pkg/logger"
)

// Broadcaster fans a payload out to other connected contexts. The websocket
// manager satisfies this; remote contexts reload their notification list
// from durable storage when a signal arrives.
type Broadcaster interface {
	Broadcast(message []byte)
	SendToUser(userID string, message []byte)
}

// Subscriber is invoked with the full current notification list, newest
// first, on subscribe and after every change.
type Subscriber func(notifications []*entity.Notification)

type busEnvelope struct {
	Type         string               `json:"type"`
	Notification *entity.Notification `json:"notification,omitempty"`
}

// NotificationBus holds a bounded in-memory list of notifications mirrored
// to durable storage on every mutation. Storage is the source of truth; the
// in-memory list is a cache. Delivery is at-most-once and best-effort: once
// an entry falls off the cap it is gone.
type NotificationBus struct {
	repo        repository.NotificationRepository
	broadcaster Broadcaster
	cap         int

	mu            sync.Mutex
	notifications []*entity.Notification // oldest first
	subscribers   map[int]Subscriber
	nextSubID     int
}

func NewNotificationBus(repo repository.NotificationRepository, broadcaster Broadcaster, cap int) *NotificationBus {
	if cap <= 0 {
		cap = 100
	}
	return &NotificationBus{
		repo:        repo,
		broadcaster: broadcaster,
		cap:         cap,
		subscribers: make(map[int]Subscriber),
	}
}

// Start loads the persisted notification list into the cache. Call once
// before serving traffic.
func (b *NotificationBus) Start(ctx context.Context) error {
	notifications, err := b.repo.List(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.notifications = notifications
	b.mu.Unlock()

	logger.Info("Notification bus started with %d notifications", len(notifications))
	return nil
}

// Publish assigns identity and timestamp, appends the notification, evicts
// beyond the cap, persists, signals other contexts and then notifies local
// subscribers. The UserID on the notification decides addressing: empty
// means broadcast to everyone.
func (b *NotificationBus) Publish(ctx context.Context, notification *entity.Notification) (*entity.Notification, error) {
	if notification.Type == "" {
		return nil, errors.BadRequest("Notification type is required", nil)
	}

	notification.ID = uuid.New().String()
	notification.Timestamp = time.Now()
	notification.Read = false

	b.mu.Lock()
	b.notifications = append(b.notifications, notification)
	evicted := b.evictLocked()
	b.mu.Unlock()

	for _, old := range evicted {
		if err := b.repo.Delete(ctx, old.ID); err != nil {
			logger.Warn("Failed to delete evicted notification %s: %v", old.ID, err)
		}
	}

	if err := b.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	b.signal(busEnvelope{Type: notification.Type, Notification: notification})
	b.notifySubscribers()

	return notification, nil
}

// evictLocked trims the oldest entries beyond the cap and returns them.
// Callers must hold b.mu.
func (b *NotificationBus) evictLocked() []*entity.Notification {
	if len(b.notifications) <= b.cap {
		return nil
	}
	overflow := len(b.notifications) - b.cap
	evicted := b.notifications[:overflow]
	b.notifications = b.notifications[overflow:]
	return evicted
}

// Subscribe registers a callback and immediately invokes it with the
// current list so late subscribers don't miss the current snapshot. The
// returned function unsubscribes.
func (b *NotificationBus) Subscribe(subscriber Subscriber) func() {
	b.mu.Lock()
	id := b.nextSubID
	b.nextSubID++
	b.subscribers[id] = subscriber
	snapshot := b.snapshotLocked("")
	b.mu.Unlock()

	subscriber(snapshot)

	return func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}
}

// GetNotifications returns notifications visible to userID, newest first.
// Empty userID returns everything (admin view).
func (b *NotificationBus) GetNotifications(userID string) []*entity.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked(userID)
}

// GetUnreadCount counts unread notifications visible to userID.
func (b *NotificationBus) GetUnreadCount(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, n := range b.notifications {
		if !n.Read && b.visibleTo(n, userID) {
			count++
		}
	}
	return count
}

// MarkAsRead flips one notification to read. Owner scopes the lookup:
// only notifications visible to owner can be marked, and a foreign id
// reads as not found. Empty owner is the admin view and matches anything.
func (b *NotificationBus) MarkAsRead(ctx context.Context, id, owner string) error {
	b.mu.Lock()
	var target *entity.Notification
	for _, n := range b.notifications {
		if n.ID == id {
			if owner == "" || b.visibleTo(n, owner) {
				n.Read = true
				target = n
			}
			break
		}
	}
	b.mu.Unlock()

	if target == nil {
		return errors.NotFound("Notification", nil)
	}

	if err := b.repo.Update(ctx, target); err != nil {
		return err
	}

	b.signal(busEnvelope{Type: "notifications_updated"})
	b.notifySubscribers()
	return nil
}

// MarkAllAsRead flips every notification visible to userID to read. Empty
// userID marks everything. Broadcast notifications carry a single shared
// Read flag, so a read-all by any recipient marks them read for every
// other user as well.
func (b *NotificationBus) MarkAllAsRead(ctx context.Context, userID string) error {
	b.mu.Lock()
	var touched []*entity.Notification
	for _, n := range b.notifications {
		if !n.Read && (userID == "" || b.visibleTo(n, userID)) {
			n.Read = true
			touched = append(touched, n)
		}
	}
	b.mu.Unlock()

	for _, n := range touched {
		if err := b.repo.Update(ctx, n); err != nil {
			return err
		}
	}

	b.signal(busEnvelope{Type: "notifications_updated"})
	b.notifySubscribers()
	return nil
}

// Delete removes one notification owned by owner. The shared state is
// global, so only the addressee may remove a targeted notification and
// broadcast entries require the admin view (empty owner). A foreign
// targeted id reads as not found.
func (b *NotificationBus) Delete(ctx context.Context, id, owner string) error {
	b.mu.Lock()
	var target *entity.Notification
	index := -1
	for i, n := range b.notifications {
		if n.ID == id {
			target = n
			index = i
			break
		}
	}
	if target != nil && owner != "" {
		if target.UserID == "" {
			b.mu.Unlock()
			return errors.Forbidden("Broadcast notifications can only be removed by an admin", nil)
		}
		if target.UserID != owner {
			b.mu.Unlock()
			return errors.NotFound("Notification", nil)
		}
	}
	if target != nil {
		b.notifications = append(b.notifications[:index], b.notifications[index+1:]...)
	}
	b.mu.Unlock()

	if target == nil {
		return errors.NotFound("Notification", nil)
	}

	if err := b.repo.Delete(ctx, id); err != nil {
		return err
	}

	b.signal(busEnvelope{Type: "notifications_updated"})
	b.notifySubscribers()
	return nil
}

// Clear removes all notifications addressed to userID. Empty userID clears
// the whole list.
func (b *NotificationBus) Clear(ctx context.Context, userID string) error {
	b.mu.Lock()
	kept := b.notifications[:0]
	var removed []*entity.Notification
	for _, n := range b.notifications {
		if userID != "" && n.UserID != userID {
			kept = append(kept, n)
		} else {
			removed = append(removed, n)
		}
	}
	b.notifications = kept
	b.mu.Unlock()

	if userID == "" {
		for _, n := range removed {
			if err := b.repo.Delete(ctx, n.ID); err != nil {
				return err
			}
		}
	} else if err := b.repo.DeleteByUserID(ctx, userID); err != nil {
		return err
	}

	b.signal(busEnvelope{Type: "notifications_updated"})
	b.notifySubscribers()
	return nil
}

// Reload replaces the cache from durable storage and re-notifies local
// subscribers. Called when a broadcast signal arrives from another context;
// the reload is a full replace, not an incremental merge.
func (b *NotificationBus) Reload(ctx context.Context) error {
	notifications, err := b.repo.List(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.notifications = notifications
	b.mu.Unlock()

	b.notifySubscribers()
	return nil
}

func (b *NotificationBus) visibleTo(n *entity.Notification, userID string) bool {
	return n.UserID == "" || n.UserID == userID
}

// snapshotLocked returns a newest-first copy filtered for userID. Callers
// must hold b.mu.
func (b *NotificationBus) snapshotLocked(userID string) []*entity.Notification {
	snapshot := make([]*entity.Notification, 0, len(b.notifications))
	for i := len(b.notifications) - 1; i >= 0; i-- {
		n := b.notifications[i]
		if userID == "" || b.visibleTo(n, userID) {
			snapshot = append(snapshot, n)
		}
	}
	return snapshot
}

func (b *NotificationBus) signal(envelope busEnvelope) {
	if b.broadcaster == nil {
		return
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		logger.Error("Failed to marshal bus envelope: %v", err)
		return
	}

	if envelope.Notification != nil && envelope.Notification.UserID != "" {
		b.broadcaster.SendToUser(envelope.Notification.UserID, payload)
		return
	}
	b.broadcaster.Broadcast(payload)
}

func (b *NotificationBus) notifySubscribers() {
	b.mu.Lock()
	subscribers := make([]Subscriber, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		subscribers = append(subscribers, s)
	}
	snapshot := b.snapshotLocked("")
	b.mu.Unlock()

	for _, subscriber := range subscribers {
		subscriber(snapshot)
	}
}
