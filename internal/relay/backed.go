package relay

import (
	"context"
	"log"
	"sync"

	"github.com/adithyakesavan/taskdeck/internal/models"
	"github.com/adithyakesavan/taskdeck/internal/taskstore"
)

// Backed mirrors the remote notifications table for the current owner.
// Mutations round-trip through the backend; the local copy is kept live by
// pushed change events.
type Backed struct {
	mu            sync.Mutex
	backend       Backend
	notify        taskstore.Notifier
	notifications []models.Notification
	unread        int
}

// NewBacked creates a backed relay. notify receives a toast for every newly
// pushed unread notification; pass nil to silence it.
func NewBacked(backend Backend, notify taskstore.Notifier) *Backed {
	if notify == nil {
		notify = taskstore.NopNotifier{}
	}
	return &Backed{backend: backend, notify: notify}
}

// Load replaces the local copy with the backend's current list.
func (b *Backed) Load(ctx context.Context) error {
	notifications, err := b.backend.ListNotifications(ctx)
	if err != nil {
		log.Printf("relay: failed to load notifications: %v", err)
		return err
	}

	unread := 0
	for _, n := range notifications {
		if n.Status == models.NotificationUnread {
			unread++
		}
	}

	b.mu.Lock()
	b.notifications = notifications
	b.unread = unread
	b.mu.Unlock()
	return nil
}

// Reset drops the local copy, used when the session ends.
func (b *Backed) Reset() {
	b.mu.Lock()
	b.notifications = nil
	b.unread = 0
	b.mu.Unlock()
}

// HandleEvent folds one pushed change event into the local copy. Events for
// other tables are ignored.
func (b *Backed) HandleEvent(ev models.ChangeEvent) {
	if ev.Table != models.TableNotifications || ev.Notification == nil {
		return
	}
	n := *ev.Notification

	b.mu.Lock()
	switch ev.Type {
	case models.EventInsert:
		if idx := b.index(n.ID); idx >= 0 {
			b.notifications[idx] = n
		} else {
			b.notifications = append([]models.Notification{n}, b.notifications...)
			if n.Status == models.NotificationUnread {
				b.unread++
			}
		}
	case models.EventUpdate:
		if idx := b.index(n.ID); idx >= 0 {
			old := b.notifications[idx].Status
			b.notifications[idx] = n
			if old == models.NotificationUnread && n.Status == models.NotificationRead {
				b.unread--
			} else if old == models.NotificationRead && n.Status == models.NotificationUnread {
				b.unread++
			}
		}
	case models.EventDelete:
		if idx := b.index(n.ID); idx >= 0 {
			if b.notifications[idx].Status == models.NotificationUnread && b.unread > 0 {
				b.unread--
			}
			b.notifications = append(b.notifications[:idx], b.notifications[idx+1:]...)
		}
	}
	b.mu.Unlock()

	if ev.Type == models.EventInsert && n.Status == models.NotificationUnread {
		b.notify.Success("New Notification", n.Message)
	}
}

func (b *Backed) Notifications() []models.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Notification, len(b.notifications))
	copy(out, b.notifications)
	return out
}

func (b *Backed) UnreadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unread
}

// MarkRead flips one notification to read on the backend. The local copy is
// updated by the resulting pushed event, or immediately when no feed runs.
func (b *Backed) MarkRead(ctx context.Context, id string) error {
	if err := b.backend.MarkNotificationRead(ctx, id); err != nil {
		log.Printf("relay: failed to mark notification read: %v", err)
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if idx := b.index(id); idx >= 0 && b.notifications[idx].Status == models.NotificationUnread {
		b.notifications[idx].Status = models.NotificationRead
		b.unread--
	}
	return nil
}

// MarkAllRead flips every unread notification to read on the backend.
func (b *Backed) MarkAllRead(ctx context.Context) error {
	if err := b.backend.MarkAllNotificationsRead(ctx); err != nil {
		log.Printf("relay: failed to mark notifications read: %v", err)
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.notifications {
		b.notifications[i].Status = models.NotificationRead
	}
	b.unread = 0
	return nil
}

// Clear removes one notification on the backend.
func (b *Backed) Clear(ctx context.Context, id string) error {
	if err := b.backend.DeleteNotification(ctx, id); err != nil {
		log.Printf("relay: failed to delete notification: %v", err)
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if idx := b.index(id); idx >= 0 {
		if b.notifications[idx].Status == models.NotificationUnread && b.unread > 0 {
			b.unread--
		}
		b.notifications = append(b.notifications[:idx], b.notifications[idx+1:]...)
	}
	return nil
}

// index must be called with the mutex held.
func (b *Backed) index(id string) int {
	for i := range b.notifications {
		if b.notifications[i].ID == id {
			return i
		}
	}
	return -1
}
