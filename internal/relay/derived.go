package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// Derived regenerates one unread notification per task whenever the task
// list changes. Nothing is persisted: marking read or clearing mutates only
// the in-memory list and is lost on the next rebuild or reload.
type Derived struct {
	mu            sync.Mutex
	notifications []models.Notification
}

// NewDerived creates an empty derived relay.
func NewDerived() *Derived {
	return &Derived{}
}

// Rebuild regenerates the list from tasks. Read/cleared state of previous
// generations is intentionally not carried over.
func (d *Derived) Rebuild(tasks []models.Task) {
	notifications := make([]models.Notification, 0, len(tasks))
	for _, task := range tasks {
		notifications = append(notifications, models.Notification{
			ID:        task.ID,
			OwnerID:   task.OwnerID,
			Message:   fmt.Sprintf("Task %q is %s", task.Title, task.Status),
			Status:    models.NotificationUnread,
			TaskID:    task.ID,
			CreatedAt: task.CreatedAt,
		})
	}

	d.mu.Lock()
	d.notifications = notifications
	d.mu.Unlock()
}

func (d *Derived) Notifications() []models.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Notification, len(d.notifications))
	copy(out, d.notifications)
	return out
}

func (d *Derived) UnreadCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for _, n := range d.notifications {
		if n.Status == models.NotificationUnread {
			count++
		}
	}
	return count
}

func (d *Derived) MarkRead(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.notifications {
		if d.notifications[i].ID == id {
			d.notifications[i].Status = models.NotificationRead
			return nil
		}
	}
	return nil
}

func (d *Derived) MarkAllRead(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.notifications {
		d.notifications[i].Status = models.NotificationRead
	}
	return nil
}

func (d *Derived) Clear(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.notifications {
		if d.notifications[i].ID == id {
			d.notifications = append(d.notifications[:i], d.notifications[i+1:]...)
			return nil
		}
	}
	return nil
}
