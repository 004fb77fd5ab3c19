// Package relay maintains the small unread/read message list shown in the
// notification popover. Two interchangeable strategies exist: one derived
// from the task list with no persistence, and one backed by the remote
// notifications table plus its push feed.
package relay

import (
	"context"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// Relay is the read surface plus the three user actions of the popover.
type Relay interface {
	// Notifications returns the current list, newest first.
	Notifications() []models.Notification

	// UnreadCount returns how many notifications are unread.
	UnreadCount() int

	// MarkRead flips one notification to read.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead flips every unread notification to read.
	MarkAllRead(ctx context.Context) error

	// Clear removes one notification.
	Clear(ctx context.Context, id string) error
}

// Backend is the remote notifications table used by the backed strategy.
type Backend interface {
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}
