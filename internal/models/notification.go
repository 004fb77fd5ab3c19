package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

// Notification is an owner-scoped message, usually raised by a task mutation.
// TaskID is a lookup back-reference, not ownership; deleting the task does not
// cascade into its notifications.
type Notification struct {
	ID        string             `gorm:"type:varchar(36);primarykey" json:"id"`
	OwnerID   string             `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Message   string             `gorm:"type:varchar(512);not null" json:"message"`
	Status    NotificationStatus `gorm:"type:varchar(10);not null;default:'unread'" json:"status"`
	TaskID    string             `gorm:"type:varchar(36)" json:"task_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
