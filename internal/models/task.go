package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// Task is a single to-do item. Every task belongs to exactly one owner and
// all reads and writes are scoped by OwnerID.
type Task struct {
	ID          string         `gorm:"type:varchar(36);primarykey" json:"id"`
	OwnerID     string         `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	DueDate     time.Time      `json:"due_date"`
	Priority    TaskPriority   `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Status      TaskStatus     `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	AssignedTo  string         `gorm:"type:varchar(255)" json:"assigned_to"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// ToggledStatus returns the inverse of the task's current status.
func (t *Task) ToggledStatus() TaskStatus {
	if t.Status == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusCompleted:
		return true
	}
	return false
}
