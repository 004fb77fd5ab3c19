// Package taskstore holds the client-side task list: the single source of
// truth the UI renders from. The store is either a cache over a remote table
// (backed mode) or fully authoritative with blob persistence (local-only
// mode); both modes converge on the same in-memory representation.
package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// ErrTitleRequired is returned before any backend call when a draft has an
// empty title. It is a form-level validation error, not a toast.
var ErrTitleRequired = errors.New("title is required")

// ErrNotFound is returned when an id is not present in the store.
var ErrNotFound = errors.New("task not found")

// Backend is the remote table a backed store caches. Implementations must
// scope every call to the authenticated owner.
type Backend interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	InsertTask(ctx context.Context, draft Draft) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch Patch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Draft is the caller-supplied part of a new task. The id, owner, status and
// creation time are always assigned by the store or the backend.
type Draft struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueDate     time.Time           `json:"due_date"`
	Priority    models.TaskPriority `json:"priority"`
	AssignedTo  string              `json:"assigned_to"`
}

// Patch lists every mutable task field. Nil fields are left unchanged;
// unknown fields cannot be expressed.
type Patch struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
	Priority    *models.TaskPriority `json:"priority,omitempty"`
	Status      *models.TaskStatus   `json:"status,omitempty"`
	AssignedTo  *string              `json:"assigned_to,omitempty"`
}

func (p Patch) apply(task *models.Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.DueDate != nil {
		task.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.AssignedTo != nil {
		task.AssignedTo = *p.AssignedTo
	}
}

// Notifier receives the user-facing outcome of every store mutation: one
// transient notification per success and per failure.
type Notifier interface {
	Success(title, detail string)
	Error(title, detail string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string, string) {}
func (NopNotifier) Error(string, string)   {}

// Blob is the key-value persistence used by local-only mode.
type Blob interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
