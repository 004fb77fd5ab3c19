package repository

import (
	"time"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// TaskRepository defines the interface for task data access. Every method is
// owner-scoped; a task is never visible outside its owner.
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task scoped to (id, ownerID)
	FindByID(id, ownerID string) (*models.Task, error)

	// List retrieves an owner's tasks with filtering, newest first by default
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update persists a modified task
	Update(task *models.Task) error

	// Delete soft deletes a task scoped to (id, ownerID)
	Delete(id, ownerID string) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OwnerID       string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDateFrom   *time.Time
	DueDateTo     *time.Time
	SortByDueDate bool
	Offset        int
	Limit         int
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create creates a new notification
	Create(n *models.Notification) error

	// FindByID finds a notification scoped to (id, ownerID)
	FindByID(id, ownerID string) (*models.Notification, error)

	// List retrieves an owner's notifications, newest first
	List(ownerID string) ([]models.Notification, error)

	// MarkRead flips a single notification to read
	MarkRead(id, ownerID string) error

	// MarkAllRead flips every unread notification of the owner to read
	MarkAllRead(ownerID string) (int64, error)

	// Delete removes a notification scoped to (id, ownerID)
	Delete(id, ownerID string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Update persists a modified user
	Update(user *models.User) error

	// CreatePasswordReset stores a reset token for a user
	CreatePasswordReset(reset *models.PasswordReset) error
}
