package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/adithyakesavan/taskdeck/internal/feedhub"
	"github.com/adithyakesavan/taskdeck/internal/models"
	"github.com/adithyakesavan/taskdeck/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleEmpty      = errors.New("title cannot be empty")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidStatus   = errors.New("invalid status")
)

// TaskService handles task business logic. Every successful mutation raises a
// notification row for the owner and publishes change events on the feed hub.
type TaskService struct {
	taskRepo  repository.TaskRepository
	notifRepo repository.NotificationRepository
	hub       *feedhub.Hub
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, notifRepo repository.NotificationRepository, hub *feedhub.Hub) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		notifRepo: notifRepo,
		hub:       hub,
	}
}

// ListTasksInput represents filters for listing an owner's tasks
type ListTasksInput struct {
	OwnerID       string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueToday      bool
	SortByDueDate bool
	Offset        int
	Limit         int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	OwnerID     string
	Title       string
	Description string
	DueDate     time.Time
	Priority    models.TaskPriority
	AssignedTo  string
}

// UpdateTaskInput lists every mutable task field. Nil means leave unchanged;
// the ID, owner and creation time are immutable by construction.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	AssignedTo  *string
}

// ListTasks returns tasks belonging to the owner with the given filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		OwnerID:       input.OwnerID,
		Status:        input.Status,
		Priority:      input.Priority,
		SortByDueDate: input.SortByDueDate,
		Offset:        input.Offset,
		Limit:         input.Limit,
	}

	if input.DueToday {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)
		filter.DueDateFrom = &startOfDay
		filter.DueDateTo = &endOfDay
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a single task scoped to the owner
func (s *TaskService) GetTask(id, ownerID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a new task. The status is always pending regardless of
// what the caller sends; the server assigns the ID and creation time.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	task := &models.Task{
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		Status:      models.StatusPending,
		AssignedTo:  input.AssignedTo,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.publishTask(models.EventInsert, task)
	s.notify(task.OwnerID, task.ID, fmt.Sprintf("New task added: %s", task.Title))

	return task, nil
}

// UpdateTask applies a typed patch to an existing task
func (s *TaskService) UpdateTask(id, ownerID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.AssignedTo != nil {
		task.AssignedTo = *input.AssignedTo
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.publishTask(models.EventUpdate, task)
	s.notify(task.OwnerID, task.ID, fmt.Sprintf("Task updated: %s", task.Title))

	return task, nil
}

// DeleteTask deletes a task scoped to the owner
func (s *TaskService) DeleteTask(id, ownerID string) error {
	task, err := s.taskRepo.FindByID(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(id, ownerID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.publishTask(models.EventDelete, &models.Task{ID: task.ID, OwnerID: task.OwnerID})
	s.notify(task.OwnerID, "", fmt.Sprintf("Task deleted: %s", task.Title))

	return nil
}

// ToggleTaskStatus flips a task between pending and completed and returns the
// task with the status that was actually written.
func (s *TaskService) ToggleTaskStatus(id, ownerID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task.Status = task.ToggledStatus()

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to toggle status: %w", err)
	}

	s.publishTask(models.EventUpdate, task)
	s.notify(task.OwnerID, task.ID, fmt.Sprintf("Task marked %s: %s", task.Status, task.Title))

	return task, nil
}

func (s *TaskService) publishTask(eventType models.ChangeEventType, task *models.Task) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(task.OwnerID, models.ChangeEvent{
		Type:  eventType,
		Table: models.TableTasks,
		Task:  task,
	})
}

// notify records an owner notification and announces it on the feed. A failed
// notification write never fails the task mutation that triggered it.
func (s *TaskService) notify(ownerID, taskID, message string) {
	if s.notifRepo == nil {
		return
	}

	n := &models.Notification{
		OwnerID: ownerID,
		Message: message,
		Status:  models.NotificationUnread,
		TaskID:  taskID,
	}

	if err := s.notifRepo.Create(n); err != nil {
		log.Printf("failed to record notification for owner %s: %v", ownerID, err)
		return
	}

	if s.hub != nil {
		s.hub.Publish(ownerID, models.ChangeEvent{
			Type:         models.EventInsert,
			Table:        models.TableNotifications,
			Notification: n,
		})
	}
}
