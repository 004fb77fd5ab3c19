package dto

import (
	"time"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string              `json:"id"`
	OwnerID     string              `json:"owner_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueDate     time.Time           `json:"due_date"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	AssignedTo  string              `json:"assigned_to,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID        string                    `json:"id"`
	Message   string                    `json:"message"`
	Status    models.NotificationStatus `json:"status"`
	TaskID    string                    `json:"task_id,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
}

// TaskListResponse represents a list of tasks with its total count
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	Total int64     `json:"total"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		ProfilePictureURL: user.ProfilePictureURL,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		OwnerID:     task.OwnerID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Priority:    task.Priority,
		Status:      task.Status,
		AssignedTo:  task.AssignedTo,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return TaskListResponse{Tasks: items, Total: total}
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Message:   n.Message,
		Status:    n.Status,
		TaskID:    n.TaskID,
		CreatedAt: n.CreatedAt,
	}
}
