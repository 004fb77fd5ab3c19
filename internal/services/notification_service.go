package services

import (
	"errors"
	"fmt"

	"github.com/adithyakesavan/taskdeck/internal/feedhub"
	"github.com/adithyakesavan/taskdeck/internal/models"
	"github.com/adithyakesavan/taskdeck/internal/repository"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService handles notification business logic
type NotificationService struct {
	notifRepo repository.NotificationRepository
	hub       *feedhub.Hub
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifRepo repository.NotificationRepository, hub *feedhub.Hub) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		hub:       hub,
	}
}

// ListNotifications returns the owner's notifications, newest first
func (s *NotificationService) ListNotifications(ownerID string) ([]models.Notification, error) {
	notifications, err := s.notifRepo.List(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flips one notification to read
func (s *NotificationService) MarkRead(id, ownerID string) (*models.Notification, error) {
	if err := s.notifRepo.MarkRead(id, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}

	n, err := s.notifRepo.FindByID(id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload notification: %w", err)
	}

	s.publish(ownerID, models.EventUpdate, n)
	return n, nil
}

// MarkAllRead flips every unread notification of the owner to read and
// returns how many rows changed.
func (s *NotificationService) MarkAllRead(ownerID string) (int64, error) {
	updated, err := s.notifRepo.MarkAllRead(ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	// Subscribers resynchronize with a list call rather than receiving one
	// update event per row.
	return updated, nil
}

// DeleteNotification removes one notification scoped to the owner
func (s *NotificationService) DeleteNotification(id, ownerID string) error {
	n, err := s.notifRepo.FindByID(id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to find notification: %w", err)
	}

	if err := s.notifRepo.Delete(id, ownerID); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	s.publish(ownerID, models.EventDelete, n)
	return nil
}

func (s *NotificationService) publish(ownerID string, eventType models.ChangeEventType, n *models.Notification) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(ownerID, models.ChangeEvent{
		Type:         eventType,
		Table:        models.TableNotifications,
		Notification: n,
	})
}
