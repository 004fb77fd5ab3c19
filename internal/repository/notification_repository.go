package repository

import (
	"github.com/adithyakesavan/taskdeck/internal/models"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create creates a new notification
func (r *GormNotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

// FindByID finds a notification scoped to (id, ownerID)
func (r *GormNotificationRepository) FindByID(id, ownerID string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// List retrieves an owner's notifications, newest first
func (r *GormNotificationRepository) List(ownerID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flips a single notification to read
func (r *GormNotificationRepository) MarkRead(id, ownerID string) error {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("status", models.NotificationRead)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification of the owner to read
func (r *GormNotificationRepository) MarkAllRead(ownerID string) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("owner_id = ? AND status = ?", ownerID, models.NotificationUnread).
		Update("status", models.NotificationRead)
	return result.RowsAffected, result.Error
}

// Delete removes a notification scoped to (id, ownerID)
func (r *GormNotificationRepository) Delete(id, ownerID string) error {
	result := r.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
