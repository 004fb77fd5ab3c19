package handlers

import (
	"errors"
	"net/http"

	"github.com/adithyakesavan/taskdeck/internal/dto"
	apierrors "github.com/adithyakesavan/taskdeck/internal/errors"
	"github.com/adithyakesavan/taskdeck/internal/middleware"
	"github.com/adithyakesavan/taskdeck/internal/services"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifService *services.NotificationService
}

func NewNotificationHandler(notifService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notifService: notifService,
	}
}

// ListNotifications returns the owner's notifications, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	notifications, err := h.notifService.ListNotifications(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch notifications")
		return
	}

	items := make([]dto.NotificationDTO, len(notifications))
	for i, n := range notifications {
		items[i] = dto.ToNotificationDTO(n)
	}

	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// MarkRead flips one notification to read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	n, err := h.notifService.MarkRead(c.Param("id"), userID)
	if err != nil {
		respondNotificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationDTO(*n))
}

// MarkAllRead flips every unread notification of the owner to read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	updated, err := h.notifService.MarkAllRead(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to mark notifications read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DeleteNotification removes one notification.
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.notifService.DeleteNotification(c.Param("id"), userID); err != nil {
		respondNotificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification deleted successfully",
	})
}

func respondNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotificationNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
