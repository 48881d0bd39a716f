package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recruit-service/internal/api/middleware"
	"recruit-service/internal/service"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// CreateNotification persists a notification and pushes it to the target
// user's live connections. Dead connections are invisible to the caller; a
// persistence failure is the only error surfaced.
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var input service.CreateNotificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification, result, err := h.notifications.Notify(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save notification"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"notification": notification,
		"delivered":    result.Delivered,
	})
}

// ListNotifications returns the caller's most recent notifications.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkNotificationRead marks one of the caller's notifications as read and
// pushes the refreshed badge count to their connections.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), id, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification read"})
		return
	}
	c.Status(http.StatusNoContent)
}

type broadcastRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// Broadcast pushes an announcement to every connected user.
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.notifications.Broadcast(req.Title, req.Body)
	c.JSON(http.StatusOK, gin.H{
		"attempted": result.Attempted,
		"delivered": result.Delivered,
	})
}

// PushUnreadCount re-pushes the caller's unread badge count to their own
// connections (e.g. after marking notifications read in another view).
func (h *NotificationHandler) PushUnreadCount(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	result, err := h.notifications.PushUnreadCount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to push unread count"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivered": result.Delivered})
}

// parseIDParam is shared by handlers taking a numeric path id.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
