package service

import (
	"context"
	"fmt"
	"time"

	"recruit-service/internal/models"
	"recruit-service/internal/realtime"
	"recruit-service/internal/repository"
)

// CreateNotificationInput is what notification-producing business logic
// (application pipeline, interview scheduler, Kafka ingest) hands to Notify.
type CreateNotificationInput struct {
	UserID    uint                    `json:"userId" binding:"required"`
	Title     string                  `json:"title" binding:"required"`
	Body      string                  `json:"body"`
	Kind      models.NotificationKind `json:"kind"`
	RelatedID uint                    `json:"relatedId"`
}

// NotificationPayload is the wire shape pushed to clients.
type NotificationPayload struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Kind      string `json:"kind"`
	RelatedID uint   `json:"relatedId"`
	CreatedAt string `json:"createdAt"`
}

// NotificationService persists notifications and dispatches them to live
// connections. Persistence always happens first; a user with no live
// connection simply picks the notification up from the store later.
type NotificationService struct {
	repo       repository.NotificationRepository
	dispatcher *realtime.NotificationDispatcher
}

func NewNotificationService(repo repository.NotificationRepository, dispatcher *realtime.NotificationDispatcher) *NotificationService {
	return &NotificationService{repo: repo, dispatcher: dispatcher}
}

// Notify saves the notification and pushes it to the target user's live
// connections. A persistence failure aborts before any push.
func (s *NotificationService) Notify(ctx context.Context, input CreateNotificationInput) (*models.Notification, realtime.DeliveryResult, error) {
	kind := input.Kind
	if kind == "" {
		kind = models.NotificationSystem
	}

	notification := &models.Notification{
		UserID:    input.UserID,
		Title:     input.Title,
		Body:      input.Body,
		Kind:      kind,
		RelatedID: input.RelatedID,
	}
	if err := s.repo.Save(ctx, notification); err != nil {
		return nil, realtime.DeliveryResult{}, fmt.Errorf("save notification: %w", err)
	}

	result := s.dispatcher.PushToUser(notification.UserID, realtime.EventNotification, toPayload(notification))
	return notification, result, nil
}

// Broadcast pushes an announcement to every live connection. Nothing is
// persisted per user; platform-wide announcements live elsewhere.
func (s *NotificationService) Broadcast(title, body string) realtime.DeliveryResult {
	payload := NotificationPayload{Title: title, Body: body, Kind: string(models.NotificationSystem)}
	return s.dispatcher.BroadcastToAll(realtime.EventNotification, payload)
}

// List returns the user's most recent notifications.
func (s *NotificationService) List(ctx context.Context, userID uint, limit int) ([]*models.Notification, error) {
	notifications, err := s.repo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one notification as read and pushes the refreshed badge
// count to the user's live connections.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if _, err := s.PushUnreadCount(ctx, userID); err != nil {
		return err
	}
	return nil
}

// PushUnreadCount pushes the user's current unread badge count.
func (s *NotificationService) PushUnreadCount(ctx context.Context, userID uint) (realtime.DeliveryResult, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return realtime.DeliveryResult{}, fmt.Errorf("count unread: %w", err)
	}
	return s.dispatcher.PushCountUpdate(userID, count), nil
}

func toPayload(n *models.Notification) NotificationPayload {
	return NotificationPayload{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Kind:      string(n.Kind),
		RelatedID: n.RelatedID,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}
