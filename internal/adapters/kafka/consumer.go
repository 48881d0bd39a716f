package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"recruit-service/internal/models"
	"recruit-service/internal/service"
)

// notificationEvent is the shape business services publish when something a
// user should hear about happens (application status change, interview
// scheduled).
type notificationEvent struct {
	UserID    uint   `json:"userId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Kind      string `json:"kind"`
	RelatedID uint   `json:"relatedId"`
}

// Consumer reads platform notification events and hands them to the
// notification service, which persists and then pushes them.
type Consumer struct {
	reader        *kafka.Reader
	notifications *service.NotificationService
}

func NewConsumer(brokers []string, topic, groupID string, notifications *service.NotificationService) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &Consumer{reader: reader, notifications: notifications}
}

// Run consumes until the context is canceled. Offsets are committed only
// after the notification is persisted, so a crash between save and commit
// can at worst duplicate a notification, never lose one.
func (c *Consumer) Run(ctx context.Context) {
	slog.Info("Kafka notification consumer started", "topic", c.reader.Config().Topic)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				slog.Info("Kafka notification consumer stopping")
				return
			}
			slog.Error("Failed to fetch kafka message", "error", err)
			continue
		}

		var event notificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Warn("Skipping malformed notification event", "offset", msg.Offset, "error", err)
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				slog.Error("Failed to commit kafka offset", "error", err)
			}
			continue
		}

		_, result, err := c.notifications.Notify(ctx, service.CreateNotificationInput{
			UserID:    event.UserID,
			Title:     event.Title,
			Body:      event.Body,
			Kind:      models.NotificationKind(event.Kind),
			RelatedID: event.RelatedID,
		})
		if err != nil {
			// Leave the offset uncommitted so the event is retried.
			slog.Error("Failed to process notification event", "userID", event.UserID, "error", err)
			continue
		}
		slog.Debug("Notification event processed",
			"userID", event.UserID, "delivered", result.Delivered, "failed", result.Failed())

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			slog.Error("Failed to commit kafka offset", "error", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
