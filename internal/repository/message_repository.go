package repository

import (
	"context"

	"gorm.io/gorm"

	"recruit-service/internal/models"
)

type MessageRepository interface {
	Save(ctx context.Context, message *models.Message) error
	ListByConversation(ctx context.Context, conversationID uint, limit int) ([]*models.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID uint) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Save(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID uint, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	query := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&messages).Error
	return messages, err
}

// MarkRead flags every message in the conversation not sent by the reader.
func (r *messageRepository) MarkRead(ctx context.Context, conversationID, readerID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND `read` = false", conversationID, readerID).
		Update("read", true).Error
}
