package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"recruit-service/internal/models"
	"recruit-service/internal/realtime"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	Find(ctx context.Context, id uint) (*models.Conversation, error)
	FindForParticipant(ctx context.Context, id, userID uint) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Conversation, error)
	Touch(ctx context.Context, id uint, at time.Time) error
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

// Find returns realtime.ErrConversationNotFound for an unknown id, which is
// the contract the chat router relies on.
func (r *conversationRepository) Find(ctx context.Context, id uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, realtime.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindForParticipant behaves like Find but also hides conversations the user
// is not part of behind the same not-found error.
func (r *conversationRepository) FindForParticipant(ctx context.Context, id, userID uint) (*models.Conversation, error) {
	conversation, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(userID) {
		return nil, realtime.ErrConversationNotFound
	}
	return conversation, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	err := r.db.WithContext(ctx).
		Where("participant_one_id = ? OR participant_two_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&conversations).Error
	return conversations, err
}

func (r *conversationRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}
