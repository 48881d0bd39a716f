package realtime

import (
	"context"
	"fmt"
	"time"

	"recruit-service/internal/models"
)

// ConversationStore is the slice of the persistence layer the chat router
// needs. Find must return ErrConversationNotFound when the id is unknown.
type ConversationStore interface {
	Find(ctx context.Context, id uint) (*models.Conversation, error)
	Touch(ctx context.Context, id uint, at time.Time) error
}

// MessageStore persists chat messages.
type MessageStore interface {
	Save(ctx context.Context, message *models.Message) error
}

// ChatMessagePayload is what both participants' connections receive.
type ChatMessagePayload struct {
	ConversationID uint   `json:"conversationId"`
	MessageID      uint   `json:"messageId"`
	SenderID       uint   `json:"senderId"`
	Text           string `json:"text"`
	SentAt         string `json:"sentAt"`
}

// ChatRouter persists a chat message and pushes it to both participants'
// live connections.
type ChatRouter struct {
	conversations ConversationStore
	messages      MessageStore
	dispatcher    *NotificationDispatcher
}

func NewChatRouter(conversations ConversationStore, messages MessageStore, dispatcher *NotificationDispatcher) *ChatRouter {
	return &ChatRouter{
		conversations: conversations,
		messages:      messages,
		dispatcher:    dispatcher,
	}
}

// SendMessage routes one chat message. Authorization is by membership: the
// sender must be one of the conversation's two participants. Persistence
// (message save + conversation touch) happens before any push; if it fails,
// nothing is pushed. The push targets both the receiver's and the sender's
// connections, so the sender's other tabs and devices see the echo too.
func (cr *ChatRouter) SendMessage(ctx context.Context, conversationID, senderID uint, text string) (*models.Message, DeliveryResult, error) {
	conv, err := cr.conversations.Find(ctx, conversationID)
	if err != nil {
		return nil, DeliveryResult{}, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, DeliveryResult{}, ErrNotParticipant
	}
	receiverID := conv.OtherParticipant(senderID)

	now := time.Now().UTC()
	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		SentAt:         now,
	}
	if err := cr.messages.Save(ctx, message); err != nil {
		return nil, DeliveryResult{}, fmt.Errorf("save message: %w", err)
	}
	if err := cr.conversations.Touch(ctx, conversationID, now); err != nil {
		return nil, DeliveryResult{}, fmt.Errorf("touch conversation: %w", err)
	}

	payload := ChatMessagePayload{
		ConversationID: conversationID,
		MessageID:      message.ID,
		SenderID:       senderID,
		Text:           text,
		SentAt:         now.Format(time.RFC3339),
	}

	result := cr.dispatcher.PushToUser(receiverID, EventChatMessage, payload)
	result.merge(cr.dispatcher.PushToUser(senderID, EventChatMessage, payload))
	return message, result, nil
}
