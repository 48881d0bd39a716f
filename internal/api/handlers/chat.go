package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"recruit-service/internal/api/middleware"
	"recruit-service/internal/models"
	"recruit-service/internal/realtime"
	"recruit-service/internal/repository"
)

type ChatHandler struct {
	chat          *realtime.ChatRouter
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
}

func NewChatHandler(chat *realtime.ChatRouter, conversations repository.ConversationRepository, messages repository.MessageRepository) *ChatHandler {
	return &ChatHandler{chat: chat, conversations: conversations, messages: messages}
}

type startConversationRequest struct {
	ParticipantID uint `json:"participantId" binding:"required"`
}

// StartConversation opens a thread between the caller and another user.
func (h *ChatHandler) StartConversation(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ParticipantID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a conversation with yourself"})
		return
	}

	conversation := &models.Conversation{
		ParticipantOneID: userID,
		ParticipantTwoID: req.ParticipantID,
		LastMessageAt:    time.Now(),
	}
	if err := h.conversations.Create(c.Request.Context(), conversation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create conversation"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"conversation": conversation})
}

// ListConversations returns the caller's threads ordered by latest activity.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	conversations, err := h.conversations.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

type sendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessage is the REST path for sending a chat message; the same routing
// runs for frames arriving over the websocket. A sender outside the
// conversation gets the same 404 as an unknown conversation, so nothing leaks
// about conversations the caller cannot see.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	senderID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	conversationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, result, err := h.chat.SendMessage(c.Request.Context(), conversationID, senderID, req.Text)
	switch {
	case errors.Is(err, realtime.ErrConversationNotFound), errors.Is(err, realtime.ErrNotParticipant):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   message,
		"delivered": result.Delivered,
	})
}

// ListMessages returns the most recent messages of a conversation. Reads carry
// the same participant gate as sends: a caller outside the conversation gets
// the not-found response.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	conversationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.conversations.FindForParticipant(c.Request.Context(), conversationID, userID); err != nil {
		if errors.Is(err, realtime.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	messages, err := h.messages.ListByConversation(c.Request.Context(), conversationID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// MarkMessagesRead flags the other participant's messages as read.
func (h *ChatHandler) MarkMessagesRead(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	conversationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.conversations.FindForParticipant(c.Request.Context(), conversationID, userID); err != nil {
		if errors.Is(err, realtime.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages read"})
		return
	}

	if err := h.messages.MarkRead(c.Request.Context(), conversationID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages read"})
		return
	}
	c.Status(http.StatusNoContent)
}
