package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruit-service/internal/models"
	"recruit-service/internal/realtime"
	"recruit-service/internal/repository"
)

type fakeConversationRepo struct {
	conversations map[uint]*models.Conversation
	created       []*models.Conversation
}

func newFakeConversationRepo(conversations ...*models.Conversation) *fakeConversationRepo {
	repo := &fakeConversationRepo{conversations: make(map[uint]*models.Conversation)}
	for _, c := range conversations {
		repo.conversations[c.ID] = c
	}
	return repo
}

func (r *fakeConversationRepo) Create(_ context.Context, conversation *models.Conversation) error {
	conversation.ID = uint(len(r.conversations) + 1)
	r.conversations[conversation.ID] = conversation
	r.created = append(r.created, conversation)
	return nil
}

func (r *fakeConversationRepo) Find(_ context.Context, id uint) (*models.Conversation, error) {
	conv, ok := r.conversations[id]
	if !ok {
		return nil, realtime.ErrConversationNotFound
	}
	return conv, nil
}

func (r *fakeConversationRepo) FindForParticipant(ctx context.Context, id, userID uint) (*models.Conversation, error) {
	conv, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, realtime.ErrConversationNotFound
	}
	return conv, nil
}

func (r *fakeConversationRepo) ListForUser(_ context.Context, userID uint) ([]*models.Conversation, error) {
	var out []*models.Conversation
	for _, c := range r.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) Touch(_ context.Context, id uint, at time.Time) error {
	if c, ok := r.conversations[id]; ok {
		c.LastMessageAt = at
	}
	return nil
}

type fakeMessageRepo struct {
	messages   map[uint][]*models.Message
	markedRead [][2]uint
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uint][]*models.Message)}
}

func (r *fakeMessageRepo) Save(_ context.Context, message *models.Message) error {
	message.ID = uint(len(r.messages[message.ConversationID]) + 1)
	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], message)
	return nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID uint, _ int) ([]*models.Message, error) {
	return r.messages[conversationID], nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, conversationID, readerID uint) error {
	r.markedRead = append(r.markedRead, [2]uint{conversationID, readerID})
	return nil
}

type dropTransport struct{}

func (dropTransport) Send(string, string, any) error { return nil }

// newChatTestServer wires the handler behind routes with the caller already
// authenticated as userID.
func newChatTestServer(userID uint, conversations *fakeConversationRepo, messages *fakeMessageRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	reg := realtime.NewConnectionRegistry()
	groups := realtime.NewGroupRouter()
	dispatcher := realtime.NewNotificationDispatcher(reg, groups, dropTransport{})
	chat := realtime.NewChatRouter(conversations, messages, dispatcher)
	handler := NewChatHandler(chat, conversations, messages)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	engine.POST("/conversations", handler.StartConversation)
	engine.GET("/conversations", handler.ListConversations)
	engine.POST("/conversations/:id/messages", handler.SendMessage)
	engine.GET("/conversations/:id/messages", handler.ListMessages)
	engine.POST("/conversations/:id/messages/read", handler.MarkMessagesRead)
	return engine
}

var _ repository.ConversationRepository = (*fakeConversationRepo)(nil)
var _ repository.MessageRepository = (*fakeMessageRepo)(nil)

func seedMessage(messages *fakeMessageRepo, conversationID, senderID uint, text string) {
	_ = messages.Save(context.Background(), &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		SentAt:         time.Now(),
	})
}

func TestListMessagesHiddenFromNonParticipant(t *testing.T) {
	conversations := newFakeConversationRepo(&models.Conversation{ID: 5, ParticipantOneID: 1, ParticipantTwoID: 2})
	messages := newFakeMessageRepo()
	seedMessage(messages, 5, 1, "salary details")
	server := newChatTestServer(9, conversations, messages)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/conversations/5/messages", nil)
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "salary details")
}

func TestListMessagesForParticipant(t *testing.T) {
	conversations := newFakeConversationRepo(&models.Conversation{ID: 5, ParticipantOneID: 1, ParticipantTwoID: 2})
	messages := newFakeMessageRepo()
	seedMessage(messages, 5, 1, "salary details")
	server := newChatTestServer(2, conversations, messages)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/conversations/5/messages", nil)
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "salary details")
}

func TestListMessagesUnknownConversation(t *testing.T) {
	server := newChatTestServer(1, newFakeConversationRepo(), newFakeMessageRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/conversations/404/messages", nil)
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkMessagesReadHiddenFromNonParticipant(t *testing.T) {
	conversations := newFakeConversationRepo(&models.Conversation{ID: 5, ParticipantOneID: 1, ParticipantTwoID: 2})
	messages := newFakeMessageRepo()
	server := newChatTestServer(9, conversations, messages)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/conversations/5/messages/read", nil)
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, messages.markedRead)
}

func TestMarkMessagesReadForParticipant(t *testing.T) {
	conversations := newFakeConversationRepo(&models.Conversation{ID: 5, ParticipantOneID: 1, ParticipantTwoID: 2})
	messages := newFakeMessageRepo()
	server := newChatTestServer(1, conversations, messages)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/conversations/5/messages/read", nil)
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, messages.markedRead, 1)
	assert.Equal(t, [2]uint{5, 1}, messages.markedRead[0])
}

func TestStartConversation(t *testing.T) {
	conversations := newFakeConversationRepo()
	server := newChatTestServer(1, conversations, newFakeMessageRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/conversations", strings.NewReader(`{"participantId": 2}`))
	req.Header.Set("Content-Type", "application/json")
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, conversations.created, 1)
	assert.Equal(t, uint(1), conversations.created[0].ParticipantOneID)
	assert.Equal(t, uint(2), conversations.created[0].ParticipantTwoID)
}

func TestStartConversationRejectsSelf(t *testing.T) {
	conversations := newFakeConversationRepo()
	server := newChatTestServer(1, conversations, newFakeMessageRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/conversations", strings.NewReader(`{"participantId": 1}`))
	req.Header.Set("Content-Type", "application/json")
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, conversations.created)
}

func TestListConversationsOnlyReturnsCallersThreads(t *testing.T) {
	conversations := newFakeConversationRepo(
		&models.Conversation{ID: 5, ParticipantOneID: 1, ParticipantTwoID: 2},
		&models.Conversation{ID: 6, ParticipantOneID: 3, ParticipantTwoID: 4},
	)
	server := newChatTestServer(1, conversations, newFakeMessageRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":5`)
	assert.NotContains(t, w.Body.String(), `"id":6`)
}
