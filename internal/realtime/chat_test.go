package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruit-service/internal/models"
)

type fakeConversationStore struct {
	conversations map[uint]*models.Conversation
	touched       map[uint]time.Time
	touchErr      error
}

func newFakeConversationStore(conversations ...*models.Conversation) *fakeConversationStore {
	store := &fakeConversationStore{
		conversations: make(map[uint]*models.Conversation),
		touched:       make(map[uint]time.Time),
	}
	for _, c := range conversations {
		store.conversations[c.ID] = c
	}
	return store
}

func (s *fakeConversationStore) Find(_ context.Context, id uint) (*models.Conversation, error) {
	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

func (s *fakeConversationStore) Touch(_ context.Context, id uint, at time.Time) error {
	if s.touchErr != nil {
		return s.touchErr
	}
	s.touched[id] = at
	return nil
}

type fakeMessageStore struct {
	saved   []*models.Message
	saveErr error
	nextID  uint
}

func (s *fakeMessageStore) Save(_ context.Context, message *models.Message) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.nextID++
	message.ID = s.nextID
	s.saved = append(s.saved, message)
	return nil
}

func newTestChatRouter(conv *fakeConversationStore, msgs *fakeMessageStore) (*ChatRouter, *ConnectionRegistry, *GroupRouter, *fakeTransport) {
	reg := NewConnectionRegistry()
	groups := NewGroupRouter()
	transport := newFakeTransport()
	dispatcher := NewNotificationDispatcher(reg, groups, transport)
	return NewChatRouter(conv, msgs, dispatcher), reg, groups, transport
}

func TestSendMessageEchoesToBothParticipants(t *testing.T) {
	conv := newFakeConversationStore(&models.Conversation{ID: 5, ParticipantOneID: 1, ParticipantTwoID: 2})
	msgs := &fakeMessageStore{}
	router, reg, groups, transport := newTestChatRouter(conv, msgs)

	connect(reg, groups, 1, "sender-tab")
	connect(reg, groups, 1, "sender-phone")
	connect(reg, groups, 2, "receiver-tab")

	message, result, err := router.SendMessage(context.Background(), 5, 1, "hi")

	require.NoError(t, err)
	require.NotNil(t, message)
	assert.Equal(t, uint(1), message.SenderID)
	assert.Equal(t, "hi", message.Text)
	assert.False(t, message.Read)

	// Persisted before push, conversation touched.
	require.Len(t, msgs.saved, 1)
	assert.WithinDuration(t, time.Now().UTC(), conv.touched[5], time.Second)

	// Receiver and both sender connections all see the same payload.
	assert.Equal(t, 3, result.Delivered)
	assert.ElementsMatch(t, []string{"sender-tab", "sender-phone", "receiver-tab"}, transport.handlesReached())
	for _, s := range transport.sends() {
		assert.Equal(t, EventChatMessage, s.event)
		payload := s.payload.(ChatMessagePayload)
		assert.Equal(t, uint(1), payload.SenderID)
		assert.Equal(t, "hi", payload.Text)
		assert.NotEmpty(t, payload.SentAt)
	}
}

func TestSendMessageUnknownConversation(t *testing.T) {
	router, _, _, transport := newTestChatRouter(newFakeConversationStore(), &fakeMessageStore{})

	_, _, err := router.SendMessage(context.Background(), 404, 1, "hi")

	assert.ErrorIs(t, err, ErrConversationNotFound)
	assert.Empty(t, transport.sends())
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	conv := newFakeConversationStore(&models.Conversation{ID: 5, ParticipantOneID: 1, ParticipantTwoID: 2})
	msgs := &fakeMessageStore{}
	router, reg, groups, transport := newTestChatRouter(conv, msgs)
	connect(reg, groups, 1, "c1")
	connect(reg, groups, 2, "c2")

	_, _, err := router.SendMessage(context.Background(), 5, 9, "hi")

	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.Empty(t, msgs.saved, "nothing persisted")
	assert.Empty(t, transport.sends(), "nothing pushed")
	assert.Empty(t, conv.touched)
}

func TestSendMessageAbortsPushWhenSaveFails(t *testing.T) {
	conv := newFakeConversationStore(&models.Conversation{ID: 5, ParticipantOneID: 1, ParticipantTwoID: 2})
	msgs := &fakeMessageStore{saveErr: errors.New("db down")}
	router, reg, groups, transport := newTestChatRouter(conv, msgs)
	connect(reg, groups, 2, "receiver")

	_, _, err := router.SendMessage(context.Background(), 5, 1, "hi")

	require.Error(t, err)
	assert.Empty(t, transport.sends())
	assert.Empty(t, conv.touched)
}

func TestSendMessageAbortsPushWhenTouchFails(t *testing.T) {
	conv := newFakeConversationStore(&models.Conversation{ID: 5, ParticipantOneID: 1, ParticipantTwoID: 2})
	conv.touchErr = errors.New("db down")
	msgs := &fakeMessageStore{}
	router, reg, groups, transport := newTestChatRouter(conv, msgs)
	connect(reg, groups, 2, "receiver")

	_, _, err := router.SendMessage(context.Background(), 5, 1, "hi")

	require.Error(t, err)
	assert.Empty(t, transport.sends())
}

func TestSendMessageToOfflineReceiverStillSucceeds(t *testing.T) {
	conv := newFakeConversationStore(&models.Conversation{ID: 5, ParticipantOneID: 1, ParticipantTwoID: 2})
	msgs := &fakeMessageStore{}
	router, reg, groups, transport := newTestChatRouter(conv, msgs)
	connect(reg, groups, 1, "sender")

	message, result, err := router.SendMessage(context.Background(), 5, 1, "hi")

	require.NoError(t, err)
	require.NotNil(t, message)
	require.Len(t, msgs.saved, 1)
	assert.Equal(t, 1, result.Delivered, "only the sender echo lands")
	assert.ElementsMatch(t, []string{"sender"}, transport.handlesReached())
}
