package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const presenceUpdateTimeout = 3 * time.Second

// Hub owns the connection lifecycle: it registers connections in the
// ConnectionRegistry, manages their group membership, mirrors presence into
// the external store, and routes inbound client frames. It also implements
// Transport by resolving handles to client send queues.
//
// All registry, group and client-index locks are held only for map
// operations; sends go through the clients' buffered queues.
type Hub struct {
	registry *ConnectionRegistry
	groups   *GroupRouter
	presence PresenceStore
	chat     *ChatRouter

	// handle -> client, guarded by mu
	clients map[string]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	inbound    chan *clientFrame

	// presence mirror updates are applied by a dedicated worker so a slow
	// Redis never stalls connect/disconnect processing; the channel keeps
	// them ordered per hub.
	presenceCh chan presenceUpdate

	ctx    context.Context
	cancel context.CancelFunc
}

type presenceUpdate struct {
	userID uint
	online bool
}

// NewHub wires the hub over an existing registry and group router. presence
// may be nil when no external mirror is configured.
func NewHub(registry *ConnectionRegistry, groups *GroupRouter, presence PresenceStore) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	hub := &Hub{
		registry:   registry,
		groups:     groups,
		presence:   presence,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *clientFrame, 64),
		presenceCh: make(chan presenceUpdate, 64),
		ctx:        ctx,
		cancel:     cancel,
	}
	if presence != nil {
		go hub.presenceWorker()
	}
	return hub
}

// AttachChatRouter connects the chat router after construction; the router
// needs a dispatcher that in turn needs the hub as its transport.
func (h *Hub) AttachChatRouter(chat *ChatRouter) {
	h.chat = chat
}

// Register hands a new connection to the hub's run loop.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Run processes lifecycle events and inbound frames until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.onConnect(client)

		case client := <-h.unregister:
			h.onDisconnect(client)

		case cf := <-h.inbound:
			h.handleFrame(cf)

		case <-h.ctx.Done():
			slog.Info("Hub shutting down")
			return
		}
	}
}

// Stop terminates the run loop.
func (h *Hub) Stop() {
	h.cancel()
}

func (h *Hub) onConnect(client *Client) {
	h.mu.Lock()
	h.clients[client.handle] = client
	h.mu.Unlock()

	h.registry.Add(client.userID, client.handle)
	h.groups.Join(client.handle, UserGroup(client.userID))

	slog.Info("Client connected", "handle", client.handle, "userID", client.userID)

	h.mirrorPresence(client.userID, true)
}

func (h *Hub) onDisconnect(client *Client) {
	h.mu.Lock()
	if current, ok := h.clients[client.handle]; !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.handle)
	h.mu.Unlock()

	client.close()
	h.groups.LeaveAll(client.handle)
	h.registry.Remove(client.userID, client.handle)

	slog.Info("Client disconnected", "handle", client.handle, "userID", client.userID)

	// Another tab may still be open; only mirror offline when the last
	// connection is gone.
	if !h.registry.Contains(client.userID) {
		h.mirrorPresence(client.userID, false)
	}
}

// mirrorPresence enqueues a presence mirror update. The decision (online, or
// last connection gone) is made synchronously by the caller; only the store
// write is deferred to the worker.
func (h *Hub) mirrorPresence(userID uint, online bool) {
	if h.presence == nil {
		return
	}
	select {
	case h.presenceCh <- presenceUpdate{userID: userID, online: online}:
	default:
		slog.Warn("Presence mirror queue full, dropping update", "userID", userID, "online", online)
	}
}

func (h *Hub) presenceWorker() {
	for {
		select {
		case update := <-h.presenceCh:
			ctx, cancel := context.WithTimeout(h.ctx, presenceUpdateTimeout)
			var err error
			if update.online {
				err = h.presence.MarkOnline(ctx, update.userID)
			} else {
				err = h.presence.MarkOffline(ctx, update.userID)
			}
			cancel()
			if err != nil {
				slog.Error("Failed to mirror presence", "userID", update.userID, "online", update.online, "error", err)
			}

		case <-h.ctx.Done():
			return
		}
	}
}

// scheduleUnregister hands a closing connection to the run loop without
// blocking forever when the hub has already been stopped.
func (h *Hub) scheduleUnregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) handleFrame(cf *clientFrame) {
	client, frame := cf.client, cf.frame

	switch frame.Type {
	case frameJoinGroup:
		if frame.Group == "" {
			slog.Warn("Join frame without group name", "handle", client.handle)
			return
		}
		h.groups.Join(client.handle, frame.Group)
		slog.Debug("Client joined group", "handle", client.handle, "group", frame.Group)

	case frameLeaveGroup:
		if frame.Group == "" {
			return
		}
		h.groups.Leave(client.handle, frame.Group)
		slog.Debug("Client left group", "handle", client.handle, "group", frame.Group)

	case frameChatSend:
		if h.chat == nil {
			slog.Error("Chat frame received but no chat router attached", "handle", client.handle)
			return
		}
		// Persistence blocks; keep the run loop free.
		go h.routeChatFrame(client, frame)

	default:
		slog.Warn("Unknown frame type", "handle", client.handle, "type", frame.Type)
	}
}

func (h *Hub) routeChatFrame(client *Client, frame inboundFrame) {
	_, _, err := h.chat.SendMessage(h.ctx, frame.ConversationID, client.userID, frame.Text)
	switch {
	case errors.Is(err, ErrNotParticipant):
		// Dropped without a reply; the sender learns nothing about the
		// conversation's existence.
		slog.Debug("Dropped chat frame from non-participant",
			"handle", client.handle, "userID", client.userID, "conversationID", frame.ConversationID)
	case err != nil:
		slog.Error("Failed to route chat message",
			"handle", client.handle, "userID", client.userID, "conversationID", frame.ConversationID, "error", err)
	}
}

// Send implements Transport. The client index lock is released before the
// frame is enqueued; the actual network write happens on the client's write
// pump.
func (h *Hub) Send(handle, event string, payload any) error {
	h.mu.RLock()
	client, ok := h.clients[handle]
	h.mu.RUnlock()
	if !ok {
		return &SendError{Handle: handle, Err: errConnectionGone}
	}

	frame, err := json.Marshal(Envelope{Type: event, Data: payload})
	if err != nil {
		return &SendError{Handle: handle, Err: err}
	}
	if !client.enqueue(frame) {
		return &SendError{Handle: handle, Err: errSendBufferFull}
	}
	return nil
}
