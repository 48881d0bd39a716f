package realtime

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Inbound frame types sent by clients.
const (
	frameJoinGroup  = "group:join"
	frameLeaveGroup = "group:leave"
	frameChatSend   = "chat:send"
)

type inboundFrame struct {
	Type           string `json:"type"`
	Group          string `json:"group,omitempty"`
	ConversationID uint   `json:"conversationId,omitempty"`
	Text           string `json:"text,omitempty"`
}

type clientFrame struct {
	client *Client
	frame  inboundFrame
}

// Client is one live websocket connection of one authenticated user. The
// handle is the opaque identifier the registry and groups track.
type Client struct {
	handle string
	userID uint
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	// closed is flipped once; the send channel itself is never closed, the
	// write pump exits when the flag is set and the done channel closes.
	closed int32
	done   chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		handle: uuid.New().String(),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
	}
}

// Handle returns the opaque connection handle.
func (c *Client) Handle() string {
	return c.handle
}

// UserID returns the authenticated user this connection belongs to.
func (c *Client) UserID() uint {
	return c.userID
}

// Start launches the read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		close(c.done)
	}
}

// enqueue puts a marshaled frame on the send queue without blocking. Returns
// false when the client is closed or the buffer is full.
func (c *Client) enqueue(frame []byte) bool {
	if c.isClosed() {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.close()
		c.hub.scheduleUnregister(c)
		if err := c.conn.Close(); err != nil {
			slog.Debug("Error closing connection", "handle", c.handle, "userID", c.userID, "error", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "handle", c.handle, "userID", c.userID, "error", err)
			} else {
				slog.Debug("WebSocket connection closed", "handle", c.handle, "userID", c.userID, "error", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			slog.Warn("Dropping malformed frame", "handle", c.handle, "userID", c.userID, "error", err)
			continue
		}

		select {
		case c.hub.inbound <- &clientFrame{client: c, frame: frame}:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				slog.Debug("Write failed", "handle", c.handle, "userID", c.userID, "error", err)
				c.close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
