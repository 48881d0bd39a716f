package realtime

// Event names pushed to clients. Clients switch on the envelope's type field.
const (
	EventChatMessage  = "chat:message"
	EventNotification = "notification"
	EventUnreadCount  = "notification:count"
)

// Envelope is the wire frame for every outbound push.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Transport delivers one event to one live connection. Implementations must
// return an error instead of panicking; a dead connection fails fast. The
// production implementation is the Hub, which resolves the handle to a
// buffered client send queue.
type Transport interface {
	Send(handle, event string, payload any) error
}
