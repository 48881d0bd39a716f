package realtime

import (
	"errors"
	"fmt"
)

var (
	// ErrConversationNotFound is returned when the referenced conversation
	// does not exist.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNotParticipant is returned when the sender is not one of the
	// conversation's two participants.
	ErrNotParticipant = errors.New("sender is not a conversation participant")

	errConnectionGone = errors.New("connection no longer registered")
	errSendBufferFull = errors.New("send buffer full")
)

// SendError reports a failed push to a single connection. It is collected
// into a DeliveryResult, never propagated past the fan-out loop.
type SendError struct {
	Handle string
	Err    error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to connection %s: %v", e.Handle, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
