package realtime

import (
	"context"
)

// presenceSource is the slice of the registry the tracker needs. Keeping it
// an interface lets a different backing store answer presence queries without
// touching callers.
type presenceSource interface {
	Contains(userID uint) bool
	UserIDs() []uint
}

// PresenceTracker answers online/offline queries. It holds no state of its
// own; the registry is the source of truth.
type PresenceTracker struct {
	source presenceSource
}

func NewPresenceTracker(source presenceSource) *PresenceTracker {
	return &PresenceTracker{source: source}
}

// IsOnline reports whether the user has at least one live connection.
func (p *PresenceTracker) IsOnline(userID uint) bool {
	return p.source.Contains(userID)
}

// OnlineUserIDs returns a snapshot of every currently online user id.
func (p *PresenceTracker) OnlineUserIDs() []uint {
	return p.source.UserIDs()
}

// PresenceStore mirrors presence into an external store (Redis) so other
// processes of the platform can answer "is this user online". Updates are
// best-effort; the in-memory registry stays authoritative for this process.
type PresenceStore interface {
	MarkOnline(ctx context.Context, userID uint) error
	MarkOffline(ctx context.Context, userID uint) error
}
