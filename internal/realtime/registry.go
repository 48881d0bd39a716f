package realtime

import (
	"sync"
)

// ConnectionRegistry maps a user id to the set of live connection handles
// that user currently holds (one per tab or device). A user id is a key iff
// its handle set is non-empty; empty sets are pruned on removal.
//
// One mutex guards the whole structure. It is held only for the duration of
// the map operation itself, never across a network send.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	users map[uint]map[string]struct{}
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		users: make(map[uint]map[string]struct{}),
	}
}

// Add inserts handle into the user's set, creating the set on first use.
// Re-adding an existing handle is a no-op.
func (r *ConnectionRegistry) Add(userID uint, handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handles, ok := r.users[userID]
	if !ok {
		handles = make(map[string]struct{})
		r.users[userID] = handles
	}
	handles[handle] = struct{}{}
}

// Remove deletes handle from the user's set and prunes the key when the last
// handle goes away. No-op if either the user or the handle is absent.
func (r *ConnectionRegistry) Remove(userID uint, handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handles, ok := r.users[userID]
	if !ok {
		return
	}
	delete(handles, handle)
	if len(handles) == 0 {
		delete(r.users, userID)
	}
}

// Connections returns a snapshot copy of the user's handle set. Callers never
// observe concurrent mutation.
func (r *ConnectionRegistry) Connections(userID uint) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := r.users[userID]
	result := make([]string, 0, len(handles))
	for h := range handles {
		result = append(result, h)
	}
	return result
}

// Contains reports whether the user has at least one live connection.
func (r *ConnectionRegistry) Contains(userID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[userID]
	return ok
}

// UserIDs returns a snapshot of all currently connected user ids.
func (r *ConnectionRegistry) UserIDs() []uint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]uint, 0, len(r.users))
	for id := range r.users {
		result = append(result, id)
	}
	return result
}

// AllConnections returns a snapshot of every live handle across all users,
// taken under a single lock acquisition.
func (r *ConnectionRegistry) AllConnections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []string
	for _, handles := range r.users {
		for h := range handles {
			result = append(result, h)
		}
	}
	return result
}
