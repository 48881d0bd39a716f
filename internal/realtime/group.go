package realtime

import (
	"strconv"
	"sync"
)

// UserGroup returns the name of a user's personal broadcast group. Every
// producer and consumer of per-user fan-out goes through this function so the
// naming never drifts.
func UserGroup(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

// GroupRouter manages named broadcast groups of connection handles: the
// per-user groups plus ad-hoc topic groups (e.g. watchers of a position).
// Empty groups are pruned on leave.
type GroupRouter struct {
	mu sync.RWMutex

	// group name -> handle set
	groups map[string]map[string]struct{}

	// handle -> group names, so disconnect can clear membership in one pass
	memberships map[string]map[string]struct{}
}

func NewGroupRouter() *GroupRouter {
	return &GroupRouter{
		groups:      make(map[string]map[string]struct{}),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Join adds handle to the named group, creating the group on first use.
func (g *GroupRouter) Join(handle, group string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	members, ok := g.groups[group]
	if !ok {
		members = make(map[string]struct{})
		g.groups[group] = members
	}
	members[handle] = struct{}{}

	joined, ok := g.memberships[handle]
	if !ok {
		joined = make(map[string]struct{})
		g.memberships[handle] = joined
	}
	joined[group] = struct{}{}
}

// Leave removes handle from the named group and prunes the group when it
// empties. No-op if either side is absent.
func (g *GroupRouter) Leave(handle, group string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.leaveLocked(handle, group)
}

// LeaveAll removes handle from every group it joined. Called on disconnect so
// stale membership never outlives the connection.
func (g *GroupRouter) LeaveAll(handle string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for group := range g.memberships[handle] {
		g.leaveLocked(handle, group)
	}
}

func (g *GroupRouter) leaveLocked(handle, group string) {
	if members, ok := g.groups[group]; ok {
		delete(members, handle)
		if len(members) == 0 {
			delete(g.groups, group)
		}
	}
	if joined, ok := g.memberships[handle]; ok {
		delete(joined, group)
		if len(joined) == 0 {
			delete(g.memberships, handle)
		}
	}
}

// Members returns a snapshot of the group's handle set.
func (g *GroupRouter) Members(group string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	members := g.groups[group]
	result := make([]string, 0, len(members))
	for h := range members {
		result = append(result, h)
	}
	return result
}

// Groups returns a snapshot of the groups handle currently belongs to.
func (g *GroupRouter) Groups(handle string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	joined := g.memberships[handle]
	result := make([]string, 0, len(joined))
	for name := range joined {
		result = append(result, name)
	}
	return result
}
