package realtime

import (
	"log/slog"
)

// SendFailure records one failed push within a fan-out.
type SendFailure struct {
	Handle string
	Err    error
}

// DeliveryResult is the outcome of one fan-out. Per-connection failures are
// collected here instead of aborting sibling sends; the operation as a whole
// still counts as successful.
type DeliveryResult struct {
	Attempted int
	Delivered int
	Failures  []SendFailure
}

// Failed returns the number of connections the payload could not reach.
func (r DeliveryResult) Failed() int {
	return len(r.Failures)
}

func (r *DeliveryResult) merge(other DeliveryResult) {
	r.Attempted += other.Attempted
	r.Delivered += other.Delivered
	r.Failures = append(r.Failures, other.Failures...)
}

// CountUpdate is the payload of an EventUnreadCount push (badge counts).
type CountUpdate struct {
	UserID uint `json:"userId"`
	Count  int  `json:"count"`
}

// NotificationDispatcher resolves a target user's live connections and pushes
// a payload to each. Delivery is at-most-once and best-effort: a user with no
// live connection gets nothing, and no queuing or retry happens here. The
// notification record itself is persisted by the caller before dispatch.
type NotificationDispatcher struct {
	registry  *ConnectionRegistry
	groups    *GroupRouter
	transport Transport
}

func NewNotificationDispatcher(registry *ConnectionRegistry, groups *GroupRouter, transport Transport) *NotificationDispatcher {
	return &NotificationDispatcher{
		registry:  registry,
		groups:    groups,
		transport: transport,
	}
}

// PushToUser pushes payload to every live connection of userID. Zero live
// connections is a successful no-op.
func (d *NotificationDispatcher) PushToUser(userID uint, event string, payload any) DeliveryResult {
	handles := d.groups.Members(UserGroup(userID))
	if len(handles) == 0 {
		// The user group is joined on connect, but fall back to the raw
		// registry so a push between registry-add and group-join still lands.
		handles = d.registry.Connections(userID)
	}
	return d.fanOut(handles, event, payload)
}

// PushToGroup pushes payload to every member of a named group.
func (d *NotificationDispatcher) PushToGroup(group, event string, payload any) DeliveryResult {
	return d.fanOut(d.groups.Members(group), event, payload)
}

// BroadcastToAll pushes payload to every live connection of every user.
func (d *NotificationDispatcher) BroadcastToAll(event string, payload any) DeliveryResult {
	return d.fanOut(d.registry.AllConnections(), event, payload)
}

// PushCountUpdate pushes a lightweight unread-count badge update.
func (d *NotificationDispatcher) PushCountUpdate(userID uint, count int) DeliveryResult {
	return d.PushToUser(userID, EventUnreadCount, CountUpdate{UserID: userID, Count: count})
}

// fanOut sends the payload to each handle in turn. The handle list is a
// snapshot taken above; no registry or group lock is held here. A failed send
// is logged and recorded, and never stops the remaining sends.
func (d *NotificationDispatcher) fanOut(handles []string, event string, payload any) DeliveryResult {
	result := DeliveryResult{Attempted: len(handles)}

	for _, handle := range handles {
		if err := d.transport.Send(handle, event, payload); err != nil {
			slog.Warn("Push failed", "handle", handle, "event", event, "error", err)
			result.Failures = append(result.Failures, SendFailure{Handle: handle, Err: err})
			continue
		}
		result.Delivered++
	}
	return result
}
