package service

import (
	"context"

	"recruit-service/internal/realtime"
)

// PresenceMirror is the cross-process presence view, backed by Redis in
// production (repository.PresenceRepository).
type PresenceMirror interface {
	Status(ctx context.Context, userID uint) (string, error)
	OnlineAmong(ctx context.Context, userIDs []uint) ([]uint, error)
}

// PresenceService answers presence queries. Local queries come from the
// in-memory tracker; cross-process queries go through the Redis mirror.
type PresenceService struct {
	tracker *realtime.PresenceTracker
	mirror  PresenceMirror
}

func NewPresenceService(tracker *realtime.PresenceTracker, mirror PresenceMirror) *PresenceService {
	return &PresenceService{tracker: tracker, mirror: mirror}
}

func (s *PresenceService) IsOnline(userID uint) bool {
	return s.tracker.IsOnline(userID)
}

// Status answers for users connected anywhere on the platform. A local
// connection short-circuits the mirror lookup.
func (s *PresenceService) Status(ctx context.Context, userID uint) (string, error) {
	if s.tracker.IsOnline(userID) {
		return "online", nil
	}
	if s.mirror == nil {
		return "offline", nil
	}
	return s.mirror.Status(ctx, userID)
}

func (s *PresenceService) OnlineUserIDs() []uint {
	return s.tracker.OnlineUserIDs()
}

// OnlineAmong filters candidate ids against the Redis mirror, so recruiters
// see presence across every node of the platform, not just this one.
func (s *PresenceService) OnlineAmong(ctx context.Context, userIDs []uint) ([]uint, error) {
	if s.mirror == nil {
		online := make([]uint, 0, len(userIDs))
		for _, id := range userIDs {
			if s.tracker.IsOnline(id) {
				online = append(online, id)
			}
		}
		return online, nil
	}
	return s.mirror.OnlineAmong(ctx, userIDs)
}
