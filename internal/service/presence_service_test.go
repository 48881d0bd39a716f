package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruit-service/internal/realtime"
)

type stubPresenceMirror struct {
	statuses map[uint]string
	queried  []uint
}

func (s *stubPresenceMirror) Status(_ context.Context, userID uint) (string, error) {
	s.queried = append(s.queried, userID)
	if status, ok := s.statuses[userID]; ok {
		return status, nil
	}
	return "offline", nil
}

func (s *stubPresenceMirror) OnlineAmong(_ context.Context, userIDs []uint) ([]uint, error) {
	var online []uint
	for _, id := range userIDs {
		if s.statuses[id] == "online" {
			online = append(online, id)
		}
	}
	return online, nil
}

func newTestPresenceService(mirror *stubPresenceMirror) (*PresenceService, *realtime.ConnectionRegistry) {
	reg := realtime.NewConnectionRegistry()
	tracker := realtime.NewPresenceTracker(reg)
	return NewPresenceService(tracker, mirror), reg
}

func TestStatusPrefersLocalConnection(t *testing.T) {
	mirror := &stubPresenceMirror{statuses: map[uint]string{}}
	svc, reg := newTestPresenceService(mirror)
	reg.Add(1, "c1")

	status, err := svc.Status(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "online", status)
	assert.Empty(t, mirror.queried, "no mirror roundtrip for a local connection")
}

func TestStatusFallsBackToMirror(t *testing.T) {
	mirror := &stubPresenceMirror{statuses: map[uint]string{2: "online"}}
	svc, _ := newTestPresenceService(mirror)

	status, err := svc.Status(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, "online", status)
	assert.Equal(t, []uint{2}, mirror.queried)
}

func TestStatusWithoutMirrorDefaultsOffline(t *testing.T) {
	reg := realtime.NewConnectionRegistry()
	svc := NewPresenceService(realtime.NewPresenceTracker(reg), nil)

	status, err := svc.Status(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, "offline", status)
}

func TestOnlineAmongUsesMirror(t *testing.T) {
	mirror := &stubPresenceMirror{statuses: map[uint]string{1: "online", 3: "online"}}
	svc, _ := newTestPresenceService(mirror)

	online, err := svc.OnlineAmong(context.Background(), []uint{1, 2, 3})

	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3}, online)
}
