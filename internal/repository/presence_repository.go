package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Keys expire on their own so a crashed process never leaves users
	// online forever.
	onlineTTL = 5 * time.Minute

	// Short offline TTL avoids status flicker on quick reconnects.
	offlineTTL = 1 * time.Minute
)

// PresenceRepository mirrors presence into Redis for other processes of the
// platform. The in-memory registry stays authoritative within this process;
// this is the cross-process view. Implements realtime.PresenceStore.
type PresenceRepository struct {
	client *redis.Client
}

func NewPresenceRepository(client *redis.Client) *PresenceRepository {
	return &PresenceRepository{client: client}
}

func presenceKey(userID uint) string {
	return "presence:" + strconv.FormatUint(uint64(userID), 10)
}

func (r *PresenceRepository) MarkOnline(ctx context.Context, userID uint) error {
	return r.client.Set(ctx, presenceKey(userID), "online", onlineTTL).Err()
}

func (r *PresenceRepository) MarkOffline(ctx context.Context, userID uint) error {
	return r.client.Set(ctx, presenceKey(userID), "offline", offlineTTL).Err()
}

// Status reports "online" or "offline". A missing key means the last mark
// expired, which counts as offline.
func (r *PresenceRepository) Status(ctx context.Context, userID uint) (string, error) {
	status, err := r.client.Get(ctx, presenceKey(userID)).Result()
	if err == redis.Nil {
		return "offline", nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

// OnlineAmong filters userIDs down to the ones marked online, using one
// pipelined roundtrip.
func (r *PresenceRepository) OnlineAmong(ctx context.Context, userIDs []uint) ([]uint, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	cmds, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Get(ctx, presenceKey(id))
		}
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, err
	}

	online := make([]uint, 0, len(userIDs))
	for i, cmd := range cmds {
		if val, _ := cmd.(*redis.StringCmd).Result(); val == "online" {
			online = append(online, userIDs[i])
		}
	}
	return online, nil
}
