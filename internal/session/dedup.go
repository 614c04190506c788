package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/vngglass/orderchat/internal/core/error"
)

const dedupKeyPrefix = "zalo:msg:"

// Dedup remembers which message ids have already been processed. The channel
// redelivers webhooks when acknowledgement is slow, and a redelivered
// message must not advance the conversation twice.
type Dedup struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewDedup creates the deduplicator. ttl <= 0 falls back to 24 hours, which
// comfortably outlives the channel's redelivery window.
func NewDedup(client redis.Cmdable, ttl time.Duration) *Dedup {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Dedup{client: client, ttl: ttl}
}

// Seen atomically claims the message id. The first caller gets false and
// owns processing; every later caller within the TTL gets true.
func (d *Dedup) Seen(ctx context.Context, msgID string) (bool, error) {
	claimed, err := d.client.SetNX(ctx, dedupKeyPrefix+msgID, 1, d.ttl).Result()
	if err != nil {
		return false, errx.WrapRedis(err)
	}
	return !claimed, nil
}
