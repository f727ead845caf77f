package presence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const snapshotKey = "inoutboard:status_view"

// SnapshotCache keeps the rendered status_view JSON in Redis so the
// viewer board's polling doesn't hit the database on every tick. All
// methods are safe on a nil receiver (no Redis configured, no cache).
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *SnapshotCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SnapshotCache{client: client, ttl: ttl, log: log}
}

// Get returns the cached snapshot, if any.
func (c *SnapshotCache) Get(ctx context.Context) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("snapshot cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return b, true
}

// Set stores a freshly rendered snapshot.
func (c *SnapshotCache) Set(ctx context.Context, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, snapshotKey, body, c.ttl).Err(); err != nil {
		c.log.Warn("snapshot cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached snapshot after any mutation.
func (c *SnapshotCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, snapshotKey).Err(); err != nil {
		c.log.Warn("snapshot cache invalidate failed", zap.Error(err))
	}
}
