package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the client backing the status_view snapshot cache.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client with timeouts tight enough that a degraded
// cache cannot stall a status_view request. Dialing gets twice the
// per-command budget.
func NewRedis(addr string, timeout time.Duration) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	return &Redis{Client: client}
}

// Healthy reports whether the cache answers a ping; healthz folds this
// into its readiness response.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}
