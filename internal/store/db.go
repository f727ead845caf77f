// Package store owns the shared backing connections: the Postgres pool
// behind the people and presence tables, and the Redis client behind the
// status_view snapshot cache.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PoolLimits bounds the Postgres pool. Board traffic is short roster reads
// plus small device batches, so the configured defaults stay small.
type PoolLimits struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// DB is the pooled connection the roster store runs its queries on.
type DB struct {
	Client *sql.DB
}

// NewDB opens a Postgres pool via pgx and verifies it with a ping.
func NewDB(connString string, limits PoolLimits) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(limits.MaxOpen)
	db.SetMaxIdleConns(limits.MaxIdle)
	db.SetConnMaxLifetime(limits.MaxLifetime)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// Close releases the pool. Safe on a nil receiver so the in-memory
// fallback path can defer it unconditionally.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
