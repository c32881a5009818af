// Package kv is a small expiring key/value store used for ingestion session
// state and revoked token ids. Redis backs it in deployments; the memory
// implementation serves single-process runs and tests.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for missing or expired keys
var ErrNotFound = errors.New("kv: key not found")

// Store is implemented by RedisStore and MemoryStore
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}
