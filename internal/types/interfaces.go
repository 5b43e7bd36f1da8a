// Package types holds the contracts and value types shared by the cache
// tiers, the provider and their consumers.
package types

import (
	"context"
	"time"
)

// CacheProvider is the only cache contract consumers depend on. Values are
// opaque strings; structured data is encoded by the caller. Implementations
// are fail-open and never return errors for operational failures.
type CacheProvider interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPattern(ctx context.Context, pattern string)
	Exists(ctx context.Context, key string) bool
	Expire(ctx context.Context, key string, ttl time.Duration)
}

// LocalCache is a bounded in-process tier with a fixed per-instance TTL.
// It performs no I/O and is safe for concurrent use.
type LocalCache interface {
	Name() string
	Get(key string) (string, bool)
	Put(key, value string)
	Contains(key string) bool
	Invalidate(key string)
	InvalidateAll(keys []string)
	InvalidateWhere(match func(key string) bool)
	Clear()
	Stats() CacheStats
	Size() uint64
	TTL() time.Duration
	Close() error
}

// RemoteCache is the shared out-of-process tier. Every method is fail-open:
// failures surface as a miss or a no-op.
type RemoteCache interface {
	Name() string
	IsAvailable() bool
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPattern(ctx context.Context, pattern string)
	Exists(ctx context.Context, key string) bool
	Expire(ctx context.Context, key string, ttl time.Duration)
	Close() error
}

// RemoteStatus exposes connection diagnostics of an L2 adapter.
type RemoteStatus interface {
	LastError() (error, time.Time)
	ErrorCount() int64
}

type MetricsRecorder interface {
	RecordHit(layer string, key string, latency time.Duration)
	RecordMiss(layer string, key string, latency time.Duration)
	RecordSet(layer string, key string, size int, latency time.Duration)
	RecordDelete(layer string, key string, latency time.Duration)
	RecordError(layer string, operation string, err error)
	RecordCircuitBreakerStateChange(from, to string)
}
