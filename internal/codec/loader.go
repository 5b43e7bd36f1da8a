package codec

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/LavishGent/tiercache/internal/types"
)

// LoadFunc recomputes a value from the system of record.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Loader reads through the cache. Concurrent loads of the same key share
// one LoadFunc call.
type Loader[T any] struct {
	codec  *Codec
	logger *slog.Logger
	group  singleflight.Group
	ttl    time.Duration
}

// NewLoader creates a JSON loader writing with ttl (<= 0 means the
// provider default).
func NewLoader[T any](p types.CacheProvider, ttl time.Duration, logger *slog.Logger) *Loader[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader[T]{
		codec:  New(p),
		ttl:    ttl,
		logger: logger.With("component", "loader"),
	}
}

// Load returns the cached value for key, or calls fn and caches its
// result. A failed fn is not cached.
func (l *Loader[T]) Load(ctx context.Context, key string, fn LoadFunc[T]) (T, error) {
	var cached T
	if ok, err := l.codec.Get(ctx, key, &cached); err != nil {
		return cached, err
	} else if ok {
		return cached, nil
	}

	v, err, shared := l.group.Do(key, func() (any, error) {
		// Another caller may have filled the key while we waited.
		var again T
		if ok, _ := l.codec.Get(ctx, key, &again); ok {
			return again, nil
		}

		value, err := fn(ctx)
		if err != nil {
			return value, err
		}
		if err := l.codec.Set(ctx, key, value, l.ttl); err != nil {
			l.logger.Debug("Failed to cache loaded value", "key", key, "error", err)
		}
		return value, nil
	})
	if shared {
		l.logger.Debug("Shared load", "key", key)
	}

	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
