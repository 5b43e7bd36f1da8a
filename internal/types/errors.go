package types

import (
	"errors"
	"fmt"
)

var (
	ErrCacheMiss        = errors.New("cache: key not found")
	ErrRedisUnavailable = errors.New("cache: redis unavailable")
	ErrCircuitOpen      = errors.New("cache: circuit breaker open")
	ErrClosed           = errors.New("cache: closed")
	ErrBulkheadFull     = errors.New("cache: bulkhead at capacity")
	ErrBulkheadTimeout  = errors.New("cache: bulkhead timeout")
	ErrInvalidKey       = errors.New("cache: invalid key")
	ErrInvalidPattern   = errors.New("cache: invalid pattern")
	ErrUnknownCache     = errors.New("cache: unknown cache name")
)

// CacheError records which tier an operation failed on. It never crosses the
// CacheProvider contract; tiers use it for logging and metrics.
type CacheError struct {
	Op    string
	Key   string
	Layer string
	Err   error
}

func (e *CacheError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("cache %s on %s [%s]: %v", e.Op, e.Layer, e.Key, e.Err)
	}
	return fmt.Sprintf("cache %s on %s: %v", e.Op, e.Layer, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

func NewCacheError(op, key, layer string, err error) *CacheError {
	return &CacheError{
		Op:    op,
		Key:   key,
		Layer: layer,
		Err:   err,
	}
}

func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

func IsRedisUnavailable(err error) bool {
	return errors.Is(err, ErrRedisUnavailable)
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

// IsRejected reports whether L2 was never contacted because a resilience
// guard turned the call away.
func IsRejected(err error) bool {
	return errors.Is(err, ErrCircuitOpen) ||
		errors.Is(err, ErrBulkheadFull) ||
		errors.Is(err, ErrBulkheadTimeout) ||
		errors.Is(err, ErrRedisUnavailable)
}
