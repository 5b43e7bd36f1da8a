package tiercache

import (
	"github.com/LavishGent/tiercache/internal/types"
)

// CacheError records the operation, key and tier of a failure.
type CacheError = types.CacheError

// The provider never returns these; they surface from construction, from
// the codec, and in logs.
var (
	ErrCacheMiss        = types.ErrCacheMiss
	ErrRedisUnavailable = types.ErrRedisUnavailable
	ErrCircuitOpen      = types.ErrCircuitOpen
	ErrClosed           = types.ErrClosed
	ErrBulkheadFull     = types.ErrBulkheadFull
	ErrBulkheadTimeout  = types.ErrBulkheadTimeout
	ErrInvalidKey       = types.ErrInvalidKey
	ErrInvalidPattern   = types.ErrInvalidPattern
	ErrUnknownCache     = types.ErrUnknownCache
)

func NewCacheError(op, key, layer string, err error) *CacheError {
	return types.NewCacheError(op, key, layer, err)
}

func IsCacheMiss(err error) bool {
	return types.IsCacheMiss(err)
}

func IsRedisUnavailable(err error) bool {
	return types.IsRedisUnavailable(err)
}

func IsCircuitOpen(err error) bool {
	return types.IsCircuitOpen(err)
}

// IsRejected reports whether err came from a resilience guard rather than
// from Redis itself.
func IsRejected(err error) bool {
	return types.IsRejected(err)
}
