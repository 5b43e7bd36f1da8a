package tiercache

import (
	"github.com/LavishGent/tiercache/internal/cache"
	"github.com/LavishGent/tiercache/internal/codec"
	"github.com/LavishGent/tiercache/internal/metrics"
	"github.com/LavishGent/tiercache/internal/types"
)

type (
	// Registry owns the tiered provider, the shared L2 and every named L1.
	Registry = cache.Registry
	// Provider is the two-tier cache handed to application code.
	Provider = cache.TieredProvider
	// CacheProvider is the contract Provider implements.
	CacheProvider = types.CacheProvider
	// LocalCache is an in-process tier.
	LocalCache = types.LocalCache
	// RemoteCache is the shared tier.
	RemoteCache = types.RemoteCache
	// CacheStats is a snapshot of one L1's counters.
	CacheStats = types.CacheStats
	// MetricsRecorder receives provider events.
	MetricsRecorder = types.MetricsRecorder
	// Tracker is the built-in MetricsRecorder.
	Tracker = metrics.Tracker
	// KeyValidator checks keys before they reach either tier.
	KeyValidator = types.KeyValidator
	// KeyValidationConfig configures a KeyValidator.
	KeyValidationConfig = types.KeyValidationConfig
	// Codec encodes typed values into a CacheProvider.
	Codec = codec.Codec
)

// TieredCacheName is the registry name of the provider's own L1.
const TieredCacheName = cache.TieredCacheName

// NewCodec returns a JSON codec over p.
func NewCodec(p CacheProvider) *Codec {
	return codec.New(p)
}
