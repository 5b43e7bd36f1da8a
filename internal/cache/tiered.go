// Package cache implements the two cache tiers and the provider that
// composes them.
//
// TieredProvider reads L1 then L2, backfilling L1 on an L2 hit. Writes go to
// L2 first, then L1; deletes invalidate L1 first, then L2. Nothing is loaded
// on a miss: the caller recomputes and calls Set.
//
// Consistency is bounded, not strong. Another process that mutates a key in
// L2 does not invalidate this process's L1 copy, which may be served until
// the L1 instance's TTL elapses. Keep revocable data (such as the primary
// copy of a security decision) out of the tiered provider, or give it an L1
// TTL short enough to live with.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavishGent/tiercache/internal/metrics"
	"github.com/LavishGent/tiercache/internal/types"
)

// DefaultTTL is the L2 TTL used when Set is given a non-positive one.
const DefaultTTL = time.Hour

const layerLocal = "local"

// TieredProvider implements types.CacheProvider over one L1 and one L2.
type TieredProvider struct {
	local      types.LocalCache
	remote     types.RemoteCache
	recorder   types.MetricsRecorder
	validator  *types.KeyValidator
	logger     *slog.Logger
	defaultTTL time.Duration
	// lastLayer is the outermost tier: misses end there and writes are
	// recorded against it.
	lastLayer string
}

// ProviderOption customizes a TieredProvider.
type ProviderOption func(*TieredProvider)

// WithDefaultTTL sets the L2 TTL for Set calls without one.
func WithDefaultTTL(ttl time.Duration) ProviderOption {
	return func(p *TieredProvider) {
		if ttl > 0 {
			p.defaultTTL = ttl
		}
	}
}

// WithKeyValidator makes the provider treat invalid keys as misses.
func WithKeyValidator(v *types.KeyValidator) ProviderOption {
	return func(p *TieredProvider) { p.validator = v }
}

// WithMetrics records per-tier hits, misses, sets and deletes on r.
func WithMetrics(r types.MetricsRecorder) ProviderOption {
	return func(p *TieredProvider) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithLogger sets the provider's logger.
func WithLogger(l *slog.Logger) ProviderOption {
	return func(p *TieredProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewTieredProvider composes local and remote. A nil remote runs L1-only.
func NewTieredProvider(local types.LocalCache, remote types.RemoteCache, opts ...ProviderOption) *TieredProvider {
	if remote == nil {
		remote = NewDisabledRemoteCache()
	}

	p := &TieredProvider{
		local:      local,
		remote:     remote,
		recorder:   metrics.NewNoOpTracker(),
		logger:     slog.Default(),
		defaultTTL: DefaultTTL,
		lastLayer:  layerRemote,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "tiered-provider")

	if _, disabled := remote.(*DisabledRemoteCache); disabled {
		p.lastLayer = layerLocal
	}
	return p
}

func (p *TieredProvider) validKey(op, key string) bool {
	if p.validator == nil {
		return true
	}
	if err := p.validator.Validate(key); err != nil {
		p.logger.Debug("Rejected key", "op", op, "key", key, "error", err)
		return false
	}
	return true
}

// Get returns the value for key from the fastest tier holding it. An L2 hit
// is copied into L1 before returning.
func (p *TieredProvider) Get(ctx context.Context, key string) (string, bool) {
	if !p.validKey("get", key) {
		return "", false
	}

	start := time.Now()

	if v, ok := p.local.Get(key); ok {
		p.recorder.RecordHit(layerLocal, key, time.Since(start))
		return v, true
	}

	v, ok := p.remote.Get(ctx, key)
	if !ok {
		p.recorder.RecordMiss(p.lastLayer, key, time.Since(start))
		return "", false
	}

	p.local.Put(key, v)
	p.recorder.RecordHit(layerRemote, key, time.Since(start))
	return v, true
}

// Set writes L2 with ttl, then L1 with the L1 instance's own TTL. A
// non-positive ttl means the default.
func (p *TieredProvider) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if !p.validKey("set", key) {
		return
	}
	if ttl <= 0 {
		ttl = p.defaultTTL
	}

	start := time.Now()
	p.remote.Set(ctx, key, value, ttl)
	p.local.Put(key, value)
	p.recorder.RecordSet(p.lastLayer, key, len(value), time.Since(start))
}

// Delete invalidates L1, then L2.
func (p *TieredProvider) Delete(ctx context.Context, key string) {
	if !p.validKey("delete", key) {
		return
	}

	start := time.Now()
	p.local.Invalidate(key)
	p.remote.Delete(ctx, key)
	p.recorder.RecordDelete(p.lastLayer, key, time.Since(start))
}

// DeleteByPattern deletes matching keys from L2, then sweeps L1. The two
// sweeps are independent. A malformed pattern deletes nothing.
func (p *TieredProvider) DeleteByPattern(ctx context.Context, pattern string) {
	match, err := CompilePattern(pattern)
	if err != nil {
		p.logger.Debug("Ignoring malformed pattern", "pattern", pattern)
		return
	}

	start := time.Now()
	p.remote.DeleteByPattern(ctx, pattern)
	p.local.InvalidateWhere(match)
	p.recorder.RecordDelete(p.lastLayer, pattern, time.Since(start))
}

// Exists checks L1 first to skip the network on the common path.
func (p *TieredProvider) Exists(ctx context.Context, key string) bool {
	if !p.validKey("exists", key) {
		return false
	}
	return p.local.Contains(key) || p.remote.Exists(ctx, key)
}

// Expire changes the L2 TTL only. L1 TTLs are fixed per instance.
func (p *TieredProvider) Expire(ctx context.Context, key string, ttl time.Duration) {
	if !p.validKey("expire", key) {
		return
	}
	p.remote.Expire(ctx, key, ttl)
}

// LocalStats returns the L1 counters.
func (p *TieredProvider) LocalStats() types.CacheStats {
	return p.local.Stats()
}

// LocalSize returns the number of L1 entries.
func (p *TieredProvider) LocalSize() uint64 {
	return p.local.Size()
}

// ClearLocal empties L1 and resets its counters. L2 is untouched.
func (p *TieredProvider) ClearLocal() {
	p.local.Clear()
	p.logger.Info("Local tier cleared", "cache", p.local.Name())
}

// Local returns the provider's L1.
func (p *TieredProvider) Local() types.LocalCache { return p.local }

// Remote returns the provider's L2.
func (p *TieredProvider) Remote() types.RemoteCache { return p.remote }

var _ types.CacheProvider = (*TieredProvider)(nil)
