package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/LavishGent/tiercache/internal/config"
	"github.com/LavishGent/tiercache/internal/metrics"
	"github.com/LavishGent/tiercache/internal/resilience"
	"github.com/LavishGent/tiercache/internal/types"
)

// TieredCacheName names the provider's own generic L1 in the registry.
const TieredCacheName = "tiered"

// Registry owns every cache a process uses: the tiered provider and the
// differently tuned named L1 instances, all sharing one L2. Build it once at
// startup and pass it to consumers.
type Registry struct {
	provider *TieredProvider
	remote   types.RemoteCache
	policy   resilience.Executor
	caches   map[string]types.LocalCache
	names    []string
	logger   *slog.Logger

	remoteEnabled bool
	closed        atomic.Bool
}

// RegistryOption customizes a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	recorder types.MetricsRecorder
	remote   types.RemoteCache
	clock    clockwork.Clock
}

// WithRecorder records provider and L2 metrics on r.
func WithRecorder(r types.MetricsRecorder) RegistryOption {
	return func(o *registryOptions) { o.recorder = r }
}

// WithRemote supplies the L2 instead of building one from config.
func WithRemote(r types.RemoteCache) RegistryOption {
	return func(o *registryOptions) { o.remote = r }
}

// WithClock sets the clock used by LRU engines and the circuit breaker.
func WithClock(c clockwork.Clock) RegistryOption {
	return func(o *registryOptions) { o.clock = c }
}

// NewRegistry builds the caches described by cfg.
func NewRegistry(cfg *config.Config, logger *slog.Logger, opts ...RegistryOption) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}

	o := registryOptions{recorder: metrics.NewNoOpTracker()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}

	r := &Registry{
		caches:        make(map[string]types.LocalCache, len(cfg.Caches)+1),
		logger:        logger.With("component", "cache-registry"),
		remoteEnabled: cfg.Remote.Enabled || o.remote != nil,
		policy:        resilience.NewDisabledPolicy(),
	}

	switch {
	case o.remote != nil:
		r.remote = o.remote
	case cfg.Remote.Enabled:
		r.policy = resilience.NewPolicy(cfg, resilience.WithClock(o.clock), resilience.WithName("redis"))
		rc, err := NewRedisCache(cfg.Remote, logger, WithPolicy(r.policy), WithRedisMetrics(o.recorder))
		if err != nil {
			return nil, err
		}
		r.remote = rc
	default:
		r.remote = NewDisabledRemoteCache()
	}

	tieredL1, err := newLocalCache(TieredCacheName, cfg.Tiered, logger, o.clock)
	if err != nil {
		_ = r.remote.Close()
		return nil, err
	}
	r.caches[TieredCacheName] = tieredL1

	for name, lc := range cfg.Caches {
		if name == TieredCacheName {
			_ = r.closeAll()
			return nil, fmt.Errorf("cache name %q is reserved", name)
		}
		c, err := newLocalCache(name, lc, logger, o.clock)
		if err != nil {
			_ = r.closeAll()
			return nil, err
		}
		r.caches[name] = c
	}

	for name := range r.caches {
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)

	providerOpts := []ProviderOption{
		WithDefaultTTL(cfg.Provider.DefaultTTL),
		WithMetrics(o.recorder),
		WithLogger(logger),
	}
	if cfg.KeyValidation.Enabled {
		providerOpts = append(providerOpts, WithKeyValidator(types.NewKeyValidator(cfg.KeyValidation.ToTypesConfig())))
	}
	r.provider = NewTieredProvider(tieredL1, r.remote, providerOpts...)

	r.logger.Info("Cache registry ready",
		"caches", r.names,
		"remote", r.remote.Name(),
	)
	return r, nil
}

func newLocalCache(name string, lc config.LocalConfig, logger *slog.Logger, clock clockwork.Clock) (types.LocalCache, error) {
	switch lc.Engine {
	case "", config.EngineLRU:
		return NewLRUCache(name, lc, logger, WithLRUClock(clock))
	case config.EngineBigCache:
		return NewBigCache(name, lc, logger)
	default:
		return nil, fmt.Errorf("cache %s: unknown engine %q", name, lc.Engine)
	}
}

// Provider returns the tiered provider.
func (r *Registry) Provider() *TieredProvider { return r.provider }

// Remote returns the shared L2.
func (r *Registry) Remote() types.RemoteCache { return r.remote }

// RemoteEnabled reports whether an L2 is configured, connected or not.
func (r *Registry) RemoteEnabled() bool { return r.remoteEnabled }

// Local returns the named L1.
func (r *Registry) Local(name string) (types.LocalCache, bool) {
	c, ok := r.caches[name]
	return c, ok
}

// Names returns every L1 name in sorted order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Stats returns the counters of every L1.
func (r *Registry) Stats() map[string]types.CacheStats {
	out := make(map[string]types.CacheStats, len(r.caches))
	for name, c := range r.caches {
		out[name] = c.Stats()
	}
	return out
}

// Clear empties one L1. L2 is untouched. A closed registry returns
// types.ErrClosed.
func (r *Registry) Clear(name string) error {
	if r.closed.Load() {
		return types.ErrClosed
	}
	c, ok := r.caches[name]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrUnknownCache, name)
	}
	c.Clear()
	r.logger.Info("Local cache cleared", "cache", name)
	return nil
}

// ClearAll empties every L1.
func (r *Registry) ClearAll() {
	for _, name := range r.names {
		r.caches[name].Clear()
	}
	r.logger.Info("All local caches cleared", "count", len(r.names))
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports L1 counters and the L2 connection state. A down L2
// degrades the registry; it is unhealthy only once closed.
func (r *Registry) Health(ctx context.Context) types.HealthMetrics {
	closed := r.closed.Load()

	h := types.HealthMetrics{
		Timestamp: time.Now(),
		Local:     make(map[string]types.LocalHealthMetrics, len(r.caches)),
	}
	for name, c := range r.caches {
		h.Local[name] = types.NewLocalHealthMetrics(c, !closed)
	}

	remote := types.RemoteHealthMetrics{
		Enabled:             r.remoteEnabled,
		Connected:           r.remote.IsAvailable(),
		CircuitBreakerState: r.policy.CircuitState().String(),
		Status:              types.HealthStatusHealthy,
	}
	if p, ok := r.remote.(pinger); ok && remote.Connected && !closed {
		if err := p.Ping(ctx); err != nil {
			remote.Connected = false
			remote.LastError = err.Error()
			remote.LastErrorTime = time.Now()
		}
	}
	if s, ok := r.remote.(types.RemoteStatus); ok {
		if err, at := s.LastError(); err != nil && remote.LastError == "" {
			remote.LastError = err.Error()
			remote.LastErrorTime = at
		}
		remote.ErrorCount = s.ErrorCount()
	}
	if r.remoteEnabled && (!remote.Connected || r.policy.CircuitState() == resilience.StateOpen) {
		remote.Status = types.HealthStatusUnhealthy
	}
	h.Remote = remote

	switch {
	case closed:
		h.Status = types.HealthStatusUnhealthy
	case remote.Status != types.HealthStatusHealthy:
		h.Status = types.HealthStatusDegraded
	default:
		h.Status = types.HealthStatusHealthy
	}
	return h
}

// PolicyStats returns the state of the L2 guards.
func (r *Registry) PolicyStats() resilience.PolicyStats {
	return r.policy.Stats()
}

// Close releases every cache and the L2 connection pool.
func (r *Registry) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	err := r.closeAll()
	r.logger.Info("Cache registry closed")
	return err
}

func (r *Registry) closeAll() error {
	var errs []error
	for name, c := range r.caches {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	if err := r.remote.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close remote: %w", err))
	}
	return errors.Join(errs...)
}
