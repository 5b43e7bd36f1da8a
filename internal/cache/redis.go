package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LavishGent/tiercache/internal/config"
	"github.com/LavishGent/tiercache/internal/metrics"
	"github.com/LavishGent/tiercache/internal/resilience"
	"github.com/LavishGent/tiercache/internal/types"
)

const (
	disconnectErrorThreshold   = 5
	defaultHealthCheckInterval = 5 * time.Second
	layerRemote                = "remote"
)

// RedisCache is the shared L2 tier. It never returns operational errors:
// a failed call is logged and counted, and reads as a miss or no-op. After
// disconnectErrorThreshold consecutive failures it stops calling Redis until
// the health check gets a PONG.
type RedisCache struct {
	client    *redis.Client
	policy    resilience.Executor
	recorder  types.MetricsRecorder
	logger    *slog.Logger
	keyPrefix string
	opTimeout time.Duration
	scanCount int64

	mu            sync.RWMutex
	connected     atomic.Bool
	lastError     error
	lastErrorTime time.Time
	errorCount    atomic.Int64

	healthCheckInterval time.Duration
	dialTimeout         time.Duration
	stopCh              chan struct{}
	wg                  sync.WaitGroup
	closeOnce           sync.Once

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
}

// RedisOption customizes a RedisCache.
type RedisOption func(*RedisCache)

// WithPolicy runs every Redis call through p.
func WithPolicy(p resilience.Executor) RedisOption {
	return func(c *RedisCache) { c.policy = p }
}

// WithRedisMetrics records errors and circuit transitions on r.
func WithRedisMetrics(r types.MetricsRecorder) RedisOption {
	return func(c *RedisCache) { c.recorder = r }
}

// NewRedisCache creates the L2 adapter. It fails only on invalid options;
// an unreachable server leaves the cache disconnected until the health check
// succeeds.
func NewRedisCache(cfg config.RemoteConfig, logger *slog.Logger, opts ...RedisOption) (*RedisCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Address == "" {
		return nil, types.NewCacheError("New", "", layerRemote, errors.New("remote address is required"))
	}

	redisOpts := &redis.Options{
		Addr:                  cfg.Address,
		Username:              cfg.Username,
		Password:              cfg.Password.Value(),
		DB:                    cfg.DB,
		PoolSize:              cfg.PoolSize,
		MinIdleConns:          cfg.MinIdleConns,
		DialTimeout:           cfg.DialTimeout,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		PoolTimeout:           cfg.PoolTimeout,
		ContextTimeoutEnabled: true,
	}

	if cfg.EnableTLS {
		redisOpts.TLSConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.TLSSkipVerify, //nolint:gosec // opt-in for self-signed test clusters
		}
		if cfg.TLSSkipVerify {
			logger.Warn("TLS certificate verification is disabled - this is insecure for production use")
		}
	}

	c := &RedisCache{
		client:              redis.NewClient(redisOpts),
		policy:              resilience.NewDisabledPolicy(),
		recorder:            metrics.NewNoOpTracker(),
		logger:              logger.With("component", "redis-cache"),
		keyPrefix:           cfg.KeyPrefix,
		opTimeout:           cfg.OperationTimeout,
		scanCount:           cfg.ScanCount,
		healthCheckInterval: cfg.HealthCheckInterval,
		dialTimeout:         cfg.DialTimeout,
		stopCh:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.opTimeout <= 0 {
		c.opTimeout = 2 * time.Second
	}
	if c.scanCount <= 0 {
		c.scanCount = 100
	}
	if c.dialTimeout <= 0 {
		c.dialTimeout = 5 * time.Second
	}
	if c.healthCheckInterval <= 0 {
		c.healthCheckInterval = defaultHealthCheckInterval
	}

	c.policy.SetOnCircuitStateChange(func(from, to resilience.State) {
		c.logger.Warn("Circuit breaker state changed", "from", from.String(), "to", to.String())
		c.recorder.RecordCircuitBreakerStateChange(from.String(), to.String())
	})

	ctx, cancel := context.WithTimeout(context.Background(), c.dialTimeout)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		c.logger.Warn("Redis initial connection failed", "address", cfg.Address, "error", err)
		c.setError(err)
	} else {
		c.connected.Store(true)
		c.logger.Info("Redis connected", "address", cfg.Address)
	}

	c.wg.Add(1)
	go c.healthCheckWorker()

	return c, nil
}

func (c *RedisCache) Name() string { return "redis" }

// IsAvailable reports whether the adapter currently talks to Redis.
func (c *RedisCache) IsAvailable() bool {
	return c.connected.Load()
}

// Policy returns the executor guarding Redis calls.
func (c *RedisCache) Policy() resilience.Executor { return c.policy }

func (c *RedisCache) prefixKey(key string) string {
	return c.keyPrefix + key
}

// do runs fn under the policy with the per-call timeout and reports whether
// it succeeded. Failures are absorbed here.
func (c *RedisCache) do(ctx context.Context, op, key string, fn func(ctx context.Context) error) bool {
	if !c.connected.Load() {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	err := c.policy.Execute(ctx, fn)
	switch {
	case err == nil:
		c.clearError()
		return true
	case types.IsRejected(err):
		c.logger.Debug("Redis call rejected", "op", op, "key", key, "error", err)
		return false
	case errors.Is(err, context.Canceled):
		return false
	default:
		c.handleError(op, key, err)
		return false
	}
}

// Get returns the value stored under key.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	var (
		value string
		found bool
	)
	ok := c.do(ctx, "get", key, func(ctx context.Context) error {
		v, err := c.client.Get(ctx, c.prefixKey(key)).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		value, found = v, true
		return nil
	})
	if !ok || !found {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return value, true
}

// Set stores value with ttl. A non-positive ttl stores without expiry.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	if c.do(ctx, "set", key, func(ctx context.Context) error {
		return c.client.Set(ctx, c.prefixKey(key), value, ttl).Err()
	}) {
		c.sets.Add(1)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if c.do(ctx, "delete", key, func(ctx context.Context) error {
		return c.client.Del(ctx, c.prefixKey(key)).Err()
	}) {
		c.deletes.Add(1)
	}
}

// DeleteByPattern deletes every key matching pattern with SCAN and DEL in
// batches. Malformed patterns are ignored. Not atomic: keys written during
// the scan may survive.
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) {
	if _, err := CompilePattern(pattern); err != nil {
		c.logger.Debug("Ignoring malformed pattern", "pattern", pattern)
		return
	}

	match := escapeGlob(c.keyPrefix) + pattern
	var deleted int64

	ok := c.do(ctx, "delete_pattern", pattern, func(ctx context.Context) error {
		var cursor uint64
		for {
			keys, next, err := c.client.Scan(ctx, cursor, match, c.scanCount).Result()
			if err != nil {
				return err
			}
			if len(keys) > 0 {
				n, err := c.client.Del(ctx, keys...).Result()
				if err != nil {
					return err
				}
				deleted += n
			}
			cursor = next
			if cursor == 0 {
				return nil
			}
		}
	})
	if ok {
		c.deletes.Add(deleted)
		c.logger.Debug("Deleted keys by pattern", "pattern", pattern, "deleted", deleted)
	}
}

func (c *RedisCache) Exists(ctx context.Context, key string) bool {
	var n int64
	ok := c.do(ctx, "exists", key, func(ctx context.Context) error {
		var err error
		n, err = c.client.Exists(ctx, c.prefixKey(key)).Result()
		return err
	})
	return ok && n > 0
}

// Expire resets the TTL of an existing key. Missing keys and non-positive
// TTLs are no-ops.
func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) {
	if ttl <= 0 {
		c.logger.Debug("Ignoring non-positive expire", "key", key, "ttl", ttl)
		return
	}
	c.do(ctx, "expire", key, func(ctx context.Context) error {
		return c.client.Expire(ctx, c.prefixKey(key), ttl).Err()
	})
}

// Ping checks the connection without going through the policy.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) healthCheckWorker() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.performHealthCheck()
		}
	}
}

func (c *RedisCache) performHealthCheck() {
	wasConnected := c.connected.Load()

	ctx, cancel := context.WithTimeout(context.Background(), c.dialTimeout)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		if wasConnected {
			c.logger.Warn("Redis health check failed", "error", err)
			c.setError(err)
		}
		return
	}

	if !wasConnected {
		c.errorCount.Store(0)
		c.connected.Store(true)
		c.logger.Info("Redis connection restored via health check")
	}
}

func (c *RedisCache) handleError(op, key string, err error) {
	c.logger.Warn("Redis operation failed", "op", op, "key", key, "error", err)
	c.recorder.RecordError(layerRemote, op, err)

	c.mu.Lock()
	c.lastError = err
	c.lastErrorTime = time.Now()
	c.mu.Unlock()

	count := c.errorCount.Add(1)
	if count >= disconnectErrorThreshold && c.connected.CompareAndSwap(true, false) {
		c.logger.Warn("Redis marked as disconnected after errors",
			"error_count", count,
			"last_error", err,
		)
	}
}

func (c *RedisCache) clearError() {
	c.errorCount.Store(0)
}

func (c *RedisCache) setError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastError = err
	c.lastErrorTime = time.Now()
	c.connected.Store(false)
}

// LastError returns the most recent Redis error and when it happened.
func (c *RedisCache) LastError() (error, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError, c.lastErrorTime
}

// ErrorCount returns the current run of consecutive errors.
func (c *RedisCache) ErrorCount() int64 {
	return c.errorCount.Load()
}

// RemoteStats holds L2 operation counters.
type RemoteStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Sets    int64 `json:"sets"`
	Deletes int64 `json:"deletes"`
}

func (c *RedisCache) Stats() RemoteStats {
	return RemoteStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Sets:    c.sets.Load(),
		Deletes: c.deletes.Load(),
	}
}

// Close stops the health check and closes the pool.
func (c *RedisCache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		close(c.stopCh)
		c.wg.Wait()
		err = c.client.Close()
	})
	return err
}

var (
	_ types.RemoteCache  = (*RedisCache)(nil)
	_ types.RemoteStatus = (*RedisCache)(nil)
)
