package cache

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/jonboulle/clockwork"

	"github.com/LavishGent/tiercache/internal/config"
	"github.com/LavishGent/tiercache/internal/types"
)

type lruEntry struct {
	insertedAt time.Time
	expiresAt  time.Time
	value      string
}

// LRUCache is an entry-bounded L1 with least-recently-used eviction and a
// fixed TTL for every entry. Expired entries read as misses and are removed
// on access or by the optional sweeper.
type LRUCache struct {
	name   string
	ttl    time.Duration
	clock  clockwork.Clock
	logger *slog.Logger

	mu        sync.Mutex
	lru       *simplelru.LRU[string, lruEntry]
	explicit  bool
	hits      uint64
	misses    uint64
	evictions uint64

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// LRUOption customizes an LRUCache.
type LRUOption func(*LRUCache)

// WithLRUClock replaces the real clock, mainly for tests.
func WithLRUClock(clock clockwork.Clock) LRUOption {
	return func(c *LRUCache) { c.clock = clock }
}

// NewLRUCache creates an LRU-engine L1 named name.
func NewLRUCache(name string, cfg config.LocalConfig, logger *slog.Logger, opts ...LRUOption) (*LRUCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &LRUCache{
		name:   name,
		ttl:    cfg.TTL,
		clock:  clockwork.NewRealClock(),
		logger: logger.With("component", "lru-cache", "cache", name),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	l, err := simplelru.NewLRU[string, lruEntry](cfg.MaxEntries, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("lru cache %s: %w", name, err)
	}
	c.lru = l

	if cfg.CleanupInterval > 0 {
		c.wg.Add(1)
		go c.sweepWorker(cfg.CleanupInterval)
	}
	return c, nil
}

// onEvict runs under mu. Explicit invalidation is not an eviction.
func (c *LRUCache) onEvict(string, lruEntry) {
	if !c.explicit {
		c.evictions++
	}
}

func (c *LRUCache) Name() string { return c.name }

func (c *LRUCache) TTL() time.Duration { return c.ttl }

func (c *LRUCache) expired(e lruEntry) bool {
	return c.ttl > 0 && !c.clock.Now().Before(e.expiresAt)
}

// Get returns the value for key and refreshes its recency.
func (c *LRUCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return "", false
	}
	if c.expired(e) {
		c.lru.Remove(key)
		c.misses++
		return "", false
	}
	c.hits++
	return e.value, true
}

// Put stores value with the instance TTL, evicting the least recently used
// entry when full.
func (c *LRUCache) Put(key, value string) {
	now := c.clock.Now()

	c.mu.Lock()
	c.lru.Add(key, lruEntry{value: value, insertedAt: now, expiresAt: now.Add(c.ttl)})
	c.mu.Unlock()
}

// Contains reports presence of an unexpired entry without touching stats
// or recency.
func (c *LRUCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Peek(key)
	return ok && !c.expired(e)
}

func (c *LRUCache) Invalidate(key string) {
	c.mu.Lock()
	c.removeExplicit(key)
	c.mu.Unlock()
}

func (c *LRUCache) InvalidateAll(keys []string) {
	c.mu.Lock()
	for _, key := range keys {
		c.removeExplicit(key)
	}
	c.mu.Unlock()
}

// InvalidateWhere removes every key match accepts. O(size).
func (c *LRUCache) InvalidateWhere(match func(key string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.lru.Keys() {
		if match(key) {
			c.removeExplicit(key)
			removed++
		}
	}
	c.logger.Debug("Invalidated entries by predicate", "removed", removed)
}

func (c *LRUCache) removeExplicit(key string) {
	c.explicit = true
	c.lru.Remove(key)
	c.explicit = false
}

// Clear drops all entries and resets the counters.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.explicit = true
	c.lru.Purge()
	c.explicit = false
	c.hits, c.misses, c.evictions = 0, 0, 0
}

func (c *LRUCache) Stats() types.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return types.CacheStats{
		HitCount:      c.hits,
		MissCount:     c.misses,
		EvictionCount: c.evictions,
		Size:          uint64(c.lru.Len()),
	}
}

// Size counts stored entries, including expired ones not yet removed.
func (c *LRUCache) Size() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint64(c.lru.Len())
}

// RemoveExpired drops every expired entry and returns how many it removed.
func (c *LRUCache) RemoveExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.lru.Keys() {
		if e, ok := c.lru.Peek(key); ok && c.expired(e) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

func (c *LRUCache) sweepWorker(interval time.Duration) {
	defer c.wg.Done()

	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.Chan():
			if n := c.RemoveExpired(); n > 0 {
				c.logger.Debug("Swept expired entries", "removed", n)
			}
		}
	}
}

// Close stops the sweeper. The cache stays usable.
func (c *LRUCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCh)
		c.wg.Wait()
	})
	return nil
}

var _ types.LocalCache = (*LRUCache)(nil)
