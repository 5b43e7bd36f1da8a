package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/LavishGent/tiercache/internal/config"
	"github.com/LavishGent/tiercache/internal/types"
)

// BigCache is a byte-bounded L1 for large, near-static values such as menu
// trees. The bound is MaxSizeMB rather than an entry count; when full,
// bigcache drops the oldest entries of a shard.
type BigCache struct {
	cache  *bigcache.BigCache
	name   string
	ttl    time.Duration
	logger *slog.Logger

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64

	closed atomic.Bool
}

// NewBigCache creates a bigcache-engine L1 named name.
func NewBigCache(name string, cfg config.LocalConfig, logger *slog.Logger) (*BigCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &BigCache{
		name:   name,
		ttl:    cfg.TTL,
		logger: logger.With("component", "bigcache", "cache", name),
	}

	maxEntrySize := cfg.MaxEntrySize
	if maxEntrySize <= 0 {
		maxEntrySize = 1024
	}

	bcConfig := bigcache.Config{
		Shards:             cfg.Shards,
		LifeWindow:         cfg.TTL,
		CleanWindow:        cfg.CleanupInterval,
		MaxEntriesInWindow: max(cfg.MaxSizeMB*1024*1024/maxEntrySize, cfg.Shards),
		MaxEntrySize:       maxEntrySize,
		HardMaxCacheSize:   cfg.MaxSizeMB,
		Verbose:            false,
		Logger:             &bigcacheLogger{logger: c.logger},
		OnRemoveWithReason: func(_ string, _ []byte, reason bigcache.RemoveReason) {
			if reason == bigcache.NoSpace || reason == bigcache.Expired {
				c.evictions.Add(1)
			}
		},
	}

	bc, err := bigcache.New(context.Background(), bcConfig)
	if err != nil {
		return nil, fmt.Errorf("bigcache %s: %w", name, err)
	}
	c.cache = bc
	return c, nil
}

func (c *BigCache) Name() string { return c.name }

func (c *BigCache) TTL() time.Duration { return c.ttl }

// Get treats an entry past its life window as a miss even if the cleaner
// has not run yet.
func (c *BigCache) Get(key string) (string, bool) {
	if c.closed.Load() {
		c.misses.Add(1)
		return "", false
	}

	data, resp, err := c.cache.GetWithInfo(key)
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			c.logger.Debug("Get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return "", false
	}
	if resp.EntryStatus == bigcache.Expired {
		_ = c.cache.Delete(key)
		c.evictions.Add(1)
		c.misses.Add(1)
		return "", false
	}

	c.hits.Add(1)
	return string(data), true
}

// Put stores value. An entry too large for a shard is dropped.
func (c *BigCache) Put(key, value string) {
	if c.closed.Load() {
		return
	}
	if err := c.cache.Set(key, []byte(value)); err != nil {
		c.logger.Debug("Put dropped", "key", key, "size", len(value), "error", err)
	}
}

func (c *BigCache) Contains(key string) bool {
	if c.closed.Load() {
		return false
	}
	_, resp, err := c.cache.GetWithInfo(key)
	return err == nil && resp.EntryStatus != bigcache.Expired
}

func (c *BigCache) Invalidate(key string) {
	if c.closed.Load() {
		return
	}
	if err := c.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		c.logger.Debug("Invalidate failed", "key", key, "error", err)
	}
}

func (c *BigCache) InvalidateAll(keys []string) {
	for _, key := range keys {
		c.Invalidate(key)
	}
}

// InvalidateWhere walks every shard; keys are collected first because
// deleting while iterating skips entries.
func (c *BigCache) InvalidateWhere(match func(key string) bool) {
	if c.closed.Load() {
		return
	}

	var doomed []string
	iter := c.cache.Iterator()
	for iter.SetNext() {
		entry, err := iter.Value()
		if err != nil {
			continue
		}
		if match(entry.Key()) {
			doomed = append(doomed, entry.Key())
		}
	}

	for _, key := range doomed {
		_ = c.cache.Delete(key)
	}
	c.logger.Debug("Invalidated entries by predicate", "removed", len(doomed))
}

// Clear drops all entries and resets the counters.
func (c *BigCache) Clear() {
	if c.closed.Load() {
		return
	}
	if err := c.cache.Reset(); err != nil {
		c.logger.Warn("Reset failed", "error", err)
	}
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

func (c *BigCache) Stats() types.CacheStats {
	return types.CacheStats{
		HitCount:      c.hits.Load(),
		MissCount:     c.misses.Load(),
		EvictionCount: c.evictions.Load(),
		Size:          c.Size(),
	}
}

func (c *BigCache) Size() uint64 {
	if c.closed.Load() {
		return 0
	}
	return uint64(c.cache.Len())
}

// Capacity returns the bytes currently allocated by the shards.
func (c *BigCache) Capacity() int {
	if c.closed.Load() {
		return 0
	}
	return c.cache.Capacity()
}

func (c *BigCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.cache.Close()
}

type bigcacheLogger struct {
	logger *slog.Logger
}

func (l *bigcacheLogger) Printf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf("bigcache: "+format, args...))
}

var _ types.LocalCache = (*BigCache)(nil)
