package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/LavishGent/tiercache/internal/config"
)

func newTestBigCache(t *testing.T) *BigCache {
	t.Helper()
	c, err := NewBigCache("menus", config.LocalConfig{
		Engine:       config.EngineBigCache,
		TTL:          time.Minute,
		MaxSizeMB:    1,
		Shards:       8,
		MaxEntrySize: 256,
	}, nil)
	if err != nil {
		t.Fatalf("NewBigCache failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBigCacheGetPut(t *testing.T) {
	c := newTestBigCache(t)

	if _, ok := c.Get("menu:tree"); ok {
		t.Error("Get() on empty cache found a value")
	}

	tree := `[{"id":1,"children":[{"id":2}]}]`
	c.Put("menu:tree", tree)

	v, ok := c.Get("menu:tree")
	if !ok || v != tree {
		t.Errorf("Get() = %q, %v; want tree, true", v, ok)
	}

	s := c.Stats()
	if s.HitCount != 1 || s.MissCount != 1 || s.Size != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, size 1", s)
	}
	if c.TTL() != time.Minute {
		t.Errorf("TTL() = %v, want 1m", c.TTL())
	}
}

func TestBigCacheContainsHasNoSideEffects(t *testing.T) {
	c := newTestBigCache(t)
	c.Put("a", "1")

	if !c.Contains("a") || c.Contains("b") {
		t.Error("Contains() returned wrong presence")
	}
	if s := c.Stats(); s.HitCount != 0 || s.MissCount != 0 {
		t.Errorf("Stats() = %+v, want no hits or misses", s)
	}
}

func TestBigCacheInvalidation(t *testing.T) {
	c := newTestBigCache(t)
	for _, k := range []string{"menu:user:1", "menu:user:2", "menu:tree", "dict:x"} {
		c.Put(k, "v")
	}

	c.Invalidate("dict:x")
	c.InvalidateWhere(func(key string) bool { return MatchPattern("menu:user:*", key) })

	if c.Contains("menu:user:1") || c.Contains("menu:user:2") || c.Contains("dict:x") {
		t.Error("invalidated keys still present")
	}
	if !c.Contains("menu:tree") {
		t.Error("menu:tree should survive")
	}

	c.InvalidateAll([]string{"menu:tree"})
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestBigCacheClear(t *testing.T) {
	c := newTestBigCache(t)
	c.Put("a", "1")
	c.Get("a")
	c.Get("b")

	c.Clear()

	s := c.Stats()
	if s.HitCount != 0 || s.MissCount != 0 || s.Size != 0 {
		t.Errorf("Stats() after Clear = %+v, want zero", s)
	}
}

func TestBigCacheOversizedEntryIsDropped(t *testing.T) {
	c := newTestBigCache(t)

	c.Put("huge", strings.Repeat("x", 2*1024*1024))

	if c.Contains("huge") {
		t.Error("entry larger than the cache should be dropped")
	}
}

func TestBigCacheClosed(t *testing.T) {
	c := newTestBigCache(t)
	c.Put("a", "1")
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, ok := c.Get("a"); ok {
		t.Error("Get() after Close found a value")
	}
	c.Put("b", "2")
	if c.Size() != 0 {
		t.Errorf("Size() after Close = %d, want 0", c.Size())
	}
}
