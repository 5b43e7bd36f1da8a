package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/LavishGent/tiercache/internal/config"
	"github.com/LavishGent/tiercache/internal/types"
)

const testL1TTL = 5 * time.Minute

type providerFixture struct {
	provider *TieredProvider
	local    *LRUCache
	clock    *clockwork.FakeClock
}

func newProviderFixture(t *testing.T, remote types.RemoteCache, maxEntries int, opts ...ProviderOption) providerFixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	local, err := NewLRUCache(TieredCacheName, config.LocalConfig{MaxEntries: maxEntries, TTL: testL1TTL}, nil, WithLRUClock(clock))
	if err != nil {
		t.Fatalf("NewLRUCache failed: %v", err)
	}
	t.Cleanup(func() { _ = local.Close() })
	return providerFixture{
		provider: NewTieredProvider(local, remote, opts...),
		local:    local,
		clock:    clock,
	}
}

func TestTieredProviderReadAfterWrite(t *testing.T) {
	ctx := context.Background()
	remote := newCountingRemote()
	f := newProviderFixture(t, remote, 100)

	f.provider.Set(ctx, "config:site", "tiercache", time.Hour)

	v, ok := f.provider.Get(ctx, "config:site")
	if !ok || v != "tiercache" {
		t.Fatalf("Get() = %q, %v; want tiercache, true", v, ok)
	}
	if remote.Calls("get") != 0 {
		t.Errorf("remote Get calls = %d, want 0 (served from L1)", remote.Calls("get"))
	}
	if got := remote.ttl("config:site"); got != time.Hour {
		t.Errorf("remote ttl = %v, want 1h", got)
	}
}

func TestTieredProviderSetDefaultTTL(t *testing.T) {
	ctx := context.Background()

	t.Run("package default", func(t *testing.T) {
		remote := newCountingRemote()
		f := newProviderFixture(t, remote, 10)

		f.provider.Set(ctx, "k", "v", 0)
		if got := remote.ttl("k"); got != DefaultTTL {
			t.Errorf("remote ttl = %v, want %v", got, DefaultTTL)
		}
	})

	t.Run("configured default", func(t *testing.T) {
		remote := newCountingRemote()
		f := newProviderFixture(t, remote, 10, WithDefaultTTL(10*time.Minute))

		f.provider.Set(ctx, "k", "v", -time.Second)
		if got := remote.ttl("k"); got != 10*time.Minute {
			t.Errorf("remote ttl = %v, want 10m", got)
		}
	})
}

func TestTieredProviderBackfill(t *testing.T) {
	ctx := context.Background()
	remote := newCountingRemote()
	f := newProviderFixture(t, remote, 100)
	remote.put("user:roles:3", `["admin"]`)

	v, ok := f.provider.Get(ctx, "user:roles:3")
	if !ok || v != `["admin"]` {
		t.Fatalf("first Get() = %q, %v", v, ok)
	}
	if !f.local.Contains("user:roles:3") {
		t.Error("L2 hit was not backfilled into L1")
	}

	v, ok = f.provider.Get(ctx, "user:roles:3")
	if !ok || v != `["admin"]` {
		t.Fatalf("second Get() = %q, %v", v, ok)
	}
	if got := remote.Calls("get"); got != 1 {
		t.Errorf("remote Get calls = %d, want 1", got)
	}
}

func TestTieredProviderMissDoesNotLoad(t *testing.T) {
	ctx := context.Background()
	remote := newCountingRemote()
	f := newProviderFixture(t, remote, 10)

	if _, ok := f.provider.Get(ctx, "nothing:here"); ok {
		t.Error("Get() found a value for an unknown key")
	}
	if remote.Calls("set") != 0 || f.local.Size() != 0 {
		t.Error("a miss must not populate either tier")
	}
}

func TestTieredProviderDeleteCompleteness(t *testing.T) {
	ctx := context.Background()
	remote := newCountingRemote()
	f := newProviderFixture(t, remote, 10)

	f.provider.Set(ctx, "dict:status", "on,off", time.Hour)
	f.provider.Delete(ctx, "dict:status")

	if _, ok := f.provider.Get(ctx, "dict:status"); ok {
		t.Error("Get() after Delete found a value")
	}
	if f.provider.Exists(ctx, "dict:status") {
		t.Error("Exists() after Delete = true")
	}
	if remote.has("dict:status") {
		t.Error("key survived in L2")
	}
}

func TestTieredProviderDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	remote := newCountingRemote()
	f := newProviderFixture(t, remote, 10)

	for _, k := range []string{"ns:a", "ns:b", "other:c"} {
		f.provider.Set(ctx, k, "v", time.Hour)
	}

	f.provider.DeleteByPattern(ctx, "ns:*")

	if f.provider.Exists(ctx, "ns:a") {
		t.Error("Exists(ns:a) = true")
	}
	if f.provider.Exists(ctx, "ns:b") {
		t.Error("Exists(ns:b) = true")
	}
	if !f.provider.Exists(ctx, "other:c") {
		t.Error("Exists(other:c) = false")
	}

	t.Run("malformed pattern deletes nothing", func(t *testing.T) {
		before := remote.Calls("delete_pattern")
		f.provider.DeleteByPattern(ctx, "other:[c]")
		f.provider.DeleteByPattern(ctx, "")

		if !f.provider.Exists(ctx, "other:c") {
			t.Error("malformed pattern removed other:c")
		}
		if remote.Calls("delete_pattern") != before {
			t.Error("malformed pattern reached L2")
		}
	})

	t.Run("question mark matches one byte in both tiers", func(t *testing.T) {
		f.provider.Set(ctx, "u:a", "v", time.Hour)
		f.provider.Set(ctx, "u:é", "v", time.Hour)

		f.provider.DeleteByPattern(ctx, "u:?")

		if f.provider.Exists(ctx, "u:a") {
			t.Error("Exists(u:a) = true")
		}
		if !f.local.Contains("u:é") {
			t.Error("L1 dropped u:é, which a byte-wise MATCH keeps in L2")
		}
		if !remote.has("u:é") {
			t.Error("L2 dropped u:é")
		}
	})
}

func TestTieredProviderCapacityBound(t *testing.T) {
	ctx := context.Background()
	const n = 4
	f := newProviderFixture(t, newCountingRemote(), n)

	for i := 0; i <= n; i++ {
		f.provider.Set(ctx, fmt.Sprintf("k:%d", i), "v", time.Hour)
	}

	if got := f.provider.LocalSize(); got > n {
		t.Errorf("LocalSize() = %d, want <= %d", got, n)
	}
	if got := f.provider.LocalStats().EvictionCount; got < 1 {
		t.Errorf("EvictionCount = %d, want >= 1", got)
	}
}

func TestTieredProviderFailOpen(t *testing.T) {
	ctx := context.Background()
	remote := &failingRemote{}
	f := newProviderFixture(t, remote, 10)

	if _, ok := f.provider.Get(ctx, "user:permissions:1"); ok {
		t.Error("Get() with failing L2 found a value")
	}

	f.provider.Set(ctx, "user:permissions:1", "[]", time.Hour)
	if v, ok := f.provider.Get(ctx, "user:permissions:1"); !ok || v != "[]" {
		t.Errorf("Get() after Set = %q, %v; want L1 copy", v, ok)
	}
	if !f.provider.Exists(ctx, "user:permissions:1") {
		t.Error("Exists() = false for an L1 entry")
	}

	f.provider.Delete(ctx, "user:permissions:1")
	if _, ok := f.provider.Get(ctx, "user:permissions:1"); ok {
		t.Error("Get() after Delete found a value")
	}
	if f.provider.Exists(ctx, "user:permissions:1") {
		t.Error("Exists() after Delete = true")
	}

	f.provider.Expire(ctx, "user:permissions:1", time.Minute)
	f.provider.DeleteByPattern(ctx, "user:*")

	if remote.calls == 0 {
		t.Error("failing L2 was never called")
	}
}

func TestTieredProviderL1TTL(t *testing.T) {
	ctx := context.Background()
	f := newProviderFixture(t, NewDisabledRemoteCache(), 10)

	f.provider.Set(ctx, "token:blacklist:abc", "1", time.Second)
	if _, ok := f.provider.Get(ctx, "token:blacklist:abc"); !ok {
		t.Fatal("Get() before expiry missed")
	}

	f.clock.Advance(testL1TTL)

	if _, ok := f.provider.Get(ctx, "token:blacklist:abc"); ok {
		t.Error("Get() returned an entry past the L1 TTL")
	}
}

func TestTieredProviderExpireIsRemoteOnly(t *testing.T) {
	ctx := context.Background()
	remote := newCountingRemote()
	f := newProviderFixture(t, remote, 10)

	f.provider.Set(ctx, "online:tok", "1", time.Hour)
	f.provider.Expire(ctx, "online:tok", time.Minute)

	if got := remote.ttl("online:tok"); got != time.Minute {
		t.Errorf("remote ttl = %v, want 1m", got)
	}
	if f.local.TTL() != testL1TTL {
		t.Errorf("L1 TTL changed to %v", f.local.TTL())
	}

	f.provider.Expire(ctx, "missing", time.Minute)
	if remote.has("missing") {
		t.Error("Expire() created a key")
	}
}

func TestTieredProviderExistsChecksL1First(t *testing.T) {
	ctx := context.Background()
	remote := newCountingRemote()
	f := newProviderFixture(t, remote, 10)

	f.provider.Set(ctx, "a", "1", time.Hour)
	if !f.provider.Exists(ctx, "a") {
		t.Fatal("Exists(a) = false")
	}
	if remote.Calls("exists") != 0 {
		t.Error("Exists() went to L2 for an L1 entry")
	}

	remote.put("b", "2")
	if !f.provider.Exists(ctx, "b") {
		t.Error("Exists(b) = false for an L2-only entry")
	}
}

func TestTieredProviderScenario(t *testing.T) {
	ctx := context.Background()
	f := newProviderFixture(t, newCountingRemote(), 10)

	f.provider.Set(ctx, "user:permissions:7", `["a:b:c"]`, 3600*time.Second)

	v, ok := f.provider.Get(ctx, "user:permissions:7")
	if !ok || v != `["a:b:c"]` {
		t.Fatalf("Get() = %q, %v", v, ok)
	}

	f.provider.DeleteByPattern(ctx, "user:permissions:*")

	if _, ok := f.provider.Get(ctx, "user:permissions:7"); ok {
		t.Error("Get() after DeleteByPattern found a value")
	}
}

func TestTieredProviderKeyValidation(t *testing.T) {
	ctx := context.Background()
	remote := newCountingRemote()
	f := newProviderFixture(t, remote, 10, WithKeyValidator(types.NewKeyValidator(types.DefaultKeyValidationConfig())))

	for _, key := range []string{"", "has space", "glob*", "ctl\x00"} {
		f.provider.Set(ctx, key, "v", time.Hour)
		if _, ok := f.provider.Get(ctx, key); ok {
			t.Errorf("Get(%q) found a value for an invalid key", key)
		}
		if f.provider.Exists(ctx, key) {
			t.Errorf("Exists(%q) = true for an invalid key", key)
		}
	}
	if remote.Calls("set") != 0 || remote.Calls("get") != 0 {
		t.Error("invalid keys reached L2")
	}
}

func TestTieredProviderMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("records the serving tier", func(t *testing.T) {
		remote := newCountingRemote()
		m := newRecordingMetrics()
		f := newProviderFixture(t, remote, 10, WithMetrics(m))
		remote.put("r", "1")

		f.provider.Get(ctx, "missing")
		f.provider.Get(ctx, "r")
		f.provider.Get(ctx, "r")
		f.provider.Set(ctx, "s", "2", time.Hour)
		f.provider.Delete(ctx, "s")

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.misses[layerRemote] != 1 {
			t.Errorf("remote misses = %d, want 1", m.misses[layerRemote])
		}
		if m.hits[layerRemote] != 1 || m.hits[layerLocal] != 1 {
			t.Errorf("hits = %v, want one per tier", m.hits)
		}
		if m.sets != 1 || m.deletes != 1 {
			t.Errorf("sets = %d deletes = %d, want 1 and 1", m.sets, m.deletes)
		}
		if m.writes[layerRemote] != 2 {
			t.Errorf("remote writes = %d, want 2", m.writes[layerRemote])
		}
	})

	t.Run("miss is local when remote is disabled", func(t *testing.T) {
		m := newRecordingMetrics()
		f := newProviderFixture(t, nil, 10, WithMetrics(m))

		f.provider.Get(ctx, "missing")

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.misses[layerLocal] != 1 {
			t.Errorf("local misses = %d, want 1", m.misses[layerLocal])
		}
	})

	t.Run("writes are local when remote is disabled", func(t *testing.T) {
		m := newRecordingMetrics()
		f := newProviderFixture(t, nil, 10, WithMetrics(m))

		f.provider.Set(ctx, "a", "1", time.Hour)
		f.provider.Delete(ctx, "a")
		f.provider.DeleteByPattern(ctx, "a*")

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.writes[layerLocal] != 3 {
			t.Errorf("local writes = %d, want 3", m.writes[layerLocal])
		}
		if m.writes[layerRemote] != 0 {
			t.Errorf("remote writes = %d, want 0", m.writes[layerRemote])
		}
	})
}

func TestTieredProviderClearLocal(t *testing.T) {
	ctx := context.Background()
	remote := newCountingRemote()
	f := newProviderFixture(t, remote, 10)

	f.provider.Set(ctx, "a", "1", time.Hour)
	f.provider.Get(ctx, "a")

	f.provider.ClearLocal()

	if f.provider.LocalSize() != 0 {
		t.Errorf("LocalSize() = %d, want 0", f.provider.LocalSize())
	}
	if s := f.provider.LocalStats(); s.HitCount != 0 {
		t.Errorf("LocalStats() = %+v, want reset", s)
	}
	if !remote.has("a") {
		t.Error("ClearLocal() touched L2")
	}
	if v, ok := f.provider.Get(ctx, "a"); !ok || v != "1" {
		t.Errorf("Get() after ClearLocal = %q, %v; want backfill from L2", v, ok)
	}
}

func TestTieredProviderConcurrency(t *testing.T) {
	ctx := context.Background()
	f := newProviderFixture(t, newCountingRemote(), 50)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("user:menus:%d", j%20)
				switch (i + j) % 4 {
				case 0:
					f.provider.Set(ctx, key, "v", time.Hour)
				case 1:
					f.provider.Get(ctx, key)
				case 2:
					f.provider.Delete(ctx, key)
				default:
					f.provider.DeleteByPattern(ctx, "user:menus:1*")
				}
			}
		}(i)
	}
	wg.Wait()

	if f.provider.LocalSize() > 50 {
		t.Errorf("LocalSize() = %d, want <= 50", f.provider.LocalSize())
	}
}
