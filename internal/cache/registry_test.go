package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LavishGent/tiercache/internal/config"
	"github.com/LavishGent/tiercache/internal/types"
)

func newTestRegistry(t *testing.T, cfg *config.Config, opts ...RegistryOption) *Registry {
	t.Helper()
	r, err := NewRegistry(cfg, nil, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestNewRegistry(t *testing.T) {
	t.Run("builds configured caches", func(t *testing.T) {
		r := newTestRegistry(t, config.ForTesting())

		assert.Equal(t, []string{config.CacheMenus, config.CachePermissions, TieredCacheName}, r.Names())

		menus, ok := r.Local(config.CacheMenus)
		require.True(t, ok)
		assert.IsType(t, &BigCache{}, menus)

		perms, ok := r.Local(config.CachePermissions)
		require.True(t, ok)
		assert.IsType(t, &LRUCache{}, perms)

		assert.IsType(t, &DisabledRemoteCache{}, r.Remote())
	})

	t.Run("default config has the five named caches", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Remote.Enabled = false

		r := newTestRegistry(t, cfg)
		for _, name := range []string{config.CachePermissions, config.CacheRoles, config.CacheMenus, config.CacheConfig, config.CacheDict, TieredCacheName} {
			_, ok := r.Local(name)
			assert.True(t, ok, "missing cache %s", name)
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := config.ForTesting()
		cfg.Tiered.MaxEntries = 0
		_, err := NewRegistry(cfg, nil)
		assert.Error(t, err)
	})

	t.Run("rejects reserved name", func(t *testing.T) {
		cfg := config.ForTesting()
		cfg.Caches[TieredCacheName] = config.LocalConfig{MaxEntries: 1, TTL: time.Minute}
		_, err := NewRegistry(cfg, nil)
		assert.Error(t, err)
	})
}

func TestRegistryClear(t *testing.T) {
	ctx := context.Background()
	remote := newCountingRemote()
	r := newTestRegistry(t, config.ForTesting(), WithRemote(remote))

	r.Provider().Set(ctx, "user:permissions:1", "[]", time.Hour)
	perms, _ := r.Local(config.CachePermissions)
	perms.Put("user:permissions:1", "[]")
	perms.Get("user:permissions:1")

	require.NoError(t, r.Clear(config.CachePermissions))
	assert.Zero(t, perms.Size())
	assert.Zero(t, r.Stats()[config.CachePermissions].HitCount)
	assert.Equal(t, uint64(1), r.Provider().LocalSize(), "clearing one cache leaves the others")

	err := r.Clear("nope")
	assert.True(t, errors.Is(err, types.ErrUnknownCache))

	r.ClearAll()
	for name, s := range r.Stats() {
		assert.Zero(t, s.Size, "cache %s not cleared", name)
	}
	assert.True(t, remote.has("user:permissions:1"), "clearing L1 must not touch L2")
}

func TestRegistryWithRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := config.ForTestingWithRedis(mr.Addr())
	cfg.Remote.HealthCheckInterval = time.Hour
	cfg.CircuitBreaker.Enabled = true
	cfg.Bulkhead.Enabled = true

	r := newTestRegistry(t, cfg)
	p := r.Provider()

	p.Set(ctx, "user:permissions:7", `["a:b:c"]`, time.Hour)
	assert.True(t, mr.Exists("test:user:permissions:7"))

	p.ClearLocal()
	v, ok := p.Get(ctx, "user:permissions:7")
	assert.True(t, ok)
	assert.Equal(t, `["a:b:c"]`, v)
	assert.Equal(t, uint64(1), p.LocalSize(), "L2 hit should backfill L1")

	p.DeleteByPattern(ctx, "user:permissions:*")
	_, ok = p.Get(ctx, "user:permissions:7")
	assert.False(t, ok)

	t.Run("healthy", func(t *testing.T) {
		h := r.Health(ctx)
		assert.Equal(t, types.HealthStatusHealthy, h.Status)
		assert.True(t, h.Remote.Connected)
		assert.Equal(t, "closed", h.Remote.CircuitBreakerState)
		assert.Len(t, h.Local, 3)
	})

	t.Run("degraded when redis is down", func(t *testing.T) {
		mr.SetError("ERR down")
		defer mr.SetError("")

		h := r.Health(ctx)
		assert.Equal(t, types.HealthStatusDegraded, h.Status)
		assert.False(t, h.Remote.Connected)
		assert.NotEmpty(t, h.Remote.LastError)
	})

	t.Run("policy stats", func(t *testing.T) {
		s := r.PolicyStats()
		assert.Equal(t, "closed", s.CircuitState)
		assert.Positive(t, s.Bulkhead.TotalExecuted)
	})
}

func TestRegistryClose(t *testing.T) {
	r, err := NewRegistry(config.ForTesting(), nil)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.NoError(t, r.Close())
	assert.Equal(t, types.HealthStatusUnhealthy, r.Health(context.Background()).Status)
	assert.ErrorIs(t, r.Clear(config.CachePermissions), types.ErrClosed)
}

func TestRegistryHealthReportsCapacity(t *testing.T) {
	r := newTestRegistry(t, config.ForTesting())

	h := r.Health(context.Background())
	assert.Positive(t, h.Local[config.CacheMenus].CapacityBytes, "bigcache engine reports allocated bytes")
	assert.Zero(t, h.Local[config.CachePermissions].CapacityBytes, "lru engine is entry-bounded")
}
