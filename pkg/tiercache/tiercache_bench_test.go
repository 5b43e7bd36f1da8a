package tiercache_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/LavishGent/tiercache/pkg/tiercache"
)

func newBenchRegistry(b *testing.B, remote bool) *tiercache.Registry {
	b.Helper()
	opts := []tiercache.Option{tiercache.WithoutRedis()}
	if remote {
		mr := miniredis.NewMiniRedis()
		if err := mr.Start(); err != nil {
			b.Fatal(err)
		}
		b.Cleanup(mr.Close)
		opts = []tiercache.Option{tiercache.WithRedisAddress(mr.Addr())}
	}

	cfg := tiercache.TestConfig()
	cfg.Tiered.MaxEntries = 100000
	reg, err := tiercache.NewFromConfig(cfg, opts...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = reg.Close() })
	return reg
}

func BenchmarkLocalOnly_Set(b *testing.B) {
	p := newBenchRegistry(b, false).Provider()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Set(ctx, fmt.Sprintf("user:%d", i), "value", time.Minute)
	}
}

func BenchmarkLocalOnly_Get(b *testing.B) {
	p := newBenchRegistry(b, false).Provider()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		p.Set(ctx, fmt.Sprintf("user:%d", i), "value", time.Minute)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Get(ctx, fmt.Sprintf("user:%d", i%1000))
	}
}

func BenchmarkLocalOnly_GetParallel(b *testing.B) {
	p := newBenchRegistry(b, false).Provider()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		p.Set(ctx, fmt.Sprintf("user:%d", i), "value", time.Minute)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			p.Get(ctx, fmt.Sprintf("user:%d", i%1000))
			i++
		}
	})
}

func BenchmarkTiered_Set(b *testing.B) {
	p := newBenchRegistry(b, true).Provider()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Set(ctx, fmt.Sprintf("user:%d", i), "value", time.Minute)
	}
}

// BenchmarkTiered_GetRemote measures the L2 hit path including backfill.
func BenchmarkTiered_GetRemote(b *testing.B) {
	reg := newBenchRegistry(b, true)
	p := reg.Provider()
	ctx := context.Background()

	p.Set(ctx, "menu:tree", "value", time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.ClearLocal()
		p.Get(ctx, "menu:tree")
	}
}

func BenchmarkLocalOnly_Set_SmallPayload(b *testing.B)  { benchmarkSetBySize(b, 100) }
func BenchmarkLocalOnly_Set_MediumPayload(b *testing.B) { benchmarkSetBySize(b, 10*1024) }
func BenchmarkLocalOnly_Set_LargePayload(b *testing.B)  { benchmarkSetBySize(b, 100*1024) }

func benchmarkSetBySize(b *testing.B, size int) {
	p := newBenchRegistry(b, false).Provider()
	ctx := context.Background()
	payload := strings.Repeat("x", size)

	b.SetBytes(int64(size))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Set(ctx, fmt.Sprintf("k:%d", i%1000), payload, time.Minute)
	}
}
