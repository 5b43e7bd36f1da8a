package cache

import (
	"context"
	"sync"
	"time"

	"github.com/LavishGent/tiercache/internal/types"
)

// countingRemote is an in-memory L2 that counts calls per operation.
type countingRemote struct {
	mu    sync.Mutex
	data  map[string]string
	ttls  map[string]time.Duration
	calls map[string]int
}

func newCountingRemote() *countingRemote {
	return &countingRemote{
		data:  make(map[string]string),
		ttls:  make(map[string]time.Duration),
		calls: make(map[string]int),
	}
}

func (r *countingRemote) count(op string) {
	r.calls[op]++
}

func (r *countingRemote) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *countingRemote) Name() string      { return "counting" }
func (r *countingRemote) IsAvailable() bool { return true }
func (r *countingRemote) Close() error      { return nil }

func (r *countingRemote) Get(_ context.Context, key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count("get")
	v, ok := r.data[key]
	return v, ok
}

func (r *countingRemote) Set(_ context.Context, key, value string, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count("set")
	r.data[key] = value
	r.ttls[key] = ttl
}

func (r *countingRemote) Delete(_ context.Context, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count("delete")
	delete(r.data, key)
}

func (r *countingRemote) DeleteByPattern(_ context.Context, pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count("delete_pattern")
	for k := range r.data {
		if MatchPattern(pattern, k) {
			delete(r.data, k)
		}
	}
}

func (r *countingRemote) Exists(_ context.Context, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count("exists")
	_, ok := r.data[key]
	return ok
}

func (r *countingRemote) Expire(_ context.Context, key string, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count("expire")
	if _, ok := r.data[key]; ok {
		r.ttls[key] = ttl
	}
}

// put seeds L2 without counting.
func (r *countingRemote) put(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = value
}

func (r *countingRemote) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[key]
	return ok
}

func (r *countingRemote) ttl(key string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttls[key]
}

// failingRemote behaves like an L2 whose every call errors: reads miss and
// writes vanish.
type failingRemote struct {
	DisabledRemoteCache
	mu    sync.Mutex
	calls int
}

func (r *failingRemote) hit() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *failingRemote) Name() string { return "failing" }

func (r *failingRemote) Get(context.Context, string) (string, bool) {
	r.hit()
	return "", false
}

func (r *failingRemote) Set(context.Context, string, string, time.Duration) { r.hit() }

func (r *failingRemote) Delete(context.Context, string) { r.hit() }

func (r *failingRemote) DeleteByPattern(context.Context, string) { r.hit() }

func (r *failingRemote) Exists(context.Context, string) bool {
	r.hit()
	return false
}

// recordingMetrics captures MetricsRecorder calls.
type recordingMetrics struct {
	mu      sync.Mutex
	hits    map[string]int
	misses  map[string]int
	writes  map[string]int
	sets    int
	deletes int
	errors  int
	circuit []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{hits: map[string]int{}, misses: map[string]int{}, writes: map[string]int{}}
}

func (m *recordingMetrics) RecordHit(layer, _ string, _ time.Duration) {
	m.mu.Lock()
	m.hits[layer]++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordMiss(layer, _ string, _ time.Duration) {
	m.mu.Lock()
	m.misses[layer]++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordSet(layer, _ string, _ int, _ time.Duration) {
	m.mu.Lock()
	m.writes[layer]++
	m.sets++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordDelete(layer, _ string, _ time.Duration) {
	m.mu.Lock()
	m.writes[layer]++
	m.deletes++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordError(string, string, error) {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordCircuitBreakerStateChange(from, to string) {
	m.mu.Lock()
	m.circuit = append(m.circuit, from+"->"+to)
	m.mu.Unlock()
}

var (
	_ types.RemoteCache     = (*countingRemote)(nil)
	_ types.RemoteCache     = (*failingRemote)(nil)
	_ types.MetricsRecorder = (*recordingMetrics)(nil)
)
