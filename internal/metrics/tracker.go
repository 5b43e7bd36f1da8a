// Package metrics tracks provider operations and publishes them, together
// with L1 counters, to logs or DataDog.
package metrics

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LavishGent/tiercache/internal/types"
)

const (
	defaultLatencyBufferSize = 10000

	LayerLocal  = "local"
	LayerRemote = "remote"
)

// Tracker implements types.MetricsRecorder with atomic counters and a ring
// buffer of recent latencies.
type Tracker struct {
	localHits    atomic.Int64
	localMisses  atomic.Int64
	remoteHits   atomic.Int64
	remoteMisses atomic.Int64

	getCount    atomic.Int64
	setCount    atomic.Int64
	deleteCount atomic.Int64
	errorCount  atomic.Int64

	bytesWritten   atomic.Int64
	cbStateChanges atomic.Int64

	latencyMu     sync.RWMutex
	latencyBuffer []time.Duration
	latencyIndex  int
	latencyCount  int
}

func NewTracker() *Tracker {
	return &Tracker{
		latencyBuffer: make([]time.Duration, defaultLatencyBufferSize),
	}
}

func (t *Tracker) RecordHit(layer string, _ string, latency time.Duration) {
	switch layer {
	case LayerLocal:
		t.localHits.Add(1)
	case LayerRemote:
		t.remoteHits.Add(1)
	}
	t.getCount.Add(1)
	t.recordLatency(latency)
}

func (t *Tracker) RecordMiss(layer string, _ string, latency time.Duration) {
	switch layer {
	case LayerLocal:
		t.localMisses.Add(1)
	case LayerRemote:
		t.remoteMisses.Add(1)
	}
	t.getCount.Add(1)
	t.recordLatency(latency)
}

func (t *Tracker) RecordSet(_ string, _ string, size int, latency time.Duration) {
	t.setCount.Add(1)
	t.bytesWritten.Add(int64(size))
	t.recordLatency(latency)
}

func (t *Tracker) RecordDelete(_ string, _ string, latency time.Duration) {
	t.deleteCount.Add(1)
	t.recordLatency(latency)
}

func (t *Tracker) RecordError(_ string, _ string, _ error) {
	t.errorCount.Add(1)
}

func (t *Tracker) RecordCircuitBreakerStateChange(_, _ string) {
	t.cbStateChanges.Add(1)
}

// recordLatency is O(1) and allocation free.
func (t *Tracker) recordLatency(latency time.Duration) {
	t.latencyMu.Lock()
	t.latencyBuffer[t.latencyIndex] = latency
	t.latencyIndex = (t.latencyIndex + 1) % len(t.latencyBuffer)
	if t.latencyCount < len(t.latencyBuffer) {
		t.latencyCount++
	}
	t.latencyMu.Unlock()
}

// Snapshot returns the current counters and latency percentiles.
func (t *Tracker) Snapshot() types.MetricsSnapshot {
	t.latencyMu.RLock()
	latencies := make([]time.Duration, t.latencyCount)
	if t.latencyCount < len(t.latencyBuffer) {
		copy(latencies, t.latencyBuffer[:t.latencyCount])
	} else {
		n := copy(latencies, t.latencyBuffer[t.latencyIndex:])
		copy(latencies[n:], t.latencyBuffer[:t.latencyIndex])
	}
	t.latencyMu.RUnlock()

	s := types.MetricsSnapshot{
		Timestamp:           time.Now(),
		LocalHits:           t.localHits.Load(),
		LocalMisses:         t.localMisses.Load(),
		RemoteHits:          t.remoteHits.Load(),
		RemoteMisses:        t.remoteMisses.Load(),
		GetCount:            t.getCount.Load(),
		SetCount:            t.setCount.Load(),
		DeleteCount:         t.deleteCount.Load(),
		ErrorCount:          t.errorCount.Load(),
		BytesWritten:        t.bytesWritten.Load(),
		CircuitStateChanges: t.cbStateChanges.Load(),
	}

	if len(latencies) > 0 {
		slices.Sort(latencies)
		s.AvgLatencyMs = millis(avgDuration(latencies))
		s.P50LatencyMs = millis(percentile(latencies, 50))
		s.P95LatencyMs = millis(percentile(latencies, 95))
		s.P99LatencyMs = millis(percentile(latencies, 99))
	}
	return s
}

// Reset clears all metrics.
func (t *Tracker) Reset() {
	t.localHits.Store(0)
	t.localMisses.Store(0)
	t.remoteHits.Store(0)
	t.remoteMisses.Store(0)
	t.getCount.Store(0)
	t.setCount.Store(0)
	t.deleteCount.Store(0)
	t.errorCount.Store(0)
	t.bytesWritten.Store(0)
	t.cbStateChanges.Store(0)

	t.latencyMu.Lock()
	t.latencyIndex = 0
	t.latencyCount = 0
	t.latencyMu.Unlock()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func avgDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[(len(sorted)-1)*p/100]
}

var _ types.MetricsRecorder = (*Tracker)(nil)
