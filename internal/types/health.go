package types

import (
	"encoding/json"
	"time"
)

// HealthStatus represents the overall health state.
type HealthStatus int

const (
	// HealthStatusHealthy indicates both tiers are serving.
	HealthStatusHealthy HealthStatus = iota + 1
	// HealthStatusDegraded indicates L2 is down and every L1 miss falls through
	// to the system of record.
	HealthStatusDegraded
	// HealthStatusUnhealthy indicates the local tier itself is unusable.
	HealthStatusUnhealthy
)

// String returns the string representation of health status.
func (s HealthStatus) String() string {
	switch s {
	case HealthStatusHealthy:
		return "healthy"
	case HealthStatusDegraded:
		return "degraded"
	case HealthStatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

func (s HealthStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// HealthMetrics contains overall cache health information.
type HealthMetrics struct {
	Timestamp time.Time                     `json:"timestamp"`
	Remote    RemoteHealthMetrics           `json:"remote"`
	Local     map[string]LocalHealthMetrics `json:"local"`
	Status    HealthStatus                  `json:"status"`
}

// LocalHealthMetrics contains the state of one L1 instance.
type LocalHealthMetrics struct {
	Stats    CacheStats    `json:"stats"`
	HitRate  float64       `json:"hitRate"`
	MissRate float64       `json:"missRate"`
	TTL      time.Duration `json:"ttl"`
	// CapacityBytes is set for byte-bounded engines only.
	CapacityBytes int  `json:"capacityBytes,omitempty"`
	Available     bool `json:"available"`
}

// capacityReporter is implemented by L1 engines bounded by bytes rather
// than entries.
type capacityReporter interface {
	Capacity() int
}

// RemoteHealthMetrics contains L2 connection details.
//
//nolint:govet // Metrics struct - logical grouping prioritized for readability
type RemoteHealthMetrics struct {
	LastErrorTime       time.Time    `json:"lastErrorTime,omitempty"`
	LastError           string       `json:"lastError,omitempty"`
	ErrorCount          int64        `json:"errorCount"`
	CircuitBreakerState string       `json:"circuitBreakerState"`
	Status              HealthStatus `json:"status"`
	Enabled             bool         `json:"enabled"`
	Connected           bool         `json:"connected"`
}

// NewLocalHealthMetrics builds the health view of an L1 instance.
func NewLocalHealthMetrics(c LocalCache, available bool) LocalHealthMetrics {
	stats := c.Stats()
	h := LocalHealthMetrics{
		Stats:     stats,
		HitRate:   stats.HitRate(),
		MissRate:  stats.MissRate(),
		TTL:       c.TTL(),
		Available: available,
	}
	if cr, ok := c.(capacityReporter); ok {
		h.CapacityBytes = cr.Capacity()
	}
	return h
}

// MetricsSnapshot contains a point-in-time view of provider metrics.
//
//nolint:govet // Metrics struct with many counters - grouping by category improves readability
type MetricsSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	// Hit/miss counters
	LocalHits    int64 `json:"localHits"`
	LocalMisses  int64 `json:"localMisses"`
	RemoteHits   int64 `json:"remoteHits"`
	RemoteMisses int64 `json:"remoteMisses"`
	// Operation counters
	GetCount    int64 `json:"getCount"`
	SetCount    int64 `json:"setCount"`
	DeleteCount int64 `json:"deleteCount"`
	ErrorCount  int64 `json:"errorCount"`

	BytesWritten        int64 `json:"bytesWritten"`
	CircuitStateChanges int64 `json:"circuitStateChanges"`

	// Latency metrics (milliseconds)
	AvgLatencyMs float64 `json:"avgLatencyMs"`
	P50LatencyMs float64 `json:"p50LatencyMs"`
	P95LatencyMs float64 `json:"p95LatencyMs"`
	P99LatencyMs float64 `json:"p99LatencyMs"`
}

// RemoteHitRatio calculates the L2 hit ratio over lookups that reached L2.
func (s *MetricsSnapshot) RemoteHitRatio() float64 {
	total := s.RemoteHits + s.RemoteMisses
	if total == 0 {
		return 0
	}
	return float64(s.RemoteHits) / float64(total)
}

// TotalHitRatio is the share of Get calls answered by either tier.
func (s *MetricsSnapshot) TotalHitRatio() float64 {
	if s.GetCount == 0 {
		return 0
	}
	return float64(s.LocalHits+s.RemoteHits) / float64(s.GetCount)
}
