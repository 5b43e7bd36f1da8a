package metrics

import (
	"time"

	"github.com/LavishGent/tiercache/internal/types"
)

// NoOpTracker discards everything. It is the default recorder.
type NoOpTracker struct{}

func NewNoOpTracker() *NoOpTracker {
	return &NoOpTracker{}
}

func (t *NoOpTracker) RecordHit(string, string, time.Duration)        {}
func (t *NoOpTracker) RecordMiss(string, string, time.Duration)       {}
func (t *NoOpTracker) RecordSet(string, string, int, time.Duration)   {}
func (t *NoOpTracker) RecordDelete(string, string, time.Duration)     {}
func (t *NoOpTracker) RecordError(string, string, error)              {}
func (t *NoOpTracker) RecordCircuitBreakerStateChange(string, string) {}

// NoOpPublisher is used when metrics are disabled.
type NoOpPublisher struct{}

func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

func (p *NoOpPublisher) Gauge(string, float64, ...string)        {}
func (p *NoOpPublisher) Incr(string, ...string)                  {}
func (p *NoOpPublisher) Count(string, int64, ...string)          {}
func (p *NoOpPublisher) Histogram(string, float64, ...string)    {}
func (p *NoOpPublisher) Timing(string, time.Duration, ...string) {}
func (p *NoOpPublisher) Event(string, string, string, ...string) {}
func (p *NoOpPublisher) Publish(*Report)                         {}
func (p *NoOpPublisher) Close() error                            { return nil }

var (
	_ types.MetricsRecorder = (*NoOpTracker)(nil)
	_ Publisher             = (*NoOpPublisher)(nil)
)
