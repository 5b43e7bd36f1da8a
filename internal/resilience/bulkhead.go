package resilience

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/LavishGent/tiercache/internal/config"
)

// Bulkhead caps the number of remote calls in flight. Callers beyond
// MaxConcurrent wait up to AcquireTimeout in a queue of at most MaxQueue.
type Bulkhead struct {
	semaphore      chan struct{}
	acquireTimeout time.Duration
	maxConcurrent  int
	maxQueue       int

	active   atomic.Int32
	queued   atomic.Int32
	rejected atomic.Int64
	executed atomic.Int64
}

// NewBulkhead creates a bulkhead from cfg, defaulting zero values.
func NewBulkhead(cfg config.BulkheadConfig) *Bulkhead {
	b := &Bulkhead{
		maxConcurrent:  cfg.MaxConcurrent,
		maxQueue:       cfg.MaxQueue,
		acquireTimeout: cfg.AcquireTimeout,
	}
	if b.maxConcurrent <= 0 {
		b.maxConcurrent = 100
	}
	if b.maxQueue < 0 {
		b.maxQueue = 0
	}
	if b.acquireTimeout <= 0 {
		b.acquireTimeout = 100 * time.Millisecond
	}
	b.semaphore = make(chan struct{}, b.maxConcurrent)
	return b
}

// Execute runs fn once a slot is free.
func (b *Bulkhead) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	defer b.release()

	b.active.Add(1)
	defer b.active.Add(-1)

	err := fn(ctx)
	b.executed.Add(1)
	return err
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.semaphore <- struct{}{}:
		return nil
	default:
	}

	if int(b.queued.Add(1)) > b.maxQueue {
		b.queued.Add(-1)
		b.rejected.Add(1)
		return ErrBulkheadFull
	}
	defer b.queued.Add(-1)

	timer := time.NewTimer(b.acquireTimeout)
	defer timer.Stop()

	select {
	case b.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		b.rejected.Add(1)
		return ctx.Err()
	case <-timer.C:
		b.rejected.Add(1)
		return ErrBulkheadTimeout
	}
}

func (b *Bulkhead) release() {
	<-b.semaphore
}

// Stats returns bulkhead counters.
func (b *Bulkhead) Stats() BulkheadStats {
	return BulkheadStats{
		MaxConcurrent: b.maxConcurrent,
		MaxQueue:      b.maxQueue,
		Active:        int(b.active.Load()),
		Queued:        int(b.queued.Load()),
		Available:     b.maxConcurrent - len(b.semaphore),
		TotalExecuted: b.executed.Load(),
		TotalRejected: b.rejected.Load(),
	}
}

// BulkheadStats contains bulkhead statistics.
type BulkheadStats struct {
	MaxConcurrent int   `json:"maxConcurrent"`
	MaxQueue      int   `json:"maxQueue"`
	Active        int   `json:"active"`
	Queued        int   `json:"queued"`
	Available     int   `json:"available"`
	TotalExecuted int64 `json:"totalExecuted"`
	TotalRejected int64 `json:"totalRejected"`
}
