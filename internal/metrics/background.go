package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LavishGent/tiercache/internal/types"
)

// StatsSource exposes L1 counters by cache name.
type StatsSource interface {
	Stats() map[string]types.CacheStats
}

// RemoteState reports the L2 view for a report.
type RemoteState func() (enabled, connected bool, circuitState string)

// Collector builds Reports, remembering the previous counters so each
// report carries per-interval deltas.
type Collector struct {
	source  StatsSource
	tracker *Tracker
	remote  RemoteState

	mu   sync.Mutex
	last map[string]types.CacheStats
}

// NewCollector creates a collector. tracker and remote may be nil.
func NewCollector(source StatsSource, tracker *Tracker, remote RemoteState) *Collector {
	return &Collector{
		source:  source,
		tracker: tracker,
		remote:  remote,
		last:    make(map[string]types.CacheStats),
	}
}

// Collect returns the current report. A cache cleared since the previous
// report yields zero deltas rather than wrapping around.
func (c *Collector) Collect() *Report {
	stats := c.source.Stats()

	c.mu.Lock()
	deltas := make(map[string]types.CacheStats, len(stats))
	for name, s := range stats {
		deltas[name] = s.Minus(c.last[name])
	}
	c.last = stats
	c.mu.Unlock()

	r := &Report{
		Timestamp: time.Now(),
		Caches:    stats,
		Deltas:    deltas,
	}
	if c.tracker != nil {
		r.Snapshot = c.tracker.Snapshot()
	}
	if c.remote != nil {
		r.RemoteEnabled, r.RemoteConnected, r.CircuitState = c.remote()
	}
	return r
}

// BackgroundPublisher publishes a report every interval until its context
// is cancelled, then publishes once more.
type BackgroundPublisher struct {
	publisher Publisher
	logger    *slog.Logger
	collect   func() *Report
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	interval  time.Duration
}

func NewBackgroundPublisher(
	publisher Publisher,
	interval time.Duration,
	collect func() *Report,
	logger *slog.Logger,
) *BackgroundPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackgroundPublisher{
		publisher: publisher,
		interval:  interval,
		collect:   collect,
		logger:    logger.With("component", "metrics-background"),
	}
}

// Start begins the publishing loop; ctx bounds its lifetime.
func (b *BackgroundPublisher) Start(ctx context.Context) {
	ctx, b.cancel = context.WithCancel(ctx)
	b.wg.Add(1)
	go b.run(ctx)
	b.logger.Info("Background metrics publisher started", "interval", b.interval)
}

// Run publishes until ctx is done. It blocks, for use under an errgroup.
func (b *BackgroundPublisher) Run(ctx context.Context) error {
	b.Start(ctx)
	b.wg.Wait()
	return nil
}

// Stop cancels the loop and waits for the final publish.
func (b *BackgroundPublisher) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	b.logger.Info("Background metrics publisher stopped")
}

func (b *BackgroundPublisher) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.publish()
			return
		case <-ticker.C:
			b.publish()
		}
	}
}

func (b *BackgroundPublisher) publish() {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in metrics publisher", "panic", r)
		}
	}()

	if b.collect == nil {
		return
	}

	timer := NewTimer(b.publisher, "publish.duration")
	if report := b.collect(); report != nil {
		b.publisher.Publish(report)
	}
	timer.Stop()
}

// PublishNow triggers an immediate publish.
func (b *BackgroundPublisher) PublishNow() {
	b.publish()
}
