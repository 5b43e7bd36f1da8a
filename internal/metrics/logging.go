package metrics

import (
	"log/slog"
	"slices"
	"time"
)

// LoggingPublisher writes metrics to slog. Individual metrics go out at
// debug; reports at info.
type LoggingPublisher struct {
	logger   *slog.Logger
	baseTags []string
}

func NewLoggingPublisher(logger *slog.Logger, baseTags ...string) *LoggingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingPublisher{
		logger:   logger.With("component", "metrics"),
		baseTags: baseTags,
	}
}

func (p *LoggingPublisher) Gauge(name string, value float64, tags ...string) {
	p.logger.Debug("gauge", "name", name, "value", value, "tags", p.mergeTags(tags))
}

func (p *LoggingPublisher) Incr(name string, tags ...string) {
	p.logger.Debug("incr", "name", name, "tags", p.mergeTags(tags))
}

func (p *LoggingPublisher) Count(name string, value int64, tags ...string) {
	p.logger.Debug("count", "name", name, "value", value, "tags", p.mergeTags(tags))
}

func (p *LoggingPublisher) Histogram(name string, value float64, tags ...string) {
	p.logger.Debug("histogram", "name", name, "value", value, "tags", p.mergeTags(tags))
}

func (p *LoggingPublisher) Timing(name string, duration time.Duration, tags ...string) {
	p.logger.Debug("timing", "name", name, "duration_ms", duration.Milliseconds(), "tags", p.mergeTags(tags))
}

func (p *LoggingPublisher) Event(title, text, alertType string, tags ...string) {
	p.logger.Info("event",
		"title", title,
		"text", text,
		"alert_type", alertType,
		"tags", p.mergeTags(tags),
	)
}

// Publish logs one line per L1 cache and one for the provider.
func (p *LoggingPublisher) Publish(r *Report) {
	if r == nil {
		return
	}

	names := make([]string, 0, len(r.Caches))
	for name := range r.Caches {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		s := r.Caches[name]
		d := r.Deltas[name]
		p.logger.Info("cache_stats",
			"cache", name,
			"size", s.Size,
			"hit_rate", s.HitRate(),
			"hits", d.HitCount,
			"misses", d.MissCount,
			"evictions", d.EvictionCount,
		)
	}

	p.logger.Info("provider_stats",
		"gets", r.Snapshot.GetCount,
		"sets", r.Snapshot.SetCount,
		"deletes", r.Snapshot.DeleteCount,
		"errors", r.Snapshot.ErrorCount,
		"hit_ratio", r.Snapshot.TotalHitRatio(),
		"p99_latency_ms", r.Snapshot.P99LatencyMs,
		"remote_connected", r.RemoteConnected,
		"circuit_state", r.CircuitState,
	)
}

func (p *LoggingPublisher) Close() error {
	return nil
}

func (p *LoggingPublisher) mergeTags(tags []string) []string {
	if len(tags) == 0 {
		return p.baseTags
	}
	if len(p.baseTags) == 0 {
		return tags
	}
	return append(slices.Clip(p.baseTags), tags...)
}

var _ Publisher = (*LoggingPublisher)(nil)
