// Package datadog publishes tiercache metrics to a DataDog agent over StatsD.
package datadog

import (
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strconv"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/LavishGent/tiercache/internal/config"
	"github.com/LavishGent/tiercache/internal/metrics"
)

// Publisher implements metrics.Publisher using the DataDog StatsD client.
type Publisher struct {
	client   statsd.ClientInterface
	logger   *slog.Logger
	baseTags []string
}

// NewPublisher creates a DataDog publisher from cfg. A disabled config
// yields a no-op publisher.
func NewPublisher(cfg *config.DataDogConfig, logger *slog.Logger) (metrics.Publisher, error) {
	if !cfg.Enabled {
		return metrics.NewNoOpPublisher(), nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	addr := net.JoinHostPort(cfg.AgentHost, strconv.Itoa(cfg.Port))

	opts := []statsd.Option{statsd.WithTags(cfg.Tags)}
	if cfg.Prefix != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Prefix+"."))
	}
	client, err := statsd.New(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create statsd client: %w", err)
	}

	logger.Info("DataDog publisher initialized",
		"address", addr,
		"prefix", cfg.Prefix,
		"tags", cfg.Tags,
	)

	return newPublisher(client, logger), nil
}

// newPublisher wraps an existing client. Base tags are applied by the
// client itself.
func newPublisher(client statsd.ClientInterface, logger *slog.Logger, baseTags ...string) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client:   client,
		baseTags: baseTags,
		logger:   logger.With("component", "datadog"),
	}
}

func (p *Publisher) Gauge(name string, value float64, tags ...string) {
	if err := p.client.Gauge(name, value, p.mergeTags(tags), 1); err != nil {
		p.logger.Debug("Failed to send gauge metric", "name", name, "error", err)
	}
}

func (p *Publisher) Incr(name string, tags ...string) {
	if err := p.client.Incr(name, p.mergeTags(tags), 1); err != nil {
		p.logger.Debug("Failed to send incr metric", "name", name, "error", err)
	}
}

func (p *Publisher) Count(name string, value int64, tags ...string) {
	if err := p.client.Count(name, value, p.mergeTags(tags), 1); err != nil {
		p.logger.Debug("Failed to send count metric", "name", name, "error", err)
	}
}

func (p *Publisher) Histogram(name string, value float64, tags ...string) {
	if err := p.client.Histogram(name, value, p.mergeTags(tags), 1); err != nil {
		p.logger.Debug("Failed to send histogram metric", "name", name, "error", err)
	}
}

func (p *Publisher) Timing(name string, duration time.Duration, tags ...string) {
	if err := p.client.Timing(name, duration, p.mergeTags(tags), 1); err != nil {
		p.logger.Debug("Failed to send timing metric", "name", name, "error", err)
	}
}

func (p *Publisher) Event(title, text, alertType string, tags ...string) {
	event := &statsd.Event{
		Title:     title,
		Text:      text,
		AlertType: statsd.EventAlertType(alertType),
		Tags:      p.mergeTags(tags),
	}
	if err := p.client.Event(event); err != nil {
		p.logger.Debug("Failed to send event", "title", title, "error", err)
	}
}

// Publish sends per-cache gauges and interval counts, then provider totals.
func (p *Publisher) Publish(r *metrics.Report) {
	if r == nil {
		return
	}

	for name, s := range r.Caches {
		tag := metrics.CacheTag(name)
		d := r.Deltas[name]
		p.Gauge("local.size", float64(s.Size), tag)
		p.Gauge("local.hit_rate", clamp(s.HitRate(), 0, 1), tag)
		p.Count("local.hits", int64(d.HitCount), tag)
		p.Count("local.misses", int64(d.MissCount), tag)
		p.Count("local.evictions", int64(d.EvictionCount), tag)
	}

	s := r.Snapshot
	p.Gauge("provider.gets", float64(s.GetCount))
	p.Gauge("provider.sets", float64(s.SetCount))
	p.Gauge("provider.deletes", float64(s.DeleteCount))
	p.Gauge("provider.errors", float64(s.ErrorCount))
	p.Gauge("provider.bytes_written", float64(s.BytesWritten))
	p.Gauge("performance.hit_ratio", clamp(s.TotalHitRatio(), 0, 1))
	p.Gauge("performance.remote_hit_ratio", clamp(s.RemoteHitRatio(), 0, 1))
	p.Gauge("performance.average_latency_ms", max(0, s.AvgLatencyMs))
	p.Gauge("performance.p99_latency_ms", max(0, s.P99LatencyMs))

	if !r.RemoteEnabled {
		return
	}
	connected := 0.0
	if r.RemoteConnected {
		connected = 1.0
	}
	p.Gauge("connection.status", connected, metrics.LayerTag(metrics.LayerRemote))
	if r.CircuitState != "" {
		p.Gauge("circuit.changes", float64(s.CircuitStateChanges), metrics.CircuitStateTag(r.CircuitState))
	}
}

func (p *Publisher) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func (p *Publisher) mergeTags(tags []string) []string {
	if len(tags) == 0 {
		return p.baseTags
	}
	if len(p.baseTags) == 0 {
		return tags
	}
	return append(slices.Clip(p.baseTags), tags...)
}

func clamp(val, minVal, maxVal float64) float64 {
	return min(max(val, minVal), maxVal)
}

var _ metrics.Publisher = (*Publisher)(nil)
