package metrics

import (
	"log/slog"
	"time"

	"github.com/LavishGent/tiercache/internal/config"
	"github.com/LavishGent/tiercache/internal/types"
)

// Publisher ships metrics to a backend.
type Publisher interface {
	Gauge(name string, value float64, tags ...string)
	Incr(name string, tags ...string)
	Count(name string, value int64, tags ...string)
	Histogram(name string, value float64, tags ...string)
	Timing(name string, duration time.Duration, tags ...string)
	Event(title, text, alertType string, tags ...string)
	Publish(report *Report)
	Close() error
}

// Report is one publishing interval's worth of data.
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	// Caches holds cumulative L1 counters; Deltas holds the change since the
	// previous report.
	Caches          map[string]types.CacheStats `json:"caches"`
	Deltas          map[string]types.CacheStats `json:"deltas"`
	CircuitState    string                      `json:"circuitState"`
	Snapshot        types.MetricsSnapshot       `json:"snapshot"`
	RemoteEnabled   bool                        `json:"remoteEnabled"`
	RemoteConnected bool                        `json:"remoteConnected"`
}

// PublisherFactory builds the DataDog publisher. It lives in a subpackage
// so this package does not pull in the statsd client.
type PublisherFactory func(cfg *config.DataDogConfig, logger *slog.Logger) (Publisher, error)

// NewPublisher picks a publisher for cfg: DataDog when enabled, logging
// otherwise, no-op when metrics are off.
func NewPublisher(cfg config.MetricsConfig, datadog PublisherFactory, logger *slog.Logger) (Publisher, error) {
	switch {
	case !cfg.Enabled:
		return NewNoOpPublisher(), nil
	case cfg.DataDog.Enabled && datadog != nil:
		return datadog(&cfg.DataDog, logger)
	default:
		return NewLoggingPublisher(logger), nil
	}
}
