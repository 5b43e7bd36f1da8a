// Package admin serves the operator HTTP surface: health, L1 statistics,
// clearing a single L1, and the provider metrics snapshot.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/LavishGent/tiercache/internal/types"
)

// Registry is the subset of cache.Registry the handlers use.
type Registry interface {
	Names() []string
	Stats() map[string]types.CacheStats
	Clear(name string) error
	Health(ctx context.Context) types.HealthMetrics
}

// Snapshotter exposes provider-level metrics.
type Snapshotter interface {
	Snapshot() types.MetricsSnapshot
}

// CacheStatsView is the JSON shape of one L1's counters.
type CacheStatsView struct {
	Name          string  `json:"name"`
	HitCount      uint64  `json:"hitCount"`
	MissCount     uint64  `json:"missCount"`
	EvictionCount uint64  `json:"evictionCount"`
	Size          uint64  `json:"size"`
	HitRate       float64 `json:"hitRate"`
	MissRate      float64 `json:"missRate"`
}

func newCacheStatsView(name string, s types.CacheStats) CacheStatsView {
	return CacheStatsView{
		Name:          name,
		HitCount:      s.HitCount,
		MissCount:     s.MissCount,
		EvictionCount: s.EvictionCount,
		Size:          s.Size,
		HitRate:       s.HitRate(),
		MissRate:      s.MissRate(),
	}
}

type Handlers struct {
	registry Registry
	metrics  Snapshotter
	logger   *slog.Logger
}

// New creates the handlers. metrics may be nil, in which case /metrics
// returns 404.
func New(registry Registry, metrics Snapshotter, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		registry: registry,
		metrics:  metrics,
		logger:   logger.With("component", "admin"),
	}
}

// Router returns the mux with every route registered.
func (h *Handlers) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/caches", h.ListCaches).Methods(http.MethodGet)
	router.HandleFunc("/caches/{name}", h.GetCache).Methods(http.MethodGet)
	router.HandleFunc("/caches/{name}/clear", h.ClearCache).Methods(http.MethodPost)
	router.HandleFunc("/metrics", h.Metrics).Methods(http.MethodGet)
	return router
}

// Health reports 503 only when the registry is unhealthy; a degraded L2
// still answers 200.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := h.registry.Health(r.Context())

	status := http.StatusOK
	if health.Status == types.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, health)
}

func (h *Handlers) ListCaches(w http.ResponseWriter, _ *http.Request) {
	stats := h.registry.Stats()
	names := h.registry.Names()

	out := make([]CacheStatsView, 0, len(names))
	for _, name := range names {
		out = append(out, newCacheStatsView(name, stats[name]))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetCache(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s, ok := h.registry.Stats()[name]
	if !ok {
		http.Error(w, "cache not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, newCacheStatsView(name, s))
}

// ClearCache empties one L1. L2 is never touched.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.registry.Clear(name); err != nil {
		if errors.Is(err, types.ErrUnknownCache) {
			http.Error(w, "cache not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, types.ErrClosed) {
			http.Error(w, "cache registry closed", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("Failed to clear cache", "cache", name, "error", err)
		http.Error(w, "failed to clear cache", http.StatusInternalServerError)
		return
	}
	h.logger.Info("Cache cleared via admin", "cache", name, "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Metrics(w http.ResponseWriter, _ *http.Request) {
	if h.metrics == nil {
		http.Error(w, "metrics disabled", http.StatusNotFound)
		return
	}
	snapshot := h.metrics.Snapshot()
	h.writeJSON(w, http.StatusOK, struct {
		types.MetricsSnapshot
		RemoteHitRatio float64 `json:"remoteHitRatio"`
		TotalHitRatio  float64 `json:"totalHitRatio"`
	}{
		MetricsSnapshot: snapshot,
		RemoteHitRatio:  snapshot.RemoteHitRatio(),
		TotalHitRatio:   snapshot.TotalHitRatio(),
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("Failed to encode response", "error", err)
	}
}
