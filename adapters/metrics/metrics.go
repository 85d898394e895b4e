// Package metrics provides Prometheus metrics collection for modeldiff.
package metrics

import (
	"net/http"
	"time"

	"github.com/artpar/modeldiff/core/formatter"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Diff outcomes.
const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeError     = "error"
)

// Collector holds all Prometheus metrics for modeldiff.
type Collector struct {
	// Diff metrics
	DiffsTotal   *prometheus.CounterVec
	ChangesTotal *prometheus.CounterVec
	DiffDuration *prometheus.HistogramVec

	// Watch metrics
	Reloads      prometheus.Counter
	ReloadErrors prometheus.Counter
	LastReload   prometheus.Gauge
}

// New creates a new metrics collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		DiffsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modeldiff",
				Name:      "diffs_total",
				Help:      "Total number of document comparisons",
			},
			[]string{"schema", "outcome"},
		),
		ChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modeldiff",
				Name:      "changes_total",
				Help:      "Total number of flattened changes found",
			},
			[]string{"schema", "op"},
		),
		DiffDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "modeldiff",
				Name:      "diff_duration_seconds",
				Help:      "Time to load and compare two documents",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"schema"},
		),
		Reloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "modeldiff",
				Name:      "reloads_total",
				Help:      "Total number of successful watch reloads",
			},
		),
		ReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "modeldiff",
				Name:      "reload_errors_total",
				Help:      "Total number of failed watch reloads",
			},
		),
		LastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "modeldiff",
				Name:      "last_reload_timestamp",
				Help:      "Unix timestamp of last successful watch reload",
			},
		),
	}
}

// ObserveDiff records the outcome of one comparison.
func (c *Collector) ObserveDiff(res formatter.Result, err error, elapsed time.Duration) {
	c.DiffDuration.WithLabelValues(res.Schema).Observe(elapsed.Seconds())

	switch {
	case err != nil:
		c.DiffsTotal.WithLabelValues(res.Schema, OutcomeError).Inc()
		return
	case !res.Changed():
		c.DiffsTotal.WithLabelValues(res.Schema, OutcomeUnchanged).Inc()
		return
	}

	c.DiffsTotal.WithLabelValues(res.Schema, OutcomeChanged).Inc()
	for _, change := range res.Changes() {
		c.ChangesTotal.WithLabelValues(res.Schema, string(change.Op)).Inc()
	}
}

// ObserveReload records a watch reload.
func (c *Collector) ObserveReload(err error) {
	if err != nil {
		c.ReloadErrors.Inc()
		return
	}
	c.Reloads.Inc()
	c.LastReload.SetToCurrentTime()
}

// Router serves /metrics from g and a /health probe.
func Router(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}
