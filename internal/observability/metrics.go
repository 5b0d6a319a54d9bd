package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// explorer service.
type Metrics struct {
	// Dataset load metrics, set once at startup.
	RecordsLoaded       prometheus.Gauge
	RowsSkippedOnLoad   prometheus.Gauge
	LoadDurationSeconds prometheus.Gauge

	// View derivation metrics.
	Derivations        prometheus.Counter
	DerivationDuration prometheus.Histogram
	CoordinateSkips    prometheus.Counter

	// Session lifecycle metrics.
	SessionsCreated prometheus.Counter
	SessionsExpired prometheus.Counter
	ActiveSessions  prometheus.Gauge

	// HTTP metrics.
	HTTPRequests *prometheus.CounterVec   // labels: route, code
	HTTPDuration *prometheus.HistogramVec // labels: route

	// Export metrics.
	ExportRenders *prometheus.CounterVec // labels: format={png,pdf}
}

// NewMetrics creates and registers all explorer metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cities_eda",
			Name:      "records_loaded",
			Help:      "Records held by the in-memory store after the startup load.",
		}),
		RowsSkippedOnLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cities_eda",
			Name:      "rows_skipped_on_load",
			Help:      "Data rows dropped during the startup load.",
		}),
		LoadDurationSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cities_eda",
			Name:      "load_duration_seconds",
			Help:      "Wall time of the startup dataset load.",
		}),
		Derivations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cities_eda",
			Name:      "derivations_total",
			Help:      "Total complete view derivations.",
		}),
		DerivationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cities_eda",
			Name:      "derivation_duration_seconds",
			Help:      "Duration of one full filter and render pass.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		CoordinateSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cities_eda",
			Name:      "coordinate_skips_total",
			Help:      "Records skipped from the map because GeoLocation did not parse.",
		}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cities_eda",
			Name:      "sessions_created_total",
			Help:      "Total explorer sessions created.",
		}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cities_eda",
			Name:      "sessions_expired_total",
			Help:      "Total sessions evicted after idle expiry.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cities_eda",
			Name:      "active_sessions",
			Help:      "Sessions currently held by the registry.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cities_eda",
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cities_eda",
			Name:      "http_request_duration_seconds",
			Help:      "API request duration by route.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"route"}),
		ExportRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cities_eda",
			Name:      "export_renders_total",
			Help:      "Chart and report exports by format.",
		}, []string{"format"}),
	}

	prometheus.MustRegister(
		m.RecordsLoaded,
		m.RowsSkippedOnLoad,
		m.LoadDurationSeconds,
		m.Derivations,
		m.DerivationDuration,
		m.CoordinateSkips,
		m.SessionsCreated,
		m.SessionsExpired,
		m.ActiveSessions,
		m.HTTPRequests,
		m.HTTPDuration,
		m.ExportRenders,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsLoaded:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cities_eda", Name: "records_loaded"}),
		RowsSkippedOnLoad:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cities_eda", Name: "rows_skipped_on_load"}),
		LoadDurationSeconds: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cities_eda", Name: "load_duration_seconds"}),
		Derivations:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cities_eda", Name: "derivations_total"}),
		DerivationDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "cities_eda", Name: "derivation_duration_seconds"}),
		CoordinateSkips:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cities_eda", Name: "coordinate_skips_total"}),
		SessionsCreated:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cities_eda", Name: "sessions_created_total"}),
		SessionsExpired:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cities_eda", Name: "sessions_expired_total"}),
		ActiveSessions:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cities_eda", Name: "active_sessions"}),
		HTTPRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "cities_eda", Name: "http_requests_total"}, []string{"route", "code"}),
		HTTPDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "cities_eda", Name: "http_request_duration_seconds"}, []string{"route"}),
		ExportRenders:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "cities_eda", Name: "export_renders_total"}, []string{"format"}),
	}
}
