// Package metrics exposes Prometheus instrumentation for Tropimon Stats.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry returns a registry pre-loaded with the standard Go and
// process collectors. Passed explicitly to consumers; no package-level
// default registry is used.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Ingest holds instruments for the log ingestion pipeline.
type Ingest struct {
	RecordsIngested prometheus.Counter
	RecordsSkipped  prometheus.Counter
	SourcesSkipped  prometheus.Counter
	Rebuilds        prometheus.Counter
	RebuildSeconds  prometheus.Histogram
}

// NewIngest registers the ingestion instruments on reg.
func NewIngest(reg prometheus.Registerer) *Ingest {
	factory := promauto.With(reg)
	return &Ingest{
		RecordsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "tropimon_ingest_records_total",
			Help: "Capture records accepted during rebuilds.",
		}),
		RecordsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "tropimon_ingest_records_skipped_total",
			Help: "Records dropped for missing a player or species identifier.",
		}),
		SourcesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "tropimon_ingest_sources_skipped_total",
			Help: "Log sources skipped because they were missing or unparseable.",
		}),
		Rebuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "tropimon_ingest_rebuilds_total",
			Help: "Completed reset-then-rebuild runs.",
		}),
		RebuildSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tropimon_ingest_rebuild_duration_seconds",
			Help:    "Wall time of a full rebuild run.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

// HTTP holds request instruments for the API server.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTP registers the HTTP instruments on reg.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	factory := promauto.With(reg)
	return &HTTP{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tropimon_http_requests_total",
			Help: "HTTP requests served, by status code and method.",
		}, []string{"code", "method"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tropimon_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"code", "method"}),
	}
}

// Middleware instruments next with the request counter and latency histogram.
func (h *HTTP) Middleware(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(h.Duration,
		promhttp.InstrumentHandlerCounter(h.Requests, next))
}
