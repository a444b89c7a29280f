package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wallart"

// Upstream operations and outcomes.
const (
	OperationListModels = "list_models"
	OperationGenerate   = "generate_content"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Compose result sources.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// Recorder owns a private Prometheus registry. A nil *Recorder is a valid no-op.
type Recorder struct {
	registry *prometheus.Registry
	handler  http.Handler

	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	upstream       *prometheus.CounterVec
	composeResults *prometheus.CounterVec
}

func New() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds.",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"method", "route", "status"},
		),
		upstream: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Calls made to the Gemini API by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		composeResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compose_results_total",
				Help:      "Composed images returned, by whether the model or the interior fallback produced them.",
			},
			[]string{"source"},
		),
	}
	registry.MustRegister(r.httpRequests, r.httpLatency, r.upstream, r.composeResults)
	r.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return r.handler
}

// Registry exposes the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	code := strconv.Itoa(status)
	r.httpRequests.WithLabelValues(method, route, code).Inc()
	r.httpLatency.WithLabelValues(method, route, code).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveUpstream(operation string, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	r.upstream.WithLabelValues(operation, outcome).Inc()
}

func (r *Recorder) ObserveComposeResult(source string) {
	if r == nil {
		return
	}
	r.composeResults.WithLabelValues(source).Inc()
}
