package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultMetricsNamespace = "pickem"

// ScoringMetrics exports scoring run counters to Prometheus.
type ScoringMetrics struct {
	computations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	skippedPicks prometheus.Counter
	scoresWrite  prometheus.Counter
}

func NewScoringMetrics(registry prometheus.Registerer, namespace string) (*ScoringMetrics, error) {
	namespace = metricsNamespace(namespace)
	m := &ScoringMetrics{
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "week_computations_total",
			Help:      "League week score computations by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "week_computation_duration_seconds",
			Help:      "Time spent computing one league week.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		skippedPicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "skipped_picks_total",
			Help:      "Picks skipped because their game was not part of the scored week.",
		}),
		scoresWrite: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "scores_written_total",
			Help:      "Score rows upserted.",
		}),
	}

	for _, c := range []prometheus.Collector{m.computations, m.duration, m.skippedPicks, m.scoresWrite} {
		if err := registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "register scoring metrics")
		}
	}
	return m, nil
}

func (m *ScoringMetrics) ObserveWeekComputation(outcome string, elapsed time.Duration) {
	m.computations.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *ScoringMetrics) AddSkippedPicks(count int) {
	if count > 0 {
		m.skippedPicks.Add(float64(count))
	}
}

func (m *ScoringMetrics) AddScoresWritten(count int) {
	if count > 0 {
		m.scoresWrite.Add(float64(count))
	}
}

// HTTPMetrics counts served requests per route pattern.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewHTTPMetrics(registry prometheus.Registerer, namespace string) (*HTTPMetrics, error) {
	namespace = metricsNamespace(namespace)
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.latency} {
		if err := registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "register http metrics")
		}
	}
	return m, nil
}

func (m *HTTPMetrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// NewRegistry returns a registry preloaded with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return registry
}

func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

func metricsNamespace(namespace string) string {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return defaultMetricsNamespace
	}
	return strings.ReplaceAll(namespace, "-", "_")
}
