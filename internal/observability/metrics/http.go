package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	retrievalRequestsTotal      *prometheus.CounterVec
	retrievalDuration           *prometheus.HistogramVec
	retrievalResultSize         *prometheus.HistogramVec
	retrievalStrategyCandidates *prometheus.HistogramVec
	retrievalDegradedTotal      *prometheus.CounterVec
	retrievalNoResultsTotal     *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "normateca",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "normateca",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "normateca",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "normateca",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total successful retrieval requests.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "normateca",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	retrievalResultSize := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "normateca",
			Subsystem: "retrieval",
			Name:      "result_size",
			Help:      "Distribution of ranked candidates per retrieval request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	retrievalStrategyCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "normateca",
			Subsystem: "retrieval",
			Name:      "strategy_candidates",
			Help:      "Distribution of pre-fusion candidates per strategy.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "strategy"},
	)
	retrievalDegradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "normateca",
			Subsystem: "retrieval",
			Name:      "degraded_total",
			Help:      "Total retrieval requests served in degraded mode.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalNoResultsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "normateca",
			Subsystem: "retrieval",
			Name:      "no_results_total",
			Help:      "Total retrieval requests yielding zero candidates.",
		},
		[]string{"service", "endpoint"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		retrievalRequestsTotal,
		retrievalDuration,
		retrievalResultSize,
		retrievalStrategyCandidates,
		retrievalDegradedTotal,
		retrievalNoResultsTotal,
	)

	return &HTTPServerMetrics{
		registry:                    registry,
		requestTotal:                requestTotal,
		requestDuration:             requestDuration,
		requestInFlight:             requestInFlight,
		retrievalRequestsTotal:      retrievalRequestsTotal,
		retrievalDuration:           retrievalDuration,
		retrievalResultSize:         retrievalResultSize,
		retrievalStrategyCandidates: retrievalStrategyCandidates,
		retrievalDegradedTotal:      retrievalDegradedTotal,
		retrievalNoResultsTotal:     retrievalNoResultsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/tasks/"):
		return "/v1/tasks/{task_id}"
	case strings.HasPrefix(path, "/v1/sources/"):
		return "/v1/sources/{source}/fragments"
	default:
		return path
	}
}

// RecordRetrieval observes one finished retrieval pass.
func (m *HTTPServerMetrics) RecordRetrieval(service, endpoint string, candidates int, degraded bool, duration time.Duration) {
	m.retrievalRequestsTotal.WithLabelValues(service, endpoint).Inc()
	m.retrievalResultSize.WithLabelValues(service, endpoint).Observe(float64(candidates))
	m.retrievalDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if degraded {
		m.retrievalDegradedTotal.WithLabelValues(service, endpoint).Inc()
	}
	if candidates == 0 {
		m.retrievalNoResultsTotal.WithLabelValues(service, endpoint).Inc()
	}
}

func (m *HTTPServerMetrics) RecordStrategyCandidates(service, strategy string, count int) {
	if strategy == "" {
		strategy = "unknown"
	}
	m.retrievalStrategyCandidates.WithLabelValues(service, strategy).Observe(float64(count))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
