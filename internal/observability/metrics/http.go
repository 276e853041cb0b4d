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

// HTTPServerMetrics holds the API-side metrics on a private registry so
// tests and multiple instances never collide on the default one. It also
// implements the retrieval observer wired into the query pipeline.
type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	queriesTotal       *prometheus.CounterVec
	queryDuration      *prometheus.HistogramVec
	queryConfidence    *prometheus.HistogramVec
	rerankedCandidates *prometheus.HistogramVec
	noEvidenceTotal    *prometheus.CounterVec
	stageCandidates    *prometheus.HistogramVec
	stageFailuresTotal *prometheus.CounterVec
	uploadsTotal       *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docinsight",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docinsight",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docinsight",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docinsight",
			Subsystem: "query",
			Name:      "total",
			Help:      "Total processed queries by intent and response type.",
		},
		[]string{"service", "intent", "response_type"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docinsight",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "End-to-end query pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "intent"},
	)
	queryConfidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docinsight",
			Subsystem: "query",
			Name:      "confidence",
			Help:      "Distribution of response confidence scores.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
		[]string{"service", "intent"},
	)
	rerankedCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docinsight",
			Subsystem: "query",
			Name:      "reranked_candidates",
			Help:      "Distribution of fused candidates per query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10},
		},
		[]string{"service"},
	)
	noEvidenceTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docinsight",
			Subsystem: "query",
			Name:      "no_evidence_total",
			Help:      "Total queries answered without any retrieved evidence.",
		},
		[]string{"service"},
	)
	stageCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docinsight",
			Subsystem: "retrieval",
			Name:      "stage_candidates",
			Help:      "Distribution of candidates returned per retrieval stage.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service", "stage"},
	)
	stageFailuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docinsight",
			Subsystem: "retrieval",
			Name:      "stage_failures_total",
			Help:      "Total isolated retrieval stage failures.",
		},
		[]string{"service", "stage"},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docinsight",
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Total accepted document uploads.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		queriesTotal,
		queryDuration,
		queryConfidence,
		rerankedCandidates,
		noEvidenceTotal,
		stageCandidates,
		stageFailuresTotal,
		uploadsTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		service:            service,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		queriesTotal:       queriesTotal,
		queryDuration:      queryDuration,
		queryConfidence:    queryConfidence,
		rerankedCandidates: rerankedCandidates,
		noEvidenceTotal:    noEvidenceTotal,
		stageCandidates:    stageCandidates,
		stageFailuresTotal: stageFailuresTotal,
		uploadsTotal:       uploadsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
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
			m.service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

// RecordQuery captures one completed pipeline run.
func (m *HTTPServerMetrics) RecordQuery(intent, responseType string, reranked int, confidence float64, duration time.Duration) {
	if intent == "" {
		intent = "unknown"
	}
	if responseType == "" {
		responseType = "unknown"
	}
	m.queriesTotal.WithLabelValues(m.service, intent, responseType).Inc()
	m.queryDuration.WithLabelValues(m.service, intent).Observe(duration.Seconds())
	m.queryConfidence.WithLabelValues(m.service, intent).Observe(confidence)
	m.rerankedCandidates.WithLabelValues(m.service).Observe(float64(reranked))
	if reranked == 0 {
		m.noEvidenceTotal.WithLabelValues(m.service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordUpload() {
	m.uploadsTotal.WithLabelValues(m.service).Inc()
}

// StageCompleted and StageFailed implement the retrieval observer.
func (m *HTTPServerMetrics) StageCompleted(stage string, candidates int) {
	m.stageCandidates.WithLabelValues(m.service, stage).Observe(float64(candidates))
}

func (m *HTTPServerMetrics) StageFailed(stage string) {
	m.stageFailuresTotal.WithLabelValues(m.service, stage).Inc()
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
