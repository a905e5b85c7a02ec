// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlPagesTotal            *prometheus.CounterVec
	questionsTotal             *prometheus.CounterVec
	completionRetriesTotal     prometheus.Counter
	segmentsSentTotal          prometheus.Counter
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		crawlPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusqa_crawl_pages_total",
				Help: "Pages processed by the crawler, labeled by outcome.",
			},
			[]string{"outcome"},
		)
		questionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusqa_questions_total",
				Help: "Questions answered, labeled by path and outcome.",
			},
			[]string{"path", "outcome"},
		)
		completionRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "campusqa_completion_retries_total",
				Help: "Transient completion failures that were retried.",
			},
		)
		segmentsSentTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "campusqa_segments_sent_total",
				Help: "Outbound message segments sent.",
			},
		)
		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusqa_http_request_duration_seconds",
				Help:    "HTTP request latency by route, method, and code.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "code"},
		)
	})
}

// ObserveCrawlPage records one processed page.
func ObserveCrawlPage(outcome string) {
	Init()
	crawlPagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveQuestion records one answered (or failed) question.
func ObserveQuestion(path, outcome string) {
	Init()
	questionsTotal.WithLabelValues(path, outcome).Inc()
}

// ObserveCompletionRetry records one transient retry.
func ObserveCompletionRetry() {
	Init()
	completionRetriesTotal.Inc()
}

// ObserveSegmentSent records one delivered segment.
func ObserveSegmentSent() {
	Init()
	segmentsSentTotal.Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// Middleware records HTTP request latency per chi route.
func Middleware(next http.Handler) http.Handler {
	Init()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unknown"
		}
		httpRequestDurationSeconds.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
