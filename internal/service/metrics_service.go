package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the sync pipelines. All methods are nil-safe so callers can run without
// metrics wired.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	syncRuns          *prometheus.CounterVec
	professorsMatched prometheus.Counter
	professorsCreated prometheus.Counter
	coursesLinked     prometheus.Counter
	postsSaved        prometheus.Counter
	commentsSaved     prometheus.Counter
	upstreamRetries   prometheus.Counter
	limiterWaits      prometheus.Counter
}

// NewMetricsService registers the service's Prometheus collectors on a fresh
// registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	syncRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_runs_total",
		Help: "Total sync pipeline runs",
	}, []string{"pipeline"})

	professorsMatched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_professors_matched_total",
		Help: "Scraped professors matched to existing rows",
	})

	professorsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_professors_created_total",
		Help: "Professors created without ratings data",
	})

	coursesLinked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_courses_linked_total",
		Help: "Professor-course links written",
	})

	postsSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scrape_posts_saved_total",
		Help: "Discussion posts persisted",
	})

	commentsSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scrape_comments_saved_total",
		Help: "Discussion comments persisted",
	})

	upstreamRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "upstream_retries_total",
		Help: "Retried upstream requests",
	})

	limiterWaits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limiter_waits_total",
		Help: "Requests delayed by the rate limiter",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, syncRuns,
		professorsMatched, professorsCreated, coursesLinked,
		postsSaved, commentsSaved, upstreamRetries, limiterWaits, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		syncRuns:          syncRuns,
		professorsMatched: professorsMatched,
		professorsCreated: professorsCreated,
		coursesLinked:     coursesLinked,
		postsSaved:        postsSaved,
		commentsSaved:     commentsSaved,
		upstreamRetries:   upstreamRetries,
		limiterWaits:      limiterWaits,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSyncRun counts one run of the named pipeline.
func (m *MetricsService) RecordSyncRun(pipeline string) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(pipeline).Inc()
}

// RecordMatchOutcomes adds one pipeline run's match and create counts.
func (m *MetricsService) RecordMatchOutcomes(matched, created int) {
	if m == nil {
		return
	}
	m.professorsMatched.Add(float64(matched))
	m.professorsCreated.Add(float64(created))
}

// RecordCoursesLinked adds written professor-course links.
func (m *MetricsService) RecordCoursesLinked(n int) {
	if m == nil {
		return
	}
	m.coursesLinked.Add(float64(n))
}

// RecordPostsSaved adds persisted discussion posts and comments.
func (m *MetricsService) RecordPostsSaved(posts, comments int) {
	if m == nil {
		return
	}
	m.postsSaved.Add(float64(posts))
	m.commentsSaved.Add(float64(comments))
}

// RecordUpstreamRetry counts one retried upstream request.
func (m *MetricsService) RecordUpstreamRetry() {
	if m == nil {
		return
	}
	m.upstreamRetries.Inc()
}

// RecordLimiterWait counts one request delayed by the rate limiter.
func (m *MetricsService) RecordLimiterWait() {
	if m == nil {
		return
	}
	m.limiterWaits.Inc()
}
