// Package metrics exposes the Prometheus collectors of the web application
// from a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "yatube",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yatube",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "yatube",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	postsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yatube",
			Subsystem: "posts",
			Name:      "created_total",
			Help:      "Total number of published posts.",
		},
		[]string{"image"},
	)

	commentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "yatube",
			Subsystem: "comments",
			Name:      "created_total",
			Help:      "Total number of comments added.",
		},
	)

	pageCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yatube",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Page cache lookups by result.",
		},
		[]string{"result"},
	)

	sessionsPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "yatube",
			Subsystem: "sessions",
			Name:      "purged_total",
			Help:      "Expired sessions removed by the purger.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		postsCreated,
		commentsCreated,
		pageCache,
		sessionsPurged,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// TrackInFlight increments the in-flight gauge and returns the matching
// decrement.
func TrackInFlight() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// RecordHTTPRequest records one served request. path should be a route
// template so label cardinality stays bounded.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPostCreated counts a published post.
func RecordPostCreated(withImage bool) {
	postsCreated.WithLabelValues(strconv.FormatBool(withImage)).Inc()
}

// RecordCommentCreated counts an added comment.
func RecordCommentCreated() {
	commentsCreated.Inc()
}

// RecordCacheLookup counts a page cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	pageCache.WithLabelValues(result).Inc()
}

// RecordSessionsPurged counts removed sessions.
func RecordSessionsPurged(n int) {
	if n > 0 {
		sessionsPurged.Add(float64(n))
	}
}
