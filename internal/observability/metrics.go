package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "timesaver",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests by route, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
	entriesNormalized = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timesaver",
		Subsystem: "entries",
		Name:      "normalized_total",
		Help:      "Entries whose start and end were swapped on write.",
	})
	externalFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timesaver",
		Subsystem: "external",
		Name:      "fetch_failures_total",
		Help:      "Failed calls to third-party services, served with a fallback.",
	}, []string{"service"})
)

func init() {
	prometheus.MustRegister(httpRequestDuration, entriesNormalized, externalFailures)
}

// ObserveHTTPRequest records one handled request.
func ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RecordEntryNormalized counts a start/end swap.
func RecordEntryNormalized() {
	entriesNormalized.Inc()
}

// RecordExternalFailure counts a degraded weather or news fetch.
func RecordExternalFailure(service string) {
	externalFailures.WithLabelValues(service).Inc()
}
