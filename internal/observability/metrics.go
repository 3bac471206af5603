package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alloptic",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alloptic",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	reportsComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alloptic",
			Subsystem: "reports",
			Name:      "computed_total",
			Help:      "Alloy reports computed, by mixing method and outcome.",
		},
		[]string{"method", "success"},
	)
	reportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alloptic",
			Subsystem: "reports",
			Name:      "compute_duration_seconds",
			Help:      "Report computation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	unresolvedSamples = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alloptic",
			Subsystem: "mixing",
			Name:      "unresolved_samples_total",
			Help:      "Samples dropped because no admissible Bruggeman root existed.",
		},
		[]string{"method"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, reportsComputed, reportDuration, unresolvedSamples)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordReport(method string, unresolved int, duration time.Duration, success bool) {
	RegisterMetrics()
	reportsComputed.WithLabelValues(method, strconv.FormatBool(success)).Inc()
	reportDuration.WithLabelValues(method).Observe(duration.Seconds())
	if unresolved > 0 {
		unresolvedSamples.WithLabelValues(method).Add(float64(unresolved))
	}
}
