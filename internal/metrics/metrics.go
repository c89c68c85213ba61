package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peerprep",
		Subsystem: "interview",
		Name:      "jobs_processed_total",
		Help:      "Total number of task queue jobs processed",
	}, []string{"kind", "status"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "peerprep",
		Subsystem: "interview",
		Name:      "job_duration_seconds",
		Help:      "Duration of task queue jobs in seconds, retries included",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	jobRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peerprep",
		Subsystem: "interview",
		Name:      "job_retries_total",
		Help:      "Total number of task queue job retry attempts",
	}, []string{"kind"})

	aiCost = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peerprep",
		Subsystem: "interview",
		Name:      "ai_cost_usd_total",
		Help:      "Approximate accumulated AI spend in USD, by model",
	}, []string{"model"})

	fallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peerprep",
		Subsystem: "interview",
		Name:      "ai_fallbacks_total",
		Help:      "Times a fixed fallback value was substituted for an AI result",
	}, []string{"kind"})
)

// ObserveJob records one finished job with its total duration.
func ObserveJob(kind, status string, duration time.Duration) {
	jobsProcessed.WithLabelValues(kind, status).Inc()
	jobDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// IncJobRetry counts one retry attempt for a job kind.
func IncJobRetry(kind string) {
	jobRetries.WithLabelValues(kind).Inc()
}

// AddAICost accumulates the estimated cost of one model call.
func AddAICost(model string, usd float64) {
	aiCost.WithLabelValues(model).Add(usd)
}

// IncFallback counts one fallback substitution.
func IncFallback(kind string) {
	fallbacks.WithLabelValues(kind).Inc()
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
