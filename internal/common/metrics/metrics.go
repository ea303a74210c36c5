// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	DialogueTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_turns_total",
			Help: "Chat turns answered, by resolved intent and engine state",
		},
		[]string{"intent", "state"},
	)

	DialogueConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dialogue_turn_confidence",
			Help:    "Confidence reported on chat replies",
			Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 1},
		},
	)

	DialogueTurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dialogue_turn_duration_seconds",
			Help:    "Time spent producing a chat reply",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 9),
		},
		[]string{"state"},
	)

	LookupResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_lookup_results_total",
			Help: "Reference lookups by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served, by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	AuditWritesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_writes_failed_total",
			Help: "Conversation audit records that could not be written",
		},
		[]string{"sink"},
	)
)

// ObserveTurn records one finished chat turn.
func ObserveTurn(intent, state string, confidence float64, elapsed time.Duration) {
	DialogueTurns.WithLabelValues(intent, state).Inc()
	DialogueConfidence.Observe(confidence)
	DialogueTurnDuration.WithLabelValues(state).Observe(elapsed.Seconds())
}

// ObserveAuditFailure counts one failed audit write.
func ObserveAuditFailure(sink string) {
	AuditWritesFailed.WithLabelValues(sink).Inc()
}

// ObserveLookup records the outcome of one reference lookup.
func ObserveLookup(outcome string) {
	LookupResults.WithLabelValues(outcome).Inc()
}
