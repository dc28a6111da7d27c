package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldops_http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldops_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	JobTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldops_job_transitions_total",
			Help: "Job status transitions by from/to status",
		},
		[]string{"from", "to"},
	)

	RejectedTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldops_rejected_transitions_total",
			Help: "Transitions rejected by the workflow, by reason",
		},
		[]string{"entity", "reason"},
	)

	UnitEntriesCapturedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldops_unit_entries_captured_total",
			Help: "Unit entries captured in the field",
		},
	)

	DisputesOpenedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldops_disputes_opened_total",
			Help: "Unit entry disputes opened, by category",
		},
		[]string{"category"},
	)
)
