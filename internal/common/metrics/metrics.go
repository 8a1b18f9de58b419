// internal/common/metrics/metrics.go
package metrics

import (
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

	AnalysisMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_messages_total",
			Help: "Total number of messages analyzed, by intent and route",
		},
		[]string{"intent", "route"},
	)

	AnalysisCollabFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_collab_failures_total",
			Help: "Total number of collaborator calls that failed or timed out",
		},
		[]string{"collaborator"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "analysis_duration_seconds",
			Help: "Duration of one full message analysis in seconds",
		},
	)
)
