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

	CompetencyLoaderState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "competency_loader_breaker_state",
			Help: "Circuit breaker state of the competency loader (0=closed, 1=open, 2=half-open)",
		},
	)

	CompetencyCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "competency_cache_hits_total",
			Help: "Competency cache lookups during fallback, by outcome",
		},
		[]string{"outcome"},
	)

	BenchmarksResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taxonomy_benchmarks_resolved_total",
			Help: "External taxonomy benchmarks resolved to internal competencies, by strategy",
		},
		[]string{"strategy"},
	)
)
