package pool

import "github.com/prometheus/client_golang/prometheus"

var (
	jobsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_jobs_submitted_total",
			Help: "Number of jobs submitted per pool.",
		},
		[]string{"pool"},
	)

	jobsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_jobs_completed_total",
			Help: "Number of jobs that produced an outcome record per pool.",
		},
		[]string{"pool"},
	)

	jobsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_jobs_failed_total",
			Help: "Number of jobs that exited non-zero or failed to start per pool.",
		},
		[]string{"pool"},
	)

	jobsRunning = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pool_jobs_running",
			Help: "Number of jobs currently executing per pool.",
		},
		[]string{"pool"},
	)

	workersGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pool_workers",
			Help: "Number of workers per pool.",
		},
		[]string{"pool"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pool_job_duration_seconds",
			Help:    "Job execution time distribution per pool.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pool"},
	)
)

// RegisterMetrics registers the pool collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		jobsSubmitted,
		jobsCompleted,
		jobsFailed,
		jobsRunning,
		workersGauge,
		jobDuration,
	)
}
