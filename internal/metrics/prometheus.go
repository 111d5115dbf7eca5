package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchRunsTotal counts batch runs by outcome (succeeded, failed, busy).
	BatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_batch_runs_total",
			Help: "Total number of batch runs",
		},
		[]string{"outcome"},
	)

	// BatchDuration tracks how long a batch run takes from listing to drain.
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "records_batch_duration_seconds",
			Help:    "Duration of batch runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
	)

	// RecordsProcessedTotal counts units of work by outcome.
	RecordsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_processed_total",
			Help: "Total number of record processing units",
		},
		[]string{"outcome"},
	)

	// WorkersActive tracks the number of workers currently executing a task.
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "records_pool_workers_active",
			Help: "Number of pool workers currently executing a task",
		},
	)

	// Workers tracks the number of live worker goroutines, core and burst.
	Workers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "records_pool_workers",
			Help: "Number of live pool worker goroutines",
		},
	)

	// TasksRejected counts submissions refused because the queue was full.
	TasksRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "records_pool_tasks_rejected_total",
			Help: "Total number of tasks rejected by a saturated pool",
		},
	)
)
