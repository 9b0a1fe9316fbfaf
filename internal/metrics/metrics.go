package metrics

import (
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

var (
	// RequestDuration tracks serve-mode HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts serve-mode HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// TaskRunsTotal counts task attempts by task name and status (succeeded, failed).
	TaskRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_task_runs_total",
			Help: "Total number of task runs by status",
		},
		[]string{"task", "status"},
	)

	// TaskDuration tracks how long each task took, regardless of outcome.
	TaskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_task_duration_seconds",
			Help:    "Task run duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"task"},
	)

	// TaskLastSuccess is the unix time of each task's last successful run.
	TaskLastSuccess = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dispatch_task_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per task",
		},
		[]string{"task"},
	)

	// TicksTotal counts dispatcher ticks.
	TicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_ticks_total",
			Help: "Total number of dispatcher ticks",
		},
	)

	// BackfillDaysTotal counts backfilled days by status.
	BackfillDaysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_backfill_days_total",
			Help: "Total number of backfilled days by status",
		},
		[]string{"status"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration, RequestTotal,
			TaskRunsTotal, TaskDuration, TaskLastSuccess,
			TicksTotal, BackfillDaysTotal,
		)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /contracts/12 -> /contracts/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordTask records the outcome of one task run finished at end.
func RecordTask(name string, failed bool, d time.Duration, end time.Time) {
	status := StatusSucceeded
	if failed {
		status = StatusFailed
	}
	TaskRunsTotal.WithLabelValues(name, status).Inc()
	TaskDuration.WithLabelValues(name).Observe(d.Seconds())
	if !failed {
		TaskLastSuccess.WithLabelValues(name).Set(float64(end.Unix()))
	}
}

// IncTicks increments the tick counter.
func IncTicks() {
	TicksTotal.Inc()
}

// IncBackfillDays increments the backfill day counter for the given status.
func IncBackfillDays(status string) {
	BackfillDaysTotal.WithLabelValues(status).Inc()
}

// WriteTextfile dumps the default registry to path in the text exposition format,
// for node_exporter's textfile collector. The file is replaced atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
