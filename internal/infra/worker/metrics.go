package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"content-harvester/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the ingestion worker.
// It embeds the standard config metrics for configuration monitoring and
// adds job execution metrics:
//   - worker_cron_job_runs_total: job runs by status (success/failure)
//   - worker_cron_job_duration_seconds: job duration histogram
//   - worker_cron_job_channels_processed_total: channels ingested across runs
//   - worker_cron_job_last_success_timestamp: last successful run
//   - worker_cron_job_consecutive_failures: failures since the last success
type WorkerMetrics struct {
	*config.Metrics

	// CronJobRunsTotal counts job runs by status ("success" or "failure").
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures job execution duration.
	// Buckets cover 1s through 30m, typical ingestion run lengths.
	CronJobDurationSeconds prometheus.Histogram

	// CronJobChannelsProcessedTotal counts channels ingested across runs.
	CronJobChannelsProcessedTotal prometheus.Counter

	// CronJobLastSuccessTimestamp is the Unix time of the last successful run.
	CronJobLastSuccessTimestamp prometheus.Gauge

	// CronJobConsecutiveFailures counts failed runs since the last success.
	CronJobConsecutiveFailures prometheus.Gauge
}

// NewWorkerMetrics creates the worker metrics. Metrics register with the
// default Prometheus registry via promauto on creation.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		Metrics: config.NewMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status (success/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CronJobChannelsProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_channels_processed_total",
			Help: "Total number of channels ingested across all cron job runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}),

		CronJobConsecutiveFailures: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_consecutive_failures",
			Help: "Number of failed cron job runs since the last success",
		}),
	}
}

// RecordJobRun increments the run counter. Status is "success" or "failure".
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a job's duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordChannelsProcessed adds to the processed-channel counter.
func (m *WorkerMetrics) RecordChannelsProcessed(count int) {
	m.CronJobChannelsProcessedTotal.Add(float64(count))
}

// RecordSuccess records a successful run: timestamp set, failure streak reset.
func (m *WorkerMetrics) RecordSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
	m.CronJobConsecutiveFailures.Set(0)
}

// RecordFailure increments the consecutive failure streak.
func (m *WorkerMetrics) RecordFailure() {
	m.CronJobConsecutiveFailures.Inc()
}
