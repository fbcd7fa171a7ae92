package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workerMetrics is shared across this package's tests; promauto metrics
// register globally and cannot be created twice.
var workerMetrics = testMetrics

func TestNewWorkerMetrics(t *testing.T) {
	require.NotNil(t, workerMetrics.Metrics, "config metrics must be embedded")
	require.NotNil(t, workerMetrics.CronJobRunsTotal)
	require.NotNil(t, workerMetrics.CronJobDurationSeconds)
	require.NotNil(t, workerMetrics.CronJobChannelsProcessedTotal)
	require.NotNil(t, workerMetrics.CronJobLastSuccessTimestamp)
	require.NotNil(t, workerMetrics.CronJobConsecutiveFailures)
}

func TestWorkerMetrics_RecordJobRun(t *testing.T) {
	before := testutil.ToFloat64(workerMetrics.CronJobRunsTotal.WithLabelValues("success"))

	workerMetrics.RecordJobRun("success")
	workerMetrics.RecordJobRun("success")
	workerMetrics.RecordJobRun("failure")

	assert.Equal(t, before+2, testutil.ToFloat64(workerMetrics.CronJobRunsTotal.WithLabelValues("success")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(workerMetrics.CronJobRunsTotal.WithLabelValues("failure")), float64(1))
}

func TestWorkerMetrics_RecordChannelsProcessed(t *testing.T) {
	before := testutil.ToFloat64(workerMetrics.CronJobChannelsProcessedTotal)

	workerMetrics.RecordChannelsProcessed(3)

	assert.Equal(t, before+3, testutil.ToFloat64(workerMetrics.CronJobChannelsProcessedTotal))
}

func TestWorkerMetrics_FailureStreak(t *testing.T) {
	workerMetrics.RecordFailure()
	workerMetrics.RecordFailure()
	assert.GreaterOrEqual(t, testutil.ToFloat64(workerMetrics.CronJobConsecutiveFailures), float64(2))

	workerMetrics.RecordSuccess()
	assert.Equal(t, float64(0), testutil.ToFloat64(workerMetrics.CronJobConsecutiveFailures))
	assert.Greater(t, testutil.ToFloat64(workerMetrics.CronJobLastSuccessTimestamp), float64(0))
}
