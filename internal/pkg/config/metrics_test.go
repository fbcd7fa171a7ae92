package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("testcomp_a")

	require.NotNil(t, m.LoadTimestamp)
	require.NotNil(t, m.ValidationErrorsTotal)
	require.NotNil(t, m.FallbacksTotal)
	require.NotNil(t, m.FallbackActive)
	assert.Equal(t, "testcomp_a", m.componentName)
}

func TestMetrics_RecordValidationError(t *testing.T) {
	m := NewMetrics("testcomp_b")

	m.RecordValidationError("cron_schedule")
	m.RecordValidationError("cron_schedule")
	m.RecordValidationError("timezone")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("cron_schedule")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("timezone")))
}

func TestMetrics_RecordFallback(t *testing.T) {
	m := NewMetrics("testcomp_c")

	m.RecordFallback("ingest_timeout")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("ingest_timeout")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("untouched_field")))
}

func TestMetrics_SetFallbackActive(t *testing.T) {
	m := NewMetrics("testcomp_d")

	m.SetFallbackActive(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FallbackActive))

	m.SetFallbackActive(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.FallbackActive))
}

func TestMetrics_RecordLoadTimestamp(t *testing.T) {
	m := NewMetrics("testcomp_e")

	m.RecordLoadTimestamp()

	assert.Greater(t, testutil.ToFloat64(m.LoadTimestamp), float64(0))
}
