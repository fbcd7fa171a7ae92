package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCacheHitMiss(t *testing.T) {
	hitBefore := testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("feed", "hit"))
	missBefore := testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("feed", "miss"))

	RecordCacheHit("feed")
	RecordCacheMiss("feed")
	RecordCacheMiss("feed")

	assert.Equal(t, hitBefore+1, testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("feed", "hit")))
	assert.Equal(t, missBefore+2, testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("feed", "miss")))
}

func TestRecordSourceFetch(t *testing.T) {
	tests := []struct {
		name    string
		success bool
		result  string
	}{
		{name: "success", success: true, result: "success"},
		{name: "failure", success: false, result: "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SourceFetchesTotal.WithLabelValues("api", "newsapi", tt.result))
			RecordSourceFetch("api", "newsapi", tt.success, 100*time.Millisecond)
			assert.Equal(t, before+1, testutil.ToFloat64(SourceFetchesTotal.WithLabelValues("api", "newsapi", tt.result)))
		})
	}
}

func TestRecordCircuitOpenRejection(t *testing.T) {
	before := testutil.ToFloat64(CircuitOpenRejectionsTotal.WithLabelValues("flaky"))
	RecordCircuitOpenRejection("flaky")
	assert.Equal(t, before+1, testutil.ToFloat64(CircuitOpenRejectionsTotal.WithLabelValues("flaky")))
}

func TestRecordIngestion(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordIngestion("ch1", true, 2*time.Second)
		RecordIngestion("ch1", false, 100*time.Millisecond)
	})
}

func TestRecordIngestionSummary(t *testing.T) {
	delivered := testutil.ToFloat64(IngestionMaterialsTotal.WithLabelValues("ch2", "delivered"))
	deduped := testutil.ToFloat64(IngestionMaterialsTotal.WithLabelValues("ch2", "deduplicated"))

	RecordIngestionSummary("ch2", 10, 3, 2, 8)

	assert.Equal(t, delivered+8, testutil.ToFloat64(IngestionMaterialsTotal.WithLabelValues("ch2", "delivered")))
	assert.Equal(t, deduped+2, testutil.ToFloat64(IngestionMaterialsTotal.WithLabelValues("ch2", "deduplicated")))
}
