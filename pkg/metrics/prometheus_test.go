package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordAdmission("allowed")
	r.RecordAdmission("allowed")
	r.RecordAdmission("denied")
	r.RecordCacheLookup(true)
	r.RecordSynthesis("degraded")
	r.RecordStage("ingest", 0.3)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.admissions.WithLabelValues("allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.admissions.WithLabelValues("denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheHits.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.synthesis.WithLabelValues("degraded")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.stages))
}
