package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAddRows(t *testing.T) {
	before := testutil.ToFloat64(RowsLoaded.WithLabelValues("test.source", "kept"))

	AddRows("test.source", 10, 4, 1)

	assert.Equal(t, before+4, testutil.ToFloat64(RowsLoaded.WithLabelValues("test.source", "kept")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(RowsLoaded.WithLabelValues("test.source", "malformed")), 1.0)
}

func TestObserveStage(t *testing.T) {
	ObserveStage("M_TEST", "success", 20*time.Millisecond)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(StageDuration, "pipeline_stage_duration_seconds"), 1)
}
