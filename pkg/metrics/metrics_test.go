package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveQuery(OutcomeAnswered, 3)
	m.ObserveQuery(OutcomeAnswered, 2)
	m.ObserveQuery(OutcomeNoBackend, 0)
	m.ObserveIngest(7)
	m.ObserveIngestFailure("too_large")
	m.ObserveGeneration("", time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Queries.WithLabelValues(OutcomeAnswered)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Queries.WithLabelValues(OutcomeNoBackend)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DocumentsIngested))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.ChunksIndexed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IngestFailures.WithLabelValues("too_large")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GenerationDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuery(OutcomeError, 0)
		m.ObserveGeneration("x", time.Second)
		m.ObserveIngest(1)
		m.ObserveIngestFailure("x")
	})
}
