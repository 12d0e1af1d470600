package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.QueryServed("semantic")
	m.QueryServed("semantic")
	m.Fallback("semantic", "not_ready")
	m.EmbeddingRequest(OutcomeSuccess)
	m.EmbeddingRetry(true)
	m.Evicted("content", 3)
	m.Evicted("content", 0)
	m.ContentIngested()
	m.ObserveQuery(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("semantic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("semantic", "not_ready")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.embeddingRequests.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.embeddingRetries.WithLabelValues("true")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.evictions.WithLabelValues("content")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ingested))
	assert.Equal(t, 1, testutil.CollectAndCount(m.queryDuration))
}

func TestMetrics_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.QueryServed("lexical")
		m.Fallback("lexical", "error")
		m.ObserveQuery(time.Second)
		m.EmbeddingRequest(OutcomeFailure)
		m.EmbeddingRetry(false)
		m.Evicted("screenshot", 1)
		m.ContentIngested()
	})
}
