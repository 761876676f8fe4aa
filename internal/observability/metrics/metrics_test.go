package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGraphMetrics(reg)
	m.ObserveRequest("GET", OutcomeOK, 0.2)
	m.ObserveRequest("GET", OutcomeRemote, 0.1)
	m.ObserveTokenMint(true)
	m.ObserveValidationFailure("recipient")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", OutcomeRemote)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenMintsTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationFailures.WithLabelValues("recipient")))
}

func TestGraphMetricsHistogramGathered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGraphMetrics(reg)
	m.ObserveRequest("POST", OutcomeOK, 0.3)
	m.ObserveRequest("POST", OutcomeOK, 0.4)

	families, err := reg.Gather()
	require.NoError(t, err)

	var hist *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "fbgraph_graph_request_duration_seconds" {
			hist = f
		}
	}
	require.NotNil(t, hist)
	require.Len(t, hist.GetMetric(), 1)
	assert.Equal(t, uint64(2), hist.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestGraphMetricsNilSafe(t *testing.T) {
	var m *GraphMetrics
	m.ObserveRequest("GET", OutcomeOK, 0.1)
	m.ObserveTokenMint(false)
	m.ObserveValidationFailure("message")
}
