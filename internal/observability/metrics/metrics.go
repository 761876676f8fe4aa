package metrics

import "github.com/prometheus/client_golang/prometheus"

// GraphMetrics exposes counters/histograms for Graph and Send API calls.
type GraphMetrics struct {
	requestsTotal      *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	tokenMintsTotal    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
}

// Outcome labels used by ObserveRequest.
const (
	OutcomeOK        = "ok"
	OutcomeRemote    = "remote_error"
	OutcomeStatus    = "status_error"
	OutcomeTransport = "transport_error"
	OutcomeMalformed = "malformed"
)

func NewGraphMetrics(reg prometheus.Registerer) *GraphMetrics {
	m := &GraphMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fbgraph",
			Subsystem: "graph",
			Name:      "requests_total",
			Help:      "Total Graph API calls by outcome",
		}, []string{"method", "outcome"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fbgraph",
			Subsystem: "graph",
			Name:      "request_duration_seconds",
			Help:      "Latency of Graph API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		tokenMintsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fbgraph",
			Subsystem: "graph",
			Name:      "token_mints_total",
			Help:      "App access token mint attempts",
		}, []string{"outcome"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fbgraph",
			Subsystem: "messenger",
			Name:      "validation_failures_total",
			Help:      "Messages rejected locally before reaching the Send API",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.tokenMintsTotal, m.validationFailures)
	return m
}

func (m *GraphMetrics) ObserveRequest(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, outcome).Inc()
	m.requestLatency.WithLabelValues(method).Observe(seconds)
}

func (m *GraphMetrics) ObserveTokenMint(ok bool) {
	if m == nil {
		return
	}
	label := OutcomeOK
	if !ok {
		label = "error"
	}
	m.tokenMintsTotal.WithLabelValues(label).Inc()
}

func (m *GraphMetrics) ObserveValidationFailure(kind string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(kind).Inc()
}
