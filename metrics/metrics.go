// Package metrics exposes Prometheus collectors for the search engine.
// All recording methods are safe to call on a nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "histsearch"

// Embedding request outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeCached   = "cached"
	OutcomeFailure  = "failure"
	OutcomeNotReady = "not_ready"
)

type Metrics struct {
	queries           *prometheus.CounterVec
	fallbacks         *prometheus.CounterVec
	queryDuration     prometheus.Histogram
	embeddingRequests *prometheus.CounterVec
	embeddingRetries  *prometheus.CounterVec
	evictions         *prometheus.CounterVec
	ingested          prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries answered, by the tier that produced the results.",
		}, []string{"tier"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Tier fallbacks, by the tier that fell through and why.",
		}, []string{"from", "reason"}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "End-to-end query latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		embeddingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_requests_total",
			Help:      "Embedding gateway requests, by outcome.",
		}, []string{"outcome"}),
		embeddingRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_retries_total",
			Help:      "Embedding provider retries, split by whether the provider signalled rate limiting.",
		}, []string{"rate_limited"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Records removed by retention, by kind.",
		}, []string{"kind"}),
		ingested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_ingested_total",
			Help:      "Extracted pages stored.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.queries, m.fallbacks, m.queryDuration, m.embeddingRequests,
		m.embeddingRetries, m.evictions, m.ingested,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// QueryServed counts a query answered by tier.
func (m *Metrics) QueryServed(tier string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(tier).Inc()
}

// Fallback counts a tier falling through to the next one.
func (m *Metrics) Fallback(from, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(from, reason).Inc()
}

// ObserveQuery records the latency of one query.
func (m *Metrics) ObserveQuery(d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.Observe(d.Seconds())
}

// EmbeddingRequest counts a gateway request with its outcome.
func (m *Metrics) EmbeddingRequest(outcome string) {
	if m == nil {
		return
	}
	m.embeddingRequests.WithLabelValues(outcome).Inc()
}

// EmbeddingRetry counts a provider retry.
func (m *Metrics) EmbeddingRetry(rateLimited bool) {
	if m == nil {
		return
	}
	label := "false"
	if rateLimited {
		label = "true"
	}
	m.embeddingRetries.WithLabelValues(label).Inc()
}

// Evicted counts n records of kind removed by retention.
func (m *Metrics) Evicted(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evictions.WithLabelValues(kind).Add(float64(n))
}

// ContentIngested counts a stored page.
func (m *Metrics) ContentIngested() {
	if m == nil {
		return
	}
	m.ingested.Inc()
}
