package proofs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stake-dao/votemarket-relay/metrics"
)

// Metrics tracks proof assembly outcomes. All recording methods are
// nil-safe so the service can run without a registry in tests.
type Metrics struct {
	builds        *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	proofNodes    prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := metrics.NewComponentRegistry("proofs", "")
	return &Metrics{
		builds: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "builds_total",
			Help: "Proof bundle builds by protocol and result.",
		}, []string{"protocol", "result"}),
		buildDuration: reg.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "build_duration_seconds",
			Help:    "Wall time of one proof bundle build.",
			Buckets: metrics.DurationBuckets,
		}, []string{"protocol"}),
		proofNodes: reg.NewHistogram(prometheus.HistogramOpts{
			Name:    "submission_nodes",
			Help:    "Trie nodes carried per encoded submission.",
			Buckets: metrics.CountBuckets,
		}),
	}
}

func (m *Metrics) RecordBuild(protocol, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(protocol, result).Inc()
	m.buildDuration.WithLabelValues(protocol).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordSubmissionNodes(n int) {
	if m == nil {
		return
	}
	m.proofNodes.Observe(float64(n))
}
