package l1

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stake-dao/votemarket-relay/metrics"
)

// Metrics tracks RPC traffic against the endpoint. All recording methods
// are nil-safe so the client can run without a registry in tests.
type Metrics struct {
	calls        *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	retries      prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := metrics.NewComponentRegistry("l1", "")
	return &Metrics{
		calls: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "rpc_calls_total",
			Help: "RPC operations by method and result.",
		}, []string{"method", "result"}),
		callDuration: reg.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rpc_call_duration_seconds",
			Help:    "Caller-observed latency of one RPC operation, queueing and retries included.",
			Buckets: metrics.DurationBuckets,
		}, []string{"method"}),
		retries: reg.NewCounter(prometheus.CounterOpts{
			Name: "rpc_retries_total",
			Help: "Retry attempts after transient RPC failures.",
		}),
	}
}

func (m *Metrics) RecordCall(method, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(method, result).Inc()
	m.callDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}
