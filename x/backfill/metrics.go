package backfill

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stake-dao/votemarket-relay/metrics"
)

// Metrics tracks sweep outcomes. Recording methods are nil-safe so the
// runner can run without a registry in tests.
type Metrics struct {
	sweeps        *prometheus.CounterVec
	sweepDuration prometheus.Histogram
	submissions   *prometheus.CounterVec
	epochLag      *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	reg := metrics.NewComponentRegistry("backfill", "")
	return &Metrics{
		sweeps: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "sweeps_total",
			Help: "Backfill sweeps by result.",
		}, []string{"result"}),
		sweepDuration: reg.NewHistogram(prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Wall time of one full sweep across all campaigns.",
			Buckets: metrics.DurationBuckets,
		}),
		submissions: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Journaled submissions by protocol and kind (gauge or user).",
		}, []string{"protocol", "kind"}),
		epochLag: reg.NewGaugeVec(prometheus.GaugeOpts{
			Name: "epoch_lag",
			Help: "Epochs still missing per campaign after its last sweep.",
		}, []string{"protocol", "gauge"}),
	}
}

func (m *Metrics) RecordSweep(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.sweeps.WithLabelValues(result).Inc()
	m.sweepDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordSubmission(protocol, kind string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(protocol, kind).Inc()
}

func (m *Metrics) RecordEpochLag(protocol, gauge string, missing int) {
	if m == nil {
		return
	}
	m.epochLag.WithLabelValues(protocol, gauge).Set(float64(missing))
}
