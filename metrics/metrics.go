package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// DefaultNamespace prefixes every metric emitted by this process.
const DefaultNamespace = "votemarket"

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// GetRegistry returns the process-wide Prometheus registry, creating it on
// first use with the standard Go runtime and process collectors attached.
func GetRegistry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	return registry
}

// Shared histogram buckets.
var (
	// DurationBuckets covers RPC and build latencies from 5ms to 30s.
	DurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	// CountBuckets covers small cardinalities (nodes per proof, epochs per sweep).
	CountBuckets = []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000}
)

// ComponentRegistry scopes metric registration to one component: every
// metric created through it carries the shared namespace and the component
// name as subsystem, and lands in the process registry.
type ComponentRegistry struct {
	namespace string
	component string
}

// NewComponentRegistry returns a registry scope for the given component.
// An empty namespace falls back to DefaultNamespace.
func NewComponentRegistry(component, namespace string) *ComponentRegistry {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &ComponentRegistry{
		namespace: namespace,
		component: component,
	}
}

func (r *ComponentRegistry) scope(namespace, subsystem string) (string, string) {
	if namespace == "" {
		namespace = r.namespace
	}
	if subsystem == "" {
		subsystem = r.component
	}
	return namespace, subsystem
}

// NewGauge creates and registers a gauge.
func (r *ComponentRegistry) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	opts.Namespace, opts.Subsystem = r.scope(opts.Namespace, opts.Subsystem)
	g := prometheus.NewGauge(opts)
	GetRegistry().MustRegister(g)
	return g
}

// NewGaugeVec creates and registers a gauge vector.
func (r *ComponentRegistry) NewGaugeVec(opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	opts.Namespace, opts.Subsystem = r.scope(opts.Namespace, opts.Subsystem)
	g := prometheus.NewGaugeVec(opts, labels)
	GetRegistry().MustRegister(g)
	return g
}

// NewCounter creates and registers a counter.
func (r *ComponentRegistry) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	opts.Namespace, opts.Subsystem = r.scope(opts.Namespace, opts.Subsystem)
	c := prometheus.NewCounter(opts)
	GetRegistry().MustRegister(c)
	return c
}

// NewCounterVec creates and registers a counter vector.
func (r *ComponentRegistry) NewCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	opts.Namespace, opts.Subsystem = r.scope(opts.Namespace, opts.Subsystem)
	c := prometheus.NewCounterVec(opts, labels)
	GetRegistry().MustRegister(c)
	return c
}

// NewHistogram creates and registers a histogram.
func (r *ComponentRegistry) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	opts.Namespace, opts.Subsystem = r.scope(opts.Namespace, opts.Subsystem)
	h := prometheus.NewHistogram(opts)
	GetRegistry().MustRegister(h)
	return h
}

// NewHistogramVec creates and registers a histogram vector.
func (r *ComponentRegistry) NewHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	opts.Namespace, opts.Subsystem = r.scope(opts.Namespace, opts.Subsystem)
	h := prometheus.NewHistogramVec(opts, labels)
	GetRegistry().MustRegister(h)
	return h
}
