// Package metrics exposes Prometheus instrumentation for team runs.
//
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Browser termination results.
const (
	TerminationOK     = "ok"
	TerminationFailed = "failed"
)

// Recorder owns the teamflow collectors and the registry they live in.
type Recorder struct {
	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	events       *prometheus.CounterVec
	nodes        *prometheus.CounterVec
	terminations *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	activeRuns   prometheus.Gauge
}

// Options configures a Recorder.
type Options struct {
	// Namespace prefixes every metric name.
	Namespace string
	// WithRuntimeCollectors adds the Go runtime and process collectors.
	WithRuntimeCollectors bool
}

// New creates a Recorder with its own registry.
func New(optFns ...func(o *Options)) *Recorder {
	opts := Options{Namespace: "teamflow"}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "runs_total",
			Help:      "Total number of finished runs by outcome.",
		}, []string{"outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "events_total",
			Help:      "Total number of protocol events delivered to clients.",
		}, []string{"event"}),
		nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "node_transitions_total",
			Help:      "Total number of graph node entries.",
		}, []string{"node"}),
		terminations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Name:      "browser_terminations_total",
			Help:      "Browser session terminations triggered by cancelled runs.",
		}, []string{"result"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Name:      "tool_duration_seconds",
			Help:      "Duration of tool invocations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		activeRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: opts.Namespace,
			Name:      "active_runs",
			Help:      "Number of runs in flight.",
		}),
	}

	r.registry.MustRegister(r.runs, r.events, r.nodes, r.terminations, r.toolDuration, r.activeRuns)

	if opts.WithRuntimeCollectors {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return r
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RunStarted increments the in-flight gauge.
func (r *Recorder) RunStarted() {
	if r == nil {
		return
	}
	r.activeRuns.Inc()
}

// RunFinished records a finished run.
func (r *Recorder) RunFinished(outcome string) {
	if r == nil {
		return
	}
	r.activeRuns.Dec()
	r.runs.WithLabelValues(outcome).Inc()
}

// Event records one delivered protocol event.
func (r *Recorder) Event(eventType string) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(eventType).Inc()
}

// NodeTransition records entry into a graph node.
func (r *Recorder) NodeTransition(node string) {
	if r == nil {
		return
	}
	r.nodes.WithLabelValues(node).Inc()
}

// BrowserTermination records a termination attempt.
func (r *Recorder) BrowserTermination(result string) {
	if r == nil {
		return
	}
	r.terminations.WithLabelValues(result).Inc()
}

// ToolDuration observes a finished tool invocation.
func (r *Recorder) ToolDuration(tool string, d time.Duration) {
	if r == nil {
		return
	}
	r.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}
