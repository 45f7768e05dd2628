package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/splitter/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing
// a PrometheusCollector that is never exercised leaves the registry untouched.
// Experiment and variant IDs are used as labels; keep their cardinality bounded.
type PrometheusCollector struct {
	*NopMetrics

	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	assignments      *prometheus.CounterVec
	exclusions       *prometheus.CounterVec
	conversions      *prometheus.CounterVec
	revenue          *prometheus.CounterVec
	sessionDuration  *prometheus.HistogramVec
	retention        *prometheus.CounterVec
	ignoredEvents    *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	autoStops        *prometheus.CounterVec
	monitorDuration  prometheus.Histogram
	monitorEvaluated prometheus.Gauge
	dropped          *prometheus.CounterVec
	failed           *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "splitter" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "splitter"
	}

	return &PrometheusCollector{NopMetrics: NewNop(), reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.assignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assignment",
			Name:      "created_total",
			Help:      "Total assignments created by experiment and variant.",
		}, []string{"experiment", "variant"})

		p.exclusions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assignment",
			Name:      "excluded_total",
			Help:      "Total users excluded from an experiment by reason.",
		}, []string{"experiment", "reason"})

		p.conversions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "events",
			Name:      "conversions_total",
			Help:      "Total conversions recorded by experiment and variant.",
		}, []string{"experiment", "variant"})

		p.revenue = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "events",
			Name:      "revenue_total",
			Help:      "Total conversion value recorded by experiment and variant.",
		}, []string{"experiment", "variant"})

		p.sessionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "events",
			Name:      "session_duration_seconds",
			Help:      "Recorded session durations in seconds by experiment and variant.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		}, []string{"experiment", "variant"})

		p.retention = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "events",
			Name:      "retention_total",
			Help:      "Total retained users recorded by experiment, variant and day.",
		}, []string{"experiment", "variant", "day"})

		p.ignoredEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "events",
			Name:      "ignored_total",
			Help:      "Total events ignored for lack of an active assignment, by kind.",
		}, []string{"experiment", "kind"})

		p.transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Total experiment status transitions.",
		}, []string{"experiment", "from", "to"})

		p.autoStops = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "lifecycle",
			Name:      "auto_stops_total",
			Help:      "Total automatic experiment stops by reason.",
		}, []string{"experiment", "reason"})

		p.monitorDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "monitor",
			Name:      "pass_duration_seconds",
			Help:      "Duration in seconds of monitor evaluation passes.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		})

		p.monitorEvaluated = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "monitor",
			Name:      "evaluated_experiments",
			Help:      "Experiments evaluated in the most recent monitor pass.",
		})

		p.dropped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "dispatch",
			Name:      "dropped_total",
			Help:      "Total collaborator notifications dropped because the queue was full.",
		}, []string{"kind"})

		p.failed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "dispatch",
			Name:      "failed_total",
			Help:      "Total collaborator notifications whose delivery failed.",
		}, []string{"kind"})

		p.reg.MustRegister(p.assignments)
		p.reg.MustRegister(p.exclusions)
		p.reg.MustRegister(p.conversions)
		p.reg.MustRegister(p.revenue)
		p.reg.MustRegister(p.sessionDuration)
		p.reg.MustRegister(p.retention)
		p.reg.MustRegister(p.ignoredEvents)
		p.reg.MustRegister(p.transitions)
		p.reg.MustRegister(p.autoStops)
		p.reg.MustRegister(p.monitorDuration)
		p.reg.MustRegister(p.monitorEvaluated)
		p.reg.MustRegister(p.dropped)
		p.reg.MustRegister(p.failed)
	})
}

// AssignmentMetrics implementation

// RecordAssignment increments the assignment counter.
func (p *PrometheusCollector) RecordAssignment(experimentID, variantID string) {
	p.ensureRegistered()
	p.assignments.WithLabelValues(experimentID, variantID).Inc()
}

// RecordExclusion increments the exclusion counter.
func (p *PrometheusCollector) RecordExclusion(experimentID, reason string) {
	p.ensureRegistered()
	p.exclusions.WithLabelValues(experimentID, reason).Inc()
}

// EventMetrics implementation

// RecordConversion increments the conversion counter and adds non-negative value to revenue.
func (p *PrometheusCollector) RecordConversion(experimentID, variantID string, value float64) {
	p.ensureRegistered()
	p.conversions.WithLabelValues(experimentID, variantID).Inc()
	if value > 0 {
		p.revenue.WithLabelValues(experimentID, variantID).Add(value)
	}
}

// RecordSession observes a session duration.
func (p *PrometheusCollector) RecordSession(experimentID, variantID string, seconds float64) {
	p.ensureRegistered()
	p.sessionDuration.WithLabelValues(experimentID, variantID).Observe(seconds)
}

// RecordRetention increments the retention counter.
func (p *PrometheusCollector) RecordRetention(experimentID, variantID string, day int) {
	p.ensureRegistered()
	p.retention.WithLabelValues(experimentID, variantID, strconv.Itoa(day)).Inc()
}

// RecordIgnoredEvent increments the ignored event counter.
func (p *PrometheusCollector) RecordIgnoredEvent(experimentID, kind string) {
	p.ensureRegistered()
	p.ignoredEvents.WithLabelValues(experimentID, kind).Inc()
}

// LifecycleMetrics implementation

// RecordStatusTransition increments the transition counter.
func (p *PrometheusCollector) RecordStatusTransition(experimentID string, from, to types.Status) {
	p.ensureRegistered()
	p.transitions.WithLabelValues(experimentID, from.String(), to.String()).Inc()
}

// RecordAutoStop increments the auto-stop counter.
func (p *PrometheusCollector) RecordAutoStop(experimentID, reason string) {
	p.ensureRegistered()
	p.autoStops.WithLabelValues(experimentID, reason).Inc()
}

// RecordMonitorPass observes a monitor pass.
func (p *PrometheusCollector) RecordMonitorPass(seconds float64, evaluated int) {
	p.ensureRegistered()
	p.monitorDuration.Observe(seconds)
	p.monitorEvaluated.Set(float64(evaluated))
}

// DispatchMetrics implementation

// RecordNotificationDropped increments the dropped notification counter.
func (p *PrometheusCollector) RecordNotificationDropped(kind string) {
	p.ensureRegistered()
	p.dropped.WithLabelValues(kind).Inc()
}

// RecordNotificationFailed increments the failed notification counter.
func (p *PrometheusCollector) RecordNotificationFailed(kind string) {
	p.ensureRegistered()
	p.failed.WithLabelValues(kind).Inc()
}
