package metrics

import "github.com/arloliu/splitter/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	metrics := metrics.NewNop()
//	engine, err := splitter.NewEngine(&cfg, splitter.WithMetrics(metrics))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// AssignmentMetrics implementation

// RecordAssignment discards the assignment metric.
func (n *NopMetrics) RecordAssignment(_ /* experimentID */, _ /* variantID */ string) {
	// No-op
}

// RecordExclusion discards the exclusion metric.
func (n *NopMetrics) RecordExclusion(_ /* experimentID */, _ /* reason */ string) {
	// No-op
}

// EventMetrics implementation

// RecordConversion discards the conversion metric.
func (n *NopMetrics) RecordConversion(_ /* experimentID */, _ /* variantID */ string, _ /* value */ float64) {
	// No-op
}

// RecordSession discards the session metric.
func (n *NopMetrics) RecordSession(_ /* experimentID */, _ /* variantID */ string, _ /* seconds */ float64) {
	// No-op
}

// RecordRetention discards the retention metric.
func (n *NopMetrics) RecordRetention(_ /* experimentID */, _ /* variantID */ string, _ /* day */ int) {
	// No-op
}

// RecordIgnoredEvent discards the ignored event metric.
func (n *NopMetrics) RecordIgnoredEvent(_ /* experimentID */, _ /* kind */ string) {
	// No-op
}

// LifecycleMetrics implementation

// RecordStatusTransition discards the status transition metric.
func (n *NopMetrics) RecordStatusTransition(_ /* experimentID */ string, _ /* from */, _ /* to */ types.Status) {
	// No-op
}

// RecordAutoStop discards the auto-stop metric.
func (n *NopMetrics) RecordAutoStop(_ /* experimentID */, _ /* reason */ string) {
	// No-op
}

// RecordMonitorPass discards the monitor pass metric.
func (n *NopMetrics) RecordMonitorPass(_ /* seconds */ float64, _ /* evaluated */ int) {
	// No-op
}

// DispatchMetrics implementation

// RecordNotificationDropped discards the dropped notification metric.
func (n *NopMetrics) RecordNotificationDropped(_ /* kind */ string) {
	// No-op
}

// RecordNotificationFailed discards the failed notification metric.
func (n *NopMetrics) RecordNotificationFailed(_ /* kind */ string) {
	// No-op
}
