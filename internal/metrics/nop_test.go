package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/splitter/types"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.IsType(t, &NopMetrics{}, metrics)
}

func TestNopMetrics_AllMethods(t *testing.T) {
	metrics := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		metrics.RecordAssignment("exp", "control")
		metrics.RecordExclusion("exp", "traffic")
		metrics.RecordConversion("exp", "treatment", 9.99)
		metrics.RecordSession("exp", "treatment", 120)
		metrics.RecordRetention("exp", "control", 7)
		metrics.RecordIgnoredEvent("exp", "conversion")
		metrics.RecordStatusTransition("exp", types.StatusRunning, types.StatusCompleted)
		metrics.RecordStatusTransition("", types.Status(99), types.Status(-1))
		metrics.RecordAutoStop("exp", "automatic: deadline")
		metrics.RecordMonitorPass(0.002, 3)
		metrics.RecordNotificationDropped("assignment")
		metrics.RecordNotificationFailed("status")
	})
}
