package testutil

import (
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ResourceSample captures resource usage at a point in time.
type ResourceSample struct {
	Timestamp      time.Time
	HeapMB         float64
	GoroutineCount int
}

// TakeSample records the current heap size and goroutine count.
func TakeSample() ResourceSample {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return ResourceSample{
		Timestamp:      time.Now(),
		HeapMB:         float64(m.HeapAlloc) / 1024 / 1024,
		GoroutineCount: runtime.NumGoroutine(),
	}
}

// String returns a human-readable form of the sample.
func (s ResourceSample) String() string {
	return fmt.Sprintf("heap=%.2fMB goroutines=%d", s.HeapMB, s.GoroutineCount)
}

// RequireGoroutinesSettle waits until the goroutine count drops back to
// within tolerance of baseline.
//
// Engine shutdown is asynchronous at the edges (NATS client goroutines,
// timers), so the count is polled rather than read once.
//
// Parameters:
//   - t: Testing context
//   - baseline: Sample taken before the component under test started
//   - tolerance: Extra goroutines allowed to remain
//   - timeout: How long to wait
func RequireGoroutinesSettle(t *testing.T, baseline ResourceSample, tolerance int, timeout time.Duration) {
	t.Helper()

	require.Eventually(t, func() bool {
		return TakeSample().GoroutineCount <= baseline.GoroutineCount+tolerance
	}, timeout, 20*time.Millisecond, "goroutines did not settle back to baseline %s", baseline)
}
