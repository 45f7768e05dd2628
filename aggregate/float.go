package aggregate

import (
	"math"
	"sync/atomic"
)

// Float is a float64 accumulator updated with compare-and-swap.
type Float struct {
	bits atomic.Uint64
}

// Add adds delta and returns the new value.
func (f *Float) Add(delta float64) float64 {
	for {
		old := f.bits.Load()
		next := math.Float64frombits(old) + delta
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// Value returns the current value.
func (f *Float) Value() float64 {
	return math.Float64frombits(f.bits.Load())
}
