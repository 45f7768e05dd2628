package types

// AllocationStrategy selects one variant for a uniform draw.
//
// Strategy implementations should:
//   - Be deterministic (same variants and draw → same index)
//   - Walk variants in a consistent order
//   - Never fail for rounding drift; fall back deterministically instead
//   - Be stateless (called concurrently on the hot path)
type AllocationStrategy interface {
	// Allocate returns the index of the selected variant.
	//
	// Parameters:
	//   - variants: Variants in declared order
	//   - draw: Uniform value in [0,1)
	//
	// Returns:
	//   - int: Index into variants
	//   - error: Non-nil only when variants is empty
	Allocate(variants []Variant, draw float64) (int, error)
}
