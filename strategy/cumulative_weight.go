package strategy

import (
	"github.com/arloliu/splitter/internal/logger"
	"github.com/arloliu/splitter/types"
)

// CumulativeWeight implements weight-proportional variant allocation.
type CumulativeWeight struct {
	logger types.Logger
}

var _ types.AllocationStrategy = (*CumulativeWeight)(nil)

// CumulativeWeightOption configures a CumulativeWeight strategy.
type CumulativeWeightOption func(*CumulativeWeight)

// WithLogger sets the logger used for rounding-drift diagnostics.
func WithLogger(l types.Logger) CumulativeWeightOption {
	return func(cw *CumulativeWeight) {
		cw.logger = l
	}
}

// NewCumulativeWeight creates a new cumulative weight strategy.
//
// Parameters:
//   - opts: Optional configuration (WithLogger)
//
// Returns:
//   - *CumulativeWeight: Initialized strategy ready for use
//
// Example:
//
//	alloc := strategy.NewCumulativeWeight()
//	engine, err := splitter.NewEngine(&cfg, splitter.WithAllocationStrategy(alloc))
func NewCumulativeWeight(opts ...CumulativeWeightOption) *CumulativeWeight {
	cw := &CumulativeWeight{logger: logger.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(cw)
		}
	}
	if cw.logger == nil {
		cw.logger = logger.NewNop()
	}

	return cw
}

// Allocate selects the first variant whose cumulative weight reaches the draw.
//
// The algorithm:
//  1. Walk variants in declared order, accumulating weight
//  2. Return the first index whose cumulative weight is >= draw
//  3. If rounding drift leaves the draw above the total weight, return the last variant
//
// Step 3 is a safety net, not a validation failure: definitions are validated
// to sum to 1 within tolerance before they can run.
//
// Parameters:
//   - variants: Variants in declared order
//   - draw: Uniform value in [0,1)
//
// Returns:
//   - int: Index of the selected variant
//   - error: ErrNoVariants if variants is empty, nil otherwise
func (cw *CumulativeWeight) Allocate(variants []types.Variant, draw float64) (int, error) {
	if len(variants) == 0 {
		return -1, ErrNoVariants
	}

	cumulative := 0.0
	for i, v := range variants {
		cumulative += v.Weight
		if cumulative >= draw {
			return i, nil
		}
	}

	cw.logger.Debug("draw exceeded cumulative weight, using last variant",
		"draw", draw,
		"cumulative", cumulative,
		"variant_id", variants[len(variants)-1].ID,
	)

	return len(variants) - 1, nil
}
