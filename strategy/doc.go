// Package strategy provides built-in variant allocation strategies.
//
// A strategy turns a uniform draw in [0,1) into one of an experiment's
// variants. The package includes:
//
//   - CumulativeWeight: Walks variants in declared order accumulating weight
//
// Custom strategies can be implemented by satisfying the types.AllocationStrategy interface
// and passed to the engine with splitter.WithAllocationStrategy.
package strategy
