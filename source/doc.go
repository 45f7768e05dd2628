// Package source provides built-in profile source implementations.
//
// Profile sources supply the behavioral attributes used by segmentation.
// The package includes:
//
//   - Static: Fixed set of profiles held in memory
//
// Custom sources can be implemented by satisfying the types.ProfileSource interface.
package source
