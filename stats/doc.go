// Package stats turns aggregated variant metrics into experiment verdicts.
//
// The default method compares each treatment with the control by relative
// difference of the target metric and calls the experiment significant when
// any treatment differs by more than a threshold (5%) with enough participants
// (100) in both arms. Confidence intervals are a symmetric band of +/-10% around
// the metric value at the configured confidence level.
//
// This is a deliberately coarse heuristic. For proportion metrics (conversion
// and retention rates) a pooled two-proportion z-test can be selected with
// WithMethod(MethodTwoProportionZ); continuous metrics keep the relative
// difference rule under either method.
package stats
