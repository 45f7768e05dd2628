package stats

import "math"

// TwoProportionPValue returns the two-sided p-value of a pooled two-proportion z-test.
//
// Returns 1 when either sample is empty or the pooled proportion is 0 or 1,
// where the test statistic is undefined.
func TwoProportionPValue(successesA, totalA, successesB, totalB int64) float64 {
	if totalA <= 0 || totalB <= 0 {
		return 1
	}

	nA, nB := float64(totalA), float64(totalB)
	pA, pB := float64(successesA)/nA, float64(successesB)/nB
	pooled := float64(successesA+successesB) / (nA + nB)

	se := math.Sqrt(pooled * (1 - pooled) * (1/nA + 1/nB))
	if se == 0 || math.IsNaN(se) {
		return 1
	}

	z := (pB - pA) / se

	return math.Erfc(math.Abs(z) / math.Sqrt2)
}
