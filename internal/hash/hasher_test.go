package hash

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	require.Equal(t, DefaultResolution, New(0, 0).Resolution())
	require.Equal(t, uint64(10_000), New(10_000, 0).Resolution())
}

func TestHasher_Deterministic(t *testing.T) {
	h := New(0, 0)

	for _, user := range []string{"user-1", "user-2", "", "ünïcødé"} {
		first := h.Draw(user, "exp-1", SaltTraffic)
		for range 5 {
			require.Equal(t, first, h.Draw(user, "exp-1", SaltTraffic), "user %q not stable", user)
		}

		// A fresh hasher with the same parameters agrees.
		require.Equal(t, first, New(0, 0).Draw(user, "exp-1", SaltTraffic))
	}
}

func TestHasher_Range(t *testing.T) {
	h := New(1000, 7)

	for i := range 10_000 {
		d := h.Draw(fmt.Sprintf("user-%d", i), "exp", SaltVariant)
		require.GreaterOrEqual(t, d, 0.0)
		require.Less(t, d, 1.0)
	}
}

func TestHasher_Uniform(t *testing.T) {
	h := New(0, 0)
	const (
		users   = 100_000
		buckets = 10
	)

	counts := make([]int, buckets)
	for i := range users {
		d := h.Draw(fmt.Sprintf("user-%d", i), "uniformity", SaltTraffic)
		counts[int(d*buckets)]++
	}

	expected := users / buckets
	for i, c := range counts {
		require.InDelta(t, expected, c, float64(expected)*0.05, "bucket %d skewed", i)
	}
}

func TestHasher_ExperimentsDoNotCorrelate(t *testing.T) {
	h := New(0, 0)
	const users = 20_000

	// Users in the lower half for experiment A should split evenly in experiment B.
	var lowA, lowBoth int
	for i := range users {
		user := fmt.Sprintf("user-%d", i)
		if h.Draw(user, "exp-a", SaltTraffic) < 0.5 {
			lowA++
			if h.Draw(user, "exp-b", SaltTraffic) < 0.5 {
				lowBoth++
			}
		}
	}

	share := float64(lowBoth) / float64(lowA)
	require.InDelta(t, 0.5, share, 0.03)
}

func TestHasher_SaltsAreIndependent(t *testing.T) {
	h := New(0, 0)
	const users = 20_000

	var sumXY, sumX, sumY, sumX2, sumY2 float64
	for i := range users {
		user := fmt.Sprintf("user-%d", i)
		x := h.Draw(user, "exp", SaltTraffic)
		y := h.Draw(user, "exp", SaltVariant)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
		sumY2 += y * y
	}

	n := float64(users)
	cov := sumXY/n - (sumX/n)*(sumY/n)
	corr := cov / math.Sqrt((sumX2/n-math.Pow(sumX/n, 2))*(sumY2/n-math.Pow(sumY/n, 2)))
	require.Less(t, math.Abs(corr), 0.05)
}

func TestHasher_SeedChangesBuckets(t *testing.T) {
	a := New(0, 0)
	b := New(0, 42)

	differ := 0
	for i := range 100 {
		user := fmt.Sprintf("user-%d", i)
		if a.Bucket(user, "exp", SaltTraffic) != b.Bucket(user, "exp", SaltTraffic) {
			differ++
		}
	}
	require.Greater(t, differ, 90)
}

func BenchmarkHasher_Draw(b *testing.B) {
	h := New(0, 0)
	b.ReportAllocs()
	for b.Loop() {
		_ = h.Draw("user-123456", "experiment-checkout", SaltVariant)
	}
}
