// Package hash provides the deterministic bucketing hash used for traffic gating
// and variant allocation.
package hash

import "github.com/zeebo/xxh3"

const (
	// DefaultResolution is the number of buckets a draw is quantized to.
	DefaultResolution uint64 = 1_000_000

	// SaltTraffic separates the traffic-allocation draw from other draws.
	SaltTraffic = "traffic"

	// SaltVariant separates the variant-allocation draw from other draws.
	SaltVariant = "variant"
)

// Hasher maps (user, experiment) pairs to uniform values in [0,1).
//
// The experiment ID is folded into the hash before the user ID, so the same
// user lands in unrelated buckets across experiments. Hasher is stateless and
// safe for concurrent use.
type Hasher struct {
	resolution uint64

	// seed for hash function (0 means no seed)
	seed uint64
}

// New creates a new Hasher.
//
// Parameters:
//   - resolution: Number of buckets (0 selects DefaultResolution)
//   - seed: Seed for hash function (use 0 for the unseeded xxh3 variant)
//
// Returns:
//   - *Hasher: Initialized hasher
//
// Example:
//
//	h := hash.New(0, 0)
//	gate := h.Draw("user-42", "checkout-button", hash.SaltTraffic)
func New(resolution uint64, seed uint64) *Hasher {
	if resolution == 0 {
		resolution = DefaultResolution
	}

	return &Hasher{resolution: resolution, seed: seed}
}

// Resolution returns the number of buckets a draw is quantized to.
func (h *Hasher) Resolution() uint64 {
	return h.resolution
}

// Bucket returns the bucket index in [0, resolution) for the inputs.
//
// Fold experimentID, then salt, then userID, using each previous hash as the
// seed for the next one. This avoids building a concatenated string and keeps
// the three inputs from aliasing each other ("ab"+"c" vs "a"+"bc").
func (h *Hasher) Bucket(userID, experimentID, salt string) uint64 {
	var sum uint64
	if h.seed != 0 {
		sum = xxh3.HashStringSeed(experimentID, h.seed)
	} else {
		sum = xxh3.HashString(experimentID)
	}
	sum = xxh3.HashStringSeed(salt, sum)
	sum = xxh3.HashStringSeed(userID, sum)

	return sum % h.resolution
}

// Draw returns a uniform value in [0,1) for the inputs.
//
// Parameters:
//   - userID: User being bucketed
//   - experimentID: Experiment being evaluated
//   - salt: Purpose of the draw (SaltTraffic, SaltVariant)
//
// Returns:
//   - float64: Bucket / resolution
func (h *Hasher) Draw(userID, experimentID, salt string) float64 {
	return float64(h.Bucket(userID, experimentID, salt)) / float64(h.resolution)
}
