// Package sampling provides seeded index-sampling primitives shared by the
// clustering and validation stages.
package sampling

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// WithoutReplacement draws m distinct indices from [0, n) using r and returns
// them sorted ascending. Callers must ensure 0 <= m <= n.
func WithoutReplacement(r *rand.Rand, n, m int) []int {
	idx := r.Perm(n)[:m]
	sort.Ints(idx)
	return idx
}

// PickWeighted spins a single roulette over the non-negative weights and
// returns the selected index, or -1 when every weight is zero.
func PickWeighted(r *rand.Rand, weights []float64) int {
	total := floats.Sum(weights)
	if total <= 0 {
		return -1
	}

	target := r.Float64() * total
	cum := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		cum += w
		if cum >= target {
			return i
		}
	}
	// Rounding can leave cum a hair below target on the final positive
	// weight; fall back to it.
	return last
}
