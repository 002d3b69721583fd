package testutil

import (
	"maps"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/clustgo/feature"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NormFloat64 returns a standard normal pseudo-random number.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// GroupSpec describes one synthetic group of records.
type GroupSpec struct {
	// Size is the number of records in the group.
	Size int

	// Continuous maps attribute names to the group mean; values scatter
	// around the mean by Spread.
	Continuous map[string]float64

	// Spread is the standard deviation of every continuous attribute.
	Spread float64

	// Binary maps attribute names to the probability of true.
	Binary map[string]float64

	// Categorical maps attribute names to the group's fixed category.
	Categorical map[string]string
}

// GroupedRecords generates records group by group and returns them together
// with the group index of each record. Attributes are drawn in sorted name
// order, so a fixed RNG yields identical records on every call.
func GroupedRecords(rng *RNG, groups []GroupSpec) ([]feature.Record, []int) {
	var recs []feature.Record
	var labels []int

	for g, spec := range groups {
		for i := 0; i < spec.Size; i++ {
			var rec feature.Record

			if len(spec.Continuous) > 0 {
				rec.Continuous = make(map[string]float64, len(spec.Continuous))
				names := make([]string, 0, len(spec.Continuous))
				for name := range spec.Continuous {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					rec.Continuous[name] = spec.Continuous[name] + rng.NormFloat64()*spec.Spread
				}
			}
			if len(spec.Binary) > 0 {
				rec.Binary = make(map[string]bool, len(spec.Binary))
				names := make([]string, 0, len(spec.Binary))
				for name := range spec.Binary {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					rec.Binary[name] = rng.Float64() < spec.Binary[name]
				}
			}
			if len(spec.Categorical) > 0 {
				rec.Categorical = maps.Clone(spec.Categorical)
			}

			recs = append(recs, rec)
			labels = append(labels, g)
		}
	}

	return recs, labels
}

// TwoGroupSchema declares the attributes TwoGroupRecords generates.
func TwoGroupSchema() feature.Schema {
	return feature.Schema{
		Continuous:  []string{"age", "titer"},
		Binary:      []string{"exposed"},
		Categorical: []string{"site"},
	}
}

// TwoGroupRecords generates n records forming two well-separated groups,
// split evenly (an odd n puts the extra record in the second group). The
// groups differ in every attribute; the site category correlates perfectly
// with group membership. Returned labels mark the true group of each record.
func TwoGroupRecords(rng *RNG, n int) ([]feature.Record, []int) {
	half := n / 2

	return GroupedRecords(rng, []GroupSpec{
		{
			Size:        half,
			Continuous:  map[string]float64{"age": 18, "titer": 2},
			Spread:      1.5,
			Binary:      map[string]float64{"exposed": 0.05},
			Categorical: map[string]string{"site": "north"},
		},
		{
			Size:        n - half,
			Continuous:  map[string]float64{"age": 60, "titer": 9},
			Spread:      1.5,
			Binary:      map[string]float64{"exposed": 0.95},
			Categorical: map[string]string{"site": "south"},
		},
	})
}

// SamePartition reports whether two labelings group points identically,
// ignoring label identities.
func SamePartition(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	fwd := make(map[int]int)
	rev := make(map[int]int)
	for i := range a {
		if m, ok := fwd[a[i]]; ok && m != b[i] {
			return false
		}
		if m, ok := rev[b[i]]; ok && m != a[i] {
			return false
		}
		fwd[a[i]] = b[i]
		rev[b[i]] = a[i]
	}
	return true
}
