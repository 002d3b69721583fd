package medoid

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/clustgo/distance"
	"github.com/hupe1980/clustgo/internal/sampling"
)

// ErrInvalidK indicates the requested cluster count is outside [1, n].
type ErrInvalidK struct {
	K, N int
}

func (e *ErrInvalidK) Error() string {
	return fmt.Sprintf("k=%d outside valid range [1, %d]", e.K, e.N)
}

// ErrDegenerate indicates the data cannot sustain k non-empty clusters,
// typically because of duplicate points.
type ErrDegenerate struct {
	K, Populated int
}

func (e *ErrDegenerate) Error() string {
	return fmt.Sprintf("partition collapsed to %d of %d clusters", e.Populated, e.K)
}

// Options represents the options for configuring Partition.
type Options struct {
	// Seed feeds the medoid seeding RNG.
	Seed int64

	// MaxIterations bounds the number of swap sweeps.
	MaxIterations int
}

// DefaultOptions are the options used when none are supplied.
var DefaultOptions = Options{
	Seed:          1,
	MaxIterations: 300,
}

// Result is a k-medoids partition.
type Result struct {
	// Labels assigns each point the slot (0..k-1) of its medoid.
	Labels []int

	// Medoids holds the point index of each medoid by slot.
	Medoids []int

	// Cost is the sum of distances from every point to its medoid.
	Cost float64

	// Iterations is the number of swap sweeps applied.
	Iterations int
}

// Partition clusters the points of d into k groups around medoids.
//
// It returns ErrInvalidK when k is outside [1, n] and ErrDegenerate when the
// points cannot support k distinct clusters. With a fixed seed the partition
// is fully deterministic.
func Partition(ctx context.Context, d *distance.Matrix, k int, optFns ...func(o *Options)) (*Result, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	n := d.N()
	if k < 1 || k > n {
		return nil, &ErrInvalidK{K: k, N: n}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	medoids, err := seed(rng, d, k)
	if err != nil {
		return nil, err
	}

	asg := assign(d, medoids)
	iters := 0
	for iters < opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slot, candidate, delta := bestSwap(d, medoids, asg)
		if delta >= 0 {
			break
		}
		medoids[slot] = candidate
		asg = assign(d, medoids)
		iters++
	}

	populated := populatedCount(asg.labels, k)
	if populated < k {
		return nil, &ErrDegenerate{K: k, Populated: populated}
	}

	return &Result{
		Labels:     asg.labels,
		Medoids:    medoids,
		Cost:       asg.cost,
		Iterations: iters,
	}, nil
}

// seed picks k initial medoids with k-medoids++ weighting. Points that
// coincide with a chosen medoid carry zero weight, so the chosen medoids are
// always pairwise distinct in space.
func seed(rng *rand.Rand, d *distance.Matrix, k int) ([]int, error) {
	n := d.N()
	medoids := make([]int, 0, k)

	first := rng.Intn(n)
	medoids = append(medoids, first)

	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		v := d.At(i, first)
		weights[i] = v * v
	}

	for len(medoids) < k {
		pick := sampling.PickWeighted(rng, weights)
		if pick < 0 {
			// Every remaining point coincides with a chosen medoid.
			return nil, &ErrDegenerate{K: k, Populated: len(medoids)}
		}
		medoids = append(medoids, pick)
		for i := 0; i < n; i++ {
			v := d.At(i, pick)
			if sq := v * v; sq < weights[i] {
				weights[i] = sq
			}
		}
	}
	return medoids, nil
}

// assignment caches, for every point, its nearest and second-nearest medoid
// distances. The cache makes each swap delta evaluable in O(n).
type assignment struct {
	labels []int
	d1     []float64
	d2     []float64
	cost   float64
}

func assign(d *distance.Matrix, medoids []int) *assignment {
	n := d.N()
	a := &assignment{
		labels: make([]int, n),
		d1:     make([]float64, n),
		d2:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		best, second := math.Inf(1), math.Inf(1)
		slot := 0
		for s, m := range medoids {
			v := d.At(i, m)
			if v < best {
				second = best
				best = v
				slot = s
			} else if v < second {
				second = v
			}
		}
		a.labels[i] = slot
		a.d1[i] = best
		a.d2[i] = second
		a.cost += best
	}
	return a
}

// bestSwap scans every (medoid slot, non-medoid candidate) exchange and
// returns the one with the lowest cost delta. Scan order is fixed, so ties
// resolve deterministically.
func bestSwap(d *distance.Matrix, medoids []int, a *assignment) (slot, candidate int, delta float64) {
	n := d.N()
	isMedoid := make([]bool, n)
	for _, m := range medoids {
		isMedoid[m] = true
	}

	slot, candidate = -1, -1
	for s := range medoids {
		for c := 0; c < n; c++ {
			if isMedoid[c] {
				continue
			}
			var dl float64
			for p := 0; p < n; p++ {
				dpc := d.At(p, c)
				if a.labels[p] == s {
					// p loses its medoid and moves to c or its runner-up.
					dl += math.Min(a.d2[p], dpc) - a.d1[p]
				} else if dpc < a.d1[p] {
					dl += dpc - a.d1[p]
				}
			}
			if dl < delta {
				slot, candidate, delta = s, c, dl
			}
		}
	}
	return slot, candidate, delta
}

func populatedCount(labels []int, k int) int {
	seen := make([]bool, k)
	count := 0
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			count++
		}
	}
	return count
}
