// Package metric provides evaluation metrics for medoid partitions: the
// silhouette cohesion score and the adjusted Rand index.
package metric

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/clustgo/distance"
)

var (
	// ErrSingleCluster is returned by Silhouette when the labeling has fewer
	// than two clusters, where cohesion is undefined.
	ErrSingleCluster = errors.New("cohesion undefined for fewer than two clusters")

	// ErrAllSingletons is returned by Silhouette when every point sits in
	// its own cluster, where cohesion is trivially perfect and meaningless.
	ErrAllSingletons = errors.New("cohesion undefined when every point is its own cluster")

	// ErrInvalidLabels indicates empty, negative, or length-mismatched
	// label assignments.
	ErrInvalidLabels = errors.New("invalid labels")
)

// Silhouette returns the mean silhouette coefficient of the labeling under d.
//
// For each point, a is the mean distance to its own cluster's other members
// (0 for a singleton cluster) and b is the smallest mean distance to any
// other cluster; the point scores (b-a)/max(a,b), or 0 when both terms
// vanish. The mean lies in [-1, 1]; higher means tighter, better separated
// clusters.
//
// The labeling must contain between 2 and n-1 populated clusters.
func Silhouette(d *distance.Matrix, labels []int) (float64, error) {
	n := d.N()
	if len(labels) != n {
		return 0, fmt.Errorf("%w: %d labels for %d points", ErrInvalidLabels, len(labels), n)
	}

	k := 0
	for _, l := range labels {
		if l < 0 {
			return 0, fmt.Errorf("%w: negative label %d", ErrInvalidLabels, l)
		}
		if l+1 > k {
			k = l + 1
		}
	}

	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}
	populated := 0
	for _, s := range sizes {
		if s > 0 {
			populated++
		}
	}
	if populated < 2 {
		return 0, ErrSingleCluster
	}
	if populated == n {
		return 0, ErrAllSingletons
	}

	var total float64
	sums := make([]float64, k)
	for i := 0; i < n; i++ {
		for c := range sums {
			sums[c] = 0
		}
		row := d.Row(i)
		for j, l := range labels {
			sums[l] += row[j]
		}

		li := labels[i]
		a := 0.0
		if sizes[li] > 1 {
			a = sums[li] / float64(sizes[li]-1)
		}

		b := math.Inf(1)
		for c, s := range sizes {
			if c == li || s == 0 {
				continue
			}
			if m := sums[c] / float64(s); m < b {
				b = m
			}
		}

		if mx := math.Max(a, b); mx > 0 {
			total += (b - a) / mx
		}
	}
	return total / float64(n), nil
}

// AdjustedRandIndex measures chance-corrected agreement between two label
// assignments over the same points. Identical partitions score 1,
// independent ones score near 0, and systematic disagreement can go
// negative. Label identities do not matter, only the grouping.
func AdjustedRandIndex(a, b []int) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("%w: lengths %d and %d", ErrInvalidLabels, len(a), len(b))
	}

	type cell struct{ a, b int }
	cont := make(map[cell]int)
	rowSums := make(map[int]int)
	colSums := make(map[int]int)
	for i := range a {
		if a[i] < 0 || b[i] < 0 {
			return 0, fmt.Errorf("%w: negative label", ErrInvalidLabels)
		}
		cont[cell{a[i], b[i]}]++
		rowSums[a[i]]++
		colSums[b[i]]++
	}

	var index, rowPairs, colPairs float64
	for _, v := range cont {
		index += choose2(v)
	}
	for _, v := range rowSums {
		rowPairs += choose2(v)
	}
	for _, v := range colSums {
		colPairs += choose2(v)
	}

	totalPairs := choose2(len(a))
	if totalPairs == 0 {
		return 1, nil
	}

	expected := rowPairs * colPairs / totalPairs
	maxIndex := (rowPairs + colPairs) / 2
	if maxIndex == expected {
		// Both partitions are trivial (all one cluster or all singletons);
		// they agree by convention.
		return 1, nil
	}
	return (index - expected) / (maxIndex - expected), nil
}

func choose2(n int) float64 {
	return float64(n) * float64(n-1) / 2
}
