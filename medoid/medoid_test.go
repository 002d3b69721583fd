package medoid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/clustgo/distance"
)

// twoPairs builds four points forming two tight pairs: {0,1} and {2,3}.
// Within-pair distance is 0.1, across-pair distance 1.0.
func twoPairs(t *testing.T) *distance.Matrix {
	t.Helper()

	d, err := distance.NewMatrix(4, []float64{
		0, 0.1, 1, 1,
		0.1, 0, 1, 1,
		1, 1, 0, 0.1,
		1, 1, 0.1, 0,
	})
	require.NoError(t, err)
	return d
}

// line builds five evenly spaced points on a line.
func line(t *testing.T) *distance.Matrix {
	t.Helper()

	const n = 5
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			diff := float64(i - j)
			if diff < 0 {
				diff = -diff
			}
			data[i*n+j] = diff / float64(n-1)
		}
	}
	d, err := distance.NewMatrix(n, data)
	require.NoError(t, err)
	return d
}

func TestPartition_TwoClusters(t *testing.T) {
	res, err := Partition(context.Background(), twoPairs(t), 2)
	require.NoError(t, err)

	require.Len(t, res.Labels, 4)
	require.Len(t, res.Medoids, 2)

	assert.Equal(t, res.Labels[0], res.Labels[1])
	assert.Equal(t, res.Labels[2], res.Labels[3])
	assert.NotEqual(t, res.Labels[0], res.Labels[2])

	// One medoid per pair, each pair's non-medoid at distance 0.1.
	assert.InDelta(t, 0.2, res.Cost, 1e-12)
}

func TestPartition_Invariants(t *testing.T) {
	d := line(t)

	res, err := Partition(context.Background(), d, 2)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, m := range res.Medoids {
		assert.False(t, seen[m], "medoid %d repeated", m)
		seen[m] = true
	}

	var cost float64
	for i, l := range res.Labels {
		require.GreaterOrEqual(t, l, 0)
		require.Less(t, l, 2)
		cost += d.At(i, res.Medoids[l])
	}
	assert.InDelta(t, res.Cost, cost, 1e-12)

	// Every medoid belongs to its own slot.
	for s, m := range res.Medoids {
		assert.Equal(t, s, res.Labels[m])
	}
}

func TestPartition_SingleCluster(t *testing.T) {
	res, err := Partition(context.Background(), line(t), 1)
	require.NoError(t, err)

	// The 1-medoid optimum on an even line is the middle point.
	assert.Equal(t, []int{2}, res.Medoids)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, res.Labels)
}

func TestPartition_KEqualsN(t *testing.T) {
	res, err := Partition(context.Background(), line(t), 5)
	require.NoError(t, err)

	assert.Zero(t, res.Cost)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, res.Medoids)
}

func TestPartition_InvalidK(t *testing.T) {
	var invalid *ErrInvalidK

	_, err := Partition(context.Background(), twoPairs(t), 5)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 5, invalid.K)
	assert.Equal(t, 4, invalid.N)

	_, err = Partition(context.Background(), twoPairs(t), 0)
	require.ErrorAs(t, err, &invalid)
}

func TestPartition_DuplicatesDegenerate(t *testing.T) {
	// Three coincident points cannot support two clusters.
	d, err := distance.NewMatrix(3, []float64{
		0, 0, 0,
		0, 0, 0,
		0, 0, 0,
	})
	require.NoError(t, err)

	var degenerate *ErrDegenerate
	_, err = Partition(context.Background(), d, 2)
	require.ErrorAs(t, err, &degenerate)
	assert.Equal(t, 2, degenerate.K)
}

func TestPartition_Deterministic(t *testing.T) {
	d := line(t)

	a, err := Partition(context.Background(), d, 2, func(o *Options) {
		o.Seed = 42
	})
	require.NoError(t, err)

	b, err := Partition(context.Background(), d, 2, func(o *Options) {
		o.Seed = 42
	})
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestPartition_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Partition(ctx, line(t), 2)
	require.ErrorIs(t, err, context.Canceled)
}
