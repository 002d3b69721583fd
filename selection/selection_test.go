package selection

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/clustgo/distance"
)

// triplePairs builds six points forming three tight pairs: distance 0.1
// inside a pair, 1.0 across pairs.
func triplePairs(t *testing.T) *distance.Matrix {
	t.Helper()

	const n = 6
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			switch {
			case i == j:
			case i/2 == j/2:
				data[i*n+j] = 0.1
			default:
				data[i*n+j] = 1.0
			}
		}
	}

	d, err := distance.NewMatrix(n, data)
	require.NoError(t, err)
	return d
}

// duplicatePairs builds six points on a line with only three distinct
// positions, so at most three clusters can be populated.
func duplicatePairs(t *testing.T) *distance.Matrix {
	t.Helper()

	coords := []float64{0, 0, 1, 1, 2, 2}
	n := len(coords)
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data[i*n+j] = math.Abs(coords[i]-coords[j]) / 2
		}
	}

	d, err := distance.NewMatrix(n, data)
	require.NoError(t, err)
	return d
}

func TestScan_PicksTightestCount(t *testing.T) {
	d := triplePairs(t)

	table, err := Scan(context.Background(), d, Range{Min: 2, Max: 3})
	require.NoError(t, err)

	require.Len(t, table.Candidates, 2)
	assert.Empty(t, table.Skipped)
	assert.Equal(t, 2, table.Candidates[0].K)
	assert.Equal(t, 3, table.Candidates[1].K)

	// Grouping two pairs together dilutes cohesion to 0.5; the true
	// three-pair partition scores 0.9.
	assert.InDelta(t, 0.5, table.Candidates[0].Cohesion, 1e-12)
	assert.InDelta(t, 0.9, table.Candidates[1].Cohesion, 1e-12)

	best := table.Best()
	assert.Equal(t, 3, best.K)
	assert.Len(t, best.Labels, d.N())
	assert.Len(t, best.Medoids, 3)
}

func TestScan_SkipsUnsustainableCounts(t *testing.T) {
	d := duplicatePairs(t)

	table, err := Scan(context.Background(), d, Range{Min: 2, Max: 6})
	require.NoError(t, err)

	// Only three distinct positions exist, so counts above 3 degenerate.
	require.Len(t, table.Candidates, 2)
	assert.Equal(t, []int{4, 5, 6}, table.Skipped)

	c, ok := table.ByK(3)
	require.True(t, ok)
	assert.InDelta(t, 1.0, c.Cohesion, 1e-12)

	assert.Equal(t, 3, table.Best().K)
}

func TestScan_DeterministicAcrossParallelism(t *testing.T) {
	d := triplePairs(t)

	serial, err := Scan(context.Background(), d, Range{Min: 2, Max: 5}, func(o *Options) {
		o.Parallelism = 1
	})
	require.NoError(t, err)

	parallel, err := Scan(context.Background(), d, Range{Min: 2, Max: 5}, func(o *Options) {
		o.Parallelism = 4
	})
	require.NoError(t, err)

	require.Equal(t, serial, parallel)
}

func TestScan_AllCountsDegenerate(t *testing.T) {
	// Four identical points cannot sustain any multi-cluster partition.
	d, err := distance.NewMatrix(4, make([]float64, 16))
	require.NoError(t, err)

	_, err = Scan(context.Background(), d, Range{Min: 2, Max: 4})

	var noViable *ErrNoViableK
	require.ErrorAs(t, err, &noViable)
	assert.Equal(t, 2, noViable.Min)
	assert.Equal(t, 4, noViable.Max)
}

func TestScan_InvalidRange(t *testing.T) {
	d := triplePairs(t)

	var invalid *ErrInvalidRange

	_, err := Scan(context.Background(), d, Range{Min: 1, Max: 3})
	require.ErrorAs(t, err, &invalid)

	_, err = Scan(context.Background(), d, Range{Min: 4, Max: 2})
	require.ErrorAs(t, err, &invalid)
}

func TestScan_Cancellation(t *testing.T) {
	d := triplePairs(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, d, Range{Min: 2, Max: 3})
	require.ErrorIs(t, err, context.Canceled)
}

func TestTable_ByKMissing(t *testing.T) {
	table := &Table{Candidates: []Candidate{{K: 2, Cohesion: 0.4}}}

	_, ok := table.ByK(5)
	assert.False(t, ok)
}

func TestTable_BestTieResolvesToSmallestK(t *testing.T) {
	table := &Table{Candidates: []Candidate{
		{K: 2, Cohesion: 0.7},
		{K: 3, Cohesion: 0.7},
		{K: 4, Cohesion: 0.5},
	}}

	assert.Equal(t, 2, table.Best().K)
}
