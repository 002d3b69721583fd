package profile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/clustgo/feature"
)

func twoClusterRecords() (feature.Schema, []feature.Record, []int) {
	schema := feature.Schema{
		Continuous:  []string{"age", "constant"},
		Binary:      []string{"exposed"},
		Categorical: []string{"site"},
	}

	recs := []feature.Record{
		{
			Continuous:  map[string]float64{"age": 1, "constant": 5},
			Binary:      map[string]bool{"exposed": false},
			Categorical: map[string]string{"site": "north"},
		},
		{
			Continuous:  map[string]float64{"age": 2, "constant": 5},
			Binary:      map[string]bool{"exposed": false},
			Categorical: map[string]string{"site": "north"},
		},
		{
			Continuous: map[string]float64{"age": 3, "constant": 5},
			Binary:     map[string]bool{"exposed": true},
		},
		{
			Continuous:  map[string]float64{"age": 10, "constant": 5},
			Binary:      map[string]bool{"exposed": true},
			Categorical: map[string]string{"site": "south"},
		},
		{
			Continuous:  map[string]float64{"age": 11, "constant": 5},
			Binary:      map[string]bool{"exposed": true},
			Categorical: map[string]string{"site": "south"},
		},
		{
			Continuous:  map[string]float64{"age": 12, "constant": 5},
			Binary:      map[string]bool{"exposed": true},
			Categorical: map[string]string{"site": "south"},
		},
	}

	return schema, recs, []int{0, 0, 0, 1, 1, 1}
}

func TestBuild_Profiles(t *testing.T) {
	schema, recs, labels := twoClusterRecords()

	s, err := Build(schema, recs, labels)
	require.NoError(t, err)
	require.Len(t, s.Clusters, 2)

	first := s.Clusters[0]
	assert.Equal(t, 0, first.Cluster)
	assert.Equal(t, 3, first.Size)

	age := first.Continuous["age"]
	assert.InDelta(t, 2.0, age.Mean, 1e-12)
	assert.InDelta(t, 1.0, age.Std, 1e-12)
	assert.Equal(t, 3, age.Count)

	assert.InDelta(t, 1.0/3.0, first.BinaryRates["exposed"], 1e-12)

	// The record without a site falls into the unknown category.
	assert.Equal(t, map[string]int{"north": 2, feature.DefaultUnknownCategory: 1}, first.Categories["site"])

	second := s.Clusters[1]
	assert.Equal(t, 3, second.Size)
	assert.InDelta(t, 11.0, second.Continuous["age"].Mean, 1e-12)
	assert.InDelta(t, 1.0, second.BinaryRates["exposed"], 1e-12)
	assert.Equal(t, map[string]int{"south": 3}, second.Categories["site"])
}

func TestBuild_RankTests(t *testing.T) {
	schema, recs, labels := twoClusterRecords()

	s, err := Build(schema, recs, labels)
	require.NoError(t, err)

	// The constant attribute is untestable and omitted; age and exposed
	// remain, in schema order.
	require.Len(t, s.Tests, 2)

	age := s.Tests[0]
	assert.Equal(t, "age", age.Variable)
	assert.InDelta(t, 3.857142857142857, age.H, 1e-9)
	assert.Equal(t, 1, age.DF)
	assert.InDelta(t, 0.0495, age.PValue, 1e-3)
	assert.True(t, age.Significant)

	exposed := s.Tests[1]
	assert.Equal(t, "exposed", exposed.Variable)
	assert.InDelta(t, 2.5, exposed.H, 1e-9)
	assert.Equal(t, 1, exposed.DF)
	assert.InDelta(t, 0.1138, exposed.PValue, 1e-3)
	assert.False(t, exposed.Significant)
}

func TestBuild_PerfectBinarySeparation(t *testing.T) {
	schema := feature.Schema{Binary: []string{"flag"}}

	var recs []feature.Record
	for i := 0; i < 6; i++ {
		recs = append(recs, feature.Record{
			Binary: map[string]bool{"flag": i >= 3},
		})
	}

	s, err := Build(schema, recs, []int{0, 0, 0, 1, 1, 1})
	require.NoError(t, err)

	require.Len(t, s.Tests, 1)
	assert.InDelta(t, 5.0, s.Tests[0].H, 1e-9)
	assert.True(t, s.Tests[0].Significant)
}

func TestBuild_SingletonClusterMoments(t *testing.T) {
	schema := feature.Schema{Continuous: []string{"age"}}
	recs := []feature.Record{
		{Continuous: map[string]float64{"age": 1}},
		{Continuous: map[string]float64{"age": 2}},
		{Continuous: map[string]float64{"age": 10}},
	}

	s, err := Build(schema, recs, []int{0, 0, 1})
	require.NoError(t, err)

	m := s.Clusters[1].Continuous["age"]
	assert.InDelta(t, 10.0, m.Mean, 1e-12)
	assert.True(t, math.IsNaN(m.Std))
	assert.Equal(t, 1, m.Count)
}

func TestBuild_OmitsUnobservedGroups(t *testing.T) {
	schema := feature.Schema{Continuous: []string{"titer"}}
	recs := []feature.Record{
		{Continuous: map[string]float64{"titer": 1}},
		{Continuous: map[string]float64{"titer": 2}},
		{}, // cluster 1 never observes titer
	}

	s, err := Build(schema, recs, []int{0, 0, 1})
	require.NoError(t, err)

	assert.Empty(t, s.Tests)
	_, ok := s.Clusters[1].Continuous["titer"]
	assert.False(t, ok)
}

func TestBuild_SingleClusterHasNoTests(t *testing.T) {
	schema, recs, _ := twoClusterRecords()

	s, err := Build(schema, recs, []int{0, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	require.Len(t, s.Clusters, 1)
	assert.Empty(t, s.Tests)
}

func TestBuild_InvalidLabels(t *testing.T) {
	schema, recs, _ := twoClusterRecords()

	_, err := Build(schema, recs, []int{0, 1})
	require.ErrorIs(t, err, ErrInvalidLabels)

	_, err = Build(schema, recs, []int{0, 0, 0, 1, 1, -1})
	require.ErrorIs(t, err, ErrInvalidLabels)

	_, err = Build(schema, nil, nil)
	require.ErrorIs(t, err, ErrInvalidLabels)
}
