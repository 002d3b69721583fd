package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{
		Continuous:  []string{"age"},
		Binary:      []string{"flag"},
		Categorical: []string{"color"},
	}
}

func testRecords() []Record {
	return []Record{
		{
			Continuous:  map[string]float64{"age": 2},
			Binary:      map[string]bool{"flag": true},
			Categorical: map[string]string{"color": "red"},
		},
		{
			Continuous:  map[string]float64{"age": 4},
			Binary:      map[string]bool{"flag": false},
			Categorical: map[string]string{"color": "blue"},
		},
		{
			Continuous:  map[string]float64{"age": 6},
			Binary:      map[string]bool{"flag": true},
			Categorical: map[string]string{"color": "red"},
		},
	}
}

func TestEncoder_ColumnLayout(t *testing.T) {
	enc := NewEncoder(testSchema())

	m, err := enc.Encode(testRecords())
	require.NoError(t, err)

	require.Equal(t, 3, m.Rows())
	require.Equal(t, 4, m.Cols())

	cols := m.Columns()
	assert.Equal(t, Column{Name: "age", Kind: KindContinuous}, cols[0])
	assert.Equal(t, Column{Name: "flag", Kind: KindBinary}, cols[1])
	assert.Equal(t, Column{Name: "color=blue", Kind: KindCategorical}, cols[2])
	assert.Equal(t, Column{Name: "color=red", Kind: KindCategorical}, cols[3])

	// One-hot: record 1 is blue, the others red.
	assert.Equal(t, 0.0, m.At(0, 2))
	assert.Equal(t, 1.0, m.At(0, 3))
	assert.Equal(t, 1.0, m.At(1, 2))
	assert.Equal(t, 0.0, m.At(1, 3))

	// Binary 0/1.
	assert.Equal(t, 1.0, m.At(0, 1))
	assert.Equal(t, 0.0, m.At(1, 1))
}

func TestEncoder_Standardize(t *testing.T) {
	enc := NewEncoder(testSchema())

	m, err := enc.Encode(testRecords())
	require.NoError(t, err)

	// Values 2, 4, 6: mean 4, population std sqrt(8/3).
	assert.InDelta(t, -1.2247, m.At(0, 0), 1e-4)
	assert.InDelta(t, 0.0, m.At(1, 0), 1e-12)
	assert.InDelta(t, 1.2247, m.At(2, 0), 1e-4)
}

func TestEncoder_ConstantColumnCollapsesToZero(t *testing.T) {
	recs := testRecords()
	for i := range recs {
		recs[i].Continuous["age"] = 7
	}

	m, err := NewEncoder(testSchema()).Encode(recs)
	require.NoError(t, err)

	for i := range recs {
		assert.Zero(t, m.At(i, 0))
	}
}

func TestEncoder_MedianImpute(t *testing.T) {
	schema := Schema{Continuous: []string{"age"}}
	recs := []Record{
		{Continuous: map[string]float64{"age": 1}},
		{Continuous: map[string]float64{}},
		{Continuous: map[string]float64{"age": 3}},
		{Continuous: map[string]float64{"age": 100}},
	}

	enc := NewEncoder(schema, func(o *Options) {
		o.Standardize = false
	})

	m, err := enc.Encode(recs)
	require.NoError(t, err)

	// Median of the observed values {1, 3, 100} is 3.
	assert.Equal(t, 3.0, m.At(1, 0))
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 100.0, m.At(3, 0))
}

func TestEncoder_MeanImpute(t *testing.T) {
	schema := Schema{Continuous: []string{"age"}}
	recs := []Record{
		{Continuous: map[string]float64{"age": 2}},
		{Continuous: map[string]float64{"age": 4}},
		{Continuous: nil},
	}

	enc := NewEncoder(schema, func(o *Options) {
		o.Impute = ImputeMean
		o.Standardize = false
	})

	m, err := enc.Encode(recs)
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.At(2, 0))
}

func TestEncoder_ImputeNoneRejectsMissing(t *testing.T) {
	schema := Schema{Continuous: []string{"age"}}
	recs := []Record{
		{Continuous: map[string]float64{"age": 2}},
		{Continuous: nil},
	}

	enc := NewEncoder(schema, func(o *Options) {
		o.Impute = ImputeNone
	})

	_, err := enc.Encode(recs)

	var missing *ErrMissingAttribute
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, missing.Record)
	assert.Equal(t, "age", missing.Attribute)
}

func TestEncoder_AllMissingContinuous(t *testing.T) {
	schema := Schema{Continuous: []string{"age"}}
	recs := []Record{{}, {}}

	_, err := NewEncoder(schema).Encode(recs)

	var missing *ErrMissingAttribute
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "age", missing.Attribute)
}

func TestEncoder_MissingBinary(t *testing.T) {
	schema := Schema{Binary: []string{"flag"}}
	recs := []Record{
		{Binary: map[string]bool{"flag": true}},
		{Binary: nil},
	}

	_, err := NewEncoder(schema).Encode(recs)

	var missing *ErrMissingAttribute
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, missing.Record)
	assert.Equal(t, "flag", missing.Attribute)
}

func TestEncoder_MissingCategoricalBecomesUnknown(t *testing.T) {
	schema := Schema{Categorical: []string{"color"}}
	recs := []Record{
		{Categorical: map[string]string{"color": "red"}},
		{Categorical: nil},
	}

	m, err := NewEncoder(schema).Encode(recs)
	require.NoError(t, err)

	require.Equal(t, 2, m.Cols())
	assert.Equal(t, "color=red", m.Columns()[0].Name)
	assert.Equal(t, "color=unknown", m.Columns()[1].Name)
	assert.Equal(t, 1.0, m.At(1, 1))
	assert.Equal(t, 0.0, m.At(1, 0))
}

func TestEncoder_EmptyInput(t *testing.T) {
	_, err := NewEncoder(testSchema()).Encode(nil)
	require.ErrorIs(t, err, ErrNoRecords)

	_, err = NewEncoder(Schema{}).Encode(testRecords())
	require.ErrorIs(t, err, ErrEmptySchema)
}

func TestEncoder_Deterministic(t *testing.T) {
	enc := NewEncoder(testSchema())

	a, err := enc.Encode(testRecords())
	require.NoError(t, err)
	b, err := enc.Encode(testRecords())
	require.NoError(t, err)

	require.Equal(t, a, b)
}
