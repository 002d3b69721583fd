package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Continuous", KindContinuous.String())
	assert.Equal(t, "Binary", KindBinary.String())
	assert.Equal(t, "Categorical", KindCategorical.String())
	assert.Equal(t, "Unknown(99)", Kind(99).String())
}

func TestSchema_Empty(t *testing.T) {
	assert.True(t, Schema{}.Empty())
	assert.False(t, Schema{Binary: []string{"flag"}}.Empty())
}

func TestMatrix_Subset(t *testing.T) {
	m, err := NewEncoder(testSchema()).Encode(testRecords())
	require.NoError(t, err)

	sub := m.Subset([]int{2, 0})

	require.Equal(t, 2, sub.Rows())
	require.Equal(t, m.Cols(), sub.Cols())
	assert.Equal(t, m.Columns(), sub.Columns())

	for j := 0; j < m.Cols(); j++ {
		assert.Equal(t, m.At(2, j), sub.At(0, j))
		assert.Equal(t, m.At(0, j), sub.At(1, j))
	}
}

func TestMatrix_ColumnValues(t *testing.T) {
	m, err := NewEncoder(testSchema()).Encode(testRecords())
	require.NoError(t, err)

	flags := m.ColumnValues(1)
	assert.Equal(t, []float64{1, 0, 1}, flags)
}

func TestImputePolicy_String(t *testing.T) {
	assert.Equal(t, "Median", ImputeMedian.String())
	assert.Equal(t, "Mean", ImputeMean.String())
	assert.Equal(t, "None", ImputeNone.String())
}
