package feature

import "fmt"

// DefaultUnknownCategory is the indicator category assigned to records that
// lack a categorical attribute.
const DefaultUnknownCategory = "unknown"

// Kind identifies how a matrix column was derived and how distance
// computations must treat it.
type Kind int

const (
	// KindContinuous marks a standardized real-valued column.
	KindContinuous Kind = iota
	// KindBinary marks a 0/1 flag column.
	KindBinary
	// KindCategorical marks a one-hot indicator column.
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindContinuous:
		return "Continuous"
	case KindBinary:
		return "Binary"
	case KindCategorical:
		return "Categorical"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Record is a single subject. Values are keyed by attribute name; an absent
// key means the value was not observed.
type Record struct {
	Continuous  map[string]float64
	Binary      map[string]bool
	Categorical map[string]string
}

// Schema declares the attributes the encoder reads from each record.
// Attribute order is preserved in the encoded matrix: continuous columns
// first, then binary, then the one-hot expansion of each categorical
// attribute with categories sorted lexicographically.
type Schema struct {
	Continuous  []string
	Binary      []string
	Categorical []string
}

// Empty reports whether the schema declares no attributes.
func (s Schema) Empty() bool {
	return len(s.Continuous)+len(s.Binary)+len(s.Categorical) == 0
}

// Column describes one encoded matrix column. Indicator columns are named
// "attribute=category".
type Column struct {
	Name string
	Kind Kind
}

// Matrix is an immutable row-major feature matrix with per-column kind tags.
type Matrix struct {
	rows, cols int
	data       []float64
	columns    []Column
}

// Rows returns the number of records.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of encoded columns.
func (m *Matrix) Cols() int { return m.cols }

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.cols+j] }

// Row returns row i. The slice aliases the matrix storage and must not be
// modified.
func (m *Matrix) Row(i int) []float64 { return m.data[i*m.cols : (i+1)*m.cols] }

// Columns returns the column descriptors in matrix order. The slice aliases
// the matrix storage and must not be modified.
func (m *Matrix) Columns() []Column { return m.columns }

// ColumnValues returns a copy of column j.
func (m *Matrix) ColumnValues(j int) []float64 {
	out := make([]float64, m.rows)
	for i := range out {
		out[i] = m.data[i*m.cols+j]
	}
	return out
}

// Subset returns a new matrix containing the given rows in the given order.
// Column descriptors are shared with the parent.
func (m *Matrix) Subset(rows []int) *Matrix {
	data := make([]float64, 0, len(rows)*m.cols)
	for _, r := range rows {
		data = append(data, m.Row(r)...)
	}
	return &Matrix{rows: len(rows), cols: m.cols, data: data, columns: m.columns}
}
