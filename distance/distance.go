package distance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/clustgo/feature"
)

// ErrNotSymmetric is returned by NewMatrix when the input is not a valid
// symmetric distance matrix with a zero diagonal.
var ErrNotSymmetric = errors.New("not a symmetric zero-diagonal matrix")

// ErrInvalidShape indicates the feature matrix is too small for pairwise
// distance computation.
type ErrInvalidShape struct {
	Rows, Cols int
}

func (e *ErrInvalidShape) Error() string {
	return fmt.Sprintf("pairwise distances need at least 2 rows and 1 column, got %dx%d", e.Rows, e.Cols)
}

// Options represents the options for configuring Gower.
type Options struct {
	// Parallelism bounds the number of concurrent row workers.
	// Defaults to GOMAXPROCS.
	Parallelism int
}

// DefaultOptions are the options used when none are supplied.
var DefaultOptions = Options{}

// Matrix is a symmetric pairwise distance matrix with a zero diagonal,
// stored row-major.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix wraps a precomputed distance matrix given in row-major order.
// It validates shape, symmetry, and a zero diagonal, and takes ownership of
// data.
func NewMatrix(n int, data []float64) (*Matrix, error) {
	if n < 2 {
		return nil, &ErrInvalidShape{Rows: n, Cols: n}
	}
	if len(data) != n*n {
		return nil, fmt.Errorf("matrix data length %d, want %d", len(data), n*n)
	}
	for i := 0; i < n; i++ {
		if data[i*n+i] != 0 {
			return nil, ErrNotSymmetric
		}
		for j := i + 1; j < n; j++ {
			if data[i*n+j] != data[j*n+i] {
				return nil, ErrNotSymmetric
			}
		}
	}
	return &Matrix{n: n, data: data}, nil
}

// N returns the number of points.
func (m *Matrix) N() int { return m.n }

// At returns the distance between points i and j.
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.n+j] }

// Row returns the distances from point i to every point. The slice aliases
// the matrix storage and must not be modified.
func (m *Matrix) Row(i int) []float64 { return m.data[i*m.n : (i+1)*m.n] }

// Gower computes the pairwise Gower dissimilarity matrix for fm.
//
// A continuous column contributes |a-b| divided by the column range, or 0
// when the column is constant; the constant column still counts toward the
// averaging denominator. Binary and categorical indicator columns contribute
// 0 on match and 1 on mismatch. The pair distance is the unweighted mean
// over all columns.
func Gower(ctx context.Context, fm *feature.Matrix, optFns ...func(o *Options)) (*Matrix, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}

	n, cols := fm.Rows(), fm.Cols()
	if n < 2 || cols < 1 {
		return nil, &ErrInvalidShape{Rows: n, Cols: cols}
	}

	continuous := make([]bool, cols)
	invRange := make([]float64, cols)
	for j, col := range fm.Columns() {
		if col.Kind != feature.KindContinuous {
			continue
		}
		continuous[j] = true
		vals := fm.ColumnValues(j)
		if r := floats.Max(vals) - floats.Min(vals); r > 0 {
			invRange[j] = 1 / r
		}
	}

	m := &Matrix{n: n, data: make([]float64, n*n)}

	// Each worker owns one row's upper triangle, so writes never overlap.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for i := 0; i < n-1; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ri := fm.Row(i)
			for j := i + 1; j < n; j++ {
				d := gowerPair(ri, fm.Row(j), continuous, invRange)
				m.data[i*n+j] = d
				m.data[j*n+i] = d
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

func gowerPair(a, b []float64, continuous []bool, invRange []float64) float64 {
	var sum float64
	for j := range a {
		if continuous[j] {
			sum += math.Abs(a[j]-b[j]) * invRange[j]
			continue
		}
		if a[j] != b[j] {
			sum++
		}
	}
	return sum / float64(len(a))
}
