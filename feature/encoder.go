package feature

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoRecords is returned when there is nothing to encode.
	ErrNoRecords = errors.New("no records to encode")

	// ErrEmptySchema is returned when the schema declares no attributes.
	ErrEmptySchema = errors.New("schema declares no attributes")
)

// ErrMissingAttribute indicates a record lacks an attribute the schema
// requires and no imputation rule can supply it.
type ErrMissingAttribute struct {
	Record    int
	Attribute string
}

func (e *ErrMissingAttribute) Error() string {
	return fmt.Sprintf("record %d: missing attribute %q", e.Record, e.Attribute)
}

// ImputePolicy selects how missing continuous values are filled.
type ImputePolicy int

const (
	// ImputeMedian fills missing continuous values with the column median.
	ImputeMedian ImputePolicy = iota
	// ImputeMean fills missing continuous values with the column mean.
	ImputeMean
	// ImputeNone rejects records with missing continuous values.
	ImputeNone
)

func (p ImputePolicy) String() string {
	switch p {
	case ImputeMedian:
		return "Median"
	case ImputeMean:
		return "Mean"
	case ImputeNone:
		return "None"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// Options represents the options for configuring the Encoder.
type Options struct {
	// Impute selects the fill rule for missing continuous values.
	Impute ImputePolicy

	// UnknownCategory is the indicator category assigned to records that
	// lack a categorical attribute.
	UnknownCategory string

	// Standardize controls whether continuous columns are centered and
	// scaled to unit variance before encoding.
	Standardize bool
}

// DefaultOptions are the options used when none are supplied.
var DefaultOptions = Options{
	Impute:          ImputeMedian,
	UnknownCategory: DefaultUnknownCategory,
	Standardize:     true,
}

// Encoder converts records into a feature matrix.
type Encoder struct {
	schema Schema
	opts   Options
}

// NewEncoder creates a new Encoder for the given schema.
func NewEncoder(schema Schema, optFns ...func(o *Options)) *Encoder {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.UnknownCategory == "" {
		opts.UnknownCategory = DefaultUnknownCategory
	}
	return &Encoder{schema: schema, opts: opts}
}

// Schema returns the schema the encoder was built with.
func (e *Encoder) Schema() Schema { return e.schema }

// Encode builds the feature matrix for recs.
//
// Continuous attributes are imputed and standardized per the encoder
// options. Binary attributes become 0/1 columns and must be present on every
// record. Each categorical attribute expands to one indicator column per
// observed category; records lacking the attribute fall into the unknown
// category.
func (e *Encoder) Encode(recs []Record) (*Matrix, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	if e.schema.Empty() {
		return nil, ErrEmptySchema
	}

	n := len(recs)

	var (
		columns []Column
		colData [][]float64
	)

	for _, name := range e.schema.Continuous {
		col, err := e.encodeContinuous(name, recs)
		if err != nil {
			return nil, err
		}
		columns = append(columns, Column{Name: name, Kind: KindContinuous})
		colData = append(colData, col)
	}

	for _, name := range e.schema.Binary {
		col := make([]float64, n)
		for i, rec := range recs {
			v, ok := rec.Binary[name]
			if !ok {
				return nil, &ErrMissingAttribute{Record: i, Attribute: name}
			}
			if v {
				col[i] = 1
			}
		}
		columns = append(columns, Column{Name: name, Kind: KindBinary})
		colData = append(colData, col)
	}

	for _, name := range e.schema.Categorical {
		values := make([]string, n)
		seen := make(map[string]struct{})
		for i, rec := range recs {
			v, ok := rec.Categorical[name]
			if !ok || v == "" {
				v = e.opts.UnknownCategory
			}
			values[i] = v
			seen[v] = struct{}{}
		}

		levels := make([]string, 0, len(seen))
		for v := range seen {
			levels = append(levels, v)
		}
		sort.Strings(levels)

		for _, level := range levels {
			col := make([]float64, n)
			for i, v := range values {
				if v == level {
					col[i] = 1
				}
			}
			columns = append(columns, Column{Name: name + "=" + level, Kind: KindCategorical})
			colData = append(colData, col)
		}
	}

	cols := len(columns)
	data := make([]float64, n*cols)
	for j, col := range colData {
		for i, v := range col {
			data[i*cols+j] = v
		}
	}

	return &Matrix{rows: n, cols: cols, data: data, columns: columns}, nil
}

func (e *Encoder) encodeContinuous(name string, recs []Record) ([]float64, error) {
	col := make([]float64, len(recs))
	observed := make([]float64, 0, len(recs))
	var missing []int

	for i, rec := range recs {
		v, ok := rec.Continuous[name]
		if !ok || math.IsNaN(v) {
			missing = append(missing, i)
			continue
		}
		col[i] = v
		observed = append(observed, v)
	}

	if len(observed) == 0 {
		return nil, &ErrMissingAttribute{Record: missing[0], Attribute: name}
	}
	if len(missing) > 0 {
		if e.opts.Impute == ImputeNone {
			return nil, &ErrMissingAttribute{Record: missing[0], Attribute: name}
		}
		fill, err := e.fillValue(observed)
		if err != nil {
			return nil, err
		}
		for _, i := range missing {
			col[i] = fill
		}
	}

	if e.opts.Standardize {
		standardize(col)
	}
	return col, nil
}

func (e *Encoder) fillValue(observed []float64) (float64, error) {
	if e.opts.Impute == ImputeMean {
		return stats.Mean(observed)
	}
	return stats.Median(observed)
}

// standardize centers col and scales it to unit variance in place. Constant
// columns keep a divisor of 1 so they collapse to zero instead of NaN.
func standardize(col []float64) {
	mean := stat.Mean(col, nil)
	std := stat.PopStdDev(col, nil)
	if std == 0 || math.IsNaN(std) {
		std = 1
	}
	for i, v := range col {
		col[i] = (v - mean) / std
	}
}
