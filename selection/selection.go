package selection

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/clustgo/distance"
	"github.com/hupe1980/clustgo/medoid"
	"github.com/hupe1980/clustgo/metric"
)

// ErrInvalidRange indicates a cluster count range with Min below 2 or Max
// below Min.
type ErrInvalidRange struct {
	Min, Max int
}

func (e *ErrInvalidRange) Error() string {
	return fmt.Sprintf("invalid cluster count range [%d, %d]", e.Min, e.Max)
}

// ErrNoViableK indicates that every cluster count in the scanned range was
// degenerate for the data.
type ErrNoViableK struct {
	Min, Max int
}

func (e *ErrNoViableK) Error() string {
	return fmt.Sprintf("no viable cluster count in [%d, %d]", e.Min, e.Max)
}

// Range brackets the cluster counts to evaluate, inclusive on both ends.
type Range struct {
	Min, Max int
}

// Options represents the options for configuring Scan.
type Options struct {
	// SeedBase offsets the partition seed of each candidate count;
	// count k partitions with seed SeedBase+k.
	SeedBase int64

	// MaxIterations bounds the swap sweeps of each partition.
	MaxIterations int

	// Parallelism bounds the number of cluster counts evaluated
	// concurrently. Defaults to GOMAXPROCS.
	Parallelism int
}

// DefaultOptions are the options used when none are supplied.
var DefaultOptions = Options{
	SeedBase:      1,
	MaxIterations: 300,
}

// Candidate is one viable cluster count with its partition and score.
type Candidate struct {
	// K is the cluster count.
	K int

	// Labels assigns each point its cluster slot.
	Labels []int

	// Medoids holds the point index of each cluster's medoid.
	Medoids []int

	// Cohesion is the mean silhouette score of the partition.
	Cohesion float64

	// Cost is the total point-to-medoid distance.
	Cost float64
}

// Table collects the outcome of a scan over a cluster count range.
type Table struct {
	// Candidates holds the viable counts in ascending order of K.
	Candidates []Candidate

	// Skipped lists the counts the data could not sustain, ascending.
	Skipped []int
}

// Best returns the candidate with the highest cohesion. Ties resolve to the
// smallest cluster count. A table produced by a successful Scan always has
// at least one candidate; called on an empty table, Best returns the zero
// Candidate.
func (t *Table) Best() Candidate {
	if len(t.Candidates) == 0 {
		return Candidate{}
	}

	scores := make([]float64, len(t.Candidates))
	for i, c := range t.Candidates {
		scores[i] = c.Cohesion
	}
	return t.Candidates[floats.MaxIdx(scores)]
}

// ByK returns the candidate for cluster count k, if the scan found it viable.
func (t *Table) ByK(k int) (Candidate, bool) {
	for _, c := range t.Candidates {
		if c.K == k {
			return c, true
		}
	}
	return Candidate{}, false
}

// Scan partitions d at every cluster count in r and scores each partition's
// silhouette cohesion.
//
// Degenerate counts are skipped and recorded in the table rather than
// failing the scan; if every count degenerates, Scan returns ErrNoViableK.
// Each count draws its seed from SeedBase and the count itself, so results
// do not depend on scheduling.
func Scan(ctx context.Context, d *distance.Matrix, r Range, optFns ...func(o *Options)) (*Table, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}

	if r.Min < 2 || r.Max < r.Min {
		return nil, &ErrInvalidRange{Min: r.Min, Max: r.Max}
	}

	type outcome struct {
		candidate Candidate
		viable    bool
	}
	outcomes := make([]outcome, r.Max-r.Min+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for k := r.Min; k <= r.Max; k++ {
		k := k
		g.Go(func() error {
			res, err := medoid.Partition(gctx, d, k, func(o *medoid.Options) {
				o.Seed = opts.SeedBase + int64(k)
				o.MaxIterations = opts.MaxIterations
			})
			if err != nil {
				if isDegenerate(err) {
					return nil
				}
				return err
			}

			cohesion, err := metric.Silhouette(d, res.Labels)
			if err != nil {
				if isDegenerate(err) {
					return nil
				}
				return err
			}

			outcomes[k-r.Min] = outcome{
				candidate: Candidate{
					K:        k,
					Labels:   res.Labels,
					Medoids:  res.Medoids,
					Cohesion: cohesion,
					Cost:     res.Cost,
				},
				viable: true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := &Table{}
	for i, o := range outcomes {
		if o.viable {
			t.Candidates = append(t.Candidates, o.candidate)
		} else {
			t.Skipped = append(t.Skipped, r.Min+i)
		}
	}
	if len(t.Candidates) == 0 {
		return nil, &ErrNoViableK{Min: r.Min, Max: r.Max}
	}
	return t, nil
}

// isDegenerate reports whether err means the data cannot sustain the
// requested count, as opposed to a real failure.
func isDegenerate(err error) bool {
	var invalidK *medoid.ErrInvalidK
	var collapsed *medoid.ErrDegenerate
	return errors.As(err, &invalidK) ||
		errors.As(err, &collapsed) ||
		errors.Is(err, metric.ErrSingleCluster) ||
		errors.Is(err, metric.ErrAllSingletons)
}
