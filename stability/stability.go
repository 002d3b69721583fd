package stability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/clustgo/distance"
	"github.com/hupe1980/clustgo/feature"
	"github.com/hupe1980/clustgo/internal/sampling"
	"github.com/hupe1980/clustgo/medoid"
	"github.com/hupe1980/clustgo/metric"
	"github.com/hupe1980/clustgo/resource"
)

// ErrInvalidConfig indicates bootstrap parameters or labels that cannot
// produce a valid run.
var ErrInvalidConfig = errors.New("invalid bootstrap configuration")

// ErrAllTrialsSkipped indicates that every bootstrap trial degenerated, so
// no stability evidence exists at all.
type ErrAllTrialsSkipped struct {
	Trials int
}

func (e *ErrAllTrialsSkipped) Error() string {
	return fmt.Sprintf("all %d bootstrap trials skipped", e.Trials)
}

// Options represents the options for configuring Run.
type Options struct {
	// Iterations is the number of bootstrap trials.
	Iterations int

	// SampleSize is the absolute number of rows per trial. When 0, the
	// size is derived from SampleFraction. Either way the size is clamped
	// to [2, n-1] and then capped by the Controller's memory limit.
	SampleSize int

	// SampleFraction sizes trials as a fraction of the row count. Used
	// only when SampleSize is 0; must lie in (0, 1).
	SampleFraction float64

	// SeedBase seeds trial t with SeedBase+t, covering both the subsample
	// draw and the partition.
	SeedBase int64

	// MaxIterations bounds the swap sweeps of each trial's partition.
	MaxIterations int

	// Parallelism bounds the number of concurrent trial workers.
	// Defaults to GOMAXPROCS.
	Parallelism int

	// Controller coordinates memory and worker budgets across pipeline
	// stages. Nil means unlimited.
	Controller *resource.Controller

	// Logger, when set, receives throttled progress records.
	Logger *slog.Logger
}

// DefaultOptions are the options used when none are supplied.
var DefaultOptions = Options{
	Iterations:     20,
	SampleFraction: 0.8,
	SeedBase:       1,
	MaxIterations:  300,
}

// Matrix accumulates, over the original point indices, how often a pair was
// drawn into the same trial and how often it then landed in the same
// cluster. Storage is the condensed upper triangle.
type Matrix struct {
	n    int
	seen []uint32
	hits []uint32
}

func newMatrix(n int) *Matrix {
	pairs := n * (n - 1) / 2
	return &Matrix{
		n:    n,
		seen: make([]uint32, pairs),
		hits: make([]uint32, pairs),
	}
}

// N returns the number of points the matrix covers.
func (m *Matrix) N() int { return m.n }

// At returns the fraction of co-sampled trials in which points i and j
// shared a cluster. ok is false for the diagonal and for pairs never
// sampled together, where the fraction is undefined.
func (m *Matrix) At(i, j int) (float64, bool) {
	if i == j {
		return 0, false
	}
	if i > j {
		i, j = j, i
	}
	p := m.pairIndex(i, j)
	if m.seen[p] == 0 {
		return 0, false
	}
	return float64(m.hits[p]) / float64(m.seen[p]), true
}

// pairIndex maps i < j to the condensed upper-triangle offset.
func (m *Matrix) pairIndex(i, j int) int {
	return i*(2*m.n-i-1)/2 + (j - i - 1)
}

// record tallies one trial's outcome. idx must be sorted ascending; labels
// are the trial's cluster slots aligned with idx.
func (m *Matrix) record(idx []int, labels []int) {
	for a := 0; a < len(idx); a++ {
		la := labels[a]
		for b := a + 1; b < len(idx); b++ {
			p := m.pairIndex(idx[a], idx[b])
			m.seen[p]++
			if la == labels[b] {
				m.hits[p]++
			}
		}
	}
}

// merge folds a worker-local accumulator into m. Addition commutes, so the
// merged totals do not depend on worker scheduling.
func (m *Matrix) merge(other *Matrix) {
	for p, v := range other.seen {
		m.seen[p] += v
	}
	for p, v := range other.hits {
		m.hits[p] += v
	}
}

// Distribution summarizes per-trial scores across the completed trials.
type Distribution struct {
	// Scores holds one value per completed trial, in trial order.
	Scores []float64

	Mean   float64
	Std    float64
	Median float64
}

// ClusterStability scores one original cluster.
type ClusterStability struct {
	// Cluster is the cluster slot in the original labeling.
	Cluster int

	// Size is the cluster's member count.
	Size int

	// Score is the mean normalized co-association over the cluster's
	// member pairs, in [0, 1]. Singleton clusters score 1.
	Score float64
}

// Report is the outcome of a bootstrap validation run.
type Report struct {
	// Clusters holds one stability score per original cluster slot.
	Clusters []ClusterStability

	// Agreement summarizes the adjusted agreement between each trial's
	// partition and the original labels on the shared rows.
	Agreement Distribution

	// Cohesion summarizes the silhouette score of each trial's partition.
	Cohesion Distribution

	// Trials is the number of trials requested.
	Trials int

	// Skipped counts trials the data could not sustain.
	Skipped int

	// SampleSize is the rows drawn per trial after all clamps.
	SampleSize int

	// CoAssociation exposes the merged pair accumulator.
	CoAssociation *Matrix
}

// Run validates the labeling original at cluster count k by bootstrap
// resampling over the encoded rows of fm.
//
// Each trial draws a subsample, recomputes distances and a partition on it,
// and scores agreement with the original labels. Degenerate trials are
// skipped and counted; Run fails with ErrAllTrialsSkipped only when no trial
// completes. Reports are deterministic for a fixed seed base.
func Run(ctx context.Context, fm *feature.Matrix, original []int, k int, optFns ...func(o *Options)) (*Report, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}

	n := fm.Rows()
	if len(original) != n {
		return nil, fmt.Errorf("%w: %d labels for %d rows", ErrInvalidConfig, len(original), n)
	}
	if k < 2 {
		return nil, fmt.Errorf("%w: need at least 2 clusters, got k=%d", ErrInvalidConfig, k)
	}
	for i, l := range original {
		if l < 0 || l >= k {
			return nil, fmt.Errorf("%w: label %d of row %d outside [0, %d)", ErrInvalidConfig, l, i, k)
		}
	}
	if opts.Iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, opts.Iterations)
	}

	m, err := sampleSize(n, &opts)
	if err != nil {
		return nil, err
	}

	trials := opts.Iterations
	agreement := make([]float64, trials)
	cohesion := make([]float64, trials)
	completed := make([]bool, trials)

	var cursor, skipped, done atomic.Int64

	var progress *rate.Limiter
	if opts.Logger != nil {
		progress = rate.NewLimiter(rate.Every(time.Second), 1)
	}

	workers := min(opts.Parallelism, trials)
	locals := make([]*Matrix, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		local := newMatrix(n)
		locals[w] = local

		g.Go(func() error {
			for {
				t := int(cursor.Add(1) - 1)
				if t >= trials {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}

				ok, err := runTrial(gctx, fm, original, k, m, t, &opts, local, agreement, cohesion)
				if err != nil {
					return err
				}
				if ok {
					completed[t] = true
				} else {
					skipped.Add(1)
				}

				if d := done.Add(1); opts.Logger != nil && (d == int64(trials) || progress.Allow()) {
					opts.Logger.InfoContext(gctx, "bootstrap progress", "done", d, "trials", trials)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if int(skipped.Load()) == trials {
		return nil, &ErrAllTrialsSkipped{Trials: trials}
	}

	co := newMatrix(n)
	for _, local := range locals {
		co.merge(local)
	}

	var agreementOK, cohesionOK []float64
	for t := 0; t < trials; t++ {
		if completed[t] {
			agreementOK = append(agreementOK, agreement[t])
			cohesionOK = append(cohesionOK, cohesion[t])
		}
	}

	agreementDist, err := summarize(agreementOK)
	if err != nil {
		return nil, err
	}
	cohesionDist, err := summarize(cohesionOK)
	if err != nil {
		return nil, err
	}

	return &Report{
		Clusters:      clusterScores(co, original, k),
		Agreement:     agreementDist,
		Cohesion:      cohesionDist,
		Trials:        trials,
		Skipped:       int(skipped.Load()),
		SampleSize:    m,
		CoAssociation: co,
	}, nil
}

// sampleSize resolves the per-trial row count: explicit size or fraction,
// clamped to [2, n-1], then capped so one trial's distance matrix fits the
// memory budget. Capping up front matters because reserving more than the
// controller's whole limit would block forever.
func sampleSize(n int, opts *Options) (int, error) {
	if n < 3 {
		return 0, fmt.Errorf("%w: need at least 3 rows to resample, got %d", ErrInvalidConfig, n)
	}

	m := opts.SampleSize
	if m <= 0 {
		if opts.SampleFraction <= 0 || opts.SampleFraction >= 1 {
			return 0, fmt.Errorf("%w: sample fraction %v outside (0, 1)", ErrInvalidConfig, opts.SampleFraction)
		}
		m = int(opts.SampleFraction * float64(n))
	}
	if m < 2 {
		m = 2
	}
	if m > n-1 {
		m = n - 1
	}

	capped := opts.Controller.CapRows(m)
	if capped < 2 {
		return 0, fmt.Errorf("%w: memory limit below the smallest trial matrix", ErrInvalidConfig)
	}
	return capped, nil
}

// runTrial executes one bootstrap trial. It reports ok=false for trials the
// subsample cannot sustain; those skip without contributing scores or pair
// counts. Scores land in the slot arrays at index t.
func runTrial(ctx context.Context, fm *feature.Matrix, original []int, k, m, t int, opts *Options, co *Matrix, agreement, cohesion []float64) (bool, error) {
	bytes := resource.MatrixBytes(m)
	if err := opts.Controller.AcquireMemory(ctx, bytes); err != nil {
		return false, err
	}
	defer opts.Controller.ReleaseMemory(bytes)

	if err := opts.Controller.AcquireWorker(ctx); err != nil {
		return false, err
	}
	defer opts.Controller.ReleaseWorker()

	seed := opts.SeedBase + int64(t)
	rng := rand.New(rand.NewSource(seed))
	idx := sampling.WithoutReplacement(rng, fm.Rows(), m)

	// Trials already fan out across workers, so the per-trial distance
	// computation stays serial.
	d, err := distance.Gower(ctx, fm.Subset(idx), func(o *distance.Options) {
		o.Parallelism = 1
	})
	if err != nil {
		return false, err
	}

	res, err := medoid.Partition(ctx, d, k, func(o *medoid.Options) {
		o.Seed = seed
		o.MaxIterations = opts.MaxIterations
	})
	if err != nil {
		if isDegenerate(err) {
			return false, nil
		}
		return false, err
	}

	score, err := metric.Silhouette(d, res.Labels)
	if err != nil {
		if isDegenerate(err) {
			return false, nil
		}
		return false, err
	}

	ref := make([]int, len(idx))
	for i, ix := range idx {
		ref[i] = original[ix]
	}
	ari, err := metric.AdjustedRandIndex(ref, res.Labels)
	if err != nil {
		return false, err
	}

	co.record(idx, res.Labels)
	agreement[t] = ari
	cohesion[t] = score
	return true, nil
}

// isDegenerate reports whether err means the subsample cannot sustain the
// cluster count, as opposed to a real failure.
func isDegenerate(err error) bool {
	var invalidK *medoid.ErrInvalidK
	var collapsed *medoid.ErrDegenerate
	return errors.As(err, &invalidK) ||
		errors.As(err, &collapsed) ||
		errors.Is(err, metric.ErrSingleCluster) ||
		errors.Is(err, metric.ErrAllSingletons)
}

// clusterScores averages normalized co-association over each original
// cluster's member pairs. Pairs never sampled together do not contribute;
// a cluster with no defined pairs scores a vacuous 1.
func clusterScores(co *Matrix, original []int, k int) []ClusterStability {
	members := make([][]int, k)
	for i, l := range original {
		members[l] = append(members[l], i)
	}

	out := make([]ClusterStability, k)
	for c, pts := range members {
		out[c] = ClusterStability{Cluster: c, Size: len(pts), Score: 1}

		var sum float64
		var defined int
		for a := 0; a < len(pts); a++ {
			for b := a + 1; b < len(pts); b++ {
				if v, ok := co.At(pts[a], pts[b]); ok {
					sum += v
					defined++
				}
			}
		}
		if defined > 0 {
			out[c].Score = sum / float64(defined)
		}
	}
	return out
}

func summarize(scores []float64) (Distribution, error) {
	mean, err := stats.Mean(scores)
	if err != nil {
		return Distribution{}, err
	}
	std, err := stats.StandardDeviation(scores)
	if err != nil {
		return Distribution{}, err
	}
	median, err := stats.Median(scores)
	if err != nil {
		return Distribution{}, err
	}
	return Distribution{Scores: scores, Mean: mean, Std: std, Median: median}, nil
}
