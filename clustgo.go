// Package clustgo provides validated medoid clustering for mixed-type records.
//
// clustgo groups records described by continuous, binary, and categorical
// attributes and reports how trustworthy the grouping is:
//
//   - Gower dissimilarity over mixed attribute types
//   - k-medoids partitioning with deterministic seeding
//   - Silhouette-voted selection of the cluster count
//   - Bootstrap stability validation with per-cluster co-association scores
//   - Per-cluster profiles with Kruskal-Wallis separation tests
//
// # Quick Start
//
// Declare the attributes each record carries, build a pipeline, and run it:
//
//	schema := feature.Schema{
//	    Continuous:  []string{"age", "titer"},
//	    Binary:      []string{"exposed"},
//	    Categorical: []string{"site"},
//	}
//
//	p, err := clustgo.Medoids(schema).
//	    KRange(2, 6).
//	    Bootstrap(50, 0.8).
//	    Seed(7).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := p.Run(ctx, records)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.BestK, res.Cohesion, res.Stability.Agreement.Mean)
//
// The same configuration is available through functional options:
//
//	p, err := clustgo.New(schema,
//	    clustgo.WithKRange(2, 6),
//	    clustgo.WithBootstrap(50, 0.8),
//	    clustgo.WithSeed(7),
//	)
//
// # Determinism
//
// Every randomized stage derives its seed from the configured base: the
// scan partitions count k with base+k, and bootstrap trial t draws and
// reclusters with base+t. Runs with the same records, configuration, and
// seed produce identical results at any parallelism.
//
// # Error Taxonomy
//
// Stage failures surface through four sentinels: ErrInvalidInput,
// ErrDegenerateClustering, ErrSelectionFailed, and ErrStabilityFailed.
// Branch with errors.Is; the wrapped stage error retains the detail.
package clustgo

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/clustgo/distance"
	"github.com/hupe1980/clustgo/feature"
	"github.com/hupe1980/clustgo/profile"
	"github.com/hupe1980/clustgo/resource"
	"github.com/hupe1980/clustgo/selection"
	"github.com/hupe1980/clustgo/stability"
)

// Pipeline encodes, partitions, validates, and profiles record sets. It is
// immutable after construction and safe for concurrent use.
type Pipeline struct {
	schema     feature.Schema
	encoder    *feature.Encoder
	controller *resource.Controller
	opts       options
	metrics    MetricsCollector
	logger     *Logger
}

// New creates a Pipeline for the given schema.
func New(schema feature.Schema, optFns ...Option) (*Pipeline, error) {
	opts := applyOptions(optFns)

	if err := validateConfig(schema, opts); err != nil {
		return nil, err
	}

	var controller *resource.Controller
	if opts.memoryLimit > 0 || opts.parallelism > 0 {
		controller = resource.NewController(resource.Config{
			MemoryLimitBytes: opts.memoryLimit,
			MaxWorkers:       int64(opts.parallelism),
		})
	}

	encoder := feature.NewEncoder(schema, func(o *feature.Options) {
		o.Impute = opts.impute
	})

	return &Pipeline{
		schema:     schema,
		encoder:    encoder,
		controller: controller,
		opts:       opts,
		metrics:    opts.metricsCollector,
		logger:     opts.logger,
	}, nil
}

func validateConfig(schema feature.Schema, opts options) error {
	switch {
	case schema.Empty():
		return fmt.Errorf("%w: schema declares no attributes", ErrInvalidInput)
	case opts.kMin < 2 || opts.kMax < opts.kMin:
		return fmt.Errorf("%w: cluster count range [%d, %d]", ErrInvalidInput, opts.kMin, opts.kMax)
	case opts.overrideK != 0 && (opts.overrideK < opts.kMin || opts.overrideK > opts.kMax):
		return fmt.Errorf("%w: override k=%d outside scan range [%d, %d]",
			ErrInvalidInput, opts.overrideK, opts.kMin, opts.kMax)
	case opts.maxIterations < 1:
		return fmt.Errorf("%w: max iterations %d", ErrInvalidInput, opts.maxIterations)
	case opts.iterations < 1:
		return fmt.Errorf("%w: bootstrap iterations %d", ErrInvalidInput, opts.iterations)
	case opts.sampleSize < 0:
		return fmt.Errorf("%w: bootstrap sample size %d", ErrInvalidInput, opts.sampleSize)
	case opts.sampleSize == 0 && (opts.sampleFraction <= 0 || opts.sampleFraction >= 1):
		return fmt.Errorf("%w: bootstrap fraction %v outside (0, 1)", ErrInvalidInput, opts.sampleFraction)
	case opts.parallelism < 0:
		return fmt.Errorf("%w: parallelism %d", ErrInvalidInput, opts.parallelism)
	case opts.memoryLimit < 0:
		return fmt.Errorf("%w: memory limit %d", ErrInvalidInput, opts.memoryLimit)
	}

	return nil
}

// Schema returns the schema the pipeline was built with.
func (p *Pipeline) Schema() feature.Schema { return p.schema }

// Result is the outcome of a full pipeline run.
type Result struct {
	// Rows and Columns describe the encoded feature matrix.
	Rows    int
	Columns int

	// Candidates holds every viable cluster count in ascending order.
	// SkippedKs lists the scanned counts the data could not sustain.
	Candidates []selection.Candidate
	SkippedKs  []int

	// BestK is the count the silhouette vote picked. K is the count that
	// was validated and profiled; it differs from BestK only when the
	// pipeline was built with an override.
	BestK int
	K     int

	// Labels assigns each input record to a cluster in [0, K).
	Labels []int

	// Medoids holds, per cluster, the index of the record serving as its
	// exemplar.
	Medoids []int

	// Cohesion is the mean silhouette width of the chosen partition.
	Cohesion float64

	// Stability reports the bootstrap validation of the chosen partition.
	Stability *stability.Report

	// Profiles characterizes each cluster in original record space.
	Profiles *profile.Summary
}

// Run executes the full pipeline: encode records, compute dissimilarities,
// scan cluster counts, validate the chosen count by bootstrap, and profile
// the final clusters.
func (p *Pipeline) Run(ctx context.Context, recs []feature.Record) (*Result, error) {
	start := time.Now()
	res, err := p.run(ctx, recs)
	duration := time.Since(start)
	err = translateError(err)
	p.metrics.RecordRun(duration, err)
	k := 0
	if res != nil {
		k = res.K
	}
	p.logger.LogRun(ctx, len(recs), k, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, recs []feature.Record) (*Result, error) {
	fm, err := p.encode(ctx, recs)
	if err != nil {
		return nil, err
	}

	d, err := p.dissimilarities(ctx, fm)
	if err != nil {
		return nil, err
	}

	table, err := p.scan(ctx, d)
	if err != nil {
		return nil, err
	}

	chosen, err := p.choose(table)
	if err != nil {
		return nil, err
	}

	report, err := p.validate(ctx, fm, chosen)
	if err != nil {
		return nil, err
	}

	summary, err := p.characterize(ctx, recs, chosen.Labels)
	if err != nil {
		return nil, err
	}

	return &Result{
		Rows:       fm.Rows(),
		Columns:    fm.Cols(),
		Candidates: table.Candidates,
		SkippedKs:  table.Skipped,
		BestK:      table.Best().K,
		K:          chosen.K,
		Labels:     chosen.Labels,
		Medoids:    chosen.Medoids,
		Cohesion:   chosen.Cohesion,
		Stability:  report,
		Profiles:   summary,
	}, nil
}

func (p *Pipeline) encode(ctx context.Context, recs []feature.Record) (*feature.Matrix, error) {
	start := time.Now()
	fm, err := p.encoder.Encode(recs)
	duration := time.Since(start)
	p.metrics.RecordEncode(duration, err)
	columns := 0
	if fm != nil {
		columns = fm.Cols()
	}
	p.logger.LogEncode(ctx, len(recs), columns, err)
	return fm, err
}

func (p *Pipeline) dissimilarities(ctx context.Context, fm *feature.Matrix) (*distance.Matrix, error) {
	start := time.Now()
	d, err := distance.Gower(ctx, fm, func(o *distance.Options) {
		o.Parallelism = p.opts.parallelism
	})
	duration := time.Since(start)
	p.metrics.RecordDistance(duration, err)
	p.logger.LogDistance(ctx, fm.Rows(), err)
	return d, err
}

func (p *Pipeline) scan(ctx context.Context, d *distance.Matrix) (*selection.Table, error) {
	start := time.Now()
	table, err := selection.Scan(ctx, d, selection.Range{Min: p.opts.kMin, Max: p.opts.kMax}, func(o *selection.Options) {
		o.SeedBase = p.opts.seedBase
		o.MaxIterations = p.opts.maxIterations
		o.Parallelism = p.opts.parallelism
	})
	duration := time.Since(start)
	p.metrics.RecordScan(duration, err)
	bestK, skipped := 0, 0
	if table != nil {
		bestK = table.Best().K
		skipped = len(table.Skipped)
	}
	p.logger.LogScan(ctx, p.opts.kMin, p.opts.kMax, bestK, skipped, err)
	return table, err
}

func (p *Pipeline) choose(table *selection.Table) (selection.Candidate, error) {
	if p.opts.overrideK == 0 {
		return table.Best(), nil
	}
	c, ok := table.ByK(p.opts.overrideK)
	if !ok {
		return selection.Candidate{}, fmt.Errorf("%w: override k=%d was skipped by the scan",
			ErrDegenerateClustering, p.opts.overrideK)
	}
	return c, nil
}

func (p *Pipeline) validate(ctx context.Context, fm *feature.Matrix, chosen selection.Candidate) (*stability.Report, error) {
	start := time.Now()
	report, err := stability.Run(ctx, fm, chosen.Labels, chosen.K, func(o *stability.Options) {
		o.Iterations = p.opts.iterations
		o.SampleSize = p.opts.sampleSize
		o.SampleFraction = p.opts.sampleFraction
		o.SeedBase = p.opts.seedBase
		o.MaxIterations = p.opts.maxIterations
		o.Parallelism = p.opts.parallelism
		o.Controller = p.controller
		o.Logger = p.logger.Logger
	})
	duration := time.Since(start)
	p.metrics.RecordValidate(duration, err)
	trials, skipped := p.opts.iterations, 0
	if report != nil {
		trials, skipped = report.Trials, report.Skipped
	}
	p.logger.LogValidate(ctx, trials, skipped, err)
	return report, err
}

func (p *Pipeline) characterize(ctx context.Context, recs []feature.Record, labels []int) (*profile.Summary, error) {
	start := time.Now()
	summary, err := profile.Build(p.schema, recs, labels)
	duration := time.Since(start)
	p.metrics.RecordProfile(duration, err)
	clusters := 0
	if summary != nil {
		clusters = len(summary.Clusters)
	}
	p.logger.LogProfile(ctx, clusters, err)
	return summary, err
}
