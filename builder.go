// Package clustgo provides a validated clustering pipeline for mixed-type records.
//
// This file implements the fluent builder API for creating and configuring Pipeline instances.
// The builder is immutable - each method returns a new builder with the updated configuration.
package clustgo

import (
	"github.com/hupe1980/clustgo/feature"
)

// Medoids creates a new pipeline builder for the given schema.
// The pipeline encodes records, computes Gower dissimilarities, scans
// cluster counts with k-medoids, and validates the winner by bootstrap.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. This ensures thread-safety and prevents
// accidental state sharing.
//
// Example:
//
//	p, err := clustgo.Medoids(schema).
//	    KRange(2, 6).
//	    Bootstrap(50, 0.8).
//	    Seed(7).
//	    Build()
func Medoids(schema feature.Schema) PipelineBuilder {
	return PipelineBuilder{
		schema:         schema,
		kMin:           2,
		kMax:           8,
		maxIterations:  300,
		iterations:     20,
		sampleFraction: 0.8,
		seedBase:       42,
		impute:         feature.ImputeMedian,
	}
}

// PipelineBuilder is an immutable fluent builder for creating Pipeline instances.
// Each method returns a new builder with the updated configuration.
type PipelineBuilder struct {
	schema         feature.Schema
	kMin           int
	kMax           int
	overrideK      int
	maxIterations  int
	iterations     int
	sampleFraction float64
	sampleSize     int
	seedBase       int64
	parallelism    int
	memoryLimit    int64
	impute         feature.ImputePolicy
	logger         *Logger
	metrics        MetricsCollector
}

// KRange sets the inclusive range of cluster counts evaluated during the scan.
// Default: 2 to 8.
func (b PipelineBuilder) KRange(min, max int) PipelineBuilder {
	b.kMin = min
	b.kMax = max
	return b
}

// OverrideK pins the cluster count used for validation and profiling,
// bypassing the silhouette vote. The count must lie within the scan range.
func (b PipelineBuilder) OverrideK(k int) PipelineBuilder {
	b.overrideK = k
	return b
}

// MaxIterations bounds the swap sweeps of each k-medoids partition.
// Default: 300.
func (b PipelineBuilder) MaxIterations(n int) PipelineBuilder {
	b.maxIterations = n
	return b
}

// Bootstrap configures the stability validation stage: iterations trials,
// each drawing fraction of the rows without replacement.
// Default: 20 trials at fraction 0.8.
func (b PipelineBuilder) Bootstrap(iterations int, fraction float64) PipelineBuilder {
	b.iterations = iterations
	b.sampleFraction = fraction
	return b
}

// BootstrapSamples fixes the absolute number of rows drawn per bootstrap
// trial, overriding the fraction.
func (b PipelineBuilder) BootstrapSamples(size int) PipelineBuilder {
	b.sampleSize = size
	return b
}

// Seed sets the base seed for every randomized stage, making runs
// reproducible. Default: 42.
func (b PipelineBuilder) Seed(base int64) PipelineBuilder {
	b.seedBase = base
	return b
}

// Parallelism bounds the number of concurrent workers across stages.
// Default: one worker per CPU.
func (b PipelineBuilder) Parallelism(n int) PipelineBuilder {
	b.parallelism = n
	return b
}

// MemoryLimit bounds the bytes bootstrap trials may hold in trial matrices
// at any moment. Default: unlimited.
func (b PipelineBuilder) MemoryLimit(bytes int64) PipelineBuilder {
	b.memoryLimit = bytes
	return b
}

// Impute selects the fill rule for missing continuous values.
// Default: feature.ImputeMedian.
func (b PipelineBuilder) Impute(policy feature.ImputePolicy) PipelineBuilder {
	b.impute = policy
	return b
}

// Logger sets the structured logger for stage tracing.
func (b PipelineBuilder) Logger(l *Logger) PipelineBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b PipelineBuilder) Metrics(mc MetricsCollector) PipelineBuilder {
	b.metrics = mc
	return b
}

// Build creates the Pipeline.
func (b PipelineBuilder) Build() (*Pipeline, error) {
	opts := []Option{
		WithKRange(b.kMin, b.kMax),
		WithMaxIterations(b.maxIterations),
		WithBootstrap(b.iterations, b.sampleFraction),
		WithSeed(b.seedBase),
		WithImputation(b.impute),
	}
	if b.overrideK > 0 {
		opts = append(opts, WithOverrideK(b.overrideK))
	}
	if b.sampleSize > 0 {
		opts = append(opts, WithBootstrapSamples(b.sampleSize))
	}
	if b.parallelism > 0 {
		opts = append(opts, WithParallelism(b.parallelism))
	}
	if b.memoryLimit > 0 {
		opts = append(opts, WithMemoryLimit(b.memoryLimit))
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}

	return New(b.schema, opts...)
}

// MustBuild creates the Pipeline, panicking on error.
func (b PipelineBuilder) MustBuild() *Pipeline {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
