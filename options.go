package clustgo

import (
	"log/slog"

	"github.com/hupe1980/clustgo/feature"
)

type options struct {
	kMin             int
	kMax             int
	overrideK        int
	maxIterations    int
	iterations       int
	sampleFraction   float64
	sampleSize       int
	seedBase         int64
	parallelism      int
	memoryLimit      int64
	impute           feature.ImputePolicy
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Pipeline constructor behavior.
//
// Options exist to avoid exploding the API surface with per-knob
// constructor variants; the Medoids builder wraps them fluently.
type Option func(*options)

// WithKRange configures the inclusive range of cluster counts evaluated
// during model selection. min must be at least 2.
//
// Wider ranges cost one partition per extra count; counts the data cannot
// sustain are skipped rather than failing the scan.
func WithKRange(min, max int) Option {
	return func(o *options) {
		o.kMin = min
		o.kMax = max
	}
}

// WithOverrideK pins the cluster count used for validation and profiling,
// bypassing the silhouette vote. The count must lie within the scan range
// and must survive the scan; the scan table still reports every candidate.
//
// Use this to inspect a domain-mandated count without losing the
// comparative table.
func WithOverrideK(k int) Option {
	return func(o *options) {
		o.overrideK = k
	}
}

// WithMaxIterations bounds the swap sweeps of each k-medoids partition.
// Partitions converge long before the default of 300 on most data.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithBootstrap configures the stability validation stage: iterations
// resample-and-recluster trials, each drawing fraction of the rows without
// replacement. fraction must lie in (0, 1).
//
// Example:
//
//	p, _ := clustgo.New(schema, clustgo.WithBootstrap(50, 0.75))
func WithBootstrap(iterations int, fraction float64) Option {
	return func(o *options) {
		o.iterations = iterations
		o.sampleFraction = fraction
	}
}

// WithBootstrapSamples fixes the absolute number of rows drawn per
// bootstrap trial, overriding the fraction. The size is clamped to
// [2, n-1] and further capped by the memory limit.
func WithBootstrapSamples(size int) Option {
	return func(o *options) {
		o.sampleSize = size
	}
}

// WithSeed configures the base seed for every randomized stage. Runs with
// the same records, configuration, and seed produce identical results
// regardless of parallelism.
func WithSeed(base int64) Option {
	return func(o *options) {
		o.seedBase = base
	}
}

// WithParallelism bounds the number of concurrent workers used by the
// distance, scan, and validation stages. Zero means one worker per CPU.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithMemoryLimit bounds the bytes bootstrap trials may hold in trial
// matrices at any moment. Sample sizes shrink until a trial matrix fits,
// and concurrent trials block until budget frees up.
//
// Example:
//
//	p, _ := clustgo.New(schema, clustgo.WithMemoryLimit(256<<20))
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithImputation selects the fill rule for missing continuous values.
// The default is feature.ImputeMedian; feature.ImputeNone rejects records
// with gaps instead.
func WithImputation(policy feature.ImputePolicy) Option {
	return func(o *options) {
		o.impute = policy
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// pipeline stages. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &clustgo.BasicMetricsCollector{}
//	p, _ := clustgo.New(schema, clustgo.WithMetricsCollector(metrics))
//	// ... run the pipeline ...
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Avg latency: %dns\n", stats.RunCount, stats.RunAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for pipeline stages.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := clustgo.NewJSONLogger(slog.LevelInfo)
//	p, _ := clustgo.New(schema, clustgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		kMin:             2,
		kMax:             8,
		maxIterations:    300,
		iterations:       20,
		sampleFraction:   0.8,
		seedBase:         42,
		impute:           feature.ImputeMedian,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
