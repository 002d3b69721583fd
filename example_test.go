package clustgo_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/clustgo"
	"github.com/hupe1980/clustgo/feature"
	"github.com/hupe1980/clustgo/testutil"
)

// Example_quickStart demonstrates the full pipeline with functional options.
func Example_quickStart() {
	ctx := context.Background()

	schema := feature.Schema{
		Continuous:  []string{"age", "titer"},
		Binary:      []string{"exposed"},
		Categorical: []string{"site"},
	}

	// Synthetic cohort with two planted groups.
	rng := testutil.NewRNG(4711)
	records, _ := testutil.TwoGroupRecords(rng, 40)

	p, err := clustgo.New(schema,
		clustgo.WithKRange(2, 4),
		clustgo.WithSeed(7),
	)
	if err != nil {
		log.Fatal(err)
	}

	res, err := p.Run(ctx, records)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("rows=%d best k=%d trials=%d\n", res.Rows, res.BestK, res.Stability.Trials)
	// Output: rows=40 best k=2 trials=20
}

// Example_builder demonstrates the fluent builder API.
func Example_builder() {
	ctx := context.Background()

	rng := testutil.NewRNG(4711)
	records, _ := testutil.TwoGroupRecords(rng, 24)

	p := clustgo.Medoids(testutil.TwoGroupSchema()).
		KRange(2, 3).
		Bootstrap(10, 0.8).
		Seed(7).
		MustBuild()

	res, err := p.Run(ctx, records)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("validated k=%d\n", res.K)
	// Output: validated k=2
}

// Example_metrics demonstrates collecting stage metrics.
func Example_metrics() {
	ctx := context.Background()

	rng := testutil.NewRNG(99)
	records, _ := testutil.TwoGroupRecords(rng, 24)

	metrics := &clustgo.BasicMetricsCollector{}
	p := clustgo.Medoids(testutil.TwoGroupSchema()).
		KRange(2, 3).
		Metrics(metrics).
		MustBuild()

	if _, err := p.Run(ctx, records); err != nil {
		log.Fatal(err)
	}

	stats := metrics.GetStats()
	fmt.Printf("runs=%d scans=%d\n", stats.RunCount, stats.ScanCount)
	// Output: runs=1 scans=1
}

// Example_profiles demonstrates reading per-cluster characterizations.
func Example_profiles() {
	ctx := context.Background()

	rng := testutil.NewRNG(4711)
	records, _ := testutil.TwoGroupRecords(rng, 40)

	p := clustgo.Medoids(testutil.TwoGroupSchema()).
		KRange(2, 3).
		MustBuild()

	res, err := p.Run(ctx, records)
	if err != nil {
		log.Fatal(err)
	}

	first := res.Profiles.Tests[0]
	fmt.Printf("clusters=%d variable=%s separates=%t\n",
		len(res.Profiles.Clusters), first.Variable, first.Significant)
	// Output: clusters=2 variable=age separates=true
}
