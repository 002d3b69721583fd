package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/hupe1980/clustgo"
	"github.com/hupe1980/clustgo/testutil"
)

func main() {
	ctx := context.Background()

	// Synthetic cohort: two planted groups of subjects described by two
	// continuous markers, one exposure flag, and a study site.
	rng := testutil.NewRNG(4711)
	records, _ := testutil.TwoGroupRecords(rng, 200)

	p, err := clustgo.Medoids(testutil.TwoGroupSchema()).
		KRange(2, 6).
		Bootstrap(50, 0.8).
		Seed(7).
		Logger(clustgo.NewTextLogger(slog.LevelInfo)).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	res, err := p.Run(ctx, records)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("clustered %d records (%d encoded columns)\n\n", res.Rows, res.Columns)

	fmt.Println("candidate table:")
	for _, c := range res.Candidates {
		marker := " "
		if c.K == res.BestK {
			marker = "*"
		}
		fmt.Printf("  %s k=%d cohesion=%.3f\n", marker, c.K, c.Cohesion)
	}
	for _, k := range res.SkippedKs {
		fmt.Printf("    k=%d skipped\n", k)
	}

	st := res.Stability
	fmt.Printf("\nbootstrap: %d trials (%d skipped), sample size %d\n",
		st.Trials, st.Skipped, st.SampleSize)
	fmt.Printf("agreement: mean=%.3f median=%.3f sd=%.3f\n",
		st.Agreement.Mean, st.Agreement.Median, st.Agreement.Std)
	for _, cs := range st.Clusters {
		fmt.Printf("  cluster %d (n=%d): stability %.3f\n", cs.Cluster, cs.Size, cs.Score)
	}

	schema := p.Schema()
	fmt.Println("\ncluster profiles:")
	for _, cp := range res.Profiles.Clusters {
		fmt.Printf("  cluster %d (n=%d)\n", cp.Cluster, cp.Size)
		for _, name := range schema.Continuous {
			if m, ok := cp.Continuous[name]; ok {
				fmt.Printf("    %s: mean=%.2f sd=%.2f\n", name, m.Mean, m.Std)
			}
		}
		for _, name := range schema.Binary {
			if rate, ok := cp.BinaryRates[name]; ok {
				fmt.Printf("    %s: rate=%.2f\n", name, rate)
			}
		}
	}

	fmt.Println("\nvariable tests:")
	for _, vt := range res.Profiles.Tests {
		fmt.Printf("  %s: H=%.2f df=%d p=%.4g significant=%t\n",
			vt.Variable, vt.H, vt.DF, vt.PValue, vt.Significant)
	}
}
