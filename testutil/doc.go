// Package testutil provides testing utilities for clustgo.
//
// This package is intended for use in tests and benchmarks only. It provides
// a deterministic thread-safe RNG, synthetic mixed-type record generators,
// and partition comparison helpers.
//
// # Synthetic Records
//
//	rng := testutil.NewRNG(seed)
//	recs, labels := testutil.TwoGroupRecords(rng, 100)
//
// # Partition Comparison
//
//	same := testutil.SamePartition(trueLabels, gotLabels)
package testutil
