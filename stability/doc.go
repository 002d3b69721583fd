// Package stability validates a chosen partition by bootstrap resampling.
//
// Run repeatedly draws a subsample of the encoded records, recomputes
// distances and a fresh partition on the subsample, and compares the result
// against the original labels. Two views come out of the trials:
//
//   - Distributions of the per-trial adjusted agreement and cohesion scores,
//     showing how strongly resampled partitions track the original.
//   - A co-association matrix counting, for every pair of points, how often
//     the pair was sampled together and how often it then shared a cluster.
//     Averaging its normalized entries over each original cluster's member
//     pairs yields a per-cluster stability score in [0, 1].
//
// Trials the data cannot sustain, for example when a subsample holds too few
// distinct points for the requested cluster count, are skipped and counted
// rather than failing the run. Only a run in which every trial degenerates
// returns an error.
//
// Trial t draws its RNG seed from SeedBase+t and writes into its own result
// slot, so reports are reproducible for a fixed seed base regardless of
// worker count.
package stability
