// Package medoid implements partitioning around medoids (PAM) on a
// precomputed distance matrix.
//
// Medoids are seeded with the k-medoids++ strategy: the first medoid is
// drawn uniformly, the rest proportionally to squared distance from the
// nearest chosen medoid. Greedy swap sweeps then exchange medoids with
// non-medoid points while the total cost strictly improves.
//
// Results are deterministic for a fixed seed and distance matrix.
package medoid
