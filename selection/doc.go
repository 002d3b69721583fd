// Package selection evaluates a range of cluster counts and picks the one
// with the best silhouette cohesion.
//
// Scan partitions the distance matrix once per candidate count, scores each
// partition, and collects the results into a Table. Counts the data cannot
// sustain, for example because duplicates leave fewer distinct points than
// requested clusters, are skipped and recorded instead of failing the scan.
//
// Each count derives its partition seed from the count itself, so the table
// is byte-for-byte reproducible regardless of the degree of parallelism.
package selection
