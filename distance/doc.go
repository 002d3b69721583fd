// Package distance computes pairwise Gower dissimilarity over mixed-type
// feature matrices.
//
// Gower distance averages per-column dissimilarities: a continuous column
// contributes |a-b| scaled by the column range, while binary and indicator
// columns contribute a 0/1 mismatch. Every entry lands in [0, 1], the matrix
// is symmetric, and the diagonal is zero.
//
// # Usage
//
//	d, err := distance.Gower(ctx, m)
//	v := d.At(i, j)
//
// Column ranges come from the matrix being processed, so computing distances
// on a row subset rescales continuous columns to the subset.
package distance
