// Package knn defines the nearest-neighbor query contract used by the
// intrinsic reward engine.
//
// The engine treats nearest-neighbor search as a swappable collaborator: an
// exact brute-force backend (knn/brute) suits small episodic memories, while
// an approximate index (knn/chromem) trades exactness for speed on large
// ones. The engine's correctness depends only on the contract below, not on
// the search strategy.
package knn

import (
	"context"
	"math"
)

// Inf is the sentinel distance representing "infinitely far". Searchers pad
// result rows with Inf when fewer than k usable memory rows exist, and
// memory rows holding the sentinel never rank ahead of finite candidates.
var Inf = math.Inf(1)

// Searcher answers k-nearest-neighbor queries over a caller-owned memory
// buffer.
//
// memory is a [C, D] row matrix; rows may contain the +Inf sentinel for
// unused slots. queries is [M, D]. The result is an [M][k] matrix of squared
// Euclidean distances to each query's k nearest memory rows, in unspecified
// order. Exactly k distances are returned per query, padded with +Inf in the
// degenerate case where fewer than k rows are usable.
//
// Implementations must be pure with respect to their arguments: no retained
// references, no mutation.
type Searcher interface {
	Search(ctx context.Context, memory, queries [][]float64, k int) ([][]float64, error)
}
