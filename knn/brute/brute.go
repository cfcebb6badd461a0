// Package brute implements exact k-nearest-neighbor search by scanning the
// full memory buffer. Intended for small to medium episodic memories where
// an index would not pay for itself.
package brute

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/rlkit/explore-go-sdk/knn"
)

// Searcher is an exact squared-Euclidean k-NN searcher.
type Searcher struct{}

// New creates a brute-force searcher.
func New() *Searcher {
	return &Searcher{}
}

// Search returns the k smallest squared Euclidean distances from each query
// to the memory rows. Sentinel (+Inf) memory rows produce +Inf distances and
// so only appear in a result row when fewer than k finite candidates exist.
// Result rows are sorted ascending.
func (s *Searcher) Search(ctx context.Context, memory, queries [][]float64, k int) ([][]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("brute: k must be >= 1, got %d", k)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([][]float64, len(queries))
	h := &distHeap{}
	for qi, query := range queries {
		h.items = h.items[:0]
		for _, row := range memory {
			if len(row) != len(query) {
				return nil, fmt.Errorf("brute: memory row has dim %d, query has dim %d",
					len(row), len(query))
			}
			d := squaredDistance(query, row)
			if h.Len() < k {
				heap.Push(h, d)
			} else if d < h.items[0] {
				h.items[0] = d
				heap.Fix(h, 0)
			}
		}

		// Popping the max-heap yields descending order; fill back to
		// front for an ascending row, then pad the tail to exactly k.
		row := make([]float64, k)
		n := h.Len()
		for i := n - 1; i >= 0; i-- {
			row[i] = heap.Pop(h).(float64)
		}
		for i := n; i < k; i++ {
			row[i] = knn.Inf
		}
		results[qi] = row
	}
	return results, nil
}

// squaredDistance computes the squared Euclidean distance between two
// equal-length vectors. (inf-x)² is +Inf, so sentinel rows fall out of the
// top-k naturally.
func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// distHeap is a max-heap of distances, keeping the k smallest seen so far
// with the largest at the root.
type distHeap struct {
	items []float64
}

func (h *distHeap) Len() int            { return len(h.items) }
func (h *distHeap) Less(i, j int) bool  { return h.items[i] > h.items[j] }
func (h *distHeap) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *distHeap) Push(x any)          { h.items = append(h.items, x.(float64)) }
func (h *distHeap) Pop() any {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[:n-1]
	return x
}
