package intrinsic

import (
	"fmt"
	"log"
	"math"
)

// State holds the episodic memory and running distance statistics threaded
// between Engine.Rewards calls. Construct with NewState once per episode.
//
// The memory is a fixed-capacity ring buffer of embedding rows. Unused
// slots hold the +Inf sentinel so they never become spurious nearest
// neighbors; the first NumNeighbors slots are seeded with zero vectors so
// the very first query has well-defined neighbors.
type State struct {
	memory        [][]float64
	dim           int
	numNeighbors  int
	nextIndex     int
	distanceSum   float64
	distanceCount int
}

// NewState creates an episodic memory state.
//
// capacity is the ring-buffer size, dim the embedding dimension, and
// numNeighbors the k used for every nearest-neighbor query against this
// state. k is fixed at construction: it is baked into the zero-row seeding,
// so varying it later would corrupt the distance statistics.
func NewState(capacity, dim, numNeighbors int) (*State, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("intrinsic: capacity must be >= 1, got %d", capacity)
	}
	if dim < 1 {
		return nil, fmt.Errorf("intrinsic: dim must be >= 1, got %d", dim)
	}
	if numNeighbors < 1 {
		return nil, fmt.Errorf("intrinsic: numNeighbors must be >= 1, got %d", numNeighbors)
	}
	if numNeighbors > capacity {
		return nil, fmt.Errorf("intrinsic: numNeighbors %d exceeds capacity %d",
			numNeighbors, capacity)
	}

	memory := make([][]float64, capacity)
	for i := range memory {
		row := make([]float64, dim)
		if i >= numNeighbors {
			for j := range row {
				row[j] = math.Inf(1)
			}
		}
		memory[i] = row
	}

	log.Printf("[INTRINSIC] Initialized state: capacity=%d, dim=%d, neighbors=%d",
		capacity, dim, numNeighbors)

	return &State{
		memory:       memory,
		dim:          dim,
		numNeighbors: numNeighbors,
	}, nil
}

// Capacity returns the ring-buffer size.
func (s *State) Capacity() int {
	return len(s.memory)
}

// Dim returns the embedding dimension.
func (s *State) Dim() int {
	return s.dim
}

// NumNeighbors returns the k pinned at construction.
func (s *State) NumNeighbors() int {
	return s.numNeighbors
}

// NextIndex returns the next ring-buffer insertion offset, always in
// [0, Capacity).
func (s *State) NextIndex() int {
	return s.nextIndex
}

// DistanceSum returns the running sum of all observed nearest-neighbor
// squared distances. Monotonically non-decreasing.
func (s *State) DistanceSum() float64 {
	return s.distanceSum
}

// DistanceCount returns the number of scalar distance observations folded
// into DistanceSum. Grows by M*k per batch of M embeddings.
func (s *State) DistanceCount() int {
	return s.distanceCount
}

// Memory returns a copy of the [Capacity, Dim] buffer for inspection.
// Mutating the copy never affects the state.
func (s *State) Memory() [][]float64 {
	out := make([][]float64, len(s.memory))
	for i, row := range s.memory {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}
