package intrinsic

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rlkit/explore-go-sdk/knn"
)

// Default engine parameters, matching the values used in the NGU and
// Agent57 papers.
const (
	// DefaultConstant is the small stabilizer added when normalizing
	// distances and when computing similarity.
	DefaultConstant = 1e-3

	// DefaultEpsilon is the small stabilizer in the kernel computation.
	DefaultEpsilon = 1e-4

	// DefaultClusterDistance is the ξ term bounding the distance rate.
	DefaultClusterDistance = 8e-3

	// DefaultMaxSimilarity is the similarity above which rewards are
	// zeroed: an embedding near-identical to all of memory is not useful
	// to the agent.
	DefaultMaxSimilarity = 8.0

	// DefaultMaxMemorySize is a reasonable episodic memory capacity for
	// NewState.
	DefaultMaxMemorySize = 30000
)

// ErrDimMismatch reports embeddings whose dimension disagrees with the
// state's memory shape.
var ErrDimMismatch = errors.New("intrinsic: embedding dimension mismatch")

// Engine computes episodic intrinsic rewards. It is stateless apart from
// its configuration; all mutable state lives in the State passed per call.
type Engine struct {
	searcher        knn.Searcher
	rewardScale     float64
	constant        float64
	epsilon         float64
	clusterDistance float64
	maxSimilarity   float64
}

// Option configures the engine.
type Option func(*Engine)

// WithRewardScale sets the β multiplier applied to every reward.
func WithRewardScale(scale float64) Option {
	return func(e *Engine) {
		e.rewardScale = scale
	}
}

// WithConstant sets the normalization stabilizer.
func WithConstant(c float64) Option {
	return func(e *Engine) {
		e.constant = c
	}
}

// WithEpsilon sets the kernel stabilizer.
func WithEpsilon(eps float64) Option {
	return func(e *Engine) {
		e.epsilon = eps
	}
}

// WithClusterDistance sets the ξ threshold subtracted from the normalized
// distance rate before clipping at zero.
func WithClusterDistance(d float64) Option {
	return func(e *Engine) {
		e.clusterDistance = d
	}
}

// WithMaxSimilarity sets the similarity bound above which rewards are
// forced to zero.
func WithMaxSimilarity(s float64) Option {
	return func(e *Engine) {
		e.maxSimilarity = s
	}
}

// NewEngine creates a reward engine delegating nearest-neighbor queries to
// the given searcher.
func NewEngine(searcher knn.Searcher, opts ...Option) *Engine {
	e := &Engine{
		searcher:        searcher,
		rewardScale:     1.0,
		constant:        DefaultConstant,
		epsilon:         DefaultEpsilon,
		clusterDistance: DefaultClusterDistance,
		maxSimilarity:   DefaultMaxSimilarity,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rewards computes one intrinsic reward per embedding and folds the batch
// into the state.
//
// embeddings is an [M, Dim] batch. Per call the engine:
//  1. queries the state's k nearest neighbors for every embedding (the
//     batch never neighbors itself: queries run against pre-insert memory)
//  2. inserts the batch into the ring buffer at NextIndex, wrapping
//  3. folds all M*k squared distances into the running sum and count
//  4. normalizes distances by the post-update lifetime mean, clips by the
//     cluster distance, applies the ε-kernel, and reduces each embedding's
//     k kernel values to a similarity
//  5. returns reward = scale / similarity, zeroed where similarity exceeds
//     the maximum
//
// The state is updated in place: the call consumes it, and callers must not
// rely on pre-call snapshots of Memory. Validation and search failures leave
// the state untouched. Rewards are finite and non-negative; an empty batch
// is a no-op.
func (e *Engine) Rewards(ctx context.Context, state *State, embeddings [][]float64) ([]float64, error) {
	if state == nil {
		return nil, fmt.Errorf("intrinsic: nil state")
	}
	for i, emb := range embeddings {
		if len(emb) != state.dim {
			return nil, fmt.Errorf("%w: embedding %d has dim %d, state has dim %d",
				ErrDimMismatch, i, len(emb), state.dim)
		}
	}
	if len(embeddings) == 0 {
		return []float64{}, nil
	}

	k := state.numNeighbors
	distances, err := e.searcher.Search(ctx, state.memory, embeddings, k)
	if err != nil {
		return nil, fmt.Errorf("knn query: %w", err)
	}
	if len(distances) != len(embeddings) {
		return nil, fmt.Errorf("intrinsic: searcher returned %d rows for %d queries",
			len(distances), len(embeddings))
	}
	for i, row := range distances {
		if len(row) != k {
			return nil, fmt.Errorf("intrinsic: searcher returned %d distances for query %d, want %d",
				len(row), i, k)
		}
	}

	// Ring-buffer insert. Embeddings are copied so memory never aliases
	// caller slices.
	capacity := len(state.memory)
	for i, emb := range embeddings {
		copy(state.memory[(state.nextIndex+i)%capacity], emb)
	}
	state.nextIndex = (state.nextIndex + len(embeddings)) % capacity

	// Update the lifetime distance statistics before normalizing: the
	// mean is the running average including this batch.
	for _, row := range distances {
		for _, d := range row {
			state.distanceSum += d
			state.distanceCount++
		}
	}
	meanDistance := state.distanceSum / float64(state.distanceCount)

	rewards := make([]float64, len(embeddings))
	for i, row := range distances {
		var kernelSum float64
		for _, d := range row {
			rate := d/(meanDistance+e.constant) - e.clusterDistance
			if rate < 0 {
				rate = 0
			}
			kernelSum += e.epsilon / (rate + e.epsilon)
		}
		similarity := math.Sqrt(kernelSum) + e.constant
		if similarity > e.maxSimilarity {
			rewards[i] = 0
			continue
		}
		rewards[i] = e.rewardScale / similarity
	}
	return rewards, nil
}
