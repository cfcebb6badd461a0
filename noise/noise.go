// Package noise provides additive exploration noise for RL action selection.
//
// Three generators are supported:
//   - Gaussian noise for continuous actions
//   - Ornstein-Uhlenbeck temporally correlated noise for continuous actions
//   - Dirichlet noise mixed into policy priors (AlphaZero-style root
//     exploration)
//
// Each generator is a pure function of its inputs and a rng.Key; callers
// supply a fresh key per step.
package noise

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rlkit/explore-go-sdk/rng"
)

// ErrShape reports inputs whose dimensions violate a generator's contract.
// Validation happens before any sampling; no partial results are produced.
var ErrShape = errors.New("noise: shape violation")

// ErrParameter reports an out-of-range noise parameter.
var ErrParameter = errors.New("noise: invalid parameter")

// AddGaussian returns action with independent N(0, stddev²) noise added to
// each element. For stddev = 0 the action is returned unchanged (as a copy).
func AddGaussian(key rng.Key, action []float64, stddev float64) ([]float64, error) {
	if len(action) == 0 {
		return nil, fmt.Errorf("%w: action must be non-empty", ErrShape)
	}
	if stddev < 0 {
		return nil, fmt.Errorf("%w: stddev must be >= 0, got %v", ErrParameter, stddev)
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: key.Source()}
	noisy := make([]float64, len(action))
	for i, a := range action {
		noisy[i] = a + normal.Rand()*stddev
	}
	return noisy, nil
}

// AddOrnsteinUhlenbeck returns action perturbed by temporally correlated
// noise from an OU process:
//
//	noiseT = (1 - damping) * noiseTm1 + N(0, stddev²)
//
// Both the noisy action and noiseT are returned; the caller persists noiseT
// and feeds it back as noiseTm1 on the next step.
//
// action and noiseTm1 must be rank-1 vectors of equal length.
func AddOrnsteinUhlenbeck(key rng.Key, action, noiseTm1 []float64, damping, stddev float64) (noisy, noiseT []float64, err error) {
	if len(action) == 0 {
		return nil, nil, fmt.Errorf("%w: action must be non-empty", ErrShape)
	}
	if len(action) != len(noiseTm1) {
		return nil, nil, fmt.Errorf("%w: action has length %d, noiseTm1 has length %d",
			ErrShape, len(action), len(noiseTm1))
	}
	if stddev < 0 {
		return nil, nil, fmt.Errorf("%w: stddev must be >= 0, got %v", ErrParameter, stddev)
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: key.Source()}
	noisy = make([]float64, len(action))
	noiseT = make([]float64, len(action))
	for i := range action {
		noiseT[i] = (1-damping)*noiseTm1[i] + normal.Rand()*stddev
		noisy[i] = action[i] + noiseT[i]
	}
	return noisy, noiseT, nil
}

// AddDirichlet mixes a symmetric Dirichlet(alpha) sample into a batched
// policy prior:
//
//	noisyPrior = (1 - fraction) * prior + fraction * noise
//
// prior must be a rectangular [B, N] matrix (batch B, N actions); one
// Dirichlet sample of size N is drawn independently per batch row. alpha
// must be > 0 and fraction in [0, 1]. For fraction = 0 the prior is returned
// unchanged (as a copy); for fraction = 1 the output is the raw sample.
func AddDirichlet(key rng.Key, prior [][]float64, alpha, fraction float64) ([][]float64, error) {
	if len(prior) == 0 || len(prior[0]) == 0 {
		return nil, fmt.Errorf("%w: prior must be a non-empty [B, N] matrix", ErrShape)
	}
	numActions := len(prior[0])
	for b, row := range prior {
		if len(row) != numActions {
			return nil, fmt.Errorf("%w: prior row %d has length %d, want %d",
				ErrShape, b, len(row), numActions)
		}
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("%w: alpha must be > 0, got %v", ErrParameter, alpha)
	}
	if fraction < 0 || fraction > 1 {
		return nil, fmt.Errorf("%w: fraction must be in [0, 1], got %v", ErrParameter, fraction)
	}

	concentration := make([]float64, numActions)
	for i := range concentration {
		concentration[i] = alpha
	}
	dirichlet := distmv.NewDirichlet(concentration, key.Source())

	noisy := make([][]float64, len(prior))
	sample := make([]float64, numActions)
	for b, row := range prior {
		dirichlet.Rand(sample)
		out := make([]float64, numActions)
		for i, p := range row {
			out[i] = (1-fraction)*p + fraction*sample[i]
		}
		noisy[b] = out
	}
	return noisy, nil
}
