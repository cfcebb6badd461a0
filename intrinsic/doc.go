// Package intrinsic computes episodic-memory intrinsic rewards for
// exploration, in the style of Never Give Up (Puigdomènech Badia et al.,
// 2020) and Agent57.
//
// The reward scores how novel a new state embedding is relative to a bounded
// ring buffer of embeddings seen earlier in the episode: each embedding is
// compared against its k nearest memory entries, distances are normalized by
// a lifetime running mean, passed through an inverse kernel, and reduced to
// a similarity whose reciprocal is the reward. Embeddings close to
// everything already in memory earn little; embeddings far from memory earn
// more.
//
// Architecture:
//   - State: the episodic memory ring buffer plus running distance
//     statistics, created once per episode via NewState and threaded
//     call-to-call
//   - Engine: the reward computation, parameterized by functional options
//     and delegating nearest-neighbor search to a knn.Searcher backend
//
// The caller owns episode boundaries: discard the State and construct a
// fresh one when an episode ends. The engine is synchronous and does no
// internal locking; give each actor its own State or serialize calls.
package intrinsic
