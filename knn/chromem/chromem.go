// Package chromem implements approximate k-nearest-neighbor search on top of
// chromem-go, a pure Go embedded vector database.
//
// Candidate ranking inside chromem is cosine-based, so this backend is
// approximate with respect to the squared-Euclidean contract; it is intended
// for (near-)unit-norm embeddings, where the two orderings agree. Distances
// returned to the caller are always exact squared Euclidean distances,
// recomputed against the original memory rows.
package chromem

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"strconv"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/rlkit/explore-go-sdk/knn"
)

// Searcher is a chromem-go backed approximate k-NN searcher.
//
// Each distinct memory snapshot is indexed into its own collection. Built
// collections are cached by a fingerprint of the buffer contents, so
// repeated queries against an unchanged snapshot (several actors sharing one
// state, or replayed steps) skip the rebuild.
type Searcher struct {
	db    *chromem.DB
	cache *ristretto.Cache
}

// collection pairs a built chromem collection with its name in the DB and
// the number of finite memory rows it holds.
type collection struct {
	col    *chromem.Collection
	name   string
	finite int
}

// New creates a chromem-backed searcher.
func New() (*Searcher, error) {
	db := chromem.NewDB()

	// The cache owns the lifetime of the collections inside db: entries
	// leaving the cache (evicted or rejected by admission) drop their
	// collection, keeping the DB bounded by MaxCost no matter how many
	// distinct snapshots an episode produces.
	drop := func(item *ristretto.Item) {
		if c, ok := item.Value.(*collection); ok {
			if err := db.DeleteCollection(c.name); err != nil {
				log.Printf("[CHROMEM] Failed to delete collection %s: %v", c.name, err)
			}
		}
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 12,
		MaxCost:     64, // cached collections, not bytes
		BufferItems: 64,
		OnEvict:     drop,
		OnReject:    drop,
	})
	if err != nil {
		return nil, fmt.Errorf("create collection cache: %w", err)
	}

	return &Searcher{
		db:    db,
		cache: cache,
	}, nil
}

// Search returns k squared Euclidean distances per query, padding with +Inf
// when fewer than k finite memory rows exist.
func (s *Searcher) Search(ctx context.Context, memory, queries [][]float64, k int) ([][]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("chromem: k must be >= 1, got %d", k)
	}
	// Validate shapes up front: an invalid query must not pay for (or
	// leak) an index build.
	if len(memory) > 0 {
		dim := len(memory[0])
		for i, row := range memory {
			if len(row) != dim {
				return nil, fmt.Errorf("chromem: memory row %d has dim %d, want %d",
					i, len(row), dim)
			}
		}
		for qi, query := range queries {
			if len(query) != dim {
				return nil, fmt.Errorf("chromem: query %d has dim %d, memory has dim %d",
					qi, len(query), dim)
			}
		}
	}

	col, err := s.getOrBuildCollection(ctx, memory)
	if err != nil {
		return nil, err
	}

	results := make([][]float64, len(queries))
	for qi, query := range queries {
		row := make([]float64, k)
		for i := range row {
			row[i] = knn.Inf
		}

		// chromem requires nResults <= collection size.
		n := k
		if n > col.finite {
			n = col.finite
		}
		if n > 0 {
			hits, err := col.col.QueryEmbedding(ctx, toFloat32(query), n, nil, nil)
			if err != nil {
				return nil, fmt.Errorf("chromem query: %w", err)
			}
			for i, hit := range hits {
				idx, err := strconv.Atoi(hit.ID)
				if err != nil || idx < 0 || idx >= len(memory) {
					return nil, fmt.Errorf("chromem: unexpected document id %q", hit.ID)
				}
				row[i] = squaredDistance(query, memory[idx])
			}
		}
		results[qi] = row
	}
	return results, nil
}

// Close releases the collection cache.
func (s *Searcher) Close() error {
	s.cache.Close()
	return nil
}

// getOrBuildCollection returns the cached collection for this memory
// snapshot, building and indexing one if the fingerprint is new.
func (s *Searcher) getOrBuildCollection(ctx context.Context, memory [][]float64) (*collection, error) {
	key := fingerprint(memory)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*collection), nil
	}

	name := fmt.Sprintf("mem_%s", uuid.New().String())
	col, err := s.db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	finite := 0
	for i, row := range memory {
		if !isFinite(row) {
			continue // sentinel slot, never a nearest neighbor
		}
		doc := chromem.Document{
			ID:        strconv.Itoa(i),
			Embedding: toFloat32(row),
		}
		if err := col.AddDocument(ctx, doc); err != nil {
			if derr := s.db.DeleteCollection(name); derr != nil {
				log.Printf("[CHROMEM] Failed to delete collection %s: %v", name, derr)
			}
			return nil, fmt.Errorf("add document: %w", err)
		}
		finite++
	}

	log.Printf("[CHROMEM] Indexed snapshot: rows=%d, finite=%d", len(memory), finite)

	built := &collection{col: col, name: name, finite: finite}
	if !s.cache.Set(key, built, 1) {
		// Dropped by the cache's set buffer: no eviction callback will
		// ever fire for it, so unregister the collection now. The
		// returned object itself stays usable for this call.
		if err := s.db.DeleteCollection(name); err != nil {
			log.Printf("[CHROMEM] Failed to delete collection %s: %v", name, err)
		}
	}
	return built, nil
}

// fingerprint hashes the memory buffer contents for the collection cache.
func fingerprint(memory [][]float64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(memory)))
	h.Write(buf[:])
	for _, row := range memory {
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	return h.Sum64()
}

func isFinite(row []float64) bool {
	for _, v := range row {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// toFloat32 converts a float64 vector to chromem's float32 representation.
func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
