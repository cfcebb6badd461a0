package chromem

import (
	"context"
	"testing"
)

// TestCollectionsBoundedAcrossSnapshots drives many distinct memory
// snapshots through one searcher. Collections leaving the cache must be
// deleted from the DB, so the DB never holds more than the cache's MaxCost
// worth of collections.
func TestCollectionsBoundedAcrossSnapshots(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	for i := 0; i < 200; i++ {
		memory := [][]float64{
			{float64(i), 1},
			{1, float64(i)},
		}
		if _, err := s.Search(context.Background(), memory, [][]float64{{1, 0}}, 1); err != nil {
			t.Fatalf("step %d: Search failed: %v", i, err)
		}
		// Flush the cache's set buffer so evictions (and their
		// collection deletes) are applied before the next step.
		s.cache.Wait()
	}

	if n := len(s.db.ListCollections()); n > 64 {
		t.Errorf("db retains %d collections after 200 snapshots, want <= 64", n)
	}
}

// TestInvalidQuerySkipsIndexBuild: shape validation runs before the
// collection build, so a bad query costs nothing and leaks nothing.
func TestInvalidQuerySkipsIndexBuild(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	memory := [][]float64{{1, 0}}
	if _, err := s.Search(context.Background(), memory, [][]float64{{1}}, 1); err == nil {
		t.Fatal("expected error for mismatched query dimension")
	}
	if _, err := s.Search(context.Background(), [][]float64{{1, 0}, {1}}, [][]float64{{1, 0}}, 1); err == nil {
		t.Fatal("expected error for ragged memory")
	}

	s.cache.Wait()
	if n := len(s.db.ListCollections()); n != 0 {
		t.Errorf("db holds %d collections after failed searches, want 0", n)
	}
}
