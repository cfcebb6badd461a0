package brute_test

import (
	"context"
	"math"
	"testing"

	"github.com/rlkit/explore-go-sdk/knn/brute"
)

func TestSearchExact(t *testing.T) {
	memory := [][]float64{
		{0, 0},
		{3, 4},
		{1, 0},
		{0, 2},
	}
	queries := [][]float64{{0, 0}}

	got, err := brute.New().Search(context.Background(), memory, queries, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	want := []float64{0, 1, 4} // {0,0}, {1,0}, {0,2}
	if len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("got shape [%d][%d], want [1][3]", len(got), len(got[0]))
	}
	for i := range want {
		if got[0][i] != want[i] {
			t.Errorf("distance %d = %v, want %v", i, got[0][i], want[i])
		}
	}
}

func TestSearchSentinelRowsExcluded(t *testing.T) {
	inf := math.Inf(1)
	memory := [][]float64{
		{0, 0},
		{1, 1},
		{inf, inf},
		{inf, inf},
	}
	queries := [][]float64{{0, 0}}

	got, err := brute.New().Search(context.Background(), memory, queries, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	for i, d := range got[0] {
		if math.IsInf(d, 1) {
			t.Errorf("distance %d is +Inf despite enough finite rows", i)
		}
	}
	if got[0][0] != 0 || got[0][1] != 2 {
		t.Errorf("got %v, want [0 2]", got[0])
	}
}

func TestSearchPadsWhenMemorySmallerThanK(t *testing.T) {
	memory := [][]float64{{1}, {2}}
	queries := [][]float64{{1}}

	got, err := brute.New().Search(context.Background(), memory, queries, 4)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(got[0]) != 4 {
		t.Fatalf("got %d distances, want exactly k=4", len(got[0]))
	}
	if got[0][0] != 0 || got[0][1] != 1 {
		t.Errorf("finite distances = %v, want [0 1 ...]", got[0][:2])
	}
	for i := 2; i < 4; i++ {
		if !math.IsInf(got[0][i], 1) {
			t.Errorf("distance %d = %v, want +Inf padding", i, got[0][i])
		}
	}
}

func TestSearchMultipleQueries(t *testing.T) {
	memory := [][]float64{{0}, {10}}
	queries := [][]float64{{0}, {10}}

	got, err := brute.New().Search(context.Background(), memory, queries, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got[0][0] != 0 || got[1][0] != 0 {
		t.Errorf("got %v, want each query to find its own row at distance 0", got)
	}
}

func TestSearchDimMismatch(t *testing.T) {
	memory := [][]float64{{1, 2}}
	queries := [][]float64{{1}}

	if _, err := brute.New().Search(context.Background(), memory, queries, 1); err == nil {
		t.Fatal("expected error for mismatched dimensions")
	}
}

func TestSearchInvalidK(t *testing.T) {
	if _, err := brute.New().Search(context.Background(), nil, nil, 0); err == nil {
		t.Fatal("expected error for k=0")
	}
}
