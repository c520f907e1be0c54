package cluster

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/lherron/dedupe/internal/domain"
)

func pairs(edges ...[2]int) []domain.Pair {
	out := make([]domain.Pair, len(edges))
	for k, e := range edges {
		out[k] = domain.Pair{Score: 0.9, I: e[0], J: e[1]}
	}
	return out
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		pairs []domain.Pair
		n     int
		want  [][]int
	}{
		{
			name: "no pairs",
			n:    3,
			want: nil,
		},
		{
			name:  "single pair",
			pairs: pairs([2]int{0, 1}),
			n:     3,
			want:  [][]int{{0, 1}},
		},
		{
			name:  "transitive chain",
			pairs: pairs([2]int{0, 2}, [2]int{2, 5}, [2]int{5, 7}),
			n:     8,
			want:  [][]int{{0, 2, 5, 7}},
		},
		{
			name:  "two components",
			pairs: pairs([2]int{3, 4}, [2]int{0, 1}, [2]int{1, 6}),
			n:     7,
			want:  [][]int{{0, 1, 6}, {3, 4}},
		},
		{
			name:  "redundant edges",
			pairs: pairs([2]int{0, 1}, [2]int{1, 2}, [2]int{0, 2}),
			n:     3,
			want:  [][]int{{0, 1, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.pairs, tt.n)
			if err != nil {
				t.Fatalf("Build() failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Build() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildOrderIndependent(t *testing.T) {
	edges := pairs(
		[2]int{0, 3}, [2]int{3, 9}, [2]int{1, 2}, [2]int{4, 5},
		[2]int{5, 6}, [2]int{6, 4}, [2]int{10, 11}, [2]int{2, 8},
	)
	want, err := Build(edges, 12)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		shuffled := append([]domain.Pair(nil), edges...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := Build(shuffled, 12)
		if err != nil {
			t.Fatalf("Build() failed: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round %d: Build() = %v, want %v", round, got, want)
		}
	}
}

func TestBuildDisjoint(t *testing.T) {
	edges := pairs([2]int{0, 1}, [2]int{2, 3}, [2]int{3, 4}, [2]int{6, 7}, [2]int{7, 0})
	clusters, err := Build(edges, 9)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	seen := make(map[int]int)
	for c, members := range clusters {
		if len(members) < 2 {
			t.Errorf("cluster %d has fewer than 2 members: %v", c, members)
		}
		for _, m := range members {
			if prev, ok := seen[m]; ok {
				t.Errorf("index %d in clusters %d and %d", m, prev, c)
			}
			seen[m] = c
		}
	}
	if _, ok := seen[5]; ok {
		t.Error("unmatched index 5 should not be in any cluster")
	}
}

func TestBuildOutOfRange(t *testing.T) {
	if _, err := Build(pairs([2]int{0, 5}), 3); err == nil {
		t.Error("expected error for out of range pair")
	}
}
