// Package cluster groups linked record indices into connected components.
package cluster

import (
	"fmt"
	"sort"

	"github.com/lherron/dedupe/internal/domain"
)

// disjointSet is a union-find structure with path compression and union by size
type disjointSet struct {
	parent []int
	size   []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range ds.parent {
		ds.parent[i] = i
		ds.size[i] = 1
	}
	return ds
}

func (ds *disjointSet) find(x int) int {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

func (ds *disjointSet) union(a, b int) {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	if ds.size[ra] < ds.size[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	ds.size[ra] += ds.size[rb]
}

// Build returns the connected components of the graph whose edges are pairs,
// over recordCount vertices. Components with a single member are omitted.
// Each component is sorted ascending, and components are ordered by their
// smallest member. The order of pairs does not affect the result.
func Build(pairs []domain.Pair, recordCount int) ([][]int, error) {
	ds := newDisjointSet(recordCount)
	for _, p := range pairs {
		if p.I < 0 || p.J < 0 || p.I >= recordCount || p.J >= recordCount {
			return nil, fmt.Errorf("pair (%d, %d) out of range for %d records", p.I, p.J, recordCount)
		}
		ds.union(p.I, p.J)
	}

	groups := make(map[int][]int)
	for idx := 0; idx < recordCount; idx++ {
		root := ds.find(idx)
		groups[root] = append(groups[root], idx)
	}

	var clusters [][]int
	for _, members := range groups {
		if len(members) > 1 {
			clusters = append(clusters, members)
		}
	}

	// members were appended in ascending order, so members[0] is the minimum
	sort.Slice(clusters, func(a, b int) bool {
		return clusters[a][0] < clusters[b][0]
	})
	return clusters, nil
}
