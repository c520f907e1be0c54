// Package resolve decides which company record survives in each cluster of
// near-duplicates and builds the id mapping that retires the others.
package resolve

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/lherron/dedupe/internal/cluster"
	"github.com/lherron/dedupe/internal/domain"
	"github.com/lherron/dedupe/internal/similarity"
)

// DefaultThreshold is the similarity a pair of names needs to be linked
const DefaultThreshold = 0.85

// Options configures a resolution run
type Options struct {
	Threshold float64
	Workers   int
}

// Plan is the outcome of a resolution run
type Plan struct {
	Threshold float64          `json:"threshold" yaml:"threshold"`
	Records   int              `json:"records" yaml:"records"`
	Pairs     []domain.Pair    `json:"pairs" yaml:"pairs"`
	Clusters  []domain.Cluster `json:"clusters" yaml:"clusters"`
	Mapping   domain.Mapping   `json:"mapping" yaml:"mapping"`
}

// RemovedIndices returns the set of record indices retired by the plan
func (p *Plan) RemovedIndices() map[int]bool {
	removed := make(map[int]bool)
	for _, c := range p.Clusters {
		for _, idx := range c.Removed() {
			removed[idx] = true
		}
	}
	return removed
}

// MappingEntry is one removed id and the id kept in its place
type MappingEntry struct {
	RemovedID   string `json:"removed_id" yaml:"removed_id"`
	RemovedName string `json:"removed_name" yaml:"removed_name"`
	KeptID      string `json:"kept_id" yaml:"kept_id"`
	KeptName    string `json:"kept_name" yaml:"kept_name"`
}

// Entries lists the plan's mapping with the names of both records, ordered by removed id
func (p *Plan) Entries(records []domain.CompanyRecord) []MappingEntry {
	var entries []MappingEntry
	for _, c := range p.Clusters {
		kept := records[c.Representative]
		for _, idx := range c.Removed() {
			entries = append(entries, MappingEntry{
				RemovedID:   records[idx].ID,
				RemovedName: records[idx].Name,
				KeptID:      kept.ID,
				KeptName:    kept.Name,
			})
		}
	}
	sort.Slice(entries, func(a, b int) bool {
		return entries[a].RemovedID < entries[b].RemovedID
	})
	return entries
}

// BuildMapping finds close pairs, clusters them, picks a representative per
// cluster and maps every other member's id to the representative's id.
func BuildMapping(ctx context.Context, records []domain.CompanyRecord, opts Options) (domain.Mapping, *Plan, error) {
	if err := domain.ValidateThreshold(opts.Threshold); err != nil {
		return nil, nil, err
	}

	pairs, err := similarity.FindClosePairs(ctx, records, opts.Threshold, opts.Workers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find close pairs: %w", err)
	}

	groups, err := cluster.Build(pairs, len(records))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build clusters: %w", err)
	}

	mapping, clusters := MappingFromClusters(records, groups)

	plan := &Plan{
		Threshold: opts.Threshold,
		Records:   len(records),
		Pairs:     pairs,
		Clusters:  clusters,
		Mapping:   mapping,
	}
	return mapping, plan, nil
}

// MappingFromClusters selects a representative for each precomputed cluster
// and returns the resulting mapping along with the resolved clusters.
func MappingFromClusters(records []domain.CompanyRecord, groups [][]int) (domain.Mapping, []domain.Cluster) {
	mapping := make(domain.Mapping)
	clusters := make([]domain.Cluster, 0, len(groups))

	for _, members := range groups {
		kept := SelectRepresentative(records, members)
		c := domain.Cluster{Members: members, Representative: kept}
		for _, idx := range c.Removed() {
			mapping[records[idx].ID] = records[kept].ID
		}
		clusters = append(clusters, c)
	}

	return mapping, clusters
}

// SelectRepresentative returns the member of cluster to keep.
//
// The member with the lowest completeness score wins. Ties go to the id with
// the smallest integer value; ids that are not integers rank after every
// integer id. Remaining ties (non-integer ids, or equal values such as "07"
// and "7") are broken by the id string, then by index.
func SelectRepresentative(records []domain.CompanyRecord, members []int) int {
	best := members[0]
	for _, idx := range members[1:] {
		if better(&records[idx], &records[best]) {
			best = idx
		}
	}
	return best
}

func better(a, b *domain.CompanyRecord) bool {
	if a.CompletenessScore != b.CompletenessScore {
		return a.CompletenessScore < b.CompletenessScore
	}

	na, okA := parseID(a.ID)
	nb, okB := parseID(b.ID)
	switch {
	case okA && !okB:
		return true
	case !okA && okB:
		return false
	case okA && okB:
		if c := na.Cmp(nb); c != 0 {
			return c < 0
		}
	}

	if a.ID != b.ID {
		return a.ID < b.ID
	}
	return a.Index < b.Index
}

// parseID parses an id as an integer of any size, allowing surrounding spaces
// and a leading sign.
func parseID(id string) (*big.Int, bool) {
	s := strings.TrimSpace(id)
	if s == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, false
	}
	return n, true
}
