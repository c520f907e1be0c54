package domain

import (
	"fmt"
	"sort"
)

// Attribute is a passthrough column of a company record, kept verbatim
type Attribute struct {
	Column string `json:"column" yaml:"column"`
	Value  string `json:"value" yaml:"value"`
}

// CompanyRecord represents one row of the company table
type CompanyRecord struct {
	Index             int         `json:"index" yaml:"index"`
	ID                string      `json:"id" yaml:"id"`
	Name              string      `json:"name" yaml:"name"`
	NormalizedName    string      `json:"normalized_name" yaml:"normalized_name"`
	CompletenessScore int         `json:"completeness_score" yaml:"completeness_score"`
	Attributes        []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Attribute returns the value of a passthrough column
func (r *CompanyRecord) Attribute(column string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Column == column {
			return a.Value, true
		}
	}
	return "", false
}

// Pair is a candidate duplicate: two record indices (I < J) and their name similarity
type Pair struct {
	Score float64 `json:"score" yaml:"score"`
	I     int     `json:"i" yaml:"i"`
	J     int     `json:"j" yaml:"j"`
}

// SortPairs orders pairs by score descending, then (I, J) ascending.
func SortPairs(pairs []Pair) {
	sort.Slice(pairs, func(a, b int) bool {
		pa, pb := pairs[a], pairs[b]
		if pa.Score != pb.Score {
			return pa.Score > pb.Score
		}
		if pa.I != pb.I {
			return pa.I < pb.I
		}
		return pa.J < pb.J
	})
}

// Cluster is a resolved group of duplicate records and its surviving member
type Cluster struct {
	Members        []int `json:"members" yaml:"members"`
	Representative int   `json:"representative" yaml:"representative"`
}

// Removed returns the members that are not the representative
func (c Cluster) Removed() []int {
	removed := make([]int, 0, len(c.Members)-1)
	for _, m := range c.Members {
		if m != c.Representative {
			removed = append(removed, m)
		}
	}
	return removed
}

// Mapping maps a removed company id to the id kept in its place
type Mapping map[string]string

// Resolve returns the kept id for v, or v itself when v was not removed
func (m Mapping) Resolve(v string) string {
	if kept, ok := m[v]; ok {
		return kept
	}
	return v
}

// Keys returns the removed ids in sorted order
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that no kept id is itself a removed id and that no id maps to itself.
func (m Mapping) Validate() error {
	for removed, kept := range m {
		if removed == kept {
			return fmt.Errorf("mapping: id %q maps to itself", removed)
		}
		if _, chained := m[kept]; chained {
			return fmt.Errorf("mapping: chain detected %q -> %q -> %q", removed, kept, m[kept])
		}
	}
	return nil
}
