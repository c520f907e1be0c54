// Package similarity scores company names against each other and finds the
// pairs close enough to be treated as duplicates.
//
// Every pair of records is compared, so the cost grows with the square of the
// record count. That is fine for a company list of a few thousand rows; larger
// inputs would need blocking, which this package does not do.
package similarity

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"github.com/lherron/dedupe/internal/domain"
)

// Ratio returns the Ratcliff/Obershelp similarity of a and b: 2*M/T where T
// is the total number of characters and M the number of characters matched by
// repeatedly taking the longest common substring and recursing on both sides.
//
// Operands are put in lexicographic order first so Ratio(a, b) == Ratio(b, a)
// even when several longest matches of equal length exist.
func Ratio(a, b string) float64 {
	return ratio(newName(a), newName(b))
}

// name is a normalized name split once into its characters
type name struct {
	s     string
	elems []string
}

func newName(s string) name {
	return name{s: s, elems: runes(s)}
}

func ratio(a, b name) float64 {
	if a.s == b.s {
		return 1.0
	}
	if b.s < a.s {
		a, b = b, a
	}
	m := difflib.NewMatcherWithJunk(a.elems, b.elems, false, nil)
	return m.Ratio()
}

// runes splits s into one element per character
func runes(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// FindClosePairs compares every pair of records with non-empty normalized
// names and returns those scoring at least threshold, ordered by score
// descending then by (I, J) ascending.
//
// Rows are scored concurrently by up to workers goroutines (NumCPU when
// workers <= 0). The result does not depend on scheduling.
func FindClosePairs(ctx context.Context, records []domain.CompanyRecord, threshold float64, workers int) ([]domain.Pair, error) {
	n := len(records)
	if n < 2 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	names := make([]name, n)
	for i := range records {
		names[i] = newName(records[i].NormalizedName)
	}

	var (
		mu    sync.Mutex
		pairs []domain.Pair
	)

	rows := make(chan int)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(rows)
		for i := 0; i < n-1; i++ {
			if names[i].s == "" {
				continue
			}
			select {
			case rows <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			var local []domain.Pair
			for i := range rows {
				if err := ctx.Err(); err != nil {
					return err
				}
				local = append(local, scoreRow(names, i, threshold)...)
			}
			mu.Lock()
			pairs = append(pairs, local...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	domain.SortPairs(pairs)
	return pairs, nil
}

// scoreRow compares names[i] with every later name
func scoreRow(names []name, i int, threshold float64) []domain.Pair {
	var out []domain.Pair
	for j := i + 1; j < len(names); j++ {
		if names[j].s == "" {
			continue
		}
		if !quickRatioAtLeast(len(names[i].elems), len(names[j].elems), threshold) {
			continue
		}
		if score := ratio(names[i], names[j]); score >= threshold {
			out = append(out, domain.Pair{Score: score, I: i, J: j})
		}
	}
	return out
}

// quickRatioAtLeast reports whether the length-based upper bound of Ratio
// could reach threshold given the character counts of both names. Ratio can
// never exceed 2*min/(la+lb).
func quickRatioAtLeast(la, lb int, threshold float64) bool {
	lo := la
	if lb < lo {
		lo = lb
	}
	return 2*float64(lo)/float64(la+lb) >= threshold
}

// Score returns the similarity of two raw names after normalizing them with
// normalize. Empty normalized names never match and score 0.
func Score(a, b string, normalize func(string) string) float64 {
	na, nb := normalize(a), normalize(b)
	if strings.TrimSpace(na) == "" || strings.TrimSpace(nb) == "" {
		return 0
	}
	return Ratio(na, nb)
}
