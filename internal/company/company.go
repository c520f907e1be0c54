// Package company loads the company table into typed records and derives the
// fields used to compare them.
package company

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/lherron/dedupe/internal/domain"
	"github.com/lherron/dedupe/internal/table"
)

// DefaultMissingTokens returns the placeholder values counted as missing,
// compared case-insensitively after trimming.
func DefaultMissingTokens() []string {
	return []string{"unknown", "none", "nan"}
}

// Options controls how the company table is read
type Options struct {
	IDColumn      string
	NameColumn    string
	MissingTokens []string
}

// DefaultOptions returns options for a table with "id" and "name" columns
func DefaultOptions() Options {
	return Options{
		IDColumn:      "id",
		NameColumn:    "name",
		MissingTokens: DefaultMissingTokens(),
	}
}

// Load reads the company table at path
func Load(path string, opts Options) ([]domain.CompanyRecord, error) {
	tbl, err := table.Read(path)
	if err != nil {
		return nil, err
	}
	return FromTable(path, tbl, opts)
}

// FromTable builds records from an already parsed table
func FromTable(path string, tbl *table.Table, opts Options) ([]domain.CompanyRecord, error) {
	idCol := tbl.Column(opts.IDColumn)
	nameCol := tbl.Column(opts.NameColumn)
	if opts.IDColumn == opts.NameColumn {
		return nil, domain.ConfigErrorf("id column and name column must differ (both %q)", opts.IDColumn)
	}
	if idCol < 0 || nameCol < 0 {
		return nil, domain.SchemaErrorf(path, "table must contain columns %q and %q", opts.IDColumn, opts.NameColumn)
	}

	missing := tokenSet(opts.MissingTokens)
	records := make([]domain.CompanyRecord, 0, len(tbl.Rows))
	seen := make(map[string]int, len(tbl.Rows))

	for i, row := range tbl.Rows {
		id := row[idCol]
		if prev, dup := seen[id]; dup {
			return nil, domain.SchemaErrorf(path, "duplicate id %q on rows %d and %d", id, prev+1, i+1)
		}
		seen[id] = i

		attrs := make([]domain.Attribute, 0, max(len(tbl.Header)-2, 0))
		for c, column := range tbl.Header {
			if c == idCol || c == nameCol {
				continue
			}
			attrs = append(attrs, domain.Attribute{Column: column, Value: row[c]})
		}

		records = append(records, domain.CompanyRecord{
			Index:             i,
			ID:                id,
			Name:              row[nameCol],
			NormalizedName:    Normalize(row[nameCol]),
			CompletenessScore: completeness(attrs, missing),
			Attributes:        attrs,
		})
	}

	return records, nil
}

// Normalize derives the comparison form of a company name: NFC, lower-case,
// every run of characters that are neither letters nor numbers replaced by a
// single space, trimmed. Compatibility symbols such as ™ are separators.
func Normalize(name string) string {
	s := strings.ToLower(norm.NFC.String(name))

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Completeness counts the attributes whose value is missing: empty after
// trimming, or equal to one of tokens ignoring case. Lower is more complete.
func Completeness(attrs []domain.Attribute, tokens []string) int {
	return completeness(attrs, tokenSet(tokens))
}

func completeness(attrs []domain.Attribute, missing map[string]struct{}) int {
	n := 0
	for _, a := range attrs {
		v := strings.ToLower(strings.TrimSpace(a.Value))
		if v == "" {
			n++
			continue
		}
		if _, ok := missing[v]; ok {
			n++
		}
	}
	return n
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}
