// Package apply rewrites company foreign keys in dependent tables using a
// removed-id to kept-id mapping.
package apply

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lherron/dedupe/internal/bulk"
	"github.com/lherron/dedupe/internal/domain"
	"github.com/lherron/dedupe/internal/table"
)

// uniqueTargets drops repeated paths, keeping the first occurrence
func uniqueTargets(targets []string) []string {
	seen := make(map[string]bool, len(targets))
	out := make([]string, 0, len(targets))
	for _, path := range targets {
		key := filepath.Clean(path)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, path)
	}
	return out
}

// DefaultSuffix is appended to a target's file name when not writing in place
const DefaultSuffix = "_updated"

// Options controls where and whether rewritten tables are written
type Options struct {
	Inplace bool
	Suffix  string
	DryRun  bool
	Jobs    int
	Logger  *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Result reports what happened to one target table
type Result struct {
	Path       string `json:"path" yaml:"path"`
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Rows       int    `json:"rows" yaml:"rows"`
	Replaced   int    `json:"replaced" yaml:"replaced"`
	Skipped    string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Summary reports a rewrite over several targets
type Summary struct {
	Results []Result `json:"results" yaml:"results"`
	Total   int      `json:"total" yaml:"total"`
}

// OutputPath returns where the rewritten copy of path is written
func OutputPath(path string, opts Options) string {
	if opts.Inplace {
		return path
	}
	suffix := opts.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return table.SuffixedPath(path, suffix)
}

// ApplyMapping replaces each value v of column fkColumn in the table at path
// with mapping.Resolve(v) and writes the result.
//
// A missing file, a missing column or an unreadable table is not an error:
// it is logged, recorded in Result.Skipped, and counts zero replacements.
// Only a failure to write the output is returned.
func ApplyMapping(path, fkColumn string, mapping domain.Mapping, opts Options) (Result, error) {
	log := opts.logger().With(zap.String("table", path))
	res := Result{Path: path}

	tbl, err := table.Read(path)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			res.Skipped = "file not found"
		case errors.Is(err, domain.ErrSchema):
			res.Skipped = "unreadable table"
		default:
			return res, err
		}
		log.Warn("skipping target table", zap.String("reason", res.Skipped), zap.Error(err))
		return res, nil
	}

	col := tbl.Column(fkColumn)
	if col < 0 {
		res.Skipped = fmt.Sprintf("column %q not found", fkColumn)
		log.Warn("skipping target table, file unchanged", zap.String("reason", res.Skipped))
		return res, nil
	}

	res.Rows = len(tbl.Rows)
	res.Replaced = Rewrite(tbl, col, mapping)

	if opts.DryRun {
		log.Info("dry run, nothing written", zap.Int("replaced", res.Replaced))
		return res, nil
	}

	res.OutputPath = OutputPath(path, opts)
	if err := table.WriteAtomic(res.OutputPath, tbl); err != nil {
		return res, err
	}

	log.Info("wrote target table",
		zap.String("output", res.OutputPath),
		zap.Int("rows", res.Rows),
		zap.Int("replaced", res.Replaced))
	return res, nil
}

// Rewrite maps column col of every row in place and returns the number of
// values that changed.
func Rewrite(tbl *table.Table, col int, mapping domain.Mapping) int {
	replaced := 0
	for _, row := range tbl.Rows {
		before := row[col]
		if after := mapping.Resolve(before); after != before {
			row[col] = after
			replaced++
		}
	}
	return replaced
}

// ApplyAll runs ApplyMapping over every target concurrently. Results are
// returned in the order of targets, one per distinct path: a target listed
// twice is processed once. Skipped targets contribute zero. An empty mapping
// writes nothing and reports zero for every target.
func ApplyAll(ctx context.Context, targets []string, fkColumn string, mapping domain.Mapping, opts Options) (*Summary, error) {
	targets = uniqueTargets(targets)
	summary := &Summary{Results: make([]Result, len(targets))}
	for i, path := range targets {
		summary.Results[i] = Result{Path: path}
	}

	if len(mapping) == 0 {
		opts.logger().Info("empty mapping, nothing to apply", zap.Int("targets", len(targets)))
		return summary, nil
	}

	op := &bulk.Operation{
		Jobs:            opts.Jobs,
		ContinueOnError: true,
	}
	outcome := op.Execute(ctx, targets, func(ctx context.Context, i int, path string) error {
		res, err := ApplyMapping(path, fkColumn, mapping, opts)
		summary.Results[i] = res
		return err
	})

	for _, r := range summary.Results {
		summary.Total += r.Replaced
	}

	if err := outcome.Err(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}
