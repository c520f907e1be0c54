package cli

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/lherron/dedupe/internal/apply"
	"github.com/lherron/dedupe/internal/cli/appctx"
	"github.com/lherron/dedupe/internal/company"
	"github.com/lherron/dedupe/internal/domain"
	"github.com/lherron/dedupe/internal/resolve"
	"github.com/lherron/dedupe/internal/table"
)

// resolution is the companies table together with the plan computed from it
type resolution struct {
	path    string
	table   *table.Table
	records []domain.CompanyRecord
	mapping domain.Mapping
	plan    *resolve.Plan
}

// resolveCompanies loads the companies table at path and computes its
// mapping. Every error it returns is fatal and happens before any write.
func resolveCompanies(ctx context.Context, app *appctx.App, path string) (*resolution, error) {
	if path == "" {
		return nil, domain.ConfigErrorf("--companies is required")
	}

	tbl, err := table.Read(path)
	if err != nil {
		return nil, err
	}

	cfg := app.Config
	records, err := company.FromTable(path, tbl, company.Options{
		IDColumn:      cfg.IDColumn,
		NameColumn:    cfg.NameColumn,
		MissingTokens: cfg.MissingTokens,
	})
	if err != nil {
		return nil, err
	}
	app.Logger.Debug("loaded companies", zap.String("path", path), zap.Int("records", len(records)))

	mapping, plan, err := resolve.BuildMapping(ctx, records, resolve.Options{
		Threshold: cfg.Threshold,
		Workers:   cfg.Workers,
	})
	if err != nil {
		return nil, err
	}
	app.Logger.Debug("resolved companies",
		zap.Float64("threshold", cfg.Threshold),
		zap.Int("pairs", len(plan.Pairs)),
		zap.Int("clusters", len(plan.Clusters)),
		zap.Int("mapped", len(mapping)))

	return &resolution{path: path, table: tbl, records: records, mapping: mapping, plan: plan}, nil
}

// writeMapping writes the mapping with both names as a CSV table
func writeMapping(path string, entries []resolve.MappingEntry) error {
	t := &table.Table{Header: []string{"removed_id", "removed_name", "kept_id", "kept_name"}}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{e.RemovedID, e.RemovedName, e.KeptID, e.KeptName})
	}
	return table.WriteAtomic(path, t)
}

// writePairs writes the qualifying pairs as a CSV table, best score first
func writePairs(path string, r *resolution) error {
	t := &table.Table{Header: []string{"score", "id_a", "name_a", "id_b", "name_b"}}
	for _, p := range r.plan.Pairs {
		a, b := r.records[p.I], r.records[p.J]
		t.Rows = append(t.Rows, []string{formatScore(p.Score), a.ID, a.Name, b.ID, b.Name})
	}
	return table.WriteAtomic(path, t)
}

// recordRun stores the run when an artifact database is configured and
// returns its id, or "" when there is nowhere to record it.
func recordRun(app *appctx.App, command string, r *resolution, targets []apply.Result) (string, error) {
	s, err := app.OpenStore()
	if err != nil || s == nil {
		return "", err
	}
	runID, err := s.RecordRun(command, r.path, r.records, r.plan, targets)
	if err != nil {
		return "", err
	}
	app.Logger.Debug("recorded run", zap.String("run_id", runID), zap.String("db", app.Config.ArtifactDB))
	return runID, nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}
