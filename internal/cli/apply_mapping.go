package cli

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lherron/dedupe/internal/apply"
	"github.com/lherron/dedupe/internal/cli/appctx"
	"github.com/lherron/dedupe/internal/domain"
	"github.com/lherron/dedupe/internal/render"
	"github.com/lherron/dedupe/internal/resolve"
)

var applyMappingCmd = &cobra.Command{
	Use:   "apply-mapping",
	Short: "Rewrite company foreign keys in dependent tables",
	Long: `Recomputes the duplicate mapping from the company table and replaces every
removed company id in the foreign-key column of each target table with the id
of the company kept in its place.

Targets are written next to the input with an "_updated" suffix unless
--inplace is given. A target that does not exist or lacks the foreign-key
column is skipped with a warning.`,
	Example: `  dedupe apply-mapping --companies companies.csv --targets F_avis.csv,F_offres.csv
  dedupe apply-mapping --companies companies.csv --targets F_avis.csv --inplace --fk-column entreprise_id`,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runApplyMapping),
}

var (
	applyCompaniesPath string
	applyTargets       []string
	applyInplace       bool
	applyDryRun        bool
	applyMappingOut    string
	applyFormat        string
)

func init() {
	rootCmd.AddCommand(applyMappingCmd)
	applyMappingCmd.Flags().StringVar(&applyCompaniesPath, "companies", "", "Company table (CSV)")
	applyMappingCmd.Flags().StringSliceVar(&applyTargets, "targets", nil, "Dependent tables to rewrite (repeatable or comma-separated)")
	applyMappingCmd.Flags().Float64("threshold", resolve.DefaultThreshold, "Minimum name similarity for two companies to be linked")
	applyMappingCmd.Flags().String("fk-column", "company_id", "Foreign-key column holding company ids in the targets")
	applyMappingCmd.Flags().BoolVar(&applyInplace, "inplace", false, "Overwrite the target tables instead of writing _updated copies")
	applyMappingCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Count replacements without writing any table")
	applyMappingCmd.Flags().StringVar(&applyMappingOut, "mapping-out", "", "Write the removed-to-kept id mapping to this CSV file")
	applyMappingCmd.Flags().StringVar(&applyFormat, "format", "table", "Report format: table, json, yaml")
}

type applyReport struct {
	Companies string                `json:"companies" yaml:"companies"`
	Threshold float64               `json:"threshold" yaml:"threshold"`
	Records   int                   `json:"records" yaml:"records"`
	Pairs     int                   `json:"pairs" yaml:"pairs"`
	Clusters  int                   `json:"clusters" yaml:"clusters"`
	Mapped    int                   `json:"mapped" yaml:"mapped"`
	Example   *resolve.MappingEntry `json:"example,omitempty" yaml:"example,omitempty"`
	DryRun    bool                  `json:"dry_run" yaml:"dry_run"`
	Targets   []apply.Result        `json:"targets" yaml:"targets"`
	Total     int                   `json:"total" yaml:"total"`
	RunID     string                `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

func runApplyMapping(app *appctx.App, cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(applyFormat)
	if err != nil {
		return err
	}
	if len(applyTargets) == 0 {
		return domain.ConfigErrorf("at least one --targets table is required")
	}

	ctx := appctx.Context(cmd)
	r, err := resolveCompanies(ctx, app, applyCompaniesPath)
	if err != nil {
		return err
	}

	entries := r.plan.Entries(r.records)
	if applyMappingOut != "" {
		if err := writeMapping(applyMappingOut, entries); err != nil {
			return err
		}
	}

	summary, err := apply.ApplyAll(ctx, applyTargets, app.Config.FKColumn, r.mapping, apply.Options{
		Inplace: applyInplace,
		Suffix:  app.Config.UpdateSuffix,
		DryRun:  applyDryRun,
		Jobs:    app.Config.Workers,
		Logger:  app.Logger,
	})
	if err != nil {
		return err
	}
	app.Logger.Debug("applied mapping", zap.Int("targets", len(summary.Results)), zap.Int("replaced", summary.Total))

	runID := ""
	if !applyDryRun {
		if runID, err = recordRun(app, "apply-mapping", r, summary.Results); err != nil {
			return err
		}
	}

	report := applyReport{
		Companies: r.path,
		Threshold: r.plan.Threshold,
		Records:   len(r.records),
		Pairs:     len(r.plan.Pairs),
		Clusters:  len(r.plan.Clusters),
		Mapped:    len(r.mapping),
		DryRun:    applyDryRun,
		Targets:   summary.Results,
		Total:     summary.Total,
		RunID:     runID,
	}
	if len(entries) > 0 {
		report.Example = &entries[0]
	}

	out := render.NewRenderer(cmd.OutOrStdout(), format)
	if out.Structured() {
		return out.Document(report)
	}
	return printApplyReport(out, report)
}

func printApplyReport(out *render.Renderer, report applyReport) error {
	out.Printf("Loaded %d records from %s\n", report.Records, report.Companies)
	out.Printf("Found %d pairs at threshold %g, %d clusters, %d ids to replace\n",
		report.Pairs, report.Threshold, report.Clusters, report.Mapped)
	if e := report.Example; e != nil {
		out.Printf("Example: %s (%s) -> %s (%s)\n", e.RemovedID, e.RemovedName, e.KeptID, e.KeptName)
	}
	if report.Mapped == 0 {
		out.Printf("Nothing to replace, no tables written\n")
	}
	out.Printf("\n")

	rows := make([][]string, 0, len(report.Targets))
	for _, t := range report.Targets {
		status := t.OutputPath
		switch {
		case t.Skipped != "":
			status = "skipped: " + t.Skipped
		case report.Mapped == 0:
			status = "unchanged"
		case report.DryRun:
			status = "dry run"
		}
		rows = append(rows, []string{t.Path, strconv.Itoa(t.Replaced), status})
	}
	if err := out.RenderTable([]string{"TABLE", "REPLACED", "OUTPUT"}, rows); err != nil {
		return err
	}

	out.Printf("\nTotal replaced: %d\n", report.Total)
	if report.RunID != "" {
		out.Printf("Recorded run %s\n", report.RunID)
	}
	return nil
}
