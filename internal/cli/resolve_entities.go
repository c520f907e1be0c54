package cli

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lherron/dedupe/internal/cli/appctx"
	"github.com/lherron/dedupe/internal/render"
	"github.com/lherron/dedupe/internal/resolve"
	"github.com/lherron/dedupe/internal/table"
)

var resolveEntitiesCmd = &cobra.Command{
	Use:   "resolve-entities",
	Short: "Find duplicate companies and write a deduplicated table",
	Long: `Finds company records whose normalized names are at least --threshold
similar, groups them, keeps the most complete record of each group and writes
the company table without the other records.

The output defaults to the input path with a "_deduplicated" suffix.`,
	Example: `  dedupe resolve-entities --companies companies.csv
  dedupe resolve-entities --companies companies.csv --threshold 0.9 --pairs-out pairs.csv`,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runResolveEntities),
}

var (
	resolveCompaniesPath string
	resolveOutput        string
	resolvePairsOut      string
	resolveMappingOut    string
	resolveFormat        string
)

func init() {
	rootCmd.AddCommand(resolveEntitiesCmd)
	resolveEntitiesCmd.Flags().StringVar(&resolveCompaniesPath, "companies", "", "Company table (CSV)")
	resolveEntitiesCmd.Flags().Float64("threshold", resolve.DefaultThreshold, "Minimum name similarity for two companies to be linked")
	resolveEntitiesCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "Deduplicated table path (default <companies>_deduplicated.csv)")
	resolveEntitiesCmd.Flags().StringVar(&resolvePairsOut, "pairs-out", "", "Write qualifying pairs to this CSV file")
	resolveEntitiesCmd.Flags().StringVar(&resolveMappingOut, "mapping-out", "", "Write the removed-to-kept id mapping to this CSV file")
	resolveEntitiesCmd.Flags().StringVar(&resolveFormat, "format", "table", "Report format: table, json, yaml")
}

type clusterMember struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Completeness int    `json:"completeness" yaml:"completeness"`
	Kept         bool   `json:"kept" yaml:"kept"`
}

type clusterReport struct {
	Kept    string          `json:"kept" yaml:"kept"`
	Members []clusterMember `json:"members" yaml:"members"`
}

type resolveReport struct {
	Companies string          `json:"companies" yaml:"companies"`
	Output    string          `json:"output" yaml:"output"`
	Threshold float64         `json:"threshold" yaml:"threshold"`
	Records   int             `json:"records" yaml:"records"`
	Pairs     int             `json:"pairs" yaml:"pairs"`
	Clusters  []clusterReport `json:"clusters" yaml:"clusters"`
	Removed   int             `json:"removed" yaml:"removed"`
	Kept      int             `json:"kept" yaml:"kept"`
	RunID     string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

func runResolveEntities(app *appctx.App, cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(resolveFormat)
	if err != nil {
		return err
	}

	r, err := resolveCompanies(appctx.Context(cmd), app, resolveCompaniesPath)
	if err != nil {
		return err
	}

	output := resolveOutput
	if output == "" {
		output = table.SuffixedPath(r.path, app.Config.DedupSuffix)
	}
	deduped := r.table.Without(r.plan.RemovedIndices())
	if err := table.WriteAtomic(output, deduped); err != nil {
		return err
	}
	app.Logger.Info("wrote deduplicated table", zap.String("output", output), zap.Int("rows", len(deduped.Rows)))

	if resolvePairsOut != "" {
		if err := writePairs(resolvePairsOut, r); err != nil {
			return err
		}
	}
	if resolveMappingOut != "" {
		if err := writeMapping(resolveMappingOut, r.plan.Entries(r.records)); err != nil {
			return err
		}
	}

	runID, err := recordRun(app, "resolve-entities", r, nil)
	if err != nil {
		return err
	}

	report := resolveReport{
		Companies: r.path,
		Output:    output,
		Threshold: r.plan.Threshold,
		Records:   len(r.records),
		Pairs:     len(r.plan.Pairs),
		Clusters:  clusterReports(r),
		Removed:   len(r.table.Rows) - len(deduped.Rows),
		Kept:      len(deduped.Rows),
		RunID:     runID,
	}

	out := render.NewRenderer(cmd.OutOrStdout(), format)
	if out.Structured() {
		return out.Document(report)
	}
	return printResolveReport(out, report)
}

// clusterReports lists each cluster with its kept member first
func clusterReports(r *resolution) []clusterReport {
	reports := make([]clusterReport, 0, len(r.plan.Clusters))
	for _, c := range r.plan.Clusters {
		kept := r.records[c.Representative]
		cr := clusterReport{Kept: kept.ID}
		cr.Members = append(cr.Members, clusterMember{
			ID: kept.ID, Name: kept.Name, Completeness: kept.CompletenessScore, Kept: true,
		})
		for _, idx := range c.Removed() {
			rec := r.records[idx]
			cr.Members = append(cr.Members, clusterMember{
				ID: rec.ID, Name: rec.Name, Completeness: rec.CompletenessScore,
			})
		}
		reports = append(reports, cr)
	}
	return reports
}

func printResolveReport(out *render.Renderer, report resolveReport) error {
	out.Printf("Loaded %d records from %s\n", report.Records, report.Companies)
	out.Printf("Found %d pairs at threshold %g\n", report.Pairs, report.Threshold)
	out.Printf("Found %d clusters\n", len(report.Clusters))

	if len(report.Clusters) > 0 {
		out.Printf("\n")
		var rows [][]string
		for i, c := range report.Clusters {
			for _, m := range c.Members {
				mark := ""
				if m.Kept {
					mark = "*"
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), m.ID, m.Name, strconv.Itoa(m.Completeness), mark})
			}
		}
		if err := out.RenderTable([]string{"CLUSTER", "ID", "NAME", "MISSING", "KEPT"}, rows); err != nil {
			return err
		}
		out.Printf("\n")
	}

	out.Printf("Removed %d rows, wrote %d rows to %s\n", report.Removed, report.Kept, report.Output)
	if report.RunID != "" {
		out.Printf("Recorded run %s\n", report.RunID)
	}
	return nil
}
