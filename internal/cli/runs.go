package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lherron/dedupe/internal/cli/appctx"
	"github.com/lherron/dedupe/internal/render"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs recorded in the artifact database",
	Long: `Lists the runs recorded with --artifact-db, newest first. With --run,
prints the id mapping that run decided instead.`,
	Example: `  dedupe runs --artifact-db runs.db
  dedupe runs --artifact-db runs.db --run 3f1c... --format json`,
	RunE: appctx.WithApp(appctx.WithStore(), runRuns),
}

var (
	runsLimit  int
	runsRunID  string
	runsFormat string
)

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	runsCmd.Flags().StringVar(&runsRunID, "run", "", "Show the mapping recorded for this run id")
	runsCmd.Flags().StringVar(&runsFormat, "format", "table", "Output format: table, json, yaml")
}

func runRuns(app *appctx.App, cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(runsFormat)
	if err != nil {
		return err
	}
	out := render.NewRenderer(cmd.OutOrStdout(), format)

	if runsRunID != "" {
		entries, err := app.Store.Mapping(runsRunID)
		if err != nil {
			return err
		}
		if out.Structured() {
			return out.Document(entries)
		}
		if len(entries) == 0 {
			out.Printf("No mapping recorded for run %s\n", runsRunID)
			return nil
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.RemovedID, e.RemovedName, e.KeptID, e.KeptName})
		}
		return out.RenderTable([]string{"REMOVED_ID", "REMOVED_NAME", "KEPT_ID", "KEPT_NAME"}, rows)
	}

	runs, err := app.Store.Runs(runsLimit)
	if err != nil {
		return err
	}
	if out.Structured() {
		return out.Document(runs)
	}
	if len(runs) == 0 {
		out.Printf("No runs recorded\n")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID, r.CreatedAt, r.Command, r.CompaniesPath,
			strconv.FormatFloat(r.Threshold, 'g', -1, 64),
			strconv.Itoa(r.Records), strconv.Itoa(r.Removed), strconv.Itoa(r.Replaced),
		})
	}
	return out.RenderTable([]string{"RUN", "CREATED", "COMMAND", "COMPANIES", "THRESHOLD", "RECORDS", "REMOVED", "REPLACED"}, rows)
}
