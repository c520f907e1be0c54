package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Resolve duplicate company records in CSV tables",
	Long: `dedupe finds company records whose names are near-duplicates, keeps one
record per group, and rewrites the company foreign keys of dependent tables
so they point at the kept record.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default ~/.config/dedupe/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("id-column", "id", "Company id column")
	rootCmd.PersistentFlags().String("name-column", "name", "Company name column")
	rootCmd.PersistentFlags().Int("workers", 0, "Parallel workers for pair scoring (0 = number of CPUs)")
	rootCmd.PersistentFlags().String("artifact-db", "", "SQLite database recording each run (overrides DEDUPE_ARTIFACT_DB)")
}
