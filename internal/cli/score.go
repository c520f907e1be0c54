package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/dedupe/internal/company"
	"github.com/lherron/dedupe/internal/similarity"
)

var scoreCmd = &cobra.Command{
	Use:   "score <name-a> <name-b>",
	Short: "Show the similarity of two company names",
	Long: `Prints the normalized form of both names and their similarity score, the
value compared against --threshold when resolving duplicates.`,
	Example: `  dedupe score "ACME Corp." "Acme Corporation"`,
	Args:    cobra.ExactArgs(2),
	RunE:    runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	a, b := company.Normalize(args[0]), company.Normalize(args[1])
	score := similarity.Score(args[0], args[1], company.Normalize)

	fmt.Fprintf(cmd.OutOrStdout(), "%q -> %q\n", args[0], a)
	fmt.Fprintf(cmd.OutOrStdout(), "%q -> %q\n", args[1], b)
	fmt.Fprintf(cmd.OutOrStdout(), "score: %s\n", formatScore(score))
	return nil
}
