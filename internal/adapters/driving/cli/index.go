package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var indexJSON bool

var indexCmd = &cobra.Command{
	Use:   "index [project-id...]",
	Short: "Rebuild search indexes",
	Long: `Rebuilds the search index of each given project, or of every project
when none are given. The schema is inferred from the corpus, the index
is dropped and recreated, and every document is transformed and
upserted. Documents that fail are counted and skipped.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "output reports as JSON")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}

	if len(args) == 0 {
		cmd.Println("Indexing all projects...")
	}

	reports, err := indexService.IndexAll(cmd.Context(), args)

	if indexJSON {
		if jerr := printJSON(cmd, reports); jerr != nil {
			return jerr
		}
	} else {
		for _, r := range reports {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d indexed, %d failed, %d warnings (%s, run %s)\n",
				r.ProjectID, r.Indexed, r.Total, r.Failed, r.Warnings,
				r.Duration.Round(time.Millisecond), r.RunID)
		}
	}

	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	return nil
}
