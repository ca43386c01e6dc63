package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

var schemaDocs []string

var schemaCmd = &cobra.Command{
	Use:   "schema [project-id]",
	Short: "Infer the index schema of a project",
	Long: `Infers the index schema of a project from a sample of its corpus and
its declared metadata and text data fields, and prints the index
creation body.

With --doc, the schema is inferred from the given document paths
instead of the corpus, sampled in the order given.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringSliceVar(&schemaDocs, "doc", nil, "document path to sample (repeatable)")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	if schemaService == nil {
		return errNotConfigured("schema")
	}

	var (
		schema *domain.Schema
		err    error
	)
	if len(schemaDocs) > 0 {
		schema, err = schemaService.Infer(cmd.Context(), args[0], schemaDocs)
	} else {
		schema, err = schemaService.Schema(cmd.Context(), args[0])
	}
	if err != nil {
		return fmt.Errorf("schema inference failed: %w", err)
	}
	return printJSON(cmd, schema)
}
