package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	extractFields bool
	extractFile   string
)

var extractCmd = &cobra.Command{
	Use:   "extract [project-id] [doc-id]",
	Short: "Transform one document",
	Long: `Runs a document through its project's transform pipeline and prints the
normalised output: text, entities, metadata, facsimiles and any stage
warnings.

With --fields the output is projected into the flattened index record.
With --file the XML is read from the given path ("-" for stdin) instead of
the project's corpus.`,
	Args: cobra.ExactArgs(2),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractFields, "fields", false, "print the index record")
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "read XML from file (\"-\" for stdin)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractionService == nil {
		return errNotConfigured("extraction")
	}

	ctx := cmd.Context()
	projectID, docID := args[0], args[1]

	if extractFile != "" {
		raw, err := readInput(cmd, extractFile)
		if err != nil {
			return err
		}
		if extractFields {
			rec, err := extractionService.FieldsRaw(ctx, projectID, docID, raw)
			if err != nil {
				return fmt.Errorf("extraction failed: %w", err)
			}
			return printJSON(cmd, rec)
		}
		out, err := extractionService.ExtractRaw(ctx, projectID, docID, raw)
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}
		return printJSON(cmd, out)
	}

	if extractFields {
		rec, err := extractionService.Fields(ctx, projectID, docID)
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}
		return printJSON(cmd, rec)
	}
	out, err := extractionService.Extract(ctx, projectID, docID)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	return printJSON(cmd, out)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
