package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docere-indexer/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves projects, schemas and document transforms over HTTP.

Routes:
  GET  /projects
  GET  /projects/{project}/config
  GET  /projects/{project}/mapping
  GET  /projects/{project}/documents/{doc}[/metadata|/entities|/facsimiles|/fields]
  POST /projects/{project}/documents/{doc}/fields   (application/xml body)
  GET  /metrics
  GET  /healthz

Document ids containing slashes must be escaped (%2F).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if projectService == nil || schemaService == nil || extractionService == nil {
		return errNotConfigured("http")
	}

	addr := serveAddr
	if addr == "" && settingsStore != nil {
		addr = settingsStore.GetString("server.addr")
	}
	if addr == "" {
		addr = ":3000"
	}

	deps := httpapi.Deps{
		Projects:   projectService,
		Schemas:    schemaService,
		Extraction: extractionService,
		Version:    version,
	}
	if metricsRegistry != nil {
		deps.Gatherer = metricsRegistry
	}

	cmd.Printf("Serving on %s\n", addr)
	return httpapi.NewServer(deps).ListenAndServe(cmd.Context(), addr)
}
