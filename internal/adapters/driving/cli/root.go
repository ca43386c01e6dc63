// Package cli implements the docere command line.
package cli

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driving"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Services used by the commands. Wired on first use unless already set.
var (
	settingsStore     driven.ConfigStore
	projectService    driving.ProjectService
	schemaService     driving.SchemaService
	extractionService driving.ExtractionService
	indexService      driving.IndexService
	metricsRegistry   *prometheus.Registry

	// shutdown releases what wire created.
	shutdown = func() error { return nil }
)

// Persistent flags.
var (
	configPath  string
	projectsDir string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "docere",
	Short: "Turn XML editions into search index records",
	Long: `Docere transforms the XML documents of editorial projects into search
index records. Each project configures how its documents are normalised
and which entities, metadata and facsimiles are extracted. The index
schema of a project is inferred from a sample of its corpus.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default ~/.docere/config.toml)")
	rootCmd.PersistentFlags().StringVar(&projectsDir, "projects", "", "projects directory (overrides projects.dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, shutdown())
}

// setup wires services for every command except version.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd == versionCmd || projectService != nil {
		return nil
	}
	return wire(cmd == indexCmd)
}

// errNotConfigured reports a service the command needs but that is not set.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
