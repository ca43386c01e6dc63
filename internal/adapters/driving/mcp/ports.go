package mcp

import (
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Projects lists projects and their configuration.
	Projects driving.ProjectService

	// Schemas infers index schemas.
	Schemas driving.SchemaService

	// Extraction transforms documents.
	Extraction driving.ExtractionService

	// Version is the build version announced to clients.
	Version string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Extraction == nil {
		return ErrMissingExtractionService
	}
	// Projects and Schemas are optional; their tools report unavailability.
	return nil
}
