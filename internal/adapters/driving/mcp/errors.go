// Package mcp provides an MCP (Model Context Protocol) server adapter for Docere.
// It lets AI assistants list projects, inspect index schemas and transform
// documents.
package mcp

import "errors"

// ErrMissingExtractionService is returned when the extraction service is not provided.
var ErrMissingExtractionService = errors.New("mcp: extraction service is required")
