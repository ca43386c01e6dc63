package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Docere resources.
	uriScheme = "docere://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing projects.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "projects",
		Name:        "projects",
		Description: "List of all projects",
		MIMEType:    "application/json",
	}, s.handleProjectsResource)

	// Template for a project's index mapping.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/mapping",
		Name:        "project-mapping",
		Description: "Inferred index mapping of a project",
		MIMEType:    "application/json",
	}, s.handleMappingResource)

	// Template for document text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/documents/{documentId}",
		Name:        "document-text",
		Description: "Normalised text of a document",
		MIMEType:    "text/plain",
	}, s.handleDocumentTextResource)
}

// handleProjectsResource returns a list of all project ids.
func (s *Server) handleProjectsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Projects == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	ids, err := s.ports.Projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling projects: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleMappingResource returns the index creation body of a project.
func (s *Server) handleMappingResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Schemas == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	projectID := extractMappingProject(req.Params.URI)
	if projectID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	schema, err := s.ports.Schemas.Schema(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("inferring schema: %w", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling schema: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentTextResource returns the normalised text of a document.
func (s *Server) handleDocumentTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	projectID, docID := extractDocument(req.Params.URI)
	if projectID == "" || docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	out, err := s.ports.Extraction.Extract(ctx, projectID, docID)
	if err != nil {
		return nil, fmt.Errorf("extracting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     out.Text,
		}},
	}, nil
}

// extractMappingProject extracts the project ID from a URI like docere://projects/{projectId}/mapping.
func extractMappingProject(uri string) string {
	const prefix = uriScheme + "projects/"
	const suffix = "/mapping"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	id := strings.TrimSuffix(uri, suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractDocument extracts the project and document IDs from a URI like
// docere://projects/{projectId}/documents/{documentId}. Document IDs may
// contain slashes.
func extractDocument(uri string) (projectID, documentID string) {
	const prefix = uriScheme + "projects/"

	if !strings.HasPrefix(uri, prefix) {
		return "", ""
	}

	project, rest, ok := strings.Cut(strings.TrimPrefix(uri, prefix), "/documents/")
	if !ok || strings.Contains(project, "/") {
		return "", ""
	}
	return project, rest
}
