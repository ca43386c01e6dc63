package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/services"
)

// errUnavailable is returned by tools whose service is not configured.
var errUnavailable = errors.New("tool not available")

// ListProjectsInput is the input schema for the list_projects tool.
type ListProjectsInput struct{}

// ListProjectsOutput is the output schema for the list_projects tool.
type ListProjectsOutput struct {
	Projects []string `json:"projects"`
	Count    int      `json:"count"`
}

// GetSchemaInput is the input schema for the get_schema tool.
type GetSchemaInput struct {
	Project string `json:"project" jsonschema:"the project id"`
}

// GetSchemaOutput is the output schema for the get_schema tool.
type GetSchemaOutput struct {
	Project string            `json:"project"`
	Fields  map[string]string `json:"fields"`
}

// ExtractDocumentInput is the input schema for the extract_document tool.
type ExtractDocumentInput struct {
	Project  string `json:"project" jsonschema:"the project id"`
	Document string `json:"document" jsonschema:"the document id, its path relative to the project's xml directory without .xml"`
	XML      string `json:"xml,omitempty" jsonschema:"optional XML to transform instead of the stored document"`
}

// ExtractDocumentOutput is the output schema for the extract_document tool.
type ExtractDocumentOutput struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Entities   []EntityOutput  `json:"entities"`
	Metadata   map[string]any  `json:"metadata"`
	Facsimiles []string        `json:"facsimiles"`
	Warnings   []WarningOutput `json:"warnings,omitempty"`
	Fields     map[string]any  `json:"fields"`
}

// EntityOutput is one extracted entity.
type EntityOutput struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// WarningOutput is one non-fatal stage failure.
type WarningOutput struct {
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_projects",
		Description: "List the editorial projects whose documents can be transformed",
	}, s.handleListProjects)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_schema",
		Description: "Infer the search index schema of a project: every field and its datatype",
	}, s.handleGetSchema)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_document",
		Description: "Transform an XML document of a project into its text, entities, metadata, facsimiles and index fields",
	}, s.handleExtractDocument)
}

// handleListProjects handles the list_projects tool invocation.
func (s *Server) handleListProjects(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListProjectsInput,
) (*mcp.CallToolResult, ListProjectsOutput, error) {
	if s.ports.Projects == nil {
		return nil, ListProjectsOutput{}, fmt.Errorf("list_projects: %w", errUnavailable)
	}

	ids, err := s.ports.Projects.List(ctx)
	if err != nil {
		return nil, ListProjectsOutput{}, err
	}
	if ids == nil {
		ids = []string{}
	}
	return nil, ListProjectsOutput{Projects: ids, Count: len(ids)}, nil
}

// handleGetSchema handles the get_schema tool invocation.
func (s *Server) handleGetSchema(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetSchemaInput,
) (*mcp.CallToolResult, GetSchemaOutput, error) {
	if s.ports.Schemas == nil {
		return nil, GetSchemaOutput{}, fmt.Errorf("get_schema: %w", errUnavailable)
	}
	if input.Project == "" {
		return nil, GetSchemaOutput{}, fmt.Errorf("%w: project is required", domain.ErrInvalidInput)
	}

	schema, err := s.ports.Schemas.Schema(ctx, input.Project)
	if err != nil {
		return nil, GetSchemaOutput{}, err
	}

	output := GetSchemaOutput{
		Project: input.Project,
		Fields:  make(map[string]string, len(schema.Properties)),
	}
	for key, m := range schema.Properties {
		output.Fields[key] = string(m.Type)
	}
	return nil, output, nil
}

// handleExtractDocument handles the extract_document tool invocation.
func (s *Server) handleExtractDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractDocumentInput,
) (*mcp.CallToolResult, ExtractDocumentOutput, error) {
	if input.Project == "" || input.Document == "" {
		return nil, ExtractDocumentOutput{}, fmt.Errorf("%w: project and document are required", domain.ErrInvalidInput)
	}

	var (
		out *domain.NormalizedOutput
		err error
	)
	if input.XML != "" {
		out, err = s.ports.Extraction.ExtractRaw(ctx, input.Project, input.Document, []byte(input.XML))
	} else {
		out, err = s.ports.Extraction.Extract(ctx, input.Project, input.Document)
	}
	if err != nil {
		return nil, ExtractDocumentOutput{}, err
	}

	output := ExtractDocumentOutput{
		ID:         out.ID,
		Text:       out.Text,
		Entities:   make([]EntityOutput, len(out.Entities)),
		Metadata:   out.Metadata,
		Facsimiles: out.Facsimiles,
		Fields:     services.Project(out).Fields(),
	}
	for i, e := range out.Entities {
		output.Entities[i] = EntityOutput{Type: e.Type, Value: e.Value}
	}
	for _, w := range out.Warnings {
		output.Warnings = append(output.Warnings, WarningOutput{
			Stage:   string(w.Stage),
			Kind:    w.Stage.Kind(),
			Message: w.Message(),
		})
	}
	return nil, output, nil
}
