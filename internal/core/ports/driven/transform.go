package driven

import (
	"context"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

// Document is an opaque handle to a document living inside a transform session.
type Document interface {
	// Text returns the full textual content of the document.
	Text() string
}

// TransformRuntime is the execution runtime behind a Transform Capability.
// One runtime serves many projects; each project gets its own session.
type TransformRuntime interface {
	// Name identifies the runtime in project configuration (e.g. "native").
	Name() string

	// NewSession starts a session bound to one project and loads its
	// transform functions. A failed session must not leak resources.
	NewSession(ctx context.Context, cfg *domain.ProjectConfig) (TransformSession, error)

	// Close terminates the runtime. Sessions must be closed first.
	Close() error
}

// TransformSession runs a project's transform functions.
// Sessions are stateful and not safe for concurrent use; callers serialize.
type TransformSession interface {
	// Parse parses raw XML. Recoverable parser errors are returned as errors.
	Parse(ctx context.Context, raw []byte) (Document, error)

	// Normalize runs the project's normalize function.
	Normalize(ctx context.Context, doc Document, cfg *domain.FieldConfig, documentID string) (Document, error)

	// ExtractEntities runs the project's entity (text data) function.
	ExtractEntities(ctx context.Context, doc Document, cfg *domain.FieldConfig) ([]domain.Entity, error)

	// ExtractMetadata runs the project's metadata function.
	ExtractMetadata(ctx context.Context, doc Document, cfg *domain.FieldConfig, documentID string) (map[string]any, error)

	// ExtractFacsimiles runs the project's facsimile function.
	ExtractFacsimiles(ctx context.Context, doc Document, cfg *domain.FieldConfig) ([]domain.Facsimile, error)

	// Release frees any session state held for doc.
	Release(ctx context.Context, doc Document) error

	// Close terminates the session.
	Close() error
}
