package driven

import "context"

// Corpus gives access to the XML documents of every project.
type Corpus interface {
	// ListProjects returns the known project ids, sorted.
	ListProjects(ctx context.Context) ([]string, error)

	// ListDocuments returns the document paths of a project in a stable order.
	ListDocuments(ctx context.Context, projectID string) ([]string, error)

	// ReadDocument returns the raw bytes of a document path.
	// Returns domain.ErrNotFound when it does not exist.
	ReadDocument(ctx context.Context, projectID, path string) ([]byte, error)

	// DocumentID derives a document id from a document path.
	DocumentID(path string) string

	// DocumentPath is the inverse of DocumentID.
	DocumentPath(documentID string) string
}
