package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
)

// Ensure Corpus implements the interface.
var _ driven.Corpus = (*Corpus)(nil)

// Corpus is an in-memory implementation of driven.Corpus.
// Document paths are returned in lexical order.
type Corpus struct {
	mu       sync.RWMutex
	projects map[string]map[string][]byte
}

// NewCorpus creates a new in-memory corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		projects: make(map[string]map[string][]byte),
	}
}

// Put stores a document under a project, creating the project if needed.
func (c *Corpus) Put(projectID, path string, raw []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	docs, ok := c.projects[projectID]
	if !ok {
		docs = make(map[string][]byte)
		c.projects[projectID] = docs
	}
	docs[path] = append([]byte(nil), raw...)
}

// AddProject registers a project without documents.
func (c *Corpus) AddProject(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.projects[projectID]; !ok {
		c.projects[projectID] = make(map[string][]byte)
	}
}

// ListProjects returns the known project ids, sorted.
func (c *Corpus) ListProjects(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.projects))
	for id := range c.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListDocuments returns the document paths of a project, sorted.
func (c *Corpus) ListDocuments(_ context.Context, projectID string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	docs, ok := c.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, projectID)
	}
	paths := make([]string, 0, len(docs))
	for p := range docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadDocument returns a copy of the stored bytes.
func (c *Corpus) ReadDocument(_ context.Context, projectID, path string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.projects[projectID][path]
	if !ok {
		return nil, fmt.Errorf("%w: document %s/%s", domain.ErrNotFound, projectID, path)
	}
	return append([]byte(nil), raw...), nil
}

// DocumentID strips the .xml extension from a path.
func (c *Corpus) DocumentID(path string) string {
	return strings.TrimSuffix(path, ".xml")
}

// DocumentPath appends the .xml extension to an id.
func (c *Corpus) DocumentPath(documentID string) string {
	return documentID + ".xml"
}
