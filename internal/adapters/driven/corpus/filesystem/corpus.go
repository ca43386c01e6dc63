// Package filesystem provides a driven.Corpus over a projects directory.
//
// Layout:
//
//	<root>/<project>/config.toml
//	<root>/<project>/xml/**/*.xml
//
// Document paths are slash-separated and relative to the project's xml
// directory; the document id is the path without its .xml extension.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
)

// Ensure Corpus implements the interface.
var _ driven.Corpus = (*Corpus)(nil)

const (
	xmlDir = "xml"
	xmlExt = ".xml"
)

// Corpus reads project documents from disk.
type Corpus struct {
	root string
}

// New creates a corpus rooted at the projects directory.
func New(root string) *Corpus {
	return &Corpus{root: root}
}

// Root returns the projects directory.
func (c *Corpus) Root() string {
	return c.root
}

// ListProjects returns every subdirectory holding a config file or an xml
// directory, sorted. A missing root yields no projects.
func (c *Corpus) ListProjects(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read projects dir: %w", err)
	}

	ids := []string{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if isProject(filepath.Join(c.root, e.Name())) {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func isProject(dir string) bool {
	for _, name := range []string{"config.toml", "config.yaml", "config.yml", xmlDir} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// ListDocuments walks the project's xml directory and returns every .xml
// file, sorted lexically.
func (c *Corpus) ListDocuments(ctx context.Context, projectID string) ([]string, error) {
	projectDir, err := c.projectDir(projectID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(projectDir); err != nil {
		return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, projectID)
	}

	base := filepath.Join(projectDir, xmlDir)
	paths := []string{}
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == base {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), xmlExt) {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents of %s: %w", projectID, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// ReadDocument reads a document by its path relative to the xml directory.
func (c *Corpus) ReadDocument(_ context.Context, projectID, docPath string) ([]byte, error) {
	projectDir, err := c.projectDir(projectID)
	if err != nil {
		return nil, err
	}

	clean := path.Clean("/" + docPath)
	if clean == "/" || docPath == "" {
		return nil, fmt.Errorf("%w: empty document path", domain.ErrInvalidInput)
	}

	data, err := os.ReadFile(filepath.Join(projectDir, xmlDir, filepath.FromSlash(clean[1:])))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: document %s/%s", domain.ErrNotFound, projectID, docPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read document %s/%s: %w", projectID, docPath, err)
	}
	return data, nil
}

// DocumentID strips the .xml extension from a document path.
func (c *Corpus) DocumentID(docPath string) string {
	ext := path.Ext(docPath)
	if strings.EqualFold(ext, xmlExt) {
		return strings.TrimSuffix(docPath, ext)
	}
	return docPath
}

// DocumentPath appends the .xml extension to a document id.
func (c *Corpus) DocumentPath(documentID string) string {
	return documentID + xmlExt
}

func (c *Corpus) projectDir(projectID string) (string, error) {
	if projectID == "" || projectID == "." || projectID == ".." || strings.ContainsAny(projectID, `/\`) {
		return "", fmt.Errorf("%w: invalid project id %q", domain.ErrInvalidInput, projectID)
	}
	return filepath.Join(c.root, projectID), nil
}
