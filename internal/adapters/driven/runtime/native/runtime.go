package native

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/beevik/etree"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
)

// Name is the runtime name projects select with runtime = "native".
const Name = domain.DefaultRuntime

// Ensure Runtime and Session implement the interfaces.
var (
	_ driven.TransformRuntime = (*Runtime)(nil)
	_ driven.TransformSession = (*Session)(nil)
)

var errSessionClosed = errors.New("native session closed")

// Runtime creates native sessions dispatching to a Registry.
type Runtime struct {
	registry *Registry
}

// New creates a native runtime. A nil registry uses the built-ins only.
func New(registry *Registry) *Runtime {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Runtime{registry: registry}
}

// Name returns the runtime name.
func (r *Runtime) Name() string {
	return Name
}

// NewSession resolves the project's functions and compiles its selectors.
// Unknown functions and invalid selectors fail here rather than per document.
func (r *Runtime) NewSession(_ context.Context, cfg *domain.ProjectConfig) (driven.TransformSession, error) {
	fns, err := r.registry.resolve(cfg.Scripts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionInit, err)
	}

	env := &Env{Config: &cfg.Config, paths: make(map[string]etree.Path)}
	exprs := []string{cfg.Config.Facsimiles.Path, defaultFacsimilePath}
	for _, f := range cfg.Config.Metadata {
		exprs = append(exprs, f.Path)
	}
	for _, f := range cfg.Config.TextData {
		exprs = append(exprs, f.Path)
	}
	for _, expr := range exprs {
		if expr == "" {
			continue
		}
		if _, ok := env.paths[expr]; ok {
			continue
		}
		p, err := etree.CompilePath(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: selector %q: %w", domain.ErrSessionInit, expr, err)
		}
		env.paths[expr] = p
	}

	return &Session{env: env, fns: fns}, nil
}

// Close is a no-op; native sessions hold no external resources.
func (r *Runtime) Close() error {
	return nil
}

// Document is a parsed or normalized native document.
type Document struct {
	mu  sync.Mutex
	doc *etree.Document
}

// Text returns the text content of the root element.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc == nil {
		return ""
	}
	return textContent(d.doc.Root())
}

func (d *Document) tree() (*etree.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc == nil {
		return nil, errors.New("document released")
	}
	return d.doc, nil
}

// Session runs a project's registered functions.
type Session struct {
	env *Env
	fns *functions

	mu     sync.Mutex
	closed bool
}

func (s *Session) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	return nil
}

func (s *Session) tree(doc driven.Document) (*etree.Document, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	d, ok := doc.(*Document)
	if !ok {
		return nil, fmt.Errorf("foreign document %T", doc)
	}
	return d.tree()
}

// Parse parses XML bytes. Malformed XML or a missing root element fails.
func (s *Session) Parse(_ context.Context, raw []byte) (driven.Document, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if err := wellFormed(raw); err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, errors.New("document has no root element")
	}
	return &Document{doc: doc}, nil
}

// Normalize runs the project's normalize function.
func (s *Session) Normalize(
	_ context.Context,
	doc driven.Document,
	_ *domain.FieldConfig,
	documentID string,
) (driven.Document, error) {
	tree, err := s.tree(doc)
	if err != nil {
		return nil, err
	}
	out, err := s.fns.normalize(s.env, tree, documentID)
	if err != nil {
		return nil, err
	}
	if out == nil || out.Root() == nil {
		return nil, errors.New("normalized document has no root element")
	}
	return &Document{doc: out}, nil
}

// ExtractEntities runs the project's entities function.
func (s *Session) ExtractEntities(_ context.Context, doc driven.Document, _ *domain.FieldConfig) ([]domain.Entity, error) {
	tree, err := s.tree(doc)
	if err != nil {
		return nil, err
	}
	return s.fns.entities(s.env, tree)
}

// ExtractMetadata runs the project's metadata function.
func (s *Session) ExtractMetadata(
	_ context.Context,
	doc driven.Document,
	_ *domain.FieldConfig,
	documentID string,
) (map[string]any, error) {
	tree, err := s.tree(doc)
	if err != nil {
		return nil, err
	}
	return s.fns.metadata(s.env, tree, documentID)
}

// ExtractFacsimiles runs the project's facsimiles function.
func (s *Session) ExtractFacsimiles(_ context.Context, doc driven.Document, _ *domain.FieldConfig) ([]domain.Facsimile, error) {
	tree, err := s.tree(doc)
	if err != nil {
		return nil, err
	}
	return s.fns.facsimiles(s.env, tree)
}

// Release drops the document tree. Releasing twice is a no-op.
func (s *Session) Release(_ context.Context, doc driven.Document) error {
	d, ok := doc.(*Document)
	if !ok {
		return fmt.Errorf("foreign document %T", doc)
	}
	d.mu.Lock()
	d.doc = nil
	d.mu.Unlock()
	return nil
}

// Close marks the session closed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
