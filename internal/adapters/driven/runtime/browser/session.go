package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
)

// Document is a handle to a DOM document kept in the session's page.
type Document struct {
	handle int
	text   string
}

// Text returns the text content of the document element.
func (d *Document) Text() string {
	return d.text
}

type handleResult struct {
	Handle int    `json:"handle"`
	Text   string `json:"text"`
}

// Session is one project page. The page keeps documents until released.
type Session struct {
	page *rod.Page
}

func (s *Session) eval(ctx context.Context, out any, js string, args ...any) error {
	res, err := s.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return res.Value.Unmarshal(out)
}

func handleOf(doc driven.Document) (int, error) {
	d, ok := doc.(*Document)
	if !ok {
		return 0, fmt.Errorf("foreign document %T", doc)
	}
	return d.handle, nil
}

// Parse parses XML with DOMParser. A parsererror document fails with the
// parser's message.
func (s *Session) Parse(ctx context.Context, raw []byte) (driven.Document, error) {
	var res handleResult
	if err := s.eval(ctx, &res, `(xml) => __docere.parse(xml)`, string(raw)); err != nil {
		return nil, err
	}
	return &Document{handle: res.Handle, text: res.Text}, nil
}

// Normalize runs docere.normalize.
func (s *Session) Normalize(ctx context.Context, doc driven.Document, _ *domain.FieldConfig, documentID string) (driven.Document, error) {
	h, err := handleOf(doc)
	if err != nil {
		return nil, err
	}
	var res handleResult
	if err := s.eval(ctx, &res, `(h, id) => __docere.normalize(h, id)`, h, documentID); err != nil {
		return nil, err
	}
	return &Document{handle: res.Handle, text: res.Text}, nil
}

// ExtractEntities runs docere.entities.
func (s *Session) ExtractEntities(ctx context.Context, doc driven.Document, _ *domain.FieldConfig) ([]domain.Entity, error) {
	h, err := handleOf(doc)
	if err != nil {
		return nil, err
	}
	var out []domain.Entity
	if err := s.eval(ctx, &out, `(h) => __docere.entities(h)`, h); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractMetadata runs docere.metadata.
func (s *Session) ExtractMetadata(ctx context.Context, doc driven.Document, _ *domain.FieldConfig, documentID string) (map[string]any, error) {
	h, err := handleOf(doc)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if err := s.eval(ctx, &out, `(h, id) => __docere.metadata(h, id)`, h, documentID); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractFacsimiles runs docere.facsimiles.
func (s *Session) ExtractFacsimiles(ctx context.Context, doc driven.Document, _ *domain.FieldConfig) ([]domain.Facsimile, error) {
	h, err := handleOf(doc)
	if err != nil {
		return nil, err
	}
	var out []domain.Facsimile
	if err := s.eval(ctx, &out, `(h) => __docere.facsimiles(h)`, h); err != nil {
		return nil, err
	}
	return out, nil
}

// Release drops the document from the page. Unknown handles are ignored.
func (s *Session) Release(ctx context.Context, doc driven.Document) error {
	h, err := handleOf(doc)
	if err != nil {
		return err
	}
	return s.eval(ctx, nil, `(h) => __docere.release(h)`, h)
}

// held returns the number of documents the page keeps.
func (s *Session) held(ctx context.Context) (int, error) {
	var n int
	err := s.eval(ctx, &n, `() => __docere.size()`)
	return n, err
}

// Close closes the page.
func (s *Session) Close() error {
	return s.page.Close()
}
