package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
)

// fakeDoc is a parsed document of the fake runtime.
type fakeDoc struct {
	text string
}

func (d *fakeDoc) Text() string { return d.text }

// fakeRuntime is a scriptable TransformRuntime. Documents are plain text;
// a body starting with "<broken" fails to parse. Hooks left nil return
// empty results.
type fakeRuntime struct {
	name string

	initErr   error
	initGate  chan struct{}
	evalGate  chan struct{}
	inits     atomic.Int32
	closed    atomic.Bool
	active    atomic.Int32
	maxActive atomic.Int32

	mu       sync.Mutex
	released map[driven.Document]int
	sessions []*fakeSession

	normalize  func(text string) (string, error)
	entities   func(text string) ([]domain.Entity, error)
	metadata   func(text, documentID string) (map[string]any, error)
	facsimiles func(text string) ([]domain.Facsimile, error)
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		name:     domain.DefaultRuntime,
		released: make(map[driven.Document]int),
	}
}

func (r *fakeRuntime) Name() string { return r.name }

func (r *fakeRuntime) NewSession(ctx context.Context, cfg *domain.ProjectConfig) (driven.TransformSession, error) {
	r.inits.Add(1)
	if r.initGate != nil {
		<-r.initGate
	}
	if r.initErr != nil {
		return nil, r.initErr
	}
	s := &fakeSession{rt: r, cfg: cfg}
	r.mu.Lock()
	r.sessions = append(r.sessions, s)
	r.mu.Unlock()
	return s, nil
}

func (r *fakeRuntime) Close() error {
	r.closed.Store(true)
	return nil
}

func (r *fakeRuntime) releasedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.released {
		n += c
	}
	return n
}

type fakeSession struct {
	rt     *fakeRuntime
	cfg    *domain.ProjectConfig
	closed atomic.Bool
}

func (s *fakeSession) enter() func() {
	n := s.rt.active.Add(1)
	for {
		cur := s.rt.maxActive.Load()
		if n <= cur || s.rt.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}
	if s.rt.evalGate != nil {
		<-s.rt.evalGate
	}
	return func() { s.rt.active.Add(-1) }
}

func (s *fakeSession) Parse(_ context.Context, raw []byte) (driven.Document, error) {
	defer s.enter()()
	if bytes.HasPrefix(raw, []byte("<broken")) {
		return nil, errors.New("parsererror: unclosed element")
	}
	return &fakeDoc{text: string(raw)}, nil
}

func (s *fakeSession) Normalize(_ context.Context, doc driven.Document, _ *domain.FieldConfig, _ string) (driven.Document, error) {
	if s.rt.normalize == nil {
		return &fakeDoc{text: strings.TrimSpace(doc.Text())}, nil
	}
	text, err := s.rt.normalize(doc.Text())
	if err != nil {
		return nil, err
	}
	return &fakeDoc{text: text}, nil
}

func (s *fakeSession) ExtractEntities(_ context.Context, doc driven.Document, _ *domain.FieldConfig) ([]domain.Entity, error) {
	if s.rt.entities == nil {
		return nil, nil
	}
	return s.rt.entities(doc.Text())
}

func (s *fakeSession) ExtractMetadata(_ context.Context, doc driven.Document, _ *domain.FieldConfig, documentID string) (map[string]any, error) {
	if s.rt.metadata == nil {
		return nil, nil
	}
	return s.rt.metadata(doc.Text(), documentID)
}

func (s *fakeSession) ExtractFacsimiles(_ context.Context, doc driven.Document, _ *domain.FieldConfig) ([]domain.Facsimile, error) {
	if s.rt.facsimiles == nil {
		return nil, nil
	}
	return s.rt.facsimiles(doc.Text())
}

func (s *fakeSession) Release(_ context.Context, doc driven.Document) error {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	s.rt.released[doc]++
	return nil
}

func (s *fakeSession) Close() error {
	s.closed.Store(true)
	return nil
}

// letterEntities extracts "person:Name" tokens as entities.
func letterEntities(text string) ([]domain.Entity, error) {
	var out []domain.Entity
	for _, tok := range strings.Fields(text) {
		if typ, val, ok := strings.Cut(tok, ":"); ok && typ == "person" {
			out = append(out, domain.Entity{Type: typ, Value: val})
		}
	}
	return out, nil
}

func testConfig(id string) *domain.ProjectConfig {
	return &domain.ProjectConfig{
		ID: id,
		Config: domain.FieldConfig{
			Metadata: []domain.FieldDescriptor{
				{ID: "date", Datatype: domain.DatatypeDate},
			},
		},
	}
}
