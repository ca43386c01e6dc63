package native

import (
	"fmt"
	"sort"
	"sync"

	"github.com/beevik/etree"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

// Names of the built-in functions.
const (
	NormalizeDefault   = "default"
	NormalizeTEI       = "tei"
	ExtractSelectors   = "selectors"
	FacsimilesPageFacs = "pb@facs"
)

// Env gives transform functions access to the compiled field selectors of
// the session they run in.
type Env struct {
	Config *domain.FieldConfig
	paths  map[string]etree.Path
}

// Path returns the compiled selector of a descriptor path.
func (e *Env) Path(expr string) (etree.Path, bool) {
	p, ok := e.paths[expr]
	return p, ok
}

// NormalizeFunc returns the document the extraction stages run against.
// It must not modify doc.
type NormalizeFunc func(env *Env, doc *etree.Document, documentID string) (*etree.Document, error)

// EntitiesFunc extracts entities from a normalized document.
type EntitiesFunc func(env *Env, doc *etree.Document) ([]domain.Entity, error)

// MetadataFunc extracts metadata from a normalized document.
type MetadataFunc func(env *Env, doc *etree.Document, documentID string) (map[string]any, error)

// FacsimilesFunc extracts facsimiles from a normalized document.
type FacsimilesFunc func(env *Env, doc *etree.Document) ([]domain.Facsimile, error)

// Registry holds named transform functions. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	normalize  map[string]NormalizeFunc
	entities   map[string]EntitiesFunc
	metadata   map[string]MetadataFunc
	facsimiles map[string]FacsimilesFunc
}

// NewRegistry creates a registry holding the built-in functions.
func NewRegistry() *Registry {
	r := &Registry{
		normalize:  make(map[string]NormalizeFunc),
		entities:   make(map[string]EntitiesFunc),
		metadata:   make(map[string]MetadataFunc),
		facsimiles: make(map[string]FacsimilesFunc),
	}
	r.RegisterNormalize(NormalizeDefault, normalizeDefault)
	r.RegisterNormalize(NormalizeTEI, normalizeTEI)
	r.RegisterEntities(ExtractSelectors, selectEntities)
	r.RegisterMetadata(ExtractSelectors, selectMetadata)
	r.RegisterFacsimiles(FacsimilesPageFacs, pageFacsimiles)
	return r
}

// RegisterNormalize adds or replaces a normalize function.
func (r *Registry) RegisterNormalize(name string, fn NormalizeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalize[name] = fn
}

// RegisterEntities adds or replaces an entities function.
func (r *Registry) RegisterEntities(name string, fn EntitiesFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[name] = fn
}

// RegisterMetadata adds or replaces a metadata function.
func (r *Registry) RegisterMetadata(name string, fn MetadataFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadata[name] = fn
}

// RegisterFacsimiles adds or replaces a facsimiles function.
func (r *Registry) RegisterFacsimiles(name string, fn FacsimilesFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.facsimiles[name] = fn
}

// Names lists the registered function names per stage, sorted.
func (r *Registry) Names() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[string][]string{
		"normalize":  sortedKeys(r.normalize),
		"entities":   sortedKeys(r.entities),
		"metadata":   sortedKeys(r.metadata),
		"facsimiles": sortedKeys(r.facsimiles),
	}
}

// functions are the resolved functions of one project.
type functions struct {
	normalize  NormalizeFunc
	entities   EntitiesFunc
	metadata   MetadataFunc
	facsimiles FacsimilesFunc
}

func (r *Registry) resolve(s domain.Scripts) (*functions, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var fns functions
	var err error
	if fns.normalize, err = lookup("normalize", r.normalize, s.Normalize, NormalizeDefault); err != nil {
		return nil, err
	}
	if fns.entities, err = lookup("entities", r.entities, s.Entities, ExtractSelectors); err != nil {
		return nil, err
	}
	if fns.metadata, err = lookup("metadata", r.metadata, s.Metadata, ExtractSelectors); err != nil {
		return nil, err
	}
	if fns.facsimiles, err = lookup("facsimiles", r.facsimiles, s.Facsimiles, FacsimilesPageFacs); err != nil {
		return nil, err
	}
	return &fns, nil
}

func lookup[F any](stage string, fns map[string]F, name, fallback string) (F, error) {
	if name == "" {
		name = fallback
	}
	fn, ok := fns[name]
	if !ok {
		var zero F
		return zero, fmt.Errorf("unknown %s function %q", stage, name)
	}
	return fn, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
