package services

import (
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driving"
	"github.com/custodia-labs/docere-indexer/internal/logger"
	"github.com/custodia-labs/docere-indexer/internal/metrics"
)

// Ensure SchemaEngine implements the interface.
var _ driving.SchemaService = (*SchemaEngine)(nil)

// samplePercentiles are the corpus offsets sampled for schema inference,
// followed by the last document.
var samplePercentiles = []float64{0, .125, .25, .375, .5, .625, .75, .875}

// SampleIndices returns the indices sampled from a corpus of n documents:
// floor(n*p) for each percentile, then n-1. Duplicates are kept.
func SampleIndices(n int) []int {
	if n <= 0 {
		return nil
	}
	indices := make([]int, 0, len(samplePercentiles)+1)
	for _, p := range samplePercentiles {
		indices = append(indices, int(math.Floor(float64(n)*p)))
	}
	return append(indices, n-1)
}

// SchemaEngine infers a project's index schema from a corpus sample and its
// declared fields.
type SchemaEngine struct {
	resolver *ConfigResolver
	pool     *SessionPool
	pipeline *Pipeline
	corpus   driven.Corpus
	metrics  *metrics.Metrics
}

// NewSchemaEngine creates a schema inference engine.
func NewSchemaEngine(
	resolver *ConfigResolver,
	pool *SessionPool,
	pipeline *Pipeline,
	corpus driven.Corpus,
	m *metrics.Metrics,
) *SchemaEngine {
	return &SchemaEngine{
		resolver: resolver,
		pool:     pool,
		pipeline: pipeline,
		corpus:   corpus,
		metrics:  m,
	}
}

// Schema infers the schema of a project from its whole corpus.
func (e *SchemaEngine) Schema(ctx context.Context, projectID string) (*domain.Schema, error) {
	paths, err := e.corpus.ListDocuments(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return e.Infer(ctx, projectID, paths)
}

// Infer samples the ordered document paths, collects every record key and
// resolves a datatype per key. A sampled document that cannot be read or
// transformed is skipped; declared fields still reach the schema.
func (e *SchemaEngine) Infer(ctx context.Context, projectID string, paths []string) (*domain.Schema, error) {
	schema, err := e.infer(ctx, projectID, paths)
	e.metrics.SchemaInferred(projectID, err)
	return schema, err
}

func (e *SchemaEngine) infer(ctx context.Context, projectID string, paths []string) (*domain.Schema, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: project %s has no documents", domain.ErrEmptyCorpus, projectID)
	}

	cfg, err := e.resolver.Resolve(ctx, projectID)
	if err != nil {
		return nil, err
	}
	session, err := e.pool.Acquire(ctx, projectID, cfg)
	if err != nil {
		return nil, err
	}

	logger.Section("Schema inference: " + projectID)

	keys := newKeySet()
	for _, i := range SampleIndices(len(paths)) {
		path := paths[i]
		raw, err := e.corpus.ReadDocument(ctx, projectID, path)
		if err != nil {
			logger.Warn("Schema sample %s/%s skipped: %v", projectID, path, err)
			continue
		}

		out, err := e.pipeline.Transform(ctx, session, raw, e.corpus.DocumentID(path))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Schema sample %s/%s skipped: %v", projectID, path, err)
			continue
		}

		rec := Project(out)
		keys.add(rec.Keys()...)
		logger.Debug("Sampled %s (index %d): %d keys", path, i, len(rec.Keys()))
	}

	for _, f := range cfg.Config.Metadata {
		keys.add(f.ID)
	}
	for _, f := range cfg.Config.TextData {
		keys.add(f.ID)
	}

	return ResolveSchema(keys.list(), &cfg.Config), nil
}

// ResolveSchema resolves a datatype for every key. Keys resolving to the
// null datatype are dropped. id, text and text_suggest are always present.
func ResolveSchema(keys []string, fc *domain.FieldConfig) *domain.Schema {
	schema := domain.NewSchema()
	schema.Properties[domain.FieldID] = domain.FieldMapping{Type: domain.DatatypeKeyword}
	schema.Properties[domain.FieldText] = domain.FieldMapping{Type: domain.DatatypeText}

	for _, key := range keys {
		switch key {
		case domain.FieldID, domain.FieldText, domain.FieldTextSuggest:
			continue
		}
		dt := ResolveDatatype(key, fc)
		if dt == domain.DatatypeNull {
			continue
		}
		schema.Properties[key] = domain.FieldMapping{Type: dt}
	}

	schema.Properties[domain.FieldTextSuggest] = domain.CompletionMapping()
	return schema
}

// ResolveDatatype resolves the datatype of one key: a declared metadata
// datatype, else a declared text data datatype, else keyword. text is always
// full-text and hierarchy is mapped to keyword. A null result means the key
// must not be indexed.
func ResolveDatatype(key string, fc *domain.FieldConfig) domain.Datatype {
	if key == domain.FieldText {
		return domain.DatatypeText
	}

	dt := domain.DatatypeKeyword
	if f, ok := fc.MetadataField(key); ok && f.Datatype != "" {
		dt = f.Datatype
	} else if f, ok := fc.TextDataField(key); ok && f.Datatype != "" {
		dt = f.Datatype
	}

	if dt == domain.DatatypeHierarchy {
		return domain.DatatypeKeyword
	}
	return dt
}

// keySet is an insertion-ordered set of field keys.
type keySet struct {
	seen map[string]struct{}
	keys []string
}

func newKeySet() *keySet {
	return &keySet{seen: make(map[string]struct{})}
}

func (s *keySet) add(keys ...string) {
	for _, k := range keys {
		if _, ok := s.seen[k]; ok {
			continue
		}
		s.seen[k] = struct{}{}
		s.keys = append(s.keys, k)
	}
}

func (s *keySet) list() []string {
	return s.keys
}
