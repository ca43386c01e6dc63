package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driving"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// ExtractionService transforms single documents on request.
type ExtractionService struct {
	resolver *ConfigResolver
	pool     *SessionPool
	pipeline *Pipeline
	corpus   driven.Corpus
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(
	resolver *ConfigResolver,
	pool *SessionPool,
	pipeline *Pipeline,
	corpus driven.Corpus,
) *ExtractionService {
	return &ExtractionService{
		resolver: resolver,
		pool:     pool,
		pipeline: pipeline,
		corpus:   corpus,
	}
}

// Extract transforms a stored document of a project.
func (s *ExtractionService) Extract(ctx context.Context, projectID, documentID string) (*domain.NormalizedOutput, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	// Resolve first so an unknown project is reported before an unknown document.
	if _, err := s.resolver.Resolve(ctx, projectID); err != nil {
		return nil, err
	}
	raw, err := s.corpus.ReadDocument(ctx, projectID, s.corpus.DocumentPath(documentID))
	if err != nil {
		return nil, err
	}
	return s.ExtractRaw(ctx, projectID, documentID, raw)
}

// ExtractRaw transforms the given XML bytes as a document of a project.
func (s *ExtractionService) ExtractRaw(
	ctx context.Context,
	projectID, documentID string,
	raw []byte,
) (*domain.NormalizedOutput, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}
	cfg, err := s.resolver.Resolve(ctx, projectID)
	if err != nil {
		return nil, err
	}
	session, err := s.pool.Acquire(ctx, projectID, cfg)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Transform(ctx, session, raw, documentID)
}

// Fields transforms a stored document and projects it into an index record.
func (s *ExtractionService) Fields(ctx context.Context, projectID, documentID string) (*domain.IndexRecord, error) {
	out, err := s.Extract(ctx, projectID, documentID)
	if err != nil {
		return nil, err
	}
	return Project(out), nil
}

// FieldsRaw transforms the given XML bytes and projects them into an index record.
func (s *ExtractionService) FieldsRaw(
	ctx context.Context,
	projectID, documentID string,
	raw []byte,
) (*domain.IndexRecord, error) {
	out, err := s.ExtractRaw(ctx, projectID, documentID, raw)
	if err != nil {
		return nil, err
	}
	return Project(out), nil
}
