package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
)

// Ensure IndexSink implements the interface.
var _ driven.IndexSink = (*IndexSink)(nil)

// IndexSink is an in-memory implementation of driven.IndexSink.
type IndexSink struct {
	mu      sync.RWMutex
	schemas map[string]*domain.Schema
	records map[string]map[string]*domain.IndexRecord
}

// NewIndexSink creates a new in-memory index sink.
func NewIndexSink() *IndexSink {
	return &IndexSink{
		schemas: make(map[string]*domain.Schema),
		records: make(map[string]map[string]*domain.IndexRecord),
	}
}

// CreateIndex drops any records of the project and stores the schema.
func (s *IndexSink) CreateIndex(_ context.Context, projectID string, schema *domain.Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[projectID] = schema
	s.records[projectID] = make(map[string]*domain.IndexRecord)
	return nil
}

// Upsert stores a record by id. The index must have been created.
func (s *IndexSink) Upsert(_ context.Context, projectID string, record *domain.IndexRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, ok := s.records[projectID]
	if !ok {
		return fmt.Errorf("%w: index %s", domain.ErrNotFound, projectID)
	}
	records[record.ID] = record
	return nil
}

// Schema returns the schema an index was created with.
func (s *IndexSink) Schema(projectID string) (*domain.Schema, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, ok := s.schemas[projectID]
	return schema, ok
}

// Record returns a stored record.
func (s *IndexSink) Record(projectID, id string) (*domain.IndexRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[projectID][id]
	return rec, ok
}

// Count returns the number of records in an index.
func (s *IndexSink) Count(projectID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[projectID])
}

// Close is a no-op.
func (s *IndexSink) Close() error {
	return nil
}
