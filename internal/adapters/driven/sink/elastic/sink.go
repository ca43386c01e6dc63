// Package elastic provides a driven.IndexSink writing to Elasticsearch.
// Each project has one index named after the project id, lowercased.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.IndexSink = (*Sink)(nil)

// Config configures the Elasticsearch sink.
type Config struct {
	Addresses []string

	// IndexPrefix is prepended to every index name.
	IndexPrefix string

	// Transport overrides the HTTP transport.
	Transport http.RoundTripper
}

// Sink writes index records to Elasticsearch.
type Sink struct {
	client *elasticsearch.Client
	prefix string
}

// New creates an Elasticsearch sink.
func New(cfg Config) (*Sink, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &Sink{client: client, prefix: cfg.IndexPrefix}, nil
}

// IndexName returns the index of a project.
func (s *Sink) IndexName(projectID string) string {
	return strings.ToLower(s.prefix + projectID)
}

// CreateIndex deletes the project's index, if any, and creates it with the
// schema as its mapping.
func (s *Sink) CreateIndex(ctx context.Context, projectID string, schema *domain.Schema) error {
	index := s.IndexName(projectID)

	res, err := s.client.Indices.Delete(
		[]string{index},
		s.client.Indices.Delete.WithContext(ctx),
		s.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err := check(res, err, http.StatusNotFound); err != nil {
		return fmt.Errorf("delete index %s: %w", index, err)
	}

	body, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshalling mapping: %w", err)
	}
	res, err = s.client.Indices.Create(
		index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err := check(res, err); err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	return nil
}

// Upsert indexes a record under its id.
func (s *Sink) Upsert(ctx context.Context, projectID string, record *domain.IndexRecord) error {
	index := s.IndexName(projectID)

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}
	res, err := s.client.Index(
		index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(record.ID),
	)
	if err := check(res, err); err != nil {
		return fmt.Errorf("index %s/%s: %w", index, record.ID, err)
	}
	return nil
}

// Close is a no-op; the client holds no resources beyond its transport.
func (s *Sink) Close() error {
	return nil
}

// check turns a transport error or an error response into an error and
// closes the body. Statuses in ignore are not errors.
func check(res *esapi.Response, err error, ignore ...int) error {
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if !res.IsError() {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	for _, code := range ignore {
		if res.StatusCode == code {
			return nil
		}
	}

	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, strings.TrimSpace(string(msg)))
	}
	return fmt.Errorf("elasticsearch %s: %s", res.Status(), strings.TrimSpace(string(msg)))
}
