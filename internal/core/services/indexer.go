package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driving"
	"github.com/custodia-labs/docere-indexer/internal/logger"
	"github.com/custodia-labs/docere-indexer/internal/metrics"
)

// Ensure Indexer implements the interface.
var _ driving.IndexService = (*Indexer)(nil)

// IndexOptions tunes an indexing run.
type IndexOptions struct {
	// Concurrency is the number of projects indexed at once. Defaults to 1.
	Concurrency int

	// RateLimit caps documents transformed per second per project.
	// Zero means unlimited.
	RateLimit float64
}

// Indexer recreates project indexes from their corpus.
type Indexer struct {
	schemas *SchemaEngine
	extract *ExtractionService
	corpus  driven.Corpus
	sink    driven.IndexSink
	metrics *metrics.Metrics
	opts    IndexOptions
}

// NewIndexer creates a new indexer.
func NewIndexer(
	schemas *SchemaEngine,
	extract *ExtractionService,
	corpus driven.Corpus,
	sink driven.IndexSink,
	m *metrics.Metrics,
	opts IndexOptions,
) *Indexer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Indexer{
		schemas: schemas,
		extract: extract,
		corpus:  corpus,
		sink:    sink,
		metrics: m,
		opts:    opts,
	}
}

// IndexProject infers the schema of a project, recreates its index and
// upserts every document. A document that fails to transform or upsert is
// counted and skipped.
func (ix *Indexer) IndexProject(ctx context.Context, projectID string) (*domain.IndexReport, error) {
	report := &domain.IndexReport{
		RunID:     uuid.New().String(),
		ProjectID: projectID,
		StartedAt: time.Now(),
	}

	paths, err := ix.corpus.ListDocuments(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	report.Total = len(paths)

	schema, err := ix.schemas.Infer(ctx, projectID, paths)
	if err != nil {
		return nil, fmt.Errorf("infer schema: %w", err)
	}
	if err := ix.sink.CreateIndex(ctx, projectID, schema); err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	logger.Info("Indexing %d documents of project %s (run %s)", len(paths), projectID, report.RunID)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if ix.opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(ix.opts.RateLimit), 1)
	}

	for _, path := range paths {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		id := ix.corpus.DocumentID(path)
		warnings, err := ix.indexDocument(ctx, projectID, path, id)
		ix.metrics.DocumentIndexed(projectID, err)
		report.Warnings += warnings
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			report.Failed++
			logger.Warn("Failed to index %s/%s: %v", projectID, id, err)
			continue
		}
		report.Indexed++
	}

	report.Duration = time.Since(report.StartedAt)
	logger.Info("Indexed project %s: %d/%d documents, %d failed, %d warnings (%s)",
		projectID, report.Indexed, report.Total, report.Failed, report.Warnings, report.Duration.Round(time.Millisecond))
	return report, nil
}

func (ix *Indexer) indexDocument(ctx context.Context, projectID, path, id string) (int, error) {
	raw, err := ix.corpus.ReadDocument(ctx, projectID, path)
	if err != nil {
		return 0, err
	}
	out, err := ix.extract.ExtractRaw(ctx, projectID, id, raw)
	if err != nil {
		return 0, err
	}
	if err := ix.sink.Upsert(ctx, projectID, Project(out)); err != nil {
		return len(out.Warnings), fmt.Errorf("upsert: %w", err)
	}
	return len(out.Warnings), nil
}

// IndexAll indexes the given projects, or every known project when none are
// given. A failing project does not stop the others; its error is joined
// into the returned error.
func (ix *Indexer) IndexAll(ctx context.Context, projectIDs []string) ([]domain.IndexReport, error) {
	if len(projectIDs) == 0 {
		ids, err := ix.corpus.ListProjects(ctx)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		projectIDs = ids
	}

	var (
		mu      sync.Mutex
		reports = make([]domain.IndexReport, 0, len(projectIDs))
		errs    []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.Concurrency)
	for _, id := range projectIDs {
		g.Go(func() error {
			report, err := ix.IndexProject(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("project %s: %w", id, err))
				return nil
			}
			reports = append(reports, *report)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(reports, func(i, j int) bool { return reports[i].ProjectID < reports[j].ProjectID })

	return reports, errors.Join(errs...)
}
