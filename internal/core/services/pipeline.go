package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
	"github.com/custodia-labs/docere-indexer/internal/logger"
	"github.com/custodia-labs/docere-indexer/internal/metrics"
)

// Pipeline drives a session through parse, normalize and the three
// extraction stages. Parse and normalize failures are fatal; extraction
// failures degrade that stage's output to an empty value and are recorded
// as warnings on the output.
type Pipeline struct {
	metrics *metrics.Metrics
}

// NewPipeline creates a transform pipeline.
func NewPipeline(m *metrics.Metrics) *Pipeline {
	return &Pipeline{metrics: m}
}

type transformResult struct {
	out *domain.NormalizedOutput
	err error
}

// Transform runs one document through the session.
//
// The call holds the session exclusively. If ctx ends while waiting for the
// session, Transform returns ctx.Err(). Once the evaluation has started it
// runs to completion; a caller whose ctx ends meanwhile gets ctx.Err() and
// the result is discarded.
func (p *Pipeline) Transform(
	ctx context.Context,
	s *Session,
	raw []byte,
	documentID string,
) (*domain.NormalizedOutput, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}

	done := make(chan transformResult, 1)
	input := bytes.Clone(raw)
	go func() {
		defer s.unlock()
		start := time.Now()
		out, err := p.run(context.WithoutCancel(ctx), s, input, documentID)
		p.metrics.ObserveTransform(s.ProjectID, time.Since(start), err)
		done <- transformResult{out: out, err: err}
	}()

	select {
	case res := <-done:
		return res.out, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pipeline) run(
	ctx context.Context,
	s *Session,
	raw []byte,
	documentID string,
) (*domain.NormalizedOutput, error) {
	impl := s.impl
	fc := &s.Config.Config

	var parsed driven.Document
	err := guard(func() (err error) {
		parsed, err = impl.Parse(ctx, raw)
		return err
	})
	if err != nil {
		return nil, p.fatal(s, domain.StageParse, documentID, err)
	}
	defer p.release(ctx, s, parsed)

	var doc driven.Document
	err = guard(func() (err error) {
		doc, err = impl.Normalize(ctx, parsed, fc, documentID)
		return err
	})
	if err == nil && doc == nil {
		err = errors.New("normalize returned no document")
	}
	if err != nil {
		return nil, p.fatal(s, domain.StageNormalize, documentID, err)
	}
	defer p.release(ctx, s, doc)

	out := &domain.NormalizedOutput{
		ID:   documentID,
		Text: doc.Text(),
		ExtractionResult: domain.ExtractionResult{
			Entities:   []domain.Entity{},
			Metadata:   map[string]any{},
			Facsimiles: []string{},
		},
	}

	var entities []domain.Entity
	err = guard(func() (err error) {
		entities, err = impl.ExtractEntities(ctx, doc, fc)
		return err
	})
	if err != nil {
		p.warn(s, out, domain.StageEntities, err)
	} else if entities != nil {
		out.Entities = entities
	}

	var metadata map[string]any
	err = guard(func() (err error) {
		metadata, err = impl.ExtractMetadata(ctx, doc, fc, documentID)
		return err
	})
	if err != nil {
		p.warn(s, out, domain.StageMetadata, err)
	} else if metadata != nil {
		out.Metadata = metadata
	}

	var facsimiles []domain.Facsimile
	err = guard(func() (err error) {
		facsimiles, err = impl.ExtractFacsimiles(ctx, doc, fc)
		return err
	})
	if err != nil {
		p.warn(s, out, domain.StageFacsimiles, err)
	} else {
		out.Facsimiles = domain.FlattenFacsimiles(facsimiles)
	}

	return out, nil
}

func (p *Pipeline) fatal(s *Session, stage domain.Stage, documentID string, err error) error {
	p.metrics.StageFailed(s.ProjectID, string(stage))
	return domain.NewStageError(stage, documentID, err)
}

func (p *Pipeline) warn(s *Session, out *domain.NormalizedOutput, stage domain.Stage, err error) {
	p.metrics.StageFailed(s.ProjectID, string(stage))
	se := domain.NewStageError(stage, out.ID, err)
	out.Warnings = append(out.Warnings, se)
	logger.L().Warn().
		Str("project", s.ProjectID).
		Str("document", out.ID).
		Str("stage", string(stage)).
		Str("kind", stage.Kind()).
		Err(err).
		Msg("extraction stage failed")
}

func (p *Pipeline) release(ctx context.Context, s *Session, doc driven.Document) {
	if doc == nil {
		return
	}
	if err := s.impl.Release(ctx, doc); err != nil {
		logger.Debug("Release document in project %s: %v", s.ProjectID, err)
	}
}

// guard converts a panic in a transform function into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
