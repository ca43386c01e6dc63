package services

import (
	"strings"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

// Project maps a pipeline output to its index record. It is pure and
// deterministic.
//
// Entities are grouped by type in first-seen order. Stages that failed
// contribute no keys; id, text and facsimiles are always present.
func Project(out *domain.NormalizedOutput) *domain.IndexRecord {
	rec := &domain.IndexRecord{
		ID:   out.ID,
		Text: out.Text,
		// Real tokenization is left to the index analyzer.
		TextSuggest: domain.TextSuggest{Input: strings.Split(out.Text, " ")},
		Facsimiles:  append([]string{}, out.Facsimiles...),
	}

	if !out.Failed(domain.StageEntities) {
		rec.Entities = GroupEntities(out.Entities)
	}

	if !out.Failed(domain.StageMetadata) && len(out.Metadata) > 0 {
		rec.Metadata = make(map[string]any, len(out.Metadata))
		for k, v := range out.Metadata {
			rec.Metadata[k] = v
		}
	}

	return rec
}

// GroupEntities groups entity values by type, preserving the order in which
// types and values were first seen.
func GroupEntities(entities []domain.Entity) []domain.EntityGroup {
	var groups []domain.EntityGroup
	index := make(map[string]int)
	for _, e := range entities {
		i, ok := index[e.Type]
		if !ok {
			i = len(groups)
			index[e.Type] = i
			groups = append(groups, domain.EntityGroup{Type: e.Type})
		}
		groups[i].Values = append(groups[i].Values, e.Value)
	}
	return groups
}
