package domain

import (
	"encoding/json"
	"sort"
)

// Entity is one extracted text data value. A type may repeat.
type Entity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Facsimile is an extracted facsimile reference with its image versions.
type Facsimile struct {
	ID       string             `json:"id,omitempty"`
	Versions []FacsimileVersion `json:"versions"`
}

// FacsimileVersion is one rendition of a facsimile.
type FacsimileVersion struct {
	Path string `json:"path"`
}

// FlattenFacsimiles reduces facsimiles to the path of each version, in order.
func FlattenFacsimiles(facsimiles []Facsimile) []string {
	paths := make([]string, 0, len(facsimiles))
	for _, f := range facsimiles {
		for _, v := range f.Versions {
			paths = append(paths, v.Path)
		}
	}
	return paths
}

// ExtractionResult is the union of the three extraction stages for a document.
type ExtractionResult struct {
	Entities   []Entity       `json:"entities"`
	Metadata   map[string]any `json:"metadata"`
	Facsimiles []string       `json:"facsimiles"`
}

// NormalizedOutput is the Transform Pipeline's output for one document.
type NormalizedOutput struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	ExtractionResult

	// Warnings records non-fatal stage failures.
	Warnings []*StageError `json:"warnings,omitempty"`
}

// Failed reports whether the given stage recorded a failure.
func (o *NormalizedOutput) Failed(stage Stage) bool {
	for _, w := range o.Warnings {
		if w.Stage == stage {
			return true
		}
	}
	return false
}

// EntityGroup holds all values of one entity type.
type EntityGroup struct {
	Type   string
	Values []string
}

// TextSuggest is the input of the completion suggester.
type TextSuggest struct {
	Input []string `json:"input"`
}

// Reserved IndexRecord keys.
const (
	FieldID          = "id"
	FieldText        = "text"
	FieldTextSuggest = "text_suggest"
	FieldFacsimiles  = "facsimiles"
)

// IndexRecord is the flattened, index-ready shape of one document.
// Entity groups and metadata become top-level keys; metadata is applied
// last and wins on collision.
type IndexRecord struct {
	ID          string
	Text        string
	TextSuggest TextSuggest
	Facsimiles  []string
	Entities    []EntityGroup
	Metadata    map[string]any
}

// Fields returns the flattened key/value view of the record.
func (r *IndexRecord) Fields() map[string]any {
	fields := make(map[string]any, 4+len(r.Entities)+len(r.Metadata))
	fields[FieldID] = r.ID
	fields[FieldText] = r.Text
	fields[FieldTextSuggest] = r.TextSuggest
	facsimiles := r.Facsimiles
	if facsimiles == nil {
		facsimiles = []string{}
	}
	fields[FieldFacsimiles] = facsimiles
	for _, g := range r.Entities {
		fields[g.Type] = g.Values
	}
	for k, v := range r.Metadata {
		fields[k] = v
	}
	return fields
}

// Keys returns every top-level key of the record: the reserved keys, then
// entity types in first-seen order, then metadata keys sorted.
func (r *IndexRecord) Keys() []string {
	keys := []string{FieldID, FieldText, FieldTextSuggest, FieldFacsimiles}
	seen := map[string]struct{}{}
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, g := range r.Entities {
		add(g.Type)
	}
	meta := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		meta = append(meta, k)
	}
	sort.Strings(meta)
	for _, k := range meta {
		add(k)
	}
	return keys
}

// MarshalJSON encodes the flattened record. Keys are sorted, so identical
// records always encode to identical bytes.
func (r *IndexRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}
