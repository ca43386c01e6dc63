package domain

import "encoding/json"

// SuggestMaxInputLength caps the completion suggester input.
const SuggestMaxInputLength = 50

// FieldMapping is the index mapping of one field.
type FieldMapping struct {
	Type                       Datatype `json:"type"`
	PreserveSeparators         *bool    `json:"preserve_separators,omitempty"`
	PreservePositionIncrements *bool    `json:"preserve_position_increments,omitempty"`
	MaxInputLength             int      `json:"max_input_length,omitempty"`
}

// CompletionMapping returns the fixed mapping of the text_suggest field.
func CompletionMapping() FieldMapping {
	preserve := true
	return FieldMapping{
		Type:                       DatatypeCompletion,
		PreserveSeparators:         &preserve,
		PreservePositionIncrements: &preserve,
		MaxInputLength:             SuggestMaxInputLength,
	}
}

// Schema maps index field keys to their mapping.
type Schema struct {
	Properties map[string]FieldMapping
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{Properties: make(map[string]FieldMapping)}
}

// Type returns the datatype of key and whether the key exists.
func (s *Schema) Type(key string) (Datatype, bool) {
	m, ok := s.Properties[key]
	return m.Type, ok
}

type schemaJSON struct {
	Mappings struct {
		Properties map[string]FieldMapping `json:"properties"`
	} `json:"mappings"`
}

// MarshalJSON encodes the schema as an index creation body:
// {"mappings":{"properties":{...}}}.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var out schemaJSON
	out.Mappings.Properties = s.Properties
	if out.Mappings.Properties == nil {
		out.Mappings.Properties = map[string]FieldMapping{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an index creation body.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var in schemaJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Properties = in.Mappings.Properties
	if s.Properties == nil {
		s.Properties = make(map[string]FieldMapping)
	}
	return nil
}
