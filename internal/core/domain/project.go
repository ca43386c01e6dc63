package domain

import (
	"fmt"
	"sort"
)

// Datatype is an index field type.
type Datatype string

const (
	DatatypeKeyword    Datatype = "keyword"
	DatatypeText       Datatype = "text"
	DatatypeDate       Datatype = "date"
	DatatypeBoolean    Datatype = "boolean"
	DatatypeInteger    Datatype = "integer"
	DatatypeFloat      Datatype = "float"
	DatatypeCompletion Datatype = "completion"

	// DatatypeHierarchy marks a hierarchical facet. The index has no native
	// hierarchy type, so it is mapped as keyword.
	DatatypeHierarchy Datatype = "hierarchy"

	// DatatypeNull marks a field that must not be indexed.
	DatatypeNull Datatype = "null"
)

// Valid reports whether d is empty (undeclared) or a known datatype.
func (d Datatype) Valid() bool {
	switch d {
	case "", DatatypeKeyword, DatatypeText, DatatypeDate, DatatypeBoolean,
		DatatypeInteger, DatatypeFloat, DatatypeCompletion, DatatypeHierarchy, DatatypeNull:
		return true
	}
	return false
}

// DefaultRuntime is the transform runtime used when a project names none.
const DefaultRuntime = "native"

// ProjectConfig is the resolved configuration of one project.
// It is loaded once per process and never mutated afterwards.
type ProjectConfig struct {
	// ID is the project identifier.
	ID string `json:"id"`

	// Runtime names the transform runtime that executes the project's functions.
	Runtime string `json:"runtime"`

	// Dir is the project's root directory. Script paths are relative to it.
	Dir string `json:"-"`

	// Scripts references the four transform functions.
	Scripts Scripts `json:"scripts"`

	// Config holds the field declarations passed to every transform function.
	Config FieldConfig `json:"config"`
}

// Scripts references a project's transform functions. For the native runtime
// these are registered function names, for the browser runtime script files.
type Scripts struct {
	Normalize  string   `json:"normalize,omitempty"`
	Entities   string   `json:"entities,omitempty"`
	Metadata   string   `json:"metadata,omitempty"`
	Facsimiles string   `json:"facsimiles,omitempty"`
	Include    []string `json:"include,omitempty"`
}

// FieldConfig is the configuration object handed to the transform functions.
type FieldConfig struct {
	Slug       string            `json:"slug,omitempty"`
	Title      string            `json:"title,omitempty"`
	Metadata   []FieldDescriptor `json:"metadata"`
	TextData   []FieldDescriptor `json:"textdata"`
	Facsimiles FacsimileConfig   `json:"facsimiles"`

	// Extra carries project keys the core does not interpret.
	Extra map[string]any `json:"extra,omitempty"`
}

// FieldDescriptor declares a metadata or text data field.
type FieldDescriptor struct {
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Datatype  Datatype `json:"datatype,omitempty"`
	Path      string   `json:"path,omitempty"`
	Attribute string   `json:"attribute,omitempty"`
}

// FacsimileConfig tells selector based runtimes where facsimile references live.
type FacsimileConfig struct {
	Path      string `json:"path,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	Suffix    string `json:"suffix,omitempty"`
}

// MetadataField returns the metadata descriptor with the given id.
func (c *FieldConfig) MetadataField(id string) (FieldDescriptor, bool) {
	return findField(c.Metadata, id)
}

// TextDataField returns the text data descriptor with the given id.
func (c *FieldConfig) TextDataField(id string) (FieldDescriptor, bool) {
	return findField(c.TextData, id)
}

func findField(fields []FieldDescriptor, id string) (FieldDescriptor, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// DeclaredIDs returns every declared metadata and text data id, sorted.
func (c *FieldConfig) DeclaredIDs() []string {
	seen := make(map[string]struct{}, len(c.Metadata)+len(c.TextData))
	for _, f := range c.Metadata {
		seen[f.ID] = struct{}{}
	}
	for _, f := range c.TextData {
		seen[f.ID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks descriptor ids are unique per list and datatypes are known.
func (p *ProjectConfig) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}
	if err := validateFields("metadata", p.Config.Metadata); err != nil {
		return err
	}
	return validateFields("textdata", p.Config.TextData)
}

func validateFields(list string, fields []FieldDescriptor) error {
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if f.ID == "" {
			return fmt.Errorf("%w: %s[%d] has no id", ErrInvalidInput, list, i)
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("%w: duplicate %s id %q", ErrInvalidInput, list, f.ID)
		}
		seen[f.ID] = struct{}{}
		if !f.Datatype.Valid() {
			return fmt.Errorf("%w: %s field %q has unknown datatype %q", ErrInvalidInput, list, f.ID, f.Datatype)
		}
	}
	return nil
}

// RuntimeName returns the configured runtime or the default one.
func (p *ProjectConfig) RuntimeName() string {
	if p.Runtime == "" {
		return DefaultRuntime
	}
	return p.Runtime
}
