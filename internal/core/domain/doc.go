// Package domain defines the core business entities for Docere.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ProjectConfig: A project's field declarations and transform references
//   - NormalizedOutput: The pipeline's output for one document
//   - IndexRecord: The flattened, index-ready shape of a document
//   - Schema: The field to datatype mapping of a project's index
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
