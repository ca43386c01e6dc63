// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TransformRuntime: Starts project-scoped transform sessions
//   - TransformSession: Runs a project's four transform functions
//   - ProjectConfigLoader: Loads a project's configuration
//   - Corpus: Lists and reads a project's XML documents
//   - IndexSink: Creates indices and upserts records
//   - ConfigStore: Application settings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
