package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedMediaType indicates a raw document was submitted without an XML content type.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrConfigNotFound indicates no configuration exists for a project.
	ErrConfigNotFound = errors.New("config not found")

	// ErrSessionInit indicates a transform session could not be started
	// or could not load the project's transform functions.
	// Always retryable on the next request.
	ErrSessionInit = errors.New("session init failed")

	// ErrPoolClosed indicates the session pool has been shut down.
	ErrPoolClosed = errors.New("session pool closed")

	// ErrEmptyCorpus indicates schema inference was asked to sample zero documents.
	ErrEmptyCorpus = errors.New("empty corpus")

	// Pipeline stage errors.

	// ErrParse indicates the raw bytes are not well-formed XML. Fatal.
	ErrParse = errors.New("parse error")

	// ErrNormalize indicates the project's normalize function failed. Fatal.
	ErrNormalize = errors.New("normalize error")

	// ErrEntityExtraction indicates the entity function failed. Non-fatal.
	ErrEntityExtraction = errors.New("entity extraction error")

	// ErrMetadataExtraction indicates the metadata function failed. Non-fatal.
	ErrMetadataExtraction = errors.New("metadata extraction error")

	// ErrFacsimileExtraction indicates the facsimile function failed. Non-fatal.
	ErrFacsimileExtraction = errors.New("facsimile extraction error")
)
