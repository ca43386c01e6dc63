package domain

import "time"

// IndexReport summarises one (re)indexing run of a project.
type IndexReport struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// ProjectID is the indexed project.
	ProjectID string `json:"project_id"`

	// Total is the number of documents in the corpus.
	Total int `json:"total"`

	// Indexed is the number of records upserted.
	Indexed int `json:"indexed"`

	// Failed is the number of documents that could not be transformed or upserted.
	Failed int `json:"failed"`

	// Warnings is the number of non-fatal stage failures across all documents.
	Warnings int `json:"warnings"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}
