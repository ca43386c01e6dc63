package domain

import (
	"encoding/json"
	"fmt"
)

// Stage identifies one step of the transform pipeline.
type Stage string

const (
	StageParse      Stage = "parse"
	StageNormalize  Stage = "normalize"
	StageEntities   Stage = "entities"
	StageMetadata   Stage = "metadata"
	StageFacsimiles Stage = "facsimiles"
)

// Fatal reports whether a failure in this stage aborts the whole transform.
func (s Stage) Fatal() bool {
	return s == StageParse || s == StageNormalize
}

// Sentinel returns the taxonomy error for the stage.
func (s Stage) Sentinel() error {
	switch s {
	case StageParse:
		return ErrParse
	case StageNormalize:
		return ErrNormalize
	case StageEntities:
		return ErrEntityExtraction
	case StageMetadata:
		return ErrMetadataExtraction
	case StageFacsimiles:
		return ErrFacsimileExtraction
	default:
		return nil
	}
}

// StageError records a failure of one pipeline stage for one document.
// It matches the stage's sentinel with errors.Is and unwraps to the cause.
type StageError struct {
	Stage      Stage
	DocumentID string
	Err        error
}

// NewStageError wraps err as a failure of stage.
func NewStageError(stage Stage, documentID string, err error) *StageError {
	return &StageError{Stage: stage, DocumentID: documentID, Err: err}
}

func (e *StageError) Error() string {
	sentinel := e.Stage.Sentinel()
	if sentinel == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	if e.Err == nil {
		return sentinel.Error()
	}
	return fmt.Sprintf("%s: %v", sentinel, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches the stage's sentinel error.
func (e *StageError) Is(target error) bool {
	sentinel := e.Stage.Sentinel()
	return sentinel != nil && target == sentinel
}

// Message returns the cause's message without the stage prefix.
func (e *StageError) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// MarshalJSON encodes the error as {"stage": ..., "error": ...}.
func (e *StageError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Stage   Stage  `json:"stage"`
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}{
		Stage:   e.Stage,
		Kind:    e.Stage.Kind(),
		Message: e.Message(),
	})
}

// Kind returns the taxonomy name of the stage's failure, e.g. "ParseError".
func (s Stage) Kind() string {
	switch s {
	case StageParse:
		return "ParseError"
	case StageNormalize:
		return "NormalizeError"
	case StageEntities:
		return "EntityExtractionError"
	case StageMetadata:
		return "MetadataExtractionError"
	case StageFacsimiles:
		return "FacsimileExtractionError"
	default:
		return "StageError"
	}
}
