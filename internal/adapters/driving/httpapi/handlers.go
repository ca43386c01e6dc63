package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/logger"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ids, err := s.deps.Projects.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     "docere",
		"version":  s.deps.Version,
		"projects": ids,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	ids, err := s.deps.Projects.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.deps.Projects.Config(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleMapping(w http.ResponseWriter, r *http.Request) {
	schema, err := s.deps.Schemas.Schema(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// extract transforms the document named by the route.
func (s *Server) extract(w http.ResponseWriter, r *http.Request) (*domain.NormalizedOutput, bool) {
	docID, err := documentID(r)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	out, err := s.deps.Extraction.Extract(r.Context(), chi.URLParam(r, "projectID"), docID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return out, true
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	if out, ok := s.extract(w, r); ok {
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	if out, ok := s.extract(w, r); ok {
		writeJSON(w, http.StatusOK, out.Metadata)
	}
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	if out, ok := s.extract(w, r); ok {
		writeJSON(w, http.StatusOK, out.Entities)
	}
}

func (s *Server) handleFacsimiles(w http.ResponseWriter, r *http.Request) {
	if out, ok := s.extract(w, r); ok {
		writeJSON(w, http.StatusOK, out.Facsimiles)
	}
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	docID, err := documentID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.deps.Extraction.Fields(r.Context(), chi.URLParam(r, "projectID"), docID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handlePostFields transforms an XML request body as the named document.
func (s *Server) handlePostFields(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || (mediaType != "application/xml" && mediaType != "text/xml") {
		writeError(w, fmt.Errorf("%w: expected application/xml or text/xml", domain.ErrUnsupportedMediaType))
		return
	}

	docID, err := documentID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "document too large"})
			return
		}
		writeError(w, fmt.Errorf("%w: read body: %w", domain.ErrInvalidInput, err))
		return
	}
	if len(body) == 0 {
		writeError(w, fmt.Errorf("%w: empty body", domain.ErrInvalidInput))
		return
	}

	rec, err := s.deps.Extraction.FieldsRaw(r.Context(), chi.URLParam(r, "projectID"), docID, body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// documentID returns the unescaped document id route parameter. Ids with
// slashes are sent escaped.
func documentID(r *http.Request) (string, error) {
	id, err := url.PathUnescape(chi.URLParam(r, "documentID"))
	if err != nil || id == "" {
		return "", fmt.Errorf("%w: invalid document id", domain.ErrInvalidInput)
	}
	return id, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Stage   string `json:"stage,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrNormalize), errors.Is(err, domain.ErrEmptyCorpus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionInit), errors.Is(err, domain.ErrPoolClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	body := errorBody{Error: err.Error()}

	var se *domain.StageError
	if errors.As(err, &se) {
		body.Stage = string(se.Stage)
		body.Kind = se.Stage.Kind()
		body.Message = se.Message()
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed: %v", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Write response: %v", err)
	}
}
