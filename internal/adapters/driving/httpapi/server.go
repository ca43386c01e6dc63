// Package httpapi exposes projects, schemas and document transforms over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/docere-indexer/internal/core/ports/driving"
	"github.com/custodia-labs/docere-indexer/internal/logger"
)

// maxDocumentSize caps POSTed document bodies.
const maxDocumentSize = 32 << 20

// Deps are the services the server exposes.
type Deps struct {
	Projects   driving.ProjectService
	Schemas    driving.SchemaService
	Extraction driving.ExtractionService

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Version is reported by GET /.
	Version string
}

// Server is the HTTP API.
type Server struct {
	deps   Deps
	router chi.Router
}

// NewServer creates the server and its routes.
func NewServer(deps Deps) *Server {
	s := &Server{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.handleProjects)
		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/config", s.handleConfig)
			r.Get("/mapping", s.handleMapping)
			r.Route("/documents/{documentID}", func(r chi.Router) {
				r.Get("/", s.handleDocument)
				r.Get("/metadata", s.handleMetadata)
				r.Get("/entities", s.handleEntities)
				r.Get("/facsimiles", s.handleFacsimiles)
				r.Get("/fields", s.handleFields)
				r.Post("/fields", s.handlePostFields)
			})
		})
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs every request at debug level, errors at warn.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		ev := logger.L().Debug()
		if ww.Status() >= http.StatusInternalServerError {
			ev = logger.L().Warn()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
