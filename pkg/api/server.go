// Package api serves families, folders, outlines and exports over HTTP.
//
// The server is a thin layer over [pipeline.Runner]: every request runs the
// same load → outline → render stages the CLI runs, scoped to the viewer
// named in the X-Kintree-Viewer header.
//
//	GET /healthz
//	GET /v1/families
//	GET /v1/families/{id}/folder
//	GET /v1/families/{id}/outline
//	GET /v1/families/{id}/export/{format}
//
// Errors are returned as {"code": ..., "message": ...} with the status
// derived from the error code.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kintree/pkg/pipeline"
)

// Header names.
const (
	HeaderViewer    = "X-Kintree-Viewer"
	HeaderRequestID = "X-Request-ID"
	HeaderCache     = "X-Kintree-Cache"
)

// DefaultShutdownTimeout bounds the graceful shutdown in ListenAndServe.
const DefaultShutdownTimeout = 10 * time.Second

// Server handles HTTP requests against a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   pipeline.Options // defaults applied to every outline request
}

// NewServer creates a server. defaults supplies the outline options used when
// a request does not override them (depth, label, locale, policy, seed).
func NewServer(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	defaults.FamilyID = ""
	defaults.Viewer = ""
	defaults.Formats = nil
	return &Server{runner: runner, logger: logger, opts: defaults}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health)

	r.Route("/v1/families", func(r chi.Router) {
		r.Get("/", s.listFamilies)
		r.Route("/{familyID}", func(r chi.Router) {
			r.Get("/folder", s.getFolder)
			r.Get("/outline", s.getOutline)
			r.Get("/export/{format}", s.export)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "no route for " + req.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Code: "METHOD_NOT_ALLOWED", Message: req.Method + " not allowed"})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
