// Package server exposes the archview pipeline over HTTP.
//
// Routes:
//
//	POST   /v1/graph                        build a graph from the request body
//	POST   /v1/documents                    upload a document, returns {"id": ...}
//	GET    /v1/documents/{id}               document metadata
//	DELETE /v1/documents/{id}               drop a document
//	GET    /v1/documents/{id}/graph         positioned graph
//	GET    /v1/documents/{id}/decisions     decision points
//	POST   /v1/documents/{id}/visibility    visible ids for a selection
//	GET    /v1/documents/{id}/render        svg, dot or json rendering
//	GET    /healthz
//	GET    /metrics                         Prometheus, when enabled
//
// Pattern documents are detected automatically; ?pattern=true forces
// pattern extraction.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/archview/pkg/layout"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// maxBodySize bounds uploaded documents.
const maxBodySize = 10 << 20

// Option configures optional Server behavior.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics serves the registry's metrics on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = g
	}
}

// WithLayout sets the layout configuration used for every graph.
func WithLayout(cfg layout.Config) Option {
	return func(s *Server) {
		s.layout = cfg
	}
}

// WithMaxDocuments caps the in-memory document store.
func WithMaxDocuments(n int) Option {
	return func(s *Server) {
		s.store = NewStore(n)
	}
}

// Server holds the chi router, the pipeline runner and the document store.
type Server struct {
	router  chi.Router
	runner  *pipeline.Runner
	store   *Store
	logger  *log.Logger
	metrics prometheus.Gatherer
	layout  layout.Config
}

// New creates a Server with all routes configured.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		store:  NewStore(1000),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		layout: layout.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/graph", s.handleGraph)
		r.Post("/documents", s.handleCreateDocument)
		r.Route("/documents/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Delete("/", s.handleDeleteDocument)
			r.Get("/graph", s.handleDocumentGraph)
			r.Get("/decisions", s.handleDecisions)
			r.Post("/visibility", s.handleVisibility)
			r.Get("/render", s.handleRender)
		})
	})

	s.router = r
	return s
}

// Store returns the document store.
func (s *Server) Store() *Store { return s.store }

// ServeHTTP implements http.Handler, delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
