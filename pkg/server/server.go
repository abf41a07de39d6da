// Package server exposes the diagram pipeline over HTTP.
//
// # Routes
//
//	GET /healthz                                   liveness probe
//	GET /v1/diagrams?table=&width=&reduce=&format= build one diagram
//	GET /v1/combine?a=&b=&width=&op=&format=       combine two tables
//	GET /v1/experiments?vars=&samples=&seed=       size histogram
//	GET /metrics                                   Prometheus metrics
//
// Tables are integers in any notation accepted by [bitvec.Parse], at most
// [MaxDiagramWidth] entries wide. With
// format=json (the default) responses are JSON envelopes; the other formats
// return the raw artifact.
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with a
// status derived from the error code: 400 for malformed requests, 422 for
// well-formed requests the pipeline cannot satisfy, 500 otherwise.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/robdd/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when Config.Addr is empty.
	DefaultAddr = ":8080"

	// ShutdownTimeout bounds how long in-flight requests may run after the
	// server is asked to stop.
	ShutdownTimeout = 10 * time.Second

	// MaxExperimentSamples caps the sample count accepted over HTTP.
	MaxExperimentSamples = 100_000

	// MaxDiagramWidth caps the truth table width accepted by /v1/diagrams
	// and /v1/combine.
	MaxDiagramWidth = 1 << 16
)

// Config configures a Server.
type Config struct {
	Addr   string
	Logger *log.Logger

	// Gatherer, if set, is served on /metrics.
	Gatherer prometheus.Gatherer
}

// Server serves the pipeline of a Runner.
type Server struct {
	runner *pipeline.Runner
	cfg    Config
	router chi.Router
}

// New creates a server for runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = runner.Logger
	}
	s := &Server{runner: runner, cfg: cfg}
	s.router = s.routes()
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/diagrams", s.handleDiagram)
		r.Get("/combine", s.handleCombine)
		r.Get("/experiments", s.handleExperiment)
	})
	if s.cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{Code: "NOT_FOUND", Message: "no such route"}})
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.cfg.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
