// Package server exposes the aggregation service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/pokedex-bff/pokedex/pkg/config"
	"github.com/pokedex-bff/pokedex/pkg/logging"
	"github.com/pokedex-bff/pokedex/pkg/models"
	"github.com/pokedex-bff/pokedex/pkg/pokemon"
)

// Pokedex is the service the HTTP handlers delegate to.
type Pokedex interface {
	List(ctx context.Context, params pokemon.ListParams) (models.ListResponse, error)
	Get(ctx context.Context, name string) (models.Pokemon, error)
	Evolution(ctx context.Context, name string) (models.EvolutionNode, error)
}

// Server is the pokedex HTTP API.
type Server struct {
	cfg     *config.Config
	pokedex Pokedex
	logger  *zap.Logger
	handler http.Handler
}

// New creates a Server wired with all routes and middleware.
func New(cfg *config.Config, p Pokedex, logger *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		pokedex: p,
		logger:  logging.OrNop(logger).Named("http"),
	}

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(requestIDMiddleware)
	r.Use(s.accessLogMiddleware)
	r.Use(s.recoverMiddleware)

	r.Get("/healthz", s.handleHealthz)
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Route("/api/pokemon", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/{name}", s.handleGet)
		r.Get("/{name}/evolution", s.handleEvolution)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	}).Handler(r)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("pokedex api listening", zap.String("addr", s.cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"type":"pokedex_error","code":%d}}`, message, code)
}
