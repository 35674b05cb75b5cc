// Package fakeapi is a stand-in for the remote execution service.
//
// It serves the same two endpoints as the real collaborator, with a fixed
// catalog and a pluggable Responder, so the client can be developed and
// tested without the real service. cmd/fakeapi runs it as a standalone
// process; tests mount its Handler on an httptest.Server.
//
// ROUTE STRUCTURE:
// GET    /api/algorithms     → catalog (JSON)
// POST   /api/run-algorithm  → run one payload (JSON)
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID — reuses the client's X-Request-ID or assigns one
// 2. Recoverer — catches panics and returns 500 instead of crashing
// 3. Logger — logs each request with timing info
// 4. RequireBearer — only when a JWT secret is configured
package fakeapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/algotest/internal/auth"
	"github.com/sakif/algotest/internal/middleware"
	"github.com/sakif/algotest/internal/model"
)

// DefaultCatalog mirrors the execution service's built-in algorithms.
// Binary Search deliberately carries no inputShape tag: real deployments
// don't send one, and the client must fall back to its legacy id table.
// The server resolves shapes through the same table before answering runs.
func DefaultCatalog() []model.Algorithm {
	return []model.Algorithm{
		{ID: 1, Name: "Bubble Sort", Category: "Sorting", Difficulty: "Easy",
			Description: "Repeatedly swaps adjacent elements that are out of order."},
		{ID: 2, Name: "Quick Sort", Category: "Sorting", Difficulty: "Medium",
			Description: "Partitions around a pivot and sorts each side recursively."},
		{ID: 3, Name: "Binary Search", Category: "Search", Difficulty: "Easy",
			Description: "Finds a target in a sorted array by halving the search range."},
		{ID: 4, Name: "Merge Sort", Category: "Sorting", Difficulty: "Medium",
			Description: "Splits the array in half, sorts each half and merges them."},
	}
}

// Config holds server configuration.
type Config struct {
	Port      int
	// JWTSecret, when set, requires a valid bearer token on every API route.
	JWTSecret string
	Catalog   []model.Algorithm
	Responder Responder
}

// Server is the stand-in execution service.
type Server struct {
	router    *chi.Mux
	config    Config
	logger    *slog.Logger
	catalog   []model.Algorithm
	// resolved is the catalog with every InputShape filled in, keyed by id.
	// Responders see these; the wire catalog stays as configured.
	resolved  map[int]model.Algorithm
	responder Responder

	mu       sync.Mutex
	received []RunRequest
}

// New creates a Server with routes wired.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	responder := cfg.Responder
	if responder == nil {
		responder = DefaultResponder
	}

	legacy := model.LegacyShapes()
	resolved := make(map[int]model.Algorithm, len(catalog))
	for _, a := range catalog {
		resolved[a.ID] = a.Resolved(legacy)
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		catalog:   catalog,
		resolved:  resolved,
		responder: responder,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	var tokens *auth.TokenService
	if s.config.JWTSecret != "" {
		var err error
		tokens, err = auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
	}

	s.router.Route("/api", func(r chi.Router) {
		if tokens != nil {
			r.Use(auth.RequireBearer(tokens))
		}
		r.Get("/algorithms", s.handleAlgorithms)
		r.Post("/run-algorithm", s.handleRun)
	})

	return nil
}

// Handler exposes the router, for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Received returns the run requests seen so far, oldest first.
func (s *Server) Received() []RunRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RunRequest(nil), s.received...)
}

func (s *Server) record(req RunRequest) {
	s.mu.Lock()
	s.received = append(s.received, req)
	s.mu.Unlock()
}

func (s *Server) lookup(id int) (model.Algorithm, bool) {
	a, ok := s.resolved[id]
	return a, ok
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully, giving in-flight requests 10 seconds to finish.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("stand-in execution service starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.Int("algorithms", len(s.catalog)),
			slog.Bool("auth", s.config.JWTSecret != ""),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
