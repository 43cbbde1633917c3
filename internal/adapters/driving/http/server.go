package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ragline-labs/ragline-core/internal/core/ports/driven"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService     driving.AuthService
	documentService driving.DocumentService
	qaService       driving.QAService

	// Infrastructure
	taskQueue driven.TaskQueue
	db        Pinger // PostgreSQL health check
	queue     Pinger // queue backend health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	documentService driving.DocumentService,
	qaService driving.QAService,
	taskQueue driven.TaskQueue,
	db Pinger,
	queue Pinger, // can be nil
) *Server {
	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		authService:     authService,
		documentService: documentService,
		qaService:       qaService,
		taskQueue:       taskQueue,
		db:              db,
		queue:           queue,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // streaming responses outlive the read deadline
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoint (public)
	s.router.HandleFunc("POST /api/v1/auth/token", s.handleIssueToken)

	// Document endpoints (authenticated)
	s.router.Handle("POST /api/v1/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleCreateDocument)))
	s.router.Handle("GET /api/v1/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListDocuments)))
	s.router.Handle("GET /api/v1/documents/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetDocument)))
	s.router.Handle("GET /api/v1/documents/{id}/chunks",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetDocumentChunks)))
	s.router.Handle("DELETE /api/v1/documents/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeleteDocument)))

	// QA endpoints (authenticated)
	s.router.Handle("POST /api/v1/qa/ask",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleAsk)))
	s.router.Handle("GET /api/v1/qa/history",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleHistory)))

	// Queue stats (authenticated)
	s.router.Handle("GET /api/v1/tasks/stats",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleTaskStats)))
}

// Start starts the HTTP server; it blocks until the listener fails
func (s *Server) Start() error {
	log.Printf("Starting server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
