// Package server provides the HTTP edge API for Glassroot.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/glassroot/glassroot/internal/config"
	"github.com/glassroot/glassroot/internal/models"
)

// DocumentService is the document and search backend used by the handlers.
type DocumentService interface {
	Create(ctx context.Context, input models.DocumentInput) (*models.CreatedDocument, error)
	List(ctx context.Context) (*models.DocumentList, error)
	Get(ctx context.Context, id string) (*models.Document, error)
	Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error)
	Bindings() models.Bindings
}

// Server is the HTTP server for the Glassroot API.
type Server struct {
	docs   DocumentService
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server
	now    func() time.Time
}

// NewServer creates a server with the given dependencies.
func NewServer(docs DocumentService, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		docs:   docs,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Handler builds the router with all middleware and routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.correlationID)
	r.Use(s.cors)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(middleware.Compress(5, "application/json"))
	if timeout := s.config.RequestTimeout(); timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/documents", s.handleCreateDocument)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Get("/search", s.handleSearch)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
