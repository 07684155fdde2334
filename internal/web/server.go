// Package web wires the HTTP API: router, middleware stack, and the
// handler set over the editing sessions and album repositories.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/heritage-moments/album-studio/internal/config"
	"github.com/heritage-moments/album-studio/internal/database"
	"github.com/heritage-moments/album-studio/internal/editor"
	"github.com/heritage-moments/album-studio/internal/storage"
	"github.com/heritage-moments/album-studio/internal/web/handlers"
	"github.com/heritage-moments/album-studio/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config         *config.Config
	router         *chi.Mux
	httpServer     *http.Server
	jobManager     *handlers.JobManager
	sessionManager *middleware.SessionManager
	editorManager  *editor.Manager

	albums    database.AlbumWriter
	library   database.MediaStore
	fileStore storage.Store
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, albums database.AlbumWriter, library database.MediaStore, fileStore storage.Store, sessionRepo middleware.SessionRepository) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:         cfg,
		router:         r,
		jobManager:     handlers.NewJobManager(),
		sessionManager: middleware.NewSessionManager(cfg.Web.SessionSecret, sessionRepo),
		editorManager:  editor.NewManager(albums),
		albums:         albums,
		library:        library,
		fileStore:      fileStore,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS(cfg.Web.AllowedOrigin))
	r.Use(middleware.SecurityHeaders())

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for SSE and uploads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	// Stop the background goroutines
	if s.sessionManager != nil {
		s.sessionManager.Stop()
	}
	if s.editorManager != nil {
		s.editorManager.Stop()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
