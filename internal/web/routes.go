package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/heritage-moments/album-studio/internal/storage"
	"github.com/heritage-moments/album-studio/internal/web/handlers"
	"github.com/heritage-moments/album-studio/internal/web/middleware"
	"github.com/heritage-moments/album-studio/internal/web/static"
)

func (s *Server) setupRoutes() {
	// Create handlers
	authHandler := handlers.NewAuthHandler(s.config, s.sessionManager)
	albumsHandler := handlers.NewAlbumsHandler(s.albums)
	editorHandler := handlers.NewEditorHandler(s.editorManager)
	uploadHandler := handlers.NewUploadHandler(editorHandler, s.jobManager, s.fileStore, s.library)
	layoutsHandler := handlers.NewLayoutsHandler()
	mediaHandler := handlers.NewMediaHandler(s.library, s.fileStore)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth routes
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/status", authHandler.Status)

		// Layout catalog is static data; no auth required
		r.Get("/layouts", layoutsHandler.List)
		r.Get("/layouts/{name}", layoutsHandler.Get)

		// All other routes require authentication
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.sessionManager))

			// Albums
			r.Get("/albums", albumsHandler.List)
			r.Post("/albums", albumsHandler.Create)
			r.Get("/albums/{id}", albumsHandler.Get)
			r.Put("/albums/{id}", albumsHandler.Update)
			r.Delete("/albums/{id}", albumsHandler.Delete)

			// Editing sessions
			r.Post("/editor/sessions", editorHandler.Open)
			r.Get("/editor/sessions/{sessionId}", editorHandler.State)
			r.Post("/editor/sessions/{sessionId}/commands", editorHandler.Command)
			r.Post("/editor/sessions/{sessionId}/undo", editorHandler.Undo)
			r.Post("/editor/sessions/{sessionId}/redo", editorHandler.Redo)
			r.Post("/editor/sessions/{sessionId}/save", editorHandler.Save)
			r.Delete("/editor/sessions/{sessionId}", editorHandler.Close)
			r.Post("/editor/sessions/{sessionId}/snap", editorHandler.Snap)
			r.Get("/editor/sessions/{sessionId}/spread", editorHandler.Spread)

			// Uploads (long-running operations)
			r.Post("/editor/sessions/{sessionId}/uploads", uploadHandler.Upload)
			r.Get("/uploads/{jobId}", uploadHandler.Status)
			r.Get("/uploads/{jobId}/events", uploadHandler.Events)
			r.Delete("/uploads/{jobId}", uploadHandler.Cancel)

			// Media library
			r.Get("/media", mediaHandler.List)
			r.Delete("/media/{id}", mediaHandler.Delete)
		})
	})

	// Serve uploaded media files when the store is a local directory
	if local, ok := s.fileStore.(*storage.Local); ok {
		prefix := strings.TrimSuffix(s.config.Media.BaseURL, "/")
		fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(local.Root())))
		s.router.Get(prefix+"/*", fileServer.ServeHTTP)
	}

	// Serve static files for frontend (SPA)
	s.router.Get("/*", s.serveSPA)
}

// serveSPA serves the single-page application
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	if !static.HasDist() {
		http.NotFound(w, r)
		return
	}

	fs := static.GetFileSystem()
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	f, err := fs.Open(path)
	if err == nil {
		defer f.Close()

		stat, err := f.Stat()
		if err == nil && !stat.IsDir() {
			// Set content type based on extension
			contentType := "application/octet-stream"
			switch {
			case strings.HasSuffix(path, ".html"):
				contentType = "text/html; charset=utf-8"
			case strings.HasSuffix(path, ".css"):
				contentType = "text/css; charset=utf-8"
			case strings.HasSuffix(path, ".js"):
				contentType = "application/javascript; charset=utf-8"
			case strings.HasSuffix(path, ".json"):
				contentType = "application/json"
			case strings.HasSuffix(path, ".svg"):
				contentType = "image/svg+xml"
			case strings.HasSuffix(path, ".png"):
				contentType = "image/png"
			case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
				contentType = "image/jpeg"
			case strings.HasSuffix(path, ".ico"):
				contentType = "image/x-icon"
			case strings.HasSuffix(path, ".woff2"):
				contentType = "font/woff2"
			case strings.HasSuffix(path, ".woff"):
				contentType = "font/woff"
			}

			w.Header().Set("Content-Type", contentType)

			// Add cache headers for static assets
			if strings.HasPrefix(path, "/assets/") {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			}

			w.WriteHeader(http.StatusOK)
			io.Copy(w, f)
			return
		}
	}

	// For SPA routing, serve index.html for non-asset paths
	if !strings.HasPrefix(path, "/assets/") {
		indexFile, err := fs.Open("/index.html")
		if err == nil {
			defer indexFile.Close()
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			io.Copy(w, indexFile)
			return
		}
	}

	http.NotFound(w, r)
}
