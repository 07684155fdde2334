package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/heritage-moments/album-studio/internal/database"
	"github.com/heritage-moments/album-studio/internal/storage"
	"github.com/heritage-moments/album-studio/internal/web/middleware"
)

// MediaHandler handles the family media library endpoints
type MediaHandler struct {
	library database.MediaStore
	store   storage.Store
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(library database.MediaStore, store storage.Store) *MediaHandler {
	return &MediaHandler{library: library, store: store}
}

// MediaResponse represents a media library item in API responses
type MediaResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Kind      string `json:"kind"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
	CreatedAt string `json:"created_at"`
}

func mediaToResponse(m database.MediaItem) MediaResponse {
	return MediaResponse{
		ID:        m.ID,
		URL:       m.URL,
		Kind:      m.Kind,
		Width:     m.Width,
		Height:    m.Height,
		SizeBytes: m.SizeBytes,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// List returns the logged-in family's uploaded media
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.library.ListMedia(r.Context(), session.FamilyID)
	if err != nil {
		log.Printf("warning: failed to list media for %s: %v", sanitizeForLog(session.FamilyID), err)
		respondError(w, http.StatusInternalServerError, "failed to list media")
		return
	}

	response := make([]MediaResponse, len(items))
	for i, m := range items {
		response[i] = mediaToResponse(m)
	}
	respondJSON(w, http.StatusOK, response)
}

// Delete removes a media item from the library and the file store
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing media ID")
		return
	}

	item, err := h.library.GetMedia(r.Context(), id)
	if err != nil {
		log.Printf("warning: failed to get media %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to get media")
		return
	}
	if item == nil || item.FamilyID != session.FamilyID {
		respondError(w, http.StatusNotFound, "media not found")
		return
	}

	if err := h.library.DeleteMedia(r.Context(), id); err != nil {
		log.Printf("warning: failed to delete media %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to delete media")
		return
	}
	// The file is removed best-effort; the library row is the source of truth.
	if err := h.store.Delete(r.Context(), item.URL); err != nil {
		log.Printf("warning: failed to delete stored file %s: %v", sanitizeForLog(item.URL), err)
	}

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
