package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/heritage-moments/album-studio/internal/database"
	"github.com/heritage-moments/album-studio/internal/web/middleware"
)

// AlbumsHandler handles album metadata endpoints
type AlbumsHandler struct {
	repo database.AlbumWriter
}

// NewAlbumsHandler creates a new albums handler
func NewAlbumsHandler(repo database.AlbumWriter) *AlbumsHandler {
	return &AlbumsHandler{repo: repo}
}

// AlbumResponse represents an album in API responses
type AlbumResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Hashtags    []string `json:"hashtags"`
	CoverURL    string   `json:"cover_url"`
	Location    string   `json:"location"`
	Country     string   `json:"country"`
	Geotag      string   `json:"geotag"`
	Published   bool     `json:"published"`
	PageCount   int      `json:"page_count,omitempty"`
	AssetCount  int      `json:"asset_count,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func metaToResponse(m database.AlbumMeta) AlbumResponse {
	hashtags := m.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}
	return AlbumResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		Hashtags:    hashtags,
		CoverURL:    m.CoverURL,
		Location:    m.Location,
		Country:     m.Country,
		Geotag:      m.Geotag,
		Published:   m.Published,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
	}
}

// List returns all albums of the logged-in family
func (h *AlbumsHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	albums, err := h.repo.ListAlbums(r.Context(), session.FamilyID)
	if err != nil {
		log.Printf("warning: failed to list albums for %s: %v", sanitizeForLog(session.FamilyID), err)
		respondError(w, http.StatusInternalServerError, "failed to list albums")
		return
	}

	response := make([]AlbumResponse, len(albums))
	for i, a := range albums {
		response[i] = metaToResponse(a.AlbumMeta)
		response[i].PageCount = a.PageCount
		response[i].AssetCount = a.AssetCount
	}

	respondJSON(w, http.StatusOK, response)
}

// albumRequest represents a create or update album request
type albumRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Hashtags    []string `json:"hashtags"`
	CoverURL    string   `json:"cover_url"`
	Location    string   `json:"location"`
	Country     string   `json:"country"`
	Geotag      string   `json:"geotag"`
	Published   bool     `json:"published"`
}

// Create creates a new album with the default page skeleton
func (h *AlbumsHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	now := time.Now()
	meta := &database.AlbumMeta{
		ID:          uuid.New().String(),
		FamilyID:    session.FamilyID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Hashtags:    req.Hashtags,
		CoverURL:    req.CoverURL,
		Location:    req.Location,
		Country:     req.Country,
		Geotag:      req.Geotag,
		Published:   req.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.repo.CreateAlbum(r.Context(), meta); err != nil {
		log.Printf("warning: failed to create album: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create album")
		return
	}

	respondJSON(w, http.StatusCreated, metaToResponse(*meta))
}

// getOwnedAlbum loads an album's metadata and checks the session family owns
// it. Writes an error response and returns nil when it does not.
func (h *AlbumsHandler) getOwnedAlbum(w http.ResponseWriter, r *http.Request) *database.AlbumMeta {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing album ID")
		return nil
	}

	meta, err := h.repo.GetAlbumMeta(r.Context(), id)
	if err != nil {
		log.Printf("warning: failed to get album %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to get album")
		return nil
	}
	if meta == nil || meta.FamilyID != session.FamilyID {
		respondError(w, http.StatusNotFound, "album not found")
		return nil
	}
	return meta
}

// Get returns a single album
func (h *AlbumsHandler) Get(w http.ResponseWriter, r *http.Request) {
	meta := h.getOwnedAlbum(w, r)
	if meta == nil {
		return
	}
	respondJSON(w, http.StatusOK, metaToResponse(*meta))
}

// Update edits album metadata
func (h *AlbumsHandler) Update(w http.ResponseWriter, r *http.Request) {
	meta := h.getOwnedAlbum(w, r)
	if meta == nil {
		return
	}

	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	meta.Title = req.Title
	meta.Description = req.Description
	meta.Category = req.Category
	meta.Hashtags = req.Hashtags
	meta.CoverURL = req.CoverURL
	meta.Location = req.Location
	meta.Country = req.Country
	meta.Geotag = req.Geotag
	meta.Published = req.Published
	meta.UpdatedAt = time.Now()

	if err := h.repo.UpdateAlbumMeta(r.Context(), meta); err != nil {
		log.Printf("warning: failed to update album %s: %v", sanitizeForLog(meta.ID), err)
		respondError(w, http.StatusInternalServerError, "failed to update album")
		return
	}

	respondJSON(w, http.StatusOK, metaToResponse(*meta))
}

// Delete removes an album and all its pages
func (h *AlbumsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	meta := h.getOwnedAlbum(w, r)
	if meta == nil {
		return
	}

	if err := h.repo.DeleteAlbum(r.Context(), meta.ID); err != nil {
		log.Printf("warning: failed to delete album %s: %v", sanitizeForLog(meta.ID), err)
		respondError(w, http.StatusInternalServerError, "failed to delete album")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
