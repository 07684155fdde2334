package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/heritage-moments/album-studio/internal/layout"
)

// LayoutsHandler serves the embedded layout template catalog
type LayoutsHandler struct{}

// NewLayoutsHandler creates a new layouts handler
func NewLayoutsHandler() *LayoutsHandler {
	return &LayoutsHandler{}
}

// List returns the full catalog, optionally filtered by category
func (h *LayoutsHandler) List(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		respondJSON(w, http.StatusOK, layout.ByCategory(category))
		return
	}
	respondJSON(w, http.StatusOK, layout.Catalog())
}

// Get returns one template by name
func (h *LayoutsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "missing layout name")
		return
	}
	tpl, ok := layout.Get(name)
	if !ok {
		respondError(w, http.StatusNotFound, "layout not found")
		return
	}
	respondJSON(w, http.StatusOK, tpl)
}
