package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/heritage-moments/album-studio/internal/album"
	"github.com/heritage-moments/album-studio/internal/editor"
	"github.com/heritage-moments/album-studio/internal/snap"
	"github.com/heritage-moments/album-studio/internal/web/middleware"
)

// EditorHandler handles editing session endpoints. All aggregate access goes
// through Session.With, so every command is one serialized state transition.
type EditorHandler struct {
	manager *editor.Manager
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(manager *editor.Manager) *EditorHandler {
	return &EditorHandler{manager: manager}
}

// StateResponse is the full editing state sent after every command
type StateResponse struct {
	SessionID   string       `json:"session_id"`
	Album       *album.Album `json:"album"`
	CurrentPage int          `json:"current_page"`
	Selected    string       `json:"selected_asset,omitempty"`
	CanUndo     bool         `json:"can_undo"`
	CanRedo     bool         `json:"can_redo"`
}

func stateResponse(sess *editor.Session) StateResponse {
	var resp StateResponse
	sess.With(func(s *editor.Store) {
		snapshot := s.Album().Clone()
		resp = StateResponse{
			SessionID:   sess.ID,
			Album:       &snapshot,
			CurrentPage: s.CurrentPage(),
			Selected:    s.SelectedAsset(),
			CanUndo:     s.CanUndo(),
			CanRedo:     s.CanRedo(),
		}
	})
	return resp
}

// getOwnedSession resolves the editing session and checks the login owns the
// album it edits. Writes an error response and returns nil on failure.
func (h *EditorHandler) getOwnedSession(w http.ResponseWriter, r *http.Request) *editor.Session {
	login := middleware.GetSessionFromContext(r.Context())
	if login == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}

	id := chi.URLParam(r, "sessionId")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing session ID")
		return nil
	}

	sess := h.manager.Get(id)
	if sess == nil {
		respondError(w, http.StatusNotFound, "editing session not found")
		return nil
	}

	owned := false
	sess.With(func(s *editor.Store) {
		owned = s.Album().FamilyID == login.FamilyID
	})
	if !owned {
		respondError(w, http.StatusNotFound, "editing session not found")
		return nil
	}
	return sess
}

// Open loads an album into a new editing session
func (h *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetSessionFromContext(r.Context())
	if login == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		AlbumID string `json:"album_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.AlbumID == "" {
		respondError(w, http.StatusBadRequest, "album_id is required")
		return
	}

	sess, err := h.manager.Open(r.Context(), req.AlbumID)
	if err != nil {
		log.Printf("warning: failed to open editing session for album %s: %v", sanitizeForLog(req.AlbumID), err)
		respondError(w, http.StatusInternalServerError, "failed to open editing session")
		return
	}
	if sess == nil {
		respondError(w, http.StatusNotFound, "album not found")
		return
	}

	owned := false
	sess.With(func(s *editor.Store) {
		owned = s.Album().FamilyID == login.FamilyID
	})
	if !owned {
		h.manager.Close(sess.ID)
		respondError(w, http.StatusNotFound, "album not found")
		return
	}

	respondJSON(w, http.StatusCreated, stateResponse(sess))
}

// State returns the current editing state
func (h *EditorHandler) State(w http.ResponseWriter, r *http.Request) {
	sess := h.getOwnedSession(w, r)
	if sess == nil {
		return
	}
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// commandRequest is one editing command. Op selects the mutation; the other
// fields carry its parameters and are ignored by ops that do not use them.
type commandRequest struct {
	Op string `json:"op"`

	PageIndex int          `json:"page_index"`
	FromIndex int          `json:"from_index"`
	ToIndex   int          `json:"to_index"`
	Delta     int          `json:"delta"`
	AssetID   string       `json:"asset_id"`
	Asset     *album.Asset `json:"asset"`
	Direction string       `json:"direction"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Layout    string       `json:"layout"`

	Config     *album.Config     `json:"config"`
	Background *album.Background `json:"background"`

	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Hashtags    []string `json:"hashtags"`
}

// Command applies one editing command and returns the resulting state. A
// command that changes nothing (locked album, bad target, out-of-range index)
// still returns 200 with changed=false, so clients can treat rejections as
// state refreshes.
func (h *EditorHandler) Command(w http.ResponseWriter, r *http.Request) {
	sess := h.getOwnedSession(w, r)
	if sess == nil {
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	changed, known := false, true
	sess.With(func(s *editor.Store) {
		switch req.Op {
		case "addPage":
			changed = s.AddPage()
		case "removePage":
			changed = s.RemovePage(req.PageIndex)
		case "movePage":
			changed = s.MovePage(req.PageIndex, req.Delta)
		case "reorderPages":
			changed = s.ReorderPages(req.FromIndex, req.ToIndex)
		case "addAsset":
			if req.Asset != nil {
				changed = s.AddAsset(req.PageIndex, *req.Asset)
			}
		case "updateAsset":
			if req.Asset != nil {
				changed = s.UpdateAsset(*req.Asset)
			}
		case "removeAsset":
			changed = s.RemoveAsset(req.AssetID)
		case "duplicateAsset":
			changed = s.DuplicateAsset(req.AssetID)
		case "updateAssetZIndex":
			changed = s.UpdateAssetZIndex(req.AssetID, req.Direction)
		case "moveAssetToPage":
			changed = s.MoveAssetToPage(req.AssetID, req.ToIndex, req.X, req.Y)
		case "applyLayout":
			changed = s.ApplyLayout(req.Layout, req.PageIndex)
		case "updateConfig":
			if req.Config != nil {
				changed = s.UpdateConfig(*req.Config)
			}
		case "toggleLock":
			changed = s.ToggleLock()
		case "setBackground":
			if req.Background != nil {
				changed = s.SetBackground(req.PageIndex, *req.Background)
			}
		case "updateMeta":
			changed = s.UpdateMeta(req.Title, req.Description, req.Category, req.Hashtags)
		case "selectAsset":
			s.SelectAsset(req.AssetID)
		case "setCurrentPage":
			s.SetCurrentPage(req.PageIndex)
		default:
			known = false
		}
	})
	if !known {
		respondError(w, http.StatusBadRequest, "unknown command: "+sanitizeForLog(req.Op))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"changed": changed,
		"state":   stateResponse(sess),
	})
}

// Undo reverts the last edit
func (h *EditorHandler) Undo(w http.ResponseWriter, r *http.Request) {
	sess := h.getOwnedSession(w, r)
	if sess == nil {
		return
	}
	changed := false
	sess.With(func(s *editor.Store) { changed = s.Undo() })
	respondJSON(w, http.StatusOK, map[string]any{
		"changed": changed,
		"state":   stateResponse(sess),
	})
}

// Redo re-applies the last undone edit
func (h *EditorHandler) Redo(w http.ResponseWriter, r *http.Request) {
	sess := h.getOwnedSession(w, r)
	if sess == nil {
		return
	}
	changed := false
	sess.With(func(s *editor.Store) { changed = s.Redo() })
	respondJSON(w, http.StatusOK, map[string]any{
		"changed": changed,
		"state":   stateResponse(sess),
	})
}

// Save persists the session's album
func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	sess := h.getOwnedSession(w, r)
	if sess == nil {
		return
	}
	if err := h.manager.Save(r.Context(), sess); err != nil {
		log.Printf("warning: failed to save album %s: %v", sanitizeForLog(sess.AlbumID), err)
		respondError(w, http.StatusInternalServerError, "failed to save album")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

// Close discards the editing session without saving
func (h *EditorHandler) Close(w http.ResponseWriter, r *http.Request) {
	sess := h.getOwnedSession(w, r)
	if sess == nil {
		return
	}
	h.manager.Close(sess.ID)
	respondJSON(w, http.StatusOK, map[string]bool{"closed": true})
}

// snapRequest carries the dragged rectangle for a snap preview
type snapRequest struct {
	PageIndex int       `json:"page_index"`
	AssetID   string    `json:"asset_id"`
	Rect      snap.Rect `json:"rect"`
}

// Snap computes snap positions and guides for a drag in flight
func (h *EditorHandler) Snap(w http.ResponseWriter, r *http.Request) {
	sess := h.getOwnedSession(w, r)
	if sess == nil {
		return
	}

	var req snapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	var res snap.Result
	sess.With(func(s *editor.Store) {
		res = s.SnapPreview(req.PageIndex, req.Rect, req.AssetID)
	})
	respondJSON(w, http.StatusOK, res)
}

// SpreadResponse describes the page pair rendered together
type SpreadResponse struct {
	Left  int     `json:"left"`
	Right int     `json:"right"`
	Solo  bool    `json:"solo"`
	Span  float64 `json:"span"`
}

// Spread resolves which pages display together at the focused index
func (h *EditorHandler) Spread(w http.ResponseWriter, r *http.Request) {
	sess := h.getOwnedSession(w, r)
	if sess == nil {
		return
	}

	pageIdx := queryInt(r, "page", 0)
	var sp album.Spread
	sess.With(func(s *editor.Store) {
		sp = s.Spread(pageIdx)
	})
	respondJSON(w, http.StatusOK, SpreadResponse{
		Left:  sp.Left,
		Right: sp.Right,
		Solo:  sp.IsSolo(),
		Span:  sp.Span(),
	})
}
