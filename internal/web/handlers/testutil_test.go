package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/heritage-moments/album-studio/internal/config"
	"github.com/heritage-moments/album-studio/internal/database"
	"github.com/heritage-moments/album-studio/internal/database/mock"
	"github.com/heritage-moments/album-studio/internal/editor"
	"github.com/heritage-moments/album-studio/internal/web/middleware"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Web: config.WebConfig{
			Password: "family-password",
		},
	}
}

// testFamilySession is the login injected into handler test requests
func testFamilySession() *middleware.Session {
	return &middleware.Session{
		ID:        "login-session",
		FamilyID:  "fam1",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// requestWithSession creates a request with a login session in context
func requestWithSession(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	ctx := middleware.SetSessionInContext(req.Context(), testFamilySession())
	return req.WithContext(ctx)
}

// jsonBody marshals a value into a request body
func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	return bytes.NewReader(data)
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// seedTestAlbum creates an album owned by the test family
func seedTestAlbum(t *testing.T, repo *mock.MockAlbumStore) *database.AlbumMeta {
	t.Helper()
	now := time.Now()
	meta := &database.AlbumMeta{
		ID:        "album1",
		FamilyID:  "fam1",
		Title:     "Summer at the Lake",
		Category:  "vacation",
		Hashtags:  []string{"summer", "lake"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateAlbum(context.Background(), meta); err != nil {
		t.Fatalf("failed to seed album: %v", err)
	}
	return meta
}

// openTestEditorSession opens an editing session on the seeded album
func openTestEditorSession(t *testing.T, manager *editor.Manager, albumID string) *editor.Session {
	t.Helper()
	sess, err := manager.Open(context.Background(), albumID)
	if err != nil {
		t.Fatalf("failed to open editing session: %v", err)
	}
	if sess == nil {
		t.Fatal("editing session is nil")
	}
	return sess
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
