package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newTestSessionManager(t *testing.T, repo SessionRepository) *SessionManager {
	t.Helper()
	sm := NewSessionManager("test-secret", repo)
	t.Cleanup(sm.Stop)
	return sm
}

// memorySessionRepo is an in-memory SessionRepository for tests.
type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]StoredSession
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]StoredSession)}
}

func (r *memorySessionRepo) Save(_ context.Context, s StoredSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *memorySessionRepo) Get(_ context.Context, id string) (*StoredSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	return &s, nil
}

func (r *memorySessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memorySessionRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, id)
		}
	}
	return nil
}

func TestNewSessionManager(t *testing.T) {
	sm := newTestSessionManager(t, nil)
	if sm == nil {
		t.Fatal("NewSessionManager returned nil")
		return
	}
	if sm.sessions == nil {
		t.Error("sessions map is nil")
	}
}

func TestSessionManager_CreateSession(t *testing.T) {
	sm := newTestSessionManager(t, nil)

	session, err := sm.CreateSession("fam1")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if session.ID == "" {
		t.Error("session ID is empty")
	}
	if session.FamilyID != "fam1" {
		t.Errorf("FamilyID = %s, want fam1", session.FamilyID)
	}
	if session.ExpiresAt.Before(time.Now()) {
		t.Error("session expires in the past")
	}
}

func TestSessionManager_GetSession(t *testing.T) {
	sm := newTestSessionManager(t, nil)

	session, _ := sm.CreateSession("fam1")

	// Get existing session.
	retrieved := sm.GetSession(session.ID)
	if retrieved == nil {
		t.Fatal("GetSession() returned nil for existing session")
		return
	}
	if retrieved.FamilyID != "fam1" {
		t.Errorf("FamilyID = %s, want fam1", retrieved.FamilyID)
	}

	// Get non-existing session.
	notFound := sm.GetSession("nonexistent-id")
	if notFound != nil {
		t.Error("GetSession() should return nil for non-existing session")
	}
}

func TestSessionManager_DeleteSession(t *testing.T) {
	sm := newTestSessionManager(t, nil)

	session, _ := sm.CreateSession("fam1")

	// Delete the session.
	sm.DeleteSession(session.ID)

	// Verify it's gone.
	retrieved := sm.GetSession(session.ID)
	if retrieved != nil {
		t.Error("GetSession() should return nil after deletion")
	}
}

func TestSessionManager_PersistentSessions(t *testing.T) {
	repo := newMemorySessionRepo()

	sm := newTestSessionManager(t, repo)
	session, _ := sm.CreateSession("fam1")

	// A fresh manager with the same repo should recover the session,
	// simulating a server restart.
	restarted := newTestSessionManager(t, repo)
	restored := restarted.GetSession(session.ID)
	if restored == nil {
		t.Fatal("session not restored from repository")
		return
	}
	if restored.FamilyID != "fam1" {
		t.Errorf("FamilyID = %s, want fam1", restored.FamilyID)
	}

	// Deleting removes it from the repository, too.
	restarted.DeleteSession(session.ID)
	stored, _ := repo.Get(context.Background(), session.ID)
	if stored != nil {
		t.Error("session still in repository after deletion")
	}
}

func TestSessionManager_SetAndGetSessionCookie(t *testing.T) {
	sm := newTestSessionManager(t, nil)
	session, _ := sm.CreateSession("fam1")

	// Create a test response to capture the cookie.
	w := httptest.NewRecorder()
	sm.SetSessionCookie(w, session)

	// Get the cookie from the response.
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("No cookies set")
	}

	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			sessionCookie = c
			break
		}
	}
	if sessionCookie == nil {
		t.Fatal("Session cookie not found")
		return
	}

	// Create a request with the cookie.
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(sessionCookie)

	// Verify the session can be retrieved from the request.
	retrieved := sm.GetSessionFromRequest(req)
	if retrieved == nil {
		t.Fatal("GetSessionFromRequest() returned nil")
		return
	}
	if retrieved.ID != session.ID {
		t.Errorf("Session ID = %s, want %s", retrieved.ID, session.ID)
	}
}

func TestSessionManager_InvalidCookie(t *testing.T) {
	sm := newTestSessionManager(t, nil)

	// Request with invalid cookie signature.
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  sessionCookieName,
		Value: "invalid-session.invalid-signature",
	})

	session := sm.GetSessionFromRequest(req)
	if session != nil {
		t.Error("GetSessionFromRequest() should return nil for invalid signature")
	}
}

func TestSessionManager_BearerAuth(t *testing.T) {
	sm := newTestSessionManager(t, nil)
	session, _ := sm.CreateSession("fam1")

	// Request with Bearer token.
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)

	retrieved := sm.GetSessionFromRequest(req)
	if retrieved == nil {
		t.Fatal("GetSessionFromRequest() returned nil for Bearer auth")
		return
	}
	if retrieved.ID != session.ID {
		t.Errorf("Session ID = %s, want %s", retrieved.ID, session.ID)
	}
}

func TestRequireAuth(t *testing.T) {
	sm := newTestSessionManager(t, nil)
	session, _ := sm.CreateSession("fam1")

	handlerCalled := false
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		// Verify session is in context.
		s := GetSessionFromContext(r.Context())
		if s == nil {
			t.Error("Session not found in context")
		}
		w.WriteHeader(http.StatusOK)
	})

	middleware := RequireAuth(sm)
	protectedHandler := middleware(testHandler)

	// Test with valid session.
	t.Run("valid session", func(t *testing.T) {
		handlerCalled = false
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+session.ID)

		protectedHandler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if !handlerCalled {
			t.Error("Handler was not called")
		}
	})

	// Test without session.
	t.Run("no session", func(t *testing.T) {
		handlerCalled = false
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)

		protectedHandler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
		if handlerCalled {
			t.Error("Handler should not be called for unauthorized request")
		}
	})
}

func TestGetSessionFromContext(t *testing.T) {
	// Test with session in context.
	session := &Session{ID: "test123", FamilyID: "fam1"}
	ctx := context.WithValue(context.Background(), sessionContextKey, session)

	retrieved := GetSessionFromContext(ctx)
	if retrieved == nil {
		t.Fatal("GetSessionFromContext() returned nil")
		return
	}
	if retrieved.ID != "test123" {
		t.Errorf("Session ID = %s, want test123", retrieved.ID)
	}

	// Test without session in context.
	emptyCtx := context.Background()
	notFound := GetSessionFromContext(emptyCtx)
	if notFound != nil {
		t.Error("GetSessionFromContext() should return nil for empty context")
	}
}

func TestSessionManager_ClearSessionCookie(t *testing.T) {
	sm := newTestSessionManager(t, nil)

	w := httptest.NewRecorder()
	sm.ClearSessionCookie(w)

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("No cookies set")
	}

	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			sessionCookie = c
			break
		}
	}
	if sessionCookie == nil {
		t.Fatal("Session cookie not found")
		return
	}
	if sessionCookie.MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1", sessionCookie.MaxAge)
	}
}

func TestCORSOriginWhitelist(t *testing.T) {
	handler := CORS("https://album.example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"whitelisted origin", "https://album.example.com", true},
		{"localhost", "http://localhost:5173", true},
		{"unknown origin", "https://evil.example.com", false},
		{"no origin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			handler.ServeHTTP(w, req)

			got := w.Header().Get("Access-Control-Allow-Origin")
			if tt.allowed && got != tt.origin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.origin)
			}
			if !tt.allowed && got != "" {
				t.Errorf("Allow-Origin = %q, want empty", got)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight must not reach the handler")
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}
}
