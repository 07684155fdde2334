package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/heritage-moments/album-studio/internal/database"
)

// sessionIdleTTL is how long a session survives without being touched.
const sessionIdleTTL = 2 * time.Hour

// Session is one open editing session: a Store plus the mutex that
// serializes HTTP access to it, so each mutation is a single state
// transition.
type Session struct {
	ID      string
	AlbumID string

	mu       sync.Mutex
	store    *Store
	lastUsed time.Time
}

// With runs fn holding the session lock.
func (s *Session) With(fn func(store *Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	fn(s.store)
}

// Manager tracks open editing sessions keyed by uuid.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	repo     database.AlbumWriter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session manager backed by the album repository and
// starts the idle-eviction loop.
func NewManager(repo database.AlbumWriter) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		repo:     repo,
		stopCh:   make(chan struct{}),
	}
	go m.evictLoop()
	return m
}

// Stop terminates the eviction goroutine.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Manager) evictLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-sessionIdleTTL)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
		}
	}
}

// Open loads the album and creates a session around it.
func (m *Manager) Open(ctx context.Context, albumID string) (*Session, error) {
	a, err := m.repo.LoadAlbum(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("open editing session: %w", err)
	}
	if a == nil {
		return nil, nil
	}

	s := &Session{
		ID:       uuid.New().String(),
		AlbumID:  albumID,
		store:    NewStore(a),
		lastUsed: time.Now(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns an open session, or nil when unknown or expired.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Save persists the session's current aggregate through the repository.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	var saveErr error
	s.With(func(store *Store) {
		saveErr = m.repo.SaveAlbum(ctx, store.Album())
	})
	if saveErr != nil {
		return fmt.Errorf("save editing session: %w", saveErr)
	}
	return nil
}

// Close evicts a session. Unsaved edits are dropped.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
