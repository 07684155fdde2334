package storage

import (
	"context"
	"sync"
)

// Mock is an in-memory Store for tests. Error fields inject failures.
type Mock struct {
	mu    sync.Mutex
	files map[string][]byte

	SaveError   error
	DeleteError error
}

func NewMock() *Mock {
	return &Mock{files: make(map[string][]byte)}
}

func (m *Mock) Save(_ context.Context, filename string, data []byte) (string, error) {
	if m.SaveError != nil {
		return "", m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "/media/" + SafeName(filename)
	cp := make([]byte, len(data))
	copy(cp, data)
	m.files[url] = cp
	return url, nil
}

func (m *Mock) Delete(_ context.Context, url string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, url)
	return nil
}

// Get returns a stored payload for assertions.
func (m *Mock) Get(url string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[url]
	return data, ok
}

// Count returns the number of stored payloads.
func (m *Mock) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}
