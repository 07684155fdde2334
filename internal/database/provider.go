package database

import (
	"fmt"
	"sync"
)

var (
	providerMu          sync.RWMutex
	postgresAlbumWriter func() AlbumWriter
	postgresMediaStore  func() MediaStore
	postgresInitialized bool
)

// RegisterPostgresBackend registers PostgreSQL repository constructors.
// This is called by the postgres package to avoid import cycles.
func RegisterPostgresBackend(albums func() AlbumWriter, media func() MediaStore) {
	providerMu.Lock()
	defer providerMu.Unlock()
	postgresAlbumWriter = albums
	postgresMediaStore = media
	postgresInitialized = true
}

// IsInitialized returns whether the PostgreSQL backend has been initialized.
func IsInitialized() bool {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return postgresInitialized
}

// GetAlbumWriter returns an AlbumWriter from the registered backend.
func GetAlbumWriter() (AlbumWriter, error) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresAlbumWriter == nil {
		return nil, fmt.Errorf("PostgreSQL album writer not registered")
	}
	return postgresAlbumWriter(), nil
}

// GetAlbumReader returns an AlbumReader from the registered backend.
func GetAlbumReader() (AlbumReader, error) {
	return GetAlbumWriter()
}

// GetMediaStore returns a MediaStore from the registered backend.
func GetMediaStore() (MediaStore, error) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresMediaStore == nil {
		return nil, fmt.Errorf("PostgreSQL media store not registered")
	}
	return postgresMediaStore(), nil
}
