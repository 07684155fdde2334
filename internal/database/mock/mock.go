// Package mock provides in-memory implementations of the database
// interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/heritage-moments/album-studio/internal/album"
	"github.com/heritage-moments/album-studio/internal/database"
)

// MockAlbumStore is an in-memory implementation of database.AlbumWriter.
// Albums round-trip through the same page codec the real backend uses, so
// what a test reads back is what PostgreSQL would have returned.
type MockAlbumStore struct {
	mu     sync.RWMutex
	metas  map[string]*database.AlbumMeta
	pages  map[string][]database.PageRecord  // album id -> encoded pages
	legacy map[string][]database.AssetRecord // page id -> legacy rows

	// Error injection
	GetError    error
	ListError   error
	LoadError   error
	CreateError error
	UpdateError error
	SaveError   error
	DeleteError error
}

// NewMockAlbumStore creates a new mock album store
func NewMockAlbumStore() *MockAlbumStore {
	return &MockAlbumStore{
		metas:  make(map[string]*database.AlbumMeta),
		pages:  make(map[string][]database.PageRecord),
		legacy: make(map[string][]database.AssetRecord),
	}
}

// SeedLegacyPage installs a legacy-schema page: no layout columns, flat
// asset rows. For exercising the normalizer's legacy path end to end.
func (m *MockAlbumStore) SeedLegacyPage(albumID string, number int, rows []database.AssetRecord) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := database.PageRecord{
		ID:         uuid.New().String(),
		AlbumID:    albumID,
		PageNumber: number,
	}
	m.pages[albumID] = append(m.pages[albumID], rec)
	for i := range rows {
		rows[i].PageID = rec.ID
	}
	m.legacy[rec.ID] = rows
	return rec.ID
}

func (m *MockAlbumStore) GetAlbumMeta(_ context.Context, id string) (*database.AlbumMeta, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.metas[id]
	if !ok {
		return nil, nil
	}
	cp := *meta
	return &cp, nil
}

func (m *MockAlbumStore) ListAlbums(_ context.Context, familyID string) ([]database.AlbumSummary, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.AlbumSummary
	for id, meta := range m.metas {
		if meta.FamilyID != familyID {
			continue
		}
		s := database.AlbumSummary{AlbumMeta: *meta, PageCount: len(m.pages[id])}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockAlbumStore) LoadAlbum(_ context.Context, id string) (*album.Album, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.metas[id]
	if !ok {
		return nil, nil
	}

	a := &album.Album{}
	database.MetaToAlbum(meta, a)

	recs := append([]database.PageRecord(nil), m.pages[id]...)
	sort.Slice(recs, func(i, j int) bool { return recs[i].PageNumber < recs[j].PageNumber })
	for _, rec := range recs {
		a.Pages = append(a.Pages, database.DecodePage(rec, m.legacy[rec.ID]))
	}
	if len(a.Pages) == 0 {
		a.Pages = album.DefaultPages(func() string { return uuid.New().String() })
	}
	album.Renumber(a.Pages)
	return a, nil
}

func (m *MockAlbumStore) CreateAlbum(_ context.Context, meta *database.AlbumMeta) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if meta.ID == "" {
		meta.ID = uuid.New().String()
	}
	now := time.Now()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	cp := *meta
	m.metas[meta.ID] = &cp

	for _, p := range album.DefaultPages(func() string { return uuid.New().String() }) {
		rec, err := database.EncodePage(meta.ID, p)
		if err != nil {
			return err
		}
		m.pages[meta.ID] = append(m.pages[meta.ID], rec)
	}
	return nil
}

func (m *MockAlbumStore) UpdateAlbumMeta(_ context.Context, meta *database.AlbumMeta) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.metas[meta.ID]
	if !ok {
		return fmt.Errorf("update album %s: no rows updated", meta.ID)
	}
	meta.UpdatedAt = time.Now()
	meta.CreatedAt = stored.CreatedAt
	cp := *meta
	m.metas[meta.ID] = &cp
	return nil
}

func (m *MockAlbumStore) SaveAlbum(_ context.Context, a *album.Album) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.metas[a.ID]
	if !ok {
		return fmt.Errorf("save album %s: no rows updated", a.ID)
	}

	meta, err := database.AlbumToMeta(a)
	if err != nil {
		return err
	}
	meta.CreatedAt = stored.CreatedAt
	meta.UpdatedAt = time.Now()
	m.metas[a.ID] = meta

	// Replaced pages drop their legacy rows, matching the real backend.
	for _, rec := range m.pages[a.ID] {
		delete(m.legacy, rec.ID)
	}
	recs := make([]database.PageRecord, 0, len(a.Pages))
	for i, p := range a.Pages {
		rec, err := database.EncodePage(a.ID, p)
		if err != nil {
			return err
		}
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		rec.PageNumber = i + 1
		recs = append(recs, rec)
	}
	m.pages[a.ID] = recs
	return nil
}

func (m *MockAlbumStore) DeleteAlbum(_ context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.pages[id] {
		delete(m.legacy, rec.ID)
	}
	delete(m.pages, id)
	delete(m.metas, id)
	return nil
}

// MockMediaStore is an in-memory implementation of database.MediaStore
type MockMediaStore struct {
	mu    sync.RWMutex
	items map[string]*database.MediaItem

	// Error injection
	AddError    error
	GetError    error
	ListError   error
	DeleteError error
}

// NewMockMediaStore creates a new mock media store
func NewMockMediaStore() *MockMediaStore {
	return &MockMediaStore{items: make(map[string]*database.MediaItem)}
}

func (m *MockMediaStore) AddMedia(_ context.Context, item *database.MediaItem) error {
	if m.AddError != nil {
		return m.AddError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = time.Now()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *MockMediaStore) GetMedia(_ context.Context, id string) (*database.MediaItem, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (m *MockMediaStore) ListMedia(_ context.Context, familyID string) ([]database.MediaItem, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.MediaItem
	for _, item := range m.items {
		if item.FamilyID == familyID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockMediaStore) DeleteMedia(_ context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}
