// Package database defines the storage row types and repository interfaces
// for albums, pages, assets, and the family media library. Backends live in
// subpackages and register themselves through provider.go.
package database

import (
	"database/sql"
	"time"
)

// AlbumMeta is the albums table row: scalar metadata plus the editor
// configuration serialized as a JSON blob.
type AlbumMeta struct {
	ID          string
	FamilyID    string
	Title       string
	Description string
	Category    string
	Hashtags    []string
	CoverURL    string
	Location    string
	Country     string
	Geotag      string
	Published   bool
	Config      string // JSON blob, reconstructed with defaults on load
	Unplaced    string // JSON blob, assets staged off-page
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AlbumSummary is an album list row with aggregate counts.
type AlbumSummary struct {
	AlbumMeta
	PageCount  int
	AssetCount int
}

// PageRecord is an album_pages table row. The layout columns hold the
// unified page schema; Content and the page_assets rows carry the legacy
// shape older albums were stored in.
type PageRecord struct {
	ID                string
	AlbumID           string
	PageNumber        int
	Layout            string
	LayoutConfig      sql.NullString
	TextLayers        sql.NullString
	Content           sql.NullString
	BackgroundColor   sql.NullString
	BackgroundOpacity sql.NullFloat64
	BackgroundURL     sql.NullString
}

// AssetRecord is a page_assets table row: core geometry as columns, every
// other visual property folded into the Config JSON blob.
type AssetRecord struct {
	ID        string
	PageID    string
	AssetType string
	URL       string
	X         float64
	Y         float64
	Width     float64
	Height    float64
	ZIndex    int
	Rotation  float64
	Config    sql.NullString
}

// MediaItem is a media_library table row.
type MediaItem struct {
	ID        string
	FamilyID  string
	URL       string
	Kind      string
	Width     int
	Height    int
	SizeBytes int64
	CreatedAt time.Time
}
