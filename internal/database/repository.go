package database

import (
	"context"

	"github.com/heritage-moments/album-studio/internal/album"
)

// AlbumReader provides read access to stored albums.
type AlbumReader interface {
	// GetAlbumMeta retrieves album metadata by id, returns nil if not found
	GetAlbumMeta(ctx context.Context, id string) (*AlbumMeta, error)
	// ListAlbums retrieves all albums for a family, newest first
	ListAlbums(ctx context.Context, familyID string) ([]AlbumSummary, error)
	// LoadAlbum retrieves the full album document: pages ordered by page
	// number, assets decoded into the canonical model, page numbers
	// renumbered 1..N. An album with no pages comes back with the default
	// page skeleton. Returns nil if the album does not exist.
	LoadAlbum(ctx context.Context, id string) (*album.Album, error)
}

// AlbumWriter provides write access to stored albums.
type AlbumWriter interface {
	AlbumReader

	// CreateAlbum inserts the metadata row and the default page skeleton.
	CreateAlbum(ctx context.Context, meta *AlbumMeta) error
	// UpdateAlbumMeta updates metadata. Updating a missing album is an
	// error, not a silent no-op.
	UpdateAlbumMeta(ctx context.Context, meta *AlbumMeta) error
	// SaveAlbum replaces the stored document with the in-memory one:
	// pages and assets are upserted, rows absent from the model are
	// deleted. Saving a missing album is an error.
	SaveAlbum(ctx context.Context, a *album.Album) error
	// DeleteAlbum removes the album with its pages and assets.
	DeleteAlbum(ctx context.Context, id string) error
}

// MediaStore provides access to a family's uploaded media library.
type MediaStore interface {
	AddMedia(ctx context.Context, item *MediaItem) error
	ListMedia(ctx context.Context, familyID string) ([]MediaItem, error)
	// GetMedia retrieves one item by id, returns nil if not found
	GetMedia(ctx context.Context, id string) (*MediaItem, error)
	DeleteMedia(ctx context.Context, id string) error
}
