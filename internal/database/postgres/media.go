package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/heritage-moments/album-studio/internal/database"
)

// MediaRepository provides PostgreSQL-backed media library storage
type MediaRepository struct {
	pool *Pool
}

// NewMediaRepository creates a new MediaRepository
func NewMediaRepository(pool *Pool) *MediaRepository {
	return &MediaRepository{pool: pool}
}

func (r *MediaRepository) AddMedia(ctx context.Context, item *database.MediaItem) error {
	if item.ID == "" {
		item.ID = newID()
	}
	item.CreatedAt = time.Now()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO media_library (id, family_id, url, kind, width, height, size_bytes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.FamilyID, item.URL, item.Kind, item.Width, item.Height,
		item.SizeBytes, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("add media: %w", err)
	}
	return nil
}

func (r *MediaRepository) GetMedia(ctx context.Context, id string) (*database.MediaItem, error) {
	var m database.MediaItem
	err := r.pool.QueryRow(ctx,
		`SELECT id, family_id, url, kind, width, height, size_bytes, created_at
		 FROM media_library WHERE id = $1`, id).
		Scan(&m.ID, &m.FamilyID, &m.URL, &m.Kind, &m.Width, &m.Height,
			&m.SizeBytes, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return &m, nil
}

func (r *MediaRepository) ListMedia(ctx context.Context, familyID string) ([]database.MediaItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, family_id, url, kind, width, height, size_bytes, created_at
		 FROM media_library WHERE family_id = $1 ORDER BY created_at DESC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var items []database.MediaItem
	for rows.Next() {
		var m database.MediaItem
		if err := rows.Scan(&m.ID, &m.FamilyID, &m.URL, &m.Kind, &m.Width,
			&m.Height, &m.SizeBytes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}
	return items, nil
}

func (r *MediaRepository) DeleteMedia(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM media_library WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}
