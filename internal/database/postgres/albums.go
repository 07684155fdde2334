package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/heritage-moments/album-studio/internal/album"
	"github.com/heritage-moments/album-studio/internal/database"
	"github.com/lib/pq"
)

// AlbumRepository provides PostgreSQL-backed album storage
type AlbumRepository struct {
	pool *Pool
}

// NewAlbumRepository creates a new AlbumRepository
func NewAlbumRepository(pool *Pool) *AlbumRepository {
	return &AlbumRepository{pool: pool}
}

func newID() string {
	return uuid.New().String()
}

// pageNumberShift moves page numbers into a disjoint range during saves so
// reordered pages never collide on the (album_id, page_number) constraint.
const pageNumberShift = 1000

const albumColumns = `id, family_id, title, description, category, hashtags,
	cover_url, location, country, geotag, published,
	COALESCE(config::text, ''), COALESCE(unplaced::text, ''), created_at, updated_at`

func scanAlbumMeta(scan func(...any) error) (*database.AlbumMeta, error) {
	var m database.AlbumMeta
	err := scan(&m.ID, &m.FamilyID, &m.Title, &m.Description, &m.Category,
		pq.Array(&m.Hashtags), &m.CoverURL, &m.Location, &m.Country, &m.Geotag,
		&m.Published, &m.Config, &m.Unplaced, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *AlbumRepository) GetAlbumMeta(ctx context.Context, id string) (*database.AlbumMeta, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+albumColumns+` FROM albums WHERE id = $1`, id)
	meta, err := scanAlbumMeta(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get album: %w", err)
	}
	return meta, nil
}

func (r *AlbumRepository) ListAlbums(ctx context.Context, familyID string) ([]database.AlbumSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+albumColumns+`,
			(SELECT COUNT(*) FROM album_pages WHERE album_id = albums.id) AS page_count,
			COALESCE((SELECT SUM(COALESCE(jsonb_array_length(layout_config), 0))
				FROM album_pages WHERE album_id = albums.id), 0) AS asset_count
		 FROM albums WHERE family_id = $1 ORDER BY created_at DESC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var albums []database.AlbumSummary
	for rows.Next() {
		var s database.AlbumSummary
		err := rows.Scan(&s.ID, &s.FamilyID, &s.Title, &s.Description, &s.Category,
			pq.Array(&s.Hashtags), &s.CoverURL, &s.Location, &s.Country, &s.Geotag,
			&s.Published, &s.Config, &s.Unplaced, &s.CreatedAt, &s.UpdatedAt,
			&s.PageCount, &s.AssetCount)
		if err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return albums, nil
}

func (r *AlbumRepository) CreateAlbum(ctx context.Context, meta *database.AlbumMeta) error {
	if meta.ID == "" {
		meta.ID = newID()
	}
	now := time.Now()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO albums (id, family_id, title, description, category, hashtags,
			cover_url, location, country, geotag, published, config, unplaced, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, '')::jsonb, NULLIF($13, '')::jsonb, $14, $15)`,
		meta.ID, meta.FamilyID, meta.Title, meta.Description, meta.Category,
		pq.Array(meta.Hashtags), meta.CoverURL, meta.Location, meta.Country,
		meta.Geotag, meta.Published, meta.Config, meta.Unplaced,
		meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create album: %w", err)
	}

	// New albums start with the standard page skeleton.
	for _, p := range album.DefaultPages(newID) {
		rec, err := database.EncodePage(meta.ID, p)
		if err != nil {
			return err
		}
		if err := insertPage(ctx, tx, rec, p.Number); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create album: %w", err)
	}
	return nil
}

func (r *AlbumRepository) UpdateAlbumMeta(ctx context.Context, meta *database.AlbumMeta) error {
	meta.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx,
		`UPDATE albums SET title = $1, description = $2, category = $3, hashtags = $4,
			cover_url = $5, location = $6, country = $7, geotag = $8, published = $9,
			config = NULLIF($10, '')::jsonb, updated_at = $11
		 WHERE id = $12`,
		meta.Title, meta.Description, meta.Category, pq.Array(meta.Hashtags),
		meta.CoverURL, meta.Location, meta.Country, meta.Geotag, meta.Published,
		meta.Config, meta.UpdatedAt, meta.ID)
	if err != nil {
		return fmt.Errorf("update album: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update album rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update album %s: no rows updated", meta.ID)
	}
	return nil
}

func (r *AlbumRepository) DeleteAlbum(ctx context.Context, id string) error {
	// Pages and assets cascade.
	if _, err := r.pool.Exec(ctx, `DELETE FROM albums WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	return nil
}

// LoadAlbum reads the full album document. Pages come back ordered and
// renumbered 1..N regardless of the stored numbers; an album without pages
// gets the default skeleton in memory (persisted on the next save).
func (r *AlbumRepository) LoadAlbum(ctx context.Context, id string) (*album.Album, error) {
	meta, err := r.GetAlbumMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}

	a := &album.Album{}
	database.MetaToAlbum(meta, a)

	pageRecs, err := r.loadPageRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	assetsByPage, err := r.loadLegacyAssets(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, rec := range pageRecs {
		a.Pages = append(a.Pages, database.DecodePage(rec, assetsByPage[rec.ID]))
	}
	if len(a.Pages) == 0 {
		a.Pages = album.DefaultPages(newID)
	}
	album.Renumber(a.Pages)
	return a, nil
}

func (r *AlbumRepository) loadPageRecords(ctx context.Context, albumID string) ([]database.PageRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, album_id, page_number, layout,
			layout_config::text, text_layers::text, content::text,
			background_color, background_opacity, background_url
		 FROM album_pages WHERE album_id = $1 ORDER BY page_number`, albumID)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}
	defer rows.Close()

	var recs []database.PageRecord
	for rows.Next() {
		var rec database.PageRecord
		if err := rows.Scan(&rec.ID, &rec.AlbumID, &rec.PageNumber, &rec.Layout,
			&rec.LayoutConfig, &rec.TextLayers, &rec.Content,
			&rec.BackgroundColor, &rec.BackgroundOpacity, &rec.BackgroundURL); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return recs, nil
}

func (r *AlbumRepository) loadLegacyAssets(ctx context.Context, albumID string) (map[string][]database.AssetRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT pa.id, pa.page_id, pa.asset_type, pa.url, pa.x, pa.y,
			pa.width, pa.height, pa.z_index, pa.rotation, pa.config::text
		 FROM page_assets pa
		 JOIN album_pages ap ON ap.id = pa.page_id
		 WHERE ap.album_id = $1
		 ORDER BY pa.z_index`, albumID)
	if err != nil {
		return nil, fmt.Errorf("load page assets: %w", err)
	}
	defer rows.Close()

	byPage := make(map[string][]database.AssetRecord)
	for rows.Next() {
		var rec database.AssetRecord
		if err := rows.Scan(&rec.ID, &rec.PageID, &rec.AssetType, &rec.URL,
			&rec.X, &rec.Y, &rec.Width, &rec.Height, &rec.ZIndex,
			&rec.Rotation, &rec.Config); err != nil {
			return nil, fmt.Errorf("scan page asset: %w", err)
		}
		byPage[rec.PageID] = append(byPage[rec.PageID], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate page assets: %w", err)
	}
	return byPage, nil
}

// SaveAlbum replaces the stored document with the in-memory model. The
// write happens in one transaction: metadata update (zero rows is an
// error), orphaned page rows deleted by id diff, then the two-phase page
// upsert that first parks every surviving page in a shifted number range
// before writing final numbers.
func (r *AlbumRepository) SaveAlbum(ctx context.Context, a *album.Album) error {
	meta, err := database.AlbumToMeta(a)
	if err != nil {
		return err
	}
	meta.UpdatedAt = time.Now()

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE albums SET title = $1, description = $2, category = $3, hashtags = $4,
			cover_url = $5, location = $6, country = $7, geotag = $8, published = $9,
			config = NULLIF($10, '')::jsonb, unplaced = NULLIF($11, '')::jsonb, updated_at = $12
		 WHERE id = $13`,
		meta.Title, meta.Description, meta.Category, pq.Array(meta.Hashtags),
		meta.CoverURL, meta.Location, meta.Country, meta.Geotag, meta.Published,
		meta.Config, meta.Unplaced, meta.UpdatedAt, meta.ID)
	if err != nil {
		return fmt.Errorf("save album: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save album rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("save album %s: no rows updated", a.ID)
	}

	// Delete pages that no longer exist in the model. Asset rows of a
	// deleted page cascade with it; asset rows on surviving pages are
	// reconciled by id diff after the upserts below.
	keep := make([]string, 0, len(a.Pages))
	for _, p := range a.Pages {
		keep = append(keep, p.ID)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM album_pages WHERE album_id = $1 AND NOT (id = ANY($2))`,
		a.ID, pq.Array(keep)); err != nil {
		return fmt.Errorf("delete orphan pages: %w", err)
	}

	// Phase one: park surviving pages out of the final number range.
	if _, err := tx.ExecContext(ctx,
		`UPDATE album_pages SET page_number = page_number + $2 WHERE album_id = $1`,
		a.ID, pageNumberShift); err != nil {
		return fmt.Errorf("shift page numbers: %w", err)
	}

	// Phase two: upsert every page with its final number, then one row per
	// asset with its config blob.
	keepAssets := make([]string, 0)
	for i, p := range a.Pages {
		rec, err := database.EncodePage(a.ID, p)
		if err != nil {
			return err
		}
		if rec.ID == "" {
			rec.ID = newID()
		}
		if err := insertPage(ctx, tx, rec, i+1); err != nil {
			return err
		}
		for _, as := range p.Assets {
			arec, err := database.EncodeAssetRecord(rec.ID, as)
			if err != nil {
				return err
			}
			if err := upsertAssetRow(ctx, tx, arec); err != nil {
				return err
			}
			keepAssets = append(keepAssets, as.ID)
		}
	}

	// Asset rows present in storage but absent from the model are
	// orphans; delete them by id, never by cascade.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM page_assets WHERE page_id IN
			(SELECT id FROM album_pages WHERE album_id = $1)
		 AND NOT (id = ANY($2))`, a.ID, pq.Array(keepAssets)); err != nil {
		return fmt.Errorf("delete orphan assets: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save album: %w", err)
	}
	return nil
}

func insertPage(ctx context.Context, tx *sql.Tx, rec database.PageRecord, number int) error {
	if rec.ID == "" {
		rec.ID = newID()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO album_pages (id, album_id, page_number, layout, layout_config,
			text_layers, content, background_color, background_opacity, background_url)
		 VALUES ($1, $2, $3, $4, NULLIF($5, '')::jsonb, NULL, NULL, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
			page_number = EXCLUDED.page_number,
			layout = EXCLUDED.layout,
			layout_config = EXCLUDED.layout_config,
			text_layers = NULL,
			content = NULL,
			background_color = EXCLUDED.background_color,
			background_opacity = EXCLUDED.background_opacity,
			background_url = EXCLUDED.background_url`,
		rec.ID, rec.AlbumID, number, rec.Layout, rec.LayoutConfig.String,
		nullable(rec.BackgroundColor), nullableFloat(rec.BackgroundOpacity),
		nullable(rec.BackgroundURL))
	if err != nil {
		return fmt.Errorf("upsert page %s: %w", rec.ID, err)
	}
	return nil
}

func upsertAssetRow(ctx context.Context, tx *sql.Tx, rec database.AssetRecord) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO page_assets (id, page_id, asset_type, url, x, y,
			width, height, z_index, rotation, config)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, '')::jsonb)
		 ON CONFLICT (id) DO UPDATE SET
			page_id = EXCLUDED.page_id,
			asset_type = EXCLUDED.asset_type,
			url = EXCLUDED.url,
			x = EXCLUDED.x,
			y = EXCLUDED.y,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			z_index = EXCLUDED.z_index,
			rotation = EXCLUDED.rotation,
			config = EXCLUDED.config`,
		rec.ID, rec.PageID, rec.AssetType, rec.URL, rec.X, rec.Y,
		rec.Width, rec.Height, rec.ZIndex, rec.Rotation, rec.Config.String)
	if err != nil {
		return fmt.Errorf("upsert asset %s: %w", rec.ID, err)
	}
	return nil
}

func nullable(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}

func nullableFloat(f sql.NullFloat64) any {
	if !f.Valid {
		return nil
	}
	return f.Float64
}
