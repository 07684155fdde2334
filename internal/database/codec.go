package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heritage-moments/album-studio/internal/album"
	"github.com/heritage-moments/album-studio/internal/normalize"
)

// assetConfig is the JSON blob carrying every visual property that is not
// a core geometry column. Legacy rows used the same blob, so the keys here
// (originalType in particular) must stay compatible with what the
// normalizer reads back.
type assetConfig struct {
	FitMode      string             `json:"fitMode,omitempty"`
	PivotX       float64            `json:"pivotX,omitempty"`
	PivotY       float64            `json:"pivotY,omitempty"`
	ClipPath     []album.Point      `json:"clipPath,omitempty"`
	Adjust       *album.Adjustments `json:"adjust,omitempty"`
	TextStyle    *album.TextStyle   `json:"textStyle,omitempty"`
	Locked       bool               `json:"locked,omitempty"`
	Hidden       bool               `json:"hidden,omitempty"`
	Placeholder  bool               `json:"placeholder,omitempty"`
	OriginalType string             `json:"originalType,omitempty"`
}

func encodeAssetConfig(a album.Asset) map[string]any {
	cfg := assetConfig{
		FitMode:     string(a.FitMode),
		PivotX:      a.PivotX,
		PivotY:      a.PivotY,
		ClipPath:    a.ClipPath,
		Locked:      a.Locked,
		Hidden:      a.Hidden,
		Placeholder: a.Placeholder,
	}
	if a.Adjust != (album.Adjustments{}) {
		adj := a.Adjust
		cfg.Adjust = &adj
	}
	if a.Text != (album.TextStyle{}) {
		txt := a.Text
		cfg.TextStyle = &txt
	}

	// Round-trip through JSON to get a plain map for item embedding.
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// EncodeAssetRecord converts one asset into its row form: core geometry as
// columns, every other visual property in the config blob.
func EncodeAssetRecord(pageID string, a album.Asset) (AssetRecord, error) {
	rec := AssetRecord{
		ID:        a.ID,
		PageID:    pageID,
		AssetType: string(a.Type),
		URL:       a.URL,
		X:         a.X,
		Y:         a.Y,
		Width:     a.Width,
		Height:    a.Height,
		ZIndex:    a.ZIndex,
		Rotation:  a.Rotation,
	}
	if m := encodeAssetConfig(a); m != nil {
		raw, err := json.Marshal(m)
		if err != nil {
			return rec, fmt.Errorf("encode asset config: %w", err)
		}
		rec.Config = sql.NullString{Valid: true, String: string(raw)}
	}
	return rec, nil
}

// EncodeItems serializes assets into the unified layout item array stored
// in the album_pages layout_config column.
func EncodeItems(assets []album.Asset) (string, error) {
	items := make([]normalize.Item, 0, len(assets))
	for _, a := range assets {
		item := normalize.Item{
			ID:     a.ID,
			Left:   a.X,
			Top:    a.Y,
			Width:  a.Width,
			Height: a.Height,
			ZIndex: a.ZIndex,
			Content: normalize.ItemContent{
				Type:     string(a.Type),
				URL:      a.URL,
				Rotation: a.Rotation,
				Text:     a.Text.Content,
				Config:   encodeAssetConfig(a),
			},
		}
		items = append(items, item)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode layout items: %w", err)
	}
	return string(raw), nil
}

// DecodeItems is the inverse of EncodeItems for blobs stored outside a
// page row (the album's unplaced asset staging area).
func DecodeItems(blob string) []album.Asset {
	if blob == "" {
		return nil
	}
	rec := normalize.Record{LayoutConfig: blob}
	page := normalize.Normalize(rec)
	return pageAssets(page)
}

func itemToAsset(it normalize.Item) album.Asset {
	typ := album.AssetType(it.Content.Type)
	if typ == "" {
		typ = album.AssetImage
	}
	a := album.Asset{
		ID:       it.ID,
		Type:     typ,
		URL:      it.Content.URL,
		X:        it.Left,
		Y:        it.Top,
		Width:    it.Width,
		Height:   it.Height,
		ZIndex:   it.ZIndex,
		Rotation: it.Content.Rotation,
	}
	normalize.ApplyAssetConfig(&a, it.Content.Config)
	if a.Text.Content == "" {
		a.Text.Content = it.Content.Text
	}
	// The config blob overrides the type when an original type was
	// recorded there.
	a.Type = normalize.RestoreType(string(a.Type), it.Content.Config)
	return a
}

func pageAssets(p normalize.Page) []album.Asset {
	if p.Schema == normalize.SchemaLegacy {
		return p.Assets
	}
	assets := make([]album.Asset, 0, len(p.LayoutItems)+len(p.TextItems))
	for _, it := range p.LayoutItems {
		assets = append(assets, itemToAsset(it))
	}
	for _, it := range p.TextItems {
		assets = append(assets, itemToAsset(it))
	}
	return assets
}

// DecodePage converts one stored page row plus its legacy asset rows into
// the canonical page model. Both stored generations funnel through the
// normalizer so a caller never sees which schema a page was written in.
func DecodePage(rec PageRecord, assetRows []AssetRecord) album.Page {
	nrec := normalize.Record{
		PageNumber:        rec.PageNumber,
		Layout:            rec.Layout,
		BackgroundColor:   rec.BackgroundColor.String,
		BackgroundOpacity: rec.BackgroundOpacity.Float64,
		BackgroundImage:   rec.BackgroundURL.String,
	}
	if rec.LayoutConfig.Valid {
		nrec.LayoutConfig = rec.LayoutConfig.String
	}
	if rec.TextLayers.Valid {
		nrec.TextLayers = rec.TextLayers.String
	}
	if rec.Content.Valid {
		nrec.Content = rec.Content.String
	}
	for _, row := range assetRows {
		var cfg map[string]any
		if row.Config.Valid && row.Config.String != "" {
			// A malformed blob degrades to no config, not a failure.
			_ = json.Unmarshal([]byte(row.Config.String), &cfg)
		}
		nrec.Assets = append(nrec.Assets, normalize.AssetRow{
			ID:        row.ID,
			AssetType: row.AssetType,
			URL:       row.URL,
			X:         row.X,
			Y:         row.Y,
			Width:     row.Width,
			Height:    row.Height,
			ZIndex:    row.ZIndex,
			Rotation:  row.Rotation,
			Config:    cfg,
		})
	}

	np := normalize.Normalize(nrec)
	return album.Page{
		ID:         rec.ID,
		Number:     rec.PageNumber,
		Layout:     np.Layout,
		Assets:     pageAssets(np),
		Background: np.Background,
	}
}

// EncodePage converts a canonical page into its row form. Pages are always
// written in the unified schema; the legacy columns come back empty.
func EncodePage(albumID string, p album.Page) (PageRecord, error) {
	items, err := EncodeItems(p.Assets)
	if err != nil {
		return PageRecord{}, err
	}
	rec := PageRecord{
		ID:         p.ID,
		AlbumID:    albumID,
		PageNumber: p.Number,
		Layout:     p.Layout,
	}
	rec.LayoutConfig.Valid = true
	rec.LayoutConfig.String = items
	if p.Background.Color != "" {
		rec.BackgroundColor.Valid = true
		rec.BackgroundColor.String = p.Background.Color
	}
	if p.Background.Opacity != 0 {
		rec.BackgroundOpacity.Valid = true
		rec.BackgroundOpacity.Float64 = p.Background.Opacity
	}
	if p.Background.Image != "" {
		rec.BackgroundURL.Valid = true
		rec.BackgroundURL.String = p.Background.Image
	}
	return rec, nil
}

// EncodeConfig serializes the album editor configuration blob.
func EncodeConfig(cfg album.Config) (string, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode album config: %w", err)
	}
	return string(raw), nil
}

// DecodeConfig reconstructs the configuration with defaults for absent
// fields; a missing or malformed blob falls back to the full default.
func DecodeConfig(blob string) album.Config {
	cfg := album.DefaultConfig()
	if blob == "" {
		return cfg
	}
	if err := json.Unmarshal([]byte(blob), &cfg); err != nil {
		return album.DefaultConfig()
	}
	if cfg.PageWidth <= 0 || cfg.PageHeight <= 0 {
		def := album.DefaultConfig()
		cfg.PageWidth = def.PageWidth
		cfg.PageHeight = def.PageHeight
	}
	return cfg
}

// MetaToAlbum copies metadata row fields onto a domain album.
func MetaToAlbum(meta *AlbumMeta, a *album.Album) {
	a.ID = meta.ID
	a.FamilyID = meta.FamilyID
	a.Title = meta.Title
	a.Description = meta.Description
	a.Category = meta.Category
	a.Hashtags = meta.Hashtags
	a.CoverImage = meta.CoverURL
	a.Location = meta.Location
	a.Country = meta.Country
	a.Geotag = meta.Geotag
	a.Published = meta.Published
	a.Config = DecodeConfig(meta.Config)
	a.Unplaced = DecodeItems(meta.Unplaced)
	a.CreatedAt = meta.CreatedAt
	a.UpdatedAt = meta.UpdatedAt
}

// AlbumToMeta builds the metadata row from a domain album.
func AlbumToMeta(a *album.Album) (*AlbumMeta, error) {
	cfg, err := EncodeConfig(a.Config)
	if err != nil {
		return nil, err
	}
	meta := &AlbumMeta{
		ID:          a.ID,
		FamilyID:    a.FamilyID,
		Title:       a.Title,
		Description: a.Description,
		Category:    a.Category,
		Hashtags:    a.Hashtags,
		CoverURL:    a.CoverImage,
		Location:    a.Location,
		Country:     a.Country,
		Geotag:      a.Geotag,
		Published:   a.Published,
		Config:      cfg,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if len(a.Unplaced) > 0 {
		unplaced, err := EncodeItems(a.Unplaced)
		if err != nil {
			return nil, err
		}
		meta.Unplaced = unplaced
	}
	return meta, nil
}
