// Package normalize converts heterogeneous persisted page records into one
// canonical in-memory page representation. Album pages have been stored in
// two schema generations: a unified schema holding one JSON array of layout
// items plus a separate text-layer array, and a legacy schema holding a
// flat per-row asset list with a JSON config blob. Decoders run in a fixed
// priority order; the first that applies wins. Normalization never fails -
// malformed input degrades to an empty-layout page.
package normalize

import (
	"encoding/json"
	"log"

	"github.com/heritage-moments/album-studio/internal/album"
)

// Schema names the record generation a page was decoded from.
type Schema string

// Schema generations.
const (
	SchemaUnified Schema = "unified"
	SchemaLegacy  Schema = "legacy"
)

// Record is one raw persisted page row. The three layout columns may each
// hold a JSON-encoded string, an already-parsed value, or nothing.
type Record struct {
	PageNumber        int
	Layout            string
	BackgroundColor   string
	BackgroundOpacity float64
	BackgroundImage   string

	LayoutConfig any
	LayoutJSON   any
	Content      any
	TextLayers   any

	Assets []AssetRow
}

// AssetRow is one flat legacy asset row.
type AssetRow struct {
	ID        string         `json:"id"`
	AssetType string         `json:"asset_type"`
	URL       string         `json:"url"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	ZIndex    int            `json:"z_index"`
	Rotation  float64        `json:"rotation"`
	Config    map[string]any `json:"config"`
}

// ItemContent is the nested content descriptor of a layout item.
type ItemContent struct {
	Type     string         `json:"type"`
	URL      string         `json:"url,omitempty"`
	Zoom     float64        `json:"zoom,omitempty"`
	FocalX   float64        `json:"focalX,omitempty"`
	FocalY   float64        `json:"focalY,omitempty"`
	Rotation float64        `json:"rotation,omitempty"`
	Text     string         `json:"text,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
}

// Item is one canonical layout box of a unified-schema page.
type Item struct {
	ID      string      `json:"id"`
	Left    float64     `json:"left"`
	Top     float64     `json:"top"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	ZIndex  int         `json:"zIndex"`
	Content ItemContent `json:"content"`
}

// Page is the canonical result of normalizing one record. Exactly one of
// the two field groups is authoritative, indicated by Schema: LayoutItems
// and TextItems for unified input, Assets for legacy input. Both groups are
// always non-nil so callers never branch on nil.
type Page struct {
	Number     int
	Layout     string
	Background album.Background
	Schema     Schema

	LayoutItems []Item
	TextItems   []Item
	Assets      []album.Asset
}

// Default numeric values applied when a unified layout item omits a field.
const (
	defaultItemWidth   = 30.0
	defaultVisualZ     = 10
	defaultTextZ       = 50
	defaultItemHeight  = 30.0
	defaultFocalCenter = 0.5
)

// Normalize converts one raw page record into the canonical page. It never
// returns an error; the worst case is an empty-layout page.
func Normalize(rec Record) Page {
	page := Page{
		Number: rec.PageNumber,
		Layout: rec.Layout,
		Background: album.Background{
			Color:   rec.BackgroundColor,
			Opacity: rec.BackgroundOpacity,
			Image:   rec.BackgroundImage,
		},
		LayoutItems: []Item{},
		TextItems:   []Item{},
		Assets:      []album.Asset{},
	}
	if page.Layout == "" {
		page.Layout = album.LayoutFreeform
	}

	layout, unified := detectLayoutSource(rec)
	if unified {
		page.Schema = SchemaUnified
		decodeUnified(&page, rec, layout)
		return page
	}

	page.Schema = SchemaLegacy
	decodeLegacy(&page, rec.Assets)
	return page
}

// detectLayoutSource picks the layout source for the unified schema: the
// first of (layout_config, layout_json, content) that parses to a
// non-empty array. Mere presence of any of those columns still selects the
// unified schema even when every candidate is empty - the column existing
// at all is what signals the new generation.
func detectLayoutSource(rec Record) ([]map[string]any, bool) {
	present := false
	for _, src := range []any{rec.LayoutConfig, rec.LayoutJSON, rec.Content} {
		if src == nil {
			continue
		}
		present = true
		if arr := parseArray(src); len(arr) > 0 {
			return arr, true
		}
	}
	return nil, present
}

// parseArray coerces a layout column value into a slice of objects. The
// value may be a JSON-encoded string, raw bytes, or an already-parsed
// slice. Parse failures are logged and degrade to an empty slice.
func parseArray(v any) []map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return unmarshalArray([]byte(t))
	case []byte:
		if len(t) == 0 {
			return nil
		}
		return unmarshalArray(t)
	case json.RawMessage:
		if len(t) == 0 {
			return nil
		}
		return unmarshalArray(t)
	case []map[string]any:
		return t
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, el := range t {
			if m, ok := el.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func unmarshalArray(data []byte) []map[string]any {
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		log.Printf("normalize: malformed layout JSON ignored: %v", err)
		return nil
	}
	return out
}

// decodeUnified fills the page from a unified-schema record. An empty
// layout array combined with a legacy-style asset list synthesizes layout
// items from the assets - a backward-compatibility fallback, not data loss.
func decodeUnified(page *Page, rec Record, layout []map[string]any) {
	if len(layout) == 0 && len(rec.Assets) > 0 {
		layout = SynthesizeFromAssets(rec.Assets)
	}

	textLayers := parseArray(rec.TextLayers)

	for _, raw := range layout {
		item := decodeItem(raw, false)
		if itemRole(raw) == "text" {
			item.applyDefaults(true, hasKey(raw, "zIndex", "z_index"))
			page.TextItems = append(page.TextItems, item)
		} else {
			item.applyDefaults(false, hasKey(raw, "zIndex", "z_index"))
			page.LayoutItems = append(page.LayoutItems, item)
		}
	}
	for _, raw := range textLayers {
		item := decodeItem(raw, true)
		item.applyDefaults(true, hasKey(raw, "zIndex", "z_index"))
		page.TextItems = append(page.TextItems, item)
	}
}

// itemRole classifies a raw layout item as visual or text.
func itemRole(raw map[string]any) string {
	if getString(raw, "role") == "text" || getString(raw, "type") == "text" {
		return "text"
	}
	if content, ok := raw["content"].(map[string]any); ok {
		if getString(content, "type") == "text" {
			return "text"
		}
	}
	return "visual"
}

// decodeItem maps one raw layout object into an Item, accepting the field
// aliases the historical schemas used (x or left, y or top).
func decodeItem(raw map[string]any, text bool) Item {
	item := Item{
		ID:     getString(raw, "id"),
		Left:   getFloat(raw, 0, "left", "x"),
		Top:    getFloat(raw, 0, "top", "y"),
		Width:  getFloat(raw, 0, "width"),
		Height: getFloat(raw, 0, "height"),
		ZIndex: int(getFloat(raw, 0, "zIndex", "z_index")),
	}

	content, _ := raw["content"].(map[string]any)
	if content == nil {
		content = raw
	}
	item.Content = ItemContent{
		Type:     getString(content, "type"),
		URL:      getString(content, "url"),
		Zoom:     getFloat(content, 0, "zoom"),
		FocalX:   getFloat(content, defaultFocalCenter, "focalX", "focal_x"),
		FocalY:   getFloat(content, defaultFocalCenter, "focalY", "focal_y"),
		Rotation: getFloat(content, 0, "rotation"),
		Text:     getString(content, "text"),
	}
	if cfg, ok := content["config"].(map[string]any); ok {
		item.Content.Config = cfg
	}
	if text && item.Content.Type == "" {
		item.Content.Type = "text"
	}
	return item
}

// applyDefaults fills deterministic defaults for absent numeric fields.
// Zero is a legal stacking position (sendToBack decrements below it), so
// the zIndex default applies only when the key was absent from the raw
// item, not when it was stored as 0.
func (it *Item) applyDefaults(text, zIndexPresent bool) {
	if it.Width == 0 {
		it.Width = defaultItemWidth
	}
	if it.Height == 0 {
		it.Height = defaultItemHeight
	}
	if !zIndexPresent {
		if text {
			it.ZIndex = defaultTextZ
		} else {
			it.ZIndex = defaultVisualZ
		}
	}
}

// SynthesizeFromAssets maps legacy asset rows one-to-one into freeform
// layout items. It is the explicit fallback for unified-schema records
// whose layout array is empty while a legacy asset list is still present.
func SynthesizeFromAssets(assets []AssetRow) []map[string]any {
	items := make([]map[string]any, 0, len(assets))
	for _, a := range assets {
		typ := a.AssetType
		if typ == "" {
			typ = string(album.AssetImage)
		}
		item := map[string]any{
			"id":     a.ID,
			"left":   a.X,
			"top":    a.Y,
			"width":  a.Width,
			"height": a.Height,
			"zIndex": float64(a.ZIndex),
			"content": map[string]any{
				"type":     typ,
				"url":      a.URL,
				"rotation": a.Rotation,
			},
		}
		if a.Config != nil {
			item["content"].(map[string]any)["config"] = a.Config
		}
		items = append(items, item)
	}
	return items
}

// decodeLegacy maps flat asset rows into canonical assets.
func decodeLegacy(page *Page, rows []AssetRow) {
	for _, row := range rows {
		page.Assets = append(page.Assets, DecodeLegacyAsset(row))
	}
}

// DecodeLegacyAsset converts one legacy row, recovering the asset's real
// type when the stored type is a generic placeholder but a config hint
// shows it is actually a map or a location pin. The config blob carries
// every non-geometry visual property, so it is applied in full, not just
// consulted for the type.
func DecodeLegacyAsset(row AssetRow) album.Asset {
	a := album.Asset{
		ID:       row.ID,
		Type:     RestoreType(row.AssetType, row.Config),
		URL:      row.URL,
		X:        row.X,
		Y:        row.Y,
		Width:    row.Width,
		Height:   row.Height,
		ZIndex:   row.ZIndex,
		Rotation: row.Rotation,
	}
	ApplyAssetConfig(&a, row.Config)
	if a.Width == 0 {
		a.Width = defaultItemWidth
	}
	if a.Height == 0 {
		a.Height = defaultItemHeight
	}
	return a
}

// assetConfig is the persisted per-asset config blob shape. Both schema
// generations store the same keys, so this is the single decoder for them.
type assetConfig struct {
	FitMode     string             `json:"fitMode,omitempty"`
	PivotX      float64            `json:"pivotX,omitempty"`
	PivotY      float64            `json:"pivotY,omitempty"`
	ClipPath    []album.Point      `json:"clipPath,omitempty"`
	Adjust      *album.Adjustments `json:"adjust,omitempty"`
	TextStyle   *album.TextStyle   `json:"textStyle,omitempty"`
	Locked      bool               `json:"locked,omitempty"`
	Hidden      bool               `json:"hidden,omitempty"`
	Placeholder bool               `json:"placeholder,omitempty"`
}

// ApplyAssetConfig copies the visual properties stored in a config blob
// onto the asset. A malformed blob is ignored.
func ApplyAssetConfig(a *album.Asset, m map[string]any) {
	if len(m) == 0 {
		return
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	var cfg assetConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return
	}
	a.FitMode = album.FitMode(cfg.FitMode)
	a.PivotX = cfg.PivotX
	a.PivotY = cfg.PivotY
	a.ClipPath = cfg.ClipPath
	if cfg.Adjust != nil {
		a.Adjust = *cfg.Adjust
	}
	if cfg.TextStyle != nil {
		a.Text = *cfg.TextStyle
	}
	a.Locked = cfg.Locked
	a.Hidden = cfg.Hidden
	a.Placeholder = cfg.Placeholder
}

// RestoreType applies the legacy type-upgrade rule, in priority order:
// an explicit config.originalType always wins; an image with a mapConfig
// blob is really a map; a text asset flagged with location/isLocation is
// really a location pin; anything else keeps its stored type.
func RestoreType(stored string, config map[string]any) album.AssetType {
	if orig := getString(config, "originalType"); orig != "" {
		return album.AssetType(orig)
	}
	if stored == string(album.AssetImage) {
		if _, ok := config["mapConfig"]; ok {
			return album.AssetMap
		}
	}
	if stored == string(album.AssetText) {
		if isTruthy(config["location"]) || isTruthy(config["isLocation"]) {
			return album.AssetPin
		}
	}
	if stored == "" {
		return album.AssetImage
	}
	return album.AssetType(stored)
}

func isTruthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false"
	case float64:
		return t != 0
	default:
		return false
	}
}

// hasKey reports whether any of the aliased keys exists in the raw item.
func hasKey(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getFloat(m map[string]any, def float64, keys ...string) float64 {
	for _, key := range keys {
		switch t := m[key].(type) {
		case float64:
			return t
		case int:
			return float64(t)
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f
			}
		}
	}
	return def
}
