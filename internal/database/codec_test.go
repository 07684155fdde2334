package database

import (
	"database/sql"
	"testing"

	"github.com/heritage-moments/album-studio/internal/album"
)

func TestEncodeDecodePageRoundTrip(t *testing.T) {
	page := album.Page{
		ID:     "p1",
		Number: 2,
		Layout: "quad-grid",
		Background: album.Background{
			Color:   "#fdf6e3",
			Opacity: 65,
			Image:   "/media/texture.jpg",
		},
		Assets: []album.Asset{
			{
				ID: "a1", Type: album.AssetImage, URL: "/media/one.jpg",
				X: 4, Y: 4, Width: 45, Height: 45, ZIndex: 10,
				FitMode:  album.FitCover,
				Rotation: -2.5,
				PivotX:   0.3, PivotY: 0.7,
				ClipPath: []album.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 1}},
				Adjust:   album.Adjustments{Brightness: 10, Sepia: 40, Opacity: 90},
				Locked:   true,
			},
			{
				ID: "t1", Type: album.AssetText,
				X: 10, Y: 80, Width: 60, Height: 12, ZIndex: 50,
				Text: album.TextStyle{Content: "Grandpa's farm, 1962", Font: "serif", Align: "center"},
			},
			{
				ID: "ph1", Type: album.AssetImage, URL: "",
				X: 51, Y: 51, Width: 45, Height: 45, ZIndex: 10,
				Placeholder: true,
			},
		},
	}

	rec, err := EncodePage("album1", page)
	if err != nil {
		t.Fatalf("EncodePage: %v", err)
	}
	if !rec.LayoutConfig.Valid {
		t.Fatal("encoded page has no layout blob")
	}
	if rec.Content.Valid || rec.TextLayers.Valid {
		t.Error("legacy columns must stay empty on write")
	}

	got := DecodePage(rec, nil)

	if got.ID != "p1" || got.Layout != "quad-grid" {
		t.Errorf("page identity lost: %+v", got)
	}
	if got.Background.Color != "#fdf6e3" || got.Background.Image != "/media/texture.jpg" {
		t.Errorf("background lost: %+v", got.Background)
	}
	if got.Background.Opacity != 65 {
		t.Errorf("background opacity = %v, want 65", got.Background.Opacity)
	}
	if len(got.Assets) != 3 {
		t.Fatalf("decoded %d assets, want 3", len(got.Assets))
	}

	byID := make(map[string]album.Asset)
	for _, a := range got.Assets {
		byID[a.ID] = a
	}

	img := byID["a1"]
	if img.FitMode != album.FitCover || img.PivotX != 0.3 || img.PivotY != 0.7 {
		t.Errorf("image visual properties lost: %+v", img)
	}
	if len(img.ClipPath) != 3 {
		t.Errorf("clip path lost: %+v", img.ClipPath)
	}
	if img.Adjust.Sepia != 40 || img.Adjust.Opacity != 90 {
		t.Errorf("adjustments lost: %+v", img.Adjust)
	}
	if !img.Locked {
		t.Error("locked flag lost")
	}
	if img.Rotation != -2.5 {
		t.Errorf("rotation = %v", img.Rotation)
	}

	txt := byID["t1"]
	if txt.Type != album.AssetText {
		t.Errorf("text asset type = %q", txt.Type)
	}
	if txt.Text.Content != "Grandpa's farm, 1962" || txt.Text.Font != "serif" {
		t.Errorf("text style lost: %+v", txt.Text)
	}

	ph := byID["ph1"]
	if !ph.Placeholder {
		t.Error("placeholder flag lost")
	}
	if ph.URL != "" {
		t.Errorf("placeholder url = %q", ph.URL)
	}
}

func TestEncodeDecodePageKeepsZeroZIndex(t *testing.T) {
	// Sending an asset to the back can leave it at zIndex 0 or below;
	// the stored value must survive a save/load unchanged or the
	// stacking order inverts.
	page := album.Page{
		ID:     "p1",
		Number: 2,
		Assets: []album.Asset{
			{ID: "back", Type: album.AssetImage, URL: "/media/b.jpg", X: 5, Y: 5, Width: 20, Height: 20, ZIndex: 0},
			{ID: "front", Type: album.AssetImage, URL: "/media/f.jpg", X: 10, Y: 10, Width: 20, Height: 20, ZIndex: 5},
		},
	}

	rec, err := EncodePage("album1", page)
	if err != nil {
		t.Fatalf("EncodePage: %v", err)
	}
	got := DecodePage(rec, nil)

	zByID := map[string]int{}
	for _, a := range got.Assets {
		zByID[a.ID] = a.ZIndex
	}
	if zByID["back"] != 0 {
		t.Errorf("back zIndex = %d, want 0", zByID["back"])
	}
	if zByID["front"] != 5 {
		t.Errorf("front zIndex = %d, want 5", zByID["front"])
	}
	if zByID["back"] >= zByID["front"] {
		t.Errorf("stacking inverted: back=%d front=%d", zByID["back"], zByID["front"])
	}
}

func TestDecodePageLegacyRows(t *testing.T) {
	rec := PageRecord{ID: "p1", AlbumID: "a1", PageNumber: 3}
	rows := []AssetRecord{
		{
			ID: "leg1", PageID: "p1", AssetType: "image", URL: "/media/x.jpg",
			X: 10, Y: 10, Width: 30, Height: 30, ZIndex: 1,
		},
		{
			ID: "leg2", PageID: "p1", AssetType: "image", URL: "",
			X: 50, Y: 50, Width: 20, Height: 20, ZIndex: 2,
			Config: sql.NullString{Valid: true, String: `{"mapConfig": {"zoom": 4}}`},
		},
	}

	got := DecodePage(rec, rows)
	if len(got.Assets) != 2 {
		t.Fatalf("decoded %d assets, want 2", len(got.Assets))
	}
	if got.Assets[0].Type != album.AssetImage {
		t.Errorf("first asset type = %q", got.Assets[0].Type)
	}
	if got.Assets[1].Type != album.AssetMap {
		t.Errorf("image with mapConfig should decode as map, got %q", got.Assets[1].Type)
	}
}

func TestDecodePageMalformedConfigDegrades(t *testing.T) {
	rec := PageRecord{ID: "p1", PageNumber: 1}
	rows := []AssetRecord{{
		ID: "bad", PageID: "p1", AssetType: "image", URL: "/media/x.jpg",
		X: 1, Y: 2, Width: 10, Height: 10,
		Config: sql.NullString{Valid: true, String: `{not json`},
	}}

	got := DecodePage(rec, rows)
	if len(got.Assets) != 1 {
		t.Fatalf("decoded %d assets, want 1", len(got.Assets))
	}
	if got.Assets[0].Type != album.AssetImage {
		t.Errorf("asset type = %q, want image", got.Assets[0].Type)
	}
}

func TestDecodeConfigDefaults(t *testing.T) {
	cfg := DecodeConfig("")
	def := album.DefaultConfig()
	if cfg != def {
		t.Errorf("empty blob should produce defaults, got %+v", cfg)
	}

	cfg = DecodeConfig(`{"pageWidth": 0, "useSpreadView": true}`)
	if cfg.PageWidth != def.PageWidth {
		t.Errorf("zero page width should fall back to default, got %d", cfg.PageWidth)
	}
	if !cfg.UseSpreadView {
		t.Error("explicit field lost")
	}

	cfg = DecodeConfig(`{broken`)
	if cfg != def {
		t.Errorf("malformed blob should produce defaults, got %+v", cfg)
	}
}

func TestUnplacedRoundTrip(t *testing.T) {
	a := &album.Album{
		ID:       "a1",
		FamilyID: "fam",
		Title:    "T",
		Unplaced: []album.Asset{
			{ID: "u1", Type: album.AssetImage, URL: "/media/u.jpg", X: 0, Y: 0, Width: 30, Height: 30, ZIndex: 1},
		},
	}

	meta, err := AlbumToMeta(a)
	if err != nil {
		t.Fatalf("AlbumToMeta: %v", err)
	}
	if meta.Unplaced == "" {
		t.Fatal("unplaced blob not written")
	}

	var back album.Album
	MetaToAlbum(meta, &back)
	if len(back.Unplaced) != 1 || back.Unplaced[0].ID != "u1" {
		t.Errorf("unplaced assets lost: %+v", back.Unplaced)
	}
}
