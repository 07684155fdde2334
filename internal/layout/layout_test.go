package layout

import (
	"fmt"
	"testing"

	"github.com/heritage-moments/album-studio/internal/album"
)

// testIDGen returns a deterministic id generator for placeholder assets.
func testIDGen() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ph-%d", n)
	}
}

func mediaAsset(id string) album.Asset {
	return album.Asset{ID: id, Type: album.AssetImage, URL: "https://cdn/" + id, X: 1, Y: 1, Width: 10, Height: 10, ZIndex: 1}
}

func threeSlotTemplate() Template {
	return Template{
		Name:       "test-three",
		PhotoCount: 3,
		Slots: []Slot{
			{X: 0, Y: 0, Width: 33, Height: 50, ZIndex: 10},
			{X: 33, Y: 0, Width: 33, Height: 50, ZIndex: 10},
			{X: 66, Y: 0, Width: 33, Height: 50, ZIndex: 10},
		},
	}
}

func TestCatalogLoads(t *testing.T) {
	cat := Catalog()
	if len(cat) == 0 {
		t.Fatal("embedded catalog is empty")
	}
	for _, tpl := range cat {
		if tpl.Name == "" {
			t.Error("template with empty name")
		}
		if len(tpl.Slots) == 0 {
			t.Errorf("template %q has no slots", tpl.Name)
		}
		if len(tpl.Slots) != tpl.PhotoCount {
			t.Errorf("template %q: %d slots but photo count %d", tpl.Name, len(tpl.Slots), tpl.PhotoCount)
		}
		for i, slot := range tpl.Slots {
			if slot.Width <= 0 || slot.Height <= 0 {
				t.Errorf("template %q slot %d has non-positive size", tpl.Name, i)
			}
			limit := 100.0
			if tpl.Spread {
				limit = 200.0
			}
			if slot.X+slot.Width > limit+0.001 {
				t.Errorf("template %q slot %d overflows the page (x=%v w=%v)", tpl.Name, i, slot.X, slot.Width)
			}
		}
	}
}

func TestGet(t *testing.T) {
	if _, ok := Get("quad-grid"); !ok {
		t.Error("expected quad-grid in catalog")
	}
	if _, ok := Get("nope"); ok {
		t.Error("unexpected template found")
	}
}

func TestApplySingleSurplusMediaDropped(t *testing.T) {
	page := album.Page{ID: "p1", Assets: []album.Asset{
		mediaAsset("m1"), mediaAsset("m2"), mediaAsset("m3"), mediaAsset("m4"), mediaAsset("m5"),
	}}

	ApplySingle(&page, threeSlotTemplate(), testIDGen())

	if len(page.Assets) != 3 {
		t.Fatalf("expected exactly 3 assets, got %d", len(page.Assets))
	}
	for i, a := range page.Assets {
		if a.Placeholder {
			t.Errorf("asset %d unexpectedly a placeholder", i)
		}
		if a.FitMode != album.FitCover {
			t.Errorf("asset %d fit mode = %q, want cover", i, a.FitMode)
		}
	}
	// Ordinal assignment: first three media in their existing order.
	if page.Assets[0].ID != "m1" || page.Assets[1].ID != "m2" || page.Assets[2].ID != "m3" {
		t.Errorf("ordinal assignment broken: %s %s %s", page.Assets[0].ID, page.Assets[1].ID, page.Assets[2].ID)
	}
	if page.Layout != "test-three" {
		t.Errorf("page layout = %q, want test-three", page.Layout)
	}
}

func TestApplySinglePlaceholdersFillSlots(t *testing.T) {
	page := album.Page{ID: "p1", Assets: []album.Asset{mediaAsset("m1")}}

	ApplySingle(&page, threeSlotTemplate(), testIDGen())

	if len(page.Assets) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(page.Assets))
	}
	placeholders := 0
	for _, a := range page.Assets {
		if a.Placeholder {
			placeholders++
			if a.URL != "" {
				t.Errorf("placeholder %s carries a url", a.ID)
			}
		}
	}
	if placeholders != 2 {
		t.Errorf("expected 2 placeholders, got %d", placeholders)
	}
}

func TestApplySinglePreservesNonMedia(t *testing.T) {
	text := album.Asset{ID: "t1", Type: album.AssetText, X: 40, Y: 90, Width: 20, Height: 8, ZIndex: 50, Text: album.TextStyle{Content: "Summer"}}
	sticker := album.Asset{ID: "s1", Type: album.AssetSticker, X: 80, Y: 80, Width: 10, Height: 10, ZIndex: 20}
	page := album.Page{ID: "p1", Assets: []album.Asset{mediaAsset("m1"), text, sticker}}

	ApplySingle(&page, threeSlotTemplate(), testIDGen())

	var gotText, gotSticker *album.Asset
	for i := range page.Assets {
		switch page.Assets[i].ID {
		case "t1":
			gotText = &page.Assets[i]
		case "s1":
			gotSticker = &page.Assets[i]
		}
	}
	if gotText == nil || gotSticker == nil {
		t.Fatal("non-media assets were dropped by the layout")
	}
	if gotText.X != 40 || gotText.Y != 90 || gotText.Text.Content != "Summer" {
		t.Errorf("text asset was repositioned: %+v", gotText)
	}
	if gotSticker.X != 80 {
		t.Errorf("sticker asset was repositioned: %+v", gotSticker)
	}
}

func TestApplySingleClearsCrop(t *testing.T) {
	a := mediaAsset("m1")
	a.ClipPath = []album.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 1}}
	page := album.Page{ID: "p1", Assets: []album.Asset{a}}

	ApplySingle(&page, Template{Name: "one", Slots: []Slot{{X: 0, Y: 0, Width: 100, Height: 100, ZIndex: 10}}}, testIDGen())

	if page.Assets[0].ClipPath != nil {
		t.Error("clip path must be cleared when a layout is applied")
	}
}

func TestApplySpreadDistribution(t *testing.T) {
	tpl := Template{
		Name:   "test-spread",
		Spread: true,
		Slots: []Slot{
			{X: 5, Y: 10, Width: 90, Height: 80, ZIndex: 10},   // left page
			{X: 105, Y: 10, Width: 42, Height: 38, ZIndex: 10}, // right page
			{X: 153, Y: 10, Width: 42, Height: 38, ZIndex: 10}, // right page
		},
	}
	left := album.Page{ID: "L", Assets: []album.Asset{mediaAsset("m1")}}
	right := album.Page{ID: "R", Assets: []album.Asset{mediaAsset("m2")}}

	ApplySpread(&left, &right, tpl, testIDGen())

	if len(left.Assets) != 1 {
		t.Fatalf("left page: expected 1 asset, got %d", len(left.Assets))
	}
	if left.Assets[0].ID != "m1" {
		t.Errorf("left slot should take the first pooled media, got %s", left.Assets[0].ID)
	}
	if len(right.Assets) != 2 {
		t.Fatalf("right page: expected 2 assets, got %d", len(right.Assets))
	}
	// Pool continues onto the right page, remainder becomes a placeholder.
	if right.Assets[0].ID != "m2" || right.Assets[0].Placeholder {
		t.Errorf("right first slot = %+v, want m2", right.Assets[0])
	}
	if !right.Assets[1].Placeholder {
		t.Errorf("right second slot should be a placeholder, got %+v", right.Assets[1])
	}
	// Right-page slots are shifted back into page-local space.
	if right.Assets[0].X != 5 {
		t.Errorf("right slot x = %v, want 5 (105 shifted by -100)", right.Assets[0].X)
	}
}

func TestApplySpreadPoolsBothPages(t *testing.T) {
	tpl := Template{
		Name:   "one-each",
		Spread: true,
		Slots: []Slot{
			{X: 0, Y: 0, Width: 100, Height: 100, ZIndex: 10},
			{X: 100, Y: 0, Width: 100, Height: 100, ZIndex: 10},
		},
	}
	// All media starts on the right page; the left slot must still be
	// filled first from the pooled sequence.
	left := album.Page{ID: "L"}
	right := album.Page{ID: "R", Assets: []album.Asset{mediaAsset("m1"), mediaAsset("m2")}}

	ApplySpread(&left, &right, tpl, testIDGen())

	if len(left.Assets) != 1 || left.Assets[0].ID != "m1" {
		t.Errorf("left page should receive the first pooled media, got %+v", left.Assets)
	}
	if len(right.Assets) != 1 || right.Assets[0].ID != "m2" {
		t.Errorf("right page should receive the second pooled media, got %+v", right.Assets)
	}
}
