// Package layout applies named page-layout templates to album pages.
// A template is a read-only ordered list of percentage-based slots; applying
// one repositions the page's media assets into the slots by ordinal, fills
// leftover slots with placeholder frames and leaves text and decoration
// assets untouched.
package layout

import (
	_ "embed"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/heritage-moments/album-studio/internal/album"
)

//go:embed layouts.yaml
var catalogYAML []byte

// Slot is one placement rectangle within a template. Coordinates are
// percent of a single page, or 0-200 across a spread template.
type Slot struct {
	X        float64 `yaml:"x" json:"x"`
	Y        float64 `yaml:"y" json:"y"`
	Width    float64 `yaml:"width" json:"width"`
	Height   float64 `yaml:"height" json:"height"`
	ZIndex   int     `yaml:"z" json:"zIndex"`
	Rotation float64 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
}

// Template is a named layout with its slot list. Templates are catalog
// data; they are never mutated at runtime.
type Template struct {
	Name        string  `yaml:"name" json:"name"`
	Category    string  `yaml:"category" json:"category"`
	PhotoCount  int     `yaml:"photos" json:"photoCount"`
	AspectRatio float64 `yaml:"aspect" json:"aspectRatio"`
	Spread      bool    `yaml:"spread" json:"spread"`
	Slots       []Slot  `yaml:"slots" json:"slots"`
}

type catalogData struct {
	Layouts []Template `yaml:"layouts"`
}

var (
	catalogOnce sync.Once
	catalog     []Template
	catalogIdx  map[string]Template
)

func loadCatalog() {
	var data catalogData
	if err := yaml.Unmarshal(catalogYAML, &data); err != nil {
		// The catalog is an embedded file; failing to parse it is a build
		// defect, not a runtime condition.
		panic("layout: failed to unmarshal embedded layouts.yaml: " + err.Error())
	}
	catalog = data.Layouts
	catalogIdx = make(map[string]Template, len(catalog))
	for _, tpl := range catalog {
		catalogIdx[tpl.Name] = tpl
	}
}

// Catalog returns every template in the embedded catalog.
func Catalog() []Template {
	catalogOnce.Do(loadCatalog)
	return catalog
}

// Get returns the template with the given name.
func Get(name string) (Template, bool) {
	catalogOnce.Do(loadCatalog)
	tpl, ok := catalogIdx[name]
	return tpl, ok
}

// ByCategory returns the templates of one category, sorted by photo count.
func ByCategory(category string) []Template {
	var out []Template
	for _, tpl := range Catalog() {
		if tpl.Category == category {
			out = append(out, tpl)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PhotoCount < out[j].PhotoCount })
	return out
}

// newPlaceholder builds an empty frame asset for an unfilled slot.
func newPlaceholder(slot Slot, id string) album.Asset {
	return album.Asset{
		ID:          id,
		Type:        album.AssetImage,
		URL:         "",
		X:           slot.X,
		Y:           slot.Y,
		Width:       slot.Width,
		Height:      slot.Height,
		ZIndex:      slot.ZIndex,
		Rotation:    slot.Rotation,
		FitMode:     album.FitCover,
		Placeholder: true,
	}
}

// placeInSlot moves an existing media asset into a slot frame. The crop is
// cleared and the fit mode forced to cover so the media fills the slot.
func placeInSlot(a album.Asset, slot Slot) album.Asset {
	a.X = slot.X
	a.Y = slot.Y
	a.Width = slot.Width
	a.Height = slot.Height
	a.ZIndex = slot.ZIndex
	a.Rotation = slot.Rotation
	a.FitMode = album.FitCover
	a.ClipPath = nil
	a.Placeholder = false
	return a
}

// ApplySingle applies a single-page template to one page. Media assets are
// matched to slots by ordinal in their existing order; slots beyond the
// media count get placeholders; media beyond the slot count loses its
// placement on the page (the underlying file is untouched). Non-media
// assets pass through unchanged.
func ApplySingle(p *album.Page, tpl Template, newID func() string) {
	var media, kept []album.Asset
	for _, a := range p.Assets {
		if a.IsMedia() && !a.Placeholder {
			media = append(media, a)
		} else if !a.IsMedia() {
			kept = append(kept, a)
		}
	}

	placed := make([]album.Asset, 0, len(tpl.Slots)+len(kept))
	for i, slot := range tpl.Slots {
		if i < len(media) {
			placed = append(placed, placeInSlot(media[i], slot))
		} else {
			placed = append(placed, newPlaceholder(slot, newID()))
		}
	}

	p.Assets = append(placed, kept...)
	p.Layout = tpl.Name
}

// splitSpreadSlots partitions a spread template's slots by their un-shifted
// x coordinate: slots starting left of x=100 belong to the left page, the
// rest to the right page shifted back into page-local space.
func splitSpreadSlots(tpl Template) (left, right []Slot) {
	for _, slot := range tpl.Slots {
		if slot.X < album.PageSpan {
			left = append(left, slot)
		} else {
			shifted := slot
			shifted.X -= album.PageSpan
			right = append(right, shifted)
		}
	}
	return left, right
}

// ApplySpread applies a spread template across a page pair. Media from
// both pages is pooled into one ordered sequence and distributed into the
// left page's slots first, then the right page's, in slot order;
// placeholders fill any remainder on either page.
func ApplySpread(leftPage, rightPage *album.Page, tpl Template, newID func() string) {
	leftSlots, rightSlots := splitSpreadSlots(tpl)

	var pool []album.Asset
	var keptLeft, keptRight []album.Asset
	for _, a := range leftPage.Assets {
		if a.IsMedia() && !a.Placeholder {
			pool = append(pool, a)
		} else if !a.IsMedia() {
			keptLeft = append(keptLeft, a)
		}
	}
	for _, a := range rightPage.Assets {
		if a.IsMedia() && !a.Placeholder {
			pool = append(pool, a)
		} else if !a.IsMedia() {
			keptRight = append(keptRight, a)
		}
	}

	next := 0
	fill := func(slots []Slot) []album.Asset {
		out := make([]album.Asset, 0, len(slots))
		for _, slot := range slots {
			if next < len(pool) {
				out = append(out, placeInSlot(pool[next], slot))
				next++
			} else {
				out = append(out, newPlaceholder(slot, newID()))
			}
		}
		return out
	}

	leftPage.Assets = append(fill(leftSlots), keptLeft...)
	rightPage.Assets = append(fill(rightSlots), keptRight...)
	leftPage.Layout = tpl.Name
	rightPage.Layout = tpl.Name
}
