// Package album defines the canonical in-memory model for heritage albums:
// the Album aggregate, its Pages and the visual Assets placed on them.
// All geometry is expressed in percent of the owning page box (0-100),
// which keeps layouts resolution independent.
package album

import (
	"time"
)

// AssetType identifies the kind of visual element on a page.
type AssetType string

// Asset type values.
const (
	AssetImage   AssetType = "image"
	AssetVideo   AssetType = "video"
	AssetRibbon  AssetType = "ribbon"
	AssetFrame   AssetType = "frame"
	AssetText    AssetType = "text"
	AssetSticker AssetType = "sticker"
	AssetShape   AssetType = "shape"
	AssetMap     AssetType = "map"
	AssetPin     AssetType = "location"
)

// FitMode controls how media fills its frame.
type FitMode string

// Fit mode values.
const (
	FitContain  FitMode = "fit"
	FitFill     FitMode = "fill"
	FitCover    FitMode = "cover"
	FitStretch  FitMode = "stretch"
	FitOriginal FitMode = "original"
)

// Layout name markers for cover pages. Covers are pinned to the first and
// last position of an album and are exempt from reordering and deletion.
const (
	LayoutFreeform   = "freeform"
	LayoutCoverFront = "cover-front"
	LayoutCoverBack  = "cover-back"
)

// Point is a relative coordinate (0-1) used for clip polygons.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Adjustments holds the optional visual tuning scalars for an asset.
// Zero values mean "not set"; renderers apply their own defaults.
type Adjustments struct {
	Brightness      float64 `json:"brightness,omitempty"`
	Contrast        float64 `json:"contrast,omitempty"`
	Saturation      float64 `json:"saturation,omitempty"`
	Hue             float64 `json:"hue,omitempty"`
	Blur            float64 `json:"blur,omitempty"`
	Sepia           float64 `json:"sepia,omitempty"`
	FilterPreset    string  `json:"filterPreset,omitempty"`
	FilterIntensity float64 `json:"filterIntensity,omitempty"`
	BorderRadius    float64 `json:"borderRadius,omitempty"`
	BorderColor     string  `json:"borderColor,omitempty"`
	BorderWidth     float64 `json:"borderWidth,omitempty"`
	Opacity         float64 `json:"opacity,omitempty"` // 0-100; 0 means unset
}

// TextStyle holds the text-specific fields of a text asset.
type TextStyle struct {
	Content string `json:"content,omitempty"`
	Font    string `json:"font,omitempty"`
	Align   string `json:"align,omitempty"`
	Color   string `json:"color,omitempty"`
}

// Asset is one visual element on a page. Position and size are percentages
// of the owning page box. X/Y may legitimately leave the 0-100 range while
// a drag is in flight; they are normalized into the owning page's space
// before persistence.
type Asset struct {
	ID       string    `json:"id"`
	Type     AssetType `json:"type"`
	URL      string    `json:"url"` // empty means unfilled placeholder
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width"`  // must be > 0
	Height   float64   `json:"height"` // must be > 0
	Rotation float64   `json:"rotation,omitempty"`
	ZIndex   int       `json:"zIndex"`

	PivotX   float64 `json:"pivotX,omitempty"` // 0-1, 0.5 when unset
	PivotY   float64 `json:"pivotY,omitempty"`
	ClipPath []Point `json:"clipPath,omitempty"`
	FitMode  FitMode `json:"fitMode,omitempty"`

	Adjust Adjustments `json:"adjust,omitempty"`
	Text   TextStyle   `json:"text,omitempty"`

	Locked      bool `json:"locked,omitempty"`
	Hidden      bool `json:"hidden,omitempty"`
	Placeholder bool `json:"placeholder,omitempty"`
}

// IsMedia reports whether the asset carries uploaded media, as opposed to
// decorations and text which layout templates must leave untouched.
func (a *Asset) IsMedia() bool {
	return a.Type == AssetImage || a.Type == AssetVideo
}

// Clone returns a deep copy of the asset.
func (a Asset) Clone() Asset {
	c := a
	if a.ClipPath != nil {
		c.ClipPath = make([]Point, len(a.ClipPath))
		copy(c.ClipPath, a.ClipPath)
	}
	return c
}

// Background describes a page background.
type Background struct {
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	Image   string  `json:"image,omitempty"`
}

// Page is one side of the album. Number is 1-based and contiguous across
// the album; it is recomputed on every structural mutation. Asset order
// does not imply stacking - ZIndex does.
type Page struct {
	ID         string     `json:"id"`
	Number     int        `json:"number"`
	Layout     string     `json:"layout"`
	Assets     []Asset    `json:"assets"`
	Background Background `json:"background,omitempty"`
}

// IsCover reports whether the page is a front or back cover.
func (p *Page) IsCover() bool {
	return p.Layout == LayoutCoverFront || p.Layout == LayoutCoverBack
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	c := p
	c.Assets = make([]Asset, len(p.Assets))
	for i := range p.Assets {
		c.Assets[i] = p.Assets[i].Clone()
	}
	return c
}

// Config holds per-album editor settings.
type Config struct {
	PageWidth     int     `json:"pageWidth"`  // pixels
	PageHeight    int     `json:"pageHeight"` // pixels
	Bleed         float64 `json:"bleed"`      // percent inset
	Gutter        float64 `json:"gutter"`
	UseSpreadView bool    `json:"useSpreadView"`
	ShowGrid      bool    `json:"showGrid"`
	SnapSize      float64 `json:"snapSize"`
	SyncStyles    bool    `json:"syncStyles"`
	IsLocked      bool    `json:"isLocked"`
}

// DefaultConfig returns the editor settings for a freshly created album.
func DefaultConfig() Config {
	return Config{
		PageWidth:  1080,
		PageHeight: 1080,
		Bleed:      3,
		Gutter:     2,
		SnapSize:   1,
	}
}

// Album is the aggregate root. It exclusively owns its Pages and its
// Unplaced staging assets; a Page exclusively owns its Assets.
type Album struct {
	ID          string   `json:"id"`
	FamilyID    string   `json:"familyId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
	CoverImage  string   `json:"coverImage,omitempty"`

	Pages    []Page  `json:"pages"`
	Unplaced []Asset `json:"unplaced,omitempty"`
	Config   Config  `json:"config"`

	Published bool   `json:"published"`
	Location  string `json:"location,omitempty"`
	Country   string `json:"country,omitempty"`
	Geotag    string `json:"geotag,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the album.
func (al Album) Clone() Album {
	c := al
	c.Pages = make([]Page, len(al.Pages))
	for i := range al.Pages {
		c.Pages[i] = al.Pages[i].Clone()
	}
	c.Unplaced = make([]Asset, len(al.Unplaced))
	for i := range al.Unplaced {
		c.Unplaced[i] = al.Unplaced[i].Clone()
	}
	if al.Hashtags != nil {
		c.Hashtags = make([]string, len(al.Hashtags))
		copy(c.Hashtags, al.Hashtags)
	}
	return c
}

// Renumber rewrites page numbers to the contiguous sequence 1..N in slice
// order. Call after every structural page mutation.
func Renumber(pages []Page) {
	for i := range pages {
		pages[i].Number = i + 1
	}
}

// FindPage returns the index of the page with the given id, or -1.
func (al *Album) FindPage(pageID string) int {
	for i := range al.Pages {
		if al.Pages[i].ID == pageID {
			return i
		}
	}
	return -1
}

// FindAsset locates an asset by id, returning the owning page index and the
// asset index within that page, or (-1, -1) when not placed on any page.
func (al *Album) FindAsset(assetID string) (pageIdx, assetIdx int) {
	for i := range al.Pages {
		for j := range al.Pages[i].Assets {
			if al.Pages[i].Assets[j].ID == assetID {
				return i, j
			}
		}
	}
	return -1, -1
}

// DefaultPages returns the four page skeleton for an album with no stored
// pages: front cover, two freeform content pages, back cover.
func DefaultPages(newID func() string) []Page {
	pages := []Page{
		{ID: newID(), Layout: LayoutCoverFront},
		{ID: newID(), Layout: LayoutFreeform},
		{ID: newID(), Layout: LayoutFreeform},
		{ID: newID(), Layout: LayoutCoverBack},
	}
	Renumber(pages)
	return pages
}
