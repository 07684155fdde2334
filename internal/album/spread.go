package album

// Single-page and spread coordinate widths. Every asset position is a
// percentage of the page box, so a two-page spread spans 0-200 with the
// right page shifted by +100. This file is the only place that knows the
// pairing rule and the coordinate conversion; the snap engine and the web
// handlers both go through it.
const (
	PageSpan   = 100.0
	SpreadSpan = 200.0
)

// Spread is the set of 1 or 2 pages displayed and edited as one unit.
type Spread struct {
	// Left and Right are indices into the album's page list. A solo page
	// occupies Left; Right is -1.
	Left  int
	Right int
}

// IsSolo reports whether the spread holds a single page.
func (s Spread) IsSolo() bool {
	return s.Right < 0
}

// Span returns the coordinate-system width of the spread: 100 for a solo
// page, 200 for a pair.
func (s Spread) Span() float64 {
	if s.IsSolo() {
		return PageSpan
	}
	return SpreadSpan
}

// Contains reports whether the page index belongs to the spread.
func (s Spread) Contains(pageIdx int) bool {
	return pageIdx == s.Left || pageIdx == s.Right
}

// ResolveSpread resolves which pages visually belong together for the page
// at the given index. Covers are always solo. For non-cover pages an odd
// 0-based index is the left member of a pair with the following page and an
// even index is the right member paired with the preceding page; a pairing
// that would include a cover degrades to solo display. The rule is
// deterministic and symmetric: both members of a pair resolve to the same
// spread.
func ResolveSpread(pages []Page, index int, useSpreadView bool) Spread {
	solo := Spread{Left: index, Right: -1}
	if index < 0 || index >= len(pages) {
		return Spread{Left: -1, Right: -1}
	}
	if !useSpreadView || pages[index].IsCover() {
		return solo
	}
	if index%2 == 1 {
		// Left member; partner is the following page.
		partner := index + 1
		if partner >= len(pages) || pages[partner].IsCover() {
			return solo
		}
		return Spread{Left: index, Right: partner}
	}
	// Right member; partner is the preceding page.
	partner := index - 1
	if partner < 0 || pages[partner].IsCover() {
		return solo
	}
	return Spread{Left: partner, Right: index}
}

// ToSpreadX converts a page-local x coordinate to the spread coordinate
// space: assets on the right page of a pair are shifted by +100.
func (s Spread) ToSpreadX(pageIdx int, x float64) float64 {
	if pageIdx == s.Right {
		return x + PageSpan
	}
	return x
}

// FromSpreadX converts a spread x coordinate back into a page-local
// coordinate, returning the owning page index. Coordinates at or beyond
// x=100 on a pair belong to the right page.
func (s Spread) FromSpreadX(x float64) (pageIdx int, localX float64) {
	if !s.IsSolo() && x >= PageSpan {
		return s.Right, x - PageSpan
	}
	return s.Left, x
}
