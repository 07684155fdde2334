// Package snap computes alignment snapping and guide lines for the album
// page editor. All functions are pure; the caller owns applying the snapped
// values to the asset being dragged or resized.
//
// Units are percent of a single page (0-100) or of a two-page spread
// (0-200). Rules are evaluated in a fixed order and every rule within
// threshold is allowed to fire; the last rule evaluated for an axis wins.
// That tie-break is order dependent on purpose - it mirrors the editor's
// observed behavior and must not be reordered.
package snap

import "math"

// Threshold is the snap distance in percentage points.
const Threshold = 1.0

// GridColumns is the column count of the single-page grid; a spread doubles it.
const GridColumns = 12

// BleedInset is the fixed bleed margin, percent from each page edge.
const BleedInset = 3.0

// Axis identifies a guide orientation.
type Axis string

// Guide orientations.
const (
	Vertical   Axis = "vertical"
	Horizontal Axis = "horizontal"
)

// Guide is one alignment line to render while a drag is in flight.
type Guide struct {
	Axis     Axis    `json:"axis"`
	Position float64 `json:"position"`
}

// Rect is the page-relative box of an element.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Options selects the coordinate space for a snap computation.
type Options struct {
	// SpreadView widens the space to 0-200 and doubles the grid.
	SpreadView bool
}

// Result is the outcome of one snap computation.
type Result struct {
	SnappedX float64 `json:"snappedX"`
	SnappedY float64 `json:"snappedY"`
	Guides   []Guide `json:"guides"`
}

// span returns the coordinate width: 100 single page, 200 spread.
func (o Options) span() float64 {
	if o.SpreadView {
		return 200
	}
	return 100
}

func (o Options) columns() int {
	if o.SpreadView {
		return GridColumns * 2
	}
	return GridColumns
}

// Compute snaps the moving rect against the grid, page centers, bleed lines
// and the sibling rects (the other unselected, visible assets of the same
// spread), returning the snapped position and the guides to render.
func Compute(moving Rect, siblings []Rect, opts Options) Result {
	span := opts.span()

	// Deterministic baseline: round to the nearest whole percent.
	res := Result{
		SnappedX: math.Round(moving.X),
		SnappedY: math.Round(moving.Y),
	}

	left := moving.X
	right := moving.X + moving.Width
	top := moving.Y
	centerX := moving.X + moving.Width/2
	centerY := moving.Y + moving.Height/2

	// Grid columns.
	cols := opts.columns()
	colW := span / float64(cols)
	for c := 0; c <= cols; c++ {
		boundary := float64(c) * colW
		if within(left, boundary) {
			res.SnappedX = boundary
			res.addGuide(Vertical, boundary)
		}
		if within(right, boundary) {
			res.SnappedX = boundary - moving.Width
			res.addGuide(Vertical, boundary)
		}
	}

	// Page center, and the spread center between the two pages.
	centers := []float64{span / 2}
	if opts.SpreadView {
		centers = []float64{50, 150, 100}
	}
	for _, cx := range centers {
		if within(centerX, cx) {
			res.SnappedX = cx - moving.Width/2
			res.addGuide(Vertical, cx)
		}
	}
	if within(centerY, 50) {
		res.SnappedY = 50 - moving.Height/2
		res.addGuide(Horizontal, 50)
	}

	// Bleed margins.
	for _, bx := range []float64{BleedInset, span - BleedInset} {
		if within(left, bx) {
			res.SnappedX = bx
			res.addGuide(Vertical, bx)
		}
		if within(right, bx) {
			res.SnappedX = bx - moving.Width
			res.addGuide(Vertical, bx)
		}
	}
	for _, by := range []float64{BleedInset, 100 - BleedInset} {
		if within(top, by) {
			res.SnappedY = by
			res.addGuide(Horizontal, by)
		}
		if within(top+moving.Height, by) {
			res.SnappedY = by - moving.Height
			res.addGuide(Horizontal, by)
		}
	}

	// Sibling edges and centers. Later matches overwrite earlier ones.
	for _, sib := range siblings {
		if within(left, sib.X) {
			res.SnappedX = sib.X
			res.addGuide(Vertical, sib.X)
		}
		sibCX := sib.X + sib.Width/2
		if within(centerX, sibCX) {
			res.SnappedX = sibCX - moving.Width/2
			res.addGuide(Vertical, sibCX)
		}
		if within(top, sib.Y) {
			res.SnappedY = sib.Y
			res.addGuide(Horizontal, sib.Y)
		}
		sibCY := sib.Y + sib.Height/2
		if within(centerY, sibCY) {
			res.SnappedY = sibCY - moving.Height/2
			res.addGuide(Horizontal, sibCY)
		}
	}

	return res
}

// within reports whether a coordinate is inside the snap threshold of a target.
func within(value, target float64) bool {
	return math.Abs(value-target) <= Threshold
}

func (r *Result) addGuide(axis Axis, position float64) {
	r.Guides = append(r.Guides, Guide{Axis: axis, Position: position})
}
