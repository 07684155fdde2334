package snap

import (
	"math"
	"testing"
)

func hasGuide(guides []Guide, axis Axis, position float64) bool {
	for _, g := range guides {
		if g.Axis == axis && math.Abs(g.Position-position) < 0.0001 {
			return true
		}
	}
	return false
}

func TestComputeGridColumnSnap(t *testing.T) {
	// Column boundaries on a single page sit every 100/12 percent. The
	// second boundary is at 16.666...; a left edge within 1 point must
	// snap to it exactly.
	boundary := 100.0 / 12.0 * 2
	moving := Rect{X: boundary + 0.7, Y: 40, Width: 20, Height: 20}

	res := Compute(moving, nil, Options{})
	if math.Abs(res.SnappedX-boundary) > 0.0001 {
		t.Errorf("SnappedX = %v, want exact boundary %v", res.SnappedX, boundary)
	}
	if !hasGuide(res.Guides, Vertical, boundary) {
		t.Errorf("expected vertical guide at %v, got %v", boundary, res.Guides)
	}
}

func TestComputeRightEdgeSnap(t *testing.T) {
	boundary := 100.0 / 12.0 * 6 // 50
	moving := Rect{X: boundary - 20 + 0.4, Y: 40, Width: 20, Height: 20}

	res := Compute(moving, nil, Options{})
	if math.Abs(res.SnappedX-(boundary-20)) > 0.0001 {
		t.Errorf("SnappedX = %v, want %v", res.SnappedX, boundary-20)
	}
	if !hasGuide(res.Guides, Vertical, boundary) {
		t.Errorf("expected vertical guide at %v", boundary)
	}
}

func TestComputeRoundingBaseline(t *testing.T) {
	// Far from every guide: position just rounds to the nearest percent.
	moving := Rect{X: 37.4, Y: 61.6, Width: 10, Height: 10}
	res := Compute(moving, nil, Options{})
	if res.SnappedX != 37 {
		t.Errorf("SnappedX = %v, want 37", res.SnappedX)
	}
	if res.SnappedY != 62 {
		t.Errorf("SnappedY = %v, want 62", res.SnappedY)
	}
	if len(res.Guides) != 0 {
		t.Errorf("expected no guides, got %v", res.Guides)
	}
}

func TestComputePageCenterSnap(t *testing.T) {
	moving := Rect{X: 40.6, Y: 40, Width: 20, Height: 20} // center at 50.6
	res := Compute(moving, nil, Options{})
	if math.Abs(res.SnappedX-40) > 0.0001 {
		t.Errorf("SnappedX = %v, want 40 (center on 50)", res.SnappedX)
	}
	if !hasGuide(res.Guides, Vertical, 50) {
		t.Errorf("expected center guide at 50, got %v", res.Guides)
	}
}

func TestComputeSpreadCenterSnap(t *testing.T) {
	// Element centered near x=100, the seam between the two pages of a
	// spread.
	moving := Rect{X: 90.8, Y: 30, Width: 20, Height: 10}
	res := Compute(moving, nil, Options{SpreadView: true})
	if math.Abs(res.SnappedX-90) > 0.0001 {
		t.Errorf("SnappedX = %v, want 90 (center on 100)", res.SnappedX)
	}
	if !hasGuide(res.Guides, Vertical, 100) {
		t.Errorf("expected spread-center guide at 100, got %v", res.Guides)
	}
}

func TestComputeBleedSnap(t *testing.T) {
	moving := Rect{X: 3.8, Y: 50, Width: 11.3, Height: 10}
	res := Compute(moving, nil, Options{})
	if math.Abs(res.SnappedX-BleedInset) > 0.0001 {
		t.Errorf("SnappedX = %v, want bleed inset %v", res.SnappedX, BleedInset)
	}
	if !hasGuide(res.Guides, Vertical, BleedInset) {
		t.Errorf("expected bleed guide at %v", BleedInset)
	}
}

func TestComputeSiblingSnap(t *testing.T) {
	sib := Rect{X: 22.3, Y: 10, Width: 30, Height: 15}
	moving := Rect{X: 22.9, Y: 40, Width: 10, Height: 10}

	res := Compute(moving, []Rect{sib}, Options{})
	if math.Abs(res.SnappedX-22.3) > 0.0001 {
		t.Errorf("SnappedX = %v, want sibling left edge 22.3", res.SnappedX)
	}
	if !hasGuide(res.Guides, Vertical, 22.3) {
		t.Errorf("expected sibling guide at 22.3, got %v", res.Guides)
	}
}

func TestComputeLastRuleWins(t *testing.T) {
	// A sibling left edge sits within threshold of the same position as a
	// grid boundary match. Siblings are evaluated last, so the sibling
	// value must win even though both guides are emitted.
	boundary := 100.0 / 12.0 * 3 // 25
	sib := Rect{X: boundary + 0.6, Y: 10, Width: 10, Height: 10}
	moving := Rect{X: boundary + 0.3, Y: 40, Width: 10, Height: 10}

	res := Compute(moving, []Rect{sib}, Options{})
	if math.Abs(res.SnappedX-sib.X) > 0.0001 {
		t.Errorf("SnappedX = %v, want sibling value %v (last rule wins)", res.SnappedX, sib.X)
	}
	if !hasGuide(res.Guides, Vertical, boundary) || !hasGuide(res.Guides, Vertical, sib.X) {
		t.Errorf("expected both guides to fire, got %v", res.Guides)
	}
}

func TestComputeSpreadGridDoubles(t *testing.T) {
	// In spread view the grid has 24 columns over 200 units, so boundaries
	// stay at the same pitch; boundary 13 sits at 108.33 on the right page.
	boundary := 200.0 / 24.0 * 13
	moving := Rect{X: boundary - 0.5, Y: 20, Width: 15, Height: 10}

	res := Compute(moving, nil, Options{SpreadView: true})
	if math.Abs(res.SnappedX-boundary) > 0.0001 {
		t.Errorf("SnappedX = %v, want %v", res.SnappedX, boundary)
	}
}

func TestComputePure(t *testing.T) {
	moving := Rect{X: 10.2, Y: 20.4, Width: 5, Height: 5}
	sibs := []Rect{{X: 40, Y: 40, Width: 10, Height: 10}}
	before := sibs[0]

	_ = Compute(moving, sibs, Options{})
	if sibs[0] != before {
		t.Error("Compute mutated its sibling input")
	}
}
