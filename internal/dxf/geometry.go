package dxf

// Point is a 2D coordinate in sheet space (millimeters).
type Point struct{ X, Y float64 }

// edgeOffsetMM is the visual standoff for the EDGE-layer lines drawn
// parallel to a banded side — a visual cue only, not a cut path, per
// spec.md §4.4. Matches original_source/api/dxf_generator.py's
// edge_offset constant.
const edgeOffsetMM = 2.0

// Contour returns the closed rectangle (5 points, last == first) tracing
// panel at its sheet position, with width/height already swapped for
// rotation.
func Contour(p Panel) []Point {
	w, h := p.footprint()
	x, y := p.X, p.Y
	return []Point{
		{x, y},
		{x + w, y},
		{x + w, y + h},
		{x, y + h},
		{x, y},
	}
}

// EdgeLine is one EDGE-layer line segment for a banded side.
type EdgeLine struct {
	A, B Point
}

// EdgeLines returns one offset line per edge-banded side of the panel,
// in the same order as original_source/api/dxf_generator.py: bottom,
// top, left, right — only for sides whose Edge* flag is set.
func EdgeLines(p Panel) []EdgeLine {
	w, h := p.footprint()
	x, y := p.X, p.Y
	var lines []EdgeLine
	if p.EdgeBottom {
		lines = append(lines, EdgeLine{Point{x, y - edgeOffsetMM}, Point{x + w, y - edgeOffsetMM}})
	}
	if p.EdgeTop {
		lines = append(lines, EdgeLine{Point{x, y + h + edgeOffsetMM}, Point{x + w, y + h + edgeOffsetMM}})
	}
	if p.EdgeFront {
		lines = append(lines, EdgeLine{Point{x - edgeOffsetMM, y}, Point{x - edgeOffsetMM, y + h}})
	}
	if p.EdgeBack {
		lines = append(lines, EdgeLine{Point{x + w + edgeOffsetMM, y}, Point{x + w + edgeOffsetMM, y + h}})
	}
	return lines
}

// DrillPosition maps a drilling point's panel-local coordinates
// (origin bottom-left of the UNROTATED panel) into sheet space, applying
// the panel's placement and, if rotated, a 90-degree coordinate swap:
// the rotation transform is explicit here, never assumed by the caller.
func DrillPosition(p Panel, localX, localY float64) Point {
	if p.Rotated {
		return Point{X: p.X + localY, Y: p.Y + (p.WidthMM - localX)}
	}
	return Point{X: p.X + localX, Y: p.Y + localY}
}

// SheetBoundary returns the closed rectangle tracing the stock sheet
// itself, drawn on the SHEET layer.
func SheetBoundary(widthMM, heightMM float64) []Point {
	return []Point{
		{0, 0},
		{widthMM, 0},
		{widthMM, heightMM},
		{0, heightMM},
		{0, 0},
	}
}

// LabelHeight returns the MTEXT character height for a panel label: 5% of
// the shorter footprint side, clamped to [8, 20]mm, per
// original_source/api/dxf_generator.py.
func LabelHeight(p Panel) float64 {
	w, h := p.footprint()
	short := w
	if h < short {
		short = h
	}
	height := short * 0.05
	if height < 8 {
		height = 8
	}
	if height > 20 {
		height = 20
	}
	return height
}

// LabelPosition returns the panel-center insertion point for its text label.
func LabelPosition(p Panel) Point {
	w, h := p.footprint()
	return Point{X: p.X + w/2, Y: p.Y + h/2}
}
