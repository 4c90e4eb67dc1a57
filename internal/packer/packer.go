// Package packer implements C3: rectangle packing of panels onto a sheet.
// Two independent strategies are provided — Guillotine (end-to-end cuts
// only, for format-saw machines) and MaxRects (inner cuts allowed, for
// routing CNCs) — and Pack runs the "best of three" policy: guillotine
// no-rotate, guillotine with-rotate, max-rects with-rotate, keeping the
// highest-utilization result. The max-rects insert/split core is ported
// from the teacher's internal/engine/optimizer.go guillotinePacker (whose
// own comment notes it already performs maximal-rectangle splitting);
// Guillotine is a new, stricter single-axis-split implementation added to
// give the two distinct strategies the spec requires.
package packer

import (
	"sort"

	"github.com/furnicam/furnicam/internal/camerr"
)

// Grain mirrors calc.Grain without importing the calc package — the
// Calculator → Packable conversion carries the value across explicitly.
type Grain int

const (
	GrainNone Grain = iota
	GrainHorizontal
	GrainVertical
)

// PackablePanel is the second link in the Calculator → Packable → DXF
// panel chain: only the fields the packer needs to place a rectangle.
type PackablePanel struct {
	ID      string
	Name    string
	WidthMM float64
	HeightMM float64
	Grain   Grain
}

// PlacedPanel is a PackablePanel with sheet coordinates. Rotated is an
// explicit, recorded transform — consumers must not assume width/height
// stay as given.
type PlacedPanel struct {
	Panel   PackablePanel
	X       float64
	Y       float64
	Rotated bool
}

// W returns the panel's footprint width in sheet space, accounting for rotation.
func (p PlacedPanel) W() float64 {
	if p.Rotated {
		return p.Panel.HeightMM
	}
	return p.Panel.WidthMM
}

// H returns the panel's footprint height in sheet space, accounting for rotation.
func (p PlacedPanel) H() float64 {
	if p.Rotated {
		return p.Panel.WidthMM
	}
	return p.Panel.HeightMM
}

// SheetLayout is the result of packing one set of panels onto one sheet.
type SheetLayout struct {
	SheetWidthMM      float64
	SheetHeightMM     float64
	Placed            []PlacedPanel
	Unplaced          []PackablePanel
	UtilizationPercent float64
}

// Strategy names of the three candidate layouts Pack compares. SheetLayout
// does not record which strategy produced it.
const (
	StrategyGuillotineNoRotate = "guillotine_no_rotate"
	StrategyGuillotineRotate   = "guillotine_rotate"
	StrategyMaxRects           = "max_rects_rotate"
)

// Pack runs the best-of-three policy and returns the highest-utilization
// layout. gapMM is the saw-kerf clearance reserved around every panel.
func Pack(panels []PackablePanel, sheetWidthMM, sheetHeightMM, gapMM float64) (SheetLayout, error) {
	if sheetWidthMM <= 0 || sheetHeightMM <= 0 {
		return SheetLayout{}, camerr.InvalidInput("sheet dimensions must be positive")
	}
	if gapMM < 0 {
		return SheetLayout{}, camerr.InvalidInput("gap must not be negative")
	}

	if len(panels) == 0 {
		return SheetLayout{SheetWidthMM: sheetWidthMM, SheetHeightMM: sheetHeightMM}, nil
	}

	sorted := make([]PackablePanel, len(panels))
	copy(sorted, panels)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WidthMM*sorted[i].HeightMM > sorted[j].WidthMM*sorted[j].HeightMM
	})

	candidates := []SheetLayout{
		guillotinePack(sorted, sheetWidthMM, sheetHeightMM, gapMM, false),
		guillotinePack(sorted, sheetWidthMM, sheetHeightMM, gapMM, true),
		maxRectsPack(sorted, sheetWidthMM, sheetHeightMM, gapMM, true),
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.UtilizationPercent > best.UtilizationPercent {
			best = c
		}
	}
	return best, nil
}

// canRotate reports whether a panel may be rotated given its grain
// constraint: grain-constrained panels are only rotated if allowRotate is
// true AND the panel has no grain lock (GrainNone) — panels that declare a
// grain direction never rotate, matching the teacher's
// model.CanPlaceWithGrain gate, carried here as an additive, optional hint.
func canRotate(p PackablePanel, allowRotate bool) bool {
	if !allowRotate {
		return false
	}
	return p.Grain == GrainNone
}

func utilization(placed []PlacedPanel, sheetW, sheetH float64) float64 {
	if sheetW <= 0 || sheetH <= 0 {
		return 0
	}
	var area float64
	for _, p := range placed {
		area += p.Panel.WidthMM * p.Panel.HeightMM
	}
	return 100 * area / (sheetW * sheetH)
}
