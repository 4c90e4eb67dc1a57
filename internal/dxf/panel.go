// Package dxf implements C4, the DXF Writer: it turns a packed
// SheetLayout into a DXF document with five layers
// (CONTOUR/EDGE/DRILLING/TEXT/SHEET), grounded on
// original_source/api/dxf_generator.py's draw_panel/draw_sheet_boundary
// (which fixes the exact ACI layer-color table and the edge-offset/label
// conventions reused here) and the teacher's internal/importer/dxf.go for
// the entity shapes (github.com/yofu/dxf's entity.LwPolyline/entity.Circle
// field layout) this package emits the mirror image of.
package dxf

import (
	"github.com/furnicam/furnicam/internal/calc"
	"github.com/furnicam/furnicam/internal/packer"
)

// Panel is the third and final link in the Calculator → Packable → DXF
// panel chain (DESIGN NOTES §9): a placement joined back to the original
// CalculatorPanel's edge/drilling/material detail the packer stage
// dropped. Rotated stays an explicit, recorded field — nothing here
// assumes width/height swap on its own.
type Panel struct {
	ID       string
	Name     string
	WidthMM  float64
	HeightMM float64
	X        float64
	Y        float64
	Rotated  bool

	EdgeFront, EdgeBack, EdgeTop, EdgeBottom bool
	DrillingPoints                           []calc.DrillPoint
	Notes                                    string
}

// FromPlaced joins a packed layout's placements back to the source
// CalculatorPanel list (by ID) to recover the detail the packer stage
// doesn't need. Placements whose ID has no match are skipped — callers
// build byID from the same panel list that was packed, so this is not
// expected to happen in normal operation.
func FromPlaced(placed []packer.PlacedPanel, byID map[string]calc.CalculatorPanel) []Panel {
	out := make([]Panel, 0, len(placed))
	for _, pl := range placed {
		src, ok := byID[pl.Panel.ID]
		if !ok {
			continue
		}
		out = append(out, Panel{
			ID:             src.ID,
			Name:           src.Name,
			WidthMM:        src.WidthMM,
			HeightMM:       src.HeightMM,
			X:              pl.X,
			Y:              pl.Y,
			Rotated:        pl.Rotated,
			EdgeFront:      src.EdgeFront,
			EdgeBack:       src.EdgeBack,
			EdgeTop:        src.EdgeTop,
			EdgeBottom:     src.EdgeBottom,
			DrillingPoints: src.DrillingPoints,
			Notes:          src.Notes,
		})
	}
	return out
}

// ByID indexes a calculator panel list by ID for FromPlaced.
func ByID(panels []calc.CalculatorPanel) map[string]calc.CalculatorPanel {
	m := make(map[string]calc.CalculatorPanel, len(panels))
	for _, p := range panels {
		m[p.ID] = p
	}
	return m
}

// footprint returns the panel's width/height in sheet space, swapping on
// rotation exactly once, at the point of use — never assumed ambiently.
func (p Panel) footprint() (w, h float64) {
	if p.Rotated {
		return p.HeightMM, p.WidthMM
	}
	return p.WidthMM, p.HeightMM
}
