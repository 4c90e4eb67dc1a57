package calc

import (
	"strings"

	"github.com/furnicam/furnicam/internal/settings"
)

// confirmatHoleDepthMM is fixed by the Confirmat screw system regardless of
// panel thickness (spec.md §4.2).
const confirmatHoleDepthMM = 50.0

// system32MarginMM is the top/bottom keep-out before the first shelf-pin
// row. Not a named EffectiveSettings knob in spec.md; carried over from
// original_source/api/drilling_calculator.py's hinge template margins
// (top_margin_mm/bottom_margin_mm = 100.0), reused here for the shelf-pin
// row since no more specific value is given.
const system32MarginMM = 100.0

func isSidePanel(p CalculatorPanel) bool {
	return strings.HasPrefix(p.Name, "Боковина")
}

// applyDrilling computes Confirmat joint holes on horizontal panels
// (top/bottom/shelves/tie-beams) and System-32 shelf-pin columns on side
// panels, per spec.md §4.2.
func applyDrilling(panels []CalculatorPanel, spec CabinetSpec, eff settings.EffectiveSettings) {
	for i := range panels {
		p := &panels[i]
		if isSidePanel(*p) {
			addSystem32Holes(p, eff)
			addConfirmatFaceHoles(p, spec, eff)
		} else {
			addConfirmatEdgeHoles(p, eff)
		}
	}
}

// addConfirmatEdgeHoles drills the two (or one) joining holes at a
// horizontal panel's left and right edges, at confirmat_front_offset from
// front and back unless the panel's depth is too shallow for two.
func addConfirmatEdgeHoles(p *CalculatorPanel, eff settings.EffectiveSettings) {
	depth := p.HeightMM // horizontal panels store cabinet depth in HeightMM
	offset := eff.ConfirmatFrontOffsetMM

	var ys []float64
	if depth >= 2*offset+20 {
		ys = []float64{offset, depth - offset}
	} else {
		ys = []float64{depth / 2}
	}

	for _, y := range ys {
		p.DrillingPoints = append(p.DrillingPoints,
			DrillPoint{XMM: 0, YMM: y, DiameterMM: 5, DepthMM: confirmatHoleDepthMM, Side: SideEdge, HardwareType: "confirmat"},
			DrillPoint{XMM: p.WidthMM, YMM: y, DiameterMM: 5, DepthMM: confirmatHoleDepthMM, Side: SideEdge, HardwareType: "confirmat"},
		)
	}
}

// addConfirmatFaceHoles drills the mating face holes on a side panel for
// the horizontal panels that meet it, centered on the mating panel's
// thickness, near the top and bottom of the side panel.
func addConfirmatFaceHoles(p *CalculatorPanel, spec CabinetSpec, eff settings.EffectiveSettings) {
	half := spec.ThicknessMM / 2
	positions := []float64{eff.ConfirmatFrontOffsetMM, p.WidthMM - eff.ConfirmatFrontOffsetMM}
	ys := []float64{half, p.HeightMM - half}

	for _, x := range positions {
		for _, y := range ys {
			p.DrillingPoints = append(p.DrillingPoints,
				DrillPoint{XMM: x, YMM: y, DiameterMM: 5, DepthMM: spec.ThicknessMM / 2, Side: SideFace, HardwareType: "confirmat"})
		}
	}
}

// addSystem32Holes drills the two vertical shelf-pin columns on a side
// panel, rows every 32mm within a fixed top/bottom keep-out of
// system32MarginMM plus the panel thickness.
func addSystem32Holes(p *CalculatorPanel, eff settings.EffectiveSettings) {
	xs := []float64{eff.System32FrontOffsetMM, p.WidthMM - eff.System32FrontOffsetMM}
	bottom := system32MarginMM + p.ThicknessMM
	top := p.HeightMM - system32MarginMM - p.ThicknessMM
	if top <= bottom {
		return
	}

	for _, x := range xs {
		for y := bottom; y <= top; y += 32 {
			p.DrillingPoints = append(p.DrillingPoints,
				DrillPoint{XMM: x, YMM: y, DiameterMM: 5, DepthMM: 13, Side: SideFace, HardwareType: "system32"})
		}
	}
}
