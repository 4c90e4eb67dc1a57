// Package calc implements C2, the Panel Calculator: from a cabinet type
// and outer dimensions it produces the panel list (with edge-band flags
// and drilling points) plus any geometric warnings. Dispatch is by
// CabinetSpec.Type; grounded on the teacher's internal/model/edgebanding.go
// and internal/model/calculator.go for the area/edge-length rounding
// conventions carried into the totals helpers below.
package calc

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/packer"
	"github.com/furnicam/furnicam/internal/settings"
)

// Grain is the wood-grain direction of a panel, carried through the
// Calculator → Packable → DXF panel chain as an explicit field rather than
// an ambient assumption.
type Grain int

const (
	GrainNone Grain = iota
	GrainHorizontal
	GrainVertical
)

// Side identifies whether a drilling point is bored into a panel's flat
// face or its edge.
type Side string

const (
	SideFace Side = "face"
	SideEdge Side = "edge"
)

// DrillPoint is a single bore: position in the panel's local frame,
// origin bottom-left.
type DrillPoint struct {
	XMM          float64 `json:"x_mm"`
	YMM          float64 `json:"y_mm"`
	DiameterMM   float64 `json:"diameter_mm"`
	DepthMM      float64 `json:"depth_mm"`
	Side         Side    `json:"side"`
	HardwareType string  `json:"hardware_type,omitempty"`
}

// CalculatorPanel is the panel as C2 produces it: the first link in the
// Calculator → Packable → DXF type chain (DESIGN NOTES §9). Conversion to
// packer.PackablePanel is a total, explicit function — never a shared
// alias.
type CalculatorPanel struct {
	ID              string
	Name            string
	WidthMM         float64
	HeightMM        float64
	ThicknessMM     float64
	Material        string
	EdgeFront       bool
	EdgeBack        bool
	EdgeTop         bool
	EdgeBottom      bool
	EdgeThicknessMM float64
	DrillingPoints  []DrillPoint
	Notes           string
	Grain           Grain
	Quantity        int
}

// CabinetType is the closed enum of cabinet kinds C2 dispatches on.
type CabinetType string

const (
	TypeWall     CabinetType = "wall"
	TypeBase     CabinetType = "base"
	TypeBaseSink CabinetType = "base_sink"
	TypeDrawer   CabinetType = "drawer"
	TypeTall     CabinetType = "tall"
)

// CabinetSpec is the input a collaborator submits for one cabinet.
type CabinetSpec struct {
	Type        CabinetType `json:"type"`
	WidthMM     float64     `json:"width_mm"`
	HeightMM    float64     `json:"height_mm"`
	DepthMM     float64     `json:"depth_mm"`
	ThicknessMM float64     `json:"thickness_mm"`
	ShelfCount  int         `json:"shelf_count"`
	DoorCount   int         `json:"door_count"`
	DrawerCount int         `json:"drawer_count"`
}

func (s CabinetSpec) validate() error {
	switch s.Type {
	case TypeWall, TypeBase, TypeBaseSink, TypeDrawer, TypeTall:
	default:
		return camerr.InvalidInput("unknown cabinet type %q", s.Type)
	}
	if s.WidthMM <= 0 || s.HeightMM <= 0 || s.DepthMM <= 0 || s.ThicknessMM <= 0 {
		return camerr.InvalidInput("cabinet dimensions must be strictly positive")
	}
	if s.ShelfCount < 0 || s.DoorCount < 0 || s.DrawerCount < 0 {
		return camerr.InvalidInput("cabinet counts must be non-negative")
	}
	return nil
}

// Result is the output of Calculate: the panel list, any warnings, and
// the rounded totals (area in m², edge length in m).
type Result struct {
	Panels           []CalculatorPanel
	Warnings         []string
	TotalAreaM2      float64
	TotalEdgeLengthM float64
}

func newPanel(name string, w, h, thickness float64) CalculatorPanel {
	return CalculatorPanel{
		ID:              uuid.New().String(),
		Name:            name,
		WidthMM:         w,
		HeightMM:        h,
		ThicknessMM:     thickness,
		EdgeThicknessMM: 0.4,
		Quantity:        1,
	}
}

// Calculate dispatches on spec.Type and produces the panel list, warnings
// and rounded totals for one cabinet.
func Calculate(spec CabinetSpec, eff settings.EffectiveSettings) (Result, error) {
	if err := spec.validate(); err != nil {
		return Result{}, err
	}

	var panels []CalculatorPanel
	var warnings []string

	innerWidth := spec.WidthMM - 2*spec.ThicknessMM
	innerDepth := spec.DepthMM - spec.ThicknessMM // back panel recess equal to one thickness

	switch spec.Type {
	case TypeWall:
		panels = append(panels, wallSidePanels(spec, innerDepth)...)
		top := newPanel("Верх", innerWidth, innerDepth, spec.ThicknessMM)
		bottom := newPanel("Низ", innerWidth, innerDepth, spec.ThicknessMM)
		panels = append(panels, top, bottom)
		shelves, w := shelfPanels(spec, innerWidth, innerDepth, eff)
		panels = append(panels, shelves...)
		warnings = append(warnings, w...)

	case TypeBase:
		panels = append(panels, wallSidePanels(spec, innerDepth)...)
		bottom := newPanel("Низ", innerWidth, innerDepth, spec.ThicknessMM)
		panels = append(panels, bottom)
		panels = append(panels, tieBeams(innerWidth, eff.TieBeamHeightMM, spec.ThicknessMM, "Царга передняя", "Царга задняя")...)
		shelves, w := shelfPanels(spec, innerWidth, innerDepth, eff)
		panels = append(panels, shelves...)
		warnings = append(warnings, w...)

	case TypeBaseSink:
		panels = append(panels, wallSidePanels(spec, innerDepth)...)
		panels = append(panels,
			tieBeams(innerWidth, eff.TieBeamHeightMM, spec.ThicknessMM,
				"Царга передняя верхняя", "Царга задняя верхняя")...)
		panels = append(panels,
			tieBeams(innerWidth, eff.TieBeamHeightMM, spec.ThicknessMM,
				"Царга передняя нижняя", "Царга задняя нижняя")...)
		warnings = append(warnings, "plumbing cutout required under sink; verify drain/supply clearance")

	case TypeDrawer:
		panels = append(panels, wallSidePanels(spec, innerDepth)...)
		bottom := newPanel("Низ", innerWidth, innerDepth, spec.ThicknessMM)
		panels = append(panels, bottom)
		panels = append(panels, tieBeams(innerWidth, eff.TieBeamHeightMM, spec.ThicknessMM, "Царга передняя", "Царга задняя")...)

		drawerWidth := innerWidth - eff.DrawerGapMM
		drawerDepth := innerDepth * 0.9
		for i := 0; i < spec.DrawerCount; i++ {
			label := fmt.Sprintf("Ящик %d", i+1)
			panels = append(panels,
				newPanel(label+" фасад", drawerWidth, spec.ThicknessMM*5, spec.ThicknessMM),
				newPanel(label+" бок левый", drawerDepth, spec.ThicknessMM*5, spec.ThicknessMM),
				newPanel(label+" бок правый", drawerDepth, spec.ThicknessMM*5, spec.ThicknessMM),
				newPanel(label+" задняя стенка", drawerWidth, spec.ThicknessMM*5, spec.ThicknessMM),
				newPanel(label+" дно", drawerWidth, drawerDepth, 3),
			)
		}

	case TypeTall:
		panels = append(panels, wallSidePanels(spec, innerDepth)...)
		top := newPanel("Верх", innerWidth, innerDepth, spec.ThicknessMM)
		bottom := newPanel("Низ", innerWidth, innerDepth, spec.ThicknessMM)
		panels = append(panels, top, bottom)
		shelves, w := shelfPanels(spec, innerWidth, innerDepth, eff)
		panels = append(panels, shelves...)
		warnings = append(warnings, w...)
		if spec.HeightMM > 2000 {
			warnings = append(warnings, "cabinet taller than 2000mm; wall mounting is mandatory")
		}
	}

	for i := range panels {
		panels[i].EdgeFront = true
	}

	applyDrilling(panels, spec, eff)

	totalArea, totalEdge := totals(panels)

	return Result{
		Panels:           panels,
		Warnings:         warnings,
		TotalAreaM2:      round(totalArea, 2),
		TotalEdgeLengthM: round(totalEdge, 1),
	}, nil
}

func wallSidePanels(spec CabinetSpec, innerDepth float64) []CalculatorPanel {
	left := newPanel("Боковина левая", innerDepth, spec.HeightMM, spec.ThicknessMM)
	right := newPanel("Боковина правая", innerDepth, spec.HeightMM, spec.ThicknessMM)
	left.EdgeFront = true
	right.EdgeFront = true
	return []CalculatorPanel{left, right}
}

func tieBeams(innerWidth, beamHeight, thickness float64, frontName, backName string) []CalculatorPanel {
	front := newPanel(frontName, innerWidth, beamHeight, thickness)
	back := newPanel(backName, innerWidth, beamHeight, thickness)
	return []CalculatorPanel{front, back}
}

func shelfPanels(spec CabinetSpec, innerWidth, innerDepth float64, eff settings.EffectiveSettings) ([]CalculatorPanel, []string) {
	var panels []CalculatorPanel
	var warnings []string

	shelfWidth := innerWidth - 2*eff.ShelfGapMM
	if innerWidth > eff.MaxShelfSpanMM {
		warnings = append(warnings, fmt.Sprintf(
			"shelf may sag; add a vertical divider (span %.0fmm exceeds max_shelf_span %.0fmm)",
			innerWidth, eff.MaxShelfSpanMM))
	}

	for i := 0; i < spec.ShelfCount; i++ {
		name := "Полка"
		if spec.ShelfCount > 1 {
			name = fmt.Sprintf("Полка %d", i+1)
		}
		panels = append(panels, newPanel(name, shelfWidth, innerDepth, spec.ThicknessMM))
	}
	return panels, warnings
}

func totals(panels []CalculatorPanel) (areaM2, edgeLengthM float64) {
	for _, p := range panels {
		areaM2 += (p.WidthMM * p.HeightMM) / 1e6
		edges := 0.0
		if p.EdgeFront {
			edges += p.WidthMM
		}
		if p.EdgeBack {
			edges += p.WidthMM
		}
		if p.EdgeTop {
			edges += p.HeightMM
		}
		if p.EdgeBottom {
			edges += p.HeightMM
		}
		edgeLengthM += edges / 1000
	}
	return areaM2, edgeLengthM
}

func round(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int(v*scale+0.5)) / scale
}

// ToPackable converts calculator panels into the packer's input type. This
// is the first of the Calculator → Packable → DXF total conversions
// (DESIGN NOTES §9): it keeps only what C3 needs to place a rectangle and
// drops edge/drilling/material detail, which the DXF stage recovers by
// joining placements back to the CalculatorPanel list via ID.
func ToPackable(panels []CalculatorPanel) []packer.PackablePanel {
	out := make([]packer.PackablePanel, 0, len(panels))
	for _, p := range panels {
		out = append(out, packer.PackablePanel{
			ID:       p.ID,
			Name:     p.Name,
			WidthMM:  p.WidthMM,
			HeightMM: p.HeightMM,
			Grain:    packer.Grain(p.Grain),
		})
	}
	return out
}
