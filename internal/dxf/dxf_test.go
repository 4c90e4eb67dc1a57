package dxf

import (
	"strings"
	"testing"

	"github.com/furnicam/furnicam/internal/calc"
	"github.com/furnicam/furnicam/internal/packer"
)

func TestContourSwapsOnRotation(t *testing.T) {
	p := Panel{WidthMM: 720, HeightMM: 560, X: 10, Y: 20, Rotated: true}
	pts := Contour(p)
	if pts[1].X-pts[0].X != 560 {
		t.Fatalf("expected rotated footprint width 560, got %v", pts[1].X-pts[0].X)
	}
	if pts[3].Y-pts[0].Y != 720 {
		t.Fatalf("expected rotated footprint height 720, got %v", pts[3].Y-pts[0].Y)
	}
	if pts[0] != pts[len(pts)-1] {
		t.Fatal("contour must close (first == last point)")
	}
}

func TestDrillPositionRotation(t *testing.T) {
	p := Panel{WidthMM: 100, HeightMM: 50, X: 0, Y: 0, Rotated: false}
	pos := DrillPosition(p, 10, 20)
	if pos != (Point{10, 20}) {
		t.Fatalf("unrotated position mismatch: %+v", pos)
	}

	pr := Panel{WidthMM: 100, HeightMM: 50, X: 0, Y: 0, Rotated: true}
	posR := DrillPosition(pr, 10, 20)
	// rotated: X = localY, Y = width - localX
	if posR != (Point{20, 90}) {
		t.Fatalf("rotated position mismatch: %+v", posR)
	}
}

func TestEdgeLinesOnlyForFlaggedSides(t *testing.T) {
	p := Panel{WidthMM: 100, HeightMM: 50, EdgeFront: true}
	lines := EdgeLines(p)
	if len(lines) != 1 {
		t.Fatalf("expected exactly one edge line, got %d", len(lines))
	}
}

func TestWriteProducesSixClosedPolylinesAndSheetBoundary(t *testing.T) {
	calcPanels := []calc.CalculatorPanel{
		{ID: "a", Name: "A", WidthMM: 720, HeightMM: 560},
		{ID: "b", Name: "B", WidthMM: 720, HeightMM: 560},
		{ID: "c", Name: "C", WidthMM: 720, HeightMM: 560},
		{ID: "d", Name: "D", WidthMM: 720, HeightMM: 560},
		{ID: "e", Name: "E", WidthMM: 568, HeightMM: 560},
		{ID: "f", Name: "F", WidthMM: 568, HeightMM: 560},
	}
	packable := make([]packer.PackablePanel, len(calcPanels))
	for i, p := range calcPanels {
		packable[i] = packer.PackablePanel{ID: p.ID, Name: p.Name, WidthMM: p.WidthMM, HeightMM: p.HeightMM}
	}
	layout, err := packer.Pack(packable, 2800, 2070, 4)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(layout.Unplaced) != 0 {
		t.Fatalf("expected all panels placed, got %d unplaced", len(layout.Unplaced))
	}

	panels := FromPlaced(layout.Placed, ByID(calcPanels))
	doc, err := Write(layout, panels)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := strings.Count(doc, "LWPOLYLINE"); got != 7 { // 6 contours + 1 sheet boundary
		t.Errorf("expected 7 LWPOLYLINE entities (6 contours + sheet), got %d", got)
	}
	if !strings.Contains(doc, "SHEET") {
		t.Error("expected SHEET layer in output")
	}
	for _, layer := range []string{"CONTOUR", "EDGE", "DRILLING", "TEXT", "SHEET"} {
		if !strings.Contains(doc, layer) {
			t.Errorf("missing layer %s in DXF output", layer)
		}
	}
}
