package dxf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/furnicam/furnicam/internal/packer"
)

// layerSpec is one of the five fixed layers spec.md §4.4 requires, with
// its AutoCAD Color Index confirmed against
// original_source/api/dxf_generator.py's LAYER_COLORS table.
type layerSpec struct {
	name string
	aci  int
}

var layers = []layerSpec{
	{"CONTOUR", 7},
	{"EDGE", 1},
	{"DRILLING", 5},
	{"TEXT", 3},
	{"SHEET", 8},
}

// Write serializes a packed layout plus its joined panel detail into an
// ASCII DXF document (R2010-compatible tag stream, metric units). The
// document's group-code stream is assembled directly rather than through
// github.com/yofu/dxf's entity-construction API. The read side (Parse, in
// parser.go, which C5 uses to re-read a DXF job's CONTOUR/DRILLING layers)
// is likewise a direct group-code scan, so neither direction uses that
// library — see DESIGN.md for the standard-library justification.
func Write(layout packer.SheetLayout, panels []Panel) (string, error) {
	var b strings.Builder

	writeHeader(&b)
	writeLayerTable(&b)

	b.WriteString("  0\r\nSECTION\r\n  2\r\nENTITIES\r\n")

	writeSheetBoundary(&b, layout.SheetWidthMM, layout.SheetHeightMM)
	writeHeaderText(&b, layout)

	for _, p := range panels {
		writePanel(&b, p)
	}

	b.WriteString("  0\r\nENDSEC\r\n")
	b.WriteString("  0\r\nEOF\r\n")

	return b.String(), nil
}

func writeHeader(b *strings.Builder) {
	b.WriteString("  0\r\nSECTION\r\n  2\r\nHEADER\r\n")
	b.WriteString("  9\r\n$ACADVER\r\n  1\r\nAC1024\r\n")
	// $INSUNITS 4 = millimeters, $MEASUREMENT 1 = metric, per
	// original_source/api/dxf_generator.py's create_dxf_document.
	b.WriteString("  9\r\n$INSUNITS\r\n 70\r\n4\r\n")
	b.WriteString("  9\r\n$MEASUREMENT\r\n 70\r\n1\r\n")
	b.WriteString("  0\r\nENDSEC\r\n")
}

func writeLayerTable(b *strings.Builder) {
	b.WriteString("  0\r\nSECTION\r\n  2\r\nTABLES\r\n")
	b.WriteString("  0\r\nTABLE\r\n  2\r\nLAYER\r\n 70\r\n")
	b.WriteString(strconv.Itoa(len(layers)) + "\r\n")
	for _, l := range layers {
		b.WriteString("  0\r\nLAYER\r\n")
		b.WriteString("  2\r\n" + l.name + "\r\n")
		b.WriteString(" 70\r\n0\r\n")
		b.WriteString(" 62\r\n" + strconv.Itoa(l.aci) + "\r\n")
		b.WriteString("  6\r\nCONTINUOUS\r\n")
	}
	b.WriteString("  0\r\nENDTAB\r\n")
	b.WriteString("  0\r\nENDSEC\r\n")
}

func writeSheetBoundary(b *strings.Builder, widthMM, heightMM float64) {
	writePolyline(b, "SHEET", SheetBoundary(widthMM, heightMM))
}

// writeHeaderText emits the TEXT-layer header block stating sheet size,
// panel count, utilization and unplaced count, per spec.md §4.4.
func writeHeaderText(b *strings.Builder, layout packer.SheetLayout) {
	text := fmt.Sprintf("Sheet %.0fx%.0fmm\\PPanels: %d, Util: %.1f%%\\PUnplaced: %d",
		layout.SheetWidthMM, layout.SheetHeightMM, len(layout.Placed),
		layout.UtilizationPercent, len(layout.Unplaced))
	writeMText(b, "TEXT", Point{X: 10, Y: layout.SheetHeightMM + 30}, 15, text)
}

func writePanel(b *strings.Builder, p Panel) {
	writePolyline(b, "CONTOUR", Contour(p))

	for _, e := range EdgeLines(p) {
		writeLine(b, "EDGE", e.A, e.B)
	}

	for _, dp := range p.DrillingPoints {
		pos := DrillPosition(p, dp.XMM, dp.YMM)
		writeCircle(b, "DRILLING", pos, dp.DiameterMM/2)
	}

	w, h := p.footprint()
	label := fmt.Sprintf("%s\\P%.0fx%.0f", p.Name, w, h)
	if p.Notes != "" {
		label += "\\P" + p.Notes
	}
	writeMText(b, "TEXT", LabelPosition(p), LabelHeight(p), label)
}

func writePolyline(b *strings.Builder, layer string, pts []Point) {
	b.WriteString("  0\r\nLWPOLYLINE\r\n")
	b.WriteString("  8\r\n" + layer + "\r\n")
	b.WriteString(" 90\r\n" + strconv.Itoa(len(pts)) + "\r\n")
	b.WriteString(" 70\r\n1\r\n")
	for _, p := range pts {
		b.WriteString(" 10\r\n" + f(p.X) + "\r\n")
		b.WriteString(" 20\r\n" + f(p.Y) + "\r\n")
	}
}

func writeLine(b *strings.Builder, layer string, a, c Point) {
	b.WriteString("  0\r\nLINE\r\n")
	b.WriteString("  8\r\n" + layer + "\r\n")
	b.WriteString(" 10\r\n" + f(a.X) + "\r\n 20\r\n" + f(a.Y) + "\r\n 30\r\n0\r\n")
	b.WriteString(" 11\r\n" + f(c.X) + "\r\n 21\r\n" + f(c.Y) + "\r\n 31\r\n0\r\n")
}

func writeCircle(b *strings.Builder, layer string, center Point, radius float64) {
	b.WriteString("  0\r\nCIRCLE\r\n")
	b.WriteString("  8\r\n" + layer + "\r\n")
	b.WriteString(" 10\r\n" + f(center.X) + "\r\n 20\r\n" + f(center.Y) + "\r\n 30\r\n0\r\n")
	b.WriteString(" 40\r\n" + f(radius) + "\r\n")
}

func writeMText(b *strings.Builder, layer string, pos Point, height float64, text string) {
	b.WriteString("  0\r\nMTEXT\r\n")
	b.WriteString("  8\r\n" + layer + "\r\n")
	b.WriteString(" 10\r\n" + f(pos.X) + "\r\n 20\r\n" + f(pos.Y) + "\r\n 30\r\n0\r\n")
	b.WriteString(" 40\r\n" + f(height) + "\r\n")
	b.WriteString(" 71\r\n5\r\n")
	b.WriteString("  1\r\n" + text + "\r\n")
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
