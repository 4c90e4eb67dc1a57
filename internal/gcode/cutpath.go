package gcode

import (
	"fmt"
	"sort"

	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/dxf"
)

// GenerateCutPath implements the DXF-source mode of C5: it re-walks a
// parsed DXF document's CONTOUR polylines as cut toolpaths and its
// DRILLING circles as bore cycles, grounded on the teacher's
// toolpath-per-entity loop in internal/gcode/generator.go but replacing
// the teacher's lead-in/lead-out arcs and dogbone overcuts (router-only
// concerns absent from spec.md §4.5) with straight plunge/feed/rise
// moves and the profile's canned drilling cycle.
func (g *Generator) GenerateCutPath(doc dxf.ParsedDoc) (string, error) {
	contours := filterLayer(doc.Contours, "CONTOUR")
	if len(contours) == 0 && len(doc.Circles) == 0 {
		return "", camerr.InvalidInput("DXF document has no CONTOUR or DRILLING entities to machine")
	}

	w := newTextBuilder(g.Params.Profile)
	g.writeHeader(w)

	w.line(fmt.Sprintf("S%d M03", int(g.Params.SpindleSpeed)))
	w.line(g.Params.Profile.DwellCode(g.Params.DwellSeconds))

	for i, c := range contours {
		if err := g.cutContour(w, i+1, c); err != nil {
			return "", err
		}
	}

	if err := g.drillCircles(w, filterCircleLayer(doc.Circles, "DRILLING")); err != nil {
		return "", err
	}

	g.writeFooter(w)
	return w.String(), nil
}

func filterLayer(cs []dxf.ParsedContour, layer string) []dxf.ParsedContour {
	var out []dxf.ParsedContour
	for _, c := range cs {
		if c.Layer == layer {
			out = append(out, c)
		}
	}
	return out
}

func filterCircleLayer(cs []dxf.ParsedCircle, layer string) []dxf.ParsedCircle {
	var out []dxf.ParsedCircle
	for _, c := range cs {
		if c.Layer == layer {
			out = append(out, c)
		}
	}
	return out
}

// cutContour emits one stepped-plunge cut path for a closed polyline: rapid
// above the first vertex, step down to CutDepthMM in StepDownMM passes,
// feed through every vertex at each depth, then rise to safe height.
func (g *Generator) cutContour(w *textBuilder, index int, c dxf.ParsedContour) error {
	if len(c.Points) < 2 {
		return camerr.InvalidInput("contour %d has fewer than two vertices", index)
	}
	start := c.Points[0]

	w.line(g.comment(fmt.Sprintf("contour %d", index)))
	w.line(fmt.Sprintf("G00 Z%s", g.fmt1(g.Params.SafeHeightMM)))
	w.line(fmt.Sprintf("G00 X%s Y%s", g.fmt1(start.X), g.fmt1(start.Y)))

	depth := g.Params.StepDownMM
	for {
		z := -depth
		w.line(fmt.Sprintf("G01 Z%s F%s", g.fmt1(z), g.fmt1(g.Params.FeedRatePlungeMM)))
		for _, p := range c.Points[1:] {
			w.line(fmt.Sprintf("G01 X%s Y%s F%s", g.fmt1(p.X), g.fmt1(p.Y), g.fmt1(g.Params.FeedRateCutting)))
		}
		w.line(fmt.Sprintf("G00 X%s Y%s", g.fmt1(start.X), g.fmt1(start.Y)))
		if depth >= g.Params.CutDepthMM {
			break
		}
		depth += g.Params.StepDownMM
		if depth > g.Params.CutDepthMM {
			depth = g.Params.CutDepthMM
		}
	}

	w.line(fmt.Sprintf("G00 Z%s", g.fmt1(g.Params.SafeHeightMM)))
	return nil
}

// drillCircles groups DRILLING-layer circles by diameter (one tool change
// per group, per spec.md §4.5) and emits the profile's canned cycle: G81
// straight plunge or G83 peck, closed with G80.
func (g *Generator) drillCircles(w *textBuilder, circles []dxf.ParsedCircle) error {
	if len(circles) == 0 {
		return nil
	}
	byDiameter := map[float64][]dxf.ParsedCircle{}
	var diameters []float64
	for _, c := range circles {
		if _, ok := byDiameter[c.DiameterMM]; !ok {
			diameters = append(diameters, c.DiameterMM)
		}
		byDiameter[c.DiameterMM] = append(byDiameter[c.DiameterMM], c)
	}
	sort.Float64s(diameters)

	for _, d := range diameters {
		group := byDiameter[d]
		w.line(g.comment(fmt.Sprintf("drill d=%.1fmm tool change", d)))
		w.line(fmt.Sprintf("G00 Z%s", g.fmt1(g.Params.SafeHeightMM)))

		cycle := string(g.Params.Profile.DrillCycle)
		first := group[0]
		switch g.Params.Profile.DrillCycle {
		case "G83":
			peck := g.Params.StepDownMM
			w.line(fmt.Sprintf("%s X%s Y%s Z%s Q%s R%s F%s",
				cycle, g.fmt1(first.Center.X), g.fmt1(first.Center.Y),
				g.fmt1(-g.Params.CutDepthMM), g.fmt1(peck), g.fmt1(g.Params.Profile.RetractZ),
				g.fmt1(g.Params.FeedRatePlungeMM)))
		default:
			w.line(fmt.Sprintf("%s X%s Y%s Z%s R%s F%s",
				cycle, g.fmt1(first.Center.X), g.fmt1(first.Center.Y),
				g.fmt1(-g.Params.CutDepthMM), g.fmt1(g.Params.Profile.RetractZ),
				g.fmt1(g.Params.FeedRatePlungeMM)))
		}
		w.openCycle()
		for _, c := range group[1:] {
			w.line(fmt.Sprintf("X%s Y%s", g.fmt1(c.Center.X), g.fmt1(c.Center.Y)))
		}
		w.closeCycle("G80")
	}
	return nil
}
