package gcode

import (
	"fmt"

	"github.com/furnicam/furnicam/internal/calc"
)

// Slot is a linear groove cut into a panel face or edge — used for
// back-panel rebates and other straight-line relief cuts that aren't
// round bores.
type Slot struct {
	StartXMM, StartYMM float64
	EndXMM, EndYMM     float64
	DepthMM            float64
	WidthMM            float64
}

// PanelDrilling is one panel's worth of holes and slots for the
// per-panel, BOM-source mode of C5: used when a job supplies drilling
// geometry directly (confirmat/System-32 hardware points from C2) rather
// than a DXF to re-parse.
type PanelDrilling struct {
	Name        string
	WidthMM     float64
	HeightMM    float64
	ThicknessMM float64
	Points      []calc.DrillPoint
	Slots       []Slot
}

// GeneratePanelDrilling emits one NC program covering every panel given,
// in order, grouping each panel's holes by (diameter, side) so each group
// opens with one full drilling-cycle line and continues with
// coordinate-only shorthand lines, per spec.md §4.5's per-panel mode.
// Groundwork mirrors the cut-path drilling groups in cutpath.go; the
// per-panel framing (one comment block and depth validation per panel) is
// new to this mode.
func (g *Generator) GeneratePanelDrilling(panels []PanelDrilling) (string, error) {
	for _, panel := range panels {
		if err := g.Params.validateAgainstPanel(panel.WidthMM, panel.HeightMM, panel.ThicknessMM); err != nil {
			return "", err
		}
		for _, dp := range panel.Points {
			if err := g.Params.validateFaceHole(dp, panel.ThicknessMM); err != nil {
				return "", err
			}
		}
	}

	w := newTextBuilder(g.Params.Profile)
	g.writeHeader(w)
	w.line(fmt.Sprintf("S%d M03", int(g.Params.SpindleSpeed)))
	w.line(g.Params.Profile.DwellCode(g.Params.DwellSeconds))

	for _, panel := range panels {
		g.drillPanel(w, panel)
	}

	g.writeFooter(w)
	return w.String(), nil
}

func (g *Generator) drillPanel(w *textBuilder, panel PanelDrilling) {
	w.line(g.comment(panel.Name))
	w.line(fmt.Sprintf("G00 Z%s", g.fmt1(g.Params.SafeHeightMM)))

	for _, key := range groupDrillPoints(panel.Points) {
		group := pointsForGroup(panel.Points, key)
		g.drillGroup(w, key, group)
	}

	for _, s := range panel.Slots {
		g.cutSlot(w, s)
	}
}

// drillGroup emits one (diameter, side) group: a full cycle line for the
// first point, coordinate-only lines for the rest, closed with G80.
func (g *Generator) drillGroup(w *textBuilder, key drillGroupKey, group []calc.DrillPoint) {
	if len(group) == 0 {
		return
	}
	w.line(g.comment(fmt.Sprintf("d=%.1fmm %s", key.DiameterMM, key.Side)))

	cycle := string(g.Params.Profile.DrillCycle)
	first := group[0]
	switch g.Params.Profile.DrillCycle {
	case "G83":
		w.line(fmt.Sprintf("%s X%s Y%s Z%s Q%s R%s F%s",
			cycle, g.fmt1(first.XMM), g.fmt1(first.YMM), g.fmt1(-first.DepthMM),
			g.fmt1(g.Params.StepDownMM), g.fmt1(g.Params.Profile.RetractZ), g.fmt1(g.Params.FeedRatePlungeMM)))
	default:
		w.line(fmt.Sprintf("%s X%s Y%s Z%s R%s F%s",
			cycle, g.fmt1(first.XMM), g.fmt1(first.YMM), g.fmt1(-first.DepthMM),
			g.fmt1(g.Params.Profile.RetractZ), g.fmt1(g.Params.FeedRatePlungeMM)))
	}
	w.openCycle()
	for _, p := range group[1:] {
		w.line(fmt.Sprintf("X%s Y%s", g.fmt1(p.XMM), g.fmt1(p.YMM)))
	}
	w.closeCycle("G80")
}

func (g *Generator) cutSlot(w *textBuilder, s Slot) {
	w.line(g.comment(fmt.Sprintf("slot w=%.1fmm", s.WidthMM)))
	w.line(fmt.Sprintf("G00 X%s Y%s", g.fmt1(s.StartXMM), g.fmt1(s.StartYMM)))
	w.line(fmt.Sprintf("G01 Z%s F%s", g.fmt1(-s.DepthMM), g.fmt1(g.Params.FeedRatePlungeMM)))
	w.line(fmt.Sprintf("G01 X%s Y%s F%s", g.fmt1(s.EndXMM), g.fmt1(s.EndYMM), g.fmt1(g.Params.FeedRateCutting)))
	w.line(fmt.Sprintf("G00 Z%s", g.fmt1(g.Params.SafeHeightMM)))
}
