// Package gcode implements C5, the G-code Postprocessor: it converts
// either re-parsed DXF geometry or a per-panel drilling structure into
// ASCII NC text for one of the five closed-set machine dialects in
// internal/machineprofile. Structurally ported from the teacher's
// internal/gcode/generator.go (header/footer assembly, per-profile
// formatting, depth stepping) but retargeted from the teacher's
// CutSettings/toolpath-ordering model onto spec.md §4.5's cut-path and
// per-panel-drilling algorithms, drilling-cycle codes, and dwell-unit
// rule.
package gcode

import (
	"fmt"
	"sort"

	"github.com/furnicam/furnicam/internal/calc"
	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/machineprofile"
	"github.com/furnicam/furnicam/pkg/ascii"
)

// Params is the fully-resolved, per-job set of machining parameters: the
// machine profile plus every feed/speed/depth knob spec.md §4.5 allows a
// job context to override.
type Params struct {
	Profile machineprofile.Profile

	ToolDiameterMM   float64
	CutDepthMM       float64
	StepDownMM       float64
	SafeHeightMM     float64
	FeedRateCutting  float64
	FeedRatePlungeMM float64
	SpindleSpeed     float64

	// DwellSeconds is the post-spindle-start dwell before cutting begins.
	DwellSeconds float64
}

// FromProfile seeds Params from a machine profile's own defaults; callers
// then apply job-context overrides on top (settings.Merge's "first
// non-null wins" pattern, applied one level higher for the machining
// knobs specifically).
func FromProfile(p machineprofile.Profile) Params {
	return Params{
		Profile:          p,
		ToolDiameterMM:   p.ToolDiameter,
		CutDepthMM:       p.CutDepth,
		StepDownMM:       p.StepDown,
		SafeHeightMM:     p.SafeHeight,
		FeedRateCutting:  p.FeedRateCutting,
		FeedRatePlungeMM: p.FeedRatePlunge,
		SpindleSpeed:     p.SpindleSpeed,
		DwellSeconds:     0.5,
	}
}

// validateAgainstPanel enforces the invariants of spec.md §4.5: tool
// diameter must be smaller than both panel dimensions, cut depth must
// reach the panel thickness, and the per-pass step-down must not exceed
// the tool diameter. Violations are InvalidMachining: not retried.
func (p Params) validateAgainstPanel(widthMM, heightMM, thicknessMM float64) error {
	if p.ToolDiameterMM <= 0 || p.ToolDiameterMM >= widthMM || p.ToolDiameterMM >= heightMM {
		return camerr.InvalidMachining(
			"tool diameter %.1fmm does not fit panel %.0fx%.0fmm", p.ToolDiameterMM, widthMM, heightMM)
	}
	if p.CutDepthMM < thicknessMM {
		return camerr.InvalidMachining(
			"cut depth %.1fmm is less than panel thickness %.1fmm", p.CutDepthMM, thicknessMM)
	}
	if p.StepDownMM <= 0 || p.StepDownMM > p.ToolDiameterMM {
		return camerr.InvalidMachining(
			"step down %.1fmm exceeds tool diameter %.1fmm", p.StepDownMM, p.ToolDiameterMM)
	}
	return nil
}

// validateFaceHole enforces the face-hole peck-depth invariant: a peck
// pass must never be deep enough to punch through the panel.
func (p Params) validateFaceHole(dp calc.DrillPoint, thicknessMM float64) error {
	if dp.Side != calc.SideFace {
		return nil
	}
	if dp.DepthMM >= thicknessMM {
		return camerr.InvalidMachining(
			"face hole depth %.1fmm is not less than panel thickness %.1fmm", dp.DepthMM, thicknessMM)
	}
	return nil
}

// Generator emits NC text for one set of Params.
type Generator struct {
	Params Params
}

func New(p Params) *Generator {
	return &Generator{Params: p}
}

func (g *Generator) writeHeader(w *textBuilder) {
	for _, line := range g.Params.Profile.StartLines {
		w.raw(line)
	}
}

func (g *Generator) writeFooter(w *textBuilder) {
	if w.cycleOpen {
		w.closeCycle(g.Params.Profile.DrillCycleClose())
	}
	for _, line := range g.Params.Profile.EndLines {
		w.raw(line)
	}
}

func (g *Generator) comment(text string) string {
	return g.Params.Profile.Comment(ascii.Transliterate(text))
}

func (g *Generator) fmt1(v float64) string {
	return fmt.Sprintf("%.*f", g.Params.Profile.DecimalPlace, v)
}

// drillGroupKey groups drilling points for one tool-change block.
type drillGroupKey struct {
	DiameterMM float64
	Side       calc.Side
}

func groupDrillPoints(points []calc.DrillPoint) []drillGroupKey {
	seen := map[drillGroupKey][]calc.DrillPoint{}
	var keys []drillGroupKey
	for _, p := range points {
		k := drillGroupKey{DiameterMM: p.DiameterMM, Side: p.Side}
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
		seen[k] = append(seen[k], p)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].DiameterMM != keys[j].DiameterMM {
			return keys[i].DiameterMM < keys[j].DiameterMM
		}
		return keys[i].Side < keys[j].Side
	})
	return keys
}

func pointsForGroup(points []calc.DrillPoint, k drillGroupKey) []calc.DrillPoint {
	var out []calc.DrillPoint
	for _, p := range points {
		if p.DiameterMM == k.DiameterMM && p.Side == k.Side {
			out = append(out, p)
		}
	}
	return out
}
