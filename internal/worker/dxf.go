package worker

import (
	"context"

	"github.com/google/uuid"

	"github.com/furnicam/furnicam/internal/artifact"
	"github.com/furnicam/furnicam/internal/calc"
	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/dxf"
	"github.com/furnicam/furnicam/internal/jobs"
	"github.com/furnicam/furnicam/internal/packer"
	"github.com/furnicam/furnicam/internal/settings"
)

// processDXF implements spec.md §4.8 step 5's DXF branch: C2 (if a raw
// cabinet spec was submitted) → C3 best-of-three packing → C4 DXF
// emission → C6 store, with the packing summary recorded on the job
// record for get_job to report.
func (w *Worker) processDXF(ctx context.Context, job *jobs.Job) error {
	raw, err := jobs.DecodeContext(job.Context)
	if err != nil {
		return camerr.InvalidInput("decode DXF job context: %v", err)
	}
	dc, ok := raw.(jobs.DXFContext)
	if !ok {
		return camerr.Internal(nil, "DXF job carries a non-DXF context")
	}

	eff := settings.Merge(dc.Overrides, w.Factory)

	var calcPanels []calc.CalculatorPanel
	if dc.CabinetSpec != nil {
		result, err := calc.Calculate(*dc.CabinetSpec, eff)
		if err != nil {
			return err
		}
		calcPanels = result.Panels
	} else {
		calcPanels = panelsFromInputs(dc.Panels)
	}
	if len(calcPanels) == 0 {
		return camerr.InvalidInput("DXF job has no panels to pack")
	}

	packable := calc.ToPackable(calcPanels)
	layout, err := packer.Pack(packable, eff.SheetWidthMM, eff.SheetHeightMM, eff.GapMM)
	if err != nil {
		return err
	}

	byID := dxf.ByID(calcPanels)
	placedPanels := dxf.FromPlaced(layout.Placed, byID)
	doc, err := dxf.Write(layout, placedPanels)
	if err != nil {
		return err
	}

	if _, err := w.Artifacts.PutArtifact(ctx, artifact.KindDXF, job.ID.String(), []byte(doc)); err != nil {
		return err
	}
	if err := w.Jobs.AttachArtifact(ctx, job.ID, uuid.New()); err != nil {
		return camerr.Internal(err, "attach DXF artifact")
	}
	if err := w.Jobs.SetPackingSummary(ctx, job.ID, layout.UtilizationPercent, len(layout.Placed), len(layout.Unplaced)); err != nil {
		return camerr.Internal(err, "record packing summary")
	}
	return nil
}

// panelsFromInputs converts a submit_dxf request's direct panel list
// (bypassing C2) into CalculatorPanels, assigning a fresh ID to any
// panel the caller left blank.
func panelsFromInputs(inputs []jobs.DXFPanelInput) []calc.CalculatorPanel {
	out := make([]calc.CalculatorPanel, 0, len(inputs))
	for _, p := range inputs {
		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}
		out = append(out, calc.CalculatorPanel{
			ID:          id,
			Name:        p.Name,
			WidthMM:     p.WidthMM,
			HeightMM:    p.HeightMM,
			ThicknessMM: p.ThicknessMM,
			EdgeFront:   p.EdgeFront,
			EdgeBack:    p.EdgeBack,
			EdgeTop:     p.EdgeTop,
			EdgeBottom:  p.EdgeBottom,
			Grain:       p.Grain,
			DrillingPoints: p.DrillingPoints,
			Notes:          p.Notes,
			Quantity:       1,
		})
	}
	return out
}
