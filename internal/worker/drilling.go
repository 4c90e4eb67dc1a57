package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/furnicam/furnicam/internal/artifact"
	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/exporter"
	"github.com/furnicam/furnicam/internal/gcode"
	"github.com/furnicam/furnicam/internal/jobs"
	"github.com/furnicam/furnicam/internal/machineprofile"
)

// processDrilling implements spec.md §4.8 step 5's DRILLING branch: run
// C5 in per-panel mode for every panel in the order, bundle the
// resulting NC programs with a README via internal/exporter, and
// store the ZIP as a single artifact.
func (w *Worker) processDrilling(ctx context.Context, job *jobs.Job) error {
	raw, err := jobs.DecodeContext(job.Context)
	if err != nil {
		return camerr.InvalidInput("decode DRILLING job context: %v", err)
	}
	dc, ok := raw.(jobs.DrillingContext)
	if !ok {
		return camerr.Internal(nil, "DRILLING job carries a non-DRILLING context")
	}
	if len(dc.Panels) == 0 {
		return camerr.InvalidInput("DRILLING job has no panels")
	}

	profileID := dc.MachineProfile
	if profileID == "" {
		profileID = defaultMachineProfile
	}
	profile, ok := machineprofile.Get(profileID)
	if !ok {
		w.Logger.Warn("unknown machine profile, falling back to weihong", "profile", profileID)
		profile, _ = machineprofile.Get(defaultMachineProfile)
	}

	params := paramsFromOverrides(profile, dc.Overrides)
	gen := gcode.New(params)

	files := make([]exporter.PanelFile, 0, len(dc.Panels))
	for _, p := range dc.Panels {
		text, err := gen.GeneratePanelDrilling([]gcode.PanelDrilling{{
			Name:        p.Name,
			WidthMM:     p.WidthMM,
			HeightMM:    p.HeightMM,
			ThicknessMM: p.ThicknessMM,
			Points:      p.DrillingPoints,
		}})
		if err != nil {
			return err
		}
		files = append(files, exporter.PanelFile{
			PanelName: p.Name,
			WidthMM:   p.WidthMM,
			HeightMM:  p.HeightMM,
			NCText:    text,
		})
	}

	bundle, err := exporter.BuildDrillingBundle(exporter.ReadmeInfo{
		OrderID:        dc.OrderID,
		MachineProfile: profile.ID,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		PanelCount:     len(files),
	}, files)
	if err != nil {
		return camerr.Internal(err, "build drilling bundle")
	}

	if _, err := w.Artifacts.PutArtifact(ctx, artifact.KindDrilling, job.ID.String(), bundle); err != nil {
		return err
	}
	if err := w.Jobs.AttachArtifact(ctx, job.ID, uuid.New()); err != nil {
		return camerr.Internal(err, "attach drilling artifact")
	}
	return nil
}
