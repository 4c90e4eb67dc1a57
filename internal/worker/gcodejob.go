package worker

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/furnicam/furnicam/internal/artifact"
	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/dxf"
	"github.com/furnicam/furnicam/internal/gcode"
	"github.com/furnicam/furnicam/internal/jobs"
	"github.com/furnicam/furnicam/internal/machineprofile"
	"github.com/furnicam/furnicam/internal/settings"
)

const defaultMachineProfile = "weihong"

// processGCode implements spec.md §4.8 step 5's GCODE branch: load the
// referenced DXF artifact, re-parse it, build machining parameters from
// the named profile plus any per-job overrides, and run C5 in
// cut-path mode. Grounded directly on original_source/api/worker.py's
// GCODE branch, which resolves machine_profile the same way: look up
// the base profile, log and fall back to weihong if unknown, then
// layer only the context-supplied overrides on top.
func (w *Worker) processGCode(ctx context.Context, job *jobs.Job) error {
	raw, err := jobs.DecodeContext(job.Context)
	if err != nil {
		return camerr.InvalidInput("decode GCODE job context: %v", err)
	}
	gc, ok := raw.(jobs.GCodeContext)
	if !ok {
		return camerr.Internal(nil, "GCODE job carries a non-GCODE context")
	}

	if gc.DXFArtifactJobID == "" {
		return camerr.InvalidInput("dxf_artifact_job_id is required for a GCODE job")
	}
	dxfJobID, err := uuid.Parse(gc.DXFArtifactJobID)
	if err != nil {
		return camerr.InvalidInput("malformed dxf_artifact_job_id %q: %v", gc.DXFArtifactJobID, err)
	}

	dxfJob, err := w.Jobs.GetByID(ctx, dxfJobID)
	if errors.Is(err, jobs.ErrNotFound) {
		return camerr.DependencyMissing("DXF job %s not found", gc.DXFArtifactJobID)
	}
	if err != nil {
		return camerr.Transient(err, "load DXF job %s", gc.DXFArtifactJobID)
	}
	if dxfJob.ArtifactRef == nil {
		return camerr.DependencyMissing("DXF job %s has no artifact yet", gc.DXFArtifactJobID)
	}

	key := artifact.Key(artifact.KindDXF, gc.DXFArtifactJobID)
	data, err := w.Artifacts.Get(ctx, key)
	if err != nil {
		return err
	}

	doc, err := dxf.Parse(data)
	if err != nil {
		return camerr.InvalidInput("parse DXF artifact %s: %v", key, err)
	}

	profileID := gc.MachineProfile
	if profileID == "" {
		profileID = defaultMachineProfile
	}
	profile, ok := machineprofile.Get(profileID)
	if !ok {
		w.Logger.Warn("unknown machine profile, falling back to weihong", "profile", profileID)
		profile, _ = machineprofile.Get(defaultMachineProfile)
	}

	params := paramsFromOverrides(profile, gc.Overrides)
	gen := gcode.New(params)

	text, err := gen.GenerateCutPath(doc)
	if err != nil {
		return err
	}

	if _, err := w.Artifacts.PutArtifact(ctx, artifact.KindGCode, job.ID.String(), []byte(text)); err != nil {
		return err
	}
	if err := w.Jobs.AttachArtifact(ctx, job.ID, uuid.New()); err != nil {
		return camerr.Internal(err, "attach GCODE artifact")
	}
	return nil
}

// paramsFromOverrides seeds Params from the machine profile's own
// defaults and layers only the request's explicitly-set machining
// overrides on top — a narrower variant of settings.Merge's
// first-non-nil-wins rule applied to the six machining knobs a job
// context may override, rather than the full factory/default table,
// since a profile's own feed/speed defaults take precedence over the
// global settings defaults when nothing was overridden.
func paramsFromOverrides(profile machineprofile.Profile, o settings.RequestOverrides) gcode.Params {
	p := gcode.FromProfile(profile)
	if o.ToolDiameterMM != nil {
		p.ToolDiameterMM = *o.ToolDiameterMM
	}
	if o.CutDepthMM != nil {
		p.CutDepthMM = *o.CutDepthMM
	}
	if o.SafeHeightMM != nil {
		p.SafeHeightMM = *o.SafeHeightMM
	}
	if o.FeedRateCutting != nil {
		p.FeedRateCutting = *o.FeedRateCutting
	}
	if o.FeedRatePlungeMM != nil {
		p.FeedRatePlungeMM = *o.FeedRatePlungeMM
	}
	if o.SpindleSpeed != nil {
		p.SpindleSpeed = *o.SpindleSpeed
	}
	return p
}
