// Package pipeline implements C10, the Pipeline API: the stable
// inbound/outbound contract toward the external API-gateway
// collaborator described in spec.md §1. It is the boundary the core
// backend exposes — submit_dxf/submit_gcode/submit_drilling/submit_zip,
// get_job, get_artifact_download — while auth/tenant/routing concerns
// stay the gateway's job per spec.md's explicit Non-goal.
//
// Grounded on smilemakc-mbflow's internal/infrastructure/api/rest
// handler style (a handler/service struct holding repository and
// logger dependencies, explicit dependency injection rather than
// package-level singletons, per SPEC_FULL.md §9's PipelineContext
// decision) and on original_source/api's idempotent job-submission
// endpoints for the "replay returns the same job_id" contract.
package pipeline

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/furnicam/furnicam/internal/artifact"
	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/jobs"
	"github.com/furnicam/furnicam/internal/logging"
	"github.com/furnicam/furnicam/internal/queue"
	"github.com/furnicam/furnicam/internal/settings"
)

// ArtifactStore is the subset of *artifact.Store the pipeline depends
// on for download references — split out as an interface the same way
// internal/worker.ArtifactStore is, so tests substitute an in-memory
// fake for a live S3-compatible endpoint.
type ArtifactStore interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (*url.URL, error)
	Stat(ctx context.Context, key string) (int64, error)
}

// Service implements the six C10 operations. Every dependency is
// threaded in explicitly at construction — no package-level
// singletons — matching DESIGN NOTES §9's PipelineContext guidance.
type Service struct {
	Jobs      jobs.Repository
	Queue     *queue.Queue
	Artifacts ArtifactStore
	Factory   settings.FactorySettings
	Logger    *logging.Logger
}

// New builds a Service from its component dependencies.
func New(repo jobs.Repository, q *queue.Queue, store ArtifactStore, factory settings.FactorySettings, logger *logging.Logger) *Service {
	return &Service{Jobs: repo, Queue: q, Artifacts: store, Factory: factory, Logger: logger}
}

// JobHandle is submit_*'s return value: the job a collaborator polls
// for status.
type JobHandle struct {
	JobID  string     `json:"job_id"`
	Kind   jobs.Kind  `json:"kind"`
	Status jobs.Status `json:"status"`
}

var queueFor = map[jobs.Kind]queue.Name{
	jobs.KindDXF:      queue.DXF,
	jobs.KindGCode:    queue.GCode,
	jobs.KindDrilling: queue.Drilling,
	jobs.KindZIP:      queue.ZIP,
}

func artifactKindFor(k jobs.Kind) artifact.Kind {
	switch k {
	case jobs.KindDXF:
		return artifact.KindDXF
	case jobs.KindGCode:
		return artifact.KindGCode
	case jobs.KindDrilling:
		return artifact.KindDrilling
	default:
		return artifact.KindZIP
	}
}

// submit is the shared plumbing behind every submit_* operation: encode
// the typed context, create the job record (tolerating a concurrent
// idempotency-key race per spec.md §8's Idempotence property), and
// enqueue it. Repeated submission with the same idempotency_key
// returns the existing job handle, never creates a duplicate.
func (s *Service) submit(ctx context.Context, kind jobs.Kind, jobCtx jobs.Context, idempotencyKey string) (*JobHandle, error) {
	if idempotencyKey != "" {
		existing, err := s.Jobs.GetByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			return &JobHandle{JobID: existing.ID.String(), Kind: existing.Kind, Status: existing.Status}, nil
		}
		if !errors.Is(err, jobs.ErrNotFound) {
			return nil, camerr.Transient(err, "check idempotency key")
		}
	}

	encoded, err := jobs.EncodeContext(jobCtx)
	if err != nil {
		return nil, camerr.InvalidInput("encode job context: %v", err)
	}

	job := &jobs.Job{Kind: kind, Context: encoded}
	if idempotencyKey != "" {
		job.IdempotencyKey = &idempotencyKey
	}

	if err := s.Jobs.Create(ctx, job); err != nil {
		// A concurrent submitter may have won the unique-idempotency-key
		// race between our lookup and our insert; re-fetch and hand back
		// its job rather than erroring, per spec.md §8 scenario 6.
		if idempotencyKey != "" {
			if existing, getErr := s.Jobs.GetByIdempotencyKey(ctx, idempotencyKey); getErr == nil {
				return &JobHandle{JobID: existing.ID.String(), Kind: existing.Kind, Status: existing.Status}, nil
			}
		}
		return nil, camerr.Transient(err, "create job record")
	}

	if _, err := s.Queue.Enqueue(ctx, queueFor[kind], job.ID.String(), idempotencyKey); err != nil {
		return nil, err
	}

	return &JobHandle{JobID: job.ID.String(), Kind: job.Kind, Status: job.Status}, nil
}

// SubmitDXF implements submit_dxf(panels, sheet, options, idempotency_key).
func (s *Service) SubmitDXF(ctx context.Context, req SubmitDXFRequest) (*JobHandle, error) {
	if req.CabinetSpec == nil && len(req.Panels) == 0 {
		return nil, camerr.InvalidInput("submit_dxf requires either cabinet_spec or panels")
	}
	overrides := req.Overrides
	if req.SheetWidthMM != nil {
		overrides.SheetWidthMM = req.SheetWidthMM
	}
	if req.SheetHeightMM != nil {
		overrides.SheetHeightMM = req.SheetHeightMM
	}
	if req.GapMM != nil {
		overrides.GapMM = req.GapMM
	}
	if req.Optimize != nil {
		overrides.OptimizeToolpath = req.Optimize
	}

	jobCtx := jobs.DXFContext{
		CabinetSpec: req.CabinetSpec,
		Panels:      req.Panels,
		Overrides:   overrides,
		Extra:       req.Extra,
	}
	return s.submit(ctx, jobs.KindDXF, jobCtx, req.IdempotencyKey)
}

// SubmitGCode implements submit_gcode(dxf_artifact_id, machine_profile,
// overrides, idempotency_key).
func (s *Service) SubmitGCode(ctx context.Context, req SubmitGCodeRequest) (*JobHandle, error) {
	if req.DXFArtifactJobID == "" {
		return nil, camerr.InvalidInput("submit_gcode requires dxf_artifact_id")
	}
	if _, err := uuid.Parse(req.DXFArtifactJobID); err != nil {
		return nil, camerr.InvalidInput("malformed dxf_artifact_id %q", req.DXFArtifactJobID)
	}

	jobCtx := jobs.GCodeContext{
		DXFArtifactJobID: req.DXFArtifactJobID,
		MachineProfile:   req.MachineProfile,
		Overrides:        req.Overrides,
		Extra:            req.Extra,
	}
	return s.submit(ctx, jobs.KindGCode, jobCtx, req.IdempotencyKey)
}

// SubmitDrilling implements submit_drilling(order_id, machine_profile,
// idempotency_key).
func (s *Service) SubmitDrilling(ctx context.Context, req SubmitDrillingRequest) (*JobHandle, error) {
	if req.OrderID == "" {
		return nil, camerr.InvalidInput("submit_drilling requires order_id")
	}
	if len(req.Panels) == 0 {
		return nil, camerr.InvalidInput("submit_drilling requires at least one panel")
	}

	jobCtx := jobs.DrillingContext{
		OrderID:        req.OrderID,
		Panels:         req.Panels,
		MachineProfile: req.MachineProfile,
		Overrides:      req.Overrides,
		Extra:          req.Extra,
	}
	return s.submit(ctx, jobs.KindDrilling, jobCtx, req.IdempotencyKey)
}

// SubmitZIP implements submit_zip(job_ids, idempotency_key).
func (s *Service) SubmitZIP(ctx context.Context, req SubmitZIPRequest) (*JobHandle, error) {
	if len(req.JobIDs) == 0 {
		return nil, camerr.InvalidInput("submit_zip requires at least one job_id")
	}
	for _, id := range req.JobIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, camerr.InvalidInput("malformed job_id %q", id)
		}
	}

	jobCtx := jobs.ZIPContext{JobIDs: req.JobIDs, Extra: req.Extra}
	return s.submit(ctx, jobs.KindZIP, jobCtx, req.IdempotencyKey)
}

// GetJob implements get_job(job_id).
func (s *Service) GetJob(ctx context.Context, jobID string) (*JobStatusResponse, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return nil, camerr.InvalidInput("malformed job id %q", jobID)
	}
	job, err := s.Jobs.GetByID(ctx, id)
	if errors.Is(err, jobs.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, camerr.Transient(err, "load job %s", jobID)
	}

	resp := &JobStatusResponse{
		JobID:  job.ID.String(),
		Kind:   job.Kind,
		Status: job.Status,
		Error:  job.Error,
	}
	if job.ArtifactRef != nil {
		resp.ArtifactID = job.ArtifactRef
	}
	if job.UtilizationPercent != nil {
		resp.UtilizationPercent = job.UtilizationPercent
	}
	if job.PlacedCount != nil {
		resp.Placed = job.PlacedCount
	}
	if job.UnplacedCount != nil {
		resp.Unplaced = job.UnplacedCount
	}
	return resp, nil
}

// GetArtifactDownload implements get_artifact_download(job_id, ttl?).
func (s *Service) GetArtifactDownload(ctx context.Context, jobID string, ttl time.Duration) (*ArtifactDownloadResponse, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return nil, camerr.InvalidInput("malformed job id %q", jobID)
	}
	job, err := s.Jobs.GetByID(ctx, id)
	if errors.Is(err, jobs.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, camerr.Transient(err, "load job %s", jobID)
	}
	if job.ArtifactRef == nil {
		return nil, camerr.DependencyMissing("job %s has no artifact yet", jobID)
	}

	eff := settings.Merge(settings.RequestOverrides{}, s.Factory)
	if ttl <= 0 {
		ttl = time.Duration(eff.PresignTTLSec) * time.Second
	}

	key := artifact.Key(artifactKindFor(job.Kind), jobID)
	size, err := s.Artifacts.Stat(ctx, key)
	if err != nil {
		return nil, err
	}
	u, err := s.Artifacts.PresignGet(ctx, key, ttl)
	if err != nil {
		return nil, err
	}

	return &ArtifactDownloadResponse{
		URL:       u.String(),
		Filename:  filenameFor(key),
		SizeBytes: size,
		ExpiresIn: int(ttl.Seconds()),
	}, nil
}

func filenameFor(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[i+1:]
		}
	}
	return key
}
