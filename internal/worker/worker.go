// Package worker implements C8, the Worker/Scheduler: a blocking
// multi-queue consumer that runs the per-job state machine, classifies
// failures, retries with exponential backoff, and moves exhausted jobs
// to the DLQ. Grounded directly on original_source/api/worker.py's
// process_job/run_worker — the same BRPOP-then-dispatch-then-commit
// shape, translated from asyncio/SQLAlchemy to goroutines and the
// jobs.Repository/queue.Queue contracts built for this pipeline.
package worker

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/furnicam/furnicam/internal/artifact"
	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/jobs"
	"github.com/furnicam/furnicam/internal/logging"
	"github.com/furnicam/furnicam/internal/queue"
	"github.com/furnicam/furnicam/internal/settings"
)

const defaultPopTimeout = 5 * time.Second

// ArtifactStore is the subset of *artifact.Store the worker depends on,
// split out as an interface so tests can substitute an in-memory fake
// instead of a live S3-compatible endpoint — the same Repository-style
// seam jobs.MemoryRepository already gives the job-record side.
type ArtifactStore interface {
	PutArtifact(ctx context.Context, kind artifact.Kind, jobID string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// Worker owns every dependency one job run can touch, threaded in
// explicitly at construction rather than reached for as a package-level
// singleton, per SPEC_FULL.md §9's PipelineContext decision.
type Worker struct {
	Queue     *queue.Queue
	Jobs      jobs.Repository
	Artifacts ArtifactStore
	Logger    *logging.Logger
	Factory   settings.FactorySettings

	maxRetries    int
	backoffFactor float64
	popTimeout    time.Duration
}

// New builds a Worker. Retry policy (max attempts, backoff factor)
// comes from the same settings.Merge defaults table C1 resolves job
// parameters from, applied with no per-job overrides — there is no
// per-tenant retry-policy knob in SPEC_FULL.md, only the built-in
// MAX_RETRIES=3/BACKOFF_FACTOR=2 worker.py also hard-codes.
func New(q *queue.Queue, repo jobs.Repository, store ArtifactStore, logger *logging.Logger, factory settings.FactorySettings) *Worker {
	eff := settings.Merge(settings.RequestOverrides{}, factory)
	return &Worker{
		Queue:         q,
		Jobs:          repo,
		Artifacts:     store,
		Logger:        logger,
		Factory:       factory,
		maxRetries:    eff.MaxRetries,
		backoffFactor: eff.BackoffFactor,
		popTimeout:    defaultPopTimeout,
	}
}

// Run blocks, consuming every active queue until ctx is cancelled
// (SIGINT/SIGTERM in cmd/worker translate to context cancellation, per
// worker.py's stop_event). A job already in flight when ctx cancels is
// allowed to finish its current iteration before Run returns.
func (w *Worker) Run(ctx context.Context) error {
	w.Logger.Info("worker started", "queues", queue.All)
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("worker stopping")
			return nil
		default:
		}

		name, msg, err := w.Queue.DequeueAny(ctx, w.popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.Logger.Error("dequeue error", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue
		}
		w.handleMessage(ctx, name, *msg)
	}
}

func (w *Worker) handleMessage(ctx context.Context, queueName queue.Name, msg queue.Message) {
	logger := w.Logger.WithJob(msg.JobID, string(queueName), 0)

	jobID, err := uuid.Parse(msg.JobID)
	if err != nil {
		logger.Error("malformed job id, sending to dlq", "error", err)
		_ = w.Queue.PushDLQ(ctx, "malformed job_id", msg.JobID, "")
		return
	}

	job, err := w.Jobs.GetByID(ctx, jobID)
	if errors.Is(err, jobs.ErrNotFound) {
		logger.Error("job record not found, sending to dlq")
		_ = w.Queue.PushDLQ(ctx, "job record not found", msg.JobID, "")
		return
	}
	if err != nil {
		logger.Error("load job failed", "error", err)
		return
	}

	// Idempotency: a replayed or duplicate-delivered message for a job
	// that already reached a terminal state is a no-op, per spec.md
	// §4.8 step 3.
	if job.Status.Terminal() {
		logger.Warn("skipping already-terminal job", "status", job.Status)
		return
	}

	if err := w.Jobs.UpdateStatus(ctx, jobID, jobs.StatusCreated, jobs.StatusProcessing); err != nil {
		if errors.Is(err, jobs.ErrStatusConflict) {
			logger.Warn("job already claimed by another worker, skipping")
			return
		}
		logger.Error("transition to processing failed", "error", err)
		return
	}

	logger = w.Logger.WithJob(msg.JobID, string(job.Kind), job.Attempt)
	logger.Info("processing job")

	procErr := w.process(ctx, job)
	if procErr == nil {
		if err := w.Jobs.UpdateStatus(ctx, jobID, jobs.StatusProcessing, jobs.StatusCompleted); err != nil {
			logger.Error("transition to completed failed", "error", err)
			return
		}
		logger.Info("job completed")
		return
	}

	w.handleFailure(ctx, queueName, msg, job, procErr, logger)
}

func (w *Worker) process(ctx context.Context, job *jobs.Job) error {
	switch job.Kind {
	case jobs.KindDXF:
		return w.processDXF(ctx, job)
	case jobs.KindGCode:
		return w.processGCode(ctx, job)
	case jobs.KindDrilling:
		return w.processDrilling(ctx, job)
	case jobs.KindZIP:
		return w.processZIP(ctx, job)
	default:
		return camerr.InvalidInput("unknown job kind %q", job.Kind)
	}
}

// handleFailure implements spec.md §4.8 step 7: retryable classes are
// re-enqueued with exponential backoff up to maxRetries; everything
// else (or a retryable class past its budget) goes to the DLQ with the
// job left Failed.
func (w *Worker) handleFailure(ctx context.Context, queueName queue.Name, msg queue.Message, job *jobs.Job, procErr error, logger *logging.Logger) {
	class := camerr.ClassOf(procErr)
	logger = logger.WithError(string(class))

	if camerr.Retryable(procErr) && job.Attempt < w.maxRetries {
		delay := time.Duration(math.Pow(w.backoffFactor, float64(job.Attempt))) * time.Second
		logger.Warn("retrying job after backoff", "delay_seconds", delay.Seconds(), "error", procErr)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}

		if _, err := w.Jobs.IncrementAttempt(ctx, job.ID); err != nil {
			logger.Error("increment attempt failed", "error", err)
		}
		if err := w.Jobs.UpdateStatus(ctx, job.ID, jobs.StatusProcessing, jobs.StatusCreated); err != nil {
			logger.Error("transition back to created failed", "error", err)
		}
		if _, err := w.Queue.Enqueue(ctx, queueName, msg.JobID, msg.IdempotencyKey); err != nil {
			logger.Error("re-enqueue failed", "error", err)
		}
		return
	}

	if err := w.Jobs.SetError(ctx, job.ID, procErr.Error()); err != nil {
		logger.Error("set error failed", "error", err)
	}
	if err := w.Jobs.UpdateStatus(ctx, job.ID, jobs.StatusProcessing, jobs.StatusFailed); err != nil {
		logger.Error("transition to failed failed", "error", err)
	}
	if err := w.Queue.PushDLQ(ctx, procErr.Error(), msg.JobID, errorTrace(procErr)); err != nil {
		logger.Error("push dlq failed", "error", err)
	}
	logger.Error("job moved to failed/dlq", "error", procErr, "attempt", job.Attempt)
}

// errorTrace walks an error's Unwrap chain into a flat multi-line
// string — the nearest Go equivalent of worker.py's
// traceback.format_exc(limit=3) without an actual stack trace to
// capture from a typed error value.
func errorTrace(err error) string {
	var out string
	for err != nil {
		if out != "" {
			out += "\ncaused by: "
		}
		out += err.Error()
		err = errors.Unwrap(err)
	}
	return out
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
