package worker

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/furnicam/furnicam/internal/artifact"
	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/jobs"
)

// processZIP implements spec.md §4.8 step 5's ZIP branch: bundle the
// already-produced artifacts of the referenced jobs into one archive,
// keyed the same way the original Python worker's ZIP branch writes
// each member under its source storage key. archive/zip is standard
// library for the same reason internal/exporter uses it — see
// DESIGN.md.
func (w *Worker) processZIP(ctx context.Context, job *jobs.Job) error {
	raw, err := jobs.DecodeContext(job.Context)
	if err != nil {
		return camerr.InvalidInput("decode ZIP job context: %v", err)
	}
	zc, ok := raw.(jobs.ZIPContext)
	if !ok {
		return camerr.Internal(nil, "ZIP job carries a non-ZIP context")
	}
	if len(zc.JobIDs) == 0 {
		return camerr.InvalidInput("ZIP job has no job_ids")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, idStr := range zc.JobIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return camerr.InvalidInput("malformed job id %q in ZIP context", idStr)
		}
		srcJob, err := w.Jobs.GetByID(ctx, id)
		if errors.Is(err, jobs.ErrNotFound) {
			return camerr.DependencyMissing("referenced job %s not found", idStr)
		}
		if err != nil {
			return camerr.Transient(err, "load referenced job %s", idStr)
		}
		if srcJob.ArtifactRef == nil {
			return camerr.DependencyMissing("referenced job %s has no artifact", idStr)
		}

		key := artifact.Key(artifactKindFor(srcJob.Kind), idStr)
		data, err := w.Artifacts.Get(ctx, key)
		if err != nil {
			return err
		}
		entry, err := zw.Create(key)
		if err != nil {
			return camerr.Internal(err, "create zip entry %s", key)
		}
		if _, err := entry.Write(data); err != nil {
			return camerr.Internal(err, "write zip entry %s", key)
		}
	}

	if err := zw.Close(); err != nil {
		return camerr.Internal(err, "close zip bundle")
	}

	if _, err := w.Artifacts.PutArtifact(ctx, artifact.KindZIP, job.ID.String(), buf.Bytes()); err != nil {
		return err
	}
	if err := w.Jobs.AttachArtifact(ctx, job.ID, uuid.New()); err != nil {
		return camerr.Internal(err, "attach zip artifact")
	}
	return nil
}
