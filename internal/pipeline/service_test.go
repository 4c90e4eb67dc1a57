package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/furnicam/furnicam/internal/artifact"
	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/config"
	"github.com/furnicam/furnicam/internal/jobs"
	"github.com/furnicam/furnicam/internal/logging"
	"github.com/furnicam/furnicam/internal/queue"
	"github.com/furnicam/furnicam/internal/settings"
)

func mustParseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse uuid %q: %v", s, err)
	}
	return id
}

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "json"})
}

func testQueue(t *testing.T) *queue.Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return queue.NewFromClient(client)
}

func newTestService(t *testing.T) (*Service, jobs.Repository, *queue.Queue, *fakeArtifactStore) {
	t.Helper()
	repo := jobs.NewMemoryRepository()
	q := testQueue(t)
	store := newFakeArtifactStore()
	return New(repo, q, store, settings.FactorySettings{}, testLogger()), repo, q, store
}

func TestSubmitDXFEnqueuesAndCreatesJob(t *testing.T) {
	svc, repo, q, _ := newTestService(t)
	ctx := context.Background()

	handle, err := svc.SubmitDXF(ctx, SubmitDXFRequest{
		Panels: []jobs.DXFPanelInput{{Name: "Полка", WidthMM: 600, HeightMM: 300, ThicknessMM: 16}},
	})
	if err != nil {
		t.Fatalf("submit dxf: %v", err)
	}
	if handle.Kind != jobs.KindDXF || handle.Status != jobs.StatusCreated {
		t.Fatalf("unexpected handle: %+v", handle)
	}

	if _, err := repo.GetByID(ctx, mustParseUUID(t, handle.JobID)); err != nil {
		t.Fatalf("job record not created: %v", err)
	}

	msg, err := q.Dequeue(ctx, queue.DXF, time.Second)
	if err != nil || msg == nil {
		t.Fatalf("expected dxf queue message, got %v, err %v", msg, err)
	}
	if msg.JobID != handle.JobID {
		t.Fatalf("queued job id %s != created job id %s", msg.JobID, handle.JobID)
	}
}

func TestSubmitDXFRequiresPanelsOrSpec(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.SubmitDXF(context.Background(), SubmitDXFRequest{})
	if camerr.ClassOf(err) != camerr.ClassInvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestSubmitIdempotencyReplayReturnsSameJob(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	req := SubmitDXFRequest{
		Panels:         []jobs.DXFPanelInput{{Name: "Дно", WidthMM: 500, HeightMM: 300, ThicknessMM: 16}},
		IdempotencyKey: "order-42",
	}

	first, err := svc.SubmitDXF(ctx, req)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := svc.SubmitDXF(ctx, req)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if first.JobID != second.JobID {
		t.Fatalf("idempotency replay produced different job ids: %s != %s", first.JobID, second.JobID)
	}

	byKey, err := repo.GetByIdempotencyKey(ctx, "order-42")
	if err != nil {
		t.Fatalf("lookup by idempotency key: %v", err)
	}
	if byKey.ID.String() != first.JobID {
		t.Fatalf("repository holds a different job for the shared idempotency key")
	}
}

func TestSubmitGCodeRequiresValidDXFArtifactID(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.SubmitGCode(context.Background(), SubmitGCodeRequest{DXFArtifactJobID: "not-a-uuid"})
	if camerr.ClassOf(err) != camerr.ClassInvalidInput {
		t.Fatalf("expected InvalidInput for malformed dxf_artifact_id, got %v", err)
	}
}

func TestSubmitZIPValidatesJobIDs(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.SubmitZIP(context.Background(), SubmitZIPRequest{JobIDs: []string{"garbage"}})
	if camerr.ClassOf(err) != camerr.ClassInvalidInput {
		t.Fatalf("expected InvalidInput for malformed job id, got %v", err)
	}
}

func TestGetJobNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.GetJob(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetJobReportsPackingSummary(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	handle, err := svc.SubmitDXF(ctx, SubmitDXFRequest{
		Panels: []jobs.DXFPanelInput{{Name: "Верх", WidthMM: 600, HeightMM: 300, ThicknessMM: 16}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	id := mustParseUUID(t, handle.JobID)
	if err := repo.SetPackingSummary(ctx, id, 87.5, 3, 1); err != nil {
		t.Fatalf("set packing summary: %v", err)
	}

	resp, err := svc.GetJob(ctx, handle.JobID)
	if err != nil {
		t.Fatalf("get_job: %v", err)
	}
	if resp.UtilizationPercent == nil || *resp.UtilizationPercent != 87.5 {
		t.Fatalf("expected utilization 87.5, got %+v", resp.UtilizationPercent)
	}
	if resp.Placed == nil || *resp.Placed != 3 {
		t.Fatalf("expected placed 3, got %+v", resp.Placed)
	}
}

func TestGetArtifactDownloadFailsDependencyMissingWithoutArtifact(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	handle, err := svc.SubmitDXF(ctx, SubmitDXFRequest{
		Panels: []jobs.DXFPanelInput{{Name: "Низ", WidthMM: 600, HeightMM: 300, ThicknessMM: 16}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err = svc.GetArtifactDownload(ctx, handle.JobID, 0)
	if camerr.ClassOf(err) != camerr.ClassDependencyMissing {
		t.Fatalf("expected DependencyMissing, got %v", err)
	}
}

func TestGetArtifactDownloadReturnsPresignedURL(t *testing.T) {
	svc, repo, _, store := newTestService(t)
	ctx := context.Background()

	handle, err := svc.SubmitDXF(ctx, SubmitDXFRequest{
		Panels: []jobs.DXFPanelInput{{Name: "Полка", WidthMM: 600, HeightMM: 300, ThicknessMM: 16}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	id := mustParseUUID(t, handle.JobID)

	key := artifact.Key(artifact.KindDXF, handle.JobID)
	store.put(key, 2048)
	if err := repo.AttachArtifact(ctx, id, id); err != nil {
		t.Fatalf("attach artifact: %v", err)
	}

	resp, err := svc.GetArtifactDownload(ctx, handle.JobID, 60*time.Second)
	if err != nil {
		t.Fatalf("get_artifact_download: %v", err)
	}
	if resp.Filename != handle.JobID+".dxf" {
		t.Fatalf("unexpected filename %s", resp.Filename)
	}
	if resp.SizeBytes != 2048 {
		t.Fatalf("expected size 2048, got %d", resp.SizeBytes)
	}
	if resp.ExpiresIn != 60 {
		t.Fatalf("expected expires_in 60, got %d", resp.ExpiresIn)
	}
}
