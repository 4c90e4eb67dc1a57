package worker

import (
	"context"
	"sync"
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

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "json"})
}

func testQueue(t *testing.T) *queue.Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return queue.NewFromClient(client)
}

func newDXFJob(t *testing.T, repo jobs.Repository) *jobs.Job {
	t.Helper()
	encoded, err := jobs.EncodeContext(jobs.DXFContext{
		Panels: []jobs.DXFPanelInput{
			{Name: "Бок левый", WidthMM: 600, HeightMM: 400, ThicknessMM: 16},
			{Name: "Бок правый", WidthMM: 600, HeightMM: 400, ThicknessMM: 16},
		},
	})
	if err != nil {
		t.Fatalf("encode context: %v", err)
	}
	job := &jobs.Job{Kind: jobs.KindDXF, Context: encoded}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

// failingArtifactStore fails its first N PutArtifact calls with a
// Transient error, then delegates to an in-memory store — scenario 5
// from spec.md §8: "simulate object-store write failing twice then
// succeeding."
type failingArtifactStore struct {
	mu        sync.Mutex
	failCount int
	calls     int
	inner     *memoryArtifactStore
}

func newFailingArtifactStore(failCount int) *failingArtifactStore {
	return &failingArtifactStore{failCount: failCount, inner: newMemoryArtifactStore()}
}

func (s *failingArtifactStore) PutArtifact(ctx context.Context, kind artifact.Kind, jobID string, data []byte) (string, error) {
	s.mu.Lock()
	s.calls++
	attempt := s.calls
	s.mu.Unlock()
	if attempt <= s.failCount {
		return "", camerr.Transient(nil, "simulated object-store write failure")
	}
	return s.inner.PutArtifact(ctx, kind, jobID, data)
}

func (s *failingArtifactStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, key)
}

func TestProcessDXFHappyPathAttachesArtifactAndSummary(t *testing.T) {
	repo := jobs.NewMemoryRepository()
	store := newMemoryArtifactStore()
	q := testQueue(t)
	w := New(q, repo, store, testLogger(), settings.FactorySettings{})

	job := newDXFJob(t, repo)
	msg, err := q.Enqueue(context.Background(), queue.DXF, job.ID.String(), "")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	w.handleMessage(context.Background(), queue.DXF, msg)

	got, err := repo.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != jobs.StatusCompleted {
		t.Fatalf("expected Completed, got %s (error=%v)", got.Status, got.Error)
	}
	if got.ArtifactRef == nil {
		t.Fatal("expected an artifact ref to be attached")
	}
	if got.PlacedCount == nil || *got.PlacedCount != 2 {
		t.Fatalf("expected 2 placed panels recorded, got %v", got.PlacedCount)
	}
}

func TestRetryOnTransientArtifactFailureEndsCompleted(t *testing.T) {
	repo := jobs.NewMemoryRepository()
	store := newFailingArtifactStore(2)
	q := testQueue(t)

	w := &Worker{
		Queue:         q,
		Jobs:          repo,
		Artifacts:     store,
		Logger:        testLogger(),
		maxRetries:    3,
		backoffFactor: 0,
		popTimeout:    time.Second,
	}

	job := newDXFJob(t, repo)
	ctx := context.Background()
	if _, err := q.Enqueue(ctx, queue.DXF, job.ID.String(), ""); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	for i := 0; i < 4; i++ {
		name, m, err := q.DequeueAny(ctx, time.Second)
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		if m == nil {
			break
		}
		w.handleMessage(ctx, name, *m)

		got, err := repo.GetByID(ctx, job.ID)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if got.Status.Terminal() {
			break
		}
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != jobs.StatusCompleted {
		t.Fatalf("expected Completed after retries, got %s", got.Status)
	}
	if got.Attempt != 2 {
		t.Fatalf("expected attempt=2 after two transient failures, got %d", got.Attempt)
	}

	dlqLen, err := q.Client().LLen(ctx, "cam:dlq").Result()
	if err != nil {
		t.Fatalf("llen dlq: %v", err)
	}
	if dlqLen != 0 {
		t.Fatalf("expected no DLQ entry, found %d", dlqLen)
	}
}

func TestExhaustedRetriesMovesJobToFailedAndDLQ(t *testing.T) {
	repo := jobs.NewMemoryRepository()
	store := newFailingArtifactStore(99)
	q := testQueue(t)

	w := &Worker{
		Queue:         q,
		Jobs:          repo,
		Artifacts:     store,
		Logger:        testLogger(),
		maxRetries:    1,
		backoffFactor: 0,
		popTimeout:    time.Second,
	}

	job := newDXFJob(t, repo)
	ctx := context.Background()
	if _, err := q.Enqueue(ctx, queue.DXF, job.ID.String(), ""); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	for i := 0; i < 3; i++ {
		name, m, err := q.DequeueAny(ctx, time.Second)
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		if m == nil {
			break
		}
		w.handleMessage(ctx, name, *m)
		got, err := repo.GetByID(ctx, job.ID)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if got.Status.Terminal() {
			break
		}
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != jobs.StatusFailed {
		t.Fatalf("expected Failed once retries exhausted, got %s", got.Status)
	}
	if got.Error == nil {
		t.Fatal("expected job.Error to be recorded")
	}

	dlqLen, err := q.Client().LLen(ctx, "cam:dlq").Result()
	if err != nil {
		t.Fatalf("llen dlq: %v", err)
	}
	if dlqLen != 1 {
		t.Fatalf("expected exactly one DLQ entry, got %d", dlqLen)
	}
}

func TestReplayOfTerminalJobIsSkipped(t *testing.T) {
	repo := jobs.NewMemoryRepository()
	store := newMemoryArtifactStore()
	q := testQueue(t)
	w := New(q, repo, store, testLogger(), settings.FactorySettings{})

	job := newDXFJob(t, repo)
	ctx := context.Background()
	if err := repo.UpdateStatus(ctx, job.ID, jobs.StatusCreated, jobs.StatusProcessing); err != nil {
		t.Fatalf("transition to processing: %v", err)
	}
	if err := repo.UpdateStatus(ctx, job.ID, jobs.StatusProcessing, jobs.StatusCompleted); err != nil {
		t.Fatalf("transition to completed: %v", err)
	}

	msg := queue.Message{JobID: job.ID.String(), IdempotencyKey: uuid.New().String()}
	w.handleMessage(ctx, queue.DXF, msg)

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != jobs.StatusCompleted {
		t.Fatalf("replay must not disturb a terminal job, got %s", got.Status)
	}
	if got.ArtifactRef != nil {
		t.Fatal("replay must not process the job again")
	}
}
