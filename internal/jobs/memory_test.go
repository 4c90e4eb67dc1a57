package jobs

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryRepositoryIdempotentCreate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	key := "order-42-dxf"
	job := &Job{Kind: KindDXF, IdempotencyKey: &key}
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &Job{Kind: KindDXF, IdempotencyKey: &key}
	if err := repo.Create(ctx, dup); err == nil {
		t.Fatal("expected conflict creating a second job with the same idempotency key")
	}

	found, err := repo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		t.Fatalf("get by idempotency key: %v", err)
	}
	if found.ID != job.ID {
		t.Fatalf("expected to find original job %s, got %s", job.ID, found.ID)
	}
}

func TestUpdateStatusCASRejectsStaleTransition(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	job := &Job{Kind: KindGCode}
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.UpdateStatus(ctx, job.ID, StatusCreated, StatusProcessing); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	if err := repo.UpdateStatus(ctx, job.ID, StatusCreated, StatusProcessing); err == nil {
		t.Fatal("expected ErrStatusConflict transitioning from a stale status")
	}
}

func TestIncrementAttemptAndAttachArtifact(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	job := &Job{Kind: KindDrilling}
	_ = repo.Create(ctx, job)

	attempt, err := repo.IncrementAttempt(ctx, job.ID)
	if err != nil || attempt != 1 {
		t.Fatalf("expected attempt 1, got %d (err %v)", attempt, err)
	}

	artifactID := uuid.New()
	if err := repo.AttachArtifact(ctx, job.ID, artifactID); err != nil {
		t.Fatalf("attach artifact: %v", err)
	}
	got, _ := repo.GetByID(ctx, job.ID)
	if got.ArtifactRef == nil || *got.ArtifactRef != artifactID {
		t.Fatal("expected artifact ref to be attached")
	}
}
