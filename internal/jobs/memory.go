package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process fake satisfying Repository, used by
// worker/pipeline tests in place of a real Postgres instance. Grounded
// on mbflow's MemoryStore (sync.RWMutex + map, one mutex guarding every
// collection).
type MemoryRepository struct {
	mu        sync.RWMutex
	jobs      map[uuid.UUID]*Job
	byIdemKey map[string]uuid.UUID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		jobs:      make(map[uuid.UUID]*Job),
		byIdemKey: make(map[string]uuid.UUID),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, job *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = StatusCreated
	}
	if job.IdempotencyKey != nil {
		if _, exists := r.byIdemKey[*job.IdempotencyKey]; exists {
			return ErrStatusConflict
		}
		r.byIdemKey[*job.IdempotencyKey] = job.ID
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (r *MemoryRepository) GetByIdempotencyKey(ctx context.Context, key string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byIdemKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r.jobs[id]
	return &cp, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status != from {
		return ErrStatusConflict
	}
	job.Status = to
	return nil
}

func (r *MemoryRepository) AttachArtifact(ctx context.Context, id uuid.UUID, artifactID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.ArtifactRef = &artifactID
	return nil
}

func (r *MemoryRepository) IncrementAttempt(ctx context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return 0, ErrNotFound
	}
	job.Attempt++
	return job.Attempt, nil
}

func (r *MemoryRepository) SetError(ctx context.Context, id uuid.UUID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.Error = &message
	return nil
}

func (r *MemoryRepository) SetPackingSummary(ctx context.Context, id uuid.UUID, utilizationPercent float64, placed, unplaced int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.UtilizationPercent = &utilizationPercent
	job.PlacedCount = &placed
	job.UnplacedCount = &unplaced
	return nil
}
