package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a job lookup finds no matching row.
var ErrNotFound = errors.New("job not found")

// ErrStatusConflict is returned by UpdateStatus when the row's current
// status no longer matches the expected "from" status: someone else won
// the compare-and-set race.
var ErrStatusConflict = errors.New("job status conflict")

// Repository is C9's contract: every operation spec.md §4.9 names.
// Satisfied by both BunRepository (Postgres, production) and
// MemoryRepository (tests), grounded on mbflow's
// repository.ExecutionRepository interface/implementation split.
type Repository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Job, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	AttachArtifact(ctx context.Context, id uuid.UUID, artifactID uuid.UUID) error
	IncrementAttempt(ctx context.Context, id uuid.UUID) (int, error)
	SetError(ctx context.Context, id uuid.UUID, message string) error
	SetPackingSummary(ctx context.Context, id uuid.UUID, utilizationPercent float64, placed, unplaced int) error
}

// BunRepository implements Repository with bun over Postgres.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Create(ctx context.Context, job *Job) error {
	_, err := r.db.NewInsert().Model(job).Exec(ctx)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	job := &Job{}
	err := r.db.NewSelect().Model(job).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job by id: %w", err)
	}
	return job, nil
}

func (r *BunRepository) GetByIdempotencyKey(ctx context.Context, key string) (*Job, error) {
	job := &Job{}
	err := r.db.NewSelect().Model(job).Where("idempotency_key = ?", key).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job by idempotency key: %w", err)
	}
	return job, nil
}

// UpdateStatus performs the spec.md §4.8 CAS transition: it only applies
// when the row's current status still matches from, inside a
// transaction, per SPEC_FULL.md §9's "CAS-based attempt counter via bun
// RunInTx + WHERE status = ? optimistic check" decision.
func (r *BunRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*Job)(nil)).
			Set("status = ?", to).
			Set("updated_at = current_timestamp").
			Where("id = ? AND status = ?", id, from).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update job status: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update job status: %w", err)
		}
		if affected == 0 {
			return ErrStatusConflict
		}
		return nil
	})
}

func (r *BunRepository) AttachArtifact(ctx context.Context, id uuid.UUID, artifactID uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*Job)(nil)).
		Set("artifact_ref = ?", artifactID).
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("attach artifact: %w", err)
	}
	return nil
}

func (r *BunRepository) IncrementAttempt(ctx context.Context, id uuid.UUID) (int, error) {
	var attempt int
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*Job)(nil)).
			Set("attempt = attempt + 1").
			Set("updated_at = current_timestamp").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("increment attempt: %w", err)
		}
		return tx.NewSelect().Model((*Job)(nil)).Column("attempt").Where("id = ?", id).Scan(ctx, &attempt)
	})
	return attempt, err
}

func (r *BunRepository) SetError(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.db.NewUpdate().
		Model((*Job)(nil)).
		Set("error = ?", message).
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set job error: %w", err)
	}
	return nil
}

func (r *BunRepository) SetPackingSummary(ctx context.Context, id uuid.UUID, utilizationPercent float64, placed, unplaced int) error {
	_, err := r.db.NewUpdate().
		Model((*Job)(nil)).
		Set("utilization_percent = ?", utilizationPercent).
		Set("placed_count = ?", placed).
		Set("unplaced_count = ?", unplaced).
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set packing summary: %w", err)
	}
	return nil
}
