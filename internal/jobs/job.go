// Package jobs implements C9, the Job Repository: persistence of Job
// records keyed by UUID with a nullable-unique idempotency key. Grounded
// on smilemakc-mbflow's internal/infrastructure/storage repositories —
// bun.DB, NewInsert/NewUpdate/NewSelect, RunInTx for compare-and-set
// transitions — generalized from its ExecutionModel to the Job record
// spec.md §3/§4.9 describes.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Kind is the closed set of job kinds the worker dispatches on.
type Kind string

const (
	KindDXF      Kind = "DXF"
	KindGCode    Kind = "GCODE"
	KindDrilling Kind = "DRILLING"
	KindZIP      Kind = "ZIP"
)

// Status is the job lifecycle state per spec.md §4.8's state machine.
type Status string

const (
	StatusCreated    Status = "Created"
	StatusProcessing Status = "Processing"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
)

// Terminal reports whether status admits no further transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is the persisted record backing every pipeline operation.
// Supplemented per SPEC_FULL.md §3: the struct documents the schema as
// converged rather than incrementally migrated (no migration framework
// is in scope), matching original_source/alembic/versions' end state.
type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID             uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Kind           Kind      `bun:"kind,notnull" json:"kind"`
	Status         Status    `bun:"status,notnull,default:'Created'" json:"status"`
	Attempt        int       `bun:"attempt,notnull,default:0" json:"attempt"`
	Context        string    `bun:"context,type:jsonb,notnull,default:'{}'" json:"context"`
	ArtifactRef    *uuid.UUID `bun:"artifact_ref,type:uuid" json:"artifact_ref,omitempty"`
	IdempotencyKey *string   `bun:"idempotency_key,unique,nullzero" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
	Error          *string   `bun:"error" json:"error,omitempty"`

	// Utilization/Placed/Unplaced carry the C3 packing summary a DXF
	// job's get_job response reports, per spec.md §4.10.
	UtilizationPercent *float64 `bun:"utilization_percent" json:"utilization_percent,omitempty"`
	PlacedCount        *int     `bun:"placed_count" json:"placed_count,omitempty"`
	UnplacedCount      *int     `bun:"unplaced_count" json:"unplaced_count,omitempty"`
}

var _ bun.BeforeAppendModelHook = (*Job)(nil)

// BeforeAppendModel sets timestamps and defaults before an insert, and
// refreshes the update timestamp before an update, mirroring mbflow's
// db.Base/TimeStamped hook (a single hook switching on the query type
// rather than bun's older per-verb BeforeInsert/BeforeUpdate hooks).
func (j *Job) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now()
	switch query.(type) {
	case *bun.InsertQuery:
		j.CreatedAt = now
		j.UpdatedAt = now
		if j.ID == uuid.Nil {
			j.ID = uuid.New()
		}
		if j.Status == "" {
			j.Status = StatusCreated
		}
	case *bun.UpdateQuery:
		j.UpdatedAt = now
	}
	return nil
}
