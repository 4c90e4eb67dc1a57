package pipeline

import (
	"github.com/google/uuid"

	"github.com/furnicam/furnicam/internal/calc"
	"github.com/furnicam/furnicam/internal/jobs"
	"github.com/furnicam/furnicam/internal/settings"
)

// SubmitDXFRequest is submit_dxf's request body per spec.md §6's DXF
// context shape, plus the idempotency_key every submit_* endpoint
// accepts.
type SubmitDXFRequest struct {
	CabinetSpec *calc.CabinetSpec         `json:"cabinet_spec,omitempty"`
	Panels      []jobs.DXFPanelInput      `json:"panels,omitempty"`
	SheetWidthMM *float64                 `json:"sheet_width_mm,omitempty"`
	SheetHeightMM *float64                `json:"sheet_height_mm,omitempty"`
	GapMM       *float64                  `json:"gap_mm,omitempty"`
	Optimize    *bool                     `json:"optimize,omitempty"`
	Overrides   settings.RequestOverrides `json:"overrides,omitempty"`
	Extra       map[string]any            `json:"extra,omitempty"`

	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// SubmitGCodeRequest is submit_gcode's request body per spec.md §6's
// GCODE context shape.
type SubmitGCodeRequest struct {
	DXFArtifactJobID string                    `json:"dxf_artifact_id"`
	MachineProfile   string                    `json:"machine_profile"`
	Overrides        settings.RequestOverrides `json:"overrides,omitempty"`
	Extra            map[string]any            `json:"extra,omitempty"`

	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// SubmitDrillingRequest is submit_drilling's request body per spec.md
// §6's DRILLING context shape.
type SubmitDrillingRequest struct {
	OrderID        string                       `json:"order_id"`
	Panels         []jobs.DrillingPanelInput    `json:"panels"`
	MachineProfile string                       `json:"machine_profile"`
	Overrides      settings.RequestOverrides    `json:"overrides,omitempty"`
	Extra          map[string]any               `json:"extra,omitempty"`

	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// SubmitZIPRequest is submit_zip's request body per spec.md §6's ZIP
// context shape.
type SubmitZIPRequest struct {
	JobIDs []string       `json:"job_ids"`
	Extra  map[string]any `json:"extra,omitempty"`

	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// JobStatusResponse is get_job's return value per spec.md §4.10:
// {status, kind, artifact_id?, error?, utilization?, placed?, unplaced?}.
type JobStatusResponse struct {
	JobID              string      `json:"job_id"`
	Kind               jobs.Kind   `json:"kind"`
	Status             jobs.Status `json:"status"`
	ArtifactID         *uuid.UUID  `json:"artifact_id,omitempty"`
	Error              *string     `json:"error,omitempty"`
	UtilizationPercent *float64    `json:"utilization_percent,omitempty"`
	Placed             *int        `json:"placed,omitempty"`
	Unplaced           *int        `json:"unplaced,omitempty"`
}

// ArtifactDownloadResponse is get_artifact_download's return value per
// spec.md §4.10: {url, filename, size, expires_in}.
type ArtifactDownloadResponse struct {
	URL       string `json:"url"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size"`
	ExpiresIn int    `json:"expires_in"`
}
