package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/furnicam/furnicam/internal/calc"
	"github.com/furnicam/furnicam/internal/settings"
)

// Context is the tagged-union job payload: the "dynamic dictionary"
// problem DESIGN NOTES §9 flags is resolved here with one interface per
// job kind instead of an untyped map, each carrying a strongly-typed
// core plus an Extra bag for forward-compatible opaque fields.
type Context interface {
	contextKind() Kind
}

// DXFPanelInput is one panel as submitted directly to submit_dxf,
// bypassing C2 (used when a collaborator already has its own panel
// list rather than a cabinet spec).
type DXFPanelInput struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	WidthMM         float64          `json:"width_mm"`
	HeightMM        float64          `json:"height_mm"`
	ThicknessMM     float64          `json:"thickness_mm"`
	EdgeFront       bool             `json:"edge_front"`
	EdgeBack        bool             `json:"edge_back"`
	EdgeTop         bool             `json:"edge_top"`
	EdgeBottom      bool             `json:"edge_bottom"`
	Grain           calc.Grain       `json:"grain"`
	DrillingPoints  []calc.DrillPoint `json:"drilling_points,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// DXFContext is submit_dxf's payload: either a raw cabinet spec (routed
// through C2 first) or a direct panel list, plus sheet/packing
// overrides.
type DXFContext struct {
	CabinetSpec *calc.CabinetSpec        `json:"cabinet_spec,omitempty"`
	Panels      []DXFPanelInput          `json:"panels,omitempty"`
	Overrides   settings.RequestOverrides `json:"overrides,omitempty"`
	Extra       map[string]any           `json:"extra,omitempty"`
}

func (DXFContext) contextKind() Kind { return KindDXF }

// GCodeContext is submit_gcode's payload.
type GCodeContext struct {
	DXFArtifactJobID string                   `json:"dxf_artifact_job_id"`
	MachineProfile   string                   `json:"machine_profile"`
	Overrides        settings.RequestOverrides `json:"overrides,omitempty"`
	Extra            map[string]any           `json:"extra,omitempty"`
}

func (GCodeContext) contextKind() Kind { return KindGCode }

// DrillingPanelInput is one panel's drilling geometry for submit_drilling.
type DrillingPanelInput struct {
	Name           string            `json:"name"`
	WidthMM        float64           `json:"width_mm"`
	HeightMM       float64           `json:"height_mm"`
	ThicknessMM    float64           `json:"thickness_mm"`
	DrillingPoints []calc.DrillPoint `json:"drilling_points"`
}

// DrillingContext is submit_drilling's payload.
type DrillingContext struct {
	OrderID        string                   `json:"order_id"`
	Panels         []DrillingPanelInput     `json:"panels"`
	MachineProfile string                   `json:"machine_profile"`
	Overrides      settings.RequestOverrides `json:"overrides,omitempty"`
	Extra          map[string]any           `json:"extra,omitempty"`
}

func (DrillingContext) contextKind() Kind { return KindDrilling }

// ZIPContext is submit_zip's payload: the set of prior job ids whose
// artifacts get bundled into one archive.
type ZIPContext struct {
	JobIDs []string       `json:"job_ids"`
	Extra  map[string]any `json:"extra,omitempty"`
}

func (ZIPContext) contextKind() Kind { return KindZIP }

// envelope is the wire format stored in Job.Context: a job_kind
// discriminator plus the kind-specific payload.
type envelope struct {
	JobKind Kind            `json:"job_kind"`
	Data    json.RawMessage `json:"data"`
}

// EncodeContext serializes a typed Context into the envelope stored on
// Job.Context.
func EncodeContext(ctx Context) (string, error) {
	data, err := json.Marshal(ctx)
	if err != nil {
		return "", err
	}
	env := envelope{JobKind: ctx.contextKind(), Data: data}
	raw, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeContext parses a Job.Context string back into its concrete,
// kind-specific type, dispatching on the job_kind discriminator.
func DecodeContext(raw string) (Context, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, err
	}
	switch env.JobKind {
	case KindDXF:
		var c DXFContext
		if err := json.Unmarshal(env.Data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case KindGCode:
		var c GCodeContext
		if err := json.Unmarshal(env.Data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case KindDrilling:
		var c DrillingContext
		if err := json.Unmarshal(env.Data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case KindZIP:
		var c ZIPContext
		if err := json.Unmarshal(env.Data, &c); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown job_kind %q", env.JobKind)
	}
}
