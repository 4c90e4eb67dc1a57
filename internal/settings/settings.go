// Package settings resolves the effective parameters for a single job run
// from (request ∪ factory ∪ defaults) — C1 Settings Merger. It never
// errors: unknown request keys are ignored, and a missing default is a
// programmer bug caught by the defaults table test, not a runtime path.
package settings

// FactorySettings is the nullable, per-tenant override table. A nil field
// means "use the default."
type FactorySettings struct {
	SheetWidthMM       *float64
	SheetHeightMM      *float64
	DefaultThicknessMM *float64
	GapMM              *float64
	MachineProfile     *string
	SpindleSpeed       *float64
	FeedRateCutting    *float64
	FeedRatePlungeMM   *float64
	CutDepthMM         *float64
	SafeHeightMM       *float64
	ToolDiameterMM     *float64
}

// RequestOverrides is the set of fields a single job submission may
// override; it takes precedence over FactorySettings.
type RequestOverrides struct {
	SheetWidthMM       *float64
	SheetHeightMM      *float64
	DefaultThicknessMM *float64
	GapMM              *float64
	MachineProfile     *string
	SpindleSpeed       *float64
	FeedRateCutting    *float64
	FeedRatePlungeMM   *float64
	CutDepthMM         *float64
	SafeHeightMM       *float64
	ToolDiameterMM     *float64

	NestingRotations   *int
	StructuralOrdering *bool
	OptimizeToolpath   *bool
}

// EffectiveSettings is the fully-resolved, non-null record downstream
// components consume. Nothing past C1 ever checks for nullability.
type EffectiveSettings struct {
	SheetWidthMM       float64
	SheetHeightMM      float64
	DefaultThicknessMM float64
	GapMM              float64
	MachineProfile     string
	SpindleSpeed       float64
	FeedRateCutting    float64
	FeedRatePlungeMM   float64
	CutDepthMM         float64
	SafeHeightMM       float64
	ToolDiameterMM     float64

	// NestingRotations and the ordering knobs have no counterpart in the
	// distilled spec; they supplement the teacher's CutSettings toolpath
	// options. They default to one rotation, toolpath optimisation on and
	// structural ordering off; no downstream component reads them.
	NestingRotations   int
	StructuralOrdering bool
	OptimizeToolpath   bool

	ConfirmatFrontOffsetMM float64
	System32FrontOffsetMM  float64
	MaxShelfSpanMM         float64
	ShelfGapMM             float64
	DrawerGapMM            float64
	TieBeamHeightMM        float64

	MaxRetries    int
	BackoffFactor float64
	PresignTTLSec int
}

// defaults is the closed, versioned built-in default table. Every field of
// EffectiveSettings has an entry here.
func defaults() EffectiveSettings {
	return EffectiveSettings{
		SheetWidthMM:       2800,
		SheetHeightMM:      2070,
		DefaultThicknessMM: 16,
		GapMM:              4,
		MachineProfile:     "weihong",
		SpindleSpeed:       18000,
		FeedRateCutting:    3000,
		FeedRatePlungeMM:   600,
		CutDepthMM:         18,
		SafeHeightMM:       10,
		ToolDiameterMM:     6,

		NestingRotations:   1,
		StructuralOrdering: false,
		OptimizeToolpath:   true,

		ConfirmatFrontOffsetMM: 37,
		System32FrontOffsetMM:  37,
		MaxShelfSpanMM:         600,
		ShelfGapMM:             1.5,
		DrawerGapMM:            26,
		TieBeamHeightMM:        80,

		MaxRetries:    3,
		BackoffFactor: 2,
		PresignTTLSec: 900,
	}
}

// Merge resolves EffectiveSettings by taking, for every knob, the first
// non-nil of request, factory, then the built-in default.
func Merge(req RequestOverrides, factory FactorySettings) EffectiveSettings {
	eff := defaults()

	eff.SheetWidthMM = firstF(req.SheetWidthMM, factory.SheetWidthMM, eff.SheetWidthMM)
	eff.SheetHeightMM = firstF(req.SheetHeightMM, factory.SheetHeightMM, eff.SheetHeightMM)
	eff.DefaultThicknessMM = firstF(req.DefaultThicknessMM, factory.DefaultThicknessMM, eff.DefaultThicknessMM)
	eff.GapMM = firstF(req.GapMM, factory.GapMM, eff.GapMM)
	eff.MachineProfile = firstS(req.MachineProfile, factory.MachineProfile, eff.MachineProfile)
	eff.SpindleSpeed = firstF(req.SpindleSpeed, factory.SpindleSpeed, eff.SpindleSpeed)
	eff.FeedRateCutting = firstF(req.FeedRateCutting, factory.FeedRateCutting, eff.FeedRateCutting)
	eff.FeedRatePlungeMM = firstF(req.FeedRatePlungeMM, factory.FeedRatePlungeMM, eff.FeedRatePlungeMM)
	eff.CutDepthMM = firstF(req.CutDepthMM, factory.CutDepthMM, eff.CutDepthMM)
	eff.SafeHeightMM = firstF(req.SafeHeightMM, factory.SafeHeightMM, eff.SafeHeightMM)
	eff.ToolDiameterMM = firstF(req.ToolDiameterMM, factory.ToolDiameterMM, eff.ToolDiameterMM)

	if req.NestingRotations != nil {
		eff.NestingRotations = *req.NestingRotations
	}
	if req.StructuralOrdering != nil {
		eff.StructuralOrdering = *req.StructuralOrdering
	}
	if req.OptimizeToolpath != nil {
		eff.OptimizeToolpath = *req.OptimizeToolpath
	}

	return eff
}

func firstF(req, factory *float64, def float64) float64 {
	if req != nil {
		return *req
	}
	if factory != nil {
		return *factory
	}
	return def
}

func firstS(req, factory *string, def string) string {
	if req != nil {
		return *req
	}
	if factory != nil {
		return *factory
	}
	return def
}
