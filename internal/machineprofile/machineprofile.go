// Package machineprofile defines the closed set of five CNC controller
// dialects the G-code postprocessor emits for. Profiles are immutable
// compile-time constants, not database rows — adding a dialect is a code
// change, generalizing the teacher's model.GCodeProfile/GetProfile table
// to the spec-mandated weihong/syntec/fanuc/dsp/homag set.
package machineprofile

import (
	"fmt"
	"strings"
)

// DwellUnit selects whether a profile's dwell code argument is expressed
// in milliseconds or seconds.
type DwellUnit int

const (
	DwellMilliseconds DwellUnit = iota
	DwellSeconds
)

// DrillCycle selects the canned drilling cycle a profile issues.
type DrillCycle string

const (
	CycleStraight DrillCycle = "G81"
	CyclePeck     DrillCycle = "G83"
)

// Profile is a fixed, named machine-controller record. Every field is set
// at package init time; callers may override individual feed/speed/depth
// values per job via context, but never the structural fields (header,
// footer, dwell unit, drill cycle, line-number policy).
type Profile struct {
	ID   string
	Name string

	StartLines []string
	EndLines   []string

	CommentPrefix string
	CommentSuffix string

	LineNumbers    bool
	LineNumberIncr int

	DwellUnit  DwellUnit
	DrillCycle DrillCycle
	RetractZ   float64

	FeedRateRapid   float64
	FeedRateCutting float64
	FeedRatePlunge  float64
	SpindleSpeed    float64
	ToolDiameter    float64
	SafeHeight      float64
	CutDepth        float64
	StepDown        float64

	UseCoolant   bool
	DecimalPlace int
}

// Comment wraps text in the profile's comment delimiters.
func (p Profile) Comment(text string) string {
	return p.CommentPrefix + text + p.CommentSuffix
}

// DwellCode returns the G04 dwell line for this profile's time unit.
// weihong expresses dwell in milliseconds (G04 P500); the rest in seconds
// (G04 P0.5), per spec.md §4.5.
func (p Profile) DwellCode(seconds float64) string {
	if p.DwellUnit == DwellMilliseconds {
		return fmt.Sprintf("G04 P%d", int(seconds*1000))
	}
	return fmt.Sprintf("G04 P%s", trimFloat(seconds, p.DecimalPlace))
}

func trimFloat(v float64, places int) string {
	s := fmt.Sprintf("%.*f", places, v)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// DrillCycleClose returns the canned-cycle cancel code every dialect in
// the closed set shares, regardless of which drilling cycle it opened
// with.
func (p Profile) DrillCycleClose() string {
	return "G80"
}

var registry = map[string]Profile{
	"weihong": {
		ID:              "weihong",
		Name:            "Weihong NK1xx",
		StartLines:      []string{"%", "G21 G90 G94", "G17"},
		EndLines:        []string{"M05", "M30", "%"},
		CommentPrefix:   "(",
		CommentSuffix:   ")",
		LineNumbers:     true,
		LineNumberIncr:  10,
		DwellUnit:       DwellMilliseconds,
		DrillCycle:      CyclePeck,
		RetractZ:        5.0,
		FeedRateRapid:   8000,
		FeedRateCutting: 3000,
		FeedRatePlunge:  600,
		SpindleSpeed:    18000,
		ToolDiameter:    6.0,
		SafeHeight:      10.0,
		CutDepth:        18.0,
		StepDown:        6.0,
		UseCoolant:      false,
		DecimalPlace:    3,
	},
	"syntec": {
		ID:              "syntec",
		Name:            "Syntec 21MA",
		StartLines:      []string{"G21 G90 G94 G17"},
		EndLines:        []string{"M05", "M02"},
		CommentPrefix:   "(",
		CommentSuffix:   ")",
		LineNumbers:     false,
		DwellUnit:       DwellSeconds,
		DrillCycle:      CyclePeck,
		RetractZ:        5.0,
		FeedRateRapid:   9000,
		FeedRateCutting: 3500,
		FeedRatePlunge:  700,
		SpindleSpeed:    18000,
		ToolDiameter:    6.0,
		SafeHeight:      10.0,
		CutDepth:        18.0,
		StepDown:        6.0,
		UseCoolant:      false,
		DecimalPlace:    3,
	},
	"fanuc": {
		ID:              "fanuc",
		Name:            "Fanuc 0i-MF",
		StartLines:      []string{"G21", "G90 G94 G17", "G54"},
		EndLines:        []string{"M05", "M09", "M30"},
		CommentPrefix:   "(",
		CommentSuffix:   ")",
		LineNumbers:     true,
		LineNumberIncr:  5,
		DwellUnit:       DwellSeconds,
		DrillCycle:      CycleStraight,
		RetractZ:        3.0,
		FeedRateRapid:   10000,
		FeedRateCutting: 4000,
		FeedRatePlunge:  800,
		SpindleSpeed:    20000,
		ToolDiameter:    6.0,
		SafeHeight:      8.0,
		CutDepth:        18.0,
		StepDown:        5.0,
		UseCoolant:      true,
		DecimalPlace:    4,
	},
	"dsp": {
		ID:              "dsp",
		Name:            "DSP NcStudio",
		StartLines:      []string{"G21 G90", "G94 G17"},
		EndLines:        []string{"M05", "M30"},
		CommentPrefix:   "(",
		CommentSuffix:   ")",
		LineNumbers:     false,
		DwellUnit:       DwellSeconds,
		DrillCycle:      CycleStraight,
		RetractZ:        5.0,
		FeedRateRapid:   7000,
		FeedRateCutting: 2800,
		FeedRatePlunge:  500,
		SpindleSpeed:    16000,
		ToolDiameter:    6.0,
		SafeHeight:      10.0,
		CutDepth:        18.0,
		StepDown:        6.0,
		UseCoolant:      false,
		DecimalPlace:    2,
	},
	"homag": {
		ID:              "homag",
		Name:            "Homag powerTouch",
		StartLines:      []string{"%", "G21 G90 G94 G17", "G43 H01"},
		EndLines:        []string{"M05", "M09", "M30", "%"},
		CommentPrefix:   "(",
		CommentSuffix:   ")",
		LineNumbers:     true,
		LineNumberIncr:  10,
		DwellUnit:       DwellSeconds,
		DrillCycle:      CyclePeck,
		RetractZ:        4.0,
		FeedRateRapid:   9500,
		FeedRateCutting: 3800,
		FeedRatePlunge:  650,
		SpindleSpeed:    19000,
		ToolDiameter:    6.0,
		SafeHeight:      10.0,
		CutDepth:        18.0,
		StepDown:        6.0,
		UseCoolant:      true,
		DecimalPlace:    3,
	},
}

// Get returns the named profile. ok is false for an id outside the closed
// set of five; the worker's G-code and drilling branches then log a
// warning and fall back to weihong.
func Get(id string) (Profile, bool) {
	p, ok := registry[id]
	return p, ok
}

// Names returns the closed set of valid profile ids.
func Names() []string {
	return []string{"weihong", "syntec", "fanuc", "dsp", "homag"}
}
