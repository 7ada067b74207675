// Package policy owns every tunable of the authentication protocol in one
// place: auth levels and their similarity thresholds, the modality set each
// level requires, the fixed fusion weights, and the segment layout of the
// combined identity vector.
package policy

import (
	"fmt"
	"time"
)

// #region modality

// Modality is one sensing channel contributing a sub-vector to the
// combined identity vector.
type Modality string

const (
	Cardiac  Modality = "cardiac"
	Movement Modality = "movement"
	Touch    Modality = "touch"
	Voice    Modality = "voice" // reserved, no engine yet
)

// Set is an explicit tagged set of available modalities.
type Set map[Modality]bool

// Empty reports whether no modality is present.
func (s Set) Empty() bool {
	for _, ok := range s {
		if ok {
			return false
		}
	}
	return true
}

// #endregion modality

// #region weights

// Fusion weights applied before concatenation. The voice slot is reserved
// but unused.
var Weights = map[Modality]float64{
	Cardiac:  0.35,
	Movement: 0.25,
	Touch:    0.25,
	Voice:    0.15,
}

// #endregion weights

// #region layout

// Modality sub-vector dimensions. Mirrored from the engines so the segment
// arithmetic lives next to the weights that produce it.
const (
	CardiacDim  = 43
	MovementDim = 30
	TouchDim    = 25

	// IdentityDim is the full enrollment vector length.
	IdentityDim = CardiacDim + MovementDim + TouchDim
)

// Layout maps each modality to its [lo, hi) range within the enrollment
// vector. Partial-modality live vectors are compared against the matching
// segment range.
type Layout struct {
	Cardiac  [2]int `json:"cardiac"`
	Movement [2]int `json:"movement"`
	Touch    [2]int `json:"touch"`
}

// DefaultLayout returns the fixed cardiac/movement/touch ordering.
func DefaultLayout() Layout {
	return Layout{
		Cardiac:  [2]int{0, CardiacDim},
		Movement: [2]int{CardiacDim, CardiacDim + MovementDim},
		Touch:    [2]int{CardiacDim + MovementDim, IdentityDim},
	}
}

// Segment returns the range for a modality; ok is false for modalities
// without a segment (voice).
func (l Layout) Segment(m Modality) (lo, hi int, ok bool) {
	switch m {
	case Cardiac:
		return l.Cardiac[0], l.Cardiac[1], true
	case Movement:
		return l.Movement[0], l.Movement[1], true
	case Touch:
		return l.Touch[0], l.Touch[1], true
	default:
		return 0, 0, false
	}
}

// #endregion layout

// #region levels

// Level is a discrete authentication strictness level.
type Level string

const (
	LevelQuick    Level = "quick"
	LevelStandard Level = "standard"
	LevelHigh     Level = "high"
	LevelForensic Level = "forensic"
)

// LevelConfig binds a level to its similarity threshold, required modality
// set and liveness gating.
type LevelConfig struct {
	Level        Level
	Threshold    float64
	Required     []Modality
	LivenessGate bool // cardiac liveness floor enforced
}

// Levels is the full protocol table. Quick trades cardiac capture latency
// for a lower threshold; everything above requires the pulse.
var Levels = map[Level]LevelConfig{
	LevelQuick: {
		Level:        LevelQuick,
		Threshold:    0.80,
		Required:     []Modality{Touch, Movement},
		LivenessGate: false,
	},
	LevelStandard: {
		Level:        LevelStandard,
		Threshold:    0.90,
		Required:     []Modality{Cardiac, Touch, Movement},
		LivenessGate: true,
	},
	LevelHigh: {
		Level:        LevelHigh,
		Threshold:    0.95,
		Required:     []Modality{Cardiac, Touch, Movement},
		LivenessGate: true,
	},
	LevelForensic: {
		Level:        LevelForensic,
		Threshold:    0.98,
		Required:     []Modality{Cardiac, Touch, Movement},
		LivenessGate: true,
	},
}

// Lookup returns the config for a level.
func Lookup(level Level) (LevelConfig, error) {
	cfg, ok := Levels[level]
	if !ok {
		return LevelConfig{}, fmt.Errorf("unknown auth level %q", level)
	}
	return cfg, nil
}

// Required returns the modalities a level combines.
func Required(level Level) ([]Modality, error) {
	cfg, err := Lookup(level)
	if err != nil {
		return nil, err
	}
	return cfg.Required, nil
}

// Missing returns the level's required modalities absent from the available
// set.
func Missing(level Level, available Set) ([]Modality, error) {
	required, err := Required(level)
	if err != nil {
		return nil, err
	}
	var missing []Modality
	for _, m := range required {
		if !available[m] {
			missing = append(missing, m)
		}
	}
	return missing, nil
}

// Satisfied reports whether the available set covers the level's
// requirements.
func Satisfied(level Level, available Set) (bool, error) {
	missing, err := Missing(level, available)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

// #endregion levels

// #region thresholds

// Protocol constants shared by the manager and the gate.
const (
	// LivenessFloor blocks authentication at standard level and above.
	LivenessFloor = 0.70
	// ContinuousThreshold is deliberately below every discrete level.
	ContinuousThreshold = 0.75
	// ContinuousWeight is the equal weighting for the two passive
	// modalities during continuous monitoring.
	ContinuousWeight = 0.5
	// EvolveTrigger is the similarity above which a successful
	// authentication nudges the enrollment vector.
	EvolveTrigger = 0.92
	// DriftRate is the per-event enrollment drift. Tracks slow biological
	// aging; must stay small.
	DriftRate = 0.01
)

// ContinuousInterval is the continuous-auth evaluation cadence.
const ContinuousInterval = 5 * time.Second

// #endregion thresholds
