// Package quality assesses per-modality signal quality at enrollment time
// and enforces the single mandatory gate: cardiac quality must clear the
// floor. Movement and touch quality are recorded but not gating.
package quality

import (
	"fmt"

	"github.com/kestrel-id/pulsegate/go-engine/internal/policy"
)

// #region types

// ModalityQuality is the per-modality score set captured at enrollment.
type ModalityQuality struct {
	Cardiac  float64 `json:"cardiac"`
	Movement float64 `json:"movement"`
	Touch    float64 `json:"touch"`
	Overall  float64 `json:"overall"`
}

// Config holds the enrollment acceptance thresholds.
type Config struct {
	CardiacFloor float64
}

// DefaultConfig returns the reference floor.
func DefaultConfig() Config {
	return Config{CardiacFloor: 0.6}
}

// Result is the assessment output.
type Result struct {
	Quality ModalityQuality
	Passed  bool
	Reason  string
}

// #endregion types

// #region assess

// Assess combines the engine scores. Overall is the fusion-weighted mean
// over the three captured modalities (voice slot excluded).
func Assess(cardiacQ, movementQ, touchQ float64, cfg Config) Result {
	wc := policy.Weights[policy.Cardiac]
	wm := policy.Weights[policy.Movement]
	wt := policy.Weights[policy.Touch]

	overall := (cardiacQ*wc + movementQ*wm + touchQ*wt) / (wc + wm + wt)

	q := ModalityQuality{
		Cardiac:  cardiacQ,
		Movement: movementQ,
		Touch:    touchQ,
		Overall:  overall,
	}

	if cardiacQ < cfg.CardiacFloor {
		return Result{
			Quality: q,
			Passed:  false,
			Reason:  fmt.Sprintf("cardiac quality %.2f below floor %.2f", cardiacQ, cfg.CardiacFloor),
		}
	}

	return Result{Quality: q, Passed: true}
}

// #endregion assess
