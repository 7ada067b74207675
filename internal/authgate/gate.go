// Package authgate evaluates whether a live sample authenticates against
// the enrolled identity. Hard vetoes are checked first, and a veto rejects
// regardless of similarity; then the level's similarity threshold decides.
package authgate

import (
	"fmt"

	"github.com/kestrel-id/pulsegate/go-engine/internal/policy"
)

// #region types

// VetoType enumerates hard rejection categories. The string values are the
// failure reasons surfaced to callers.
type VetoType string

const (
	VetoNotEnrolled     VetoType = "not_enrolled"
	VetoNoBiometricData VetoType = "no_biometric_data"
	VetoMissingModality VetoType = "missing_modality"
	VetoLivenessFailed  VetoType = "liveness_failed"
)

// Veto is one detected hard rejection condition.
type Veto struct {
	Type   VetoType
	Reason string
}

// Input bundles everything the gate needs. Similarity is computed by the
// caller before gating so a liveness rejection can still report the score
// it refused to honor.
type Input struct {
	Enrolled        bool
	Available       policy.Set
	Level           policy.Level
	Similarity      float64
	Liveness        float64
	LivenessChecked bool // cardiac data was present and scored
}

// Decision is the gate output.
type Decision struct {
	Authenticated bool
	Reason        string // veto type or "below_threshold"; empty on success
	Vetoed        bool
	Vetoes        []Veto
	Similarity    float64
	Threshold     float64
}

// #endregion types

// #region evaluate

// Evaluate runs the veto pass, then the threshold compare.
func Evaluate(in Input) (Decision, error) {
	cfg, err := policy.Lookup(in.Level)
	if err != nil {
		return Decision{}, err
	}

	var vetoes []Veto

	if !in.Enrolled {
		vetoes = append(vetoes, Veto{
			Type:   VetoNotEnrolled,
			Reason: "no enrollment record exists",
		})
	}

	if in.Available.Empty() {
		vetoes = append(vetoes, Veto{
			Type:   VetoNoBiometricData,
			Reason: "no modality inputs supplied",
		})
	} else if in.Enrolled {
		missing, err := policy.Missing(in.Level, in.Available)
		if err != nil {
			return Decision{}, err
		}
		if len(missing) > 0 {
			vetoes = append(vetoes, Veto{
				Type:   VetoMissingModality,
				Reason: fmt.Sprintf("level %s requires %v", in.Level, missing),
			})
		}
	}

	// Liveness is independent of similarity: a perfect cosine score from a
	// replayed recording must still be rejected.
	if len(vetoes) == 0 && cfg.LivenessGate && in.LivenessChecked && in.Liveness < policy.LivenessFloor {
		vetoes = append(vetoes, Veto{
			Type: VetoLivenessFailed,
			Reason: fmt.Sprintf("liveness %.2f below floor %.2f (similarity was %.4f)",
				in.Liveness, policy.LivenessFloor, in.Similarity),
		})
	}

	if len(vetoes) > 0 {
		return Decision{
			Authenticated: false,
			Reason:        string(vetoes[0].Type),
			Vetoed:        true,
			Vetoes:        vetoes,
			Similarity:    in.Similarity,
			Threshold:     cfg.Threshold,
		}, nil
	}

	if in.Similarity < cfg.Threshold {
		return Decision{
			Authenticated: false,
			Reason:        "below_threshold",
			Similarity:    in.Similarity,
			Threshold:     cfg.Threshold,
		}, nil
	}

	return Decision{
		Authenticated: true,
		Similarity:    in.Similarity,
		Threshold:     cfg.Threshold,
	}, nil
}

// #endregion evaluate
