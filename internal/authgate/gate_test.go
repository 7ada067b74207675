package authgate

import (
	"strings"
	"testing"

	"github.com/kestrel-id/pulsegate/go-engine/internal/policy"
)

func allModalities() policy.Set {
	return policy.Set{policy.Cardiac: true, policy.Movement: true, policy.Touch: true}
}

func TestAuthenticateAtThreshold(t *testing.T) {
	d, err := Evaluate(Input{
		Enrolled:        true,
		Available:       allModalities(),
		Level:           policy.LevelStandard,
		Similarity:      0.90,
		Liveness:        0.95,
		LivenessChecked: true,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !d.Authenticated {
		t.Fatalf("0.90 should pass the standard threshold: %s", d.Reason)
	}
}

func TestRejectBelowThreshold(t *testing.T) {
	d, err := Evaluate(Input{
		Enrolled:        true,
		Available:       allModalities(),
		Level:           policy.LevelStandard,
		Similarity:      0.89,
		Liveness:        0.95,
		LivenessChecked: true,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Authenticated {
		t.Fatal("0.89 must fail the standard threshold")
	}
	if d.Vetoed {
		t.Fatal("threshold miss is not a veto")
	}
	if d.Reason != "below_threshold" {
		t.Fatalf("expected below_threshold, got %s", d.Reason)
	}
}

func TestVetoNotEnrolled(t *testing.T) {
	d, err := Evaluate(Input{
		Enrolled:   false,
		Available:  allModalities(),
		Level:      policy.LevelStandard,
		Similarity: 1.0,
		Liveness:   1.0,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Authenticated || !d.Vetoed {
		t.Fatal("expected a veto")
	}
	if d.Reason != string(VetoNotEnrolled) {
		t.Fatalf("expected not_enrolled, got %s", d.Reason)
	}
}

func TestVetoNoBiometricData(t *testing.T) {
	d, err := Evaluate(Input{
		Enrolled:  true,
		Available: policy.Set{},
		Level:     policy.LevelQuick,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Reason != string(VetoNoBiometricData) {
		t.Fatalf("expected no_biometric_data, got %s", d.Reason)
	}
}

func TestVetoMissingModality(t *testing.T) {
	d, err := Evaluate(Input{
		Enrolled:   true,
		Available:  policy.Set{policy.Touch: true, policy.Movement: true},
		Level:      policy.LevelHigh,
		Similarity: 0.99,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Reason != string(VetoMissingModality) {
		t.Fatalf("expected missing_modality, got %s", d.Reason)
	}
	if len(d.Vetoes) != 1 || !strings.Contains(d.Vetoes[0].Reason, "cardiac") {
		t.Fatalf("veto should name the missing modality: %+v", d.Vetoes)
	}
}

func TestVetoLivenessIgnoresPerfectSimilarity(t *testing.T) {
	d, err := Evaluate(Input{
		Enrolled:        true,
		Available:       allModalities(),
		Level:           policy.LevelStandard,
		Similarity:      1.0,
		Liveness:        0.2,
		LivenessChecked: true,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Authenticated {
		t.Fatal("replayed recording must be rejected despite perfect similarity")
	}
	if d.Reason != string(VetoLivenessFailed) {
		t.Fatalf("expected liveness_failed, got %s", d.Reason)
	}
	if !strings.Contains(d.Vetoes[0].Reason, "1.0000") {
		t.Fatalf("liveness veto should report the refused similarity: %s", d.Vetoes[0].Reason)
	}
}

func TestQuickLevelSkipsLivenessGate(t *testing.T) {
	d, err := Evaluate(Input{
		Enrolled:        true,
		Available:       policy.Set{policy.Touch: true, policy.Movement: true},
		Level:           policy.LevelQuick,
		Similarity:      0.85,
		Liveness:        0.0,
		LivenessChecked: false,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !d.Authenticated {
		t.Fatalf("quick level does not gate on liveness: %s", d.Reason)
	}
}

func TestUnknownLevel(t *testing.T) {
	if _, err := Evaluate(Input{Level: policy.Level("casual")}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
