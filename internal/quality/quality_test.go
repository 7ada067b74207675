package quality

import (
	"math"
	"strings"
	"testing"
)

func TestAssessPassesAboveFloor(t *testing.T) {
	r := Assess(0.61, 1.0, 0.8, DefaultConfig())
	if !r.Passed {
		t.Fatalf("0.61 cardiac should pass the 0.6 floor: %s", r.Reason)
	}
	if r.Quality.Cardiac != 0.61 {
		t.Fatalf("cardiac quality not recorded: %v", r.Quality.Cardiac)
	}
}

func TestAssessFailsBelowFloor(t *testing.T) {
	r := Assess(0.59, 1.0, 0.8, DefaultConfig())
	if r.Passed {
		t.Fatal("0.59 cardiac must fail the 0.6 floor")
	}
	if !strings.Contains(r.Reason, "cardiac") {
		t.Fatalf("reason should name cardiac: %s", r.Reason)
	}
}

func TestAssessOverallIsWeightedMean(t *testing.T) {
	r := Assess(1.0, 1.0, 1.0, DefaultConfig())
	if math.Abs(r.Quality.Overall-1.0) > 1e-12 {
		t.Fatalf("uniform quality: expected 1, got %v", r.Quality.Overall)
	}

	// Cardiac carries weight 0.35 of the 0.85 captured mass.
	r = Assess(1.0, 0, 0, DefaultConfig())
	want := 0.35 / 0.85
	if math.Abs(r.Quality.Overall-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, r.Quality.Overall)
	}
}

func TestAssessMovementTouchNotGating(t *testing.T) {
	r := Assess(0.9, 0, 0, DefaultConfig())
	if !r.Passed {
		t.Fatal("movement and touch quality must not gate enrollment")
	}
}
