package evolve

import (
	"errors"
	"math"
	"testing"

	"github.com/kestrel-id/pulsegate/go-engine/internal/vecmath"
)

func TestEvolveMovesOnePercent(t *testing.T) {
	old := []float64{1, 1, 1}
	live := []float64{2, 2, 2}
	out, metrics, err := Evolve(old, live, Config{DriftRate: 0.01})
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	for i, v := range out {
		if math.Abs(v-1.01) > 1e-12 {
			t.Fatalf("index %d: expected 1.01, got %v", i, v)
		}
	}
	wantNorm := math.Sqrt(3 * 0.01 * 0.01)
	if math.Abs(metrics.DeltaNorm-wantNorm) > 1e-12 {
		t.Fatalf("delta norm: expected %v, got %v", wantNorm, metrics.DeltaNorm)
	}
}

func TestEvolveIdenticalVectorsNoMove(t *testing.T) {
	v := []float64{0.5, -0.25, 3}
	out, metrics, err := Evolve(v, v, DefaultConfig())
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	for i := range v {
		if out[i] != v[i] {
			t.Fatalf("index %d changed", i)
		}
	}
	if metrics.DeltaNorm != 0 {
		t.Fatalf("expected zero delta, got %v", metrics.DeltaNorm)
	}
}

func TestEvolveDoesNotMutateInputs(t *testing.T) {
	old := []float64{1, 2}
	live := []float64{3, 4}
	if _, _, err := Evolve(old, live, DefaultConfig()); err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if old[0] != 1 || old[1] != 2 || live[0] != 3 || live[1] != 4 {
		t.Fatal("inputs were mutated")
	}
}

func TestEvolveDimensionMismatch(t *testing.T) {
	_, _, err := Evolve([]float64{1}, []float64{1, 2}, DefaultConfig())
	if err == nil {
		t.Fatal("expected dimension error")
	}
	var de *vecmath.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DimensionError, got %T", err)
	}
}

func TestEvolveConvergesTowardLive(t *testing.T) {
	old := []float64{0}
	live := []float64{1}
	current := old
	for i := 0; i < 500; i++ {
		next, _, err := Evolve(current, live, Config{DriftRate: 0.01})
		if err != nil {
			t.Fatalf("evolve: %v", err)
		}
		current = next
	}
	if current[0] < 0.98 {
		t.Fatalf("expected convergence toward 1, got %v", current[0])
	}
}
