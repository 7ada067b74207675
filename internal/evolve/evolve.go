// Package evolve implements bounded enrollment drift: after a
// high-confidence authentication the stored identity vector moves a small
// fixed fraction toward the live sample, tracking slow biological change
// without letting any single session redefine the identity.
package evolve

import (
	"math"

	"github.com/kestrel-id/pulsegate/go-engine/internal/policy"
	"github.com/kestrel-id/pulsegate/go-engine/internal/vecmath"
)

// #region config

// Config holds the drift parameters.
type Config struct {
	DriftRate float64 // fraction moved toward the live vector per event
}

// DefaultConfig returns the reference drift rate.
func DefaultConfig() Config {
	return Config{DriftRate: policy.DriftRate}
}

// #endregion config

// #region metrics

// Metrics captures telemetry from one drift event.
type Metrics struct {
	DeltaNorm float64 // L2 distance moved
	DriftRate float64
}

// #endregion metrics

// #region evolve

// Evolve computes new = old + d·(live-old) elementwise. The incremental
// form returns old bit-exactly when live equals old, so a no-op drift
// never perturbs the vector or its hash. Neither input is mutated; the
// caller owns zeroing the live vector afterwards.
func Evolve(old, live []float64, cfg Config) ([]float64, Metrics, error) {
	if len(old) != len(live) {
		return nil, Metrics{}, &vecmath.DimensionError{A: len(old), B: len(live)}
	}

	d := cfg.DriftRate
	out := make([]float64, len(old))
	var deltaSq float64
	for i := range old {
		diff := d * (live[i] - old[i])
		out[i] = old[i] + diff
		deltaSq += diff * diff
	}

	return out, Metrics{
		DeltaNorm: math.Sqrt(deltaSq),
		DriftRate: d,
	}, nil
}

// #endregion evolve
