package cardiac

import (
	"math"

	"github.com/kestrel-id/pulsegate/go-engine/internal/vecmath"
)

// #region liveness

// Liveness thresholds. Tuned against recorded-replay and synthetic-wave
// attacks; a score below the policy floor (0.7) blocks authentication at
// standard level and above regardless of similarity.
const (
	rsaLowHz           = 0.15
	rsaHighHz          = 0.4
	rsaMinPowerRatio   = 0.05
	entropySyntheticLo = 0.1
	entropyLiveLo      = 0.3
	entropyLiveHi      = 3.0
	morphVarFloor      = 1e-10
	rrDeltaFloor       = 0.001 // seconds
	rrStaticMaxRatio   = 0.5
)

// Liveness scores how plausibly the waveform comes from a live body rather
// than a recording or a generator. Computed on fresh data only, never
// stored. Starts at 1.0; each failed check multiplies the score down:
//
//   - no respiratory sinus arrhythmia in the 0.15-0.4 Hz band of the RR
//     spectrum (a healthy autonomic system always modulates the beat rate
//     with breathing)
//   - RR sample entropy outside the biological band, with a harsher
//     penalty below 0.1 (metronomic, i.e. synthesized)
//   - near-zero beat-to-beat morphology variance (replayed recording)
//   - more than half of successive RR differences under 1 ms
//
// Returns 0 when the waveform cannot be decomposed at all.
func (e *Engine) Liveness(signal []float64) float64 {
	a, err := e.analyze(signal)
	if err != nil {
		return 0
	}

	score := 1.0

	if !hasRespiratoryModulation(a.rr) {
		score *= 0.6
	}

	se := vecmath.SampleEntropy(a.rr, 2, vecmath.DefaultTolerance(a.rr))
	switch {
	case se < entropySyntheticLo:
		score *= 0.2
	case se < entropyLiveLo || se > entropyLiveHi || math.IsInf(se, 1):
		score *= 0.6
	}

	if morphologyVariance(a.beats) < morphVarFloor {
		score *= 0.2
	}

	if staticRRRatio(a.rr) > rrStaticMaxRatio {
		score *= 0.5
	}

	return score
}

// hasRespiratoryModulation checks that the RSA band holds at least 5% of
// total RR spectrum power.
func hasRespiratoryModulation(rr []float64) bool {
	meanRR := vecmath.Mean(rr)
	if meanRR <= 0 {
		return false
	}
	dev := make([]float64, len(rr))
	for i, v := range rr {
		dev[i] = v - meanRR
	}
	spectrum := vecmath.MagnitudeSpectrum(dev)
	if len(spectrum) == 0 {
		return false
	}

	var total float64
	for _, mag := range spectrum {
		total += mag * mag
	}
	if total == 0 {
		return false
	}
	rsa := vecmath.BandPower(spectrum, len(dev), 1/meanRR, rsaLowHz, rsaHighHz)
	return rsa/total >= rsaMinPowerRatio
}

// staticRRRatio is the proportion of successive RR differences below the
// 1 ms floor.
func staticRRRatio(rr []float64) float64 {
	if len(rr) < 2 {
		return 1
	}
	static := 0
	for i := 1; i < len(rr); i++ {
		if math.Abs(rr[i]-rr[i-1]) < rrDeltaFloor {
			static++
		}
	}
	return float64(static) / float64(len(rr)-1)
}

// #endregion liveness
