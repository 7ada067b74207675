// Package movement extracts a 30-dimension behavioral feature vector from
// triaxial accelerometer data: gait rhythm, postural sway and
// device-interaction micro-movement. A bounded rolling buffer supports
// continuous authentication.
package movement

import (
	"errors"
	"math"

	"github.com/kestrel-id/pulsegate/go-engine/internal/vecmath"
)

// #region config

// Dim is the movement feature vector dimension:
// 12 gait + 8 postural + 10 device-interaction.
const Dim = 30

// ErrAxisMismatch means the three axis slices differ in length.
var ErrAxisMismatch = errors.New("accelerometer axis length mismatch")

// Config holds sampling and buffering parameters.
type Config struct {
	SampleRate    float64 // Hz
	BufferSeconds float64 // rolling buffer span
	MinSeconds    float64 // minimum buffered span before the accessor yields
}

// DefaultConfig returns the reference capture parameters (100 Hz IMU).
func DefaultConfig() Config {
	return Config{
		SampleRate:    100,
		BufferSeconds: 30,
		MinSeconds:    5,
	}
}

// #endregion config

// #region engine

// Engine is stateless except for its rolling sample buffer.
type Engine struct {
	cfg Config
	buf *ringBuffer
}

// NewEngine creates a movement engine with an empty rolling buffer.
func NewEngine(cfg Config) *Engine {
	if cfg.SampleRate <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{
		cfg: cfg,
		buf: newRingBuffer(int(cfg.BufferSeconds * cfg.SampleRate)),
	}
}

// #endregion engine

// #region extract

// ExtractFeatures computes the 30-dim vector from the three axis streams.
func (e *Engine) ExtractFeatures(x, y, z []float64) ([]float64, error) {
	if len(x) != len(y) || len(y) != len(z) {
		return nil, ErrAxisMismatch
	}
	if len(x) == 0 {
		return nil, ErrAxisMismatch
	}

	mag := make([]float64, len(x))
	for i := range x {
		mag[i] = math.Sqrt(x[i]*x[i] + y[i]*y[i] + z[i]*z[i])
	}

	features := make([]float64, 0, Dim)
	features = append(features, gaitFeatures(x, y, z, mag, e.cfg.SampleRate)...)
	features = append(features, posturalFeatures(x, y, z, mag, e.cfg.SampleRate)...)
	features = append(features, interactionFeatures(x, y, z, mag, e.cfg.SampleRate)...)
	return features, nil
}

// Quality is 0 when no real motion was captured (near-zero feature mass) or
// any value is non-finite, else 1.
func (e *Engine) Quality(features []float64) float64 {
	if len(features) != Dim || !vecmath.AllFinite(features) {
		return 0
	}
	var sum float64
	for _, v := range features {
		sum += math.Abs(v)
	}
	if sum < 1e-9 {
		return 0
	}
	return 1
}

// #endregion extract

// #region gait

// gaitFeatures (12): step frequency from the 0.5-3 Hz band, step and stride
// autocorrelation regularity, per-axis and magnitude mean/std, magnitude RMS.
func gaitFeatures(x, y, z, mag []float64, rate float64) []float64 {
	out := make([]float64, 12)

	spectrum := vecmath.MagnitudeSpectrum(mag)
	stepFreq := dominantFrequency(spectrum, len(mag), rate, 0.5, 3.0)
	out[0] = stepFreq

	if stepFreq > 0 {
		stepLag := int(rate / stepFreq)
		out[1] = vecmath.Autocorrelation(mag, stepLag)
		out[2] = vecmath.Autocorrelation(mag, 2*stepLag)
	}

	out[3] = vecmath.Mean(x)
	out[4] = vecmath.Mean(y)
	out[5] = vecmath.Mean(z)
	out[6] = vecmath.Std(x)
	out[7] = vecmath.Std(y)
	out[8] = vecmath.Std(z)
	out[9] = vecmath.Mean(mag)
	out[10] = vecmath.Std(mag)
	out[11] = vecmath.RMS(mag)
	return out
}

// #endregion gait

// #region postural

// posturalFeatures (8): low and mid sway band energy, three tilt angles
// from the mean gravity vector, jerk statistics, sway area proxy.
func posturalFeatures(x, y, z, mag []float64, rate float64) []float64 {
	out := make([]float64, 8)

	spectrum := vecmath.MagnitudeSpectrum(mag)
	out[0] = vecmath.BandPower(spectrum, len(mag), rate, 0.01, 0.5)
	out[1] = vecmath.BandPower(spectrum, len(mag), rate, 0.5, 2.0)

	gx, gy, gz := vecmath.Mean(x), vecmath.Mean(y), vecmath.Mean(z)
	gMag := math.Sqrt(gx*gx + gy*gy + gz*gz)
	out[2] = math.Atan2(gx, math.Sqrt(gy*gy+gz*gz)) // pitch
	out[3] = math.Atan2(gy, math.Sqrt(gx*gx+gz*gz)) // roll
	if gMag > 0 {
		out[4] = math.Acos(clamp(gz/gMag, -1, 1)) // inclination
	}

	jerk := jerkMagnitude(mag, rate)
	out[5] = vecmath.Mean(jerk)
	out[6] = maxOf(jerk)
	out[7] = vecmath.Std(x) * vecmath.Std(y) // sway area proxy
	return out
}

// #endregion postural

// #region interaction

// interactionFeatures (10): peak and 95th-percentile acceleration change,
// 5-25 Hz micro-tremor energy, spectral centroid and entropy, pairwise axis
// correlations, approximate entropy, magnitude range.
func interactionFeatures(x, y, z, mag []float64, rate float64) []float64 {
	out := make([]float64, 10)

	deltas := make([]float64, 0, len(mag))
	for i := 1; i < len(mag); i++ {
		deltas = append(deltas, math.Abs(mag[i]-mag[i-1]))
	}
	out[0] = maxOf(deltas)
	out[1] = vecmath.Percentile(deltas, 95)

	spectrum := vecmath.MagnitudeSpectrum(mag)
	out[2] = vecmath.BandPower(spectrum, len(mag), rate, 5, 25)
	out[3] = spectralCentroid(spectrum, len(mag), rate)
	out[4] = spectralEntropy(spectrum)

	out[5] = vecmath.Correlation(x, y)
	out[6] = vecmath.Correlation(x, z)
	out[7] = vecmath.Correlation(y, z)

	out[8] = vecmath.ApproxEntropy(downsample(mag, 300), 2, vecmath.DefaultTolerance(mag))

	min, max := mag[0], mag[0]
	for _, v := range mag {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out[9] = max - min
	return out
}

// #endregion interaction

// #region helpers

func dominantFrequency(spectrum []float64, n int, rate, lo, hi float64) float64 {
	best, bestMag := 0.0, 0.0
	for k, mag := range spectrum {
		freq := float64(k) * rate / float64(n)
		if freq >= lo && freq < hi && mag > bestMag {
			best, bestMag = freq, mag
		}
	}
	return best
}

func spectralCentroid(spectrum []float64, n int, rate float64) float64 {
	var sumMag, weighted float64
	for k, mag := range spectrum {
		sumMag += mag
		weighted += float64(k) * rate / float64(n) * mag
	}
	if sumMag == 0 {
		return 0
	}
	return weighted / sumMag
}

// spectralEntropy is the Shannon entropy of the normalized power spectrum.
func spectralEntropy(spectrum []float64) float64 {
	var total float64
	for _, mag := range spectrum {
		total += mag * mag
	}
	if total == 0 {
		return 0
	}
	var entropy float64
	for _, mag := range spectrum {
		p := mag * mag / total
		if p > 0 {
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

func jerkMagnitude(mag []float64, rate float64) []float64 {
	if len(mag) < 2 {
		return []float64{0}
	}
	jerk := make([]float64, len(mag)-1)
	for i := 1; i < len(mag); i++ {
		jerk[i-1] = math.Abs(mag[i]-mag[i-1]) * rate
	}
	return jerk
}

// downsample keeps approximate entropy tractable on long buffers.
func downsample(v []float64, maxLen int) []float64 {
	if len(v) <= maxLen {
		return v
	}
	stride := len(v) / maxLen
	out := make([]float64, 0, maxLen)
	for i := 0; i < len(v); i += stride {
		out = append(out, v[i])
	}
	return out
}

func maxOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	max := v[0]
	for _, x := range v[1:] {
		if x > max {
			max = x
		}
	}
	return max
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion helpers
