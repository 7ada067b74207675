// Package cardiac extracts a 43-dimension identity feature vector from a
// photoplethysmogram (blood-volume pulse captured via camera+flash), scores
// signal quality for enrollment, and scores liveness for authentication.
package cardiac

import (
	"errors"
	"math"

	"github.com/kestrel-id/pulsegate/go-engine/internal/vecmath"
)

// #region errors

var (
	// ErrSignalTooShort means fewer than MinSeconds of signal were supplied.
	ErrSignalTooShort = errors.New("cardiac signal too short")
	// ErrInsufficientCycles means fewer than MinBeats systolic peaks were found.
	ErrInsufficientCycles = errors.New("insufficient cardiac cycles")
)

// #endregion errors

// #region config

// Dim is the cardiac feature vector dimension:
// 15 morphological + 8 interval + 12 variability + 8 spectral.
const Dim = 43

// Feature indices the quality scorer reads back out of the vector.
const (
	idxHeartRate = 16
	idxSDNN      = 23
)

// Config holds the sampling and acceptance parameters.
type Config struct {
	SampleRate   float64 // Hz
	MinSeconds   float64 // minimum signal duration
	MinBeats     int     // minimum detected systolic peaks
	MaxHeartRate float64 // BPM, bounds the minimum inter-peak distance
}

// DefaultConfig returns the reference capture parameters (30 Hz camera PPG).
func DefaultConfig() Config {
	return Config{
		SampleRate:   30,
		MinSeconds:   5,
		MinBeats:     5,
		MaxHeartRate: 200,
	}
}

// #endregion config

// #region engine

// Engine is stateless; one instance is shared by enrollment and
// authentication paths.
type Engine struct {
	cfg Config
}

// NewEngine creates a cardiac engine.
func NewEngine(cfg Config) *Engine {
	if cfg.SampleRate <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// #endregion engine

// #region extract

// analysis is the intermediate decomposition shared by feature extraction
// and liveness scoring.
type analysis struct {
	filtered []float64
	peaks    []int
	rr       []float64 // inter-beat intervals, seconds
	beats    [][]float64
	avgBeat  []float64
}

func (e *Engine) analyze(signal []float64) (*analysis, error) {
	if float64(len(signal)) < e.cfg.MinSeconds*e.cfg.SampleRate {
		return nil, ErrSignalTooShort
	}

	filtered := bandPass(signal, e.cfg.SampleRate)

	minDistance := int(e.cfg.SampleRate * 60 / e.cfg.MaxHeartRate)
	if minDistance < 1 {
		minDistance = 1
	}
	peaks := vecmath.FindPeaks(filtered, minDistance, 0.5)
	if len(peaks) < e.cfg.MinBeats {
		return nil, ErrInsufficientCycles
	}

	// The band-pass settling transient displaces the first detected peak,
	// so the interval it bounds is discarded. Keeping it would hand a
	// perfectly periodic waveform a few ms of spurious SDNN.
	var rr []float64
	for i := 2; i < len(peaks); i++ {
		rr = append(rr, float64(peaks[i]-peaks[i-1])/e.cfg.SampleRate)
	}

	beats := segmentBeats(filtered, peaks)
	avgBeat := averageBeat(beats)

	return &analysis{
		filtered: filtered,
		peaks:    peaks,
		rr:       rr,
		beats:    beats,
		avgBeat:  avgBeat,
	}, nil
}

// ExtractFeatures runs the full pipeline: band-pass to the 0.5-4 Hz
// physiological band, systolic peak detection, beat segmentation and
// averaging, then the four feature groups concatenated in fixed order.
func (e *Engine) ExtractFeatures(signal []float64) ([]float64, error) {
	a, err := e.analyze(signal)
	if err != nil {
		return nil, err
	}

	features := make([]float64, 0, Dim)
	features = append(features, morphologicalFeatures(a.avgBeat, e.cfg.SampleRate)...)
	features = append(features, intervalFeatures(a.rr)...)
	features = append(features, variabilityFeatures(a.rr)...)
	features = append(features, spectralFeatures(a.filtered, e.cfg.SampleRate)...)
	return features, nil
}

// #endregion extract

// #region quality

// Quality scores an extracted feature vector in [0,1] for enrollment.
// Starts at 1.0 and multiplies down for physiologically implausible heart
// rate, near-zero variability (flat or artifact signal), and any non-finite
// value. Computed at enrollment time only.
func (e *Engine) Quality(features []float64) float64 {
	if len(features) != Dim {
		return 0
	}
	if !vecmath.AllFinite(features) {
		return 0
	}

	score := 1.0

	hr := features[idxHeartRate]
	switch {
	case hr < 40 || hr > 200:
		score *= 0.3
	case hr < 50 || hr > 150:
		score *= 0.8
	}

	// SDNN below 1 ms means the beat train is too regular to be a live
	// finger on the sensor.
	if features[idxSDNN] < 1.0 {
		score *= 0.2
	}

	return score
}

// #endregion quality

// #region helpers

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func clampFinite(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return min
	}
	if math.IsInf(v, 1) || v > max {
		return max
	}
	if math.IsInf(v, -1) || v < min {
		return min
	}
	return v
}

// #endregion helpers
