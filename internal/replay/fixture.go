// Package replay runs recorded authentication scenarios through the full
// pipeline against an in-memory store: one enrollment, then a sequence of
// sessions with expected decisions. Fixtures describe sensors as synth
// generator parameters, so they stay small and fully deterministic.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kestrel-id/pulsegate/go-engine/internal/synth"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string           `json:"description"`
	Enrollment  FixtureSensors   `json:"enrollment"`
	Sessions    []FixtureSession `json:"sessions"`
}

// FixtureSensors describes one capture. A nil modality is absent from the
// sample.
type FixtureSensors struct {
	PPG      *FixturePPG      `json:"ppg,omitempty"`
	Walk     *FixtureWalk     `json:"walk,omitempty"`
	Gestures *FixtureGestures `json:"gestures,omitempty"`
}

// FixturePPG mirrors synth.PPGConfig with JSON tags plus a duration.
type FixturePPG struct {
	Seconds     float64 `json:"seconds"`
	SampleRate  float64 `json:"sample_rate"`
	HeartRate   float64 `json:"heart_rate"`
	HRVJitter   float64 `json:"hrv_jitter"`
	RespDepth   float64 `json:"resp_depth"`
	MorphJitter float64 `json:"morph_jitter"`
	RespRate    float64 `json:"resp_rate"`
	NotchDepth  float64 `json:"notch_depth"`
	Noise       float64 `json:"noise"`
	Seed        int64   `json:"seed"`
}

// FixtureWalk mirrors synth.WalkConfig with JSON tags plus a duration.
type FixtureWalk struct {
	Seconds    float64 `json:"seconds"`
	SampleRate float64 `json:"sample_rate"`
	StepFreq   float64 `json:"step_freq"`
	Amplitude  float64 `json:"amplitude"`
	Noise      float64 `json:"noise"`
	Phase      float64 `json:"phase"`
	Seed       int64   `json:"seed"`
}

// FixtureGestures mirrors synth.GestureConfig with JSON tags.
type FixtureGestures struct {
	Taps        int     `json:"taps"`
	Swipes      int     `json:"swipes"`
	Pressure    float64 `json:"pressure"`
	PressureVar float64 `json:"pressure_var"`
	IntervalMS  float64 `json:"interval_ms"`
	TempoJitter float64 `json:"tempo_jitter"`
	Seed        int64   `json:"seed"`
}

// FixtureSession is one recorded authentication attempt.
type FixtureSession struct {
	SessionID string          `json:"session_id"`
	Level     string          `json:"level"`
	Sensors   FixtureSensors  `json:"sensors"`
	Expected  FixtureExpected `json:"expected"`
}

// FixtureExpected captures the expected decision for a session.
type FixtureExpected struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToPPGConfig converts fixture parameters to the generator config.
func (p *FixturePPG) ToPPGConfig() synth.PPGConfig {
	return synth.PPGConfig{
		SampleRate:  p.SampleRate,
		HeartRate:   p.HeartRate,
		HRVJitter:   p.HRVJitter,
		RespDepth:   p.RespDepth,
		MorphJitter: p.MorphJitter,
		RespRate:    p.RespRate,
		NotchDepth:  p.NotchDepth,
		Noise:       p.Noise,
		Seed:        p.Seed,
	}
}

// ToWalkConfig converts fixture parameters to the generator config.
func (w *FixtureWalk) ToWalkConfig() synth.WalkConfig {
	return synth.WalkConfig{
		SampleRate: w.SampleRate,
		StepFreq:   w.StepFreq,
		Amplitude:  w.Amplitude,
		Noise:      w.Noise,
		Phase:      w.Phase,
		Seed:       w.Seed,
	}
}

// ToGestureConfig converts fixture parameters to the generator config.
func (g *FixtureGestures) ToGestureConfig() synth.GestureConfig {
	return synth.GestureConfig{
		Taps:        g.Taps,
		Swipes:      g.Swipes,
		Pressure:    g.Pressure,
		PressureVar: g.PressureVar,
		IntervalMS:  g.IntervalMS,
		TempoJitter: g.TempoJitter,
		Seed:        g.Seed,
	}
}

// #endregion fixture-loader

// #region fixture-defaults

// DefaultFixturePPG returns live-looking pulse parameters, suitable as a
// starting point for exported fixtures.
func DefaultFixturePPG(seconds float64, seed int64) *FixturePPG {
	cfg := synth.DefaultPPGConfig()
	return &FixturePPG{
		Seconds:     seconds,
		SampleRate:  cfg.SampleRate,
		HeartRate:   cfg.HeartRate,
		HRVJitter:   cfg.HRVJitter,
		RespDepth:   cfg.RespDepth,
		MorphJitter: cfg.MorphJitter,
		RespRate:    cfg.RespRate,
		NotchDepth:  cfg.NotchDepth,
		Noise:       cfg.Noise,
		Seed:        seed,
	}
}

// DefaultFixtureWalk returns walking parameters.
func DefaultFixtureWalk(seconds float64, seed int64) *FixtureWalk {
	cfg := synth.DefaultWalkConfig()
	return &FixtureWalk{
		Seconds:    seconds,
		SampleRate: cfg.SampleRate,
		StepFreq:   cfg.StepFreq,
		Amplitude:  cfg.Amplitude,
		Noise:      cfg.Noise,
		Phase:      cfg.Phase,
		Seed:       seed,
	}
}

// DefaultFixtureGestures returns a mixed tap and swipe sequence.
func DefaultFixtureGestures(seed int64) *FixtureGestures {
	cfg := synth.DefaultGestureConfig()
	return &FixtureGestures{
		Taps:        cfg.Taps,
		Swipes:      cfg.Swipes,
		Pressure:    cfg.Pressure,
		PressureVar: cfg.PressureVar,
		IntervalMS:  cfg.IntervalMS,
		TempoJitter: cfg.TempoJitter,
		Seed:        seed,
	}
}

// #endregion fixture-defaults
