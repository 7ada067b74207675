// Package synth generates deterministic sensor streams for fixtures and
// tests: a pulse waveform with controllable physiological variability, a
// walking accelerometer trace and touch gesture sequences. The same seed
// and config always produce the same stream.
package synth

import (
	"math"
	"math/rand"

	"github.com/kestrel-id/pulsegate/go-engine/internal/touch"
)

// #region ppg

// PPGConfig shapes the synthetic pulse waveform.
type PPGConfig struct {
	SampleRate float64 // Hz
	HeartRate  float64 // bpm

	// Physiological variability. Zeroing all three produces a metronome
	// pulse, which is what a replayed or synthesized signal looks like.
	HRVJitter   float64 // fractional random beat interval jitter
	RespDepth   float64 // fractional beat interval modulation by breathing
	MorphJitter float64 // fractional per-beat amplitude jitter

	RespRate   float64 // breathing rate, Hz
	NotchDepth float64 // dicrotic wave amplitude relative to systolic peak
	Noise      float64 // additive sample noise amplitude
	Seed       int64
}

// DefaultPPGConfig returns a live-looking pulse: resting heart rate,
// respiratory sinus arrhythmia and per-beat jitter. The variability spans
// several sample periods at 30 Hz so beat intervals stay irregular after
// peak quantization.
func DefaultPPGConfig() PPGConfig {
	return PPGConfig{
		SampleRate:  30,
		HeartRate:   72,
		HRVJitter:   0.04,
		RespDepth:   0.08,
		MorphJitter: 0.02,
		RespRate:    0.25,
		NotchDepth:  0.3,
		Noise:       0.005,
		Seed:        1,
	}
}

// FlatPPGConfig returns a metronome pulse with zero variability, the
// signature of a replayed recording.
func FlatPPGConfig() PPGConfig {
	cfg := DefaultPPGConfig()
	cfg.HRVJitter = 0
	cfg.RespDepth = 0
	cfg.MorphJitter = 0
	cfg.Noise = 0
	return cfg
}

// PPG renders seconds of pulse waveform.
func PPG(seconds float64, cfg PPGConfig) []float64 {
	rng := rand.New(rand.NewSource(cfg.Seed))
	total := int(seconds * cfg.SampleRate)
	out := make([]float64, 0, total)

	baseRR := 60.0 / cfg.HeartRate
	elapsed := 0.0
	for len(out) < total {
		rr := baseRR
		rr *= 1 + cfg.RespDepth*math.Sin(2*math.Pi*cfg.RespRate*elapsed)
		rr *= 1 + cfg.HRVJitter*rng.NormFloat64()
		if rr < 0.25 {
			rr = 0.25
		}

		amp := 1 + cfg.MorphJitter*rng.NormFloat64()
		beatLen := int(math.Round(rr * cfg.SampleRate))
		if beatLen < 4 {
			beatLen = 4
		}
		for i := 0; i < beatLen && len(out) < total; i++ {
			u := float64(i) / float64(beatLen)
			v := amp * beatShape(u, cfg.NotchDepth)
			if cfg.Noise > 0 {
				v += cfg.Noise * rng.NormFloat64()
			}
			out = append(out, v)
		}
		elapsed += rr
	}
	return out
}

// beatShape is one normalized pulse cycle: a systolic peak followed by a
// dicrotic wave, on a decaying baseline.
func beatShape(u, notchDepth float64) float64 {
	systolic := math.Exp(-math.Pow((u-0.15)/0.06, 2))
	dicrotic := notchDepth * math.Exp(-math.Pow((u-0.45)/0.08, 2))
	baseline := 0.1 * (1 - u)
	return systolic + dicrotic + baseline
}

// #endregion ppg

// #region walk

// WalkConfig shapes the synthetic accelerometer trace.
type WalkConfig struct {
	SampleRate float64 // Hz
	StepFreq   float64 // Hz
	Amplitude  float64 // vertical step amplitude, m/s^2
	Noise      float64
	Phase      float64 // gait phase offset, distinguishes subjects
	Seed       int64
}

// DefaultWalkConfig returns an ordinary walking cadence.
func DefaultWalkConfig() WalkConfig {
	return WalkConfig{
		SampleRate: 100,
		StepFreq:   1.8,
		Amplitude:  2.5,
		Noise:      0.15,
		Phase:      0,
		Seed:       1,
	}
}

// Walk renders seconds of three-axis accelerometer data for a walking
// subject. Z carries gravity plus the vertical step oscillation; X and Y
// carry smaller lateral harmonics.
func Walk(seconds float64, cfg WalkConfig) (x, y, z []float64) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	n := int(seconds * cfg.SampleRate)
	x = make([]float64, n)
	y = make([]float64, n)
	z = make([]float64, n)

	w := 2 * math.Pi * cfg.StepFreq
	for i := 0; i < n; i++ {
		t := float64(i) / cfg.SampleRate
		z[i] = 9.81 + cfg.Amplitude*math.Sin(w*t+cfg.Phase) + cfg.Noise*rng.NormFloat64()
		x[i] = 0.3*cfg.Amplitude*math.Sin(0.5*w*t+cfg.Phase) + cfg.Noise*rng.NormFloat64()
		y[i] = 0.2*cfg.Amplitude*math.Cos(w*t+cfg.Phase) + cfg.Noise*rng.NormFloat64()
	}
	return x, y, z
}

// #endregion walk

// #region gestures

// GestureConfig shapes the synthetic touch sequence.
type GestureConfig struct {
	Taps        int
	Swipes      int
	Pressure    float64 // base contact pressure
	PressureVar float64 // fractional per-gesture pressure jitter
	IntervalMS  float64 // mean gap between gestures
	TempoJitter float64 // fractional interval jitter
	Seed        int64
}

// DefaultGestureConfig returns a short mixed tap and swipe sequence.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		Taps:        6,
		Swipes:      2,
		Pressure:    0.55,
		PressureVar: 0.08,
		IntervalMS:  320,
		TempoJitter: 0.12,
		Seed:        1,
	}
}

// Gestures renders a tap and swipe sequence with millisecond timestamps.
func Gestures(cfg GestureConfig) []touch.Event {
	rng := rand.New(rand.NewSource(cfg.Seed))
	var events []touch.Event
	ts := 0.0

	emit := func(kind touch.Kind, px, py, pressure float64) {
		events = append(events, touch.Event{
			Kind:      kind,
			X:         px,
			Y:         py,
			Pressure:  pressure,
			Size:      0.04 + 0.01*rng.Float64(),
			Timestamp: int64(math.Round(ts)),
		})
	}

	gap := func() {
		ts += cfg.IntervalMS * (1 + cfg.TempoJitter*rng.NormFloat64())
	}

	for i := 0; i < cfg.Taps; i++ {
		p := cfg.Pressure * (1 + cfg.PressureVar*rng.NormFloat64())
		px := 100 + 200*rng.Float64()
		py := 200 + 400*rng.Float64()
		emit(touch.Down, px, py, p)
		ts += 12 + 8*rng.Float64()
		emit(touch.Up, px, py, 0.7*p)
		gap()
	}

	for i := 0; i < cfg.Swipes; i++ {
		p := cfg.Pressure * (1 + cfg.PressureVar*rng.NormFloat64())
		px := 80 + 100*rng.Float64()
		py := 500 + 100*rng.Float64()
		emit(touch.Down, px, py, p)
		steps := 5 + rng.Intn(4)
		for s := 0; s < steps; s++ {
			ts += 14 + 4*rng.Float64()
			px += 25 + 10*rng.Float64()
			py -= 8 + 6*rng.Float64()
			emit(touch.Move, px, py, p*(1+0.05*rng.NormFloat64()))
		}
		ts += 10
		emit(touch.Up, px, py, 0.6*p)
		gap()
	}
	return events
}

// #endregion gestures
