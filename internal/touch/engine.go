// Package touch extracts a 25-dimension behavioral feature vector from
// touchscreen event streams: pressure dynamics, tap timing and spatial
// patterns. Touch is supplementary: its quality is capped so it can never
// carry an authentication alone.
package touch

import (
	"math"

	"github.com/kestrel-id/pulsegate/go-engine/internal/vecmath"
)

// #region events

// Kind is the touch event phase.
type Kind string

const (
	Down Kind = "down"
	Move Kind = "move"
	Up   Kind = "up"
)

// Event is one digitized touch event. Timestamp is in milliseconds.
type Event struct {
	Kind      Kind    `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Pressure  float64 `json:"pressure"`
	Size      float64 `json:"size"` // contact area
	Timestamp int64   `json:"timestamp"`
}

// #endregion events

// #region config

// Dim is the touch feature vector dimension:
// 8 pressure + 10 timing + 7 spatial.
const Dim = 25

// MinEvents is the floor below which extraction yields the zero vector;
// callers must treat that as "no signal", not a valid low-score sample.
const MinEvents = 5

// QualityCap bounds touch quality even for clean data.
const QualityCap = 0.8

// Config holds buffering parameters.
type Config struct {
	BufferEvents int // rolling event buffer capacity
}

// DefaultConfig returns the reference buffer size.
func DefaultConfig() Config {
	return Config{BufferEvents: 500}
}

// #endregion config

// #region engine

// Engine is stateless except for its rolling event buffer.
type Engine struct {
	cfg Config
	buf *eventRing
}

// NewEngine creates a touch engine with an empty rolling buffer.
func NewEngine(cfg Config) *Engine {
	if cfg.BufferEvents <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, buf: newEventRing(cfg.BufferEvents)}
}

// ExtractFeatures computes the 25-dim vector, or the all-zero vector when
// fewer than MinEvents events are supplied.
func (e *Engine) ExtractFeatures(events []Event) []float64 {
	features := make([]float64, Dim)
	if len(events) < MinEvents {
		return features
	}

	gestures := splitGestures(events)

	copy(features[0:8], pressureFeatures(events, gestures))
	copy(features[8:18], timingFeatures(events, gestures))
	copy(features[18:25], spatialFeatures(events, gestures))
	return features
}

// Quality is 0 for the zero vector or non-finite values, else QualityCap.
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
	return QualityCap
}

// #endregion engine

// #region gestures

// gesture is one down→(moves)→up sequence.
type gesture struct {
	events []Event
}

func (g gesture) duration() float64 {
	if len(g.events) < 2 {
		return 0
	}
	return float64(g.events[len(g.events)-1].Timestamp-g.events[0].Timestamp) / 1000
}

func (g gesture) pathLength() float64 {
	var total float64
	for i := 1; i < len(g.events); i++ {
		total += dist(g.events[i-1], g.events[i])
	}
	return total
}

func (g gesture) chordLength() float64 {
	if len(g.events) < 2 {
		return 0
	}
	return dist(g.events[0], g.events[len(g.events)-1])
}

// isSwipe separates drags from stationary taps.
func (g gesture) isSwipe() bool {
	return len(g.events) >= 3 && g.pathLength() > 10
}

func splitGestures(events []Event) []gesture {
	var gestures []gesture
	var current []Event
	for _, ev := range events {
		switch ev.Kind {
		case Down:
			current = []Event{ev}
		case Move:
			if current != nil {
				current = append(current, ev)
			}
		case Up:
			if current != nil {
				current = append(current, ev)
				gestures = append(gestures, gesture{events: current})
				current = nil
			}
		}
	}
	return gestures
}

func dist(a, b Event) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// #endregion gestures

// #region pressure

// pressureFeatures (8): mean/std/max/min pressure, mean rise rate on
// contact, skewness, kurtosis, mean contact area.
func pressureFeatures(events []Event, gestures []gesture) []float64 {
	out := make([]float64, 8)

	pressures := make([]float64, len(events))
	areas := make([]float64, len(events))
	for i, ev := range events {
		pressures[i] = ev.Pressure
		areas[i] = ev.Size
	}

	out[0] = vecmath.Mean(pressures)
	out[1] = vecmath.Std(pressures)
	out[2] = maxOf(pressures)
	out[3] = minOf(pressures)

	var riseRates []float64
	for _, g := range gestures {
		if rate, ok := pressureRiseRate(g); ok {
			riseRates = append(riseRates, rate)
		}
	}
	out[4] = vecmath.Mean(riseRates)

	out[5] = vecmath.Skewness(pressures)
	out[6] = vecmath.Kurtosis(pressures)
	out[7] = vecmath.Mean(areas)
	return out
}

// pressureRiseRate is the pressure climb from contact to the gesture's
// pressure peak, per second.
func pressureRiseRate(g gesture) (float64, bool) {
	if len(g.events) < 2 {
		return 0, false
	}
	down := g.events[0]
	peakIdx := 0
	for i, ev := range g.events {
		if ev.Pressure > g.events[peakIdx].Pressure {
			peakIdx = i
		}
	}
	dt := float64(g.events[peakIdx].Timestamp-down.Timestamp) / 1000
	if dt <= 0 {
		return 0, false
	}
	return (g.events[peakIdx].Pressure - down.Pressure) / dt, true
}

// #endregion pressure

// #region timing

// timingFeatures (10): inter-tap interval mean/std/median, hold duration
// mean/std, swipe velocity mean/std, swipe acceleration, rhythm coefficient
// of variation, temporal entropy of intervals.
func timingFeatures(events []Event, gestures []gesture) []float64 {
	out := make([]float64, 10)

	var downTimes []float64
	for _, ev := range events {
		if ev.Kind == Down {
			downTimes = append(downTimes, float64(ev.Timestamp)/1000)
		}
	}
	var intervals []float64
	for i := 1; i < len(downTimes); i++ {
		intervals = append(intervals, downTimes[i]-downTimes[i-1])
	}

	out[0] = vecmath.Mean(intervals)
	out[1] = vecmath.Std(intervals)
	out[2] = vecmath.Median(intervals)

	var holds []float64
	for _, g := range gestures {
		holds = append(holds, g.duration())
	}
	out[3] = vecmath.Mean(holds)
	out[4] = vecmath.Std(holds)

	var velocities, accels []float64
	for _, g := range gestures {
		if !g.isSwipe() {
			continue
		}
		dur := g.duration()
		if dur <= 0 {
			continue
		}
		velocities = append(velocities, g.pathLength()/dur)
		accels = append(accels, swipeAcceleration(g))
	}
	out[5] = vecmath.Mean(velocities)
	out[6] = vecmath.Std(velocities)
	out[7] = vecmath.Mean(accels)

	if m := vecmath.Mean(intervals); m > 0 {
		out[8] = vecmath.Std(intervals) / m // rhythm CV
	}
	out[9] = temporalEntropy(intervals)
	return out
}

// swipeAcceleration is the mean change in point-to-point velocity over a
// swipe.
func swipeAcceleration(g gesture) float64 {
	var velocities []float64
	for i := 1; i < len(g.events); i++ {
		dt := float64(g.events[i].Timestamp-g.events[i-1].Timestamp) / 1000
		if dt <= 0 {
			continue
		}
		velocities = append(velocities, dist(g.events[i-1], g.events[i])/dt)
	}
	if len(velocities) < 2 {
		return 0
	}
	var deltas []float64
	for i := 1; i < len(velocities); i++ {
		deltas = append(deltas, velocities[i]-velocities[i-1])
	}
	return vecmath.Mean(deltas)
}

// temporalEntropy is the Shannon entropy of the interval histogram (8 bins).
func temporalEntropy(intervals []float64) float64 {
	if len(intervals) < 2 {
		return 0
	}
	lo, hi := minOf(intervals), maxOf(intervals)
	if hi <= lo {
		return 0
	}
	const bins = 8
	counts := make([]int, bins)
	for _, v := range intervals {
		bin := int((v - lo) / (hi - lo) * bins)
		if bin >= bins {
			bin = bins - 1
		}
		counts[bin]++
	}
	var entropy float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(len(intervals))
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// #endregion timing

// #region spatial

// spatialFeatures (7): touch centroid x/y, spread x/y, drift during hold,
// swipe path-to-chord ratio, horizontal spread around the centroid.
func spatialFeatures(events []Event, gestures []gesture) []float64 {
	out := make([]float64, 7)

	xs := make([]float64, len(events))
	ys := make([]float64, len(events))
	for i, ev := range events {
		xs[i] = ev.X
		ys[i] = ev.Y
	}
	cx, cy := vecmath.Mean(xs), vecmath.Mean(ys)

	out[0] = cx
	out[1] = cy
	out[2] = vecmath.Std(xs)
	out[3] = vecmath.Std(ys)

	var drifts []float64
	for _, g := range gestures {
		if len(g.events) >= 2 && !g.isSwipe() {
			drifts = append(drifts, g.chordLength())
		}
	}
	out[4] = vecmath.Mean(drifts)

	var ratios []float64
	for _, g := range gestures {
		if g.isSwipe() {
			if chord := g.chordLength(); chord > 0 {
				ratios = append(ratios, g.pathLength()/chord)
			}
		}
	}
	out[5] = vecmath.Mean(ratios)

	var hSpread float64
	for _, x := range xs {
		hSpread += math.Abs(x - cx)
	}
	out[6] = hSpread / float64(len(xs))
	return out
}

// #endregion spatial

// #region helpers

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

func minOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	min := v[0]
	for _, x := range v[1:] {
		if x < min {
			min = x
		}
	}
	return min
}

// #endregion helpers
