package replay

import (
	"fmt"

	"github.com/kestrel-id/pulsegate/go-engine/internal/identity"
	"github.com/kestrel-id/pulsegate/go-engine/internal/policy"
	"github.com/kestrel-id/pulsegate/go-engine/internal/store"
	"github.com/kestrel-id/pulsegate/go-engine/internal/synth"
	"github.com/kestrel-id/pulsegate/go-engine/internal/touch"
)

// #region types

// Result is the outcome of replaying one session.
type Result struct {
	SessionID  string
	Level      string
	Success    bool
	Reason     string
	Confidence float64
	Liveness   float64
	Matched    bool // decision agreed with the fixture's expectation
}

// Summary aggregates a replay run.
type Summary struct {
	TotalSessions int
	Accepts       int
	Rejects       int
	Matched       int
	Mismatched    int
}

// #endregion types

// #region render

// renderSample materializes fixture sensor parameters into a live sample.
func renderSample(s FixtureSensors) identity.LiveSample {
	var live identity.LiveSample
	if s.PPG != nil {
		live.PPG = synth.PPG(s.PPG.Seconds, s.PPG.ToPPGConfig())
	}
	if s.Walk != nil {
		x, y, z := synth.Walk(s.Walk.Seconds, s.Walk.ToWalkConfig())
		live.Accel = &identity.AccelData{X: x, Y: y, Z: z}
	}
	if s.Gestures != nil {
		live.Touch = synth.Gestures(s.Gestures.ToGestureConfig())
	}
	return live
}

// #endregion render

// #region run

// Run replays a fixture end to end: enroll from the fixture's enrollment
// sensors against a fresh in-memory store, then authenticate each session
// in order and compare against the expected decisions.
func Run(f *Fixture, cfg identity.Config) ([]Result, Summary, error) {
	mgr := identity.NewManager(store.NewMemoryStore(), cfg)

	enroll := renderSample(f.Enrollment)
	var accel identity.AccelData
	if enroll.Accel != nil {
		accel = *enroll.Accel
	}
	var events []touch.Event
	if enroll.Touch != nil {
		events = enroll.Touch
	}
	if _, err := mgr.Enroll(enroll.PPG, accel, events); err != nil {
		return nil, Summary{}, fmt.Errorf("fixture enrollment: %w", err)
	}

	results := make([]Result, 0, len(f.Sessions))
	var summary Summary
	for _, session := range f.Sessions {
		live := renderSample(session.Sensors)
		res, err := mgr.Authenticate(policy.Level(session.Level), live)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("session %s: %w", session.SessionID, err)
		}

		matched := res.Success == session.Expected.Success &&
			(session.Expected.Reason == "" || session.Expected.Reason == res.Reason)

		results = append(results, Result{
			SessionID:  session.SessionID,
			Level:      session.Level,
			Success:    res.Success,
			Reason:     res.Reason,
			Confidence: res.Confidence,
			Liveness:   res.Liveness,
			Matched:    matched,
		})

		summary.TotalSessions++
		if res.Success {
			summary.Accepts++
		} else {
			summary.Rejects++
		}
		if matched {
			summary.Matched++
		} else {
			summary.Mismatched++
		}
	}
	return results, summary, nil
}

// #endregion run
