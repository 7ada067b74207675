package replay

import (
	"github.com/kestrel-id/pulsegate/go-engine/internal/audit"
	"github.com/kestrel-id/pulsegate/go-engine/internal/policy"
)

// #region audit-export

// FromAudit reconstructs a fixture from audit rows, newest first as
// audit.Tail returns them. Rows carry decisions but no raw sensors, so
// each authentication row is rebuilt with synthetic sensors chosen to
// reproduce its recorded outcome: the enrollment parameter set for an
// accept, a zero-variability pulse for a liveness rejection, a withheld
// modality for a missing-modality rejection. Rows whose outcome depends
// on the actual captured signal (below_threshold) or on engine state the
// fixture cannot recreate (not_enrolled) are skipped.
func FromAudit(entries []audit.Entry, seed int64) *Fixture {
	enrollment := FixtureSensors{
		PPG:      DefaultFixturePPG(60, seed),
		Walk:     DefaultFixtureWalk(10, seed),
		Gestures: DefaultFixtureGestures(seed),
	}

	f := &Fixture{
		Description: "Sessions reconstructed from the audit log",
		Enrollment:  enrollment,
	}

	// Oldest first, so the fixture replays in recorded order.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Event != audit.EventAuth {
			continue
		}
		sensors, ok := sensorsForOutcome(e, enrollment)
		if !ok {
			continue
		}
		f.Sessions = append(f.Sessions, FixtureSession{
			SessionID: e.SessionID,
			Level:     e.Level,
			Sensors:   sensors,
			Expected: FixtureExpected{
				Success: e.Decision == "accept",
				Reason:  e.Reason,
			},
		})
	}
	return f
}

func sensorsForOutcome(e audit.Entry, enrollment FixtureSensors) (FixtureSensors, bool) {
	switch e.Reason {
	case "":
		return requiredSensors(policy.Level(e.Level), enrollment), true
	case "liveness_failed":
		s := requiredSensors(policy.Level(e.Level), enrollment)
		flat := *enrollment.PPG
		flat.HRVJitter = 0
		flat.RespDepth = 0
		flat.MorphJitter = 0
		flat.Noise = 0
		s.PPG = &flat
		return s, true
	case "missing_modality":
		s := requiredSensors(policy.Level(e.Level), enrollment)
		if s.PPG != nil {
			s.PPG = nil
		} else {
			s.Walk = nil
		}
		return s, true
	case "no_biometric_data":
		return FixtureSensors{}, true
	default:
		return FixtureSensors{}, false
	}
}

// requiredSensors keeps only the sensors the level requires.
func requiredSensors(level policy.Level, enrollment FixtureSensors) FixtureSensors {
	cfg, err := policy.Lookup(level)
	if err != nil {
		return enrollment
	}
	var s FixtureSensors
	for _, mod := range cfg.Required {
		switch mod {
		case policy.Cardiac:
			s.PPG = enrollment.PPG
		case policy.Movement:
			s.Walk = enrollment.Walk
		case policy.Touch:
			s.Gestures = enrollment.Gestures
		}
	}
	return s
}

// #endregion audit-export
