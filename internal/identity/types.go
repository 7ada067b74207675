package identity

import (
	"time"

	"github.com/kestrel-id/pulsegate/go-engine/internal/policy"
	"github.com/kestrel-id/pulsegate/go-engine/internal/touch"
)

// #region live-sample

// AccelData carries the three accelerometer axis streams.
type AccelData struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
	Z []float64 `json:"z"`
}

// LiveSample bundles the fresh sensor data offered for one authentication.
// Absent modalities are simply empty.
type LiveSample struct {
	PPG   []float64     `json:"ppg"`
	Accel *AccelData    `json:"accel"`
	Touch []touch.Event `json:"touch"`
}

// Available derives the explicit tagged modality set from the sample.
// A touch stream below the engine's event floor counts as absent: the
// engine would yield the zero vector, which is "no signal", not a sample.
func (s LiveSample) Available() policy.Set {
	set := policy.Set{}
	if len(s.PPG) > 0 {
		set[policy.Cardiac] = true
	}
	if s.Accel != nil && len(s.Accel.X) > 0 {
		set[policy.Movement] = true
	}
	if len(s.Touch) >= touch.MinEvents {
		set[policy.Touch] = true
	}
	return set
}

// #endregion live-sample

// #region auth-result

// AuthResult is the transient outcome of one authentication attempt. It is
// never persisted; only its scalars reach the audit log.
type AuthResult struct {
	Success    bool
	Confidence float64 // cosine similarity in [-1,1]
	Level      policy.Level
	Liveness   float64 // 0 when not computed
	Reason     string  // failure reason, empty on success
	Timestamp  time.Time
}

// #endregion auth-result

// #region status

// Status is a transient snapshot of the manager state.
type Status struct {
	Enrolled         bool
	Authenticated    bool
	LastConfidence   float64
	ContinuousActive bool
}

// #endregion status
