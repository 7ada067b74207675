package identity

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kestrel-id/pulsegate/go-engine/internal/audit"
	"github.com/kestrel-id/pulsegate/go-engine/internal/policy"
	"github.com/kestrel-id/pulsegate/go-engine/internal/vecmath"
)

// #region task

// continuousTask is one monitor goroutine's lifecycle. signal is safe to
// call any number of times from any goroutine; cancel additionally waits
// for the loop to exit.
type continuousTask struct {
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func (t *continuousTask) signal() {
	t.once.Do(func() { close(t.stop) })
}

func (t *continuousTask) cancel() {
	t.signal()
	t.wg.Wait()
}

// #endregion task

// #region start-stop

// StartContinuousAuth begins passive background verification against the
// movement and touch buffers. Requires an authenticated session. Calling
// it again replaces the running monitor; there is never more than one.
func (m *Manager) StartContinuousAuth(onConfidence func(float64), onLock func()) error {
	m.mu.Lock()
	if !m.authenticated {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	prev := m.cont
	m.cont = nil
	m.mu.Unlock()

	if prev != nil {
		prev.cancel()
	}

	t := &continuousTask{stop: make(chan struct{})}
	m.mu.Lock()
	m.cont = t
	m.mu.Unlock()

	t.wg.Add(1)
	go m.continuousLoop(t, onConfidence, onLock)

	m.log.Info("continuous auth started")
	return nil
}

// StopContinuousAuth halts the monitor and waits for it to exit; after it
// returns no further callback fires.
func (m *Manager) StopContinuousAuth() {
	m.mu.Lock()
	t := m.cont
	m.cont = nil
	m.mu.Unlock()

	if t == nil {
		return
	}
	t.cancel()
	m.log.Info("continuous auth stopped")
}

// #endregion start-stop

// #region loop

func (m *Manager) interval() time.Duration {
	if m.cfg.ContinuousInterval > 0 {
		return m.cfg.ContinuousInterval
	}
	return policy.ContinuousInterval
}

func (m *Manager) continuousLoop(t *continuousTask, onConfidence func(float64), onLock func()) {
	defer t.wg.Done()

	ticker := time.NewTicker(m.interval())
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			evaluated, conf, locked := m.continuousCheck()
			if !evaluated {
				continue
			}
			if onConfidence != nil {
				onConfidence(conf)
			}
			if locked {
				m.clearTask(t)
				if onLock != nil {
					onLock()
				}
				return
			}
		}
	}
}

// continuousCheck compares the buffered passive modalities against the
// matching enrollment segments. A cycle with neither buffer warmed up is
// skipped silently. A confidence below the continuous threshold locks the
// session.
func (m *Manager) continuousCheck() (evaluated bool, confidence float64, locked bool) {
	mv := m.movement.BufferedVector()
	tv := m.touch.BufferedVector()
	defer func() {
		vecmath.Zero(mv)
		vecmath.Zero(tv)
	}()
	if mv == nil && tv == nil {
		return false, 0, false
	}

	m.mu.Lock()
	if !m.authenticated || m.enrollment == nil {
		m.mu.Unlock()
		return false, 0, false
	}

	layout := policy.DefaultLayout()
	var parts []vecmath.Weighted
	var ref []float64
	if mv != nil {
		lo, hi, _ := layout.Segment(policy.Movement)
		parts = append(parts, vecmath.Weighted{Vector: mv, Weight: policy.ContinuousWeight})
		ref = append(ref, m.enrollment.IdentityVector[lo:hi]...)
	}
	if tv != nil {
		lo, hi, _ := layout.Segment(policy.Touch)
		parts = append(parts, vecmath.Weighted{Vector: tv, Weight: policy.ContinuousWeight})
		ref = append(ref, m.enrollment.IdentityVector[lo:hi]...)
	}

	liveVec := vecmath.WeightedCombine(parts)
	sim, err := vecmath.CosineSimilarity(liveVec, ref)
	vecmath.Zero(liveVec)
	vecmath.Zero(ref)
	if err != nil {
		m.mu.Unlock()
		m.log.Error("continuous compare failed", "err", err)
		return false, 0, false
	}

	m.lastConfidence = sim
	locked = sim < policy.ContinuousThreshold
	if locked {
		m.authenticated = false
	}
	m.mu.Unlock()

	outcome := "accept"
	if locked {
		outcome = "reject"
	}
	m.metrics.SetContinuousConfidence(sim)
	m.auditEntry(audit.Entry{
		SessionID:  uuid.New().String(),
		Event:      audit.EventContinuous,
		Confidence: sim,
		Decision:   outcome,
	})
	m.log.Debug("continuous check", "confidence", sim, "locked", locked)
	return true, sim, locked
}

// clearTask detaches t if it is still the active monitor.
func (m *Manager) clearTask(t *continuousTask) {
	m.mu.Lock()
	if m.cont == t {
		m.cont = nil
	}
	m.mu.Unlock()
}

// #endregion loop
