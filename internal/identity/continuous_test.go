package identity

import (
	"testing"
	"time"

	"github.com/kestrel-id/pulsegate/go-engine/internal/movement"
	"github.com/kestrel-id/pulsegate/go-engine/internal/policy"
	"github.com/kestrel-id/pulsegate/go-engine/internal/store"
	"github.com/kestrel-id/pulsegate/go-engine/internal/synth"
)

func continuousManager(t *testing.T) *Manager {
	t.Helper()
	cfg := testConfig()
	cfg.ContinuousInterval = 20 * time.Millisecond
	m := NewManager(store.NewMemoryStore(), cfg)
	accel := walkData(1)
	if _, err := m.Enroll(livePPG(60, 1), accel, tapData(1)); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := m.Authenticate(policy.LevelStandard, fullSample(1)); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !m.Status().Authenticated {
		t.Fatal("session should be unlocked")
	}
	return m
}

func feedEnrollmentMotion(m *Manager) {
	cfg := synth.DefaultWalkConfig()
	cfg.Seed = 1
	x, y, z := synth.Walk(10, cfg)
	for i := range x {
		m.FeedMotion(movement.Sample{X: x[i], Y: y[i], Z: z[i]})
	}
	for _, ev := range tapData(1) {
		m.FeedTouch(ev)
	}
}

func TestStartContinuousRequiresAuthentication(t *testing.T) {
	m := enrolledManager(t)
	if err := m.StartContinuousAuth(nil, nil); err != ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestContinuousAuthHoldsSession(t *testing.T) {
	m := continuousManager(t)
	feedEnrollmentMotion(m)

	confCh := make(chan float64, 64)
	err := m.StartContinuousAuth(func(c float64) {
		select {
		case confCh <- c:
		default:
		}
	}, func() {
		t.Error("same-subject buffers must not lock the session")
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer m.StopContinuousAuth()

	if !m.Status().ContinuousActive {
		t.Fatal("monitor should be running")
	}

	select {
	case conf := <-confCh:
		if conf < policy.ContinuousThreshold {
			t.Fatalf("same-subject confidence %v below continuous threshold", conf)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no confidence callback")
	}
	if !m.Status().Authenticated {
		t.Fatal("session should remain unlocked")
	}
}

func TestContinuousAuthSkipsUntilBuffersWarm(t *testing.T) {
	m := continuousManager(t)
	// Buffers never fed: every cycle skips, nothing locks.
	err := m.StartContinuousAuth(func(float64) {
		t.Error("no callback without buffered data")
	}, func() {
		t.Error("no lock without buffered data")
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	m.StopContinuousAuth()
	if !m.Status().Authenticated {
		t.Fatal("session should remain unlocked")
	}
}

func TestContinuousAuthLocksOnDivergentMotion(t *testing.T) {
	m := continuousManager(t)

	// A motionless device yields the zero feature vector, which scores
	// zero similarity against any enrollment.
	for i := 0; i < 600; i++ {
		m.FeedMotion(movement.Sample{})
	}

	lockCh := make(chan struct{})
	err := m.StartContinuousAuth(nil, func() { close(lockCh) })
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-lockCh:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a lock")
	}
	if m.Status().Authenticated {
		t.Fatal("session should be locked")
	}
	if m.Status().ContinuousActive {
		t.Fatal("monitor should have cleared itself")
	}
}

func TestStopContinuousAuthWaits(t *testing.T) {
	m := continuousManager(t)
	feedEnrollmentMotion(m)

	fired := make(chan struct{}, 64)
	if err := m.StartContinuousAuth(func(float64) { fired <- struct{}{} }, nil); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("no confidence callback")
	}

	m.StopContinuousAuth()
	if m.Status().ContinuousActive {
		t.Fatal("monitor flag should clear")
	}

	// After Stop returns no further callback may fire.
	drain := len(fired)
	for i := 0; i < drain; i++ {
		<-fired
	}
	select {
	case <-fired:
		t.Fatal("callback fired after stop returned")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFailedAuthenticateStopsMonitor(t *testing.T) {
	m := continuousManager(t)
	feedEnrollmentMotion(m)

	err := m.StartContinuousAuth(nil, func() {
		t.Error("a discrete failure stops the monitor without the lock callback")
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	accel := walkData(1)
	replayed := LiveSample{
		PPG:   synth.PPG(60, synth.FlatPPGConfig()),
		Accel: &accel,
		Touch: tapData(1),
	}
	res, authErr := m.Authenticate(policy.LevelStandard, replayed)
	if authErr != nil {
		t.Fatalf("authenticate: %v", authErr)
	}
	if res.Success {
		t.Fatal("replayed recording must be rejected")
	}

	st := m.Status()
	if st.Authenticated {
		t.Fatal("session should be locked")
	}
	if st.ContinuousActive {
		t.Fatal("monitor should stop with the locked session")
	}
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	m := enrolledManager(t)
	m.StopContinuousAuth() // must not panic or block
}

func TestRestartReplacesMonitor(t *testing.T) {
	m := continuousManager(t)
	feedEnrollmentMotion(m)

	if err := m.StartContinuousAuth(nil, nil); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := m.StartContinuousAuth(nil, nil); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if !m.Status().ContinuousActive {
		t.Fatal("monitor should be running")
	}
	m.StopContinuousAuth()
	if m.Status().ContinuousActive {
		t.Fatal("monitor should stop")
	}
}
