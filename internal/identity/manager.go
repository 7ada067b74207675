// Package identity hosts the manager: the single stateful orchestrator of
// enrollment, authentication, continuous monitoring, bounded drift and
// deletion. All session state lives here; the engines and the gate below
// it are stateless apart from the passive sensor buffers.
package identity

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kestrel-id/pulsegate/go-engine/internal/audit"
	"github.com/kestrel-id/pulsegate/go-engine/internal/authgate"
	"github.com/kestrel-id/pulsegate/go-engine/internal/cardiac"
	"github.com/kestrel-id/pulsegate/go-engine/internal/evolve"
	"github.com/kestrel-id/pulsegate/go-engine/internal/metrics"
	"github.com/kestrel-id/pulsegate/go-engine/internal/movement"
	"github.com/kestrel-id/pulsegate/go-engine/internal/policy"
	"github.com/kestrel-id/pulsegate/go-engine/internal/quality"
	"github.com/kestrel-id/pulsegate/go-engine/internal/store"
	"github.com/kestrel-id/pulsegate/go-engine/internal/touch"
	"github.com/kestrel-id/pulsegate/go-engine/internal/vecmath"
)

// #region config

// Config bundles the engine and protocol parameters.
type Config struct {
	Cardiac  cardiac.Config
	Movement movement.Config
	Touch    touch.Config
	Drift    evolve.Config
	Quality  quality.Config
	Hash     HashAlgo

	// ContinuousInterval overrides the protocol cadence; zero means the
	// policy default. Tests shrink it.
	ContinuousInterval time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns the reference parameter set.
func DefaultConfig() Config {
	return Config{
		Cardiac:  cardiac.DefaultConfig(),
		Movement: movement.DefaultConfig(),
		Touch:    touch.DefaultConfig(),
		Drift:    evolve.DefaultConfig(),
		Quality:  quality.DefaultConfig(),
		Hash:     HashSHA3,
	}
}

// Option customizes a Manager at construction.
type Option func(*Manager)

// WithAudit attaches an audit logger.
func WithAudit(l *audit.Logger) Option {
	return func(m *Manager) { m.auditor = l }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(m *Manager) { m.metrics = c }
}

// #endregion config

// #region manager

// Manager owns the enrollment record and the session state. All public
// methods are safe for concurrent use.
type Manager struct {
	mu  sync.Mutex
	cfg Config

	storage  store.SecureStorage
	cardiac  *cardiac.Engine
	movement *movement.Engine
	touch    *touch.Engine

	auditor *audit.Logger
	metrics *metrics.Collector
	log     *slog.Logger

	enrollment     *store.EnrollmentRecord // cached; nil until loaded
	loaded         bool                    // storage probed at least once
	authenticated  bool
	lastConfidence float64
	cont           *continuousTask
}

// NewManager wires the engines over the given storage backend.
func NewManager(storage store.SecureStorage, cfg Config, opts ...Option) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	m := &Manager{
		cfg:      cfg,
		storage:  storage,
		cardiac:  cardiac.NewEngine(cfg.Cardiac),
		movement: movement.NewEngine(cfg.Movement),
		touch:    touch.NewEngine(cfg.Touch),
		log:      cfg.Logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ensureLoaded populates the enrollment cache from storage. Caller holds mu.
func (m *Manager) ensureLoaded() error {
	if m.loaded {
		return nil
	}
	rec, err := m.storage.GetEnrollment()
	if err != nil {
		return fmt.Errorf("load enrollment: %w", err)
	}
	m.enrollment = rec
	m.loaded = true
	m.metrics.SetEnrolled(rec != nil)
	return nil
}

// #endregion manager

// #region enroll

// Enroll runs the full ceremony: concurrent per-modality extraction,
// quality gating, weighted fusion, hashing and persistence. A new
// enrollment replaces any previous one entirely. The returned record is a
// copy; the caller owns zeroing its vector.
func (m *Manager) Enroll(ppg []float64, accel AccelData, touchEvents []touch.Event) (*store.EnrollmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessionID := uuid.New().String()

	var cardiacVec, movementVec, touchVec []float64
	defer func() {
		vecmath.Zero(cardiacVec)
		vecmath.Zero(movementVec)
		vecmath.Zero(touchVec)
	}()

	var g errgroup.Group
	g.Go(func() error {
		v, err := m.cardiac.ExtractFeatures(ppg)
		if err != nil {
			return enrollErrFromCardiac(err)
		}
		cardiacVec = v
		return nil
	})
	g.Go(func() error {
		v, err := m.movement.ExtractFeatures(accel.X, accel.Y, accel.Z)
		if err != nil {
			return &EnrollmentError{Code: CodeBadInput, Message: "movement extraction failed", Err: err}
		}
		movementVec = v
		return nil
	})
	g.Go(func() error {
		touchVec = m.touch.ExtractFeatures(touchEvents)
		return nil
	})
	if err := g.Wait(); err != nil {
		m.rejectEnrollment(sessionID, err)
		return nil, err
	}

	qr := quality.Assess(
		m.cardiac.Quality(cardiacVec),
		m.movement.Quality(movementVec),
		m.touch.Quality(touchVec),
		m.cfg.Quality,
	)
	if !qr.Passed {
		err := &EnrollmentError{Code: CodeCardiacQuality, Message: qr.Reason}
		m.rejectEnrollment(sessionID, err)
		return nil, err
	}

	combined := vecmath.WeightedCombine([]vecmath.Weighted{
		{Vector: cardiacVec, Weight: policy.Weights[policy.Cardiac]},
		{Vector: movementVec, Weight: policy.Weights[policy.Movement]},
		{Vector: touchVec, Weight: policy.Weights[policy.Touch]},
	})

	rec := &store.EnrollmentRecord{
		VersionID:      uuid.New().String(),
		IdentityVector: combined,
		Hash:           VectorHash(combined, m.cfg.Hash),
		Quality:        qr.Quality,
		SchemaVersion:  store.SchemaVersion,
		CreatedAt:      time.Now().UTC(),
	}
	if err := m.storage.SaveEnrollment(rec); err != nil {
		vecmath.Zero(combined)
		return nil, fmt.Errorf("persist enrollment: %w", err)
	}

	if m.enrollment != nil {
		vecmath.Zero(m.enrollment.IdentityVector)
	}
	m.enrollment = rec
	m.loaded = true
	m.authenticated = false
	m.lastConfidence = 0

	m.metrics.ObserveEnrollment("accept")
	m.metrics.SetEnrolled(true)
	m.auditEntry(audit.Entry{
		SessionID: sessionID,
		Event:     audit.EventEnroll,
		Decision:  "accept",
	})
	m.log.Info("enrollment complete",
		"version_id", rec.VersionID,
		"quality", qr.Quality.Overall,
	)
	return rec.Clone(), nil
}

func (m *Manager) rejectEnrollment(sessionID string, err error) {
	m.metrics.ObserveEnrollment("reject")
	m.auditEntry(audit.Entry{
		SessionID: sessionID,
		Event:     audit.EventEnroll,
		Decision:  "reject",
		Reason:    string(EnrollmentCodeOf(err)),
	})
	m.log.Warn("enrollment rejected", "reason", err.Error())
}

func enrollErrFromCardiac(err error) error {
	switch {
	case errors.Is(err, cardiac.ErrSignalTooShort):
		return &EnrollmentError{Code: CodeSignalTooShort, Message: "cardiac capture too short", Err: err}
	case errors.Is(err, cardiac.ErrInsufficientCycles):
		return &EnrollmentError{Code: CodeInsufficientCycles, Message: "too few cardiac cycles detected", Err: err}
	default:
		return &EnrollmentError{Code: CodeBadInput, Message: "cardiac extraction failed", Err: err}
	}
}

// #endregion enroll

// #region authenticate

// Authenticate scores a live sample at the requested level. Failure is a
// result, not an error; errors are reserved for unknown levels and storage
// faults. On any failed attempt the session locks and a running continuous
// monitor stops with it.
func (m *Manager) Authenticate(level policy.Level, live LiveSample) (AuthResult, error) {
	cfg, err := policy.Lookup(level)
	if err != nil {
		return AuthResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLoaded(); err != nil {
		return AuthResult{}, err
	}

	sessionID := uuid.New().String()
	enrolled := m.enrollment != nil
	available := live.Available()

	var liveVec, refVec []float64
	defer func() {
		vecmath.Zero(liveVec)
		vecmath.Zero(refVec)
	}()

	similarity := 0.0
	if enrolled {
		if ok, _ := policy.Satisfied(level, available); ok {
			lv, rv, failed := m.buildComparison(cfg.Required, live)
			if len(failed) > 0 {
				// Extraction failed on a present modality; demote it so the
				// gate reports the missing requirement.
				for _, fm := range failed {
					available[fm] = false
				}
			} else {
				liveVec, refVec = lv, rv
				similarity, err = vecmath.CosineSimilarity(liveVec, refVec)
				if err != nil {
					return AuthResult{}, fmt.Errorf("compare vectors: %w", err)
				}
			}
		}
	}

	liveness := 0.0
	livenessChecked := false
	if cfg.LivenessGate && available[policy.Cardiac] {
		liveness = m.cardiac.Liveness(live.PPG)
		livenessChecked = true
	}

	decision, err := authgate.Evaluate(authgate.Input{
		Enrolled:        enrolled,
		Available:       available,
		Level:           level,
		Similarity:      similarity,
		Liveness:        liveness,
		LivenessChecked: livenessChecked,
	})
	if err != nil {
		return AuthResult{}, err
	}

	result := AuthResult{
		Success:    decision.Authenticated,
		Confidence: decision.Similarity,
		Level:      level,
		Liveness:   liveness,
		Reason:     decision.Reason,
		Timestamp:  time.Now().UTC(),
	}

	m.lastConfidence = similarity
	if decision.Authenticated {
		m.authenticated = true
		if similarity > policy.EvolveTrigger {
			m.evolveLocked(liveVec, sessionID)
		}
	} else {
		m.authenticated = false
		// The session is now locked; take any running monitor down with it.
		if t := m.cont; t != nil {
			m.cont = nil
			t.signal()
		}
	}

	outcome := "reject"
	if decision.Authenticated {
		outcome = "accept"
	}
	m.metrics.ObserveAuth(string(level), outcome)
	m.auditEntry(audit.Entry{
		SessionID:  sessionID,
		Event:      audit.EventAuth,
		Level:      string(level),
		Confidence: similarity,
		Liveness:   liveness,
		Decision:   outcome,
		Reason:     decision.Reason,
	})
	m.log.Info("authentication decision",
		"level", level,
		"success", decision.Authenticated,
		"confidence", similarity,
		"liveness", liveness,
		"reason", decision.Reason,
	)
	return result, nil
}

// buildComparison extracts the live sub-vectors for the required
// modalities in canonical segment order and pairs them with the matching
// enrollment segments, both under fusion weighting. Caller holds mu and
// owns zeroing the returned vectors.
func (m *Manager) buildComparison(required []policy.Modality, live LiveSample) (liveVec, refVec []float64, failed []policy.Modality) {
	want := policy.Set{}
	for _, mod := range required {
		want[mod] = true
	}

	layout := policy.DefaultLayout()
	var parts []vecmath.Weighted
	var ref []float64

	appendSegment := func(mod policy.Modality, raw []float64) {
		parts = append(parts, vecmath.Weighted{Vector: raw, Weight: policy.Weights[mod]})
		lo, hi, _ := layout.Segment(mod)
		ref = append(ref, m.enrollment.IdentityVector[lo:hi]...)
	}

	// Canonical order matches the enrollment vector layout.
	if want[policy.Cardiac] {
		raw, err := m.cardiac.ExtractFeatures(live.PPG)
		if err != nil {
			failed = append(failed, policy.Cardiac)
		} else {
			defer vecmath.Zero(raw)
			appendSegment(policy.Cardiac, raw)
		}
	}
	if want[policy.Movement] {
		var x, y, z []float64
		if live.Accel != nil {
			x, y, z = live.Accel.X, live.Accel.Y, live.Accel.Z
		}
		raw, err := m.movement.ExtractFeatures(x, y, z)
		if err != nil {
			failed = append(failed, policy.Movement)
		} else {
			defer vecmath.Zero(raw)
			appendSegment(policy.Movement, raw)
		}
	}
	if want[policy.Touch] {
		raw := m.touch.ExtractFeatures(live.Touch)
		defer vecmath.Zero(raw)
		appendSegment(policy.Touch, raw)
	}

	if len(failed) > 0 {
		vecmath.Zero(ref)
		return nil, nil, failed
	}
	return vecmath.WeightedCombine(parts), ref, nil
}

// evolveLocked drifts the enrollment toward the live vector. Skipped for
// partial-modality samples; drift on a segment subset would desynchronize
// the untouched segments. Caller holds mu.
func (m *Manager) evolveLocked(liveVec []float64, sessionID string) {
	old := m.enrollment
	if old == nil || len(liveVec) != len(old.IdentityVector) {
		return
	}

	next, met, err := evolve.Evolve(old.IdentityVector, liveVec, m.cfg.Drift)
	if err != nil {
		m.log.Error("evolution failed", "err", err)
		return
	}

	rec := &store.EnrollmentRecord{
		VersionID:      uuid.New().String(),
		IdentityVector: next,
		Hash:           VectorHash(next, m.cfg.Hash),
		Quality:        old.Quality,
		SchemaVersion:  old.SchemaVersion,
		CreatedAt:      old.CreatedAt,
	}
	if err := m.storage.SaveEnrollment(rec); err != nil {
		vecmath.Zero(next)
		m.log.Error("evolution persist failed", "err", err)
		return
	}

	vecmath.Zero(old.IdentityVector)
	m.enrollment = rec

	m.auditEntry(audit.Entry{
		SessionID: sessionID,
		Event:     audit.EventEvolve,
		Decision:  "accept",
	})
	m.log.Debug("enrollment evolved",
		"version_id", rec.VersionID,
		"delta_norm", met.DeltaNorm,
		"drift_rate", met.DriftRate,
	)
}

// #endregion authenticate

// #region session

// Lock ends the authenticated session and stops continuous monitoring. It
// does not wait for the monitor goroutine, so it is safe to call from the
// onLock callback.
func (m *Manager) Lock() {
	m.mu.Lock()
	m.authenticated = false
	m.lastConfidence = 0
	t := m.cont
	m.cont = nil
	m.mu.Unlock()

	if t != nil {
		t.signal()
	}
	m.auditEntry(audit.Entry{
		SessionID: uuid.New().String(),
		Event:     audit.EventLock,
		Decision:  "accept",
	})
	m.log.Info("session locked")
}

// DeleteIdentity destroys the enrollment: the in-memory vector is zeroed,
// the stored record removed and the sensor buffers cleared. The session
// locks as a side effect.
func (m *Manager) DeleteIdentity() error {
	m.mu.Lock()
	if m.enrollment != nil {
		vecmath.Zero(m.enrollment.IdentityVector)
		m.enrollment = nil
	}
	m.loaded = true
	m.authenticated = false
	m.lastConfidence = 0
	t := m.cont
	m.cont = nil
	m.mu.Unlock()

	if t != nil {
		t.signal()
	}

	if err := m.storage.DeleteEnrollment(); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}

	m.movement.ResetBuffer()
	m.touch.ResetBuffer()

	m.metrics.SetEnrolled(false)
	m.auditEntry(audit.Entry{
		SessionID: uuid.New().String(),
		Event:     audit.EventDelete,
		Decision:  "accept",
	})
	m.log.Info("identity deleted")
	return nil
}

// IsEnrolled reports whether an enrollment record exists.
func (m *Manager) IsEnrolled() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoaded(); err != nil {
		return false, err
	}
	return m.enrollment != nil, nil
}

// Status returns a snapshot of the session. Storage faults degrade to
// not-enrolled rather than failing a status probe.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoaded(); err != nil {
		m.log.Warn("status enrollment probe failed", "err", err)
	}
	return Status{
		Enrolled:         m.enrollment != nil,
		Authenticated:    m.authenticated,
		LastConfidence:   m.lastConfidence,
		ContinuousActive: m.cont != nil,
	}
}

// FeedMotion pushes one accelerometer sample into the passive buffer.
func (m *Manager) FeedMotion(s movement.Sample) {
	m.movement.Feed(s)
}

// FeedTouch pushes one touch event into the passive buffer.
func (m *Manager) FeedTouch(ev touch.Event) {
	m.touch.Feed(ev)
}

func (m *Manager) auditEntry(e audit.Entry) {
	if err := m.auditor.Log(e); err != nil {
		m.log.Warn("audit write failed", "err", err)
	}
}

// #endregion session
