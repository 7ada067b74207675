package replay

import (
	"testing"

	"github.com/kestrel-id/pulsegate/go-engine/internal/audit"
)

func TestFromAuditReconstructsSessions(t *testing.T) {
	// Newest first, the order Tail returns.
	entries := []audit.Entry{
		{SessionID: "a4", Event: audit.EventAuth, Level: "standard", Decision: "reject", Reason: "liveness_failed"},
		{SessionID: "a3", Event: audit.EventAuth, Level: "standard", Decision: "reject", Reason: "below_threshold"},
		{SessionID: "l1", Event: audit.EventLock, Decision: "accept"},
		{SessionID: "a2", Event: audit.EventAuth, Level: "quick", Decision: "accept"},
		{SessionID: "a1", Event: audit.EventAuth, Level: "standard", Decision: "accept"},
		{SessionID: "e1", Event: audit.EventEnroll, Decision: "accept"},
	}

	f := FromAudit(entries, 1)
	if f.Enrollment.PPG == nil || f.Enrollment.Walk == nil || f.Enrollment.Gestures == nil {
		t.Fatal("enrollment sensors incomplete")
	}
	if len(f.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(f.Sessions))
	}

	// Recorded order; the lock, enrollment and below_threshold rows drop out.
	if f.Sessions[0].SessionID != "a1" || f.Sessions[1].SessionID != "a2" || f.Sessions[2].SessionID != "a4" {
		t.Fatalf("wrong session order: %s %s %s",
			f.Sessions[0].SessionID, f.Sessions[1].SessionID, f.Sessions[2].SessionID)
	}

	accept := f.Sessions[0]
	if !accept.Expected.Success || accept.Sensors.PPG == nil || accept.Sensors.Walk == nil || accept.Sensors.Gestures == nil {
		t.Fatalf("standard accept should carry all required sensors: %+v", accept)
	}

	quick := f.Sessions[1]
	if quick.Sensors.PPG != nil {
		t.Fatal("quick level does not require the pulse")
	}
	if quick.Sensors.Walk == nil || quick.Sensors.Gestures == nil {
		t.Fatal("quick level requires movement and touch")
	}

	replayed := f.Sessions[2]
	if replayed.Expected.Success || replayed.Expected.Reason != "liveness_failed" {
		t.Fatalf("wrong expectation: %+v", replayed.Expected)
	}
	if replayed.Sensors.PPG == nil || replayed.Sensors.PPG.HRVJitter != 0 || replayed.Sensors.PPG.RespDepth != 0 {
		t.Fatalf("liveness rejection should carry a zero-variability pulse: %+v", replayed.Sensors.PPG)
	}
}

func TestFromAuditMissingModality(t *testing.T) {
	f := FromAudit([]audit.Entry{
		{SessionID: "a1", Event: audit.EventAuth, Level: "standard", Decision: "reject", Reason: "missing_modality"},
	}, 1)
	if len(f.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(f.Sessions))
	}
	s := f.Sessions[0].Sensors
	if s.PPG != nil {
		t.Fatal("the required pulse should be withheld")
	}
	if s.Walk == nil || s.Gestures == nil {
		t.Fatal("the remaining required sensors should stay")
	}
}

func TestFromAuditFixtureReplaysConsistently(t *testing.T) {
	entries := []audit.Entry{
		{SessionID: "a5", Event: audit.EventAuth, Level: "standard", Decision: "reject", Reason: "no_biometric_data"},
		{SessionID: "a4", Event: audit.EventAuth, Level: "standard", Decision: "reject", Reason: "liveness_failed"},
		{SessionID: "a3", Event: audit.EventAuth, Level: "standard", Decision: "reject", Reason: "missing_modality"},
		{SessionID: "a2", Event: audit.EventAuth, Level: "quick", Decision: "accept"},
		{SessionID: "a1", Event: audit.EventAuth, Level: "standard", Decision: "accept"},
	}

	f := FromAudit(entries, 1)
	results, summary, err := Run(f, testIdentityConfig())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, r := range results {
		if !r.Matched {
			t.Errorf("session %s did not reproduce its recorded outcome: success=%v reason=%q",
				r.SessionID, r.Success, r.Reason)
		}
	}
	if summary.TotalSessions != 5 || summary.Accepts != 2 || summary.Rejects != 3 {
		t.Fatalf("wrong summary: %+v", summary)
	}
}
