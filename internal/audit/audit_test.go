package audit

import (
	"path/filepath"
	"testing"

	"github.com/kestrel-id/pulsegate/go-engine/internal/store"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "pulsegate.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewLogger(s.DB())
}

func TestLogAndTail(t *testing.T) {
	l := newTestLogger(t)

	entries := []Entry{
		{SessionID: "s1", Event: EventEnroll, Decision: "accept"},
		{SessionID: "s2", Event: EventAuth, Level: "standard", Confidence: 0.97, Liveness: 0.91, Decision: "accept"},
		{SessionID: "s3", Event: EventAuth, Level: "forensic", Confidence: 0.95, Liveness: 0.88, Decision: "reject", Reason: "below_threshold"},
	}
	for _, e := range entries {
		if err := l.Log(e); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	got, err := l.Tail(10)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	// Newest first.
	if got[0].SessionID != "s3" || got[2].SessionID != "s1" {
		t.Fatalf("wrong order: %s .. %s", got[0].SessionID, got[2].SessionID)
	}
	if got[0].Reason != "below_threshold" {
		t.Fatalf("reason lost: %q", got[0].Reason)
	}
	if got[0].Confidence != 0.95 || got[0].Liveness != 0.88 {
		t.Fatalf("scalars lost: %+v", got[0])
	}
	if got[1].Level != "standard" {
		t.Fatalf("level lost: %q", got[1].Level)
	}
	if got[0].CreatedAt.IsZero() {
		t.Fatal("created_at not stamped")
	}
}

func TestTailLimit(t *testing.T) {
	l := newTestLogger(t)
	for i := 0; i < 5; i++ {
		if err := l.Log(Entry{SessionID: "s", Event: EventContinuous, Decision: "accept"}); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	got, err := l.Tail(2)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	if err := l.Log(Entry{SessionID: "s", Event: EventLock, Decision: "accept"}); err != nil {
		t.Fatalf("nil logger must be a no-op: %v", err)
	}
	entries, err := l.Tail(5)
	if err != nil || entries != nil {
		t.Fatalf("nil logger tail: %v %v", entries, err)
	}
}
