package replay

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleFixture = `{
  "description": "two sessions",
  "enrollment": {
    "ppg": {"seconds": 60, "sample_rate": 30, "heart_rate": 72, "hrv_jitter": 0.04,
            "resp_depth": 0.08, "morph_jitter": 0.02, "resp_rate": 0.25,
            "notch_depth": 0.3, "noise": 0.005, "seed": 1},
    "walk": {"seconds": 10, "sample_rate": 100, "step_freq": 1.8, "amplitude": 2.5,
             "noise": 0.15, "phase": 0, "seed": 1},
    "gestures": {"taps": 6, "swipes": 2, "pressure": 0.55, "pressure_var": 0.08,
                 "interval_ms": 320, "tempo_jitter": 0.12, "seed": 1}
  },
  "sessions": [
    {
      "session_id": "s1",
      "level": "quick",
      "sensors": {
        "walk": {"seconds": 10, "sample_rate": 100, "step_freq": 1.8, "amplitude": 2.5,
                 "noise": 0.15, "phase": 0, "seed": 1},
        "gestures": {"taps": 6, "swipes": 2, "pressure": 0.55, "pressure_var": 0.08,
                     "interval_ms": 320, "tempo_jitter": 0.12, "seed": 1}
      },
      "expected": {"success": true}
    },
    {
      "session_id": "s2",
      "level": "standard",
      "sensors": {
        "walk": {"seconds": 10, "sample_rate": 100, "step_freq": 1.8, "amplitude": 2.5,
                 "noise": 0.15, "phase": 0, "seed": 1},
        "gestures": {"taps": 6, "swipes": 2, "pressure": 0.55, "pressure_var": 0.08,
                     "interval_ms": 320, "tempo_jitter": 0.12, "seed": 1}
      },
      "expected": {"success": false, "reason": "missing_modality"}
    }
  ]
}`

func writeFixtureFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFixture(t *testing.T) {
	f, err := LoadFixture(writeFixtureFile(t, sampleFixture))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Description != "two sessions" {
		t.Fatalf("description: %q", f.Description)
	}
	if f.Enrollment.PPG == nil || f.Enrollment.Walk == nil || f.Enrollment.Gestures == nil {
		t.Fatal("enrollment sensors incomplete")
	}
	if len(f.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(f.Sessions))
	}
	if f.Sessions[0].Sensors.PPG != nil {
		t.Fatal("quick session should omit the pulse")
	}
	if f.Sessions[1].Expected.Reason != "missing_modality" {
		t.Fatalf("expected reason: %q", f.Sessions[1].Expected.Reason)
	}
}

func TestLoadFixtureMissingFile(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFixtureBadJSON(t *testing.T) {
	if _, err := LoadFixture(writeFixtureFile(t, "{not json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestFixtureConfigConversion(t *testing.T) {
	p := DefaultFixturePPG(60, 9)
	cfg := p.ToPPGConfig()
	if cfg.Seed != 9 || cfg.SampleRate != 30 {
		t.Fatalf("ppg conversion: %+v", cfg)
	}
	w := DefaultFixtureWalk(10, 9)
	if w.ToWalkConfig().Seed != 9 {
		t.Fatal("walk conversion lost the seed")
	}
	g := DefaultFixtureGestures(9)
	if g.ToGestureConfig().Seed != 9 {
		t.Fatal("gesture conversion lost the seed")
	}
}
