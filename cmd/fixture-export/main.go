package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/kestrel-id/pulsegate/go-engine/internal/audit"
	"github.com/kestrel-id/pulsegate/go-engine/internal/replay"
	"github.com/kestrel-id/pulsegate/go-engine/internal/store"
)

// #region main

func main() {
	outPath := flag.String("out", "", "output fixture JSON path")
	seed := flag.Int64("seed", 1, "base generator seed")
	dbPath := flag.String("db", "", "reconstruct sessions from this database's audit log")
	last := flag.Int("last", 20, "audit rows to export with --db")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --out path/to/fixture.json [--seed N] [--db path/to/pulsegate.db [--last N]]")
		os.Exit(2)
	}

	if err := run(*outPath, *seed, *dbPath, *last); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(outPath string, seed int64, dbPath string, last int) error {
	var fixture replay.Fixture
	if dbPath != "" {
		f, err := exportFromAudit(dbPath, seed, last)
		if err != nil {
			return err
		}
		fixture = *f
	} else {
		fixture = buildFixture(seed)
	}

	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote fixture to %s (%d bytes, %d sessions)\n",
		outPath, len(data), len(fixture.Sessions))
	return nil
}

// exportFromAudit rebuilds recent audit-log sessions as a fixture.
func exportFromAudit(dbPath string, seed int64, last int) (*replay.Fixture, error) {
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer st.Close()

	entries, err := audit.NewLogger(st.DB()).Tail(last)
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	f := replay.FromAudit(entries, seed)
	if len(f.Sessions) == 0 {
		return nil, fmt.Errorf("no reconstructable authentication rows in the last %d audit entries", last)
	}
	return f, nil
}

// #endregion main

// #region build

// buildFixture emits the canonical scenario set: a same-sensor standard
// accept, a passive-only quick accept, and a metronome-pulse replay that
// must fail liveness.
func buildFixture(seed int64) replay.Fixture {
	enrollment := replay.FixtureSensors{
		PPG:      replay.DefaultFixturePPG(60, seed),
		Walk:     replay.DefaultFixtureWalk(10, seed),
		Gestures: replay.DefaultFixtureGestures(seed),
	}

	flat := replay.DefaultFixturePPG(60, seed)
	flat.HRVJitter = 0
	flat.RespDepth = 0
	flat.MorphJitter = 0
	flat.Noise = 0

	return replay.Fixture{
		Description: "Canonical scenarios: standard accept, quick accept, replayed recording rejected",
		Enrollment:  enrollment,
		Sessions: []replay.FixtureSession{
			{
				SessionID: "standard-ok",
				Level:     "standard",
				Sensors:   enrollment,
				Expected:  replay.FixtureExpected{Success: true},
			},
			{
				SessionID: "quick-ok",
				Level:     "quick",
				Sensors: replay.FixtureSensors{
					Walk:     replay.DefaultFixtureWalk(10, seed),
					Gestures: replay.DefaultFixtureGestures(seed),
				},
				Expected: replay.FixtureExpected{Success: true},
			},
			{
				SessionID: "replayed",
				Level:     "standard",
				Sensors: replay.FixtureSensors{
					PPG:      flat,
					Walk:     replay.DefaultFixtureWalk(10, seed),
					Gestures: replay.DefaultFixtureGestures(seed),
				},
				Expected: replay.FixtureExpected{Success: false, Reason: "liveness_failed"},
			},
		},
	}
}

// #endregion build
