package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/kestrel-id/pulsegate/go-engine/internal/audit"
	"github.com/kestrel-id/pulsegate/go-engine/internal/identity"
	"github.com/kestrel-id/pulsegate/go-engine/internal/replay"
	"github.com/kestrel-id/pulsegate/go-engine/internal/store"
	"github.com/kestrel-id/pulsegate/go-engine/internal/synth"
	"github.com/kestrel-id/pulsegate/go-engine/internal/touch"
)

// #region main

func main() {
	dbPath := flag.String("db", envOr("PULSEGATE_DB", "pulsegate.db"), "path to pulsegate.db")
	fixturePath := flag.String("fixture", "", "enroll from a fixture's enrollment sensors instead of generated ones")
	seed := flag.Int64("seed", 1, "generator seed for synthetic enrollment")
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	st, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	cfg := identity.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	mgr := identity.NewManager(st, cfg, identity.WithAudit(audit.NewLogger(st.DB())))

	switch flag.Arg(0) {
	case "enroll":
		err = runEnroll(mgr, *fixturePath, *seed)
	case "status":
		err = runStatus(mgr)
	case "delete":
		err = mgr.DeleteIdentity()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: enrollctl [--db path] [--fixture path | --seed N] enroll|status|delete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion main

// #region commands

func runEnroll(mgr *identity.Manager, fixturePath string, seed int64) error {
	var ppg []float64
	var accel identity.AccelData
	var events []touch.Event

	if fixturePath != "" {
		f, err := replay.LoadFixture(fixturePath)
		if err != nil {
			return err
		}
		s := f.Enrollment
		if s.PPG != nil {
			ppg = synth.PPG(s.PPG.Seconds, s.PPG.ToPPGConfig())
		}
		if s.Walk != nil {
			accel.X, accel.Y, accel.Z = synth.Walk(s.Walk.Seconds, s.Walk.ToWalkConfig())
		}
		if s.Gestures != nil {
			events = synth.Gestures(s.Gestures.ToGestureConfig())
		}
	} else {
		ppgCfg := synth.DefaultPPGConfig()
		ppgCfg.Seed = seed
		ppg = synth.PPG(20, ppgCfg)

		walkCfg := synth.DefaultWalkConfig()
		walkCfg.Seed = seed
		accel.X, accel.Y, accel.Z = synth.Walk(10, walkCfg)

		gestCfg := synth.DefaultGestureConfig()
		gestCfg.Seed = seed
		events = synth.Gestures(gestCfg)
	}

	rec, err := mgr.Enroll(ppg, accel, events)
	if err != nil {
		return err
	}
	fmt.Printf("Enrolled version %s\n", rec.VersionID)
	fmt.Printf("Hash:    %s\n", rec.Hash)
	fmt.Printf("Quality: cardiac %.2f, movement %.2f, touch %.2f, overall %.2f\n",
		rec.Quality.Cardiac, rec.Quality.Movement, rec.Quality.Touch, rec.Quality.Overall)
	return nil
}

func runStatus(mgr *identity.Manager) error {
	st := mgr.Status()
	fmt.Printf("Enrolled:      %v\n", st.Enrolled)
	fmt.Printf("Authenticated: %v\n", st.Authenticated)
	fmt.Printf("Continuous:    %v\n", st.ContinuousActive)
	return nil
}

// #endregion commands
