package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/kestrel-id/pulsegate/go-engine/internal/identity"
	"github.com/kestrel-id/pulsegate/go-engine/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [-v]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *verbose))
}

func run(path string, verbose bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	cfg := identity.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	results, summary, err := replay.Run(f, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}
	printComparison(f, results)

	fmt.Printf("\nSummary: %d sessions, %d accept, %d reject, %d match, %d diverge\n",
		summary.TotalSessions, summary.Accepts, summary.Rejects,
		summary.Matched, summary.Mismatched)

	if summary.Mismatched > 0 {
		return 1
	}
	return 0
}

// #endregion main

// #region output

func printComparison(f *replay.Fixture, results []replay.Result) {
	fmt.Printf("%-12s| %-9s| %-10s| %-10s| %-20s| %s\n",
		"Session", "Level", "Expected", "Replayed", "Reason", "Match")
	fmt.Printf("%-12s+%-10s+%-11s+%-11s+%-21s+%s\n",
		"------------", "----------", "-----------", "-----------",
		"---------------------", "------")

	for i, r := range results {
		expected := "reject"
		if i < len(f.Sessions) && f.Sessions[i].Expected.Success {
			expected = "accept"
		}
		got := "reject"
		if r.Success {
			got = "accept"
		}
		match := "DIFF"
		if r.Matched {
			match = "OK"
		}
		fmt.Printf("%-12s| %-9s| %-10s| %-10s| %-20s| %s\n",
			r.SessionID, r.Level, expected, got, r.Reason, match)
	}
}

// #endregion output
