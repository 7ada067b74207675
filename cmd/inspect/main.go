package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/kestrel-id/pulsegate/go-engine/internal/audit"
	"github.com/kestrel-id/pulsegate/go-engine/internal/store"
	"github.com/kestrel-id/pulsegate/go-engine/internal/vecmath"
)

// #region main

func main() {
	dbPath := flag.String("db", envOr("PULSEGATE_DB", ""), "path to pulsegate.db")
	last := flag.Int("last", 20, "show N most recent audit entries")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/pulsegate.db [--last N] [--json]")
		os.Exit(2)
	}

	st, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := run(st, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion main

// #region output

// enrollmentView is the JSON-safe projection of the enrollment record.
// Vector values never leave the store; only the norm is reported.
type enrollmentView struct {
	VersionID     string  `json:"version_id"`
	Hash          string  `json:"hash"`
	VectorNorm    float64 `json:"vector_norm"`
	Dim           int     `json:"dim"`
	Cardiac       float64 `json:"cardiac_quality"`
	Movement      float64 `json:"movement_quality"`
	Touch         float64 `json:"touch_quality"`
	Overall       float64 `json:"overall_quality"`
	SchemaVersion int     `json:"schema_version"`
	CreatedAt     string  `json:"created_at"`
}

type inspectOutput struct {
	Enrolled   bool            `json:"enrolled"`
	Enrollment *enrollmentView `json:"enrollment,omitempty"`
	AuditTail  []audit.Entry   `json:"audit_tail,omitempty"`
}

func run(st *store.SQLiteStore, last int, jsonOut bool) error {
	rec, err := st.GetEnrollment()
	if err != nil {
		return err
	}

	out := inspectOutput{Enrolled: rec != nil}
	if rec != nil {
		out.Enrollment = &enrollmentView{
			VersionID:     rec.VersionID,
			Hash:          rec.Hash,
			VectorNorm:    vecmath.Norm(rec.IdentityVector),
			Dim:           len(rec.IdentityVector),
			Cardiac:       rec.Quality.Cardiac,
			Movement:      rec.Quality.Movement,
			Touch:         rec.Quality.Touch,
			Overall:       rec.Quality.Overall,
			SchemaVersion: rec.SchemaVersion,
			CreatedAt:     rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		vecmath.Zero(rec.IdentityVector)
	}

	logger := audit.NewLogger(st.DB())
	entries, err := logger.Tail(last)
	if err != nil {
		return err
	}
	out.AuditTail = entries

	if jsonOut {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if out.Enrollment == nil {
		fmt.Println("No enrollment record.")
	} else {
		e := out.Enrollment
		fmt.Printf("Version:     %s\n", e.VersionID)
		fmt.Printf("Hash:        %s\n", e.Hash)
		fmt.Printf("Vector:      dim %d, norm %.4f\n", e.Dim, e.VectorNorm)
		fmt.Printf("Quality:     cardiac %.2f, movement %.2f, touch %.2f, overall %.2f\n",
			e.Cardiac, e.Movement, e.Touch, e.Overall)
		fmt.Printf("Schema:      v%d\n", e.SchemaVersion)
		fmt.Printf("Created:     %s\n", e.CreatedAt)
	}

	if len(entries) > 0 {
		fmt.Printf("\n%-12s  %-10s  %-9s  %10s  %8s  %-7s  %s\n",
			"Session", "Event", "Level", "Confidence", "Liveness", "Result", "Reason")
		for _, e := range entries {
			fmt.Printf("%-12s  %-10s  %-9s  %10.4f  %8.4f  %-7s  %s\n",
				shortID(e.SessionID), e.Event, e.Level, e.Confidence,
				e.Liveness, e.Decision, e.Reason)
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
