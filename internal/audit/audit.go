// Package audit records authentication and enrollment decisions in the
// audit_log table. Rows carry derived scalars only (confidence, liveness,
// level, reason), never feature vectors or raw samples.
package audit

import (
	"database/sql"
	"fmt"
	"time"
)

// #region types

// Event names.
const (
	EventEnroll     = "enroll"
	EventAuth       = "authenticate"
	EventContinuous = "continuous"
	EventEvolve     = "evolve"
	EventLock       = "lock"
	EventDelete     = "delete"
)

// Entry is one audit row.
type Entry struct {
	SessionID  string
	Event      string
	Level      string
	Confidence float64
	Liveness   float64
	Decision   string // "accept" | "reject"
	Reason     string
	CreatedAt  time.Time
}

// #endregion types

// #region logger

// Logger writes audit entries to a database opened by the store.
type Logger struct {
	db *sql.DB
}

// NewLogger wraps an open database handle.
func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Log writes one entry. Nil receivers are no-ops so the manager can run
// without an audit backend.
func (l *Logger) Log(entry Entry) error {
	if l == nil || l.db == nil {
		return nil
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.Exec(
		`INSERT INTO audit_log (session_id, event, level, confidence, liveness, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.Event,
		nullIfEmpty(entry.Level),
		entry.Confidence,
		entry.Liveness,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("audit log: %w", err)
	}
	return nil
}

// Tail returns the most recent n entries, newest first.
func (l *Logger) Tail(n int) ([]Entry, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	rows, err := l.db.Query(
		`SELECT session_id, event, COALESCE(level, ''), confidence, liveness, decision, COALESCE(reason, ''), created_at
		 FROM audit_log ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("audit tail: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdStr string
		if err := rows.Scan(&e.SessionID, &e.Event, &e.Level, &e.Confidence,
			&e.Liveness, &e.Decision, &e.Reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion logger

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
