// Package store implements the SecureStorage contract: exactly one
// enrollment record at a time, saved, loaded and deleted atomically. The
// SQLite implementation seals the vector blob at rest; the memory
// implementation backs tests.
package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kestrel-id/pulsegate/go-engine/internal/quality"
	"github.com/kestrel-id/pulsegate/go-engine/internal/seal"
)

// #region contract

// SchemaVersion is stamped into every record for forward migration.
const SchemaVersion = 1

// EnrollmentRecord is the durable identity representation. The identity
// vector is mutable only through the bounded evolution path.
type EnrollmentRecord struct {
	VersionID      string
	IdentityVector []float64
	Hash           string
	Quality        quality.ModalityQuality
	SchemaVersion  int
	CreatedAt      time.Time
}

// Clone returns a deep copy; the identity vector is never shared.
func (r *EnrollmentRecord) Clone() *EnrollmentRecord {
	out := *r
	out.IdentityVector = make([]float64, len(r.IdentityVector))
	copy(out.IdentityVector, r.IdentityVector)
	return &out
}

// SecureStorage is the save/load/delete contract. GetEnrollment returns
// (nil, nil) when no record exists.
type SecureStorage interface {
	GetEnrollment() (*EnrollmentRecord, error)
	SaveEnrollment(rec *EnrollmentRecord) error
	DeleteEnrollment() error
	Close() error
}

// #endregion contract

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS enrollment (
	id              INTEGER PRIMARY KEY CHECK (id = 1),
	version_id      TEXT NOT NULL,
	vector_blob     BLOB NOT NULL,
	vector_hash     TEXT NOT NULL,
	quality_json    TEXT NOT NULL,
	schema_version  INTEGER NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	event       TEXT NOT NULL,
	level       TEXT,
	confidence  REAL,
	liveness    REAL,
	decision    TEXT NOT NULL,
	reason      TEXT,
	created_at  TEXT NOT NULL
);
`

// #endregion schema

// #region sqlite-store

// SQLiteStore persists the single enrollment record in SQLite with the
// vector blob sealed at rest.
type SQLiteStore struct {
	db     *sql.DB
	sealer *seal.Sealer
}

// NewSQLiteStore opens the database, runs migrations and loads (or
// creates) the seal key at dbPath + ".key".
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	sealer, err := seal.NewSealer(dbPath + ".key")
	if err != nil {
		return nil, fmt.Errorf("seal key: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, sealer: sealer}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the connection for the audit log and inspection tooling.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// GetEnrollment loads the active record, or (nil, nil) when none exists.
func (s *SQLiteStore) GetEnrollment() (*EnrollmentRecord, error) {
	var rec EnrollmentRecord
	var blob []byte
	var qualityJSON, createdStr string

	err := s.db.QueryRow(
		`SELECT version_id, vector_blob, vector_hash, quality_json, schema_version, created_at
		 FROM enrollment WHERE id = 1`,
	).Scan(&rec.VersionID, &blob, &rec.Hash, &qualityJSON, &rec.SchemaVersion, &createdStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}

	plain, err := s.sealer.Unseal(blob)
	if err != nil {
		return nil, fmt.Errorf("unseal vector: %w", err)
	}
	rec.IdentityVector = decodeVector(plain)

	if err := json.Unmarshal([]byte(qualityJSON), &rec.Quality); err != nil {
		return nil, fmt.Errorf("unmarshal quality: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return &rec, nil
}

// SaveEnrollment replaces the active record entirely (no merge).
func (s *SQLiteStore) SaveEnrollment(rec *EnrollmentRecord) error {
	qualityJSON, err := json.Marshal(rec.Quality)
	if err != nil {
		return fmt.Errorf("marshal quality: %w", err)
	}
	sealed, err := s.sealer.Seal(encodeVector(rec.IdentityVector))
	if err != nil {
		return fmt.Errorf("seal vector: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO enrollment (id, version_id, vector_blob, vector_hash, quality_json, schema_version, created_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			version_id = excluded.version_id,
			vector_blob = excluded.vector_blob,
			vector_hash = excluded.vector_hash,
			quality_json = excluded.quality_json,
			schema_version = excluded.schema_version,
			created_at = excluded.created_at`,
		rec.VersionID, sealed, rec.Hash, string(qualityJSON),
		rec.SchemaVersion, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save enrollment: %w", err)
	}
	return nil
}

// DeleteEnrollment removes the record. Deleting a missing record is not an
// error.
func (s *SQLiteStore) DeleteEnrollment() error {
	if _, err := s.db.Exec(`DELETE FROM enrollment WHERE id = 1`); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// #endregion sqlite-store

// #region vector-encoding

func encodeVector(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

// #endregion vector-encoding
