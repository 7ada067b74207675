package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kestrel-id/pulsegate/go-engine/internal/policy"
	"github.com/kestrel-id/pulsegate/go-engine/internal/quality"
)

func testRecord(version string) *EnrollmentRecord {
	vec := make([]float64, policy.IdentityDim)
	for i := range vec {
		vec[i] = float64(i) * 0.01
	}
	return &EnrollmentRecord{
		VersionID:      version,
		IdentityVector: vec,
		Hash:           "deadbeef",
		Quality: quality.ModalityQuality{
			Cardiac: 0.9, Movement: 1.0, Touch: 0.8, Overall: 0.91,
		},
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "pulsegate.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetEnrollmentEmpty(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.GetEnrollment()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Fatal("expected nil record on empty store")
	}
}

func TestSaveAndGetEnrollment(t *testing.T) {
	s := newTestStore(t)
	want := testRecord("v1")
	if err := s.SaveEnrollment(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetEnrollment()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected a record")
	}
	if got.VersionID != "v1" || got.Hash != "deadbeef" {
		t.Fatalf("metadata mismatch: %+v", got)
	}
	if got.SchemaVersion != SchemaVersion {
		t.Fatalf("schema version: %d", got.SchemaVersion)
	}
	if len(got.IdentityVector) != policy.IdentityDim {
		t.Fatalf("vector length %d", len(got.IdentityVector))
	}
	for i := range want.IdentityVector {
		if got.IdentityVector[i] != want.IdentityVector[i] {
			t.Fatalf("vector mismatch at %d", i)
		}
	}
	if got.Quality.Cardiac != 0.9 || got.Quality.Overall != 0.91 {
		t.Fatalf("quality mismatch: %+v", got.Quality)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("created_at: want %v, got %v", want.CreatedAt, got.CreatedAt)
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveEnrollment(testRecord("v1")); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	if err := s.SaveEnrollment(testRecord("v2")); err != nil {
		t.Fatalf("save v2: %v", err)
	}
	got, err := s.GetEnrollment()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VersionID != "v2" {
		t.Fatalf("expected v2, got %s", got.VersionID)
	}
}

func TestDeleteEnrollment(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveEnrollment(testRecord("v1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.DeleteEnrollment(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rec, err := s.GetEnrollment()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Fatal("record should be gone")
	}

	// Deleting again is not an error.
	if err := s.DeleteEnrollment(); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestVectorSealedAtRest(t *testing.T) {
	s := newTestStore(t)
	want := testRecord("v1")
	if err := s.SaveEnrollment(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	var blob []byte
	if err := s.db.QueryRow(`SELECT vector_blob FROM enrollment WHERE id = 1`).Scan(&blob); err != nil {
		t.Fatalf("read blob: %v", err)
	}
	raw := encodeVector(want.IdentityVector)
	if len(blob) != len(raw)+16 {
		t.Fatalf("blob length %d, expected %d", len(blob), len(raw)+16)
	}
	same := 0
	for i := range raw {
		if blob[16+i] == raw[i] {
			same++
		}
	}
	if same == len(raw) {
		t.Fatal("vector stored unsealed")
	}
}

func TestRecordClone(t *testing.T) {
	rec := testRecord("v1")
	clone := rec.Clone()
	clone.IdentityVector[0] = 99
	if rec.IdentityVector[0] == 99 {
		t.Fatal("clone shares the vector")
	}
}

func TestMemoryStoreRoundtrip(t *testing.T) {
	m := NewMemoryStore()
	rec, err := m.GetEnrollment()
	if err != nil || rec != nil {
		t.Fatalf("expected empty store, got %v %v", rec, err)
	}

	if err := m.SaveEnrollment(testRecord("v1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := m.GetEnrollment()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.IdentityVector[0] = 42
	again, _ := m.GetEnrollment()
	if again.IdentityVector[0] == 42 {
		t.Fatal("memory store must copy on get")
	}

	if err := m.DeleteEnrollment(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec, _ := m.GetEnrollment(); rec != nil {
		t.Fatal("record should be gone")
	}
}

func TestVectorEncodingRoundtrip(t *testing.T) {
	vec := []float64{0, -1.5, 3.25, 1e-9}
	out := decodeVector(encodeVector(vec))
	if len(out) != len(vec) {
		t.Fatalf("length %d", len(out))
	}
	for i := range vec {
		if out[i] != vec[i] {
			t.Fatalf("mismatch at %d: %v", i, out[i])
		}
	}
}
