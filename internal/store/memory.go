package store

import "sync"

// #region memory-store

// MemoryStore is an in-memory SecureStorage for tests and the replay
// harness.
type MemoryStore struct {
	mu  sync.Mutex
	rec *EnrollmentRecord
}

// NewMemoryStore returns an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetEnrollment returns a copy of the stored record, or (nil, nil).
func (m *MemoryStore) GetEnrollment() (*EnrollmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return nil, nil
	}
	return copyRecord(m.rec), nil
}

// SaveEnrollment replaces the stored record.
func (m *MemoryStore) SaveEnrollment(rec *EnrollmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = copyRecord(rec)
	return nil
}

// DeleteEnrollment removes the stored record.
func (m *MemoryStore) DeleteEnrollment() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = nil
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func copyRecord(rec *EnrollmentRecord) *EnrollmentRecord {
	out := *rec
	out.IdentityVector = make([]float64, len(rec.IdentityVector))
	copy(out.IdentityVector, rec.IdentityVector)
	return &out
}

// #endregion memory-store
