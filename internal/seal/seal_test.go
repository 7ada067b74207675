package seal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestSealRoundtrip(t *testing.T) {
	s, err := NewSealerWithKey(testKey())
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	plain := []byte("the quick brown fox")
	sealed, err := s.Seal(plain)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, plain) {
		t.Fatal("sealed blob leaks plaintext")
	}
	out, err := s.Unseal(sealed)
	if err != nil {
		t.Fatalf("unseal: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatalf("roundtrip mismatch: %q", out)
	}
}

func TestSealNonceVaries(t *testing.T) {
	s, _ := NewSealerWithKey(testKey())
	plain := []byte("same input")
	a, err := s.Seal(plain)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	b, err := s.Seal(plain)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two seals of the same input must differ")
	}
}

func TestUnsealTruncatedBlob(t *testing.T) {
	s, _ := NewSealerWithKey(testKey())
	if _, err := s.Unseal([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated blob")
	}
}

func TestKeyTooShort(t *testing.T) {
	if _, err := NewSealerWithKey([]byte("short")); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestKeyFileCreatedWithTightMode(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "seal.key")
	if _, err := NewSealer(keyPath); err != nil {
		t.Fatalf("sealer: %v", err)
	}
	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat key: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("key file mode %v, expected 0600", info.Mode().Perm())
	}
}

func TestKeyFileReused(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "seal.key")
	a, err := NewSealer(keyPath)
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	sealed, err := a.Seal([]byte("payload"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	b, err := NewSealer(keyPath)
	if err != nil {
		t.Fatalf("second sealer: %v", err)
	}
	out, err := b.Unseal(sealed)
	if err != nil {
		t.Fatalf("unseal: %v", err)
	}
	if string(out) != "payload" {
		t.Fatalf("cross-instance roundtrip mismatch: %q", out)
	}
}
