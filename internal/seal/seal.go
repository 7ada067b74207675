// Package seal provides at-rest sealing of the stored identity vector
// blob: a SHA-256 counter keystream keyed from a local 0600 key file, with
// a random per-record nonce. It keeps the raw vector out of the database
// file; key management beyond the local file is the host's responsibility.
package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"
)

// #region sealer

const nonceSize = 16

// Sealer seals and unseals byte blobs with a fixed key.
type Sealer struct {
	key []byte
}

// NewSealer loads the key file, creating it with fresh random bytes when
// absent.
func NewSealer(keyPath string) (*Sealer, error) {
	key, err := ensureKey(keyPath)
	if err != nil {
		return nil, err
	}
	return &Sealer{key: key}, nil
}

// NewSealerWithKey wraps an in-memory key, for tests and memory stores.
func NewSealerWithKey(key []byte) (*Sealer, error) {
	if len(key) < 32 {
		return nil, fmt.Errorf("seal key too short: %d bytes", len(key))
	}
	return &Sealer{key: key[:32]}, nil
}

func ensureKey(keyPath string) ([]byte, error) {
	data, err := os.ReadFile(keyPath)
	if err == nil && len(data) >= 32 {
		return data[:32], nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("keygen: %w", err)
	}
	if err := os.WriteFile(keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("write key: %w", err)
	}
	return key, nil
}

// #endregion sealer

// #region keystream

// keystream derives length bytes from SHA-256 over key||nonce||counter.
func keystream(key, nonce []byte, length int) []byte {
	stream := make([]byte, 0, length+sha256.Size)
	counter := uint64(0)
	for len(stream) < length {
		buf := make([]byte, 0, len(key)+len(nonce)+8)
		buf = append(buf, key...)
		buf = append(buf, nonce...)
		buf = binary.BigEndian.AppendUint64(buf, counter)
		h := sha256.Sum256(buf)
		stream = append(stream, h[:]...)
		counter++
	}
	return stream[:length]
}

// #endregion keystream

// #region seal-unseal

// Seal returns nonce || plain XOR keystream.
func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	stream := keystream(s.key, nonce, len(plain))
	out := make([]byte, nonceSize+len(plain))
	copy(out, nonce)
	for i, b := range plain {
		out[nonceSize+i] = b ^ stream[i]
	}
	return out, nil
}

// Unseal inverts Seal.
func (s *Sealer) Unseal(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("sealed blob too short: %d bytes", len(sealed))
	}
	nonce := sealed[:nonceSize]
	body := sealed[nonceSize:]
	stream := keystream(s.key, nonce, len(body))
	out := make([]byte, len(body))
	for i, b := range body {
		out[i] = b ^ stream[i]
	}
	return out, nil
}

// #endregion seal-unseal
