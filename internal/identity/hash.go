package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"golang.org/x/crypto/sha3"
)

// #region hash

// HashAlgo selects the registration digest. The chain layer consumes the
// hex digest; any collision-resistant 256-bit digest over the raw vector
// bytes satisfies the contract.
type HashAlgo string

const (
	// HashSHA3 is the default, SHA3-256.
	HashSHA3 HashAlgo = "sha3-256"
	// HashSHA2 selects SHA-256.
	HashSHA2 HashAlgo = "sha-256"
)

// VectorHash digests the identity vector's raw little-endian float64 bytes.
func VectorHash(v []float64, algo HashAlgo) string {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	var digest [32]byte
	switch algo {
	case HashSHA2:
		digest = sha256.Sum256(buf)
	default:
		digest = sha3.Sum256(buf)
	}
	for i := range buf {
		buf[i] = 0
	}
	return hex.EncodeToString(digest[:])
}

// #endregion hash
