package zkpopk

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// slideStream draws the uniform [0,M) slide exponents chi_{j,i} of spec.md
// §4.7 from a ChaCha20 keystream seeded by the 32-byte challenge, mirroring
// the original's `ChaCha20Rng::from_seed(challenge)` / `gen_range(0..M)`.
type slideStream struct {
	cipher *chacha20.Cipher
}

func newSlideStream(challenge Challenge) (*slideStream, error) {
	nonce := make([]byte, chacha20.NonceSize)
	cipher, err := chacha20.NewUnauthenticatedCipher(challenge[:], nonce)
	if err != nil {
		return nil, err
	}
	return &slideStream{cipher: cipher}, nil
}

// uniform draws a uniform uint64 in [0, bound) via rejection sampling over
// 8-byte keystream blocks.
func (s *slideStream) uniform(bound uint64) uint64 {
	if bound == 0 {
		return 0
	}
	limit := (^uint64(0) / bound) * bound
	buf := make([]byte, 8)
	zero := make([]byte, 8)
	for {
		s.cipher.XORKeyStream(buf, zero)
		v := binary.BigEndian.Uint64(buf)
		if v < limit {
			return v % bound
		}
	}
}
