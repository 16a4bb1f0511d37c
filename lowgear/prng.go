package lowgear

import (
	"crypto/cipher"
	"math/big"

	"golang.org/x/crypto/chacha20"

	"github.com/haslersn/multipars/residue"
)

// newSeededStream derives a deterministic byte stream from a 32-byte seed,
// the same ChaCha20-from-seed construction zkpopk's slideStream uses, per
// mac_check_opener/mod.rs's `ChaCha20Rng::from_seed(seed)`.
func newSeededStream(seed [32]byte) (cipher.Stream, error) {
	var nonce [12]byte
	return chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
}

// randomResidue draws a uniform element of field from stream, used by the
// batch MAC-check's random linear-combination coefficients, per
// mac_check_opener/mod.rs's `K::random(&mut prng)`.
func randomResidue(stream cipher.Stream, field *residue.NativeField) residue.NativeResidue {
	nbytes := (field.Bits() + 7) / 8
	buf := make([]byte, nbytes)
	stream.XORKeyStream(buf, buf)
	return residue.NativeFromUint(field, new(big.Int).SetBytes(buf))
}
