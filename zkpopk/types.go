// Package zkpopk implements the amortized zero-knowledge proof of
// plaintext knowledge of spec.md §4.7: a sigma protocol proving that a
// batch of ciphertexts was produced by she.Encrypt with plaintext and
// noise within specified bounds, grounded directly on
// original_source/src/bgv/zkpopk/{mod,prover,verifier}.rs.
package zkpopk

import (
	"math"
	"math/big"

	"github.com/haslersn/multipars/residue"
	"github.com/haslersn/multipars/she"
)

// Commitment is the prover's first message: one PreCiphertext per proof
// repetition.
type Commitment struct {
	Ciphertexts []she.PreCiphertext
}

// Challenge is the verifier's 32-byte second message, used to seed a
// ChaCha20 stream for the per-(proof,input) slide exponents.
type Challenge [32]byte

// Response is the prover's third message: one accumulated PreparedPlaintext
// witness per proof repetition.
type Response struct {
	Witnesses []she.PreparedPlaintext
}

// NumProofs computes ceil((sndSec+2) / log2(M-1)), spec.md §4.7's amortized
// soundness-boosting repetition count.
func NumProofs(sndSec int, m uint64) int {
	n := (float64(sndSec) + 2) / math.Log2(float64(m-1))
	return int(math.Ceil(n))
}

// centered interprets r as a signed integer in (-q/2, q/2].
func centered(r residue.PrimeResidue) *big.Int {
	q := r.Field().Modulus()
	v := r.Retrieve()
	half := new(big.Int).Rsh(q, 1)
	if v.Cmp(half) > 0 {
		v = new(big.Int).Sub(v, q)
	}
	return v
}

// bound computes B = 3*(M-1)^2*numCiphertexts*numProofs*invFailProb, per
// spec.md §4.7.
func bound(m uint64, numCiphertexts, numProofs, invFailProb int) *big.Int {
	mMinus1 := new(big.Int).SetUint64(m - 1)
	b := new(big.Int).Mul(mMinus1, mMinus1)
	b.Mul(b, big.NewInt(3))
	b.Mul(b, big.NewInt(int64(numCiphertexts)))
	b.Mul(b, big.NewInt(int64(numProofs)))
	b.Mul(b, big.NewInt(int64(invFailProb)))
	return b
}

// checkBounds verifies a response witness's three vectors lie within the
// bounds of spec.md §4.7: ||noised_plaintext|| <= 21B, ||e1|| <= 20B,
// ||v|| <= B.
func checkBounds(pp she.PreparedPlaintext, m uint64, numCiphertexts, numProofs, invFailProb int) bool {
	b := bound(m, numCiphertexts, numProofs, invFailProb)
	noisedBound := new(big.Int).Mul(b, big.NewInt(21))
	e1Bound := new(big.Int).Mul(b, big.NewInt(20))
	vBound := b

	for _, c := range pp.NoisedPlaintext.Coeffs {
		if absGreater(centered(c), noisedBound) {
			return false
		}
	}
	for _, c := range pp.E1.Coeffs {
		if absGreater(centered(c), e1Bound) {
			return false
		}
	}
	for _, c := range pp.V.Coeffs {
		if absGreater(centered(c), vBound) {
			return false
		}
	}
	return true
}

func absGreater(v, limit *big.Int) bool {
	abs := new(big.Int).Abs(v)
	return abs.Cmp(limit) >= 0
}
