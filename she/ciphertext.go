package she

import (
	"github.com/haslersn/multipars/poly"
	"github.com/haslersn/multipars/residue"
)

// Ciphertext wraps (c0, c1) in CRT basis, the NTT images used for
// homomorphic evaluation, per spec.md §3.
type Ciphertext struct {
	C0, C1 poly.CrtPoly[residue.PrimeResidue]
}

// PreCiphertext wraps (c0, c1) in power basis, used by ZKPoPK which must
// manipulate noise coefficients as signed integers, per spec.md §3.
type PreCiphertext struct {
	C0, C1 poly.PowerPoly[residue.PrimeResidue]
}

// ToCiphertext converts a PreCiphertext to its NTT-image Ciphertext.
func (ctx *Context) ToCiphertext(pre PreCiphertext) Ciphertext {
	return Ciphertext{C0: ctx.toCrt(pre.C0), C1: ctx.toCrt(pre.C1)}
}

// Clone returns an independent copy of both power-basis halves.
func (pre PreCiphertext) Clone() PreCiphertext {
	return PreCiphertext{C0: pre.C0.Clone(), C1: pre.C1.Clone()}
}

// AddAssignSlided applies PowerPoly.AddAssignSlided to both c0 and c1, used
// by ZKPoPK's verifier to slide the output ciphertexts into the
// accumulated commitment, per spec.md §4.7.
func (pre PreCiphertext) AddAssignSlided(rhs PreCiphertext, length int) {
	pre.C0.AddAssignSlided(rhs.C0, length)
	pre.C1.AddAssignSlided(rhs.C1, length)
}

// Equal compares two PreCiphertexts coefficient-wise.
func (pre PreCiphertext) Equal(other PreCiphertext) bool {
	for i := range pre.C0.Coeffs {
		if !pre.C0.Coeffs[i].Equal(other.C0.Coeffs[i]) {
			return false
		}
	}
	for i := range pre.C1.Coeffs {
		if !pre.C1.Coeffs[i].Equal(other.C1.Coeffs[i]) {
			return false
		}
	}
	return true
}

// PreparedPlaintext is the randomness witness of a single encryption, per
// spec.md §3: v is the encryption randomness, e1 the additive noise on c1,
// and noisedPlaintext is m + t*e0: the plaintext in the low b bits and e0
// in the high bits.
type PreparedPlaintext struct {
	NoisedPlaintext poly.PowerPoly[residue.PrimeResidue]
	E1              poly.PowerPoly[residue.PrimeResidue]
	V               poly.PowerPoly[residue.PrimeResidue]
}

// Clone returns an independent copy of every witness vector.
func (pp PreparedPlaintext) Clone() PreparedPlaintext {
	return PreparedPlaintext{
		NoisedPlaintext: pp.NoisedPlaintext.Clone(),
		E1:              pp.E1.Clone(),
		V:               pp.V.Clone(),
	}
}

// AddAssignSlided applies PowerPoly.AddAssignSlided to all three witness
// vectors in lockstep, per spec.md §4.7's `slide(x_i, chi)` operation.
func (pp PreparedPlaintext) AddAssignSlided(rhs PreparedPlaintext, length int) {
	pp.NoisedPlaintext.AddAssignSlided(rhs.NoisedPlaintext, length)
	pp.E1.AddAssignSlided(rhs.E1, length)
	pp.V.AddAssignSlided(rhs.V, length)
}
