package she

import (
	"math/big"

	"github.com/haslersn/multipars/internal/sampling"
	"github.com/haslersn/multipars/poly"
	"github.com/haslersn/multipars/residue"
)

// EncryptPrepared re-derives the PreCiphertext a PreparedPlaintext witness
// (noised_plaintext, e1, v) would have produced, without drawing any fresh
// randomness: c0 = b*v + noised_plaintext, c1 = a*v + t*e1. ZKPoPK's
// verifier uses this to check a response witness against the accumulated
// commitment ciphertext, per spec.md §4.7 / original_source's
// `PreparedPlaintext::encrypt_into`.
func (ctx *Context) EncryptPrepared(pk *PublicKey, pp PreparedPlaintext) PreCiphertext {
	bPower := ctx.toPower(pk.B)
	aPower := ctx.toPower(pk.A)

	bv := ctx.mulPower(bPower, pp.V)
	av := ctx.mulPower(aPower, pp.V)

	c0 := addPower(bv, pp.NoisedPlaintext)
	te1 := ctx.scaleByT(pp.E1)
	c1 := addPower(av, te1)

	return PreCiphertext{C0: c0, C1: c1}
}

// encryptCore implements the shared c0 = b*v + noised_plaintext, c1 = a*v +
// t*e1 computation of spec.md §4.6, parameterized by how e0 (folded into
// noised_plaintext) is drawn: small centered-binomial for Encrypt, large
// uniform for EncryptAndDrown.
func (ctx *Context) encryptCore(prng *sampling.PRNG, pk *PublicKey, mLifted poly.PowerPoly[residue.PrimeResidue], e0 poly.PowerPoly[residue.PrimeResidue]) (PreCiphertext, PreparedPlaintext) {
	v := ctx.sampleSmallPower(prng, ctx.SigmaIters)
	e1 := ctx.sampleSmallPower(prng, ctx.SigmaIters)

	te0 := ctx.scaleByT(e0)
	noisedPlaintext := addPower(mLifted, te0)

	prepared := PreparedPlaintext{NoisedPlaintext: noisedPlaintext, E1: e1, V: v}
	pre := ctx.EncryptPrepared(pk, prepared)
	return pre, prepared
}

// Encrypt performs symmetric encryption of m (a plaintext power-basis
// polynomial over Z/t) under pk, with small centered-binomial noise, per
// spec.md §4.6.
func (ctx *Context) Encrypt(prng *sampling.PRNG, pk *PublicKey, m poly.PowerPoly[residue.NativeResidue]) (Ciphertext, PreCiphertext, PreparedPlaintext) {
	mLifted := ctx.liftPlaintext(m)
	e0 := ctx.sampleSmallPower(prng, ctx.SigmaIters)
	pre, prepared := ctx.encryptCore(prng, pk, mLifted, e0)
	return ctx.ToCiphertext(pre), pre, prepared
}

// EncryptAndDrown is identical to Encrypt except e0 is uniform of the given
// bit magnitude, hiding the plaintext inside a larger noise range when
// mixing ciphertexts that were not individually proven via ZKPoPK, per
// spec.md §4.6.
func (ctx *Context) EncryptAndDrown(prng *sampling.PRNG, pk *PublicKey, m poly.PowerPoly[residue.NativeResidue], noiseBits int) (Ciphertext, PreCiphertext, PreparedPlaintext) {
	mLifted := ctx.liftPlaintext(m)
	e0 := ctx.sampleUniformPower(prng, noiseBits)
	pre, prepared := ctx.encryptCore(prng, pk, mLifted, e0)
	return ctx.ToCiphertext(pre), pre, prepared
}

// Decrypt computes m = (c0 - c1*s) mod q, reduced mod t, per spec.md §4.6's
// decryption correctness invariant.
func (ctx *Context) Decrypt(sk *SecretKey, ct Ciphertext) poly.PowerPoly[residue.NativeResidue] {
	c1s := ct.C1.Clone()
	c1s.MulAssignPointwise(sk.S)

	diff := ct.C0.Clone()
	diff.SubAssign(c1s)

	diffPower := ctx.toPower(diff)

	tField := ctx.tField()
	out := poly.NewPowerPoly[residue.NativeResidue](ctx.N, residue.NativeZero(tField))
	q := ctx.Built.Set.CiphertextQ
	for i, c := range diffPower.Coeffs {
		v := c.Retrieve()
		// Center in (-q/2, q/2] before reducing mod t, so the sign of
		// small noise values is preserved through the mask.
		half := new(big.Int).Rsh(q, 1)
		if v.Cmp(half) > 0 {
			v = new(big.Int).Sub(v, q)
		}
		out.Coeffs[i] = residue.NativeFromUint(tField, v)
	}
	return out
}

// MulPlain multiplies a ciphertext by a cleartext plaintext polynomial y
// (power basis over Z/t), returning the ciphertext encrypting x*y mod t,
// per spec.md §8's "homomorphic mul-plain" testable property.
func (ctx *Context) MulPlain(ct Ciphertext, y poly.PowerPoly[residue.NativeResidue]) Ciphertext {
	yLifted := ctx.liftPlaintext(y)
	yCrt := ctx.toCrt(yLifted)

	c0 := ct.C0.Clone()
	c0.MulAssignPointwise(yCrt)
	c1 := ct.C1.Clone()
	c1.MulAssignPointwise(yCrt)

	return Ciphertext{C0: c0, C1: c1}
}

// AddCiphertexts adds two ciphertexts homomorphically.
func (ctx *Context) AddCiphertexts(a, b Ciphertext) Ciphertext {
	c0 := a.C0.Clone()
	c0.AddAssign(b.C0)
	c1 := a.C1.Clone()
	c1.AddAssign(b.C1)
	return Ciphertext{C0: c0, C1: c1}
}

// SubCiphertexts subtracts b from a homomorphically.
func (ctx *Context) SubCiphertexts(a, b Ciphertext) Ciphertext {
	c0 := a.C0.Clone()
	c0.SubAssign(b.C0)
	c1 := a.C1.Clone()
	c1.SubAssign(b.C1)
	return Ciphertext{C0: c0, C1: c1}
}
