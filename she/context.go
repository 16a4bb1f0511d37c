// Package she implements the BGV-style somewhat-homomorphic encryption
// core of spec.md §4.6: key generation, symmetric encryption, drowning
// re-randomization, and decryption over a cyclotomic ring split into
// ciphertext ring R_q (prime modulus, NTT/Fourier basis conversion) and
// plaintext ring R_t (power-of-two modulus, factor-reduction basis
// conversion). Named `she` rather than `bgv`; see DESIGN.md.
package she

import (
	"math/big"

	"github.com/haslersn/multipars/internal/sampling"
	"github.com/haslersn/multipars/params"
	"github.com/haslersn/multipars/poly"
	"github.com/haslersn/multipars/residue"
)

// Context bundles the parameter Set (P), the ciphertext ring's CRT<->power
// conversion (ctxQ, the Fourier strategy), and the plaintext ring's
// CRT<->power conversion (ctxT, the Factors strategy), per spec.md
// §4.4-4.6 / SPEC_FULL.md §4.4-4.6.
type Context struct {
	Built *params.Built

	// N is phi(M), the ring degree shared by R_q and R_t.
	N int

	// SigmaIters is the centered-binomial iteration count used for key
	// and encryption noise, per spec.md §4.6 ("e0 centered-binomial
	// iters=20").
	SigmaIters int
}

// NewContext builds a she.Context for one parameter Set. N is taken from
// the ciphertext ring's own Fourier context (phi(M)) rather than from
// PlaintextFactors, since the two must agree for a valid BGV instance and
// only the ciphertext ring is guaranteed present (the dealer's independent
// BGV instance of spec.md §4.11 has no packed plaintext/TIP context).
func NewContext(built *params.Built) *Context {
	return &Context{Built: built, N: built.CiphertextFourier.Degree(), SigmaIters: 20}
}

func (ctx *Context) qField() *residue.PrimeField { return ctx.Built.CiphertextField }
func (ctx *Context) tField() *residue.NativeField { return ctx.Built.PlaintextField }

// plaintextBits is b such that t = 2^b.
func (ctx *Context) plaintextBits() uint { return ctx.Built.Set.PlaintextBits }

// MaxDrownBits is the noise budget bits(q) - b - 1 of spec.md §4.6.
func (ctx *Context) MaxDrownBits() int {
	return ctx.Built.Set.CiphertextQ.BitLen() - int(ctx.plaintextBits()) - 1
}

// sampleSmallPower draws an N-coefficient power-basis polynomial over R_q
// with centered-binomial coefficients, the common shape of sk/e/v/e0/e1
// sampling in spec.md §4.6.
func (ctx *Context) sampleSmallPower(prng *sampling.PRNG, iters int) poly.PowerPoly[residue.PrimeResidue] {
	field := ctx.qField()
	out := poly.NewPowerPoly[residue.PrimeResidue](ctx.N, residue.FromInt64(field, 0))
	for i := 0; i < ctx.N; i++ {
		out.Coeffs[i] = residue.FromInt64(field, prng.CenteredBinomial(iters))
	}
	return out
}

// sampleUniformPower draws an N-coefficient power-basis polynomial over R_q
// with uniform coefficients of the given bit magnitude (signed, centered
// at zero), used by EncryptAndDrown's e0.
func (ctx *Context) sampleUniformPower(prng *sampling.PRNG, bits int) poly.PowerPoly[residue.PrimeResidue] {
	field := ctx.qField()
	out := poly.NewPowerPoly[residue.PrimeResidue](ctx.N, residue.FromInt64(field, 0))
	bound := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	for i := 0; i < ctx.N; i++ {
		v := prng.UniformBigInt(bound)
		v.Sub(v, half)
		out.Coeffs[i] = residue.FromUint(field, new(big.Int).Mod(v, ctx.Built.Set.CiphertextQ))
	}
	return out
}

// sampleUniformCrt draws a uniform CRT-basis polynomial over R_q, used for
// the public key's a component, per spec.md §4.6.
func (ctx *Context) sampleUniformCrt(prng *sampling.PRNG) poly.CrtPoly[residue.PrimeResidue] {
	field := ctx.qField()
	out := poly.NewCrtPoly[residue.PrimeResidue](ctx.N, residue.FromInt64(field, 0))
	for i := 0; i < ctx.N; i++ {
		out.Slots[i] = residue.FromUint(field, prng.UniformBigInt(ctx.Built.Set.CiphertextQ))
	}
	return out
}

// toCrt/toPower convert via the ciphertext ring's Fourier context.
func (ctx *Context) toCrt(p poly.PowerPoly[residue.PrimeResidue]) poly.CrtPoly[residue.PrimeResidue] {
	return ctx.Built.CiphertextFourier.FromPower(p)
}

func (ctx *Context) toPower(c poly.CrtPoly[residue.PrimeResidue]) poly.PowerPoly[residue.PrimeResidue] {
	return ctx.Built.CiphertextFourier.ToPower(c)
}

// mulPower multiplies two power-basis polynomials by converting to CRT,
// multiplying pointwise (valid for the Fourier/NTT strategy), and
// converting back, per spec.md §4.4's "CRT basis supports pointwise mul".
func (ctx *Context) mulPower(a, b poly.PowerPoly[residue.PrimeResidue]) poly.PowerPoly[residue.PrimeResidue] {
	ac := ctx.toCrt(a)
	bc := ctx.toCrt(b)
	prod := ac.Clone()
	prod.MulAssignPointwise(bc)
	return ctx.toPower(prod)
}

// liftPlaintext embeds a plaintext power-basis polynomial over Z/t into
// Z_q, taking each coefficient's centered representative in [-t/2, t/2).
func (ctx *Context) liftPlaintext(m poly.PowerPoly[residue.NativeResidue]) poly.PowerPoly[residue.PrimeResidue] {
	field := ctx.qField()
	out := poly.NewPowerPoly[residue.PrimeResidue](ctx.N, residue.FromInt64(field, 0))
	for i, c := range m.Coeffs {
		signed := c.RetrieveSigned()
		out.Coeffs[i] = residue.FromUint(field, new(big.Int).Mod(signed, ctx.Built.Set.CiphertextQ))
	}
	return out
}

// scaleByT multiplies a power-basis polynomial's coefficients by t = 2^b,
// used for the "t*e" additive noise terms of spec.md §4.6.
func (ctx *Context) scaleByT(p poly.PowerPoly[residue.PrimeResidue]) poly.PowerPoly[residue.PrimeResidue] {
	field := ctx.qField()
	t := new(big.Int).Lsh(big.NewInt(1), ctx.plaintextBits())
	tRes := residue.FromUint(field, t)
	out := p.Clone()
	out.ScalarMulAssign(tRes)
	return out
}

func addPower(a, b poly.PowerPoly[residue.PrimeResidue]) poly.PowerPoly[residue.PrimeResidue] {
	out := a.Clone()
	out.AddAssign(b)
	return out
}
