package she

import (
	"github.com/haslersn/multipars/internal/sampling"
	"github.com/haslersn/multipars/poly"
	"github.com/haslersn/multipars/residue"
)

// SecretKey holds s in CRT basis, per spec.md §4.6/§3.
type SecretKey struct {
	S poly.CrtPoly[residue.PrimeResidue]
}

// PublicKey holds (b, a) in CRT basis satisfying b = a*s + t*e, per
// spec.md §3.
type PublicKey struct {
	A, B poly.CrtPoly[residue.PrimeResidue]
}

// GenSecretKey samples s as a small centered-binomial power-basis
// polynomial and converts it to CRT basis, per spec.md §4.6.
func (ctx *Context) GenSecretKey(prng *sampling.PRNG) *SecretKey {
	sPower := ctx.sampleSmallPower(prng, ctx.SigmaIters)
	return &SecretKey{S: ctx.toCrt(sPower)}
}

// GenPublicKey samples a uniform a, small noise e, and sets
// b = a*s + t*e, per spec.md §4.6.
func (ctx *Context) GenPublicKey(prng *sampling.PRNG, sk *SecretKey) *PublicKey {
	a := ctx.sampleUniformCrt(prng)
	ePower := ctx.sampleSmallPower(prng, ctx.SigmaIters)
	teCrt := ctx.toCrt(ctx.scaleByT(ePower))

	as := a.Clone()
	as.MulAssignPointwise(sk.S)
	b := as.Clone()
	b.AddAssign(teCrt)

	return &PublicKey{A: a, B: b}
}
