package poly

import (
	"bytes"
	"encoding/gob"
)

// PowerPoly is a ring element in power basis: phi(M) coefficients, one per
// monomial 1..X^{phi(M)-1}. The implicit coefficient on X^{phi(M)} equals
// minus the sum of the others, since Phi_M(X) = 1+X+...+X^{M-1} for prime M
// and the reduction X^{M-1} = -(1+X+...+X^{M-2}) folds the top monomial
// back in. zero is the additive identity of S, needed because Go generics
// give us no way to conjure a fresh S from nothing.
type PowerPoly[S Scalar[S]] struct {
	Coeffs []S
	zero   S
}

// NewPowerPoly returns the all-zero power-basis polynomial of degree
// phi(M) = n.
func NewPowerPoly[S Scalar[S]](n int, zero S) PowerPoly[S] {
	coeffs := make([]S, n)
	for i := range coeffs {
		coeffs[i] = zero
	}
	return PowerPoly[S]{Coeffs: coeffs, zero: zero}
}

// Degree returns phi(M).
func (p PowerPoly[S]) Degree() int { return len(p.Coeffs) }

// Clone returns an independent copy (PowerPoly is otherwise value-semantic
// except for the backing slice).
func (p PowerPoly[S]) Clone() PowerPoly[S] {
	out := make([]S, len(p.Coeffs))
	copy(out, p.Coeffs)
	return PowerPoly[S]{Coeffs: out, zero: p.zero}
}

// AddAssign adds rhs into p coefficient-wise.
func (p PowerPoly[S]) AddAssign(rhs PowerPoly[S]) {
	for i := range p.Coeffs {
		p.Coeffs[i] = p.Coeffs[i].Add(rhs.Coeffs[i])
	}
}

// SubAssign subtracts rhs from p coefficient-wise.
func (p PowerPoly[S]) SubAssign(rhs PowerPoly[S]) {
	for i := range p.Coeffs {
		p.Coeffs[i] = p.Coeffs[i].Sub(rhs.Coeffs[i])
	}
}

// ScalarMulAssign multiplies every coefficient by c.
func (p PowerPoly[S]) ScalarMulAssign(c S) {
	for i := range p.Coeffs {
		p.Coeffs[i] = p.Coeffs[i].Mul(c)
	}
}

// implicitTop returns the implicit coefficient on X^{phi(M)}, i.e. minus the
// sum of the explicit coefficients.
func (p PowerPoly[S]) implicitTop() S {
	acc := p.zero
	for _, c := range p.Coeffs {
		acc = acc.Add(c)
	}
	return acc.Neg()
}

// at returns the coefficient on X^i for i in [0, M), folding the implicit
// top coefficient (i == phi(M)) transparently.
func (p PowerPoly[S]) at(i int) S {
	if i == len(p.Coeffs) {
		return p.implicitTop()
	}
	return p.Coeffs[i]
}

// powerPolyWire is PowerPoly's wire format: the zero field is unexported
// (generics give no way to reconstruct a fresh S otherwise) so it must be
// carried explicitly, not just Coeffs, for AddAssignSlided's implicitTop to
// keep working after a transport.BiChannel round trip.
type powerPolyWire[S Scalar[S]] struct {
	Coeffs []S
	Zero   S
}

func (p PowerPoly[S]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(powerPolyWire[S]{Coeffs: p.Coeffs, Zero: p.zero})
	return buf.Bytes(), err
}

func (p *PowerPoly[S]) GobDecode(data []byte) error {
	var w powerPolyWire[S]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	p.Coeffs = w.Coeffs
	p.zero = w.Zero
	return nil
}

// AddAssignSlided computes p += sum_{i=0}^{length-1} rot_i(rhs), where
// rot_i is the additive homomorphism "multiply by X^i modulo Phi_M"
// expressed on coefficient indices (folding the implicit top coefficient
// exactly as spec.md §4.4 describes). Implemented in O(phi(M)) by a sliding
// window over the rotated coefficient indices rather than materializing
// each rotation.
//
// rot_i(rhs) has coefficient j equal to rhs.at(j - i mod M). Summing over
// i in [0, length) at fixed j is a window of length `length` over
// rhs.at(j), rhs.at(j-1), ..., taken cyclically mod M. We slide the window
// by one position per increasing j, adding the newly entered term and
// removing the one that fell out.
func (p PowerPoly[S]) AddAssignSlided(rhs PowerPoly[S], length int) {
	n := len(p.Coeffs)
	m := n + 1 // M = phi(M) + 1
	if length <= 0 {
		return
	}
	if length > m {
		length = m
	}

	// window(j) = sum_{i=0}^{length-1} rhs.at((j - i) mod m)
	window := p.zero
	for i := 0; i < length; i++ {
		idx := ((0-i)%m + m) % m
		window = window.Add(rhs.at(idx))
	}

	for j := 0; j < n; j++ {
		p.Coeffs[j] = p.Coeffs[j].Add(window)
		if j+1 < n {
			enter := rhs.at(((j + 1 - 0) % m + m) % m)
			leaveIdx := (((j + 1) - length) % m + m) % m
			leave := rhs.at(leaveIdx)
			window = window.Add(enter).Sub(leave)
		}
	}
}
