package poly

import (
	"bytes"
	"encoding/gob"
)

// CrtPoly is a ring element in CRT/slot basis: phi(M) independent slot
// values, one per factor of Phi_M over the working modulus. For the
// Fourier strategy each slot is a single scalar in Z/q (Phi_M splits into
// linear factors since q is chosen so M | q-1). For the Factors strategy
// each slot is itself a length-FACTOR_DEGREE vector of Z/t coefficients
// (Phi_M splits into FACTOR_COUNT higher-degree factors); CrtPoly stores
// the flattened FACTOR_COUNT*FACTOR_DEGREE coefficients regardless of
// strategy. Slot-wise products are MulAssignPointwise (Fourier strategy)
// and FactorsContext.Mul (Factors strategy).
type CrtPoly[S Scalar[S]] struct {
	Slots []S
	zero  S
}

// NewCrtPoly returns the all-zero CRT-basis polynomial with n slot
// coefficients.
func NewCrtPoly[S Scalar[S]](n int, zero S) CrtPoly[S] {
	slots := make([]S, n)
	for i := range slots {
		slots[i] = zero
	}
	return CrtPoly[S]{Slots: slots, zero: zero}
}

// crtPolyWire is CrtPoly's wire format; see powerPolyWire's doc comment.
type crtPolyWire[S Scalar[S]] struct {
	Slots []S
	Zero  S
}

func (p CrtPoly[S]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(crtPolyWire[S]{Slots: p.Slots, Zero: p.zero})
	return buf.Bytes(), err
}

func (p *CrtPoly[S]) GobDecode(data []byte) error {
	var w crtPolyWire[S]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	p.Slots = w.Slots
	p.zero = w.Zero
	return nil
}

func (p CrtPoly[S]) Clone() CrtPoly[S] {
	out := make([]S, len(p.Slots))
	copy(out, p.Slots)
	return CrtPoly[S]{Slots: out, zero: p.zero}
}

func (p CrtPoly[S]) AddAssign(rhs CrtPoly[S]) {
	for i := range p.Slots {
		p.Slots[i] = p.Slots[i].Add(rhs.Slots[i])
	}
}

func (p CrtPoly[S]) SubAssign(rhs CrtPoly[S]) {
	for i := range p.Slots {
		p.Slots[i] = p.Slots[i].Sub(rhs.Slots[i])
	}
}

// AddConstAssign adds c to every slot (used for a plaintext-constant
// addition that must land identically in every slot, i.e. a degree-0
// cleartext).
func (p CrtPoly[S]) AddConstAssign(c S) {
	for i := range p.Slots {
		p.Slots[i] = p.Slots[i].Add(c)
	}
}

func (p CrtPoly[S]) ScalarMulAssign(c S) {
	for i := range p.Slots {
		p.Slots[i] = p.Slots[i].Mul(c)
	}
}

// MulAssignPointwise multiplies slot-by-slot; correct for the Fourier
// strategy where each slot is a plain scalar in Z/q. The Factors strategy
// instead uses FactorsContext.Mul (per-slot polynomial multiplication
// modulo the slot's factor).
func (p CrtPoly[S]) MulAssignPointwise(rhs CrtPoly[S]) {
	for i := range p.Slots {
		p.Slots[i] = p.Slots[i].Mul(rhs.Slots[i])
	}
}
