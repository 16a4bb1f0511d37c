package poly

import (
	"math/big"

	"github.com/haslersn/multipars/residue"
)

// TIPContext packs/unpacks arrays of Z/2^k values into the slots of a
// FactorsContext plaintext polynomial using Lagrange interpolation scaled
// by 2^delta, per spec.md §4.8.
type TIPContext struct {
	factors *FactorsContext
	delta   uint
	// capacityPerSlot = floor((FactorDegree+1)/2).
	capacityPerSlot int
	// lagrange[j] holds the degree-(FactorDegree-1) coefficient vector of
	// the scaled Lagrange basis polynomial L_j, already multiplied by
	// 2^delta / prod_{i!=j}(j-i).
	lagrange [][]residue.NativeResidue
}

// NewTIPContext builds the packing context. delta is the scaling exponent
// Δ from spec.md §4.8; factors.FactorDegree() must be >= 2.
func NewTIPContext(factors *FactorsContext, delta uint) *TIPContext {
	deg := factors.FactorDegree()
	m := (deg + 1) / 2
	field := factors.Field()
	zero := residue.NativeZero(field)

	lagrange := make([][]residue.NativeResidue, m)
	for j := 0; j < m; j++ {
		// Expand prod_{i != j, i in [0,m)} (X - i) into coefficients.
		coeffs := []residue.NativeResidue{residue.NativeFromInt64(field, 1)}
		denom := big.NewInt(1)
		for i := 0; i < m; i++ {
			if i == j {
				continue
			}
			coeffs = multiplyLinear(field, coeffs, int64(i))
			denom.Mul(denom, big.NewInt(int64(j-i)))
		}

		scale := scaleFactor(field, denom, delta)
		row := make([]residue.NativeResidue, deg)
		for k := range row {
			row[k] = zero
		}
		for k, c := range coeffs {
			row[k] = c.Mul(scale)
		}
		lagrange[j] = row
	}

	return &TIPContext{factors: factors, delta: delta, capacityPerSlot: m, lagrange: lagrange}
}

// CapacityPerSlot and Capacity report the packing density per spec.md §4.8.
func (c *TIPContext) CapacityPerSlot() int { return c.capacityPerSlot }
func (c *TIPContext) Capacity() int        { return c.capacityPerSlot * c.factors.FactorCount() }

// Pack encodes v (length <= Capacity()) into a CRT-basis plaintext
// polynomial, scaled by 2^delta.
func (c *TIPContext) Pack(v []residue.NativeResidue) CrtPoly[residue.NativeResidue] {
	field := c.factors.Field()
	zero := residue.NativeZero(field)
	deg := c.factors.FactorDegree()
	out := NewCrtPoly(c.factors.FactorCount()*deg, zero)

	for idx, val := range v {
		slot := idx / c.capacityPerSlot
		j := idx % c.capacityPerSlot
		row := c.lagrange[j]
		base := slot * deg
		for k, coeff := range row {
			out.Slots[base+k] = out.Slots[base+k].Add(coeff.Mul(val))
		}
	}
	return out
}

// PackMask packs v and left-shifts every coefficient by delta so it may be
// added to a product without disturbing the interpolation points.
func (c *TIPContext) PackMask(v []residue.NativeResidue) CrtPoly[residue.NativeResidue] {
	packed := c.Pack(v)
	shiftScale := residue.NativeFromUint(c.factors.Field(), new(big.Int).Lsh(big.NewInt(1), c.delta))
	packed.ScalarMulAssign(shiftScale)
	return packed
}

// PackDiagonal places x*2^delta in every slot's constant term.
func (c *TIPContext) PackDiagonal(x residue.NativeResidue) CrtPoly[residue.NativeResidue] {
	field := c.factors.Field()
	zero := residue.NativeZero(field)
	deg := c.factors.FactorDegree()
	out := NewCrtPoly(c.factors.FactorCount()*deg, zero)
	shift := residue.NativeFromUint(field, new(big.Int).Lsh(big.NewInt(1), c.delta))
	scaled := x.Mul(shift)
	for slot := 0; slot < c.factors.FactorCount(); slot++ {
		out.Slots[slot*deg] = scaled
	}
	return out
}

// Unpack evaluates each slot's polynomial at X = 0..capacityPerSlot-1 and
// right-shifts by 2*delta, undoing the product of two Pack-scaled factors.
func (c *TIPContext) Unpack(p CrtPoly[residue.NativeResidue]) []residue.NativeResidue {
	factorDeg := c.factors.FactorDegree()
	out := make([]residue.NativeResidue, c.Capacity())
	for slot := 0; slot < c.factors.FactorCount(); slot++ {
		coeffs := p.Slots[slot*factorDeg : (slot+1)*factorDeg]
		for j := 0; j < c.capacityPerSlot; j++ {
			val := hornerEvalNative(coeffs, int64(j))
			out[slot*c.capacityPerSlot+j] = val.RightShift(2 * c.delta)
		}
	}
	return out
}

func hornerEvalNative(coeffs []residue.NativeResidue, x int64) residue.NativeResidue {
	field := coeffs[0].Field()
	xr := residue.NativeFromInt64(field, x)
	acc := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		acc = acc.Mul(xr).Add(coeffs[i])
	}
	return acc
}

// multiplyLinear multiplies the polynomial coeffs (ascending degree) by
// (X - root).
func multiplyLinear(field *residue.NativeField, coeffs []residue.NativeResidue, root int64) []residue.NativeResidue {
	zero := residue.NativeZero(field)
	out := make([]residue.NativeResidue, len(coeffs)+1)
	for i := range out {
		out[i] = zero
	}
	rootR := residue.NativeFromInt64(field, root)
	for i, c := range coeffs {
		out[i+1] = out[i+1].Add(c)
		out[i] = out[i].Sub(c.Mul(rootR))
	}
	return out
}

// scaleFactor computes 2^delta / denom mod 2^b, by extracting denom's
// 2-adic valuation v and computing 2^(delta-v) * oddPart^-1, relying on
// residue.NativeResidue.Invert for the odd part (always invertible).
func scaleFactor(field *residue.NativeField, denom *big.Int, delta uint) residue.NativeResidue {
	d := new(big.Int).Set(denom)
	neg := d.Sign() < 0
	if neg {
		d.Neg(d)
	}
	v := uint(0)
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		v++
	}
	oddPart := residue.NativeFromUint(field, d)
	inv, _ := oddPart.Invert()
	shiftAmount := delta - v
	scale := residue.NativeFromUint(field, new(big.Int).Lsh(big.NewInt(1), shiftAmount))
	result := inv.Mul(scale)
	if neg {
		result = result.Neg()
	}
	return result
}
