package poly

import (
	"encoding/json"
	"io/fs"

	"github.com/haslersn/multipars/internal/xerrors"
	"github.com/haslersn/multipars/residue"
)

// factorFile is the on-disk shape of params/phi<M>_mod_t<b>.json: factor
// coefficients (FACTOR_COUNT monic polynomials of degree FACTOR_DEGREE,
// flattened, leading coefficient included and always 1) and one dual-basis
// scalar per slot, per spec.md §6.
type factorFile struct {
	Factors           []uint64 `json:"factors"`
	BasisCoefficients []uint64 `json:"basis_coefficients"`
}

// FactorsContext caches the CRT<->power conversion data for a power-of-two
// plaintext modulus t = 2^b, where Phi_M factors over Z/t into FactorCount
// monic polynomials of degree FactorDegree (FactorCount*FactorDegree =
// phi(M)). Tables are precomputed offline (finding them is itself a
// Hensel-lifting computation over the 2-adic numbers) and loaded from JSON
// keyed by (M, t), per spec.md §6.
type FactorsContext struct {
	field        *residue.NativeField
	factorCount  int
	factorDegree int
	// factors[j] holds FactorDegree+1 coefficients (ascending degree,
	// leading coefficient at index FactorDegree, always 1).
	factors [][]residue.NativeResidue
	// basisCoefficients[j] is the scalar dual-basis element for slot j.
	basisCoefficients []residue.NativeResidue
}

// LoadFactorsContext reads params/phi<m>_mod_t<bits>.json from fsys (an
// embed.FS in production) and builds the context.
func LoadFactorsContext(fsys fs.FS, path string, field *residue.NativeField, factorCount, factorDegree int) (*FactorsContext, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, xerrors.NewConfigError("reading factor file "+path, err)
	}
	var raw factorFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, xerrors.NewConfigError("parsing factor file "+path, err)
	}
	if len(raw.Factors) != factorCount*(factorDegree+1) {
		return nil, xerrors.NewConfigError("factor file "+path+" has wrong factor table length", nil)
	}
	if len(raw.BasisCoefficients) != factorCount {
		return nil, xerrors.NewConfigError("factor file "+path+" has wrong basis table length", nil)
	}

	factors := make([][]residue.NativeResidue, factorCount)
	for j := 0; j < factorCount; j++ {
		row := make([]residue.NativeResidue, factorDegree+1)
		for k := 0; k <= factorDegree; k++ {
			row[k] = residue.NativeFromUint(field, bigFromUint64(raw.Factors[j*(factorDegree+1)+k]))
		}
		factors[j] = row
	}
	basis := make([]residue.NativeResidue, factorCount)
	for j := 0; j < factorCount; j++ {
		basis[j] = residue.NativeFromUint(field, bigFromUint64(raw.BasisCoefficients[j]))
	}

	return &FactorsContext{
		field:             field,
		factorCount:       factorCount,
		factorDegree:      factorDegree,
		factors:           factors,
		basisCoefficients: basis,
	}, nil
}

// FactorCount/FactorDegree expose the context's shape.
func (c *FactorsContext) FactorCount() int  { return c.factorCount }
func (c *FactorsContext) FactorDegree() int { return c.factorDegree }
func (c *FactorsContext) Field() *residue.NativeField { return c.field }

// FromPower reduces p (a phi(M)-coefficient power-basis polynomial) modulo
// each of the FactorCount monic factors via ordinary polynomial long
// division (well defined since every factor is monic), producing the
// flattened CRT-basis coefficient vector.
func (c *FactorsContext) FromPower(p PowerPoly[residue.NativeResidue]) CrtPoly[residue.NativeResidue] {
	zero := residue.NativeZero(c.field)
	out := NewCrtPoly(c.factorCount*c.factorDegree, zero)

	for j := 0; j < c.factorCount; j++ {
		remainder := make([]residue.NativeResidue, len(p.Coeffs))
		copy(remainder, p.Coeffs)
		factor := c.factors[j]

		for deg := len(remainder) - 1; deg >= c.factorDegree; deg-- {
			leading := remainder[deg]
			// factor is monic: subtract leading*factor, shifted so its own
			// leading term cancels remainder[deg].
			for k := 0; k <= c.factorDegree; k++ {
				pos := deg - c.factorDegree + k
				remainder[pos] = remainder[pos].Sub(leading.Mul(factor[k]))
			}
		}

		copy(out.Slots[j*c.factorDegree:(j+1)*c.factorDegree], remainder[:c.factorDegree])
	}
	return out
}

// ToPower reconstructs a power-basis polynomial from CRT-basis slots by
// scaling each slot's coefficients by its dual-basis element and summing
// into the global coefficient vector at the position given by the slot
// generator's action (basis exponents double with each successive slot, a
// consequence of this scheme's restriction to prime cyclotomic index M),
// per spec.md §4.3.
func (c *FactorsContext) ToPower(crt CrtPoly[residue.NativeResidue]) PowerPoly[residue.NativeResidue] {
	zero := residue.NativeZero(c.field)
	n := c.factorCount * c.factorDegree
	result := NewPowerPoly(n, zero)

	basePos := 1 % n // slot exponents double with each index
	for j := 0; j < c.factorCount; j++ {
		scale := c.basisCoefficients[j]
		for k := 0; k < c.factorDegree; k++ {
			pos := (basePos + k) % n
			contribution := crt.Slots[j*c.factorDegree+k].Mul(scale)
			result.Coeffs[pos] = result.Coeffs[pos].Add(contribution)
		}
		basePos = (basePos * 2) % n
	}
	return result
}

// Mul multiplies two CRT-basis polynomials slot-by-slot using degree-
// FactorDegree schoolbook multiplication reduced modulo the slot's factor,
// per spec.md §4.4.
func (c *FactorsContext) Mul(a, b CrtPoly[residue.NativeResidue]) CrtPoly[residue.NativeResidue] {
	zero := residue.NativeZero(c.field)
	out := NewCrtPoly(c.factorCount*c.factorDegree, zero)

	scratch := make([]residue.NativeResidue, 2*c.factorDegree-1)
	for j := 0; j < c.factorCount; j++ {
		for i := range scratch {
			scratch[i] = zero
		}
		aSlot := a.Slots[j*c.factorDegree : (j+1)*c.factorDegree]
		bSlot := b.Slots[j*c.factorDegree : (j+1)*c.factorDegree]
		for i, av := range aSlot {
			for k, bv := range bSlot {
				scratch[i+k] = scratch[i+k].Add(av.Mul(bv))
			}
		}
		factor := c.factors[j]
		for deg := len(scratch) - 1; deg >= c.factorDegree; deg-- {
			leading := scratch[deg]
			for k := 0; k <= c.factorDegree; k++ {
				scratch[deg-c.factorDegree+k] = scratch[deg-c.factorDegree+k].Sub(leading.Mul(factor[k]))
			}
		}
		copy(out.Slots[j*c.factorDegree:(j+1)*c.factorDegree], scratch[:c.factorDegree])
	}
	return out
}
