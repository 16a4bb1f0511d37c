package residue

import (
	"bytes"
	"encoding/gob"
	"math/big"
)

// NativeField is the shared immutable state for a fixed power-of-two
// modulus 2^bits: the bit width and the corresponding mask.
type NativeField struct {
	bits uint
	mask *big.Int
}

// NewNativeField builds the shared state for modulus 2^bits. bits may
// exceed a single machine word (e.g. 256 for the k=128,s=64 wide share
// ring Z/2^{k+2s}); the underlying representation is math/big so arbitrary
// widths are supported uniformly, standing in for the original's
// wider-machine-word integer.
func NewNativeField(bits uint) *NativeField {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
	return &NativeField{bits: bits, mask: mask}
}

// Bits returns the modulus's bit width b.
func (f *NativeField) Bits() uint { return f.bits }

// NativeResidue is an element of Z/2^b, stored as the low b bits of an
// arbitrary-width integer; +, -, * are the wrapping arithmetic of that
// integer, i.e. masked to b bits after every operation.
type NativeResidue struct {
	field *NativeField
	v     *big.Int // always in [0, 2^bits)
}

// NativeZero returns the additive identity.
func NativeZero(field *NativeField) NativeResidue {
	return NativeResidue{field: field, v: big.NewInt(0)}
}

// NativeFromUint masks v into the low bits of field.
func NativeFromUint(field *NativeField, v *big.Int) NativeResidue {
	masked := new(big.Int).And(v, field.mask)
	return NativeResidue{field: field, v: masked}
}

// NativeFromInt64 masks a signed integer (two's complement) into field.
func NativeFromInt64(field *NativeField, v int64) NativeResidue {
	bv := big.NewInt(v)
	if bv.Sign() < 0 {
		shift := new(big.Int).Lsh(big.NewInt(1), field.bits+8)
		bv.Add(bv, shift)
	}
	return NativeFromUint(field, bv)
}

// Retrieve returns the value as a non-negative integer in [0, 2^bits).
func (r NativeResidue) Retrieve() *big.Int { return new(big.Int).Set(r.v) }

// RetrieveSigned interprets the residue as a signed integer in
// [-2^{bits-1}, 2^{bits-1}), used when decrypting noise coefficients.
func (r NativeResidue) RetrieveSigned() *big.Int {
	half := new(big.Int).Lsh(big.NewInt(1), r.field.bits-1)
	if r.v.Cmp(half) >= 0 {
		full := new(big.Int).Lsh(big.NewInt(1), r.field.bits)
		return new(big.Int).Sub(r.v, full)
	}
	return new(big.Int).Set(r.v)
}

// Field returns the shared field.
func (r NativeResidue) Field() *NativeField { return r.field }

func (r NativeResidue) Add(other NativeResidue) NativeResidue {
	sum := new(big.Int).Add(r.v, other.v)
	sum.And(sum, r.field.mask)
	return NativeResidue{field: r.field, v: sum}
}

func (r NativeResidue) Sub(other NativeResidue) NativeResidue {
	diff := new(big.Int).Sub(r.v, other.v)
	diff.And(diff, r.field.mask)
	return NativeResidue{field: r.field, v: diff}
}

func (r NativeResidue) Neg() NativeResidue {
	return NativeZero(r.field).Sub(r)
}

func (r NativeResidue) Mul(other NativeResidue) NativeResidue {
	prod := new(big.Int).Mul(r.v, other.v)
	prod.And(prod, r.field.mask)
	return NativeResidue{field: r.field, v: prod}
}

// RightShift returns r >> n, used by the truncer to drop the low s bits of
// a wide share.
func (r NativeResidue) RightShift(n uint) NativeResidue {
	shifted := new(big.Int).Rsh(r.v, n)
	return NativeResidue{field: r.field, v: shifted}
}

// Mod2ToThe returns r reduced mod 2^n as its own NativeResidue over a field
// of width n (used to read off the low s bits of a wide share).
func (r NativeResidue) Mod2ToThe(n uint) NativeResidue {
	field := NewNativeField(n)
	return NativeFromUint(field, r.v)
}

// Invert returns an inverse candidate and true unconditionally: as in the
// original implementation (bgv/generic_uint.rs), NativeResidue.Invert never
// reports failure. Callers must not invert an even element; the candidate
// returned for an even element is meaningless. See DESIGN.md, Open Question
// decision (ii).
func (r NativeResidue) Invert() (NativeResidue, bool) {
	inv := new(big.Int).ModInverse(r.v, new(big.Int).Lsh(big.NewInt(1), r.field.bits))
	if inv == nil {
		inv = big.NewInt(0)
	}
	return NativeResidue{field: r.field, v: inv}, true
}

func (r NativeResidue) Equal(other NativeResidue) bool {
	return r.v.Cmp(other.v) == 0
}

// Widen re-interprets r (taken as an unsigned value) in a wider field,
// used when lifting a narrow residue into the wide share ring.
func (r NativeResidue) Widen(wide *NativeField) NativeResidue {
	return NativeFromUint(wide, r.v)
}

// GobEncode carries (bits, value) so a NativeResidue is self-describing
// over the wire, for the same reason as PrimeResidue.GobEncode.
func (r NativeResidue) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	var bits uint64
	v := big.NewInt(0)
	if r.field != nil {
		bits = uint64(r.field.bits)
		v = r.v
	}
	if err := enc.Encode(bits); err != nil {
		return nil, err
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode reconstructs a fresh NativeField from the encoded bit width.
func (r *NativeResidue) GobDecode(data []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(data))
	var bits uint64
	var v big.Int
	if err := dec.Decode(&bits); err != nil {
		return err
	}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if bits == 0 {
		*r = NativeResidue{}
		return nil
	}
	*r = NativeFromUint(NewNativeField(uint(bits)), &v)
	return nil
}
