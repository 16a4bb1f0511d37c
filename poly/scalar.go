// Package poly implements the two ring-element representations used by the
// BGV core: PowerPoly (coefficient/power basis) and CrtPoly (CRT/slot
// basis), their mutual conversion via an NTT (FourierContext) or a
// precomputed factor table (FactorsContext), and Tweaked Interpolation
// Packing. Both representations are generic over the underlying scalar
// type so the same code serves R_q (residue.PrimeResidue) and R_t
// (residue.NativeResidue) per spec.md §9's monomorphization note.
package poly

// Scalar is the arithmetic surface PowerPoly and CrtPoly require of their
// coefficient type. residue.PrimeResidue and residue.NativeResidue both
// satisfy it.
type Scalar[S any] interface {
	Add(S) S
	Sub(S) S
	Mul(S) S
	Neg() S
}
