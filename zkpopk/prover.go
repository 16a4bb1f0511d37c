package zkpopk

import (
	"math/big"

	"github.com/haslersn/multipars/internal/sampling"
	"github.com/haslersn/multipars/internal/xerrors"
	"github.com/haslersn/multipars/poly"
	"github.com/haslersn/multipars/residue"
	"github.com/haslersn/multipars/she"
)

// Prover holds one batch's worth of pseudo-input witnesses, generated at
// construction time per spec.md §4.7's Commit step, grounded on
// original_source/src/bgv/zkpopk/prover.rs's Prover.
type Prover struct {
	ctx            *she.Context
	invFailProb    int
	numCiphertexts int
	numProofs      int
	pseudoInputs   []she.PreparedPlaintext
}

// NewProver draws numProofs fresh pseudo-input witnesses with wider bounds
// (noise ~21x, v ~1x, e1 ~20x the per-repetition bound B), per spec.md
// §4.7.
func NewProver(ctx *she.Context, prng *sampling.PRNG, invFailProb, numCiphertexts, sndSec int) *Prover {
	m := ctx.Built.Set.CiphertextM
	numProofs := NumProofs(sndSec, m)
	pseudoInputs := make([]she.PreparedPlaintext, numProofs)
	for i := range pseudoInputs {
		pseudoInputs[i] = makePseudoInput(ctx, prng, m, invFailProb, numCiphertexts, numProofs)
	}
	return &Prover{
		ctx:            ctx,
		invFailProb:    invFailProb,
		numCiphertexts: numCiphertexts,
		numProofs:      numProofs,
		pseudoInputs:   pseudoInputs,
	}
}

// Commit encrypts every pseudo-input under pk, producing the commitment
// ciphertexts sent to the verifier.
func (p *Prover) Commit(pk *she.PublicKey) Commitment {
	ciphertexts := make([]she.PreCiphertext, len(p.pseudoInputs))
	for i, pi := range p.pseudoInputs {
		ciphertexts[i] = p.ctx.EncryptPrepared(pk, pi)
	}
	return Commitment{Ciphertexts: ciphertexts}
}

// Respond slides each pseudo-input by every proven input's challenge-
// derived exponent and checks bounds, aborting (xerrors.Aborted) if any
// accumulator overflows its bound, per spec.md §4.7.
func (p *Prover) Respond(inputs []she.PreparedPlaintext, challenge Challenge) (Response, error) {
	if len(inputs) != p.numCiphertexts {
		return Response{}, xerrors.NewProtocolError("zkpopk: input count mismatch", nil)
	}

	stream, err := newSlideStream(challenge)
	if err != nil {
		return Response{}, xerrors.NewProtocolError("zkpopk: deriving slide stream", err)
	}

	m := p.ctx.Built.Set.CiphertextM
	accumulated := make([]she.PreparedPlaintext, len(p.pseudoInputs))
	for j, pi := range p.pseudoInputs {
		acc := pi.Clone()
		for _, input := range inputs {
			chi := int(stream.uniform(m))
			acc.AddAssignSlided(input, chi)
		}
		if !checkBounds(acc, m, p.numCiphertexts, p.numProofs, p.invFailProb) {
			return Response{}, xerrors.NewAborted("zkpopk: response exceeded its bound, retry with a fresh challenge")
		}
		accumulated[j] = acc
	}
	return Response{Witnesses: accumulated}, nil
}

// makePseudoInput draws a PreparedPlaintext witness with bounds widened by
// spec.md §4.7 (21x for noised_plaintext, 1x for v, 20x for e1, all scaled
// by B), per original_source's make_pseudo_input.
func makePseudoInput(ctx *she.Context, prng *sampling.PRNG, m uint64, invFailProb, numCiphertexts, numProofs int) she.PreparedPlaintext {
	b := bound(m, numCiphertexts, numProofs, invFailProb)
	q := ctx.Built.Set.CiphertextQ
	qField := ctx.Built.CiphertextField
	plaintextBits := ctx.Built.Set.PlaintextBits

	noisedBound := new(big.Int).Mul(b, big.NewInt(21))
	e1Bound := new(big.Int).Mul(b, big.NewInt(20))
	vBound := b

	noised := poly.NewPowerPoly[residue.PrimeResidue](ctx.N, residue.FromInt64(qField, 0))
	e1 := poly.NewPowerPoly[residue.PrimeResidue](ctx.N, residue.FromInt64(qField, 0))
	v := poly.NewPowerPoly[residue.PrimeResidue](ctx.N, residue.FromInt64(qField, 0))

	tPow := new(big.Int).Lsh(big.NewInt(1), plaintextBits)

	for i := 0; i < ctx.N; i++ {
		sample := uniformSigned(prng, noisedBound)
		shifted := new(big.Int).Mul(sample, tPow)
		lowBits := prng.UniformBigInt(tPow)
		value := new(big.Int).Add(shifted, lowBits)
		value.Mod(value, q)
		noised.Coeffs[i] = residue.FromUint(qField, value)

		e1Sample := uniformSigned(prng, e1Bound)
		e1.Coeffs[i] = residue.FromUint(qField, new(big.Int).Mod(e1Sample, q))

		vSample := uniformSigned(prng, vBound)
		v.Coeffs[i] = residue.FromUint(qField, new(big.Int).Mod(vSample, q))
	}

	return she.PreparedPlaintext{NoisedPlaintext: noised, E1: e1, V: v}
}

// uniformSigned draws a uniform integer in [-bound, bound).
func uniformSigned(prng *sampling.PRNG, bound *big.Int) *big.Int {
	width := new(big.Int).Lsh(bound, 1)
	r := prng.UniformBigInt(width)
	return r.Sub(r, bound)
}
