package zkpopk

import (
	"crypto/rand"

	"github.com/haslersn/multipars/internal/xerrors"
	"github.com/haslersn/multipars/she"
)

// Verifier holds one batch's fresh challenge, per spec.md §4.7, grounded
// on original_source/src/bgv/zkpopk/verifier.rs's Verifier.
type Verifier struct {
	ctx            *she.Context
	invFailProb    int
	numCiphertexts int
	numProofs      int
	challenge      Challenge
}

// NewVerifier draws a fresh 32-byte challenge for one proof session.
func NewVerifier(ctx *she.Context, invFailProb, numCiphertexts, sndSec int) (*Verifier, error) {
	m := ctx.Built.Set.CiphertextM
	numProofs := NumProofs(sndSec, m)
	var challenge Challenge
	if _, err := rand.Read(challenge[:]); err != nil {
		return nil, xerrors.NewProtocolError("zkpopk: drawing challenge", err)
	}
	return &Verifier{
		ctx:            ctx,
		invFailProb:    invFailProb,
		numCiphertexts: numCiphertexts,
		numProofs:      numProofs,
		challenge:      challenge,
	}, nil
}

// Challenge returns the 32-byte value to send to the prover.
func (v *Verifier) Challenge() Challenge { return v.challenge }

// Verify re-derives the slide exponents from the stored challenge, slides
// the proven output ciphertexts into the commitment, and checks that
// re-encrypting each response witness matches the corresponding slid
// commitment entry, per spec.md §4.7.
func (v *Verifier) Verify(pk *she.PublicKey, ciphertexts []she.PreCiphertext, commitment Commitment, response Response) bool {
	if len(commitment.Ciphertexts) != v.numProofs {
		return false
	}
	if len(response.Witnesses) != v.numProofs {
		return false
	}
	if len(ciphertexts) != v.numCiphertexts {
		return false
	}

	m := v.ctx.Built.Set.CiphertextM
	for _, witness := range response.Witnesses {
		if !checkBounds(witness, m, v.numCiphertexts, v.numProofs, v.invFailProb) {
			return false
		}
	}

	stream, err := newSlideStream(v.challenge)
	if err != nil {
		return false
	}

	accumulated := make([]she.PreCiphertext, len(commitment.Ciphertexts))
	for j, c := range commitment.Ciphertexts {
		acc := c.Clone()
		for _, output := range ciphertexts {
			chi := int(stream.uniform(m))
			acc.AddAssignSlided(output, chi)
		}
		accumulated[j] = acc
	}

	for i, witness := range response.Witnesses {
		recomputed := v.ctx.EncryptPrepared(pk, witness)
		if !recomputed.Equal(accumulated[i]) {
			return false
		}
	}
	return true
}
