package zkpopk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/internal/sampling"
	"github.com/haslersn/multipars/params"
	"github.com/haslersn/multipars/poly"
	"github.com/haslersn/multipars/residue"
	"github.com/haslersn/multipars/she"
	"github.com/haslersn/multipars/zkpopk"
)

func TestProveAndVerify(t *testing.T) {
	const invFailProb = 1 << 10
	const numCiphertexts = 2
	const sndSec = 16

	set, ok := params.ByFlags(32, 32, true)
	require.True(t, ok)
	built, err := params.Build(set)
	require.NoError(t, err)
	ctx := she.NewContext(built)

	prng, err := sampling.NewKeyedPRNG([]byte("zkpopk-test-key-zkpopk-test-key"))
	require.NoError(t, err)

	sk := ctx.GenSecretKey(prng)
	pk := ctx.GenPublicKey(prng, sk)

	ciphertexts := make([]she.PreCiphertext, numCiphertexts)
	inputs := make([]she.PreparedPlaintext, numCiphertexts)
	field := ctx.Built.PlaintextField
	for i := range ciphertexts {
		m := poly.NewPowerPoly[residue.NativeResidue](ctx.N, residue.NativeZero(field))
		for j := range m.Coeffs {
			m.Coeffs[j] = residue.NativeFromInt64(field, prng.CenteredBinomial(4))
		}
		_, pre, prepared := ctx.Encrypt(prng, pk, m)
		ciphertexts[i] = pre
		inputs[i] = prepared
	}

	prover := zkpopk.NewProver(ctx, prng, invFailProb, numCiphertexts, sndSec)
	commitment := prover.Commit(pk)

	verifier, err := zkpopk.NewVerifier(ctx, invFailProb, numCiphertexts, sndSec)
	require.NoError(t, err)

	response, err := prover.Respond(inputs, verifier.Challenge())
	require.NoError(t, err)

	require.True(t, verifier.Verify(pk, ciphertexts, commitment, response))
}

func TestVerifyRejectsTamperedResponse(t *testing.T) {
	const invFailProb = 1 << 10
	const numCiphertexts = 2
	const sndSec = 16

	set, ok := params.ByFlags(32, 32, true)
	require.True(t, ok)
	built, err := params.Build(set)
	require.NoError(t, err)
	ctx := she.NewContext(built)

	prng, err := sampling.NewKeyedPRNG([]byte("zkpopk-test-key-zkpopk-test-key"))
	require.NoError(t, err)

	sk := ctx.GenSecretKey(prng)
	pk := ctx.GenPublicKey(prng, sk)

	ciphertexts := make([]she.PreCiphertext, numCiphertexts)
	inputs := make([]she.PreparedPlaintext, numCiphertexts)
	field := ctx.Built.PlaintextField
	for i := range ciphertexts {
		m := poly.NewPowerPoly[residue.NativeResidue](ctx.N, residue.NativeZero(field))
		for j := range m.Coeffs {
			m.Coeffs[j] = residue.NativeFromInt64(field, prng.CenteredBinomial(4))
		}
		_, pre, prepared := ctx.Encrypt(prng, pk, m)
		ciphertexts[i] = pre
		inputs[i] = prepared
	}

	prover := zkpopk.NewProver(ctx, prng, invFailProb, numCiphertexts, sndSec)
	commitment := prover.Commit(pk)

	verifier, err := zkpopk.NewVerifier(ctx, invFailProb, numCiphertexts, sndSec)
	require.NoError(t, err)

	response, err := prover.Respond(inputs, verifier.Challenge())
	require.NoError(t, err)

	qField := ctx.Built.CiphertextField
	response.Witnesses[0].V.Coeffs[0] = response.Witnesses[0].V.Coeffs[0].Add(residue.FromInt64(qField, 1))

	require.False(t, verifier.Verify(pk, ciphertexts, commitment, response))
}
