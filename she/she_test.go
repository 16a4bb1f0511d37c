package she_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/internal/sampling"
	"github.com/haslersn/multipars/params"
	"github.com/haslersn/multipars/poly"
	"github.com/haslersn/multipars/residue"
	"github.com/haslersn/multipars/she"
)

func newToyContext(t *testing.T) (*she.Context, *sampling.PRNG) {
	t.Helper()
	set, ok := params.ByFlags(32, 32, true)
	require.True(t, ok)
	built, err := params.Build(set)
	require.NoError(t, err)
	ctx := she.NewContext(built)
	prng, err := sampling.NewKeyedPRNG([]byte("she-test-key-she-test-key-32byte"))
	require.NoError(t, err)
	return ctx, prng
}

func randomPlaintext(ctx *she.Context, prng *sampling.PRNG) poly.PowerPoly[residue.NativeResidue] {
	field := ctx.Built.PlaintextField
	out := poly.NewPowerPoly[residue.NativeResidue](ctx.N, residue.NativeZero(field))
	for i := range out.Coeffs {
		out.Coeffs[i] = residue.NativeFromInt64(field, prng.CenteredBinomial(4))
	}
	return out
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	ctx, prng := newToyContext(t)
	sk := ctx.GenSecretKey(prng)
	pk := ctx.GenPublicKey(prng, sk)

	m := randomPlaintext(ctx, prng)
	ct, _, _ := ctx.Encrypt(prng, pk, m)
	got := ctx.Decrypt(sk, ct)

	for i := range m.Coeffs {
		require.True(t, m.Coeffs[i].Equal(got.Coeffs[i]), "coeff %d", i)
	}
}

// constantPlaintext returns the degree-0 polynomial equal to the scalar v;
// multiplying any ring element by a constant polynomial is, regardless of
// the reduction polynomial, exactly per-coefficient scalar multiplication,
// which lets this test check MulPlain's ring convolution against a simple
// expected value without reimplementing the convolution itself.
func constantPlaintext(ctx *she.Context, v int64) poly.PowerPoly[residue.NativeResidue] {
	field := ctx.Built.PlaintextField
	out := poly.NewPowerPoly[residue.NativeResidue](ctx.N, residue.NativeZero(field))
	out.Coeffs[0] = residue.NativeFromInt64(field, v)
	return out
}

func TestHomomorphicMulPlain(t *testing.T) {
	ctx, prng := newToyContext(t)
	sk := ctx.GenSecretKey(prng)
	pk := ctx.GenPublicKey(prng, sk)

	x := randomPlaintext(ctx, prng)
	y := constantPlaintext(ctx, 5)

	ct, _, _ := ctx.Encrypt(prng, pk, x)
	product := ctx.MulPlain(ct, y)
	got := ctx.Decrypt(sk, product)

	field := ctx.Built.PlaintextField
	scalar := residue.NativeFromInt64(field, 5)
	expected := poly.NewPowerPoly[residue.NativeResidue](ctx.N, residue.NativeZero(field))
	for i := range expected.Coeffs {
		expected.Coeffs[i] = x.Coeffs[i].Mul(scalar)
	}

	for i := range expected.Coeffs {
		require.True(t, expected.Coeffs[i].Equal(got.Coeffs[i]), "coeff %d", i)
	}
}

func TestMaskAndDrown(t *testing.T) {
	ctx, prng := newToyContext(t)
	sk := ctx.GenSecretKey(prng)
	pk := ctx.GenPublicKey(prng, sk)

	x := randomPlaintext(ctx, prng)
	y := constantPlaintext(ctx, 7)
	mask := randomPlaintext(ctx, prng)

	ct, _, _ := ctx.Encrypt(prng, pk, x)
	product := ctx.MulPlain(ct, y)

	maskCt, _, _ := ctx.EncryptAndDrown(prng, pk, mask, ctx.MaxDrownBits())
	masked := ctx.SubCiphertexts(product, maskCt)
	got := ctx.Decrypt(sk, masked)

	field := ctx.Built.PlaintextField
	scalar := residue.NativeFromInt64(field, 7)
	expected := poly.NewPowerPoly[residue.NativeResidue](ctx.N, residue.NativeZero(field))
	for i := range expected.Coeffs {
		expected.Coeffs[i] = x.Coeffs[i].Mul(scalar).Sub(mask.Coeffs[i])
	}

	for i := range expected.Coeffs {
		require.True(t, expected.Coeffs[i].Equal(got.Coeffs[i]), "coeff %d", i)
	}
}
