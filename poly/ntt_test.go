package poly_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/poly"
	"github.com/haslersn/multipars/residue"
)

func TestFFTRoundTrip(t *testing.T) {
	// 257 is prime; 2 has order 16 mod 257 since 2^16 = 65536 = 255*257+1.
	q := big.NewInt(257)
	field := residue.NewPrimeField(q)
	n := 16
	root := residue.FromInt64(field, 2)

	input := make([]residue.PrimeResidue, n)
	for i := range input {
		input[i] = residue.FromInt64(field, int64(i+1))
	}

	fwd := poly.RootPowersTable(root, n)
	transformed := poly.FFT(fwd, false, input)

	invRoot, ok := root.Invert()
	require.True(t, ok)
	invTable := poly.RootPowersTable(invRoot, n)
	back := poly.FFT(invTable, false, transformed)

	nInv, ok := residue.FromInt64(field, int64(n)).Invert()
	require.True(t, ok)
	for i := range back {
		back[i] = back[i].Mul(nInv)
		require.True(t, back[i].Equal(input[i]), "index %d", i)
	}
}
