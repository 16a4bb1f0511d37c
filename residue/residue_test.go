package residue_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/residue"
)

func TestPrimeResidueRoundTrip(t *testing.T) {
	q, _ := new(big.Int).SetString("170141183460469231731687303715884105773", 10) // a large prime
	field := residue.NewPrimeField(q)

	a := residue.FromInt64(field, 12345)
	b := residue.FromInt64(field, 67890)

	sum := a.Add(b)
	require.Equal(t, big.NewInt(12345+67890), sum.Retrieve())

	prod := a.Mul(b)
	want := new(big.Int).Mod(big.NewInt(12345*67890), q)
	require.Equal(t, want, prod.Retrieve())

	inv, ok := a.Invert()
	require.True(t, ok)
	require.True(t, a.Mul(inv).Equal(residue.FromInt64(field, 1)))
}

func TestNativeResidueWrapping(t *testing.T) {
	field := residue.NewNativeField(32)
	a := residue.NativeFromUint(field, big.NewInt(1<<31))
	b := residue.NativeFromUint(field, big.NewInt(1<<31))

	sum := a.Add(b) // wraps to 0 mod 2^32
	require.Equal(t, big.NewInt(0), sum.Retrieve())

	neg := residue.NativeFromInt64(field, -1)
	require.Equal(t, new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 32), big.NewInt(1)), neg.Retrieve())
}
