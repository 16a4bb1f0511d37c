package lowgear_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/lowgear"
	"github.com/haslersn/multipars/residue"
)

func TestShareArithmetic(t *testing.T) {
	field := residue.NewNativeField(64)

	a := lowgear.NewShare(residue.NativeFromInt64(field, 5), residue.NativeFromInt64(field, 50))
	b := lowgear.NewShare(residue.NativeFromInt64(field, 3), residue.NativeFromInt64(field, 30))

	sum := a.Add(b)
	require.Equal(t, int64(8), sum.Val.RetrieveSigned().Int64())
	require.Equal(t, int64(80), sum.Tag.RetrieveSigned().Int64())

	diff := a.Sub(b)
	require.Equal(t, int64(2), diff.Val.RetrieveSigned().Int64())
	require.Equal(t, int64(20), diff.Tag.RetrieveSigned().Int64())

	neg := a.Neg()
	require.Equal(t, int64(-5), neg.Val.RetrieveSigned().Int64())

	scaled := a.MulScalar(residue.NativeFromInt64(field, 2))
	require.Equal(t, int64(10), scaled.Val.RetrieveSigned().Int64())
	require.Equal(t, int64(100), scaled.Tag.RetrieveSigned().Int64())

	shifted := a.Lsh(4)
	require.Equal(t, int64(5<<4), shifted.Val.RetrieveSigned().Int64())

	withConst := residue.NativeFromInt64(field, 7)
	require.Equal(t, int64(12), a.AddPublic(withConst, true).Val.RetrieveSigned().Int64())
	require.Equal(t, int64(5), a.AddPublic(withConst, false).Val.RetrieveSigned().Int64())
}

func TestZeroShare(t *testing.T) {
	field := residue.NewNativeField(32)
	zero := lowgear.ZeroShare(field)
	require.True(t, zero.Val.Equal(residue.NativeZero(field)))
	require.True(t, zero.Tag.Equal(residue.NativeZero(field)))
}
