package lowgear_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/lowgear"
	"github.com/haslersn/multipars/residue"
)

func TestZeroPreprocessorGetBeaverTriples(t *testing.T) {
	field := residue.NewNativeField(64)
	zp := lowgear.NewZeroPreprocessor(field)

	triples, err := zp.GetBeaverTriples(5)
	require.NoError(t, err)
	require.Len(t, triples, 5)
	zero := residue.NativeZero(field)
	for _, triple := range triples {
		require.True(t, triple.A.Val.Equal(zero))
		require.True(t, triple.A.Tag.Equal(zero))
		require.True(t, triple.B.Val.Equal(zero))
		require.True(t, triple.C.Val.Equal(zero))
	}
	require.NoError(t, zp.Finish())
}
