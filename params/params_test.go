package params_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/params"
)

func TestByFlags(t *testing.T) {
	s, ok := params.ByFlags(32, 32, true)
	require.True(t, ok)
	require.Equal(t, "toy-k32-s32", s.Name)

	s, ok = params.ByFlags(64, 64, false)
	require.True(t, ok)
	require.Equal(t, "k64-s64", s.Name)

	_, ok = params.ByFlags(16, 16, false)
	require.False(t, ok)
}

func TestBuildToy(t *testing.T) {
	s, _ := params.ByFlags(32, 32, true)
	built, err := params.Build(s)
	require.NoError(t, err)
	require.Equal(t, uint64(337), built.Set.CiphertextM)
	require.Equal(t, 16, built.PlaintextFactors.FactorCount())
	require.Equal(t, 21, built.PlaintextFactors.FactorDegree())
	require.NotNil(t, built.PlaintextTIP)
	require.NotNil(t, built.DealerFourier)
}
