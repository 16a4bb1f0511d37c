package lowgear_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/lowgear"
	"github.com/haslersn/multipars/params"
	"github.com/haslersn/multipars/transport"
)

// TestPreprocessorOneBatch runs the toy parameter set's full two-party
// pipeline (ZKPoPK-amortized "a" generation, dealer authentication of b/r/m,
// the three homomorphic VOLE rounds, truncation, and the final MAC-checked
// mask) for exactly one batch and checks spec.md's closing invariant: for
// every resulting triple, (a0+a1)*(b0+b1) = (c0+c1) mod 2^k.
func TestPreprocessorOneBatch(t *testing.T) {
	const p0Addr = "127.0.0.1:19751"
	const p1Addr = "127.0.0.1:19752"

	set, ok := params.ByFlags(32, 32, true)
	require.True(t, ok)
	built, err := params.Build(set)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	errs := make(chan error, 2)
	results := make(chan []lowgear.BeaverTriple, 2)

	run := func(local, remote string, isParty0 bool) {
		defer wg.Done()
		conn, err := transport.New(local, remote)
		if err != nil {
			errs <- err
			return
		}
		preproc, err := lowgear.NewPreprocessor(conn, built, isParty0, set.ZKPoPKAmortize, set.ZKPoPKSndSec)
		if err != nil {
			errs <- err
			return
		}
		triples, err := preproc.GetBeaverTriplesBatch()
		if err != nil {
			errs <- err
			return
		}
		if err := preproc.Finish(); err != nil {
			errs <- err
			return
		}
		results <- triples
	}

	go run(p0Addr, p1Addr, true)
	go run(p1Addr, p0Addr, false)

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	close(results)

	var batch0, batch1 []lowgear.BeaverTriple
	for triples := range results {
		if batch0 == nil {
			batch0 = triples
		} else {
			batch1 = triples
		}
	}
	require.NotNil(t, batch0)
	require.NotNil(t, batch1)
	require.Equal(t, len(batch0), len(batch1))

	for i := range batch0 {
		a := batch0[i].A.Val.Add(batch1[i].A.Val).Mod2ToThe(set.K)
		b := batch0[i].B.Val.Add(batch1[i].B.Val).Mod2ToThe(set.K)
		c := batch0[i].C.Val.Add(batch1[i].C.Val).Mod2ToThe(set.K)
		want := a.Mul(b).Mod2ToThe(set.K)
		require.True(t, want.Equal(c), "triple %d: a*b != c mod 2^%d", i, set.K)
	}
}
