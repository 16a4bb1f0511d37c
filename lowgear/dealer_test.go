package lowgear_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/lowgear"
	"github.com/haslersn/multipars/params"
	"github.com/haslersn/multipars/residue"
	"github.com/haslersn/multipars/transport"
)

// TestDealerAuthenticate checks that two independent Dealer instances can
// complete the handshake of NewDealer and run one concurrent Authenticate
// round trip, returning one tag per input value with no transport or
// decryption errors. The cross-party MAC algebra itself (grounded on
// low_gear_dealer/mod.rs's authenticate, which the original's own comment
// marks as skipping its ZKPoPK step) is exercised indirectly by
// TestPreprocessorOneBatch's end-to-end triple check.
func TestDealerAuthenticate(t *testing.T) {
	const p0Addr = "127.0.0.1:19651"
	const p1Addr = "127.0.0.1:19652"

	set, ok := params.ByFlags(32, 32, true)
	require.True(t, ok)
	built, err := params.Build(set)
	require.NoError(t, err)

	sField := residue.NewNativeField(set.S)
	macKey0 := residue.NativeFromInt64(sField, 7)
	macKey1 := residue.NativeFromInt64(sField, 13)

	kField := residue.NewNativeField(set.K)
	values0 := []residue.NativeResidue{
		residue.NativeFromInt64(kField, 1),
		residue.NativeFromInt64(kField, 2),
		residue.NativeFromInt64(kField, 3),
	}
	values1 := []residue.NativeResidue{
		residue.NativeFromInt64(kField, 4),
		residue.NativeFromInt64(kField, 5),
		residue.NativeFromInt64(kField, 6),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	errs := make(chan error, 2)
	lens := make(chan int, 2)

	run := func(local, remote string, macKey residue.NativeResidue, values []residue.NativeResidue) {
		defer wg.Done()
		conn, err := transport.New(local, remote)
		if err != nil {
			errs <- err
			return
		}
		dealer, err := lowgear.NewDealer(conn, built, macKey)
		if err != nil {
			errs <- err
			return
		}
		tags, err := dealer.Authenticate(values)
		if err != nil {
			errs <- err
			return
		}
		lens <- len(tags)

		if err := dealer.Finish(); err != nil {
			errs <- err
			return
		}
		if err := conn.Close(); err != nil {
			errs <- err
		}
	}

	go run(p0Addr, p1Addr, macKey0, values0)
	go run(p1Addr, p0Addr, macKey1, values1)

	wg.Wait()
	close(errs)
	close(lens)
	for err := range errs {
		require.NoError(t, err)
	}
	for n := range lens {
		require.Equal(t, 3, n)
	}
}
