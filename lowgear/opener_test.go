package lowgear_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/lowgear"
	"github.com/haslersn/multipars/residue"
	"github.com/haslersn/multipars/transport"
)

func TestOpenerSingleAndBatchCheck(t *testing.T) {
	const p0Addr = "127.0.0.1:19451"
	const p1Addr = "127.0.0.1:19452"

	field := residue.NewNativeField(64)
	macKey := residue.NativeFromInt64(field, 42)

	val0 := residue.NativeFromInt64(field, 11)
	val1 := residue.NativeFromInt64(field, 31)
	total := val0.Add(val1)
	tag := total.Mul(macKey)
	tag0 := residue.NativeFromInt64(field, 1000)
	tag1 := tag.Sub(tag0)

	share0 := lowgear.NewShare(val0, tag0)
	share1 := lowgear.NewShare(val1, tag1)

	var wg sync.WaitGroup
	wg.Add(2)
	errs := make(chan error, 2)
	results := make(chan residue.NativeResidue, 2)

	run := func(local, remote string, share lowgear.Share) {
		defer wg.Done()
		conn, err := transport.New(local, remote)
		if err != nil {
			errs <- err
			return
		}
		opener, err := lowgear.NewOpener(conn, macKey)
		if err != nil {
			errs <- err
			return
		}
		got, err := opener.SingleCheck(share)
		if err != nil {
			errs <- err
			return
		}
		results <- got

		if err := opener.BatchCheck(nil, lowgear.ZeroShare(field)); err != nil {
			errs <- err
			return
		}

		if err := opener.Finish(); err != nil {
			errs <- err
			return
		}
		if err := conn.Close(); err != nil {
			errs <- err
		}
	}

	go run(p0Addr, p1Addr, share0)
	go run(p1Addr, p0Addr, share1)

	wg.Wait()
	close(errs)
	close(results)
	for err := range errs {
		require.NoError(t, err)
	}
	for got := range results {
		require.True(t, got.Equal(total), "revealed value mismatch")
	}
}

func TestOpenerSingleCheckRejectsBadMAC(t *testing.T) {
	const p0Addr = "127.0.0.1:19453"
	const p1Addr = "127.0.0.1:19454"

	field := residue.NewNativeField(64)
	macKey := residue.NativeFromInt64(field, 42)

	val0 := residue.NativeFromInt64(field, 11)
	val1 := residue.NativeFromInt64(field, 31)

	// Tags deliberately don't sum to mac_key * (val0+val1).
	share0 := lowgear.NewShare(val0, residue.NativeFromInt64(field, 1))
	share1 := lowgear.NewShare(val1, residue.NativeFromInt64(field, 2))

	var wg sync.WaitGroup
	wg.Add(2)
	results := make(chan error, 2)

	run := func(local, remote string, share lowgear.Share) {
		defer wg.Done()
		conn, err := transport.New(local, remote)
		require.NoError(t, err)
		opener, err := lowgear.NewOpener(conn, macKey)
		require.NoError(t, err)
		_, err = opener.SingleCheck(share)
		results <- err
		_ = opener.Finish()
		_ = conn.Close()
	}

	go run(p0Addr, p1Addr, share0)
	go run(p1Addr, p0Addr, share1)

	wg.Wait()
	close(results)
	for err := range results {
		require.Error(t, err)
	}
}
