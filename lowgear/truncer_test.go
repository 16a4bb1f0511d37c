package lowgear_test

import (
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/lowgear"
	"github.com/haslersn/multipars/residue"
	"github.com/haslersn/multipars/transport"
)

func nr(field *residue.NativeField, v int64) residue.NativeResidue {
	return residue.NativeFromUint(field, big.NewInt(v))
}

func errMismatch(name string, i int, want, got int64) error {
	return fmt.Errorf("%s[%d]: want %#x, got %#x", name, i, want, got)
}

// TestTruncerTruncate exercises the two-party consistency-check-and-shift
// pipeline with inputs deliberately chosen so that every quantity involved
// is already a multiple of 2^s: this keeps sigma_a at zero (so the MAC-key
// masking term drops out) and makes the final right-shifted outputs
// predictable by hand, per truncer.rs's truncate.
func TestTruncerTruncate(t *testing.T) {
	const p0Addr = "127.0.0.1:19551"
	const p1Addr = "127.0.0.1:19552"
	const sBits = 4

	ksField := residue.NewNativeField(12)
	kssField := residue.NewNativeField(16)
	macKey := nr(residue.NewNativeField(4), 0) // any value; sigma_a is 0 so it never multiplies in.

	wideA0 := []residue.NativeResidue{nr(kssField, 0x1230), nr(kssField, 0x4560)}
	wideA1 := []residue.NativeResidue{nr(kssField, 0x0230), nr(kssField, 0x0010)}

	wideATags0 := []residue.NativeResidue{nr(kssField, 0x300), nr(kssField, 0x310)}
	wideATags1 := []residue.NativeResidue{nr(kssField, 0x400), nr(kssField, 0x420)}

	wideC0 := []residue.NativeResidue{nr(kssField, 0x100), nr(kssField, 0x110)}
	wideC1 := []residue.NativeResidue{nr(kssField, 0x200), nr(kssField, 0x220)}

	wideCTags0 := []residue.NativeResidue{nr(kssField, 0x500), nr(kssField, 0x510)}
	wideCTags1 := []residue.NativeResidue{nr(kssField, 0x600), nr(kssField, 0x620)}

	b0 := []residue.NativeResidue{nr(residue.NewNativeField(8), 0x12), nr(residue.NewNativeField(8), 0x34)}
	b1 := []residue.NativeResidue{nr(residue.NewNativeField(8), 0x56), nr(residue.NewNativeField(8), 0x78)}
	bTags0 := []residue.NativeResidue{nr(ksField, 0x100), nr(ksField, 0x110)}
	bTags1 := []residue.NativeResidue{nr(ksField, 0x200), nr(ksField, 0x220)}

	wantA0 := []int64{0x123, 0x456}
	wantA1 := []int64{0x023, 0x001}
	wantATags0 := []int64{0x30, 0x31}
	wantATags1 := []int64{0x40, 0x42}
	wantC0 := []int64{0x10, 0x11}
	wantC1 := []int64{0x20, 0x22}
	wantCTags0 := []int64{0x50, 0x51}
	wantCTags1 := []int64{0x60, 0x62}

	var wg sync.WaitGroup
	wg.Add(2)
	errs := make(chan error, 32)

	run := func(local, remote string, isParty0 bool, wideA, wideATags, b, bTags, wideC, wideCTags []residue.NativeResidue, wantA, wantATags, wantC, wantCTags []int64) {
		defer wg.Done()
		conn, err := transport.New(local, remote)
		if err != nil {
			errs <- err
			return
		}
		truncer, err := lowgear.NewTruncer(conn, macKey, sBits)
		if err != nil {
			errs <- err
			return
		}
		a, aTags, c, cTags, err := truncer.Truncate(wideA, wideATags, b, bTags, wideC, wideCTags, ksField, kssField, isParty0)
		if err != nil {
			errs <- err
			return
		}
		check := func(name string, got []residue.NativeResidue, want []int64) {
			for i := range got {
				if got[i].RetrieveSigned().Int64() != want[i] {
					errs <- errMismatch(name, i, want[i], got[i].RetrieveSigned().Int64())
				}
			}
		}
		check("a", a, wantA)
		check("aTags", aTags, wantATags)
		check("c", c, wantC)
		check("cTags", cTags, wantCTags)

		if err := truncer.Finish(); err != nil {
			errs <- err
			return
		}
		if err := conn.Close(); err != nil {
			errs <- err
		}
	}

	go run(p0Addr, p1Addr, true, wideA0, wideATags0, b0, bTags0, wideC0, wideCTags0, wantA0, wantATags0, wantC0, wantCTags0)
	go run(p1Addr, p0Addr, false, wideA1, wideATags1, b1, bTags1, wideC1, wideCTags1, wantA1, wantATags1, wantC1, wantCTags1)

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
