package lowgear

import (
	"crypto/rand"

	"github.com/haslersn/multipars/internal/xerrors"
	"github.com/haslersn/multipars/residue"
	"github.com/haslersn/multipars/transport"
)

// Opener implements the MAC-check opener of spec.md §4.10: it reveals
// shared values by exchanging the two parties' value shares and then
// jointly checks the revealed value against both MAC tag shares before
// either party trusts it, directly grounded on
// original_source/src/mac_check_opener/mod.rs's MacCheckOpener.
//
// The original runs its two round trips (value exchange, then MAC-
// difference exchange) as concurrent futures over a single multiplexed
// QUIC channel; here both round trips are plain blocking send-then-recv
// pairs over the values BiChannel (the seed BiChannel carries the batch
// check's seed), which is equivalent once framing is length-prefixed and
// each channel is a dedicated TCP connection.
type Opener struct {
	chValues *transport.BiChannel[[]residue.NativeResidue]
	chSeed   *transport.BiChannel[[32]byte]
	macKey   residue.NativeResidue
}

// NewOpener opens the opener's two logical streams over conn.
func NewOpener(conn *transport.Connection, macKey residue.NativeResidue) (*Opener, error) {
	chValues, err := transport.OpenBiChannel[[]residue.NativeResidue](conn, "Opener:values")
	if err != nil {
		return nil, err
	}
	chSeed, err := transport.OpenBiChannel[[32]byte](conn, "Opener:seed")
	if err != nil {
		return nil, err
	}
	return &Opener{chValues: chValues, chSeed: chSeed, macKey: macKey}, nil
}

// exchangeOne sends v to the peer and returns the peer's own single value,
// erroring if the peer's reply isn't exactly one value.
func (o *Opener) exchangeOne(v residue.NativeResidue) (residue.NativeResidue, error) {
	if err := o.chValues.Send([]residue.NativeResidue{v}); err != nil {
		return residue.NativeResidue{}, err
	}
	received, err := o.chValues.Recv()
	if err != nil {
		return residue.NativeResidue{}, err
	}
	if len(received) != 1 {
		return residue.NativeResidue{}, xerrors.NewProtocolError("mac check: expected 1 value", nil)
	}
	return received[0], nil
}

// SingleCheck opens share and verifies its MAC, returning the revealed
// value on success, per mac_check_opener/mod.rs's single_check.
func (o *Opener) SingleCheck(share Share) (residue.NativeResidue, error) {
	otherVal, err := o.exchangeOne(share.Val)
	if err != nil {
		return residue.NativeResidue{}, err
	}
	val := share.Val.Add(otherVal)
	z := share.Tag.Sub(val.Mul(o.macKey))

	otherZ, err := o.exchangeOne(z)
	if err != nil {
		return residue.NativeResidue{}, err
	}
	sum := z.Add(otherZ)
	if !sum.Equal(residue.NativeZero(sum.Field())) {
		return residue.NativeResidue{}, xerrors.NewProtocolError("mac check failed", nil)
	}
	return val, nil
}

// BatchCheck amortizes many MAC checks into a single SingleCheck: both
// parties agree on a random seed, derive a ChaCha20 stream from it, and
// fold every share into mask via a random linear combination before
// opening just the mask, per mac_check_opener/mod.rs's batch_check.
func (o *Opener) BatchCheck(shares []Share, mask Share) error {
	var localSeed [32]byte
	if _, err := rand.Read(localSeed[:]); err != nil {
		return err
	}
	if err := o.chSeed.Send(localSeed); err != nil {
		return err
	}
	remoteSeed, err := o.chSeed.Recv()
	if err != nil {
		return err
	}
	seed := localSeed
	for i := range seed {
		seed[i] ^= remoteSeed[i]
	}

	stream, err := newSeededStream(seed)
	if err != nil {
		return xerrors.NewProtocolError("mac check: deriving batch seed stream", err)
	}

	for _, share := range shares {
		coeff := randomResidue(stream, share.Val.Field())
		mask = mask.Add(share.MulScalar(coeff))
	}

	_, err = o.SingleCheck(mask)
	return err
}

// Finish closes the opener's streams, per mac_check_opener/mod.rs's finish.
func (o *Opener) Finish() error {
	if err := o.chValues.Close(); err != nil {
		return err
	}
	return o.chSeed.Close()
}
