package lowgear

import (
	"github.com/haslersn/multipars/internal/xerrors"
	"github.com/haslersn/multipars/residue"
	"github.com/haslersn/multipars/transport"
)

// Truncer turns "wide" (KSS-bit) intermediate a/a_tag/c/c_tag values into
// correctly-scaled KS-bit Beaver-triple components, grounded directly on
// original_source/src/low_gear_preproc/truncer.rs's Truncer::truncate.
//
// The low s bits of a are revealed to both parties (this is safe: they're
// discarded by the final right-shift), letting each side mask a_tag/c/c_tag
// by the same public quantity sigma_a before jointly checking that the
// masked values are divisible by 2^s — the standard SPDZ2k truncation
// consistency check.
type Truncer struct {
	chA    *transport.BiChannel[[]residue.NativeResidue]
	chCom  *transport.BiChannel[truncComMsg]
	macKey residue.NativeResidue // S bits wide
	sBits  uint
}

type truncComMsg struct {
	HatATagsMod2S []residue.NativeResidue
	HatCMod2S     []residue.NativeResidue
	HatCTagsMod2S []residue.NativeResidue
}

// NewTruncer opens the truncer's two logical streams over conn.
func NewTruncer(conn *transport.Connection, macKey residue.NativeResidue, sBits uint) (*Truncer, error) {
	chA, err := transport.OpenBiChannel[[]residue.NativeResidue](conn, "Truncer:a")
	if err != nil {
		return nil, err
	}
	chCom, err := transport.OpenBiChannel[truncComMsg](conn, "Truncer:com")
	if err != nil {
		return nil, err
	}
	return &Truncer{chA: chA, chCom: chCom, macKey: macKey, sBits: sBits}, nil
}

// Truncate implements truncer.rs's truncate: given wide (KSS-bit) a/a_tag/
// c/c_tag alongside the already-narrow (K-bit) b and (KS-bit) b_tag, it
// returns the final KS-bit a/a_tag/c/c_tag. ksField/kssField are the KS-
// and KSS-bit rings; isParty0 selects which side of the asymmetric
// zero-check runs, per truncer.rs's `if PID == 0`.
func (t *Truncer) Truncate(
	wideA, wideATags, b, bTags, wideC, wideCTags []residue.NativeResidue,
	ksField, kssField *residue.NativeField,
	isParty0 bool,
) (a, aTags, c, cTags []residue.NativeResidue, err error) {
	n := len(wideA)
	if len(wideATags) != n || len(b) != n || len(bTags) != n || len(wideC) != n || len(wideCTags) != n {
		return nil, nil, nil, nil, xerrors.NewProtocolError("truncer: mismatched batch lengths", nil)
	}

	aMod2s := mapMod2s(wideA, t.sBits)

	if err := t.chA.Send(aMod2s); err != nil {
		return nil, nil, nil, nil, err
	}
	remoteAMod2s, err := t.chA.Recv()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if len(remoteAMod2s) != n {
		return nil, nil, nil, nil, xerrors.NewProtocolError("truncer: received a_mod2s has wrong length", nil)
	}

	macKeyWide := t.macKey.Widen(kssField)
	sigmaA := make([]residue.NativeResidue, n)
	for i := range sigmaA {
		sigmaA[i] = aMod2s[i].Widen(ksField).Add(remoteAMod2s[i].Widen(ksField))
	}

	hatATags := make([]residue.NativeResidue, n)
	hatC := make([]residue.NativeResidue, n)
	hatCTags := make([]residue.NativeResidue, n)
	for i := 0; i < n; i++ {
		sWide := sigmaA[i].Widen(kssField)
		hatATags[i] = wideATags[i].Sub(sWide.Mul(macKeyWide))
		hatC[i] = wideC[i].Sub(sWide.Mul(b[i].Widen(kssField)))
		hatCTags[i] = wideCTags[i].Sub(sWide.Mul(bTags[i].Widen(kssField)))
	}

	comMsg := truncComMsg{
		HatATagsMod2S: mapMod2s(hatATags, t.sBits),
		HatCMod2S:     mapMod2s(hatC, t.sBits),
		HatCTagsMod2S: mapMod2s(hatCTags, t.sBits),
	}

	if err := t.chCom.Send(comMsg); err != nil {
		return nil, nil, nil, nil, err
	}
	remoteCom, err := t.chCom.Recv()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if len(remoteCom.HatATagsMod2S) != n || len(remoteCom.HatCMod2S) != n || len(remoteCom.HatCTagsMod2S) != n {
		return nil, nil, nil, nil, xerrors.NewProtocolError("truncer: received commitment has wrong length", nil)
	}

	if isParty0 {
		for i := 0; i < n; i++ {
			hatATags[i] = hatATags[i].Add(remoteCom.HatATagsMod2S[i].Widen(kssField))
			if err := checkZeroMod2s(hatATags[i], t.sBits); err != nil {
				return nil, nil, nil, nil, err
			}
			hatC[i] = hatC[i].Add(remoteCom.HatCMod2S[i].Widen(kssField))
			if err := checkZeroMod2s(hatC[i], t.sBits); err != nil {
				return nil, nil, nil, nil, err
			}
			hatCTags[i] = hatCTags[i].Add(remoteCom.HatCTagsMod2S[i].Widen(kssField))
			if err := checkZeroMod2s(hatCTags[i], t.sBits); err != nil {
				return nil, nil, nil, nil, err
			}
		}
	} else {
		for i := 0; i < n; i++ {
			if err := checkZeroMod2s(comMsg.HatATagsMod2S[i].Widen(ksField).Add(remoteCom.HatATagsMod2S[i].Widen(ksField)), t.sBits); err != nil {
				return nil, nil, nil, nil, err
			}
			if err := checkZeroMod2s(comMsg.HatCMod2S[i].Widen(ksField).Add(remoteCom.HatCMod2S[i].Widen(ksField)), t.sBits); err != nil {
				return nil, nil, nil, nil, err
			}
			if err := checkZeroMod2s(comMsg.HatCTagsMod2S[i].Widen(ksField).Add(remoteCom.HatCTagsMod2S[i].Widen(ksField)), t.sBits); err != nil {
				return nil, nil, nil, nil, err
			}
		}
	}

	shift := kssField.Bits() - ksField.Bits()
	a = make([]residue.NativeResidue, n)
	aTags = make([]residue.NativeResidue, n)
	c = make([]residue.NativeResidue, n)
	cTags = make([]residue.NativeResidue, n)
	for i := 0; i < n; i++ {
		a[i] = shiftDown(wideA[i], shift, ksField)
		aTags[i] = shiftDown(hatATags[i], shift, ksField)
		c[i] = shiftDown(hatC[i], shift, ksField)
		cTags[i] = shiftDown(hatCTags[i], shift, ksField)
	}
	return a, aTags, c, cTags, nil
}

// Finish closes the truncer's streams.
func (t *Truncer) Finish() error {
	if err := t.chA.Close(); err != nil {
		return err
	}
	return t.chCom.Close()
}

func mapMod2s(xs []residue.NativeResidue, sBits uint) []residue.NativeResidue {
	out := make([]residue.NativeResidue, len(xs))
	for i, x := range xs {
		out[i] = x.Mod2ToThe(sBits)
	}
	return out
}

func checkZeroMod2s(x residue.NativeResidue, sBits uint) error {
	reduced := x.Mod2ToThe(sBits)
	if !reduced.Equal(residue.NativeZero(reduced.Field())) {
		return xerrors.NewProtocolError("truncer: consistency check failed", nil)
	}
	return nil
}

func shiftDown(x residue.NativeResidue, n uint, ksField *residue.NativeField) residue.NativeResidue {
	return x.RightShift(n).Widen(ksField)
}
