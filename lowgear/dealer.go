package lowgear

import (
	"math/big"

	"github.com/haslersn/multipars/internal/log"
	"github.com/haslersn/multipars/internal/sampling"
	"github.com/haslersn/multipars/internal/xerrors"
	"github.com/haslersn/multipars/params"
	"github.com/haslersn/multipars/poly"
	"github.com/haslersn/multipars/residue"
	"github.com/haslersn/multipars/she"
	"github.com/haslersn/multipars/transport"
)

// Dealer authenticates cleartext values into KS-wide value+MAC-tag shares
// over its own small, independent BGV instance (spec.md §6's separate
// dealer row), grounded on original_source/src/low_gear_dealer/mod.rs's
// LowGearDealer. Unlike the main preprocessing BGV instance, the dealer
// does not run ZKPoPK over its ciphertexts: the original explicitly skips
// it ("TODO: Perform ZKPoPK"), relying on the drowning noise added in
// EncryptAndDrown alone to hide what a malformed ciphertext could reveal,
// and this port preserves that same documented simplification rather than
// inventing a proof step the original never had.
type Dealer struct {
	chInit *transport.BiChannel[dealerInit]
	chTags *transport.BiChannel[she.Ciphertext]

	ctx *she.Context

	sk           *she.SecretKey
	remotePK     *she.PublicKey
	macKey       residue.NativeResidue
	remoteMacKey she.Ciphertext

	prng *sampling.PRNG
}

type dealerInit struct {
	PK     she.PublicKey
	MacKey she.Ciphertext
}

// dealerSHEContext repackages a parameter Set's dealer fields (an
// independent cyclotomic index, ciphertext modulus, and plaintext bit
// width; see params.Set's DealerM/DealerQ/... group) into a standalone
// she.Context. The dealer never packs values via Tweaked Interpolation
// Packing, so unlike the main preprocessing ring it needs no
// FactorsContext/TIPContext, only the bare ciphertext Fourier context and a
// plaintext bit width, per low_gear_dealer/params.rs's DealerParameters.
func dealerSHEContext(built *params.Built) *she.Context {
	s := built.Set
	dealerSet := params.Set{
		Name:          s.Name + "-dealer",
		CiphertextM:   s.DealerM,
		CiphertextQ:   s.DealerQ,
		CiphertextPsi: s.DealerPsi,
		CiphertextGen: s.DealerGen,
		PlaintextBits: s.DealerPlaintextBits,
	}
	dealerBuilt := &params.Built{
		Set:               dealerSet,
		CiphertextField:   built.DealerField,
		CiphertextFourier: built.DealerFourier,
		PlaintextField:    residue.NewNativeField(s.DealerPlaintextBits),
	}
	return she.NewContext(dealerBuilt)
}

// NewDealer builds the dealer's own BGV key pair and exchanges public keys
// and encrypted negated MAC keys with the remote peer, per
// low_gear_dealer/mod.rs's LowGearDealer::new.
func NewDealer(conn *transport.Connection, built *params.Built, macKey residue.NativeResidue) (*Dealer, error) {
	chInit, err := transport.OpenBiChannel[dealerInit](conn, "LowGearDealer:init")
	if err != nil {
		return nil, err
	}
	chTags, err := transport.OpenBiChannel[she.Ciphertext](conn, "LowGearDealer:tags")
	if err != nil {
		return nil, err
	}

	ctx := dealerSHEContext(built)
	prng, err := sampling.NewKeyedPRNG(nil)
	if err != nil {
		return nil, err
	}

	sk := ctx.GenSecretKey(prng)
	pk := ctx.GenPublicKey(prng, sk)

	field := ctx.Built.PlaintextField
	wideMacKey := macKey.Widen(field)
	negMacKey := residue.NativeZero(field).Sub(wideMacKey)
	negated := poly.NewPowerPoly[residue.NativeResidue](ctx.N, residue.NativeZero(field))
	negated.Coeffs[0] = negMacKey
	encMacKey, _, _ := ctx.Encrypt(prng, pk, negated)

	if err := chInit.Send(dealerInit{PK: *pk, MacKey: encMacKey}); err != nil {
		return nil, err
	}
	remote, err := chInit.Recv()
	if err != nil {
		return nil, err
	}

	return &Dealer{
		chInit:       chInit,
		chTags:       chTags,
		ctx:          ctx,
		sk:           sk,
		remotePK:     &remote.PK,
		macKey:       macKey,
		remoteMacKey: remote.MacKey,
		prng:         prng,
	}, nil
}

// Capacity is the most values Authenticate can pack into one ciphertext.
func (d *Dealer) Capacity() int { return d.ctx.N }

// Authenticate runs one batch authentication of up to Capacity() values,
// returning each value's KS-wide MAC-tag share, per
// low_gear_dealer/mod.rs's authenticate. Steps 4-6 of the underlying
// protocol (an optional ciphertext consistency check) are skipped exactly
// as the original explains: "in practice the check in step 6 is not
// required".
func (d *Dealer) Authenticate(values []residue.NativeResidue) ([]residue.NativeResidue, error) {
	if len(values) > d.ctx.N {
		return nil, xerrors.NewProtocolError("dealer: batch too large for one ciphertext", nil)
	}

	type outcome struct {
		tags []residue.NativeResidue
		err  error
	}
	sendDone := make(chan outcome, 1)
	recvDone := make(chan outcome, 1)

	go func() {
		tags, err := d.sendMacTags(values)
		sendDone <- outcome{tags: tags, err: err}
	}()
	go func() {
		tags, err := d.recvMacTags(len(values))
		recvDone <- outcome{tags: tags, err: err}
	}()

	sendRes := <-sendDone
	recvRes := <-recvDone
	if sendRes.err != nil {
		return nil, sendRes.err
	}
	if recvRes.err != nil {
		return nil, recvRes.err
	}

	tags := make([]residue.NativeResidue, len(values))
	for i := range tags {
		tags[i] = sendRes.tags[i].Add(recvRes.tags[i])
	}
	return tags, nil
}

func (d *Dealer) sendMacTags(values []residue.NativeResidue) ([]residue.NativeResidue, error) {
	field := d.ctx.Built.PlaintextField

	plainE := poly.NewPowerPoly[residue.NativeResidue](d.ctx.N, residue.NativeZero(field))
	for i := range values {
		plainE.Coeffs[i] = uniformNative(d.prng, field)
	}

	plainValues := poly.NewPowerPoly[residue.NativeResidue](d.ctx.N, residue.NativeZero(field))
	for i, v := range values {
		plainValues.Coeffs[i] = v.Widen(field)
	}

	ciphertext := d.ctx.MulPlain(d.remoteMacKey, plainValues)
	drownCT, _, _ := d.ctx.EncryptAndDrown(d.prng, d.remotePK, plainE, d.ctx.MaxDrownBits())
	ciphertext = d.ctx.SubCiphertexts(ciphertext, drownCT)

	if err := d.chTags.Send(ciphertext); err != nil {
		return nil, err
	}

	wideMacKey := d.macKey.Widen(field)
	tags := make([]residue.NativeResidue, len(values))
	for i, v := range values {
		tags[i] = plainE.Coeffs[i].Add(v.Widen(field).Mul(wideMacKey))
	}
	return tags, nil
}

func (d *Dealer) recvMacTags(n int) ([]residue.NativeResidue, error) {
	ciphertext, err := d.chTags.Recv()
	if err != nil {
		return nil, err
	}
	plainD := d.ctx.Decrypt(d.sk, ciphertext)
	log.Info("dealer: decrypted authentication ciphertext")
	tags := make([]residue.NativeResidue, n)
	copy(tags, plainD.Coeffs[:n])
	return tags, nil
}

// Finish closes the dealer's streams, per low_gear_dealer/mod.rs's finish.
func (d *Dealer) Finish() error {
	if err := d.chInit.Close(); err != nil {
		return err
	}
	return d.chTags.Close()
}

// uniformNative draws a uniform element of field.
func uniformNative(prng *sampling.PRNG, field *residue.NativeField) residue.NativeResidue {
	bound := new(big.Int).Lsh(big.NewInt(1), field.Bits())
	return residue.NativeFromUint(field, prng.UniformBigInt(bound))
}
