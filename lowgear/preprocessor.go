package lowgear

import (
	"github.com/haslersn/multipars/internal/sampling"
	"github.com/haslersn/multipars/internal/xerrors"
	"github.com/haslersn/multipars/params"
	"github.com/haslersn/multipars/poly"
	"github.com/haslersn/multipars/residue"
	"github.com/haslersn/multipars/she"
	"github.com/haslersn/multipars/transport"
	"github.com/haslersn/multipars/zkpopk"
)

// Preprocessor orchestrates Dealer, Opener, Truncer and a ZKPoPK
// prover/verifier pair into Low-Gear's batched Beaver-triple generation,
// grounded directly on original_source/src/low_gear_preproc/mod.rs's
// LowGearPreprocessor. It implements BatchedPreprocessor; wrap it in a
// BufferedPreprocessor for the arbitrary-n Preprocessor interface.
type Preprocessor struct {
	dealer  *Dealer
	opener  *Opener
	truncer *Truncer

	chInit            *transport.BiChannel[preprocInit]
	chCiphertextThere *transport.BiChannel[[]she.PreCiphertext]
	chCommitment      *transport.BiChannel[zkpopk.Commitment]
	chChallenge       *transport.BiChannel[zkpopk.Challenge]
	chResponse        *transport.BiChannel[responseMsg]
	chCiphertextBack  *transport.BiChannel[[3]she.Ciphertext]

	ctx     *she.Context
	factors *poly.FactorsContext
	tip     *poly.TIPContext

	kField   *residue.NativeField
	ksField  *residue.NativeField
	kssField *residue.NativeField

	sk       *she.SecretKey
	pk       *she.PublicKey
	remotePK *she.PublicKey
	macKey   residue.NativeResidue

	isParty0 bool

	amortize    int
	sndSec      int
	invFailProb int
	maxReps     int

	prng *sampling.PRNG

	aStack []aStackEntry
}

type aStackEntry struct {
	wideA  []residue.NativeResidue
	cipher she.Ciphertext
}

type preprocInit struct {
	PK she.PublicKey
}

type responseMsg struct {
	OK       bool
	Response zkpopk.Response
}

// NewPreprocessor builds the main BGV instance, every subprotocol, and
// exchanges public keys with the remote peer, per
// low_gear_preproc/mod.rs's LowGearPreprocessor::new. sndSec is the
// amortized ZKPoPK soundness parameter and amortize the batch size, both
// taken from the parameter Set's ZKPOPK_AMORTIZE/ZKPOPK_SND_SEC, per
// low_gear_preproc/params.rs.
func NewPreprocessor(conn *transport.Connection, built *params.Built, isParty0 bool, amortize, sndSec int) (*Preprocessor, error) {
	const invFailProb = 256
	const maxReps = 16

	prng, err := sampling.NewKeyedPRNG(nil)
	if err != nil {
		return nil, err
	}

	sField := residue.NewNativeField(built.Set.S)
	macKey := uniformNative(prng, sField)

	dealer, err := NewDealer(conn, built, macKey)
	if err != nil {
		return nil, err
	}
	opener, err := NewOpener(conn, macKey)
	if err != nil {
		return nil, err
	}
	truncer, err := NewTruncer(conn, macKey, built.Set.S)
	if err != nil {
		return nil, err
	}

	chInit, err := transport.OpenBiChannel[preprocInit](conn, "LowGearPreprocessor:init")
	if err != nil {
		return nil, err
	}
	chCiphertextThere, err := transport.OpenBiChannel[[]she.PreCiphertext](conn, "LowGearPreprocessor:ciphertext-there")
	if err != nil {
		return nil, err
	}
	chCommitment, err := transport.OpenBiChannel[zkpopk.Commitment](conn, "LowGearPreprocessor:commitment")
	if err != nil {
		return nil, err
	}
	chChallenge, err := transport.OpenBiChannel[zkpopk.Challenge](conn, "LowGearPreprocessor:challenge")
	if err != nil {
		return nil, err
	}
	chResponse, err := transport.OpenBiChannel[responseMsg](conn, "LowGearPreprocessor:response")
	if err != nil {
		return nil, err
	}
	chCiphertextBack, err := transport.OpenBiChannel[[3]she.Ciphertext](conn, "LowGearPreprocessor:ciphertext-back")
	if err != nil {
		return nil, err
	}

	ctx := she.NewContext(built)
	sk := ctx.GenSecretKey(prng)
	pk := ctx.GenPublicKey(prng, sk)

	if err := chInit.Send(preprocInit{PK: *pk}); err != nil {
		return nil, err
	}
	remote, err := chInit.Recv()
	if err != nil {
		return nil, err
	}

	return &Preprocessor{
		dealer:            dealer,
		opener:            opener,
		truncer:           truncer,
		chInit:            chInit,
		chCiphertextThere: chCiphertextThere,
		chCommitment:      chCommitment,
		chChallenge:       chChallenge,
		chResponse:        chResponse,
		chCiphertextBack:  chCiphertextBack,
		ctx:               ctx,
		factors:           built.PlaintextFactors,
		tip:               built.PlaintextTIP,
		kField:            residue.NewNativeField(built.Set.K),
		ksField:           residue.NewNativeField(built.Set.K + built.Set.S),
		kssField:          residue.NewNativeField(built.Set.K + 2*built.Set.S),
		sk:                sk,
		pk:                pk,
		remotePK:          &remote.PK,
		macKey:            macKey,
		isParty0:          isParty0,
		amortize:          amortize,
		sndSec:            sndSec,
		invFailProb:       invFailProb,
		maxReps:           maxReps,
		prng:              prng,
	}, nil
}

// BatchSize is ZKPOPK_AMORTIZE * the TIP packing capacity, per
// low_gear_preproc/mod.rs's batch_size.
func (p *Preprocessor) BatchSize() int { return p.amortize * p.tip.Capacity() }

func (p *Preprocessor) widenAll(vs []residue.NativeResidue, field *residue.NativeField) []residue.NativeResidue {
	out := make([]residue.NativeResidue, len(vs))
	for i, v := range vs {
		out[i] = v.Widen(field)
	}
	return out
}

// packPower packs v (already widened into the plaintext field) through the
// TIP context and converts the CRT-basis result into power basis, ready
// for she.Context.Encrypt/MulPlain.
func (p *Preprocessor) packPower(v []residue.NativeResidue) poly.PowerPoly[residue.NativeResidue] {
	return p.factors.ToPower(p.tip.Pack(v))
}

func (p *Preprocessor) packMaskPower(v []residue.NativeResidue) poly.PowerPoly[residue.NativeResidue] {
	return p.factors.ToPower(p.tip.PackMask(v))
}

func (p *Preprocessor) packDiagonalPower(x residue.NativeResidue) poly.PowerPoly[residue.NativeResidue] {
	return p.factors.ToPower(p.tip.PackDiagonal(x))
}

func (p *Preprocessor) unpack(m poly.PowerPoly[residue.NativeResidue]) []residue.NativeResidue {
	return p.tip.Unpack(p.factors.FromPower(m))
}

// refillAStack runs one amortized ZKPoPK round: both parties encrypt
// amortize random TIP-packed "a" vectors, exchange them, and each proves
// knowledge of its own batch to the other, per low_gear_preproc/mod.rs's
// get_a. The prove and verify flows run concurrently (as goroutines)
// because each party must simultaneously act as prover (on its own batch)
// and verifier (on the peer's), mirroring the original's tokio::join!.
func (p *Preprocessor) refillAStack() error {
	amortize := p.amortize
	unpackedAVec := make([][]residue.NativeResidue, amortize)
	inputs := make([]she.PreparedPlaintext, amortize)
	myCiphertexts := make([]she.PreCiphertext, amortize)

	for i := 0; i < amortize; i++ {
		unpackedA := make([]residue.NativeResidue, p.tip.Capacity())
		for j := range unpackedA {
			unpackedA[j] = uniformNative(p.prng, p.ksField)
		}
		powerA := p.packPower(p.widenAll(unpackedA, p.ctx.Built.PlaintextField))
		_, pre, prepared := p.ctx.Encrypt(p.prng, p.pk, powerA)
		unpackedAVec[i] = unpackedA
		inputs[i] = prepared
		myCiphertexts[i] = pre
	}

	var proveErr, verifyErr error
	var theirPreCiphertexts []she.PreCiphertext
	done := make(chan struct{}, 2)

	go func() {
		defer func() { done <- struct{}{} }()
		if err := p.chCiphertextThere.Send(myCiphertexts); err != nil {
			proveErr = err
			return
		}

		prover := zkpopk.NewProver(p.ctx, p.prng, p.invFailProb, amortize, p.sndSec)
		for rep := 0; rep < p.maxReps; rep++ {
			commitment := prover.Commit(p.pk)
			if err := p.chCommitment.Send(commitment); err != nil {
				proveErr = err
				return
			}
			challenge, err := p.chChallenge.Recv()
			if err != nil {
				proveErr = err
				return
			}
			response, respErr := prover.Respond(inputs, challenge)
			ok := respErr == nil
			if err := p.chResponse.Send(responseMsg{OK: ok, Response: response}); err != nil {
				proveErr = err
				return
			}
			if ok {
				return
			}
			if rep == p.maxReps-1 {
				proveErr = xerrors.NewProtocolError("zkpopk: my proof still failed after the maximum number of repetitions", nil)
			}
		}
	}()

	go func() {
		defer func() { done <- struct{}{} }()
		received, err := p.chCiphertextThere.Recv()
		if err != nil {
			verifyErr = err
			return
		}
		if len(received) != amortize {
			verifyErr = xerrors.NewProtocolError("zkpopk: wrong ciphertext count received", nil)
			return
		}
		theirPreCiphertexts = received

		for rep := 0; rep < p.maxReps; rep++ {
			commitment, err := p.chCommitment.Recv()
			if err != nil {
				verifyErr = err
				return
			}
			verifier, err := zkpopk.NewVerifier(p.ctx, p.invFailProb, amortize, p.sndSec)
			if err != nil {
				verifyErr = err
				return
			}
			if err := p.chChallenge.Send(verifier.Challenge()); err != nil {
				verifyErr = err
				return
			}
			resp, err := p.chResponse.Recv()
			if err != nil {
				verifyErr = err
				return
			}
			if resp.OK {
				if !verifier.Verify(p.remotePK, theirPreCiphertexts, commitment, resp.Response) {
					verifyErr = xerrors.NewProtocolError("zkpopk: verification of the peer's proof failed", nil)
				}
				return
			}
			if rep == p.maxReps-1 {
				verifyErr = xerrors.NewProtocolError("zkpopk: peer's proof still failed after the maximum number of repetitions", nil)
			}
		}
	}()

	<-done
	<-done
	if proveErr != nil {
		return proveErr
	}
	if verifyErr != nil {
		return verifyErr
	}

	for i := 0; i < amortize; i++ {
		cipher := p.ctx.ToCiphertext(theirPreCiphertexts[i])
		p.aStack = append(p.aStack, aStackEntry{wideA: unpackedAVec[i], cipher: cipher})
	}
	return nil
}

func (p *Preprocessor) getA() ([]residue.NativeResidue, she.Ciphertext, error) {
	if len(p.aStack) == 0 {
		if err := p.refillAStack(); err != nil {
			return nil, she.Ciphertext{}, err
		}
	}
	last := len(p.aStack) - 1
	entry := p.aStack[last]
	p.aStack = p.aStack[:last]
	return entry.wideA, entry.cipher, nil
}

// GetBeaverTriplesBatch produces exactly BatchSize() triples, per
// low_gear_preproc/mod.rs's get_beaver_triples: it refills the "a" stack
// as needed, authenticates fresh b/r/m values via the dealer, derives the
// masked cross terms via three homomorphic "VOLE" rounds, truncates the
// wide result via the Truncer, and closes each iteration with an empty
// batch MAC check on the r,m-derived mask.
func (p *Preprocessor) GetBeaverTriplesBatch() ([]BeaverTriple, error) {
	capacity := p.tip.Capacity()
	macKeyWide := p.macKey.Widen(p.kssField)

	var triples []BeaverTriple

	for iter := 0; iter < p.amortize; iter++ {
		wideA, cipherA, err := p.getA()
		if err != nil {
			return nil, err
		}

		wideATags := make([]residue.NativeResidue, capacity)
		wideC := make([]residue.NativeResidue, capacity)
		wideCTags := make([]residue.NativeResidue, capacity)
		for i, a := range wideA {
			wideATags[i] = a.Mul(macKeyWide)
		}

		bInputs := make([]residue.NativeResidue, capacity+2)
		for i := 0; i < capacity; i++ {
			bInputs[i] = uniformNative(p.prng, p.kField)
		}
		rVal := uniformNative(p.prng, p.kField)
		mVal := uniformNative(p.prng, p.kField)
		bInputs[capacity] = rVal
		bInputs[capacity+1] = mVal

		tags, err := p.dealer.Authenticate(bInputs)
		if err != nil {
			return nil, err
		}
		unpackedB := bInputs[:capacity]
		unpackedBTags := tags[:capacity]
		rShare := NewShare(rVal.Widen(p.ksField), tags[capacity])
		mShare := NewShare(mVal.Widen(p.ksField), tags[capacity+1])
		batchCheckMask := mShare.Add(rShare.Lsh(p.kField.Bits()))

		for i, a := range wideA {
			wideC[i] = a.Mul(unpackedB[i].Widen(p.kssField))
			wideCTags[i] = a.Mul(unpackedBTags[i].Widen(p.kssField))
		}

		unpackedWideB := p.widenAll(unpackedB, p.kssField)
		unpackedWideBTags := p.widenAll(unpackedBTags, p.kssField)

		unpackedE := make([][]residue.NativeResidue, 3)
		for i := range unpackedE {
			unpackedE[i] = make([]residue.NativeResidue, capacity)
			for j := range unpackedE[i] {
				unpackedE[i][j] = uniformNative(p.prng, p.kssField)
			}
		}

		sendErrCh := make(chan error, 1)
		recvErrCh := make(chan error, 1)

		go func() {
			var outgoing [3]she.Ciphertext
			for i := 0; i < 3; i++ {
				var plain poly.PowerPoly[residue.NativeResidue]
				switch i {
				case 0:
					plain = p.packDiagonalPower(p.macKey.Widen(p.ctx.Built.PlaintextField))
				case 1:
					plain = p.packPower(p.widenAll(unpackedWideB, p.ctx.Built.PlaintextField))
				default:
					plain = p.packPower(p.widenAll(unpackedWideBTags, p.ctx.Built.PlaintextField))
				}
				cipherD := p.ctx.MulPlain(cipherA, plain)
				maskPower := p.packMaskPower(p.widenAll(unpackedE[i], p.ctx.Built.PlaintextField))
				drownCT, _, _ := p.ctx.EncryptAndDrown(p.prng, p.remotePK, maskPower, p.ctx.MaxDrownBits())
				outgoing[i] = p.ctx.SubCiphertexts(cipherD, drownCT)
			}
			sendErrCh <- p.chCiphertextBack.Send(outgoing)
		}()

		go func() {
			incoming, err := p.chCiphertextBack.Recv()
			if err != nil {
				recvErrCh <- err
				return
			}
			for i := 0; i < 3; i++ {
				plainD := p.ctx.Decrypt(p.sk, incoming[i])
				unpackedD := p.unpack(plainD)
				var target []residue.NativeResidue
				switch i {
				case 0:
					target = wideATags
				case 1:
					target = wideC
				default:
					target = wideCTags
				}
				for j := range target {
					d := unpackedD[j].Widen(p.kssField)
					target[j] = target[j].Add(d).Add(unpackedE[i][j])
				}
			}
			recvErrCh <- nil
		}()

		if err := <-sendErrCh; err != nil {
			return nil, err
		}
		if err := <-recvErrCh; err != nil {
			return nil, err
		}

		a, aTags, c, cTags, err := p.truncer.Truncate(
			wideA, wideATags, unpackedB, unpackedBTags, wideC, wideCTags,
			p.ksField, p.kssField, p.isParty0,
		)
		if err != nil {
			return nil, err
		}

		for i := range a {
			triples = append(triples, BeaverTriple{
				A: NewShare(a[i], aTags[i]),
				B: NewShare(unpackedB[i].Widen(p.ksField), unpackedBTags[i]),
				C: NewShare(c[i], cTags[i]),
			})
		}

		if err := p.opener.BatchCheck(nil, batchCheckMask); err != nil {
			return nil, err
		}
	}

	if len(p.aStack) != 0 {
		return nil, xerrors.NewProtocolError("preprocessor: a_stack not drained at end of batch", nil)
	}

	return triples, nil
}

// Finish closes every subprotocol's streams and this orchestrator's own,
// per low_gear_preproc/mod.rs's finish (implicitly: dropping the struct
// drops every BiChannel, each of which carries its own stream teardown).
func (p *Preprocessor) Finish() error {
	if err := p.dealer.Finish(); err != nil {
		return err
	}
	if err := p.opener.Finish(); err != nil {
		return err
	}
	if err := p.truncer.Finish(); err != nil {
		return err
	}
	for _, closer := range []interface{ Close() error }{
		p.chInit, p.chCiphertextThere, p.chCommitment, p.chChallenge, p.chResponse, p.chCiphertextBack,
	} {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	return nil
}
