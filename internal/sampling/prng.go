// Package sampling implements the keyed, clocked PRNG used throughout the
// BGV core and ZKPoPK for uniform and centered-binomial sampling. It is a
// direct adaptation of the teacher's ring/prng.go CRPGenerator: a blake2b
// hash, keyed for reproducibility in tests and seeded with fresh entropy in
// production, clocked forward one block at a time and buffered.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// PRNG is a keyed, clocked byte stream, mirroring ring/prng.go's
// CRPGenerator but generalized to emit into a caller-sized buffer rather
// than one ring-sized sum per clock.
type PRNG struct {
	hash  []byte // accumulator hashed forward each Clock
	key   []byte
	clock uint64
}

// NewKeyedPRNG returns a PRNG seeded with key. If key is nil, 32 bytes of
// crypto/rand entropy are used instead, matching ring/prng.go's
// NewKeyedPRNG(nil) contract.
func NewKeyedPRNG(key []byte) (*PRNG, error) {
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	seed := make([]byte, 32)
	copy(seed, key)
	return &PRNG{hash: seed, key: key}, nil
}

// Clock advances the PRNG by one block and fills buf with fresh output
// bytes (buf may be any length; internally blake2b-512 blocks are
// concatenated as needed).
func (p *PRNG) Clock(buf []byte) {
	out := make([]byte, 0, len(buf)+64)
	ctr := p.clock
	for len(out) < len(buf) {
		var ctrBytes [8]byte
		binary.BigEndian.PutUint64(ctrBytes[:], ctr)
		h, _ := blake2b.New512(p.key)
		h.Write(p.hash)
		h.Write(ctrBytes[:])
		sum := h.Sum(nil)
		out = append(out, sum...)
		ctr++
	}
	copy(buf, out[:len(buf)])
	p.hash = out[:32]
	p.clock = ctr
}

// UniformBigInt draws a uniform integer in [0, bound) via rejection
// sampling over Clock-ed bytes, mirroring ClockUniform's per-coefficient
// rejection loop.
func (p *PRNG) UniformBigInt(bound *big.Int) *big.Int {
	byteLen := (bound.BitLen() + 7) / 8
	if byteLen == 0 {
		byteLen = 1
	}
	buf := make([]byte, byteLen)
	for {
		p.Clock(buf)
		candidate := new(big.Int).SetBytes(buf)
		if candidate.Cmp(bound) < 0 {
			return candidate
		}
	}
}

// CenteredBinomial draws a centered-binomial sample with iters coin flips:
// sum of 2*iters fair bits, minus iters. Variance iters/2, per spec.md §4.5.
func (p *PRNG) CenteredBinomial(iters int) int64 {
	if iters == 0 {
		return 0
	}
	nBytes := (2*iters + 7) / 8
	buf := make([]byte, nBytes)
	p.Clock(buf)
	var ones int64
	for i := 0; i < 2*iters; i++ {
		byteIdx := i / 8
		bitIdx := uint(i % 8)
		if buf[byteIdx]&(1<<bitIdx) != 0 {
			ones++
		}
	}
	return ones - int64(iters)
}

// Bytes32 draws a fresh 32-byte value, used for ZKPoPK and MAC-check batch
// seeds.
func (p *PRNG) Bytes32() [32]byte {
	var out [32]byte
	p.Clock(out[:])
	return out
}
