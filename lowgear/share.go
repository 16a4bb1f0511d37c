// Package lowgear implements the two-party Low-Gear preprocessing protocol
// of spec.md §4.10-4.13: an authenticated dealer that turns cleartext
// values into SPDZ2k value+MAC shares (§4.11), a MAC-check opener that
// safely reveals shared values (§4.10), a truncer that turns a "wide"
// product triple into a correctly-scaled Beaver triple (§4.12), and the
// preprocessor that orchestrates them, amortizing a ZKPoPK-proven batch of
// ciphertexts across many triples (§4.13). Grounded directly on
// original_source/src/{mac_check_opener,low_gear_dealer,low_gear_preproc}/*.rs.
//
// Unlike the original's const-generic Share<KS, K, const PID: usize>, every
// ring width here is a runtime value carried by residue.NativeField, so one
// concrete Share type serves every (k, s) parameter choice; the player
// index that original encodes as PID is an explicit isDealer/isParty0 bool
// parameter where it matters.
package lowgear

import (
	"math/big"

	"github.com/haslersn/multipars/residue"
)

// Share is one party's additive share of a value together with its SPDZ
// MAC tag, both elements of a wide ring (Z/2^{k+s} for dealer-issued
// shares, Z/2^{k+2s} mid-protocol), per interface.rs's Share<KS, K, PID>.
type Share struct {
	Val residue.NativeResidue
	Tag residue.NativeResidue
}

// NewShare builds a Share from an explicit value and tag.
func NewShare(val, tag residue.NativeResidue) Share {
	return Share{Val: val, Tag: tag}
}

// ZeroShare returns the additive identity over field.
func ZeroShare(field *residue.NativeField) Share {
	z := residue.NativeZero(field)
	return Share{Val: z, Tag: z}
}

// Add returns the share-wise sum, per interface.rs's AddAssign<Self>.
func (s Share) Add(other Share) Share {
	return Share{Val: s.Val.Add(other.Val), Tag: s.Tag.Add(other.Tag)}
}

// Sub returns the share-wise difference.
func (s Share) Sub(other Share) Share {
	return Share{Val: s.Val.Sub(other.Val), Tag: s.Tag.Sub(other.Tag)}
}

// Neg negates both components.
func (s Share) Neg() Share {
	return Share{Val: s.Val.Neg(), Tag: s.Tag.Neg()}
}

// MulScalar scales both the value and tag share by a public constant c,
// per interface.rs's MulAssign<K>.
func (s Share) MulScalar(c residue.NativeResidue) Share {
	return Share{Val: s.Val.Mul(c), Tag: s.Tag.Mul(c)}
}

// AddPublic adds a public constant c into the value share. Only the party
// designated isParty0 actually adds it, and the tag share is left
// unchanged: as in interface.rs's own Share::from(K) (marked there with a
// "TODO: Correct tag"), this protocol's public-constant addition does not
// adjust the MAC, relying on both parties tracking the same running
// correction out of band rather than folding it into the tag here.
func (s Share) AddPublic(c residue.NativeResidue, isParty0 bool) Share {
	if !isParty0 {
		return s
	}
	return Share{Val: s.Val.Add(c), Tag: s.Tag}
}

// Lsh left-shifts the value and tag share by n bits, used to place a
// K-bit share into the high bits of a wider ring before adding it to
// another share of that wider ring, per low_gear_preproc/mod.rs's
// `r << K::BITS`.
func (s Share) Lsh(n uint) Share {
	shift := func(r residue.NativeResidue) residue.NativeResidue {
		return residue.NativeFromUint(r.Field(), new(big.Int).Lsh(r.Retrieve(), n))
	}
	return Share{Val: shift(s.Val), Tag: shift(s.Tag)}
}

// BeaverTriple is one (a, b, c) triple with a*b = c over the shared value
// ring, per interface.rs's BeaverTriple.
type BeaverTriple struct {
	A, B, C Share
}
