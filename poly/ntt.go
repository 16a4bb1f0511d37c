package poly

import (
	"runtime"

	"github.com/haslersn/multipars/residue"
)

// FFT computes the number-theoretic transform of input in place using the
// supplied root-powers table (rootPowers[i] = root^i). With inverse true the
// twiddle indices are negated mod n, so the same table yields the inverse
// transform; a forward call with the inverse root's powers is equivalent.
// len(input) must be a power of two. This mirrors ring/ntt.go's butterfly/pass
// structure, generalized from a fixed uint64 modulus to any
// residue.PrimeResidue field, and yields control to the scheduler after
// each pass per spec.md §5's suspension-point contract.
//
// The transform is self-inverse up to scaling by n: after calling FFT with
// inverse=true, the caller must multiply every output by n^-1 mod q.
func FFT(rootPowers []residue.PrimeResidue, inverse bool, input []residue.PrimeResidue) []residue.PrimeResidue {
	n := len(input)
	buf := make([]residue.PrimeResidue, n)
	copy(buf, input)
	out := make([]residue.PrimeResidue, n)

	for size := 1; size < n; size <<= 1 {
		count := n / (2 * size)
		for i := 0; i < count; i++ {
			for j := 0; j < size; j++ {
				twiddle := count * j
				if inverse && j != 0 {
					twiddle = count * (n - j) % n
				}
				lo := buf[size*i+j]
				hi := buf[size*i+j+n/2]
				if j != 0 {
					hi = hi.Mul(rootPowers[twiddle])
				}
				out[size*2*i+j] = lo.Add(hi)
				out[size*2*i+size+j] = lo.Sub(hi)
			}
		}
		buf, out = out, buf
		runtime.Gosched() // suspension point at each NTT pass boundary, per spec.md §5
	}
	return buf
}

// RootPowersTable builds rootPowers[i] = root^i for i in [0, n), used as
// the FFT's twiddle-factor table.
func RootPowersTable(root residue.PrimeResidue, n int) []residue.PrimeResidue {
	field := root.Field()
	table := make([]residue.PrimeResidue, n)
	acc := residue.FromInt64(field, 1)
	for i := 0; i < n; i++ {
		table[i] = acc
		acc = acc.Mul(root)
	}
	return table
}
