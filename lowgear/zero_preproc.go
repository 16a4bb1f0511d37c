package lowgear

import "github.com/haslersn/multipars/residue"

// ZeroPreprocessor is a Preprocessor that returns all-zero triples
// instantly, with no networking at all. It exists to benchmark the cost of
// everything AROUND preprocessing (MPC orchestration, the online phase)
// independent of the BGV machinery, per original_source/src/zero_preproc.rs.
type ZeroPreprocessor struct {
	field *residue.NativeField
}

// NewZeroPreprocessor returns a ZeroPreprocessor over the KS-bit share
// ring.
func NewZeroPreprocessor(field *residue.NativeField) *ZeroPreprocessor {
	return &ZeroPreprocessor{field: field}
}

func (z *ZeroPreprocessor) GetBeaverTriples(n int) ([]BeaverTriple, error) {
	zero := ZeroShare(z.field)
	triples := make([]BeaverTriple, n)
	for i := range triples {
		triples[i] = BeaverTriple{A: zero, B: zero, C: zero}
	}
	return triples, nil
}

func (z *ZeroPreprocessor) Finish() error { return nil }
