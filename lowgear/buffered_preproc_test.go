package lowgear_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/lowgear"
	"github.com/haslersn/multipars/residue"
)

// fakeBatched is a minimal BatchedPreprocessor that hands out a fixed
// number of all-zero-triple batches before exhausting.
type fakeBatched struct {
	field      *residue.NativeField
	batchSize  int
	maxBatches int
	produced   atomic.Int32
	finished   atomic.Bool
}

func (f *fakeBatched) BatchSize() int { return f.batchSize }

func (f *fakeBatched) GetBeaverTriplesBatch() ([]lowgear.BeaverTriple, error) {
	if int(f.produced.Load()) >= f.maxBatches {
		return nil, errors.New("fakeBatched: exhausted")
	}
	f.produced.Add(1)
	zero := lowgear.ZeroShare(f.field)
	batch := make([]lowgear.BeaverTriple, f.batchSize)
	for i := range batch {
		batch[i] = lowgear.BeaverTriple{A: zero, B: zero, C: zero}
	}
	return batch, nil
}

func (f *fakeBatched) Finish() error {
	f.finished.Store(true)
	return nil
}

func TestBufferedPreprocessorDrainsBatches(t *testing.T) {
	field := residue.NewNativeField(64)
	inner := &fakeBatched{field: field, batchSize: 4, maxBatches: 10}
	bp := lowgear.NewBufferedPreprocessor(inner, 8)

	triples, err := bp.GetBeaverTriples(10)
	require.NoError(t, err)
	require.Len(t, triples, 10)

	more, err := bp.GetBeaverTriples(6)
	require.NoError(t, err)
	require.Len(t, more, 6)

	require.NoError(t, bp.Finish())
	require.True(t, inner.finished.Load())
}
