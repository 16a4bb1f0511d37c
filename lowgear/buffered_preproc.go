package lowgear

// BufferedPreprocessor wraps a BatchedPreprocessor, prefetching batches on
// a background goroutine up to a configurable in-flight budget so that
// GetBeaverTriples never blocks on a full ZKPoPK round unless the buffer
// is actually empty, per original_source/src/buffered_preproc.rs. Where
// the original uses a pair of tokio Semaphores to bound the in-flight
// triple count, this port uses a single buffered channel of that capacity,
// Go's idiomatic equivalent of a counting semaphore plus queue combined.
type BufferedPreprocessor struct {
	inner   BatchedPreprocessor
	triples chan BeaverTriple
	errCh   chan error
	stop    chan struct{}
	done    chan struct{}
}

// NewBufferedPreprocessor starts the background producer goroutine,
// prefetching up to budget+inner.BatchSize() triples ahead of consumption.
func NewBufferedPreprocessor(inner BatchedPreprocessor, budget int) *BufferedPreprocessor {
	bp := &BufferedPreprocessor{
		inner:   inner,
		triples: make(chan BeaverTriple, budget+inner.BatchSize()),
		errCh:   make(chan error, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go bp.produce()
	return bp
}

func (bp *BufferedPreprocessor) produce() {
	defer close(bp.done)
	for {
		select {
		case <-bp.stop:
			bp.reportErr(bp.inner.Finish())
			return
		default:
		}

		batch, err := bp.inner.GetBeaverTriplesBatch()
		if err != nil {
			bp.reportErr(err)
			<-bp.stop
			return
		}

		for _, t := range batch {
			select {
			case bp.triples <- t:
			case <-bp.stop:
				bp.reportErr(bp.inner.Finish())
				return
			}
		}
	}
}

func (bp *BufferedPreprocessor) reportErr(err error) {
	if err == nil {
		return
	}
	select {
	case bp.errCh <- err:
	default:
	}
}

// GetBeaverTriples drains n triples from the prefetch buffer, blocking
// only if fewer than n are currently available.
func (bp *BufferedPreprocessor) GetBeaverTriples(n int) ([]BeaverTriple, error) {
	out := make([]BeaverTriple, 0, n)
	for len(out) < n {
		select {
		case t := <-bp.triples:
			out = append(out, t)
		case err := <-bp.errCh:
			return nil, err
		}
	}
	return out, nil
}

// Finish stops the producer goroutine and waits for it to drain, per
// buffered_preproc.rs's finish (which closes producer_sem and awaits the
// producer's termination signal).
func (bp *BufferedPreprocessor) Finish() error {
	close(bp.stop)
	<-bp.done
	select {
	case err := <-bp.errCh:
		return err
	default:
		return nil
	}
}
