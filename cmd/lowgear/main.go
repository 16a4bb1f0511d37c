// Command lowgear runs the Low-Gear two-party preprocessor, spec.md §6's
// CLI, grounded on original_source/examples/low_gear.rs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/haslersn/multipars/internal/log"
	"github.com/haslersn/multipars/lowgear"
	"github.com/haslersn/multipars/params"
	"github.com/haslersn/multipars/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	p0Addr := flag.String("p0-addr", "[::1]:50051", "party 0's listen/connect address")
	p1Addr := flag.String("p1-addr", "[::1]:50052", "party 1's listen/connect address")
	player := flag.String("player", "both", "which party to run: zero, one, or both")
	batches := flag.Int("batches", 1, "number of Beaver-triple batches to produce")
	threads := flag.Int("threads", 1, "size of the worker pool (unused by the Go scheduler, kept for flag compatibility)")
	k := flag.Uint("k", 32, "bit width of the Beaver-triple ring: 32, 64, or 128")
	s := flag.Uint("s", 32, "statistical security parameter: 32 or 64")
	toy := flag.Bool("toy", false, "use the small toy parameter set instead of -k/-s")
	flag.Parse()

	_ = threads // GOMAXPROCS already sizes Go's own work-stealing scheduler.

	set, ok := params.ByFlags(*k, *s, *toy)
	if !ok {
		return fmt.Errorf("lowgear: unsupported parameter combination -k=%d -s=%d -toy=%v", *k, *s, *toy)
	}

	switch *player {
	case "zero":
		return runPlayer(set, *p0Addr, *p1Addr, true, *batches)
	case "one":
		return runPlayer(set, *p1Addr, *p0Addr, false, *batches)
	case "both":
		errCh := make(chan error, 2)
		go func() { errCh <- runPlayer(set, *p0Addr, *p1Addr, true, *batches) }()
		go func() { errCh <- runPlayer(set, *p1Addr, *p0Addr, false, *batches) }()
		err0 := <-errCh
		err1 := <-errCh
		return errors.Join(err0, err1)
	default:
		return fmt.Errorf("lowgear: unknown -player %q, want zero, one, or both", *player)
	}
}

func runPlayer(set params.Set, localAddr, remoteAddr string, isParty0 bool, batches int) error {
	built, err := params.Build(set)
	if err != nil {
		return err
	}

	conn, err := transport.New(localAddr, remoteAddr)
	if err != nil {
		return err
	}

	preproc, err := lowgear.NewPreprocessor(conn, built, isParty0, set.ZKPoPKAmortize, set.ZKPoPKSndSec)
	if err != nil {
		return err
	}

	start := time.Now()
	total := 0
	for i := 0; i < batches; i++ {
		triples, err := preproc.GetBeaverTriplesBatch()
		if err != nil {
			_ = preproc.Finish()
			return err
		}
		total += len(triples)
	}
	elapsed := time.Since(start)

	if err := preproc.Finish(); err != nil {
		return err
	}

	log.Info("%s: produced %d Beaver triples in %s (%.0f/s)", localAddr, total, elapsed, float64(total)/elapsed.Seconds())
	return nil
}
