package transport_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haslersn/multipars/transport"
)

func TestConnectionForkAndExchange(t *testing.T) {
	const p0Addr = "127.0.0.1:18451"
	const p1Addr = "127.0.0.1:18452"

	var wg sync.WaitGroup
	wg.Add(2)

	errs := make(chan error, 2)

	run := func(local, remote string, payload int32) {
		defer wg.Done()
		conn, err := transport.New(local, remote)
		if err != nil {
			errs <- err
			return
		}
		defer conn.Close()

		conn2 := conn.Fork()
		conn3 := conn.Fork()
		conn4 := conn2.Fork()

		var innerWG sync.WaitGroup
		innerWG.Add(4)
		exchange := func(c *transport.Connection, v int32) {
			defer innerWG.Done()
			ch, err := transport.OpenBiChannel[int32](c, "test")
			if err != nil {
				errs <- err
				return
			}
			defer ch.Close()
			if err := ch.Send(v); err != nil {
				errs <- err
				return
			}
			got, err := ch.Recv()
			if err != nil {
				errs <- err
				return
			}
			if got != v {
				errs <- fmt.Errorf("payload mismatch: want %d, got %d", v, got)
			}
		}
		go exchange(conn, payload)
		go exchange(conn2, payload+1)
		go exchange(conn3, payload+2)
		go exchange(conn4, payload+3)
		innerWG.Wait()
	}

	go run(p0Addr, p1Addr, 1)
	go run(p1Addr, p0Addr, 1)

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
