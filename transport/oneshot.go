package transport

import (
	"fmt"
	"sync"
)

// oneshotMap pairs a producer and a consumer of the same key, whichever
// arrives first creating the slot the other side waits on, directly
// grounded on original_source/src/oneshot_map.rs's OneshotMap. Used to
// correlate an accepted inbound TCP connection with the OpenBi call that
// is waiting for it by hierarchical stream ID.
type oneshotMap[K comparable, V any] struct {
	mu      sync.Mutex
	pending map[K]*oneshotSlot[V]
}

type oneshotSlot[V any] struct {
	ch   chan V
	sent bool
}

func newOneshotMap[K comparable, V any]() *oneshotMap[K, V] {
	return &oneshotMap[K, V]{pending: make(map[K]*oneshotSlot[V])}
}

func (m *oneshotMap[K, V]) slotFor(k K) *oneshotSlot[V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.pending[k]
	if !ok {
		slot = &oneshotSlot[V]{ch: make(chan V, 1)}
		m.pending[k] = slot
	}
	return slot
}

// Send delivers v to whoever calls Recv with the same key. Returns an
// error if this key was already sent to once, mirroring the original's
// "duplicate ID" rejection.
func (m *oneshotMap[K, V]) Send(k K, v V) error {
	slot := m.slotFor(k)
	m.mu.Lock()
	if slot.sent {
		m.mu.Unlock()
		return fmt.Errorf("oneshot map: duplicate send for key %v", k)
	}
	slot.sent = true
	m.mu.Unlock()
	slot.ch <- v
	return nil
}

// Recv blocks until a value is sent for k.
func (m *oneshotMap[K, V]) Recv(k K) V {
	slot := m.slotFor(k)
	return <-slot.ch
}
