// Package bus provides the process-wide reload notification broadcast.
//
// A Bus fans unit-valued notifications out to any number of independently
// attached receivers. Publishing never blocks: each receiver carries its own
// unbounded pending queue, so a slow consumer can never stall the publisher
// or starve its peers. Receivers attached after a publish never observe it.
package bus

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Publish and Receive once the bus is torn down.
var ErrClosed = errors.New("bus: closed")

// Bus is a multi-producer, multi-consumer broadcast channel for reload
// notifications. The zero value is not usable; use New.
type Bus struct {
	mu        sync.Mutex
	receivers map[*Receiver]struct{}
	closed    bool
}

// New creates an empty bus with no attached receivers.
func New() *Bus {
	return &Bus{
		receivers: make(map[*Receiver]struct{}),
	}
}

// Publish delivers one notification to every receiver attached at the time
// of the call. It never blocks on consumers. Publishing on a closed bus
// returns ErrClosed.
func (b *Bus) Publish() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	receivers := make([]*Receiver, 0, len(b.receivers))
	for r := range b.receivers {
		receivers = append(receivers, r)
	}
	b.mu.Unlock()

	for _, r := range receivers {
		r.deliver()
	}

	return nil
}

// Attach registers a new receiver positioned at "now": it observes only
// notifications published after this call. Attaching to a closed bus
// returns a receiver that is already closed.
func (b *Bus) Attach() *Receiver {
	r := &Receiver{
		bus:  b,
		wake: make(chan struct{}, 1),
	}

	b.mu.Lock()
	if b.closed {
		r.closed = true
	} else {
		b.receivers[r] = struct{}{}
	}
	b.mu.Unlock()

	return r
}

// Close tears the bus down. All attached receivers unblock with ErrClosed
// and further publishes fail. Close is idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	receivers := make([]*Receiver, 0, len(b.receivers))
	for r := range b.receivers {
		receivers = append(receivers, r)
	}
	b.receivers = make(map[*Receiver]struct{})
	b.mu.Unlock()

	for _, r := range receivers {
		r.close()
	}
}

// ReceiverCount reports the number of currently attached receivers.
func (b *Bus) ReceiverCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.receivers)
}

// Receiver is one consumer's independent cursor onto the bus. Notifications
// carry no payload, so the pending queue is a counter: per-receiver FIFO
// order is implied.
type Receiver struct {
	bus *Bus

	mu      sync.Mutex
	pending int
	closed  bool

	// wake has capacity 1 and is written non-blockingly on every deliver
	// and on close; Receive drains it and re-checks state.
	wake chan struct{}
}

func (r *Receiver) deliver() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.pending++
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Receiver) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Receive blocks until a notification is available, the context is
// cancelled, or the bus is torn down. It returns nil exactly once per
// pending notification.
func (r *Receiver) Receive(ctx context.Context) error {
	for {
		r.mu.Lock()
		if r.pending > 0 {
			r.pending--
			r.mu.Unlock()
			return nil
		}
		if r.closed {
			r.mu.Unlock()
			return ErrClosed
		}
		r.mu.Unlock()

		select {
		case <-r.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// TryReceive consumes one pending notification without blocking. It reports
// whether a notification was consumed.
func (r *Receiver) TryReceive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending > 0 {
		r.pending--
		return true
	}
	return false
}

// Pending reports the number of undrained notifications.
func (r *Receiver) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Detach unregisters the receiver from the bus and unblocks any waiter with
// ErrClosed. Detaching twice is harmless.
func (r *Receiver) Detach() {
	r.bus.mu.Lock()
	delete(r.bus.receivers, r)
	r.bus.mu.Unlock()

	r.close()
}
