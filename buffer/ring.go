// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ik5/avstream/stream"
)

// ring is the slot engine shared by SampleStream and FrameStream.
//
// mu guards head, filled, eos, err, stop and closed. The producer writes
// only the slot at (head+filled) mod capacity, which the consumer never
// touches until filled is incremented under mu, so slot payloads are handed
// over by that lock alone. readMu is held by the wrapper across Read, Seek
// and Close so a read never observes a ring being reset.
type ring[T any] struct {
	readMu sync.Mutex

	mu     sync.Mutex
	cond   *sync.Cond
	slots  []T
	head   int
	filled int
	eos    bool
	err    error
	stop   bool
	closed bool
	done   chan struct{}

	fill    func(slot *T) error
	log     *slog.Logger
	metrics *metrics
}

func newRing[T any](slots []T, fill func(*T) error, log *slog.Logger, m *metrics) *ring[T] {
	r := &ring[T]{
		slots:   slots,
		fill:    fill,
		log:     log,
		metrics: m,
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// start resets the ring and launches a producer. The previous producer, if
// any, must have been halted.
func (r *ring[T]) start() {
	r.mu.Lock()
	r.head, r.filled = 0, 0
	r.eos, r.err, r.stop = false, nil, false
	done := make(chan struct{})
	r.done = done
	r.metrics.setFilled(0)
	r.mu.Unlock()

	go r.produce(done)
}

// halt stops the producer and waits for it to exit. Production is bounded
// by one source call, so halt returns once an in-flight fill completes.
func (r *ring[T]) halt() {
	r.mu.Lock()
	r.stop = true
	done := r.done
	r.cond.Broadcast()
	r.mu.Unlock()

	if done != nil {
		<-done
	}
}

// fail discards buffered slots and leaves the ring drained with err, which
// every following next call reports.
func (r *ring[T]) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head, r.filled = 0, 0
	r.eos, r.err = true, err
	r.metrics.setFilled(0)
}

func (r *ring[T]) produce(done chan struct{}) {
	defer close(done)

	r.log.Debug("buffer producer started")
	defer r.log.Debug("buffer producer stopped")

	for {
		r.mu.Lock()
		for !r.stop && r.filled == len(r.slots) {
			r.cond.Wait()
		}
		if r.stop {
			r.mu.Unlock()
			return
		}
		slot := &r.slots[(r.head+r.filled)%len(r.slots)]
		r.mu.Unlock()

		err := r.safeFill(slot)

		r.mu.Lock()
		if r.stop {
			r.mu.Unlock()
			return
		}
		switch {
		case err == nil:
			r.filled++
			r.metrics.setFilled(r.filled)
		case errors.Is(err, io.EOF):
			r.eos = true
		default:
			r.eos, r.err = true, err
			r.metrics.producerErrors.Inc()
			r.log.Warn("buffer source read failed", "error", err)
		}
		finished := r.eos
		r.cond.Broadcast()
		r.mu.Unlock()

		if finished {
			return
		}
	}
}

func (r *ring[T]) safeFill(slot *T) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: %v", ErrSourcePanic, v)
			r.log.Error("buffer source panicked", "panic", v)
		}
	}()
	return r.fill(slot)
}

// next returns the oldest filled slot. When the ring is empty and wait is
// set it blocks until the producer deposits a slot or reaches the end. It
// returns a nil slot with a nil error when wait is unset and nothing is
// buffered, and io.EOF or the deferred source error once drained.
func (r *ring[T]) next(wait bool) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if wait && r.filled == 0 && !r.eos && !r.stop {
		r.metrics.underruns.Inc()
		for r.filled == 0 && !r.eos && !r.stop {
			r.cond.Wait()
		}
	}

	switch {
	case r.closed:
		return nil, stream.ErrClosed
	case r.filled > 0:
		return &r.slots[r.head], nil
	case r.eos && r.err != nil:
		return nil, r.err
	case r.eos:
		return nil, io.EOF
	}
	return nil, nil
}

// release hands the oldest slot back to the producer.
func (r *ring[T]) release() {
	r.mu.Lock()
	r.head = (r.head + 1) % len(r.slots)
	r.filled--
	r.metrics.setFilled(r.filled)
	r.cond.Broadcast()
	r.mu.Unlock()
}

// markClosed flags the ring closed and wakes a blocked reader. It reports
// false when the ring was already closed.
func (r *ring[T]) markClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.closed = true
	r.stop = true
	r.cond.Broadcast()
	return true
}

func (r *ring[T]) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// shutdown joins the producer and drops the slots. The caller holds readMu.
func (r *ring[T]) shutdown() {
	r.halt()
	r.mu.Lock()
	r.slots = nil
	r.head, r.filled = 0, 0
	r.metrics.release()
	r.mu.Unlock()
}

// stats returns the fill level and capacity.
func (r *ring[T]) stats() (filled, capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filled, len(r.slots)
}
