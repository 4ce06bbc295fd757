package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/onsails/prosto/errs"
)

// Mailbox is a bounded FIFO queue connecting two stages.
//
// The producer calls Send and, after its last Send, Close. The consumer calls Recv and,
// if it stops early, Drop. Send blocks while the mailbox is full; this is the only
// backpressure in an actor pipeline.
type Mailbox[T any] struct {
	ch chan T

	closed    chan struct{}
	closeOnce sync.Once

	dropped  chan struct{}
	dropOnce sync.Once
}

// NewMailbox creates a mailbox holding up to capacity values. It panics if capacity < 1.
func NewMailbox[T any](capacity int) *Mailbox[T] {
	if capacity < 1 {
		panic(fmt.Sprintf("%v: %d", errs.ErrInvalidCapacity, capacity))
	}

	return &Mailbox[T]{
		ch:      make(chan T, capacity),
		closed:  make(chan struct{}),
		dropped: make(chan struct{}),
	}
}

// Send enqueues v, blocking while the mailbox is full.
//
// Returns a KindChannelClosed error if the consumer dropped the mailbox or the producer
// already closed it, and ctx.Err() if ctx is done first.
func (m *Mailbox[T]) Send(ctx context.Context, v T) error {
	select {
	case <-m.dropped:
		return errs.ChannelClosed("mailbox send")
	case <-m.closed:
		return errs.ChannelClosed("mailbox send")
	default:
	}

	select {
	case m.ch <- v:
		return nil
	case <-m.dropped:
		return errs.ChannelClosed("mailbox send")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv dequeues the next value, blocking while the mailbox is empty.
//
// Returns io.EOF once the mailbox is closed and drained, a KindChannelClosed error after
// Drop, and ctx.Err() if ctx is done first.
func (m *Mailbox[T]) Recv(ctx context.Context) (T, error) {
	var zero T

	select {
	case <-m.dropped:
		return zero, errs.ChannelClosed("mailbox recv")
	default:
	}

	select {
	case v := <-m.ch:
		return v, nil
	case <-m.closed:
		// values sent before Close are still delivered
		select {
		case v := <-m.ch:
			return v, nil
		default:
			return zero, io.EOF
		}
	case <-m.dropped:
		return zero, errs.ChannelClosed("mailbox recv")
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close marks the end of the stream. It is called by the producer and is idempotent.
func (m *Mailbox[T]) Close() {
	m.closeOnce.Do(func() {
		close(m.closed)
	})
}

// Drop tells the producer that nothing will be received anymore. It is called by the
// consumer and is idempotent. Pending and future sends fail with a KindChannelClosed error.
func (m *Mailbox[T]) Drop() {
	m.dropOnce.Do(func() {
		close(m.dropped)
	})
}

// Len returns the number of queued values.
func (m *Mailbox[T]) Len() int {
	return len(m.ch)
}

// Cap returns the capacity of the mailbox.
func (m *Mailbox[T]) Cap() int {
	return cap(m.ch)
}
