package broadcast

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Receiver is an independent read cursor into a Channel.
type Receiver[T any] struct {
	id     string
	ch     *Channel[T]
	cursor uint64
	closed atomic.Bool
}

func newReceiver[T any](ch *Channel[T], cursor uint64) *Receiver[T] {
	return &Receiver[T]{
		id:     uuid.NewString(),
		ch:     ch,
		cursor: cursor,
	}
}

// ID returns the unique receiver identifier.
func (r *Receiver[T]) ID() string {
	return r.id
}

// Resubscribe returns a new receiver on the same channel, positioned after
// the most recently published value. It does not copy r's cursor.
func (r *Receiver[T]) Resubscribe() *Receiver[T] {
	return r.ch.Subscribe()
}

// Recv blocks until the next value is available, the channel is closed and
// drained (ErrClosed), or ctx is done (ctx.Err()). If the receiver fell
// behind, Recv returns a *LagError and the following call continues with
// the oldest retained value.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	for {
		v, wait, err := r.poll()
		if err != nil || wait == nil {
			return v, err
		}

		select {
		case <-wait:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// TryRecv returns the next value without blocking, or ErrEmpty.
func (r *Receiver[T]) TryRecv() (T, error) {
	v, wait, err := r.poll()
	if err == nil && wait != nil {
		return v, ErrEmpty
	}
	return v, err
}

// poll performs one non-blocking read. A non-nil wait channel means no
// value is ready yet.
func (r *Receiver[T]) poll() (T, <-chan struct{}, error) {
	var zero T
	if r.closed.Load() {
		return zero, nil, ErrReceiverClosed
	}

	v, cursor, skipped, wait, err := r.ch.next(r.cursor)
	r.cursor = cursor
	if skipped > 0 {
		r.ch.lagged.Add(skipped)
		if r.ch.onLag != nil {
			r.ch.onLag(r.id, skipped)
		}
		return zero, nil, &LagError{ReceiverID: r.id, Skipped: skipped}
	}
	return v, wait, err
}

// Close unsubscribes the receiver. Close is idempotent.
func (r *Receiver[T]) Close() {
	if r.closed.CompareAndSwap(false, true) {
		r.ch.receivers.Add(-1)
	}
}
