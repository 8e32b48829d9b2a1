package broadcast

import (
	"sync"
	"sync/atomic"
)

// DefaultCapacity matches the small buffers used for key input.
const DefaultCapacity = 8

// Channel is a bounded fan-out channel. The zero value is not usable;
// create channels with New.
type Channel[T any] struct {
	mu     sync.Mutex
	ring   []T
	head   uint64 // sequence number of the next value to publish
	closed bool

	// notify is closed and replaced on every publish and on Close so that
	// waiting receivers can select on it alongside their context.
	notify chan struct{}

	receivers atomic.Int64

	// Stats
	published   atomic.Uint64
	noReceivers atomic.Uint64
	lagged      atomic.Uint64
	onLag       func(receiverID string, skipped uint64)
}

// Option configures a Channel.
type Option func(*options)

type options struct {
	onLag func(receiverID string, skipped uint64)
}

// WithLagHook registers fn to be called whenever a receiver skips values.
// fn runs on the lagging receiver's goroutine.
func WithLagHook(fn func(receiverID string, skipped uint64)) Option {
	return func(o *options) {
		o.onLag = fn
	}
}

// New creates a channel retaining up to capacity values.
// A capacity below 1 is replaced by DefaultCapacity.
func New[T any](capacity int, opts ...Option) *Channel[T] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Channel[T]{
		ring:   make([]T, capacity),
		notify: make(chan struct{}),
		onLag:  o.onLag,
	}
}

// Cap returns the number of values the channel retains.
func (c *Channel[T]) Cap() int {
	return len(c.ring)
}

// Publish appends v for every current receiver. It never blocks.
// It returns ErrNoReceivers when nobody is subscribed and ErrClosed after
// Close; in both cases nothing is waiting for v and the error is
// informational.
func (c *Channel[T]) Publish(v T) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.ring[c.head%uint64(len(c.ring))] = v
	c.head++
	c.wakeLocked()
	c.mu.Unlock()

	c.published.Add(1)
	if c.receivers.Load() == 0 {
		c.noReceivers.Add(1)
		return ErrNoReceivers
	}
	return nil
}

// Subscribe returns a new receiver positioned after the most recently
// published value.
func (c *Channel[T]) Subscribe() *Receiver[T] {
	c.mu.Lock()
	next := c.head
	c.mu.Unlock()

	c.receivers.Add(1)
	return newReceiver(c, next)
}

// Close marks the channel closed. Receivers drain retained values and then
// get ErrClosed. Close is idempotent.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.wakeLocked()
}

// IsClosed returns true once Close has been called.
func (c *Channel[T]) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ReceiverCount returns the number of open receivers.
func (c *Channel[T]) ReceiverCount() int {
	return int(c.receivers.Load())
}

// Stats returns a snapshot of channel statistics.
func (c *Channel[T]) Stats() Stats {
	return Stats{
		Published:   c.published.Load(),
		NoReceivers: c.noReceivers.Load(),
		Lagged:      c.lagged.Load(),
		Receivers:   int(c.receivers.Load()),
	}
}

// wakeLocked wakes every receiver blocked in Recv. c.mu must be held.
func (c *Channel[T]) wakeLocked() {
	close(c.notify)
	c.notify = make(chan struct{})
}

// next returns the value at sequence seq or reports why it cannot.
// The returned cursor is where the receiver should continue.
func (c *Channel[T]) next(seq uint64) (v T, cursor uint64, skipped uint64, wait <-chan struct{}, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := uint64(len(c.ring))
	var oldest uint64
	if c.head > size {
		oldest = c.head - size
	}

	switch {
	case seq < oldest:
		return v, oldest, oldest - seq, nil, nil
	case seq < c.head:
		return c.ring[seq%size], seq + 1, 0, nil, nil
	case c.closed:
		return v, seq, 0, nil, ErrClosed
	default:
		return v, seq, 0, c.notify, nil
	}
}

// Stats contains channel statistics.
type Stats struct {
	// Published is the number of values accepted by Publish.
	Published uint64

	// NoReceivers counts publishes that happened with nobody subscribed.
	NoReceivers uint64

	// Lagged is the total number of values skipped across all receivers.
	Lagged uint64

	// Receivers is the number of open receivers.
	Receivers int
}
