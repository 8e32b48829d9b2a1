package sequence

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/dshills/keyseq/internal/event/broadcast"
	"github.com/dshills/keyseq/internal/input/key"
	"github.com/dshills/keyseq/internal/logging"
)

// Errors returned by the Accumulator.
var (
	// ErrAlreadyStarted is returned when Run is called more than once.
	ErrAlreadyStarted = errors.New("accumulator already started")

	// ErrNoPublisher is returned by Subscribe when no snapshot channel is set.
	ErrNoPublisher = errors.New("accumulator has no snapshot publisher")
)

// Accumulator owns the sequence buffer. Create it with New and start it
// with Run.
type Accumulator struct {
	snapshots *broadcast.Channel[string]
	logger    *logging.Logger

	requests chan chan string
	started  atomic.Bool
	done     chan struct{}
	final    string // written once before done is closed

	// Stats
	applied atomic.Uint64
	emitted atomic.Uint64
	ignored atomic.Uint64
	lagged  atomic.Uint64
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithPublisher sets the channel snapshots are published on. The
// accumulator closes it when Run returns.
func WithPublisher(ch *broadcast.Channel[string]) Option {
	return func(a *Accumulator) {
		a.snapshots = ch
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Accumulator) {
		a.logger = l
	}
}

// New creates an idle Accumulator with an empty buffer.
func New(opts ...Option) *Accumulator {
	a := &Accumulator{
		requests: make(chan chan string),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.OrNull(a.logger).WithComponent("sequence")
	return a
}

// Subscribe returns a new snapshot receiver. It sees only snapshots
// published after the call.
func (a *Accumulator) Subscribe() (*broadcast.Receiver[string], error) {
	if a.snapshots == nil {
		return nil, ErrNoPublisher
	}
	return a.snapshots.Subscribe(), nil
}

// Done is closed when Run has returned.
func (a *Accumulator) Done() <-chan struct{} {
	return a.done
}

// Run consumes tokens until ctx is done or the token channel closes, then
// closes the snapshot channel. It returns nil in both cases. Lag on the
// token subscription is logged and counted; accumulation continues with
// the oldest token still retained.
func (a *Accumulator) Run(ctx context.Context, tokens *broadcast.Receiver[key.Token]) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan key.Token)
	go a.forward(ctx, tokens, in)

	var buf []rune
	defer func() {
		a.final = string(buf)
		if a.snapshots != nil {
			a.snapshots.Close()
		}
		close(a.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case tok, ok := <-in:
			if !ok {
				return nil
			}
			buf = a.handle(buf, tok)

		case reply := <-a.requests:
			reply <- string(buf)
		}
	}
}

// forward moves tokens from the subscription onto in, closing in when the
// subscription ends.
func (a *Accumulator) forward(ctx context.Context, tokens *broadcast.Receiver[key.Token], in chan<- key.Token) {
	defer close(in)

	for {
		tok, err := tokens.Recv(ctx)
		var lag *broadcast.LagError
		switch {
		case errors.As(err, &lag):
			a.lagged.Add(lag.Skipped)
			a.logger.Warn("token subscription lagged, %d tokens lost", lag.Skipped)
			continue
		case errors.Is(err, broadcast.ErrClosed):
			a.logger.Debug("token channel closed")
			return
		case err != nil:
			return
		}

		select {
		case in <- tok:
		case <-ctx.Done():
			return
		}
	}
}

// handle applies one token and emits a snapshot when the buffer changed.
func (a *Accumulator) handle(buf []rune, tok key.Token) []rune {
	buf, res := apply(buf, tok)
	switch res {
	case ignored:
		a.ignored.Add(1)
		a.logger.Debug("ignored %s", tok)
		return buf
	case unchanged:
		a.applied.Add(1)
		return buf
	}

	a.applied.Add(1)
	if a.snapshots != nil {
		// Nobody listening is fine; the buffer stays authoritative.
		_ = a.snapshots.Publish(string(buf))
		a.emitted.Add(1)
	}
	return buf
}

// String returns the current buffer contents. Before Run starts it is
// empty; after Run returns it is the final contents.
func (a *Accumulator) String(ctx context.Context) (string, error) {
	select {
	case <-a.done:
		return a.final, nil
	default:
	}
	if !a.started.Load() {
		return "", nil
	}

	reply := make(chan string, 1)
	select {
	case a.requests <- reply:
		return <-reply, nil
	case <-a.done:
		return a.final, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Stats returns a snapshot of accumulator statistics.
func (a *Accumulator) Stats() Stats {
	return Stats{
		Applied: a.applied.Load(),
		Emitted: a.emitted.Load(),
		Ignored: a.ignored.Load(),
		Lagged:  a.lagged.Load(),
	}
}

// Stats contains accumulator statistics.
type Stats struct {
	// Applied counts tokens that acted on the buffer, including no-op backspaces.
	Applied uint64
	// Emitted counts published snapshots.
	Emitted uint64
	// Ignored counts tokens with no sequence meaning (tab).
	Ignored uint64
	// Lagged counts tokens lost to subscription overflow.
	Lagged uint64
}
