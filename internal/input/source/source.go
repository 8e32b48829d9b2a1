package source

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/dshills/keyseq/internal/event/broadcast"
	"github.com/dshills/keyseq/internal/input/key"
	"github.com/dshills/keyseq/internal/logging"
	"github.com/dshills/keyseq/internal/renderer/backend"
)

// ErrInterrupted is returned by Run when the interrupt combination is read.
var ErrInterrupted = errors.New("interrupted by user")

// Publisher accepts classified tokens. *broadcast.Channel[key.Token]
// satisfies it.
type Publisher interface {
	Publish(tok key.Token) error
}

// Source reads events from a backend and publishes key tokens.
type Source struct {
	backend     backend.Backend
	tokens      Publisher
	onInterrupt func()
	logger      *logging.Logger

	running atomic.Bool

	// Stats
	keyEvents atomic.Uint64
	published atomic.Uint64
	discarded atomic.Uint64
}

// Option configures a Source.
type Option func(*Source)

// WithInterruptHandler sets the function called when Ctrl+C is read.
func WithInterruptHandler(fn func()) Option {
	return func(s *Source) {
		s.onInterrupt = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Source) {
		s.logger = l
	}
}

// New creates a Source reading from b and publishing to tokens.
func New(b backend.Backend, tokens Publisher, opts ...Option) *Source {
	s := &Source{
		backend: b,
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNull(s.logger).WithComponent("source")
	return s
}

// Run reads events until ctx is done, the backend is closed, or the
// interrupt combination arrives. Only one Run may be active at a time.
//
// Run returns nil on cancellation or backend close, and ErrInterrupted
// after Ctrl+C. PollEvent cannot observe ctx, so callers shut the backend
// down to unblock a Run whose context has been cancelled.
func (s *Source) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("source already running")
	}
	defer s.running.Store(false)

	for {
		if ctx.Err() != nil {
			return nil
		}

		ev := s.backend.PollEvent()
		switch ev.Type {
		case backend.EventClosed:
			s.logger.Debug("backend closed")
			return nil
		case backend.EventKey:
			if err := s.handleKey(ToKeyEvent(ev)); err != nil {
				return err
			}
		}
	}
}

// handleKey classifies one key event and publishes the resulting token.
func (s *Source) handleKey(ev key.Event) error {
	s.keyEvents.Add(1)

	if key.IsInterrupt(ev) {
		s.logger.Info("interrupt received")
		if s.onInterrupt != nil {
			s.onInterrupt()
		}
		return ErrInterrupted
	}

	tok, ok := key.Classify(ev)
	if !ok {
		s.discarded.Add(1)
		return nil
	}

	// Fan-out errors (no receivers, closed channel) are expected and never
	// stall the reader. A token with no receivers was still accepted.
	err := s.tokens.Publish(tok)
	if err != nil {
		s.logger.Debug("publish %s: %v", tok, err)
	}
	if err == nil || errors.Is(err, broadcast.ErrNoReceivers) {
		s.published.Add(1)
	}
	return nil
}

// Stats returns a snapshot of source statistics.
func (s *Source) Stats() Stats {
	return Stats{
		KeyEvents: s.keyEvents.Load(),
		Published: s.published.Load(),
		Discarded: s.discarded.Load(),
	}
}

// Stats contains source statistics.
type Stats struct {
	// KeyEvents is the number of key events read, including Ctrl+C.
	KeyEvents uint64
	// Published is the number of tokens the publisher accepted, including
	// those published while nobody was subscribed.
	Published uint64
	// Discarded is the number of key events that did not classify.
	Discarded uint64
}
