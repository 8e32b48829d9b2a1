package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/keyseq/internal/event/broadcast"
	"github.com/dshills/keyseq/internal/input/key"
	"github.com/dshills/keyseq/internal/renderer/backend"
)

func post(t *testing.T, b *backend.NullBackend, specs string) {
	t.Helper()
	events, err := key.ParseAll(specs)
	if err != nil {
		t.Fatalf("ParseAll(%q) failed: %v", specs, err)
	}
	for _, ev := range events {
		b.PostEvent(FromKeyEvent(ev))
	}
}

func runSource(t *testing.T, s *Source) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background())
	}()
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(time.Second):
		t.Fatal("Run() did not return")
		return nil
	}
}

func TestSource_PublishesClassifiedTokens(t *testing.T) {
	b := backend.NewNullBackend(80, 24)
	tokens := broadcast.New[key.Token](16)
	rx := tokens.Subscribe()
	defer rx.Close()

	s := New(b, tokens)
	post(t, b, "ab<Esc><Up><F1><Tab>c<BS><C-x>")
	b.PostEvent(backend.Event{Type: backend.EventResize, Width: 10, Height: 10})
	b.Shutdown()

	if err := wait(t, runSource(t, s)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []key.Token{
		key.Alphanumeric('a'),
		key.Alphanumeric('b'),
		key.NewSpecial(key.SpecialEsc),
		key.NewSpecial(key.SpecialTab),
		key.Alphanumeric('c'),
		key.NewSpecial(key.SpecialBackspace),
	}
	for i, w := range want {
		got, err := rx.TryRecv()
		if err != nil {
			t.Fatalf("TryRecv() #%d error = %v", i, err)
		}
		if got != w {
			t.Errorf("token %d = %v, want %v", i, got, w)
		}
	}
	if _, err := rx.TryRecv(); !errors.Is(err, broadcast.ErrEmpty) {
		t.Errorf("unexpected extra token, err = %v", err)
	}

	stats := s.Stats()
	if stats.KeyEvents != 9 || stats.Published != 6 || stats.Discarded != 3 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestSource_UnrecognizedKeysProduceNothing(t *testing.T) {
	b := backend.NewNullBackend(80, 24)
	tokens := broadcast.New[key.Token](4)
	rx := tokens.Subscribe()
	defer rx.Close()

	post(t, b, "<Up><Down><Left><Right><F12><CR>")
	b.Shutdown()

	if err := wait(t, runSource(t, New(b, tokens))); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if tokens.Stats().Published != 0 {
		t.Errorf("published %d tokens, want 0", tokens.Stats().Published)
	}
}

func TestSource_Interrupt(t *testing.T) {
	b := backend.NewNullBackend(80, 24)
	tokens := broadcast.New[key.Token](4)
	rx := tokens.Subscribe()
	defer rx.Close()

	interrupted := make(chan struct{})
	s := New(b, tokens, WithInterruptHandler(func() { close(interrupted) }))

	post(t, b, "a<C-c>b")

	err := wait(t, runSource(t, s))
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Run() error = %v, want ErrInterrupted", err)
	}

	select {
	case <-interrupted:
	default:
		t.Error("interrupt handler was not called")
	}

	if got, _ := rx.TryRecv(); got != key.Alphanumeric('a') {
		t.Errorf("first token = %v, want a", got)
	}
	if _, err := rx.TryRecv(); !errors.Is(err, broadcast.ErrEmpty) {
		t.Error("no token may follow the interrupt")
	}
}

func TestSource_NoReceiversDoesNotBlock(t *testing.T) {
	b := backend.NewNullBackend(80, 24)
	tokens := broadcast.New[key.Token](2)

	post(t, b, "abcdefghij")
	b.Shutdown()

	if err := wait(t, runSource(t, New(b, tokens))); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := tokens.Stats().NoReceivers; got != 10 {
		t.Errorf("NoReceivers = %d, want 10", got)
	}
}

func TestSource_ContextCancelled(t *testing.T) {
	b := backend.NewNullBackend(80, 24)
	s := New(b, broadcast.New[key.Token](2))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	b.Shutdown() // unblocks PollEvent

	if err := wait(t, done); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	for _, spec := range []string{"a", "Z", "<Esc>", "<Tab>", "<BS>", "<C-c>", "<A-x>", "<F7>", "<Left>"} {
		ev := key.MustParse(spec)
		got := ToKeyEvent(FromKeyEvent(ev))
		if !got.Equals(ev) {
			t.Errorf("round trip %q = %#v, want %#v", spec, got, ev)
		}
	}
}

func TestSource_ClosedChannelNotCounted(t *testing.T) {
	b := backend.NewNullBackend(80, 24)
	tokens := broadcast.New[key.Token](4)
	tokens.Close()

	s := New(b, tokens)
	post(t, b, "abc")
	b.Shutdown()

	if err := wait(t, runSource(t, s)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := s.Stats(); got.KeyEvents != 3 || got.Published != 0 {
		t.Errorf("Stats() = %+v, want 3 key events and nothing published", got)
	}
}

func TestSource_NoReceiversStillCounted(t *testing.T) {
	b := backend.NewNullBackend(80, 24)
	s := New(b, broadcast.New[key.Token](4))
	post(t, b, "ab")
	b.Shutdown()

	if err := wait(t, runSource(t, s)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := s.Stats().Published; got != 2 {
		t.Errorf("Published = %d, want 2", got)
	}
}
