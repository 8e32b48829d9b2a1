package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func recvN[T any](t *testing.T, rx *Receiver[T], n int) []T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := rx.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv() #%d failed: %v", i, err)
		}
		out = append(out, v)
	}
	return out
}

func TestNew_DefaultCapacity(t *testing.T) {
	ch := New[int](0)
	if ch.Cap() != DefaultCapacity {
		t.Errorf("Cap() = %d, want %d", ch.Cap(), DefaultCapacity)
	}
}

func TestChannel_FIFO(t *testing.T) {
	ch := New[int](8)
	rx := ch.Subscribe()
	defer rx.Close()

	for i := 1; i <= 5; i++ {
		if err := ch.Publish(i); err != nil {
			t.Fatalf("Publish(%d) failed: %v", i, err)
		}
	}

	got := recvN(t, rx, 5)
	for i, v := range got {
		if v != i+1 {
			t.Errorf("value %d = %d, want %d", i, v, i+1)
		}
	}
}

func TestChannel_NoReplay(t *testing.T) {
	ch := New[string](8)
	early := ch.Subscribe()
	defer early.Close()

	_ = ch.Publish("before")

	late := ch.Subscribe()
	defer late.Close()

	_ = ch.Publish("after")

	if got := recvN(t, late, 1)[0]; got != "after" {
		t.Errorf("late subscriber got %q, want %q", got, "after")
	}
	if _, err := late.TryRecv(); !errors.Is(err, ErrEmpty) {
		t.Errorf("TryRecv() error = %v, want ErrEmpty", err)
	}

	got := recvN(t, early, 2)
	if got[0] != "before" || got[1] != "after" {
		t.Errorf("early subscriber got %v", got)
	}
}

func TestChannel_IndependentSubscribersSeeSameOrder(t *testing.T) {
	ch := New[int](16)
	a := ch.Subscribe()
	b := ch.Subscribe()
	defer a.Close()
	defer b.Close()

	for i := 0; i < 10; i++ {
		_ = ch.Publish(i * i)
	}

	ga := recvN(t, a, 10)
	gb := recvN(t, b, 10)
	for i := range ga {
		if ga[i] != gb[i] {
			t.Fatalf("subscribers diverge at %d: %d vs %d", i, ga[i], gb[i])
		}
	}
}

func TestChannel_Lag(t *testing.T) {
	var hookSkipped uint64
	ch := New[int](4, WithLagHook(func(_ string, skipped uint64) {
		hookSkipped += skipped
	}))
	rx := ch.Subscribe()
	defer rx.Close()

	for i := 0; i < 10; i++ {
		_ = ch.Publish(i)
	}

	_, err := rx.TryRecv()
	var lag *LagError
	if !errors.As(err, &lag) {
		t.Fatalf("TryRecv() error = %v, want *LagError", err)
	}
	if lag.Skipped != 6 {
		t.Errorf("Skipped = %d, want 6", lag.Skipped)
	}
	if lag.ReceiverID != rx.ID() {
		t.Errorf("ReceiverID = %q, want %q", lag.ReceiverID, rx.ID())
	}
	if !errors.Is(err, ErrLagged) {
		t.Error("LagError should match ErrLagged")
	}

	got := recvN(t, rx, 4)
	want := []int{6, 7, 8, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("after lag value %d = %d, want %d", i, got[i], want[i])
		}
	}

	if s := ch.Stats(); s.Lagged != 6 {
		t.Errorf("Stats().Lagged = %d, want 6", s.Lagged)
	}
	if hookSkipped != 6 {
		t.Errorf("lag hook saw %d skipped, want 6", hookSkipped)
	}
}

func TestChannel_PublishWithoutReceivers(t *testing.T) {
	ch := New[int](2)
	if err := ch.Publish(1); !errors.Is(err, ErrNoReceivers) {
		t.Errorf("Publish() error = %v, want ErrNoReceivers", err)
	}

	rx := ch.Subscribe()
	if err := ch.Publish(2); err != nil {
		t.Errorf("Publish() error = %v, want nil", err)
	}
	rx.Close()
	rx.Close() // idempotent

	if err := ch.Publish(3); !errors.Is(err, ErrNoReceivers) {
		t.Errorf("Publish() after Close error = %v, want ErrNoReceivers", err)
	}

	s := ch.Stats()
	if s.Published != 3 || s.NoReceivers != 2 || s.Receivers != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestChannel_CloseDrainsThenErrClosed(t *testing.T) {
	ch := New[int](4)
	rx := ch.Subscribe()
	defer rx.Close()

	_ = ch.Publish(1)
	_ = ch.Publish(2)
	ch.Close()
	ch.Close()

	if !ch.IsClosed() {
		t.Error("IsClosed() = false after Close()")
	}
	if err := ch.Publish(3); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() after Close error = %v, want ErrClosed", err)
	}

	got := recvN(t, rx, 2)
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("drained %v, want [1 2]", got)
	}
	if _, err := rx.Recv(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Recv() error = %v, want ErrClosed", err)
	}
}

func TestChannel_CloseWakesBlockedReceiver(t *testing.T) {
	ch := New[int](4)
	rx := ch.Subscribe()
	defer rx.Close()

	done := make(chan error, 1)
	go func() {
		_, err := rx.Recv(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	ch.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Recv() error = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Recv() did not return after Close()")
	}
}

func TestReceiver_ContextCancel(t *testing.T) {
	ch := New[int](4)
	rx := ch.Subscribe()
	defer rx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := rx.Recv(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Recv() error = %v, want DeadlineExceeded", err)
	}
}

func TestReceiver_ClosedReceiver(t *testing.T) {
	ch := New[int](4)
	rx := ch.Subscribe()
	rx.Close()

	_ = ch.Publish(1)
	if _, err := rx.TryRecv(); !errors.Is(err, ErrReceiverClosed) {
		t.Errorf("TryRecv() error = %v, want ErrReceiverClosed", err)
	}
}

func TestReceiver_Resubscribe(t *testing.T) {
	ch := New[int](4)
	rx := ch.Subscribe()
	defer rx.Close()

	_ = ch.Publish(1)

	clone := rx.Resubscribe()
	defer clone.Close()

	if clone.ID() == rx.ID() {
		t.Error("Resubscribe() should produce a distinct receiver ID")
	}
	if ch.ReceiverCount() != 2 {
		t.Errorf("ReceiverCount() = %d, want 2", ch.ReceiverCount())
	}

	_ = ch.Publish(2)

	if got := recvN(t, clone, 1)[0]; got != 2 {
		t.Errorf("clone got %d, want 2", got)
	}
	if got := recvN(t, rx, 2); got[0] != 1 || got[1] != 2 {
		t.Errorf("original got %v, want [1 2]", got)
	}
}

func TestChannel_ConcurrentPublishRecv(t *testing.T) {
	const n = 500
	ch := New[int](n)

	receivers := make([]*Receiver[int], 4)
	for i := range receivers {
		receivers[i] = ch.Subscribe()
	}

	var wg sync.WaitGroup
	results := make([][]int, len(receivers))
	for i, rx := range receivers {
		wg.Add(1)
		go func(i int, rx *Receiver[int]) {
			defer wg.Done()
			defer rx.Close()
			for {
				v, err := rx.Recv(context.Background())
				if err != nil {
					return
				}
				results[i] = append(results[i], v)
			}
		}(i, rx)
	}

	for i := 0; i < n; i++ {
		_ = ch.Publish(i)
	}
	ch.Close()
	wg.Wait()

	for i, got := range results {
		if len(got) != n {
			t.Fatalf("receiver %d got %d values, want %d", i, len(got), n)
		}
		for j, v := range got {
			if v != j {
				t.Fatalf("receiver %d value %d = %d", i, j, v)
			}
		}
	}
}
