// Package sequence accumulates key tokens into the pending vim-style key
// sequence and publishes a snapshot of it after every change.
//
// The Accumulator is an actor: one goroutine (Run) owns the buffer and is
// the only code that reads or writes it. Tokens arrive on a broadcast
// subscription; other goroutines ask for the current contents with String,
// which sends a request to the actor and waits for the reply. There is no
// lock around the buffer.
//
// Transitions:
//
//	character   append, emit snapshot
//	<esc>       clear, emit "" (also when already empty)
//	<backspace> drop the last character, emit if something was dropped
//	<tab>       ignored and counted, no emission
//
// Snapshots are published in mutation order on an optional broadcast
// channel. Without a publisher the accumulator still tracks the buffer.
package sequence
