// Package consumer contains the snapshot consumers: a Printer that renders
// the current sequence in a corner of the terminal and a ScriptHook that
// hands every snapshot to a Lua function.
//
// Consumers read from their own snapshot subscription. When the
// subscription ends (channel closed, lag, cancellation) the consumer logs
// the reason and returns nil; it never retries. The Printer treats the
// quit sentinel as the end of its loop and returns ErrQuit.
package consumer
