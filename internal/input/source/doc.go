// Package source reads raw terminal events and publishes classified key
// tokens onto a fan-out channel.
//
// A Source is the only reader of its backend. It never waits on consumers:
// publishing is best-effort and a missing or slow subscriber only shows up
// in the channel's statistics.
//
// Ctrl+C is handled before classification. Instead of terminating the
// process, the Source calls its interrupt handler (normally the cancel
// function of the application's root context) and returns ErrInterrupted,
// so every other task can tear down before the terminal is restored.
package source
