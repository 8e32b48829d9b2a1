// Package key provides key event types and classification for the input pipeline.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a keyboard key (special keys, function keys, or runes)
//   - Modifier: Represents modifier keys (Ctrl, Alt, Shift, Meta)
//   - Event: A single raw key press with modifiers and timestamp
//   - Token: The classified result of an Event, either a character or a Special
//
// # Classification
//
// Classify reduces a raw Event to the closed Token set used by the sequence
// accumulator. Characters become Alphanumeric tokens; Escape, Tab and
// Backspace become Special tokens. Every other event is discarded:
//
//	if tok, ok := key.Classify(ev); ok {
//	    tokens.Publish(tok)
//	}
//
// The interrupt combination (Ctrl+C) is never classified. Callers check
// IsInterrupt first and treat it as a cancellation request.
package key
