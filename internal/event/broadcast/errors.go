package broadcast

import (
	"errors"
	"strconv"
)

// Sentinel errors for broadcast channels.
var (
	// ErrClosed is returned by Recv once the channel is closed and the
	// receiver has drained every retained value, and by Publish after Close.
	ErrClosed = errors.New("broadcast channel closed")

	// ErrNoReceivers is returned by Publish when nobody is subscribed.
	// The value is still accepted; callers normally ignore this error.
	ErrNoReceivers = errors.New("broadcast channel has no receivers")

	// ErrEmpty is returned by TryRecv when no value is ready.
	ErrEmpty = errors.New("broadcast channel empty")

	// ErrLagged matches any *LagError via errors.Is.
	ErrLagged = errors.New("broadcast receiver lagged")

	// ErrReceiverClosed is returned when a closed Receiver is used.
	ErrReceiverClosed = errors.New("broadcast receiver closed")
)

// LagError reports that a receiver fell behind and values were skipped.
type LagError struct {
	// ReceiverID identifies the lagging receiver.
	ReceiverID string

	// Skipped is the number of values the receiver will never see.
	Skipped uint64
}

// Error implements the error interface.
func (e *LagError) Error() string {
	return "broadcast receiver " + e.ReceiverID + " lagged by " + strconv.FormatUint(e.Skipped, 10) + " values"
}

// Is allows errors.Is to match LagError with ErrLagged.
func (e *LagError) Is(target error) bool {
	return target == ErrLagged
}
