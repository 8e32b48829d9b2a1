package sequence

import (
	"context"

	"github.com/dshills/keyseq/internal/event/broadcast"
)

// Recv waits for the next snapshot on rx. It reports ok=false with the
// reason when the channel closed, the receiver lagged, or ctx ended. A
// consumer stops on the first failure and does not retry.
func Recv(ctx context.Context, rx *broadcast.Receiver[string]) (snapshot string, ok bool, reason error) {
	s, err := rx.Recv(ctx)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}
