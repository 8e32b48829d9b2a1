// Package broadcast provides a bounded, multi-subscriber fan-out channel.
//
// A Channel retains the most recent values in a fixed-size ring. Every
// Receiver holds its own cursor into that ring, starting at the moment it
// subscribed, so values published earlier are never replayed.
//
// Publishing never blocks. When a receiver falls more than the channel's
// capacity behind, the oldest values it had not read are overwritten. Its
// next Recv returns a *LagError carrying the number of skipped values and
// the cursor jumps forward to the oldest value still retained:
//
//	ch := broadcast.New[string](8)
//	rx := ch.Subscribe()
//	defer rx.Close()
//
//	for {
//	    v, err := rx.Recv(ctx)
//	    var lag *broadcast.LagError
//	    switch {
//	    case errors.As(err, &lag):
//	        log.Printf("missed %d values", lag.Skipped)
//	        continue
//	    case err != nil:
//	        return err // ErrClosed or ctx.Err()
//	    }
//	    handle(v)
//	}
//
// Lag and publishes with no receivers are counted in Stats so silent loss is
// still diagnosable.
//
// # Thread Safety
//
// Channel is safe for concurrent use. A Receiver is a cursor and must be
// read from a single goroutine; use Resubscribe to hand an independent
// cursor to another goroutine.
package broadcast
