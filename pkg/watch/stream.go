package watch

import (
	"context"
	"errors"
	"io"

	"kubeclient/pkg/errx"
)

// Result carries one event or one error from Stream.
type Result struct {
	Event Event
	Err   error
}

// Stream decodes body until it ends, a terminal error occurs or ctx is done.
// The body is closed when the stream ends. A read interrupted by ctx is
// reported as ReadEvents wrapping ctx.Err().
func Stream(ctx context.Context, body io.ReadCloser, maxLineLength int) <-chan Result {
	out := make(chan Result)
	stop := context.AfterFunc(ctx, func() { _ = body.Close() })

	go func() {
		defer close(out)
		defer stop()
		defer func() { _ = body.Close() }()

		dec := NewDecoder(body, maxLineLength)
		for {
			ev, err := dec.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil && ctx.Err() != nil && errx.IsKind(err, errx.KindReadEvents) {
				err = errx.ReadEvents(ctx.Err())
			}
			select {
			case out <- Result{Event: ev, Err: err}:
			case <-ctx.Done():
				return
			}
			if Terminal(err) {
				return
			}
		}
	}()
	return out
}
