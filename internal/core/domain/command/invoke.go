package command

import (
	"context"
	"fmt"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"time"
)

// Invoke runs the handler of d, converting panics to domain.ErrHandlerPanic. A positive timeout bounds the
// call; a handler that ignores cancellation keeps running in the background but no longer holds the caller.
func (d Descriptor) Invoke(ctx context.Context, timeout time.Duration, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	if timeout <= 0 {
		return d.call(ctx, conn, msg, dc)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- d.call(ctx, conn, msg, dc)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("handler did not finish within %s: %w", timeout, ctx.Err())
	}
}

func (d Descriptor) call(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrHandlerPanic, r)
		}
	}()

	return d.Handler.Respond(ctx, conn, msg, dc)
}
