package amqp

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

const maxBackoff = 30 * time.Second

// exponentialBackoff doubles from one second and caps at thirty.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	return min(d, maxBackoff)
}

// isConnectionError reports whether err looks like a broken broker link.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errDeliveriesClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "channel/connection is not open", "dial"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// ConsumeWithRetry keeps a consumer running across broker restarts. dial is
// called for every (re)connection; the loop stops when ctx is cancelled or
// when a non-connection error occurs.
func ConsumeWithRetry(ctx context.Context, dial func() (*Client, error), handler func(context.Context, *EntryAppendedMessage) error) error {
	for attempt := 0; ; attempt++ {
		err := consumeOnce(ctx, dial, handler, func() { attempt = 0 })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}
		wait := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "amqp connection lost, retrying", "error", err, "attempt", attempt+1, "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func consumeOnce(ctx context.Context, dial func() (*Client, error), handler func(context.Context, *EntryAppendedMessage) error, connected func()) error {
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()
	connected()
	return c.Consume(ctx, handler)
}
